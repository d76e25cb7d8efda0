package metricdict_test

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LachlanStuart/slingpy/internal/metricdict"
)

func TestSaveLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "eval_score.json")
	want := metricdict.Dict{"auc": 0.81, "per_class": []any{0.5, 0.25}}
	require.NoError(t, metricdict.Save(path, want))

	got, err := metricdict.Load(path)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("loaded dict mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveLoadMsgpack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.msgpack")
	require.NoError(t, metricdict.Save(path, metricdict.Dict{"auc": 0.77}))

	got, err := metricdict.Load(path)
	require.NoError(t, err)
	auc, ok := got.Scalar("auc")
	require.True(t, ok)
	assert.Equal(t, 0.77, auc)
}

func TestLoadMissing(t *testing.T) {
	_, err := metricdict.Load(filepath.Join(t.TempDir(), "eval_score.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eval_score.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := metricdict.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestSaveNilWritesEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test_score.json")
	require.NoError(t, metricdict.Save(path, nil))
	got, err := metricdict.Load(path)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestScalar(t *testing.T) {
	d := metricdict.Dict{"f": 0.5, "i": int64(3), "arr": []any{1.0}}
	v, ok := d.Scalar("f")
	assert.True(t, ok)
	assert.Equal(t, 0.5, v)
	v, ok = d.Scalar("i")
	assert.True(t, ok)
	assert.Equal(t, 3.0, v)
	_, ok = d.Scalar("arr")
	assert.False(t, ok)
	_, ok = d.Scalar("missing")
	assert.False(t, ok)
}
