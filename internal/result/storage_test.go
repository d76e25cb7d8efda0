package result_test

import (
	"path/filepath"
	"testing"

	"github.com/LachlanStuart/slingpy/internal/metricdict"
	"github.com/LachlanStuart/slingpy/internal/result"
)

func TestWriteAndReadRunMeta(t *testing.T) {
	dir := t.TempDir()
	meta := &result.RunMeta{
		App:       "constant",
		Run:       1,
		Policy:    "remote",
		OutputDir: dir,
		DurationS: 42,
		Result: &result.RunResult{
			ValidationScores: metricdict.Dict{"auc": 0.81},
			TestScores:       metricdict.Dict{"auc": 0.77},
			ModelPath:        filepath.Join(dir, "model.pt"),
		},
	}
	if err := result.WriteRunMeta(dir, meta); err != nil {
		t.Fatalf("WriteRunMeta: %v", err)
	}
	got, err := result.ReadRunMeta(filepath.Join(dir, result.MetaFile))
	if err != nil {
		t.Fatalf("ReadRunMeta: %v", err)
	}
	if got.App != meta.App {
		t.Errorf("app: got %q, want %q", got.App, meta.App)
	}
	if got.Failed() {
		t.Error("expected successful run")
	}
	if got.Result.ModelPath != meta.Result.ModelPath {
		t.Errorf("model_path: got %q, want %q", got.Result.ModelPath, meta.Result.ModelPath)
	}
	if auc, _ := got.Result.TestScores.Scalar("auc"); auc != 0.77 {
		t.Errorf("test auc: got %f, want 0.77", auc)
	}
}

func TestRunMetaFailed(t *testing.T) {
	if !(&result.RunMeta{Error: "boom"}).Failed() {
		t.Error("expected error meta to be failed")
	}
	if !(&result.RunMeta{}).Failed() {
		t.Error("expected meta without result to be failed")
	}
}

func TestFindRunMetas(t *testing.T) {
	base := t.TempDir()
	for _, d := range []string{"a/run-1", "a/run-2", "b/run-1"} {
		if err := result.WriteRunMeta(filepath.Join(base, d), &result.RunMeta{App: d}); err != nil {
			t.Fatalf("WriteRunMeta: %v", err)
		}
	}
	found, err := result.FindRunMetas(base)
	if err != nil {
		t.Fatalf("FindRunMetas: %v", err)
	}
	if len(found) != 3 {
		t.Errorf("found %d metas, want 3", len(found))
	}
}
