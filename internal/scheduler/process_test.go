package scheduler_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LachlanStuart/slingpy/internal/scheduler"
)

func TestProcessExecute(t *testing.T) {
	p := scheduler.NewProcess([]string{"sh", "-c", `echo "out $*"; echo err >&2`, "entry"})
	job := &scheduler.Job{
		App:            "constant",
		TimeLimitHours: 1,
		ProjectDir:     t.TempDir(),
		OutputDir:      t.TempDir(),
		Args:           map[string]any{"single_run": true},
	}
	stdout, stderr, err := p.Execute(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, "out --app constant --single_run=true\n", stdout)
	assert.Equal(t, "err\n", stderr)
}

func TestProcessExecuteNonZeroExit(t *testing.T) {
	p := scheduler.NewProcess([]string{"sh", "-c", "echo boom >&2; exit 3", "entry"})
	job := &scheduler.Job{App: "constant", TimeLimitHours: 1, OutputDir: t.TempDir()}
	stdout, stderr, err := p.Execute(context.Background(), job)
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Equal(t, "boom\n", stderr)
}

func TestProcessExecuteCanceled(t *testing.T) {
	p := scheduler.NewProcess([]string{"sleep", "5"})
	job := &scheduler.Job{App: "constant", TimeLimitHours: 1, OutputDir: t.TempDir()}
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, _, err := p.Execute(ctx, job)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
