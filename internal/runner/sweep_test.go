package runner_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LachlanStuart/slingpy/internal/app"
	"github.com/LachlanStuart/slingpy/internal/metricdict"
	"github.com/LachlanStuart/slingpy/internal/paths"
	"github.com/LachlanStuart/slingpy/internal/result"
	"github.com/LachlanStuart/slingpy/internal/runner"
	"github.com/LachlanStuart/slingpy/internal/runpolicy"
)

type recordingPolicy struct {
	async   bool
	fail    map[string]bool
	mu      sync.Mutex
	dirs    []string
	running atomic.Int32
	peak    atomic.Int32
}

func (p *recordingPolicy) IsAsync() bool { return p.async }

func (p *recordingPolicy) Run(ctx context.Context, opts runpolicy.Options) (*result.RunResult, error) {
	n := p.running.Add(1)
	defer p.running.Add(-1)
	for {
		cur := p.peak.Load()
		if n <= cur || p.peak.CompareAndSwap(cur, n) {
			break
		}
	}
	dir, err := opts.OutputDirectory()
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.dirs = append(p.dirs, dir)
	p.mu.Unlock()
	if p.fail[filepath.Base(dir)] {
		return nil, errors.New("no score files")
	}
	return &result.RunResult{
		ValidationScores: metricdict.Dict{"auc": 0.9},
		TestScores:       metricdict.Dict{"auc": 0.8},
		ModelPath:        filepath.Join(dir, "model.pt"),
	}, nil
}

func TestSweepWritesMetaPerRun(t *testing.T) {
	sweepDir := t.TempDir()
	policy := &recordingPolicy{}
	metas, err := runner.Sweep(context.Background(), &runner.SweepOpts{
		SweepDir:    sweepDir,
		GitRevision: "abc123",
		Targets: []runner.Target{
			{App: "fake", Kind: runpolicy.KindLocal, Policy: policy, Runs: 2, Options: runpolicy.Options{"epochs": 1}},
		},
	})
	require.NoError(t, err)
	require.Len(t, metas, 2)
	for i, m := range metas {
		assert.Equal(t, i+1, m.Run)
		assert.Equal(t, paths.RunDir(sweepDir, "fake", i+1), m.OutputDir)
		assert.Equal(t, "abc123", m.GitRevision)
		assert.False(t, m.Failed())

		onDisk, err := result.ReadRunMeta(filepath.Join(m.OutputDir, result.MetaFile))
		require.NoError(t, err)
		assert.Equal(t, m.Result.ModelPath, onDisk.Result.ModelPath)
	}
}

func TestSweepAsyncUsesPool(t *testing.T) {
	policy := &recordingPolicy{async: true}
	metas, err := runner.Sweep(context.Background(), &runner.SweepOpts{
		SweepDir: t.TempDir(),
		Parallel: 3,
		Targets:  []runner.Target{{App: "fake", Kind: runpolicy.KindRemote, Policy: policy, Runs: 9}},
	})
	require.NoError(t, err)
	assert.Len(t, metas, 9)
	assert.LessOrEqual(t, policy.peak.Load(), int32(3))

	seen := map[string]bool{}
	for _, d := range policy.dirs {
		assert.False(t, seen[d], "output directory %s reused", d)
		seen[d] = true
	}
}

func TestSweepSyncPolicyRunsSerially(t *testing.T) {
	policy := &recordingPolicy{}
	_, err := runner.Sweep(context.Background(), &runner.SweepOpts{
		SweepDir: t.TempDir(),
		Parallel: 4,
		Targets:  []runner.Target{{App: "fake", Kind: runpolicy.KindLocal, Policy: policy, Runs: 4}},
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), policy.peak.Load())
}

func TestSweepAggregatesFailures(t *testing.T) {
	policy := &recordingPolicy{fail: map[string]bool{"run-2": true}}
	metas, err := runner.Sweep(context.Background(), &runner.SweepOpts{
		SweepDir: t.TempDir(),
		Targets:  []runner.Target{{App: "fake", Kind: runpolicy.KindLocal, Policy: policy, Runs: 3}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fake run 2")
	require.Len(t, metas, 3)
	assert.True(t, metas[1].Failed())
	assert.Equal(t, "no score files", metas[1].Error)
	assert.False(t, metas[0].Failed())
}

func TestSweepWithConstantApplication(t *testing.T) {
	sweepDir := t.TempDir()
	policy := runpolicy.NewLocal(app.NewConstant(0.5), &paths.AppPaths{})
	metas, err := runner.Sweep(context.Background(), &runner.SweepOpts{
		SweepDir: sweepDir,
		Targets:  []runner.Target{{App: app.ConstantName, Kind: runpolicy.KindLocal, Policy: policy, Runs: 1}},
	})
	require.NoError(t, err)
	require.Len(t, metas, 1)
	mae, ok := metas[0].Result.TestScores.Scalar("mae")
	require.True(t, ok)
	assert.InDelta(t, 0.5, mae, 1e-9)
}
