package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/LachlanStuart/slingpy/internal/paths"
	"github.com/LachlanStuart/slingpy/internal/result"
	"github.com/LachlanStuart/slingpy/internal/runpolicy"
)

// Target is an application to run Runs times under Policy.
type Target struct {
	App     string
	Kind    runpolicy.Kind
	Policy  runpolicy.Policy
	Runs    int
	Options runpolicy.Options
}

type SweepOpts struct {
	SweepDir    string
	Targets     []Target
	Parallel    int
	GitRevision string
}

type plannedRun struct {
	target *Target
	index  int
	dir    string
}

// Sweep executes every run of every target, each into its own output
// directory under SweepDir, and writes a RunMeta next to each run's
// artifacts. Runs of async policies go through a worker pool of size
// Parallel; the rest run one after another. The returned metas follow
// target and run order.
func Sweep(ctx context.Context, opts *SweepOpts) ([]*result.RunMeta, error) {
	log := logrus.WithField("component", "sweep")

	var planned []plannedRun
	for i := range opts.Targets {
		t := &opts.Targets[i]
		for run := 1; run <= t.Runs; run++ {
			planned = append(planned, plannedRun{
				target: t,
				index:  run,
				dir:    paths.RunDir(opts.SweepDir, t.App, run),
			})
		}
	}

	metas := make([]*result.RunMeta, len(planned))
	jobFor := func(i int) Job {
		return func(ctx context.Context) error {
			meta, err := runOne(ctx, &planned[i], opts.GitRevision)
			metas[i] = meta
			return err
		}
	}

	var errs *multierror.Error
	var async []Job
	for i, p := range planned {
		if p.target.Policy.IsAsync() && opts.Parallel > 1 {
			async = append(async, jobFor(i))
			continue
		}
		if err := jobFor(i)(ctx); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	if len(async) > 0 {
		log.Infof("dispatching %d async runs over %d workers", len(async), opts.Parallel)
		for _, err := range RunPool(ctx, opts.Parallel, async) {
			errs = multierror.Append(errs, err)
		}
	}

	var done []*result.RunMeta
	for _, m := range metas {
		if m != nil {
			done = append(done, m)
		}
	}
	return done, errs.ErrorOrNil()
}

func runOne(ctx context.Context, p *plannedRun, gitRevision string) (*result.RunMeta, error) {
	log := logrus.WithFields(logrus.Fields{"component": "sweep", "app": p.target.App, "run": p.index})

	options := p.target.Options.Clone()
	options[runpolicy.KeyOutputDirectory] = p.dir

	meta := &result.RunMeta{
		App:         p.target.App,
		Run:         p.index,
		Policy:      string(p.target.Kind),
		OutputDir:   p.dir,
		GitRevision: gitRevision,
	}

	start := time.Now()
	res, runErr := p.target.Policy.Run(ctx, options)
	meta.DurationS = time.Since(start).Seconds()
	meta.Result = res
	if runErr != nil {
		meta.Error = runErr.Error()
		log.WithError(runErr).Error("run failed")
	} else {
		log.WithField("model", res.ModelPath).Info("run completed")
	}

	if err := result.WriteRunMeta(p.dir, meta); err != nil {
		return meta, multierror.Append(runErr, fmt.Errorf("%s run %d: writing meta: %w", p.target.App, p.index, err))
	}
	if runErr != nil {
		return meta, fmt.Errorf("%s run %d: %w", p.target.App, p.index, runErr)
	}
	return meta, nil
}
