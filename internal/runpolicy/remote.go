package runpolicy

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/LachlanStuart/slingpy/internal/app"
	"github.com/LachlanStuart/slingpy/internal/paths"
	"github.com/LachlanStuart/slingpy/internal/result"
	"github.com/LachlanStuart/slingpy/internal/scheduler"
)

// Remote runs an application as a job on a scheduler and hydrates the
// result from the files the job wrote to the shared output directory.
// A Remote holds no per-run state; concurrent Runs must use distinct
// output directories.
type Remote struct {
	app       app.Application
	resources app.Resources
	sched     scheduler.Scheduler
	paths     *paths.AppPaths

	tag    string
	stdout io.Writer
	stderr io.Writer
	log    *logrus.Entry
}

type RemoteOption func(*Remote)

// WithTag sets the prefix of relayed console lines.
func WithTag(tag string) RemoteOption {
	return func(r *Remote) { r.tag = tag }
}

// WithOutput sets where the job's stdout and stderr are relayed.
func WithOutput(stdout, stderr io.Writer) RemoteOption {
	return func(r *Remote) {
		r.stdout = stdout
		r.stderr = stderr
	}
}

func WithLogger(log *logrus.Entry) RemoteOption {
	return func(r *Remote) { r.log = log }
}

func NewRemote(
	application app.Application,
	resources app.Resources,
	sched scheduler.Scheduler,
	appPaths *paths.AppPaths,
	opts ...RemoteOption,
) *Remote {
	r := &Remote{
		app:       application,
		resources: resources,
		sched:     sched,
		paths:     appPaths,
		tag:       DefaultTag,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		log:       logrus.WithField("component", "remote-run-policy"),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Remote) IsAsync() bool { return true }

func (r *Remote) Run(ctx context.Context, opts Options) (*result.RunResult, error) {
	if err := r.resources.Validate(); err != nil {
		return nil, err
	}
	outputDir, err := opts.OutputDirectory()
	if err != nil {
		return nil, err
	}
	// The job starts in the project root; both sides must name the same directory.
	if outputDir, err = filepath.Abs(outputDir); err != nil {
		return nil, fmt.Errorf("resolving output directory: %w", err)
	}

	args := opts.Clone()
	args[KeyOutputDirectory] = outputDir
	args[KeySingleRun] = true

	job := &scheduler.Job{
		App:            r.app.Name(),
		TimeLimitDays:  r.resources.TimeLimitDays,
		TimeLimitHours: r.resources.TimeLimitHours,
		NumCPUs:        r.resources.NumCPUs,
		MemLimitMB:     r.resources.MemLimitMB,
		VirtualenvPath: r.resources.VirtualenvPath,
		ProjectDir:     r.paths.ProjectRoot,
		OutputDir:      outputDir,
		Args:           args,
	}

	venue := r.venue()
	log := r.log.WithFields(logrus.Fields{"app": job.App, "output-dir": outputDir})
	log.Info("submitting remote run")

	submissions.WithLabelValues(venue).Inc()
	start := time.Now()
	stdout, stderr, err := r.sched.Execute(ctx, job)
	executeSeconds.WithLabelValues(venue).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("executing %s remotely: %w", job.App, err)
	}
	log.WithField("duration", time.Since(start).Round(time.Second)).Info("remote run finished")

	// Output is relayed in full before hydration starts.
	if err := routeOutput(r.stdout, r.tag, stdout); err != nil {
		return nil, fmt.Errorf("relaying remote stdout: %w", err)
	}
	if err := routeOutput(r.stderr, r.tag, stderr); err != nil {
		return nil, fmt.Errorf("relaying remote stderr: %w", err)
	}

	res, err := Hydrate(r.app, r.paths, outputDir)
	if err != nil {
		hydrationErrors.WithLabelValues(venue).Inc()
		return nil, err
	}
	return res, nil
}

// venue is the metrics label for this policy, derived from its tag.
func (r *Remote) venue() string {
	v := strings.ToLower(strings.Trim(r.tag, "[] "))
	if v == "" {
		return "remote"
	}
	return v
}
