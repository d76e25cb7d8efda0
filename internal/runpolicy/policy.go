// Package runpolicy decides how an application is executed to produce a
// RunResult: in this process, or as a job on a remote venue.
package runpolicy

import (
	"context"
	"errors"
	"fmt"

	"github.com/LachlanStuart/slingpy/internal/app"
	"github.com/LachlanStuart/slingpy/internal/metricdict"
	"github.com/LachlanStuart/slingpy/internal/paths"
	"github.com/LachlanStuart/slingpy/internal/result"
	"github.com/LachlanStuart/slingpy/internal/scheduler"
)

const (
	// KeyOutputDirectory names the directory all run artifacts are written to.
	KeyOutputDirectory = "output_directory"
	// KeySingleRun tells the execution side it runs one unit of a sweep.
	KeySingleRun = "single_run"
)

var ErrMissingOutputDirectory = errors.New("missing " + KeyOutputDirectory)

// Options configures a single run. output_directory is required; other
// keys are passed through to the application.
type Options map[string]any

func (o Options) OutputDirectory() (string, error) {
	v, ok := o[KeyOutputDirectory]
	if !ok {
		return "", ErrMissingOutputDirectory
	}
	dir, ok := v.(string)
	if !ok || dir == "" {
		return "", fmt.Errorf("%w: got %v (%T)", ErrMissingOutputDirectory, v, v)
	}
	return dir, nil
}

// Clone returns a shallow copy of o.
func (o Options) Clone() Options {
	c := make(Options, len(o)+1)
	for k, v := range o {
		c[k] = v
	}
	return c
}

// Policy executes an application and returns its result.
type Policy interface {
	// Run blocks until the application has run and its result is hydrated.
	Run(ctx context.Context, opts Options) (*result.RunResult, error)
	// IsAsync reports whether Run spends most of its time waiting on an
	// external venue, so callers may run many Runs concurrently. It does
	// not mean Run returns early.
	IsAsync() bool
}

type Kind string

const (
	KindLocal  Kind = "local"
	KindRemote Kind = "remote"
)

// New builds the policy of the given kind. sched and resources are only
// used by remote policies.
func New(
	kind Kind,
	application app.Application,
	resources app.Resources,
	sched scheduler.Scheduler,
	appPaths *paths.AppPaths,
	opts ...RemoteOption,
) (Policy, error) {
	switch kind {
	case KindLocal:
		return NewLocal(application, appPaths), nil
	case KindRemote:
		if sched == nil {
			return nil, errors.New("remote policy requires a scheduler")
		}
		return NewRemote(application, resources, sched, appPaths, opts...), nil
	default:
		return nil, fmt.Errorf("unknown run policy %q", kind)
	}
}

// Hydrate loads the result a run left in outputDir.
func Hydrate(application app.Application, appPaths *paths.AppPaths, outputDir string) (*result.RunResult, error) {
	evalScores, err := metricdict.Load(appPaths.EvalScoreDictPath(outputDir))
	if err != nil {
		return nil, fmt.Errorf("loading validation scores: %w", err)
	}
	testScores, err := metricdict.Load(appPaths.TestScoreDictPath(outputDir))
	if err != nil {
		return nil, fmt.Errorf("loading test scores: %w", err)
	}
	modelPath, err := modelPath(application, appPaths, outputDir)
	if err != nil {
		return nil, err
	}
	return &result.RunResult{
		ValidationScores: evalScores,
		TestScores:       testScores,
		ModelPath:        modelPath,
	}, nil
}

func modelPath(application app.Application, appPaths *paths.AppPaths, outputDir string) (string, error) {
	if err := application.InitData(); err != nil {
		return "", fmt.Errorf("initializing %s data: %w", application.Name(), err)
	}
	model, err := application.Model()
	if err != nil {
		return "", fmt.Errorf("getting %s model: %w", application.Name(), err)
	}
	return appPaths.ModelFilePath(outputDir, model.SaveFileExtension()), nil
}
