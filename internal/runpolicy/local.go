package runpolicy

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/LachlanStuart/slingpy/internal/app"
	"github.com/LachlanStuart/slingpy/internal/metricdict"
	"github.com/LachlanStuart/slingpy/internal/paths"
	"github.com/LachlanStuart/slingpy/internal/result"
)

// Local runs an application in the calling goroutine and persists its
// scores and model to the output directory. The execution side of a
// remote run uses it too, so both write the same layout.
type Local struct {
	app   app.Application
	paths *paths.AppPaths
	log   *logrus.Entry
}

func NewLocal(application app.Application, appPaths *paths.AppPaths) *Local {
	return &Local{
		app:   application,
		paths: appPaths,
		log:   logrus.WithField("component", "local-run-policy"),
	}
}

func (l *Local) IsAsync() bool { return false }

func (l *Local) Run(ctx context.Context, opts Options) (*result.RunResult, error) {
	outputDir, err := opts.OutputDirectory()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}
	if err := l.app.InitData(); err != nil {
		return nil, fmt.Errorf("initializing %s data: %w", l.app.Name(), err)
	}

	l.log.WithFields(logrus.Fields{"app": l.app.Name(), "output-dir": outputDir}).Info("running application")
	outcome, err := l.app.Run(ctx, opts.Clone())
	if err != nil {
		return nil, fmt.Errorf("running %s: %w", l.app.Name(), err)
	}

	if err := metricdict.Save(l.paths.EvalScoreDictPath(outputDir), outcome.ValidationScores); err != nil {
		return nil, fmt.Errorf("saving validation scores: %w", err)
	}
	if err := metricdict.Save(l.paths.TestScoreDictPath(outputDir), outcome.TestScores); err != nil {
		return nil, fmt.Errorf("saving test scores: %w", err)
	}

	model := outcome.Model
	if model == nil {
		if model, err = l.app.Model(); err != nil {
			return nil, fmt.Errorf("getting %s model: %w", l.app.Name(), err)
		}
	}
	modelPath := l.paths.ModelFilePath(outputDir, model.SaveFileExtension())
	if err := model.Save(modelPath); err != nil {
		return nil, fmt.Errorf("saving model: %w", err)
	}

	validation := outcome.ValidationScores
	if validation == nil {
		validation = metricdict.Dict{}
	}
	test := outcome.TestScores
	if test == nil {
		test = metricdict.Dict{}
	}
	return &result.RunResult{
		ValidationScores: validation,
		TestScores:       test,
		ModelPath:        modelPath,
	}, nil
}
