// Package app defines the runnable applications that run policies execute.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LachlanStuart/slingpy/internal/metricdict"
)

// Model is the trainable artifact an application produces.
type Model interface {
	// SaveFileExtension is the extension (without dot) of the persisted model file.
	SaveFileExtension() string
	Save(path string) error
}

// Outcome holds the scores an application computed in a single run.
// Model is the model that run produced; when nil the application's
// Model() is saved instead.
type Outcome struct {
	ValidationScores metricdict.Dict
	TestScores       metricdict.Dict
	Model            Model
}

// Application is one unit of training/evaluation work.
type Application interface {
	Name() string
	// InitData loads the application's data dependencies. Calling it more
	// than once is a no-op.
	InitData() error
	// Model returns the application's model. InitData must have been called.
	Model() (Model, error)
	Run(ctx context.Context, opts map[string]any) (*Outcome, error)
}

// Resources describes what a remote execution of an application may use.
type Resources struct {
	TimeLimitDays  int
	TimeLimitHours int
	MemLimitMB     int
	NumCPUs        int
	VirtualenvPath string
}

var ErrInvalidResources = errors.New("invalid resources")

func (r Resources) Validate() error {
	switch {
	case r.TimeLimitDays < 0 || r.TimeLimitHours < 0:
		return fmt.Errorf("%w: negative time limit (%dd %dh)", ErrInvalidResources, r.TimeLimitDays, r.TimeLimitHours)
	case r.TimeLimitDays == 0 && r.TimeLimitHours == 0:
		return fmt.Errorf("%w: time limit must be positive", ErrInvalidResources)
	case r.MemLimitMB <= 0:
		return fmt.Errorf("%w: mem limit must be positive, got %d MB", ErrInvalidResources, r.MemLimitMB)
	case r.NumCPUs <= 0:
		return fmt.Errorf("%w: cpu count must be positive, got %d", ErrInvalidResources, r.NumCPUs)
	}
	return nil
}

func (r Resources) TimeLimit() time.Duration {
	return time.Duration(r.TimeLimitDays)*24*time.Hour + time.Duration(r.TimeLimitHours)*time.Hour
}
