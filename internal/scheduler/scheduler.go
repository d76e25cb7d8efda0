// Package scheduler submits a single application run to an execution venue
// and blocks until it terminates, relaying what the run wrote to its
// standard streams.
package scheduler

import (
	"context"
	"errors"
	"time"
)

// ErrSubmit marks a failure to hand the job to the venue at all, as opposed
// to the job running and failing.
var ErrSubmit = errors.New("submitting job")

// DefaultEntrypoint is the command that runs a single application on the
// execution side.
var DefaultEntrypoint = []string{"sling", "exec-single"}

// Job is everything a venue needs to reconstruct and run an application.
type Job struct {
	App            string
	TimeLimitDays  int
	TimeLimitHours int
	NumCPUs        int
	MemLimitMB     int
	VirtualenvPath string
	ProjectDir     string
	OutputDir      string
	Args           map[string]any
}

func (j *Job) TimeLimit() time.Duration {
	return time.Duration(j.TimeLimitDays)*24*time.Hour + time.Duration(j.TimeLimitHours)*time.Hour
}

// Scheduler runs a job to completion. A job whose workload fails is not an
// error: its failure shows in the returned text and in the files it did not
// write. Errors are reserved for the venue itself being unusable.
type Scheduler interface {
	Execute(ctx context.Context, job *Job) (stdout, stderr string, err error)
}
