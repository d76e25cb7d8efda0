package scheduler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/sirupsen/logrus"
)

// Process runs jobs as a shell child of the current process. It is the
// venue for development machines without a cluster.
type Process struct {
	Shell      string
	Entrypoint []string
	Env        []string

	log *logrus.Entry
}

func NewProcess(entrypoint []string) *Process {
	return &Process{
		Shell:      "sh",
		Entrypoint: entrypoint,
		log:        logrus.WithField("component", "process-scheduler"),
	}
}

func (p *Process) Execute(ctx context.Context, job *Job) (string, string, error) {
	if err := os.MkdirAll(job.OutputDir, 0o755); err != nil {
		return "", "", fmt.Errorf("creating output dir: %w", err)
	}
	script, err := ShellScript(job, p.Entrypoint)
	if err != nil {
		return "", "", fmt.Errorf("building job script: %w", err)
	}

	runCtx := ctx
	if limit := job.TimeLimit(); limit > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, limit)
		defer cancel()
	}

	shell := p.Shell
	if shell == "" {
		shell = "sh"
	}
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, shell, "-c", script)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Env = append(os.Environ(), p.Env...)

	log := p.logger().WithField("app", job.App)
	err = cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case ctx.Err() != nil:
		return "", "", fmt.Errorf("running job: %w", ctx.Err())
	case runCtx.Err() != nil:
		log.Warnf("job exceeded its time limit of %s and was killed", job.TimeLimit())
	case errors.As(err, &exitErr):
		log.Warnf("job exited with code %d", exitErr.ExitCode())
	default:
		return "", "", fmt.Errorf("%w: %v", ErrSubmit, err)
	}
	return stdout.String(), stderr.String(), nil
}

func (p *Process) logger() *logrus.Entry {
	if p.log == nil {
		return logrus.WithField("component", "process-scheduler")
	}
	return p.log
}
