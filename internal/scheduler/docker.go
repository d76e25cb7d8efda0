package scheduler

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/LachlanStuart/slingpy/internal/docker"
)

// Docker runs jobs in a container of Image. The output, project and
// virtualenv directories are bind-mounted at their host paths so the job
// sees the same paths as the submitting process.
type Docker struct {
	Image      string
	Entrypoint []string
	UserID     string

	run func(context.Context, *docker.RunOpts) (*docker.RunResult, error)
	log *logrus.Entry
}

func NewDocker(image string, entrypoint []string) *Docker {
	return &Docker{
		Image:      image,
		Entrypoint: entrypoint,
		UserID:     fmt.Sprintf("%d:%d", os.Getuid(), os.Getgid()),
		run:        docker.RunContainer,
		log:        logrus.WithField("component", "docker-scheduler"),
	}
}

// RunOpts translates job into container options.
func (d *Docker) RunOpts(job *Job) (*docker.RunOpts, error) {
	script, err := ShellScript(job, d.Entrypoint)
	if err != nil {
		return nil, err
	}
	mounts := []docker.Mount{{Source: job.OutputDir, Target: job.OutputDir}}
	if job.ProjectDir != "" && job.ProjectDir != job.OutputDir {
		mounts = append(mounts, docker.Mount{Source: job.ProjectDir, Target: job.ProjectDir, ReadOnly: true})
	}
	if job.VirtualenvPath != "" {
		mounts = append(mounts, docker.Mount{Source: job.VirtualenvPath, Target: job.VirtualenvPath, ReadOnly: true})
	}
	return &docker.RunOpts{
		Image:       d.Image,
		Command:     []string{"sh", "-c", script},
		WorkingDir:  job.ProjectDir,
		Timeout:     job.TimeLimit(),
		Mounts:      mounts,
		CPULimit:    float64(job.NumCPUs),
		MemoryLimit: int64(job.MemLimitMB) << 20,
		UserID:      d.UserID,
		Labels:      map[string]string{"sling.app": job.App},
	}, nil
}

func (d *Docker) Execute(ctx context.Context, job *Job) (string, string, error) {
	if err := os.MkdirAll(job.OutputDir, 0o755); err != nil {
		return "", "", fmt.Errorf("creating output dir: %w", err)
	}
	opts, err := d.RunOpts(job)
	if err != nil {
		return "", "", fmt.Errorf("building container options: %w", err)
	}
	run := d.run
	if run == nil {
		run = docker.RunContainer
	}
	res, err := run(ctx, opts)
	if err != nil {
		return "", "", fmt.Errorf("running container job: %w", err)
	}
	if res.ExitCode != 0 {
		d.logger().WithFields(logrus.Fields{"app": job.App, "exit-code": res.ExitCode, "timed-out": res.TimedOut}).
			Warn("container job finished unsuccessfully")
	}
	return res.Stdout, res.Stderr, nil
}

func (d *Docker) logger() *logrus.Entry {
	if d.log == nil {
		return logrus.WithField("component", "docker-scheduler")
	}
	return d.log
}
