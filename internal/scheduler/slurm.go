package scheduler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Slurm submits jobs with `sbatch --wait --wrap` and reads the job's stream
// files back from the output directory once sbatch returns.
type Slurm struct {
	Sbatch     string
	Scancel    string
	Partition  string
	ExtraArgs  []string
	Entrypoint []string

	log *logrus.Entry
}

func NewSlurm(partition string, extraArgs []string, entrypoint []string) *Slurm {
	return &Slurm{
		Sbatch:     "sbatch",
		Scancel:    "scancel",
		Partition:  partition,
		ExtraArgs:  extraArgs,
		Entrypoint: entrypoint,
		log:        logrus.WithField("component", "slurm-scheduler"),
	}
}

// SlurmTime formats a time limit in sbatch's days-hours:minutes:seconds form.
func SlurmTime(days, hours int) string {
	days += hours / 24
	hours %= 24
	return fmt.Sprintf("%d-%02d:00:00", days, hours)
}

// BuildArgs returns the sbatch arguments for job, writing the job's streams
// to stdoutPath and stderrPath.
func (s *Slurm) BuildArgs(job *Job, name, stdoutPath, stderrPath string) ([]string, error) {
	script, err := ShellScript(job, s.Entrypoint)
	if err != nil {
		return nil, err
	}
	args := []string{
		"--wait",
		"--parsable",
		"--job-name=" + name,
		"--time=" + SlurmTime(job.TimeLimitDays, job.TimeLimitHours),
		fmt.Sprintf("--mem=%d", job.MemLimitMB),
		fmt.Sprintf("--cpus-per-task=%d", job.NumCPUs),
	}
	if s.Partition != "" {
		args = append(args, "--partition="+s.Partition)
	}
	args = append(args, s.ExtraArgs...)
	args = append(args,
		"--output="+stdoutPath,
		"--error="+stderrPath,
		"--wrap="+script,
	)
	return args, nil
}

func (s *Slurm) Execute(ctx context.Context, job *Job) (string, string, error) {
	if err := os.MkdirAll(job.OutputDir, 0o755); err != nil {
		return "", "", fmt.Errorf("creating output dir: %w", err)
	}
	id := uuid.New().String()[:8]
	name := "sling-" + id
	stdoutPath := filepath.Join(job.OutputDir, "slurm-"+id+".out")
	stderrPath := filepath.Join(job.OutputDir, "slurm-"+id+".err")

	args, err := s.BuildArgs(job, name, stdoutPath, stderrPath)
	if err != nil {
		return "", "", fmt.Errorf("building sbatch arguments: %w", err)
	}

	log := s.logger().WithFields(logrus.Fields{"app": job.App, "job": name})
	log.Debugf("sbatch %s", strings.Join(args, " "))

	var out, errOut bytes.Buffer
	cmd := exec.CommandContext(ctx, s.Sbatch, args...)
	cmd.Stdout = &out
	cmd.Stderr = &errOut
	runErr := cmd.Run()

	jobID := parseJobID(out.String())
	if jobID == "" {
		if runErr == nil {
			runErr = errors.New("no job id in sbatch output")
		}
		return "", "", fmt.Errorf("%w: sbatch: %s: %v", ErrSubmit, strings.TrimSpace(errOut.String()), runErr)
	}
	log = log.WithField("slurm-job-id", jobID)

	if ctx.Err() != nil {
		s.cancel(jobID, log)
		return "", "", fmt.Errorf("waiting for slurm job %s: %w", jobID, ctx.Err())
	}
	if runErr != nil {
		log.WithError(runErr).Warn("slurm job finished unsuccessfully")
	}

	stdout, err := readStream(stdoutPath)
	if err != nil {
		return "", "", err
	}
	stderr, err := readStream(stderrPath)
	if err != nil {
		return "", "", err
	}
	return stdout, stderr, nil
}

func (s *Slurm) cancel(jobID string, log *logrus.Entry) {
	if s.Scancel == "" {
		return
	}
	if out, err := exec.Command(s.Scancel, jobID).CombinedOutput(); err != nil {
		log.WithError(err).Errorf("scancel: %s", strings.TrimSpace(string(out)))
	}
}

func (s *Slurm) logger() *logrus.Entry {
	if s.log == nil {
		return logrus.WithField("component", "slurm-scheduler")
	}
	return s.log
}

// parseJobID extracts the id from `sbatch --parsable` output ("id" or "id;cluster").
func parseJobID(out string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(out), "\n")
	id, _, _ := strings.Cut(strings.TrimSpace(line), ";")
	if id == "" || strings.Trim(id, "0123456789") != "" {
		return ""
	}
	return id
}

func readStream(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading job stream: %w", err)
	}
	return string(data), nil
}
