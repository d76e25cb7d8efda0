package docker_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/LachlanStuart/slingpy/internal/docker"
)

func TestRunContainer(t *testing.T) {
	if os.Getenv("SLING_DOCKER_TESTS") == "" {
		t.Skip("set SLING_DOCKER_TESTS=1 to run Docker tests")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	outDir := t.TempDir()
	result, err := docker.RunContainer(ctx, &docker.RunOpts{
		Image:   "alpine:latest",
		Command: []string{"sh", "-c", "echo hello > " + outDir + "/output.txt; echo out; echo err >&2"},
		Mounts:  []docker.Mount{{Source: outDir, Target: outDir}},
		Timeout: 30 * time.Second,
	})
	if err != nil {
		t.Fatalf("RunContainer: %v", err)
	}
	if result.ExitCode != 0 {
		t.Errorf("exit code: got %d, want 0", result.ExitCode)
	}
	if result.TimedOut {
		t.Error("unexpected timeout")
	}
	if result.Stdout != "out\n" {
		t.Errorf("stdout: got %q, want %q", result.Stdout, "out\n")
	}
	if result.Stderr != "err\n" {
		t.Errorf("stderr: got %q, want %q", result.Stderr, "err\n")
	}
	content, err := os.ReadFile(filepath.Join(outDir, "output.txt"))
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if string(content) != "hello\n" {
		t.Errorf("output: got %q, want %q", content, "hello\n")
	}
}

func TestRunContainerTimeout(t *testing.T) {
	if os.Getenv("SLING_DOCKER_TESTS") == "" {
		t.Skip("set SLING_DOCKER_TESTS=1 to run Docker tests")
	}
	result, err := docker.RunContainer(context.Background(), &docker.RunOpts{
		Image:   "alpine:latest",
		Command: []string{"sleep", "300"},
		Timeout: 2 * time.Second,
	})
	if err != nil {
		t.Fatalf("RunContainer: %v", err)
	}
	if !result.TimedOut {
		t.Error("expected timeout")
	}
	if result.ExitCode != docker.ExitCodeTimeout {
		t.Errorf("exit code: got %d, want %d", result.ExitCode, docker.ExitCodeTimeout)
	}
}

func TestRunContainerCrash(t *testing.T) {
	if os.Getenv("SLING_DOCKER_TESTS") == "" {
		t.Skip("set SLING_DOCKER_TESTS=1 to run Docker tests")
	}
	result, err := docker.RunContainer(context.Background(), &docker.RunOpts{
		Image:   "alpine:latest",
		Command: []string{"sh", "-c", "echo dying >&2; exit 1"},
		Timeout: 10 * time.Second,
	})
	if err != nil {
		t.Fatalf("RunContainer: %v", err)
	}
	if result.ExitCode != 1 {
		t.Errorf("exit code: got %d, want 1", result.ExitCode)
	}
	if result.Stderr != "dying\n" {
		t.Errorf("stderr: got %q, want %q", result.Stderr, "dying\n")
	}
}
