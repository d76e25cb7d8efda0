// Package gitops records which revision of the project a sweep ran against.
package gitops

import (
	"fmt"
	"os/exec"
	"strings"
)

// Revision returns the commit checked out in dir, suffixed with "-dirty"
// when the working tree has uncommitted changes.
func Revision(dir string) (string, error) {
	head := exec.Command("git", "rev-parse", "HEAD")
	head.Dir = dir
	out, err := head.Output()
	if err != nil {
		return "", fmt.Errorf("git rev-parse HEAD: %w", err)
	}
	rev := strings.TrimSpace(string(out))

	dirty, err := IsDirty(dir)
	if err != nil {
		return "", err
	}
	if dirty {
		rev += "-dirty"
	}
	return rev, nil
}

// IsDirty reports whether dir has staged, unstaged or untracked changes.
func IsDirty(dir string) (bool, error) {
	status := exec.Command("git", "status", "--porcelain")
	status.Dir = dir
	out, err := status.CombinedOutput()
	if err != nil {
		return false, fmt.Errorf("git status: %s: %w", out, err)
	}
	return len(strings.TrimSpace(string(out))) > 0, nil
}
