package gitops_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/LachlanStuart/slingpy/internal/gitops"
)

func createTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cmds := [][]string{
		{"git", "init"},
		{"git", "config", "user.email", "test@test.com"},
		{"git", "config", "user.name", "Test"},
	}
	for _, args := range cmds {
		c := exec.Command(args[0], args[1:]...)
		c.Dir = dir
		if out, err := c.CombinedOutput(); err != nil {
			t.Fatalf("%v: %s", err, out)
		}
	}
	os.WriteFile(filepath.Join(dir, "hello.txt"), []byte("hello"), 0o644)
	for _, args := range [][]string{
		{"git", "add", "."},
		{"git", "commit", "-m", "initial"},
	} {
		c := exec.Command(args[0], args[1:]...)
		c.Dir = dir
		if out, err := c.CombinedOutput(); err != nil {
			t.Fatalf("%v: %s", err, out)
		}
	}
	return dir
}

func TestRevisionClean(t *testing.T) {
	repo := createTestRepo(t)
	rev, err := gitops.Revision(repo)
	if err != nil {
		t.Fatalf("Revision: %v", err)
	}
	if len(rev) != 40 {
		t.Errorf("expected a full commit hash, got %q", rev)
	}
}

func TestRevisionDirty(t *testing.T) {
	repo := createTestRepo(t)
	os.WriteFile(filepath.Join(repo, "hello.txt"), []byte("goodbye"), 0o644)
	rev, err := gitops.Revision(repo)
	if err != nil {
		t.Fatalf("Revision: %v", err)
	}
	if !strings.HasSuffix(rev, "-dirty") {
		t.Errorf("expected -dirty suffix, got %q", rev)
	}
}

func TestIsDirtyUntracked(t *testing.T) {
	repo := createTestRepo(t)
	dirty, err := gitops.IsDirty(repo)
	if err != nil {
		t.Fatalf("IsDirty: %v", err)
	}
	if dirty {
		t.Error("fresh repo should be clean")
	}
	os.WriteFile(filepath.Join(repo, "new.txt"), []byte("new"), 0o644)
	dirty, err = gitops.IsDirty(repo)
	if err != nil {
		t.Fatalf("IsDirty: %v", err)
	}
	if !dirty {
		t.Error("untracked file should make the tree dirty")
	}
}

func TestRevisionNotARepo(t *testing.T) {
	if _, err := gitops.Revision(t.TempDir()); err == nil {
		t.Error("expected error outside a git repository")
	}
}
