// Package paths computes the canonical locations of a run's artifacts.
// Every function here is a pure function of its arguments.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	evalScoreFile = "eval_score.json"
	testScoreFile = "test_score.json"
	modelFileBase = "model"
)

// AppPaths resolves artifact locations for applications rooted at ProjectRoot.
type AppPaths struct {
	ProjectRoot string
}

func New(projectRoot string) (*AppPaths, error) {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}
	return &AppPaths{ProjectRoot: abs}, nil
}

func (p *AppPaths) EvalScoreDictPath(outputDir string) string {
	return filepath.Join(outputDir, evalScoreFile)
}

func (p *AppPaths) TestScoreDictPath(outputDir string) string {
	return filepath.Join(outputDir, testScoreFile)
}

// ModelFilePath returns outputDir/model.<extension>. A leading dot on
// extension is tolerated.
func (p *AppPaths) ModelFilePath(outputDir, extension string) string {
	ext := strings.TrimPrefix(extension, ".")
	if ext == "" {
		return filepath.Join(outputDir, modelFileBase)
	}
	return filepath.Join(outputDir, modelFileBase+"."+ext)
}

// RunDir is the output directory of the index-th run of app inside a sweep.
func RunDir(sweepDir, app string, index int) string {
	return filepath.Join(sweepDir, "runs", app, fmt.Sprintf("run-%d", index))
}

// CreateSweepDir creates baseDir/sweeps/<timestamp> and points baseDir/latest at it.
func CreateSweepDir(baseDir string) (string, error) {
	stamp := time.Now().UTC().Format("2006-01-02T15-04-05")
	sweepDir, err := filepath.Abs(filepath.Join(baseDir, "sweeps", stamp))
	if err != nil {
		return "", fmt.Errorf("resolving sweep dir: %w", err)
	}
	if err := os.MkdirAll(sweepDir, 0o755); err != nil {
		return "", fmt.Errorf("creating sweep dir: %w", err)
	}
	latest := filepath.Join(baseDir, "latest")
	os.Remove(latest)
	if err := os.Symlink(sweepDir, latest); err != nil {
		return "", fmt.Errorf("creating latest symlink: %w", err)
	}
	return sweepDir, nil
}
