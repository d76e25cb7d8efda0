package result

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// MetaFile is the name of the per-run summary inside an output directory.
const MetaFile = "meta.json"

func WriteRunMeta(outputDir string, meta *RunMeta) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling meta: %w", err)
	}
	return os.WriteFile(filepath.Join(outputDir, MetaFile), data, 0o644)
}

func ReadRunMeta(path string) (*RunMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading meta: %w", err)
	}
	var meta RunMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing meta: %w", err)
	}
	return &meta, nil
}

// FindRunMetas returns the paths of all run summaries under dir.
func FindRunMetas(dir string) ([]string, error) {
	var found []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && info.Name() == MetaFile {
			found = append(found, path)
		}
		return nil
	})
	return found, err
}
