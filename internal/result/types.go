// Package result holds the values a run produces and their on-disk summaries.
package result

import "github.com/LachlanStuart/slingpy/internal/metricdict"

// RunResult is the outcome of one application run. It is built once at the
// end of a successful run and not modified afterwards.
type RunResult struct {
	ValidationScores metricdict.Dict `json:"validation_scores"`
	TestScores       metricdict.Dict `json:"test_scores"`
	// ModelPath is where the run persisted its model. The file may be
	// missing if the run failed before saving it.
	ModelPath string `json:"model_path"`
}

// RunMeta summarizes a run inside a sweep.
type RunMeta struct {
	App         string     `json:"app"`
	Run         int        `json:"run"`
	Policy      string     `json:"policy"`
	OutputDir   string     `json:"output_dir"`
	DurationS   float64    `json:"duration_s"`
	GitRevision string     `json:"git_revision,omitempty"`
	Result      *RunResult `json:"result,omitempty"`
	Error       string     `json:"error,omitempty"`
}

func (m *RunMeta) Failed() bool {
	return m.Error != "" || m.Result == nil
}
