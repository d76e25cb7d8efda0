package report_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LachlanStuart/slingpy/internal/metricdict"
	"github.com/LachlanStuart/slingpy/internal/paths"
	"github.com/LachlanStuart/slingpy/internal/report"
	"github.com/LachlanStuart/slingpy/internal/result"
)

func writeSweep(t *testing.T) string {
	t.Helper()
	sweepDir := t.TempDir()
	ok := func(auc float64) *result.RunResult {
		return &result.RunResult{
			ValidationScores: metricdict.Dict{"auc": auc},
			TestScores:       metricdict.Dict{"auc": auc - 0.1, "curve": []any{0.1, 0.2}},
		}
	}
	metas := []*result.RunMeta{
		{App: "app-a", Run: 1, Result: ok(0.9)},
		{App: "app-a", Run: 2, Result: ok(0.7)},
		{App: "app-b", Run: 1, Result: ok(0.6)},
		{App: "app-b", Run: 2, Error: "loading validation scores: no such file"},
	}
	for _, m := range metas {
		require.NoError(t, result.WriteRunMeta(paths.RunDir(sweepDir, m.App, m.Run), m))
	}
	return sweepDir
}

func TestGenerateTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.Generate(writeSweep(t), "table", &buf))
	output := buf.String()
	assert.Contains(t, output, "app-a")
	assert.Contains(t, output, "app-b")
	assert.Contains(t, output, "VAL/AUC")
	assert.Contains(t, output, "0.8000")
	assert.NotContains(t, output, "curve", "array metrics are not averaged")
}

func TestGenerateMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.Generate(writeSweep(t), "markdown", &buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "| App | Runs | Failed | val/auc | test/auc |", lines[0])
	assert.Equal(t, "| app-b | 2 | 1 | 0.6000 | 0.5000 |", lines[3])
}

func TestGenerateJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.Generate(writeSweep(t), "json", &buf))
	var summaries []report.AppSummary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &summaries))
	require.Len(t, summaries, 2)
	assert.Equal(t, "app-a", summaries[0].Name)
	assert.Equal(t, 2, summaries[0].Runs)
	assert.Equal(t, 0, summaries[0].Failed)
	assert.InDelta(t, 0.8, summaries[0].MeanVal["auc"], 1e-9)
	assert.InDelta(t, 0.7, summaries[0].MeanTest["auc"], 1e-9)
	assert.Equal(t, 1, summaries[1].Failed)
}
