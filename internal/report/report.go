package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"

	"github.com/LachlanStuart/slingpy/internal/metricdict"
	"github.com/LachlanStuart/slingpy/internal/result"
)

type AppSummary struct {
	Name     string             `json:"name"`
	Runs     int                `json:"runs"`
	Failed   int                `json:"failed"`
	MeanVal  map[string]float64 `json:"mean_validation_scores"`
	MeanTest map[string]float64 `json:"mean_test_scores"`
}

// Generate reads the run summaries under sweepDir and writes per-application
// means of every scalar score.
func Generate(sweepDir, format string, w io.Writer) error {
	metas, err := collectMetas(sweepDir)
	if err != nil {
		return err
	}

	summaries := aggregate(metas)

	switch format {
	case "markdown":
		return writeMarkdown(summaries, w)
	case "json":
		return writeJSON(summaries, w)
	default:
		return writeTable(summaries, w)
	}
}

func collectMetas(sweepDir string) ([]*result.RunMeta, error) {
	found, err := result.FindRunMetas(sweepDir)
	if err != nil {
		return nil, err
	}
	metas := make([]*result.RunMeta, 0, len(found))
	for _, path := range found {
		meta, err := result.ReadRunMeta(path)
		if err != nil {
			logrus.WithError(err).Warnf("skipping %s", path)
			continue
		}
		metas = append(metas, meta)
	}
	return metas, nil
}

type accum struct {
	count, sum map[string]float64
}

func newAccum() accum {
	return accum{count: map[string]float64{}, sum: map[string]float64{}}
}

func (a accum) add(d metricdict.Dict) {
	for name := range d {
		if v, ok := d.Scalar(name); ok {
			a.sum[name] += v
			a.count[name]++
		}
	}
}

func (a accum) means() map[string]float64 {
	out := make(map[string]float64, len(a.sum))
	for name, s := range a.sum {
		out[name] = s / a.count[name]
	}
	return out
}

func aggregate(metas []*result.RunMeta) []AppSummary {
	type byApp struct {
		runs, failed int
		val, test    accum
	}
	apps := map[string]*byApp{}

	for _, m := range metas {
		a, ok := apps[m.App]
		if !ok {
			a = &byApp{val: newAccum(), test: newAccum()}
			apps[m.App] = a
		}
		a.runs++
		if m.Failed() {
			a.failed++
			continue
		}
		a.val.add(m.Result.ValidationScores)
		a.test.add(m.Result.TestScores)
	}

	var summaries []AppSummary
	for name, a := range apps {
		summaries = append(summaries, AppSummary{
			Name:     name,
			Runs:     a.runs,
			Failed:   a.failed,
			MeanVal:  a.val.means(),
			MeanTest: a.test.means(),
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Name < summaries[j].Name
	})
	return summaries
}

// metricColumns lists every metric seen, validation first.
func metricColumns(summaries []AppSummary) []string {
	seen := map[string]bool{}
	var val, test []string
	for _, s := range summaries {
		for name := range s.MeanVal {
			if col := "val/" + name; !seen[col] {
				seen[col] = true
				val = append(val, col)
			}
		}
		for name := range s.MeanTest {
			if col := "test/" + name; !seen[col] {
				seen[col] = true
				test = append(test, col)
			}
		}
	}
	sort.Strings(val)
	sort.Strings(test)
	return append(val, test...)
}

func cell(s AppSummary, col string) string {
	split, name, _ := strings.Cut(col, "/")
	m := s.MeanVal
	if split == "test" {
		m = s.MeanTest
	}
	v, ok := m[name]
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%.4f", v)
}

func writeTable(summaries []AppSummary, w io.Writer) error {
	cols := metricColumns(summaries)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	header := append([]string{"APP", "RUNS", "FAILED"}, cols...)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(header, "\t")))
	fmt.Fprintln(tw, strings.Repeat("-", 16*len(header)))
	for _, s := range summaries {
		row := []string{s.Name, fmt.Sprint(s.Runs), fmt.Sprint(s.Failed)}
		for _, c := range cols {
			row = append(row, cell(s, c))
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func writeMarkdown(summaries []AppSummary, w io.Writer) error {
	cols := metricColumns(summaries)
	header := append([]string{"App", "Runs", "Failed"}, cols...)
	fmt.Fprintf(w, "| %s |\n", strings.Join(header, " | "))
	fmt.Fprintf(w, "|%s\n", strings.Repeat("---|", len(header)))
	for _, s := range summaries {
		row := []string{s.Name, fmt.Sprint(s.Runs), fmt.Sprint(s.Failed)}
		for _, c := range cols {
			row = append(row, cell(s, c))
		}
		fmt.Fprintf(w, "| %s |\n", strings.Join(row, " | "))
	}
	return nil
}

func writeJSON(summaries []AppSummary, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summaries)
}
