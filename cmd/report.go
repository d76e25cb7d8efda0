package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/LachlanStuart/slingpy/internal/config"
	"github.com/LachlanStuart/slingpy/internal/report"
)

var flagFormat string

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [sweep-dir]",
		Short: "Summarize scores from a sweep",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := resolveSweepDir(args)
			if err != nil {
				return err
			}
			return report.Generate(dir, flagFormat, os.Stdout)
		},
	}
	cmd.Flags().StringVar(&flagFormat, "format", "table", "output format (table, markdown, json)")
	return cmd
}

// resolveSweepDir returns the explicit argument or the latest sweep under
// the configured results directory.
func resolveSweepDir(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return "", err
	}
	latest := filepath.Join(cfg.Results.Dir, "latest")
	if _, err := os.Stat(latest); err != nil {
		return "", fmt.Errorf("no sweep directory given and %s not found", latest)
	}
	return latest, nil
}
