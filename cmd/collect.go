package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/LachlanStuart/slingpy/internal/app"
	"github.com/LachlanStuart/slingpy/internal/config"
	"github.com/LachlanStuart/slingpy/internal/paths"
	"github.com/LachlanStuart/slingpy/internal/result"
	"github.com/LachlanStuart/slingpy/internal/runpolicy"
)

func newCollectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "collect [sweep-dir]",
		Short: "Reload run results from output directories and rewrite run summaries",
		Long: "Re-reads the score files and model path of every run in a sweep. Useful after " +
			"jobs that outlived the submitting process have finished.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := resolveSweepDir(args)
			if err != nil {
				return err
			}
			projectDir := "."
			if cfg, err := config.Load(cfgFile); err == nil {
				projectDir = cfg.ProjectDir
			}
			appPaths, err := paths.New(projectDir)
			if err != nil {
				return err
			}
			updated, failed, err := collectSweep(dir, app.Default, appPaths)
			if err != nil {
				return err
			}
			fmt.Printf("Collected %d runs (%d still without results)\n", updated, failed)
			return nil
		},
	}
}

// collectSweep re-hydrates every run summary under dir in place.
func collectSweep(dir string, registry *app.Registry, appPaths *paths.AppPaths) (int, int, error) {
	metaPaths, err := result.FindRunMetas(dir)
	if err != nil {
		return 0, 0, fmt.Errorf("scanning %s: %w", dir, err)
	}
	var updated, failed int
	for _, p := range metaPaths {
		meta, err := result.ReadRunMeta(p)
		if err != nil {
			logrus.WithError(err).WithField("path", p).Warn("skipping unreadable run summary")
			continue
		}
		outputDir := meta.OutputDir
		if outputDir == "" {
			outputDir = filepath.Dir(p)
		}
		application, err := registry.New(meta.App)
		if err != nil {
			return updated, failed, err
		}
		res, err := runpolicy.Hydrate(application, appPaths, outputDir)
		if err != nil {
			meta.Error = err.Error()
			failed++
		} else {
			meta.Result = res
			meta.Error = ""
		}
		if err := result.WriteRunMeta(filepath.Dir(p), meta); err != nil {
			return updated, failed, err
		}
		updated++
	}
	return updated, failed, nil
}
