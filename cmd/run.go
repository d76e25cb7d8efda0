package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/LachlanStuart/slingpy/internal/app"
	"github.com/LachlanStuart/slingpy/internal/config"
	"github.com/LachlanStuart/slingpy/internal/gitops"
	"github.com/LachlanStuart/slingpy/internal/paths"
	"github.com/LachlanStuart/slingpy/internal/report"
	"github.com/LachlanStuart/slingpy/internal/runner"
	"github.com/LachlanStuart/slingpy/internal/runpolicy"
	"github.com/LachlanStuart/slingpy/internal/scheduler"
)

var (
	flagApp         string
	flagRuns        int
	flagParallel    int
	flagLocal       bool
	flagMetricsFile string
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every configured application and report its scores",
		RunE:  runSweep,
	}
	cmd.Flags().StringVar(&flagApp, "app", "", "filter to a single application")
	cmd.Flags().IntVar(&flagRuns, "runs", 0, "override run count per application")
	cmd.Flags().IntVar(&flagParallel, "parallel", 0, "max concurrent remote runs (default from config)")
	cmd.Flags().BoolVar(&flagLocal, "local", false, "run in this process instead of on the scheduler")
	cmd.Flags().StringVar(&flagMetricsFile, "metrics-file", "", "write prometheus metrics to this file when done")
	return cmd
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if flagParallel > 0 {
		cfg.Parallel = flagParallel
	}
	if !flagLocal {
		if err := cfg.ValidateResources(); err != nil {
			return err
		}
	}

	appPaths, err := paths.New(cfg.ProjectDir)
	if err != nil {
		return err
	}
	sched, err := buildScheduler(cfg)
	if err != nil {
		return err
	}
	targets, err := buildTargets(cfg, filterApplications(cfg.Applications, flagApp), sched, appPaths)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return fmt.Errorf("no application matches %q", flagApp)
	}

	sweepDir, err := paths.CreateSweepDir(cfg.Results.Dir)
	if err != nil {
		return err
	}
	fmt.Printf("Sweep directory: %s\n", sweepDir)

	rev, err := gitops.Revision(appPaths.ProjectRoot)
	if err != nil {
		logrus.WithError(err).Debug("project revision unavailable")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, sweepErr := runner.Sweep(ctx, &runner.SweepOpts{
		SweepDir:    sweepDir,
		Targets:     targets,
		Parallel:    cfg.Parallel,
		GitRevision: rev,
	})

	if flagMetricsFile != "" {
		if err := prometheus.WriteToTextfile(flagMetricsFile, prometheus.DefaultGatherer); err != nil {
			logrus.WithError(err).Error("writing metrics file")
		}
	}

	fmt.Println("\n--- Results ---")
	if err := report.Generate(sweepDir, "table", os.Stdout); err != nil {
		return err
	}
	return sweepErr
}

func buildScheduler(cfg *config.Config) (scheduler.Scheduler, error) {
	entry := cfg.Scheduler.Entrypoint
	switch cfg.Scheduler.Kind {
	case config.SchedulerSlurm:
		s := scheduler.NewSlurm(cfg.Scheduler.Slurm.Partition, cfg.Scheduler.Slurm.ExtraArgs, entry)
		s.Sbatch = cfg.Scheduler.Slurm.Sbatch
		s.Scancel = cfg.Scheduler.Slurm.Scancel
		return s, nil
	case config.SchedulerDocker:
		return scheduler.NewDocker(cfg.Scheduler.Docker.Image, entry), nil
	case config.SchedulerProcess:
		return scheduler.NewProcess(entry), nil
	default:
		return nil, fmt.Errorf("unknown scheduler %q", cfg.Scheduler.Kind)
	}
}

func buildTargets(
	cfg *config.Config,
	apps []config.Application,
	sched scheduler.Scheduler,
	appPaths *paths.AppPaths,
) ([]runner.Target, error) {
	kind := runpolicy.KindRemote
	if flagLocal {
		kind = runpolicy.KindLocal
	}
	var opts []runpolicy.RemoteOption
	if cfg.Tag != "" {
		opts = append(opts, runpolicy.WithTag(cfg.Tag))
	}

	var targets []runner.Target
	for _, a := range apps {
		application, err := app.Default.New(a.Name)
		if err != nil {
			return nil, err
		}
		var resources app.Resources
		if kind == runpolicy.KindRemote {
			if resources, err = a.Resources.AppResources(); err != nil {
				return nil, fmt.Errorf("application %q: %w", a.Name, err)
			}
		}
		policy, err := runpolicy.New(kind, application, resources, sched, appPaths, opts...)
		if err != nil {
			return nil, err
		}
		runs := a.Runs
		if flagRuns > 0 {
			runs = flagRuns
		}
		targets = append(targets, runner.Target{
			App:     a.Name,
			Kind:    kind,
			Policy:  policy,
			Runs:    runs,
			Options: runpolicy.Options(a.Options),
		})
	}
	return targets, nil
}

func filterApplications(apps []config.Application, name string) []config.Application {
	if name == "" {
		return apps
	}
	var filtered []config.Application
	for _, a := range apps {
		if a.Name == name {
			filtered = append(filtered, a)
		}
	}
	return filtered
}
