package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/LachlanStuart/slingpy/internal/app"
	"github.com/LachlanStuart/slingpy/internal/paths"
	"github.com/LachlanStuart/slingpy/internal/runpolicy"
	"github.com/LachlanStuart/slingpy/internal/scheduler"
)

func newExecSingleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exec-single --app NAME [--key=value ...]",
		Short: "Run one application into its output directory (scheduler entry point)",
		Long: "Reconstructs the named application and runs it in this process, writing scores and " +
			"the model to --output_directory. Submitted jobs invoke this on the execution host.",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, rest, err := splitAppFlag(args)
			if err != nil {
				return err
			}
			opts, err := scheduler.DecodeArgs(rest)
			if err != nil {
				return err
			}
			if single, _ := opts[runpolicy.KeySingleRun].(bool); !single {
				return fmt.Errorf("exec-single requires --%s=true", runpolicy.KeySingleRun)
			}

			application, err := app.Default.New(name)
			if err != nil {
				return err
			}
			appPaths, err := paths.New(".")
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			res, err := runpolicy.NewLocal(application, appPaths).Run(ctx, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: model saved to %s\n", name, res.ModelPath)
			return nil
		},
	}
}

// splitAppFlag removes --app NAME (or --app=NAME) from args.
func splitAppFlag(args []string) (string, []string, error) {
	var name string
	var rest []string
	for i := 0; i < len(args); i++ {
		switch a := args[i]; {
		case a == "--app":
			if i+1 >= len(args) {
				return "", nil, fmt.Errorf("--app requires a value")
			}
			name = args[i+1]
			i++
		case strings.HasPrefix(a, "--app="):
			name = strings.TrimPrefix(a, "--app=")
		default:
			rest = append(rest, a)
		}
	}
	if name == "" {
		return "", nil, fmt.Errorf("--app is required")
	}
	return name, rest, nil
}
