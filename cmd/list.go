package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/LachlanStuart/slingpy/internal/app"
	"github.com/LachlanStuart/slingpy/internal/config"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured and registered applications",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tRUNS\tTIME\tMEM\tCPUS\tREGISTERED")
			configured := map[string]bool{}
			for _, a := range cfg.Applications {
				configured[a.Name] = true
				_, regErr := app.Default.New(a.Name)
				fmt.Fprintf(w, "%s\t%d\t%dd%dh\t%s\t%d\t%t\n",
					a.Name, a.Runs,
					a.Resources.TimeLimitDays, a.Resources.TimeLimitHours,
					a.Resources.MemLimit, a.Resources.NumCPUs,
					regErr == nil)
			}
			for _, name := range app.Default.Names() {
				if !configured[name] {
					fmt.Fprintf(w, "%s\t-\t-\t-\t-\ttrue\n", name)
				}
			}
			return w.Flush()
		},
	}
}
