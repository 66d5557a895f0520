package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/signalnine/runstats/internal/report"
	"github.com/signalnine/runstats/internal/result"
)

var flagFormat string

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [run-dir]",
		Short: "Re-render the results of a stored analysis",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			var arg string
			if len(args) > 0 {
				arg = args[0]
			}
			runDir, err := result.ResolveRunDir(cfg.Output.Dir, arg)
			if err != nil {
				return err
			}
			return report.Generate(runDir, flagFormat, os.Stdout)
		},
	}
	cmd.Flags().StringVar(&flagFormat, "format", "table", "output format (table, markdown, json, csv)")
	return cmd
}
