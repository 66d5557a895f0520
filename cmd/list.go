package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/signalnine/runstats/internal/dataset"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured runs and metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			fmt.Printf("Runs (%s):\n", cfg.Condition)
			for _, r := range cfg.Runs {
				run, err := dataset.Load(r.File, r.Label, zap.NewNop())
				switch {
				case errors.Is(err, fs.ErrNotExist):
					fmt.Printf("  - %s [%s] missing\n", r.File, r.Label)
				case err != nil:
					fmt.Printf("  - %s [%s] unreadable: %v\n", r.File, r.Label, err)
				default:
					fmt.Printf("  - %s [%s] %d rows\n", r.File, r.Label, run.Len())
				}
			}
			fmt.Println("\nMetrics:")
			for _, m := range cfg.Metrics {
				fmt.Printf("  - %s\n", m)
			}
			if len(cfg.Exclude) > 0 {
				fmt.Println("\nExcluded:")
				for _, m := range cfg.Exclude {
					fmt.Printf("  - %s\n", m)
				}
			}
			return nil
		},
	}
}
