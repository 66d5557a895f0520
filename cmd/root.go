package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/signalnine/runstats/internal/config"
	"github.com/signalnine/runstats/internal/logging"
)

var (
	cfgFile     string
	flagVerbose bool
	logger      = zap.NewNop()
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "runstats",
		Short:        "Statistical comparison of training-run logs and resource monitoring",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.New(flagVerbose)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	root.AddCommand(newAnalyzeCmd())
	root.AddCommand(newSummarizeCmd())
	root.AddCommand(newPlotCmd())
	root.AddCommand(newReportCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newValidateCmd())
	root.AddCommand(newMonitorCmd())
	return root
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, err
	}
	logger.Debug("config loaded",
		zap.String("path", cfgFile),
		zap.Int("runs", len(cfg.Runs)),
		zap.Strings("labels", cfg.Labels()))
	return cfg, nil
}
