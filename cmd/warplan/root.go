package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"warplan/internal/config"
	"warplan/internal/logging"
)

// app carries what the persistent flags resolve to.
type app struct {
	verbose    bool
	configPath string

	logger *zap.Logger
	cfg    config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop(), cfg: config.Default()}
	root := &cobra.Command{
		Use:   "warplan",
		Short: "Assign remaining war attacks to opponent bases",
		Long: `warplan reads a war snapshot (our attackers, their bases, the attacks
already made) and assigns every remaining attack to a base so that the
reward still obtainable is maximized.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(a.verbose)
			if err != nil {
				return err
			}
			a.logger = logger
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger.Debug("configuration loaded",
				zap.String("path", a.configPath),
				zap.Duration("solve_timeout", cfg.Planner.SolveTimeout),
				zap.Int("max_nodes", cfg.Planner.MaxNodes),
				zap.String("fallback", cfg.Planner.Fallback))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "planner config file (YAML)")

	root.AddCommand(newPlanCmd(a), newBatchCmd(a), newGenCmd())
	return root
}
