package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/copyleftdev/heuristics/internal/logging"
)

var (
	logLevel  string
	logFormat string

	logger       *logging.Logger
	engineLogger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "heur",
	Short: "Metaheuristic search over benchmark objectives",
	Long: `heur runs shoot-and-go, fast simulated annealing, genetic optimization
and mayfly searches over the TSP grid and De Jong objectives, and reports
reliability and the expected number of evaluations to the optimum.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.NewLogger(&logging.Config{
			Level:  logLevel,
			Format: logFormat,
			Output: "stderr",
		})
		if err != nil {
			return err
		}
		logger = l.WithField("command", cmd.Name())
		engineLogger = logging.NewZapLogger(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (json, text)")
}
