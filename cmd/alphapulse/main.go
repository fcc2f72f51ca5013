package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/newthinker/alphapulse/internal/config"
	"github.com/newthinker/alphapulse/internal/logger"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "alphapulse",
	Short: "AlphaPulse - AI-assisted market dashboard",
	Long: `AlphaPulse tracks a watchlist and an AI-discovered opportunity feed,
produces LLM trade theses per stock and raises opportunity alerts.
Without a market data key it runs entirely on mock data.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

// loadConfig reads --config when given, otherwise defaults plus the
// environment, and validates the result.
func loadConfig(log *zap.Logger) (*config.Config, error) {
	if cfgFile == "" {
		log.Debug("no config file specified, using defaults and environment")
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// commandLogger keeps one-shot commands quiet unless --debug is set.
func commandLogger() *zap.Logger {
	if debug {
		return logger.Must(true)
	}
	return zap.NewNop()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
