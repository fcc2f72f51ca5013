package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/newthinker/alphapulse/internal/app"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze SYMBOL",
	Short: "Print a quote and trade thesis for a symbol as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	symbol := strings.ToUpper(strings.TrimSpace(args[0]))
	if symbol == "" {
		return fmt.Errorf("symbol is required")
	}

	log := commandLogger()
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	stack, err := app.Build(context.Background(), cfg, log, nil)
	if err != nil {
		return fmt.Errorf("building app: %w", err)
	}

	quote, insight := stack.App.Analyze(cmd.Context(), symbol)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"quote":   quote,
		"insight": insight,
	})
}
