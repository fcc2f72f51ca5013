package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/newthinker/alphapulse/internal/app"
)

var searchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Look up tickers by symbol or company name",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

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

	hits := stack.Search.SearchStocks(cmd.Context(), query)
	out := cmd.OutOrStdout()
	if len(hits) == 0 {
		fmt.Fprintln(out, dimStyle.Render("no matches"))
		return nil
	}
	for _, h := range hits {
		fmt.Fprintf(out, "%-8s %s\n", h.Ticker, h.Name)
	}
	return nil
}
