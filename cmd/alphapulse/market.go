package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/newthinker/alphapulse/internal/app"
	"github.com/newthinker/alphapulse/internal/core"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 1)

	upStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	downStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	hotStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true)
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

var marketCmd = &cobra.Command{
	Use:   "market",
	Short: "Print the watchlist and opportunity snapshot",
	RunE:  runMarket,
}

func init() {
	rootCmd.AddCommand(marketCmd)
}

func runMarket(cmd *cobra.Command, args []string) error {
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

	data := stack.Market.FetchMarketData(cmd.Context())
	renderMarket(cmd.OutOrStdout(), data, stack.Market.Live())
	return nil
}

func renderMarket(w io.Writer, data core.MarketData, live bool) {
	source := "mock data"
	if live {
		source = "live data"
	}
	fmt.Fprintln(w, titleStyle.Render("AlphaPulse")+dimStyle.Render(source))
	fmt.Fprintln(w, sectionStyle.Render(quoteTable("Watchlist", data.Watchlist)))
	fmt.Fprintln(w, sectionStyle.Render(quoteTable("AI Opportunities", data.Opportunities)))
}

func quoteTable(title string, quotes []core.Quote) string {
	var sb strings.Builder
	sb.WriteString(lipgloss.NewStyle().Bold(true).Render(title))
	if len(quotes) == 0 {
		sb.WriteString("\n" + dimStyle.Render("no data"))
		return sb.String()
	}
	for _, q := range quotes {
		sb.WriteString("\n")
		sb.WriteString(quoteLine(q))
	}
	return sb.String()
}

func quoteLine(q core.Quote) string {
	style := upStyle
	arrow := "▲"
	if q.Trend == core.TrendDown {
		style = downStyle
		arrow = "▼"
	}

	line := fmt.Sprintf("%-6s %10.2f  %s  signal %2d",
		q.Symbol,
		q.Price,
		style.Render(fmt.Sprintf("%s %+6.2f%%", arrow, q.ChangePercent)),
		q.SignalStrength,
	)
	if q.IsHot {
		line += " " + hotStyle.Render("HOT")
	}
	return line
}
