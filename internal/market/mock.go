package market

import (
	"fmt"
	"strings"

	"github.com/newthinker/alphapulse/internal/core"
)

// Tracked symbols for the two dashboard lists.
var (
	WatchlistSymbols   = []string{"NVDA", "CEG", "MU", "AMD", "AVGO", "PLTR"}
	OpportunitySymbols = []string{"QBTS", "OKLO", "RGTI", "IONQ", "QUBT"}
)

var mockWatchlist = []core.Quote{
	{Symbol: "NVDA", Name: "NVIDIA Corp", Price: 135.40, Change: 3.20, ChangePercent: 2.4, Trend: core.TrendUp, Sector: "Technology", IsHot: true, SignalStrength: 92},
	{Symbol: "CEG", Name: "Constellation Energy", Price: 182.10, Change: 5.45, ChangePercent: 3.1, Trend: core.TrendUp, Sector: "Utilities", IsHot: false, SignalStrength: 85},
	{Symbol: "MU", Name: "Micron Technology", Price: 98.75, Change: -1.20, ChangePercent: -1.2, Trend: core.TrendDown, Sector: "Technology", IsHot: false, SignalStrength: 45},
}

var mockOpportunities = []core.Quote{
	{Symbol: "QBTS", Name: "D-Wave Quantum", Price: 1.85, Change: 0.35, ChangePercent: 23.3, Trend: core.TrendUp, Sector: "Quantum Computing", IsHot: true, SignalStrength: 98},
	{Symbol: "OKLO", Name: "Oklo Inc.", Price: 12.40, Change: 1.10, ChangePercent: 9.7, Trend: core.TrendUp, Sector: "Nuclear Energy", IsHot: true, SignalStrength: 88},
}

// Directory is the offline symbol directory used for search and naming.
var Directory = []core.SearchHit{
	{Ticker: "AAPL", Name: "Apple Inc."},
	{Ticker: "MSFT", Name: "Microsoft Corp"},
	{Ticker: "GOOGL", Name: "Alphabet Inc."},
	{Ticker: "AMZN", Name: "Amazon.com Inc"},
	{Ticker: "TSLA", Name: "Tesla Inc"},
	{Ticker: "META", Name: "Meta Platforms"},
	{Ticker: "TSM", Name: "Taiwan Semi"},
	{Ticker: "NVDA", Name: "NVIDIA Corp"},
	{Ticker: "AMD", Name: "Advanced Micro Devices"},
	{Ticker: "INTC", Name: "Intel Corp"},
	{Ticker: "QCOM", Name: "Qualcomm Inc"},
	{Ticker: "AVGO", Name: "Broadcom Inc"},
	{Ticker: "TXN", Name: "Texas Instruments"},
	{Ticker: "IBM", Name: "IBM Corp"},
	{Ticker: "MU", Name: "Micron Technology"},
	{Ticker: "NFLX", Name: "Netflix Inc"},
	{Ticker: "DIS", Name: "Walt Disney Co"},
	{Ticker: "NKE", Name: "Nike Inc"},
	{Ticker: "JPM", Name: "JPMorgan Chase"},
	{Ticker: "V", Name: "Visa Inc"},
	{Ticker: "PLTR", Name: "Palantir Technologies"},
	{Ticker: "COIN", Name: "Coinbase Global"},
	{Ticker: "MSTR", Name: "MicroStrategy"},
	{Ticker: "HOOD", Name: "Robinhood Markets"},
	{Ticker: "GME", Name: "GameStop Corp"},
	{Ticker: "AMC", Name: "AMC Entertainment"},
}

// MockMarketData returns fresh copies of the static fallback lists.
func MockMarketData() core.MarketData {
	return core.MarketData{
		Watchlist:     append([]core.Quote(nil), mockWatchlist...),
		Opportunities: append([]core.Quote(nil), mockOpportunities...),
	}
}

// LookupName returns the directory name for symbol, or symbol itself.
func LookupName(symbol string) string {
	for _, hit := range Directory {
		if hit.Ticker == symbol {
			return hit.Name
		}
	}
	return symbol
}

// searchDirectory matches query case-insensitively against ticker or name.
func searchDirectory(query string, limit int) []core.SearchHit {
	upper := strings.ToUpper(query)
	hits := make([]core.SearchHit, 0, limit)
	for _, entry := range Directory {
		if len(hits) == limit {
			break
		}
		if strings.Contains(entry.Ticker, upper) || strings.Contains(strings.ToUpper(entry.Name), upper) {
			hits = append(hits, entry)
		}
	}
	return hits
}

// MockNews returns the fixed offline news list for symbol.
func MockNews(symbol string) []core.NewsItem {
	return []core.NewsItem{
		{
			ID:        "4",
			Title:     fmt.Sprintf("High social volume detected for %s. Institutions are loading up.", symbol),
			Source:    SocialSource,
			Author:    "@StockWizard_AI",
			Sentiment: core.SentimentPositive,
			Time:      "15m ago",
			IsSocial:  true,
		},
		{
			ID:        "1",
			Title:     fmt.Sprintf("%s shows strong momentum breaking key resistance", symbol),
			Source:    "Bloomberg",
			Sentiment: core.SentimentPositive,
			Time:      "2h ago",
		},
		{
			ID:        "2",
			Title:     fmt.Sprintf("Earnings expectations rising for %s", symbol),
			Source:    "Reuters",
			Sentiment: core.SentimentPositive,
			Time:      "4h ago",
		},
	}
}
