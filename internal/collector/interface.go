package collector

import (
	"context"
	"time"
)

// Config holds market data provider configuration
type Config struct {
	APIKey    string
	BaseURL   string
	Timeout   time.Duration
	RateLimit int // requests per minute, 0 disables limiting
}

// Bar is one OHLCV aggregate as returned by the provider
type Bar struct {
	Ticker    string  `json:"T,omitempty"`
	Open      float64 `json:"o"`
	High      float64 `json:"h"`
	Low       float64 `json:"l"`
	Close     float64 `json:"c"`
	Volume    float64 `json:"v"`
	Timestamp int64   `json:"t"` // unix millis
}

// Time returns the bar start time.
func (b Bar) Time() time.Time {
	return time.UnixMilli(b.Timestamp)
}

// GroupedDaily is the whole-market daily bar response for one date
type GroupedDaily struct {
	Status       string `json:"status"`
	ResultsCount int    `json:"resultsCount"`
	Results      []Bar  `json:"results"`
}

// HasData reports whether the provider returned a usable trading day.
func (g *GroupedDaily) HasData() bool {
	return g != nil && g.Status == "OK" && g.ResultsCount > 0
}

// Ticker is a reference-data search hit
type Ticker struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
}

// Article is a provider news record
type Article struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	PublishedUTC time.Time `json:"published_utc"`
	Publisher    struct {
		Name string `json:"name"`
	} `json:"publisher"`
}

// Provider defines the market data endpoints the dashboard consumes
type Provider interface {
	// Metadata
	Name() string

	// GroupedDaily fetches daily bars for the entire market on date (YYYY-MM-DD)
	GroupedDaily(ctx context.Context, date string) (*GroupedDaily, error)

	// PreviousClose fetches the previous session bar for one symbol
	PreviousClose(ctx context.Context, symbol string) ([]Bar, error)

	// SearchTickers resolves free text to active tickers
	SearchTickers(ctx context.Context, query string, limit int) ([]Ticker, error)

	// News fetches the most recent articles for a symbol
	News(ctx context.Context, symbol string, limit int) ([]Article, error)

	// HourlyBars fetches ascending hourly bars between two dates (inclusive)
	HourlyBars(ctx context.Context, symbol string, from, to time.Time) ([]Bar, error)
}
