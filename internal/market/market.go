// Package market turns raw provider responses into dashboard quotes, charts,
// news and search hits. Every client degrades to synthetic data instead of
// returning an error.
package market

import (
	"context"
	"math"
	"math/rand/v2"
	"slices"

	"go.uber.org/zap"

	"github.com/newthinker/alphapulse/internal/calendar"
	"github.com/newthinker/alphapulse/internal/clock"
	"github.com/newthinker/alphapulse/internal/collector"
	"github.com/newthinker/alphapulse/internal/core"
)

// MaxAttempts bounds the number of dates tried before falling back to mocks.
const MaxAttempts = 5

// Recorder receives fallback and retry observations.
type Recorder interface {
	RecordFallback(component string)
	RecordMarketDataAttempts(attempts int)
}

type nopRecorder struct{}

func (nopRecorder) RecordFallback(string) {}
func (nopRecorder) RecordMarketDataAttempts(int) {}

// base carries the collaborators shared by every client in this package.
// A nil provider means no credential is configured.
type base struct {
	provider collector.Provider
	logger   *zap.Logger
	clock    clock.Clock
	rand     func() float64
	recorder Recorder
}

// Option configures a client
type Option func(*base)

// WithClock overrides the time source
func WithClock(c clock.Clock) Option {
	return func(b *base) {
		if c != nil {
			b.clock = c
		}
	}
}

// WithRand overrides the uniform [0,1) source used for synthetic values
func WithRand(f func() float64) Option {
	return func(b *base) {
		if f != nil {
			b.rand = f
		}
	}
}

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) Option {
	return func(b *base) {
		if r != nil {
			b.recorder = r
		}
	}
}

func newBase(provider collector.Provider, logger *zap.Logger, opts []Option) base {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := base{
		provider: provider,
		logger:   logger,
		clock:    clock.Real(),
		rand:     rand.Float64,
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// Live reports whether a provider credential is configured.
func (b *base) Live() bool {
	return b.provider != nil
}

// Client loads the watchlist and opportunity lists and single quotes.
type Client struct {
	base
}

// NewClient creates a market data client. Pass a nil provider for mock mode.
func NewClient(provider collector.Provider, logger *zap.Logger, opts ...Option) *Client {
	return &Client{base: newBase(provider, logger, opts)}
}

// FetchMarketData returns the tracked lists for the most recent trading day
// with data, trying at most MaxAttempts dates before falling back to mocks.
func (c *Client) FetchMarketData(ctx context.Context) core.MarketData {
	if !c.Live() {
		c.logger.Warn("market data provider not configured, using mock data")
		c.recorder.RecordFallback("market")
		return MockMarketData()
	}

	attempts := 0
	for date := range calendar.Candidates(c.clock.Now(), MaxAttempts) {
		if ctx.Err() != nil {
			break
		}
		attempts++
		day := date.Format(calendar.DateLayout)

		grouped, err := c.provider.GroupedDaily(ctx, day)
		if err != nil {
			c.logger.Warn("grouped daily request failed, trying previous day",
				zap.String("date", day), zap.Error(err))
			continue
		}
		if !grouped.HasData() {
			c.logger.Info("no market data for date, trying previous day",
				zap.String("date", day), zap.String("status", grouped.Status))
			continue
		}

		c.recorder.RecordMarketDataAttempts(attempts)
		data := c.partition(grouped.Results)
		c.logger.Info("market data loaded",
			zap.String("date", day),
			zap.Int("watchlist", len(data.Watchlist)),
			zap.Int("opportunities", len(data.Opportunities)))
		return data
	}

	c.recorder.RecordMarketDataAttempts(attempts)
	c.recorder.RecordFallback("market")
	c.logger.Warn("could not fetch live market data, using mock data", zap.Int("attempts", attempts))
	return MockMarketData()
}

// partition keeps the bars for tracked symbols in provider order, one per symbol.
func (c *Client) partition(bars []collector.Bar) core.MarketData {
	data := core.MarketData{
		Watchlist:     []core.Quote{},
		Opportunities: []core.Quote{},
	}
	seen := make(map[string]bool)
	for _, bar := range bars {
		if seen[bar.Ticker] {
			continue
		}
		switch {
		case slices.Contains(WatchlistSymbols, bar.Ticker):
			data.Watchlist = append(data.Watchlist, c.quoteFromBar(bar, false))
		case slices.Contains(OpportunitySymbols, bar.Ticker):
			data.Opportunities = append(data.Opportunities, c.quoteFromBar(bar, true))
		default:
			continue
		}
		seen[bar.Ticker] = true
	}
	return data
}

func (c *Client) quoteFromBar(bar collector.Bar, hot bool) core.Quote {
	change, pct := changeOf(bar)
	return core.Quote{
		Symbol:         bar.Ticker,
		Name:           bar.Ticker,
		Price:          bar.Close,
		Change:         change,
		ChangePercent:  pct,
		Trend:          core.TrendOf(change),
		Sector:         "Tech",
		IsHot:          hot,
		SignalStrength: SignalStrength(pct, c.rand()),
	}
}

// SignalStrength derives the synthetic signal score from a percent move and
// a uniform jitter in [0,1).
func SignalStrength(changePercent, jitter float64) int {
	volBonus := math.Min(math.Abs(changePercent)*5, 40)
	s := int(math.Floor(50 + volBonus + jitter*10))
	return min(s, core.MaxSignalStrength)
}

func changeOf(bar collector.Bar) (change, pct float64) {
	change = bar.Close - bar.Open
	if bar.Open != 0 {
		pct = change / bar.Open * 100
	}
	return change, pct
}

// FetchStockQuote returns a quote for one symbol. Without a credential a
// random demo price is generated; on provider failure the neutral base quote
// is returned.
func (c *Client) FetchStockQuote(ctx context.Context, symbol string) core.Quote {
	quote := baseQuote(symbol)

	if !c.Live() {
		c.recorder.RecordFallback("quote")
		quote.Name = LookupName(symbol)
		quote.Price = 50 + c.rand()*150
		quote.Change = 1.5
		quote.ChangePercent = 1.2
		quote.Trend = core.TrendUp
		quote.SignalStrength = 65
		return quote
	}

	bars, err := c.provider.PreviousClose(ctx, symbol)
	if err != nil {
		c.logger.Error("failed to fetch quote", zap.String("symbol", symbol), zap.Error(err))
		return quote
	}
	if len(bars) == 0 {
		c.logger.Warn("no previous close for symbol", zap.String("symbol", symbol))
		return quote
	}

	bar := bars[0]
	change, pct := changeOf(bar)
	quote.Price = bar.Close
	quote.Change = change
	quote.ChangePercent = pct
	quote.Trend = core.TrendOf(change)
	quote.SignalStrength = 50 + int(math.Floor(c.rand()*40))
	return quote
}

func baseQuote(symbol string) core.Quote {
	return core.Quote{
		Symbol:         symbol,
		Name:           symbol,
		Trend:          core.TrendNeutral,
		Sector:         "Unknown",
		SignalStrength: 50,
	}
}
