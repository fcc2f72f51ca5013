package polygon

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/newthinker/alphapulse/internal/calendar"
	"github.com/newthinker/alphapulse/internal/collector"
	"github.com/newthinker/alphapulse/internal/core"
)

const (
	DefaultBaseURL = "https://api.polygon.io"
	DefaultTimeout = 10 * time.Second

	// hourlyLimit caps the number of bars returned by the range endpoint.
	hourlyLimit = 500
)

// Recorder receives one event per outbound request.
type Recorder interface {
	RecordProviderRequest(provider, endpoint, status string)
}

type nopRecorder struct{}

func (nopRecorder) RecordProviderRequest(string, string, string) {}

// Option configures the client
type Option func(*Client)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRecorder sets the request metrics recorder
func WithRecorder(r Recorder) Option {
	return func(c *Client) {
		if r != nil {
			c.recorder = r
		}
	}
}

// Client implements collector.Provider against the Polygon REST API
type Client struct {
	http     *resty.Client
	apiKey   string
	limiter  *rate.Limiter
	logger   *zap.Logger
	recorder Recorder
}

// New creates a Polygon client. An empty API key is rejected so callers can
// treat a nil provider as mock mode.
func New(cfg collector.Config, opts ...Option) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, core.WrapError(core.ErrConfigMissing, fmt.Errorf("polygon api key"))
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		http:     resty.New().SetBaseURL(baseURL).SetTimeout(timeout),
		apiKey:   cfg.APIKey,
		logger:   zap.NewNop(),
		recorder: nopRecorder{},
	}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RateLimit)), cfg.RateLimit)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Name() string {
	return "polygon"
}

// get performs a rate-limited GET request and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, endpoint, path string, params map[string]string, out any) error {
	return c.getPath(ctx, endpoint, path, nil, params, out)
}

// getPath is get with {name} placeholders in path filled from pathParams.
// resty escapes each value.
func (c *Client) getPath(ctx context.Context, endpoint, path string, pathParams, params map[string]string, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}

	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("apiKey", c.apiKey)
	if len(pathParams) > 0 {
		req.SetPathParams(pathParams)
	}
	if len(params) > 0 {
		req.SetQueryParams(params)
	}

	c.logger.Debug("polygon request", zap.String("endpoint", endpoint), zap.String("path", path))

	resp, err := req.Get(path)
	if err != nil {
		c.recorder.RecordProviderRequest(c.Name(), endpoint, "error")
		return core.WrapError(core.ErrProviderFailed, fmt.Errorf("%s: %w", endpoint, err))
	}

	switch {
	case resp.StatusCode() == http.StatusTooManyRequests:
		c.recorder.RecordProviderRequest(c.Name(), endpoint, "rate_limited")
		return core.WrapError(core.ErrRateLimited, fmt.Errorf("%s: status %d", endpoint, resp.StatusCode()))
	case resp.IsError():
		c.recorder.RecordProviderRequest(c.Name(), endpoint, "error")
		return core.WrapError(core.ErrProviderFailed, fmt.Errorf("%s: status %d: %s", endpoint, resp.StatusCode(), resp.String()))
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		c.recorder.RecordProviderRequest(c.Name(), endpoint, "decode_error")
		return core.WrapError(core.ErrProviderFailed, fmt.Errorf("%s: decode: %w", endpoint, err))
	}
	c.recorder.RecordProviderRequest(c.Name(), endpoint, "ok")
	return nil
}

// GroupedDaily fetches the whole-market daily bars for date (YYYY-MM-DD).
// A response without data is returned as-is; the caller decides whether to
// roll back to an earlier date.
func (c *Client) GroupedDaily(ctx context.Context, date string) (*collector.GroupedDaily, error) {
	var out collector.GroupedDaily
	path := "/v2/aggs/grouped/locale/us/market/stocks/" + date
	if err := c.get(ctx, "grouped_daily", path, map[string]string{"adjusted": "true"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type barsResponse struct {
	Status  string          `json:"status"`
	Results []collector.Bar `json:"results"`
}

// PreviousClose fetches the last session bar for symbol.
func (c *Client) PreviousClose(ctx context.Context, symbol string) ([]collector.Bar, error) {
	var out barsResponse
	pathParams := map[string]string{"symbol": symbol}
	if err := c.getPath(ctx, "previous_close", "/v2/aggs/ticker/{symbol}/prev", pathParams, map[string]string{"adjusted": "true"}, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// SearchTickers resolves free text to active tickers.
func (c *Client) SearchTickers(ctx context.Context, query string, limit int) ([]collector.Ticker, error) {
	var out struct {
		Results []collector.Ticker `json:"results"`
	}
	params := map[string]string{
		"search": query,
		"active": "true",
		"limit":  strconv.Itoa(limit),
	}
	if err := c.get(ctx, "ticker_search", "/v3/reference/tickers", params, &out); err != nil {
		return nil, err
	}
	if out.Results == nil {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("ticker search %q", query))
	}
	return out.Results, nil
}

// News fetches the most recent articles mentioning symbol.
func (c *Client) News(ctx context.Context, symbol string, limit int) ([]collector.Article, error) {
	var out struct {
		Results []collector.Article `json:"results"`
	}
	params := map[string]string{
		"ticker": symbol,
		"limit":  strconv.Itoa(limit),
	}
	if err := c.get(ctx, "news", "/v2/reference/news", params, &out); err != nil {
		return nil, err
	}
	if out.Results == nil {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("news for %s", symbol))
	}
	return out.Results, nil
}

// HourlyBars fetches ascending one-hour bars between from and to, inclusive.
func (c *Client) HourlyBars(ctx context.Context, symbol string, from, to time.Time) ([]collector.Bar, error) {
	var out barsResponse
	pathParams := map[string]string{
		"symbol": symbol,
		"from":   from.Format(calendar.DateLayout),
		"to":     to.Format(calendar.DateLayout),
	}
	params := map[string]string{
		"adjusted": "true",
		"sort":     "asc",
		"limit":    strconv.Itoa(hourlyLimit),
	}
	if err := c.getPath(ctx, "hourly_bars", "/v2/aggs/ticker/{symbol}/range/1/hour/{from}/{to}", pathParams, params, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}
