package market

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/newthinker/alphapulse/internal/collector"
	"github.com/newthinker/alphapulse/internal/core"
)

// SearchLimit caps the number of hits returned by a search.
const SearchLimit = 10

// SearchClient resolves free text to tickers.
type SearchClient struct {
	base
}

// NewSearchClient creates a search client. Pass a nil provider for mock mode.
func NewSearchClient(provider collector.Provider, logger *zap.Logger, opts ...Option) *SearchClient {
	return &SearchClient{base: newBase(provider, logger, opts)}
}

// SearchStocks returns at most SearchLimit hits for query. A blank query
// returns an empty list without any request.
func (c *SearchClient) SearchStocks(ctx context.Context, query string) []core.SearchHit {
	query = strings.TrimSpace(query)
	if query == "" {
		return []core.SearchHit{}
	}

	if c.Live() {
		tickers, err := c.provider.SearchTickers(ctx, query, SearchLimit)
		if err == nil {
			if len(tickers) > SearchLimit {
				tickers = tickers[:SearchLimit]
			}
			hits := make([]core.SearchHit, 0, len(tickers))
			for _, t := range tickers {
				hits = append(hits, core.SearchHit{Ticker: t.Ticker, Name: t.Name})
			}
			return hits
		}
		c.logger.Warn("search request failed, falling back to local directory",
			zap.String("query", query), zap.Error(err))
	}

	c.recorder.RecordFallback("search")
	return searchDirectory(query, SearchLimit)
}
