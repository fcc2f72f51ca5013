package market

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/newthinker/alphapulse/internal/collector"
	"github.com/newthinker/alphapulse/internal/core"
)

func TestSearchStocks_BlankQueryMakesNoRequest(t *testing.T) {
	p := &fakeProvider{tickers: []collector.Ticker{{Ticker: "X"}}}
	c := NewSearchClient(p, nil)

	for _, q := range []string{"", "   ", "\t"} {
		hits := c.SearchStocks(context.Background(), q)
		assert.NotNil(t, hits)
		assert.Empty(t, hits)
	}
	assert.Zero(t, p.calls)
}

func TestSearchStocks_Live(t *testing.T) {
	var tickers []collector.Ticker
	for i := 0; i < 12; i++ {
		tickers = append(tickers, collector.Ticker{Ticker: "T", Name: "Ticker"})
	}
	tickers[0] = collector.Ticker{Ticker: "NVDA", Name: "NVIDIA Corp"}
	c := NewSearchClient(&fakeProvider{tickers: tickers}, nil)

	hits := c.SearchStocks(context.Background(), "nv")

	assert.Len(t, hits, SearchLimit)
	assert.Equal(t, core.SearchHit{Ticker: "NVDA", Name: "NVIDIA Corp"}, hits[0])
}

func TestSearchStocks_DirectoryFallback(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    []string
		wantLen int
	}{
		{"ticker prefix", "nvd", []string{"NVDA"}, 1},
		{"name match", "apple", []string{"AAPL"}, 1},
		{"mixed case", "TeSlA", []string{"TSLA"}, 1},
		{"no match", "zzzz", nil, 0},
		{"capped", "a", nil, SearchLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newCountingRecorder()
			c := NewSearchClient(nil, nil, WithRecorder(rec))

			hits := c.SearchStocks(context.Background(), tt.query)

			assert.Len(t, hits, tt.wantLen)
			for i, ticker := range tt.want {
				assert.Equal(t, ticker, hits[i].Ticker)
			}
			assert.Equal(t, 1, rec.fallbacks["search"])
		})
	}
}

func TestSearchStocks_ProviderErrorFallsBack(t *testing.T) {
	c := NewSearchClient(&fakeProvider{tickersErr: errors.New("429")}, nil)

	hits := c.SearchStocks(context.Background(), "micro")

	assert.Equal(t, []core.SearchHit{
		{Ticker: "MSFT", Name: "Microsoft Corp"},
		{Ticker: "AMD", Name: "Advanced Micro Devices"},
		{Ticker: "MU", Name: "Micron Technology"},
		{Ticker: "MSTR", Name: "MicroStrategy"},
	}, hits)
}

func TestLookupName(t *testing.T) {
	assert.Equal(t, "Palantir Technologies", LookupName("PLTR"))
	assert.Equal(t, "QQQ", LookupName("QQQ"))
	assert.Len(t, Directory, 26)
}
