package api

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/newthinker/alphapulse/internal/api/response"
	"github.com/newthinker/alphapulse/internal/app"
	"github.com/newthinker/alphapulse/internal/core"
	"github.com/newthinker/alphapulse/internal/notifier"
)

// fakeApp records transitions against a plain app.State. Channels it
// returns are closed immediately.
type fakeApp struct {
	mu       sync.Mutex
	state    app.State
	fetched  []string
	selected []core.Quote
	added    []string
	queries  []string
	perm     notifier.Permission
}

func newFakeApp() *fakeApp {
	return &fakeApp{
		state: app.State{
			View:      app.ViewDashboard,
			ActiveTab: app.TabWatchlist,
			Watchlist: []core.Quote{
				{Symbol: "NVDA", Price: 120, Trend: core.TrendUp},
				{Symbol: "MU", Price: 90, Trend: core.TrendDown},
			},
			Opportunities: []core.Quote{{Symbol: "QBTS", IsHot: true}},
		},
		perm: notifier.PermissionGranted,
	}
}

func closed() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

func (f *fakeApp) State() app.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeApp) FindQuote(symbol string) (core.Quote, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, list := range [][]core.Quote{f.state.Watchlist, f.state.Opportunities} {
		for _, q := range list {
			if q.Symbol == symbol {
				return q, true
			}
		}
	}
	return core.Quote{}, false
}

func (f *fakeApp) Quote(ctx context.Context, symbol string) core.Quote {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, symbol)
	return core.Quote{Symbol: symbol, Price: 10, Trend: core.TrendUp}
}

func (f *fakeApp) Select(stock core.Quote) <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selected = append(f.selected, stock)
	f.state.View = app.ViewDetail
	f.state.SelectedStock = &stock
	return closed()
}

func (f *fakeApp) Back() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.View = app.ViewDashboard
	f.state.SelectedStock = nil
}

func (f *fakeApp) SetTab(tab app.Tab) error {
	if !tab.Valid() {
		return core.ErrInvalidRequest
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.ActiveTab = tab
	return nil
}

func (f *fakeApp) AddStock(symbol string) <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, symbol)
	for _, q := range f.state.Watchlist {
		if q.Symbol == symbol {
			return closed()
		}
	}
	f.state.Watchlist = append([]core.Quote{{Symbol: symbol}}, f.state.Watchlist...)
	return closed()
}

func (f *fakeApp) OpenSearch() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.SearchOpen = true
	f.state.SearchQuery = ""
}

func (f *fakeApp) CloseSearch() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.SearchOpen = false
}

func (f *fakeApp) Search(query string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	f.state.SearchQuery = query
}

func (f *fakeApp) RequestNotificationPermission(ctx context.Context) notifier.Permission {
	return f.perm
}

func (f *fakeApp) DismissNotification() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.PendingNotification = nil
}

func (f *fakeApp) ClickNotification() (<-chan struct{}, bool) {
	f.mu.Lock()
	pending := f.state.PendingNotification
	f.state.PendingNotification = nil
	f.mu.Unlock()
	if pending == nil {
		return nil, false
	}
	return f.Select(pending.Stock), true
}

func (f *fakeApp) Analyze(ctx context.Context, symbol string) (core.Quote, core.Insight) {
	return core.Quote{Symbol: symbol}, core.Insight{Action: core.ActionHold, ConfidenceScore: 50, Summary: "steady"}
}

func jsonBody(s string) *strings.Reader {
	return strings.NewReader(s)
}

// decodeData unmarshals the envelope's data field into v.
func decodeData(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	var resp struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding envelope: %v", err)
	}
	if err := json.Unmarshal(resp.Data, v); err != nil {
		t.Fatalf("decoding data: %v", err)
	}
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp response.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding error envelope: %v", err)
	}
	return resp.Error.Code
}
