package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newthinker/alphapulse/internal/clock"
	"github.com/newthinker/alphapulse/internal/core"
	"github.com/newthinker/alphapulse/internal/market"
	"github.com/newthinker/alphapulse/internal/notifier"
)

var epoch = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

type fakeMarket struct {
	data   core.MarketData
	gate   chan struct{}
	mu     sync.Mutex
	quotes []string
}

func (m *fakeMarket) FetchMarketData(ctx context.Context) core.MarketData {
	if m.gate != nil {
		<-m.gate
	}
	return m.data
}

func (m *fakeMarket) FetchStockQuote(ctx context.Context, symbol string) core.Quote {
	m.mu.Lock()
	m.quotes = append(m.quotes, symbol)
	m.mu.Unlock()
	return core.Quote{Symbol: symbol, Name: symbol, Price: 10, Trend: core.TrendUp, SignalStrength: 60}
}

// detail serves insight, chart and news, optionally holding a symbol's
// fetches until its gate is closed.
type detail struct {
	mu    sync.Mutex
	gates map[string]chan struct{}
}

func (d *detail) hold(symbol string) chan struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.gates == nil {
		d.gates = map[string]chan struct{}{}
	}
	ch := make(chan struct{})
	d.gates[symbol] = ch
	return ch
}

func (d *detail) wait(symbol string) {
	d.mu.Lock()
	ch := d.gates[symbol]
	d.mu.Unlock()
	if ch != nil {
		<-ch
	}
}

func (d *detail) AnalyzeStock(ctx context.Context, q core.Quote) core.Insight {
	d.wait(q.Symbol)
	return core.Insight{ConfidenceScore: 80, Action: core.ActionBuy, Summary: q.Symbol}
}

func (d *detail) FetchChartData(ctx context.Context, symbol string, ref float64) []core.ChartPoint {
	d.wait(symbol)
	return []core.ChartPoint{{Time: symbol, Value: ref}}
}

func (d *detail) FetchCompanyNews(ctx context.Context, symbol string) []core.NewsItem {
	d.wait(symbol)
	return []core.NewsItem{{ID: symbol, Title: symbol}}
}

type countingSearch struct {
	mu      sync.Mutex
	queries []string
	gate    map[string]chan struct{}
}

func (s *countingSearch) SearchStocks(ctx context.Context, query string) []core.SearchHit {
	s.mu.Lock()
	s.queries = append(s.queries, query)
	ch := s.gate[query]
	s.mu.Unlock()
	if ch != nil {
		<-ch
	}
	return []core.SearchHit{{Ticker: query, Name: query}}
}

func (s *countingSearch) calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

type fakeDispatcher struct {
	mu   sync.Mutex
	perm notifier.Permission
	sent []notifier.Message
	err  error
}

func (d *fakeDispatcher) Permission() notifier.Permission {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.perm
}

func (d *fakeDispatcher) RequestPermission(ctx context.Context) notifier.Permission {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.perm == notifier.PermissionDefault {
		d.perm = notifier.PermissionGranted
	}
	return d.perm
}

func (d *fakeDispatcher) Dispatch(ctx context.Context, msg notifier.Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, msg)
	return d.err
}

type outcomeRecorder struct {
	mu         sync.Mutex
	selections []string
	searches   []string
	watchlist  int
	opps       int
}

func (r *outcomeRecorder) RecordSelection(o string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selections = append(r.selections, o)
}

func (r *outcomeRecorder) RecordSearch(o string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.searches = append(r.searches, o)
}

func (r *outcomeRecorder) SetListSizes(w, o int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.watchlist, r.opps = w, o
}

type fakeArchiver struct {
	saved  []core.MarketData
	pruned []int
	err    error
}

func (f *fakeArchiver) Save(ctx context.Context, data core.MarketData) (string, error) {
	f.saved = append(f.saved, data)
	return "snapshots/2026-10-17.json", f.err
}

func (f *fakeArchiver) Prune(ctx context.Context, keep int) (int, error) {
	f.pruned = append(f.pruned, keep)
	return 0, nil
}

type harness struct {
	app    *App
	clock  *clock.Fake
	market *fakeMarket
	detail *detail
	search *countingSearch
	notify *fakeDispatcher
	rec    *outcomeRecorder
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		clock: clock.NewFake(epoch),
		market: &fakeMarket{data: core.MarketData{
			Watchlist:     []core.Quote{{Symbol: "NVDA"}, {Symbol: "MU"}},
			Opportunities: []core.Quote{{Symbol: "QBTS", IsHot: true}},
		}},
		detail: &detail{},
		search: &countingSearch{},
		notify: &fakeDispatcher{perm: notifier.PermissionDefault},
		rec:    &outcomeRecorder{},
	}
	base := []Option{WithClock(h.clock), WithRecorder(h.rec), WithTimings(DefaultTimings())}
	h.app = New(Deps{
		Market:   h.market,
		Chart:    h.detail,
		News:     h.detail,
		Search:   h.search,
		Insight:  h.detail,
		Notifier: h.notify,
	}, nil, append(base, opts...)...)
	t.Cleanup(h.app.Stop)
	return h
}

func symbols(list []core.Quote) []string {
	out := make([]string, len(list))
	for i, q := range list {
		out[i] = q.Symbol
	}
	return out
}

func waitDone(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for transition")
	}
}

func TestApp_InitialState(t *testing.T) {
	h := newHarness(t)
	s := h.app.State()

	assert.Equal(t, ViewDashboard, s.View)
	assert.Equal(t, TabWatchlist, s.ActiveTab)
	assert.False(t, s.IsAnalyzing)
	assert.Empty(t, s.Watchlist)
	assert.Empty(t, s.Opportunities)
	assert.Nil(t, s.SelectedStock)
	assert.Nil(t, s.CurrentInsight)
	assert.Equal(t, notifier.PermissionDefault, s.NotificationPermission)
}

func TestApp_Start(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.app.Start(context.Background()))

	s := h.app.State()
	assert.False(t, s.IsLoadingData)
	assert.Equal(t, []string{"NVDA", "MU"}, symbols(s.Watchlist))
	assert.Equal(t, []string{"QBTS"}, symbols(s.Opportunities))
	assert.Equal(t, 2, h.rec.watchlist)
	assert.Equal(t, 1, h.rec.opps)

	assert.Error(t, h.app.Start(context.Background()), "second start must fail")
}

func TestApp_Start_KeepsEntriesAddedDuringLoad(t *testing.T) {
	h := newHarness(t)
	h.market.gate = make(chan struct{})
	h.market.data.Watchlist = []core.Quote{{Symbol: "NVDA"}, {Symbol: "TSLA"}}

	started := make(chan error, 1)
	go func() { started <- h.app.Start(context.Background()) }()

	require.Eventually(t, func() bool { return h.app.State().IsLoadingData }, time.Second, time.Millisecond)
	waitDone(t, h.app.AddStock("TSLA"))

	close(h.market.gate)
	require.NoError(t, <-started)

	assert.Equal(t, []string{"TSLA", "NVDA"}, symbols(h.app.State().Watchlist))
}

func TestApp_Start_Archives(t *testing.T) {
	ar := &fakeArchiver{}
	h := newHarness(t, WithArchiver(ar, 7))

	require.NoError(t, h.app.Start(context.Background()))

	require.Len(t, ar.saved, 1)
	assert.Equal(t, []string{"NVDA", "MU"}, symbols(ar.saved[0].Watchlist))
	assert.Equal(t, []int{7}, ar.pruned)
}

func TestApp_Start_ArchiveFailureIgnored(t *testing.T) {
	ar := &fakeArchiver{err: errors.New("disk full")}
	h := newHarness(t, WithArchiver(ar, 7))

	require.NoError(t, h.app.Start(context.Background()))
	assert.Len(t, h.app.State().Watchlist, 2)
	assert.Empty(t, ar.pruned)
}

func TestApp_Select(t *testing.T) {
	h := newHarness(t)
	gate := h.detail.hold("NVDA")

	done := h.app.Select(core.Quote{Symbol: "NVDA", Price: 135.4})

	s := h.app.State()
	assert.Equal(t, ViewDetail, s.View)
	require.NotNil(t, s.SelectedStock)
	assert.Equal(t, "NVDA", s.SelectedStock.Symbol)
	assert.Nil(t, s.CurrentInsight)
	assert.True(t, s.IsAnalyzing)
	assert.Empty(t, s.Chart)
	assert.Empty(t, s.News)

	close(gate)
	waitDone(t, done)

	s = h.app.State()
	assert.False(t, s.IsAnalyzing)
	require.NotNil(t, s.CurrentInsight)
	assert.Equal(t, "NVDA", s.CurrentInsight.Summary)
	assert.Equal(t, []core.ChartPoint{{Time: "NVDA", Value: 135.4}}, s.Chart)
	assert.Equal(t, "NVDA", s.News[0].ID)
	assert.Equal(t, []string{"applied"}, h.rec.selections)
}

func TestApp_Select_LastWins(t *testing.T) {
	h := newHarness(t)
	gateA := h.detail.hold("AAA")
	gateB := h.detail.hold("BBB")

	doneA := h.app.Select(core.Quote{Symbol: "AAA", Price: 1})
	doneB := h.app.Select(core.Quote{Symbol: "BBB", Price: 2})

	close(gateB)
	waitDone(t, doneB)
	close(gateA)
	waitDone(t, doneA)

	s := h.app.State()
	assert.Equal(t, "BBB", s.SelectedStock.Symbol)
	assert.Equal(t, "BBB", s.CurrentInsight.Summary)
	assert.Equal(t, "BBB", s.Chart[0].Time)
	assert.Equal(t, "BBB", s.News[0].ID)
	assert.False(t, s.IsAnalyzing)
	assert.ElementsMatch(t, []string{"applied", "stale"}, h.rec.selections)
}

func TestApp_Select_StaleFirstDoesNotClearAnalyzing(t *testing.T) {
	h := newHarness(t)
	gateB := h.detail.hold("BBB")

	doneA := h.app.Select(core.Quote{Symbol: "AAA"})
	waitDone(t, doneA)
	gateA := h.detail.hold("AAA")
	defer close(gateA)
	h.app.Select(core.Quote{Symbol: "AAA"})
	doneB := h.app.Select(core.Quote{Symbol: "BBB"})

	s := h.app.State()
	assert.True(t, s.IsAnalyzing)
	assert.Nil(t, s.CurrentInsight)

	close(gateB)
	waitDone(t, doneB)
	assert.Equal(t, "BBB", h.app.State().CurrentInsight.Summary)
}

func TestApp_Back(t *testing.T) {
	h := newHarness(t)
	waitDone(t, h.app.Select(core.Quote{Symbol: "MU"}))

	h.app.Back()

	s := h.app.State()
	assert.Equal(t, ViewDashboard, s.View)
	require.NotNil(t, s.SelectedStock)
	assert.Equal(t, "MU", s.SelectedStock.Symbol)
}

func TestApp_SetTab(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.app.SetTab(TabOpportunities))
	assert.Equal(t, TabOpportunities, h.app.State().ActiveTab)

	err := h.app.SetTab("FAVORITES")
	assert.True(t, errors.Is(err, core.ErrInvalidRequest))
	assert.Equal(t, TabOpportunities, h.app.State().ActiveTab)
}

func TestApp_Search_Debounce(t *testing.T) {
	h := newHarness(t)
	h.app.OpenSearch()

	h.app.Search("P")
	h.clock.Advance(100 * time.Millisecond)
	h.app.Search("PL")
	h.clock.Advance(100 * time.Millisecond)
	h.app.Search("PLT")
	h.clock.Advance(299 * time.Millisecond)

	assert.Empty(t, h.search.calls())

	h.clock.Advance(time.Millisecond)

	assert.Equal(t, []string{"PLT"}, h.search.calls())
	s := h.app.State()
	assert.Equal(t, "PLT", s.SearchQuery)
	assert.Equal(t, []core.SearchHit{{Ticker: "PLT", Name: "PLT"}}, s.SearchResults)
	assert.False(t, s.IsSearching)
}

func TestApp_Search_EmptyQueryClearsWithoutCall(t *testing.T) {
	h := newHarness(t)
	h.app.Search("MU")
	h.clock.Advance(300 * time.Millisecond)
	require.Len(t, h.app.State().SearchResults, 1)

	h.app.Search("   ")
	h.clock.Advance(300 * time.Millisecond)

	assert.Equal(t, []string{"MU"}, h.search.calls())
	assert.Empty(t, h.app.State().SearchResults)
}

func TestApp_Search_StaleResultDropped(t *testing.T) {
	h := newHarness(t)
	slow := make(chan struct{})
	h.search.gate = map[string]chan struct{}{"SLOW": slow}

	h.app.Search("SLOW")
	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		h.clock.Advance(300 * time.Millisecond)
	}()
	require.Eventually(t, func() bool { return len(h.search.calls()) == 1 }, time.Second, time.Millisecond)

	h.app.Search("FAST")
	h.clock.Advance(300 * time.Millisecond)
	close(slow)
	waitDone(t, firstDone)

	s := h.app.State()
	assert.Equal(t, []core.SearchHit{{Ticker: "FAST", Name: "FAST"}}, s.SearchResults)
	assert.ElementsMatch(t, []string{"applied", "stale"}, h.rec.searches)
}

func TestApp_OpenSearchResets(t *testing.T) {
	h := newHarness(t)
	h.app.Search("NV")
	h.clock.Advance(300 * time.Millisecond)

	h.app.Search("NVD")
	h.app.OpenSearch()
	h.clock.Advance(time.Second)

	s := h.app.State()
	assert.True(t, s.SearchOpen)
	assert.Empty(t, s.SearchQuery)
	assert.Empty(t, s.SearchResults)
	assert.Equal(t, []string{"NV"}, h.search.calls(), "pending keystroke must be dropped")
}

func TestApp_AddStock(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.app.Start(context.Background()))
	h.app.OpenSearch()

	waitDone(t, h.app.AddStock("amd"))

	s := h.app.State()
	assert.False(t, s.SearchOpen)
	assert.Equal(t, []string{"AMD", "NVDA", "MU"}, symbols(s.Watchlist))
	assert.Equal(t, 3, h.rec.watchlist)
}

func TestApp_AddStock_Duplicate(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.app.Start(context.Background()))
	before := h.app.State().Watchlist

	waitDone(t, h.app.AddStock("MU"))

	assert.Equal(t, before, h.app.State().Watchlist)
	assert.Empty(t, h.market.quotes, "no quote fetch for a duplicate")
}

func TestApp_AddStock_Blank(t *testing.T) {
	h := newHarness(t)
	waitDone(t, h.app.AddStock("  "))
	assert.Empty(t, h.app.State().Watchlist)
}

func TestApp_AddStock_MockModeTSLA(t *testing.T) {
	c := market.NewClient(nil, nil)
	a := New(Deps{Market: c}, nil, WithTimings(Timings{}), WithClock(clock.NewFake(epoch)))
	require.NoError(t, a.Start(context.Background()))
	before := len(a.State().Watchlist)

	waitDone(t, a.AddStock("TSLA"))

	s := a.State()
	require.Len(t, s.Watchlist, before+1)
	head := s.Watchlist[0]
	assert.Equal(t, "TSLA", head.Symbol)
	assert.GreaterOrEqual(t, head.SignalStrength, 0)
	assert.LessOrEqual(t, head.SignalStrength, core.MaxSignalStrength)
}

func TestApp_Discovery(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.app.Start(context.Background()))

	h.clock.Advance(DefaultDiscoveryDelay - time.Millisecond)
	assert.Equal(t, []string{"QBTS"}, symbols(h.app.State().Opportunities))

	h.clock.Advance(time.Millisecond)

	s := h.app.State()
	assert.Equal(t, []string{"PLTR", "QBTS"}, symbols(s.Opportunities))
	require.NotNil(t, s.PendingNotification)
	assert.Equal(t, "🚀 AI Signal: PLTR", s.PendingNotification.Title)
	assert.Equal(t, "Confidence 96%. Breakout detected.", s.PendingNotification.Body)
	assert.Equal(t, Discovery(), s.PendingNotification.Stock)
	assert.Equal(t, epoch.Add(DefaultDiscoveryDelay), s.PendingNotification.CreatedAt)
	assert.Empty(t, h.notify.sent, "permission not granted")

	h.clock.Advance(DefaultToastDuration)
	assert.Nil(t, h.app.State().PendingNotification)

	history, err := h.app.Notifications(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "PLTR", history[0].Stock.Symbol)
}

func TestApp_Discovery_Twice(t *testing.T) {
	h := newHarness(t)

	h.app.SimulateDiscovery()
	h.app.SimulateDiscovery()

	opps := h.app.State().Opportunities
	count := 0
	for _, q := range opps {
		if q.Symbol == "PLTR" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestApp_Discovery_ExistingOpportunity(t *testing.T) {
	h := newHarness(t)
	h.market.data.Opportunities = []core.Quote{{Symbol: "PLTR"}}
	require.NoError(t, h.app.Start(context.Background()))

	h.app.SimulateDiscovery()

	assert.Len(t, h.app.State().Opportunities, 1)
	assert.Nil(t, h.app.State().PendingNotification)
}

func TestApp_Discovery_DispatchesWhenGranted(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, notifier.PermissionGranted, h.app.RequestNotificationPermission(context.Background()))

	h.app.SimulateDiscovery()

	require.Len(t, h.notify.sent, 1)
	msg := h.notify.sent[0]
	assert.Equal(t, "🚀 AI Signal: PLTR", msg.Title)
	assert.Equal(t, []int{200, 100, 200, 100, 200}, msg.Vibrate)
	assert.Equal(t, "alpha-opportunity", msg.Tag)
	assert.True(t, msg.RequireInteraction)
	assert.Equal(t, notifier.DefaultIcon, msg.Icon)
	assert.Equal(t, "PLTR", msg.Stock.Symbol)
	assert.Equal(t, notifier.PermissionGranted, h.app.State().NotificationPermission)
}

func TestApp_Discovery_DispatchFailureKeepsToast(t *testing.T) {
	h := newHarness(t)
	h.notify.perm = notifier.PermissionGranted
	h.notify.err = errors.New("push service down")

	h.app.SimulateDiscovery()

	assert.Len(t, h.notify.sent, 1)
	assert.NotNil(t, h.app.State().PendingNotification)
}

func TestApp_ToastReplacementRestartsExpiry(t *testing.T) {
	h := newHarness(t)
	first := core.Notification{ID: "ntf_1", Title: "first", Stock: core.Quote{Symbol: "QBTS"}}
	second := core.Notification{ID: "ntf_2", Title: "second", Stock: core.Quote{Symbol: "PLTR"}}

	h.app.mu.Lock()
	h.app.showToastLocked(first)
	h.app.mu.Unlock()

	h.clock.Advance(3 * time.Second)

	h.app.mu.Lock()
	h.app.showToastLocked(second)
	h.app.mu.Unlock()

	pending := h.app.State().PendingNotification
	require.NotNil(t, pending)
	assert.Equal(t, "ntf_2", pending.ID)

	// The first toast's original deadline has passed.
	h.clock.Advance(DefaultToastDuration - 100*time.Millisecond)
	pending = h.app.State().PendingNotification
	require.NotNil(t, pending)
	assert.Equal(t, "ntf_2", pending.ID)

	h.clock.Advance(100 * time.Millisecond)
	assert.Nil(t, h.app.State().PendingNotification)
}

func TestApp_DismissNotification(t *testing.T) {
	h := newHarness(t)
	h.app.SimulateDiscovery()

	h.app.DismissNotification()
	assert.Nil(t, h.app.State().PendingNotification)
	assert.Zero(t, h.clock.Pending())
}

func TestApp_ClickNotification(t *testing.T) {
	h := newHarness(t)

	_, ok := h.app.ClickNotification()
	assert.False(t, ok)

	h.app.SimulateDiscovery()
	done, ok := h.app.ClickNotification()
	require.True(t, ok)
	waitDone(t, done)

	s := h.app.State()
	assert.Nil(t, s.PendingNotification)
	assert.Equal(t, ViewDetail, s.View)
	assert.Equal(t, "PLTR", s.SelectedStock.Symbol)
	assert.Equal(t, "PLTR", s.CurrentInsight.Summary)
}

func TestApp_Stop(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.app.Start(context.Background()))
	h.app.Search("MU")

	h.app.Stop()
	assert.Zero(t, h.clock.Pending())

	h.clock.Advance(time.Minute)
	s := h.app.State()
	assert.Equal(t, []string{"QBTS"}, symbols(s.Opportunities))
	assert.Empty(t, h.search.calls())
}

func TestApp_RequestPermission_NoNotifier(t *testing.T) {
	a := New(Deps{}, nil)
	assert.Equal(t, notifier.PermissionDenied, a.RequestNotificationPermission(context.Background()))
}

func TestApp_StateIsACopy(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.app.Start(context.Background()))

	s := h.app.State()
	s.Watchlist[0].Symbol = "XXXX"

	assert.Equal(t, "NVDA", h.app.State().Watchlist[0].Symbol)
}

func TestApp_FindQuote(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.app.Start(context.Background()))

	q, ok := h.app.FindQuote("QBTS")
	assert.True(t, ok)
	assert.True(t, q.IsHot)

	_, ok = h.app.FindQuote("ZZZ")
	assert.False(t, ok)
}

func TestApp_Analyze(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.app.Start(context.Background()))

	q, in := h.app.Analyze(context.Background(), "NVDA")
	assert.Equal(t, "NVDA", q.Symbol)
	assert.Equal(t, "NVDA", in.Summary)
	assert.Empty(t, h.market.quotes, "listed symbols are not refetched")

	q, _ = h.app.Analyze(context.Background(), "TSLA")
	assert.Equal(t, "TSLA", q.Symbol)
	assert.Equal(t, []string{"TSLA"}, h.market.quotes)
	assert.Equal(t, ViewDashboard, h.app.State().View)
}
