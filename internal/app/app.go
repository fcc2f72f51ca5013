package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/newthinker/alphapulse/internal/clock"
	"github.com/newthinker/alphapulse/internal/core"
	"github.com/newthinker/alphapulse/internal/notifier"
	"github.com/newthinker/alphapulse/internal/storage/alert"
)

// Default demo timings
const (
	DefaultDiscoveryDelay = 10 * time.Second
	DefaultToastDuration  = 6 * time.Second
	DefaultSearchDebounce = 300 * time.Millisecond
)

// Vibration pattern and tag attached to discovery alerts
var (
	DiscoveryVibrate = []int{200, 100, 200, 100, 200}
	DiscoveryTag     = "alpha-opportunity"
)

// Discovery returns the opportunity record raised by the simulated
// discovery event.
func Discovery() core.Quote {
	return core.Quote{
		Symbol:         "PLTR",
		Name:           "Palantir Technologies",
		Price:          24.50,
		Change:         1.25,
		ChangePercent:  5.38,
		Trend:          core.TrendUp,
		Sector:         "AI Software",
		IsHot:          true,
		SignalStrength: 96,
	}
}

// MarketSource loads the dashboard lists and single quotes
type MarketSource interface {
	FetchMarketData(ctx context.Context) core.MarketData
	FetchStockQuote(ctx context.Context, symbol string) core.Quote
}

// ChartSource produces the detail price series
type ChartSource interface {
	FetchChartData(ctx context.Context, symbol string, referencePrice float64) []core.ChartPoint
}

// NewsSource produces the detail news feed
type NewsSource interface {
	FetchCompanyNews(ctx context.Context, symbol string) []core.NewsItem
}

// SearchSource resolves search queries to tickers
type SearchSource interface {
	SearchStocks(ctx context.Context, query string) []core.SearchHit
}

// Analyst produces the trade thesis for a stock
type Analyst interface {
	AnalyzeStock(ctx context.Context, quote core.Quote) core.Insight
}

// Dispatcher is the system notification surface
type Dispatcher interface {
	Permission() notifier.Permission
	RequestPermission(ctx context.Context) notifier.Permission
	Dispatch(ctx context.Context, msg notifier.Message) error
}

// Archiver persists market snapshots
type Archiver interface {
	Save(ctx context.Context, data core.MarketData) (string, error)
	Prune(ctx context.Context, keep int) (int, error)
}

// Recorder receives orchestration metrics
type Recorder interface {
	RecordSelection(outcome string)
	RecordSearch(outcome string)
	SetListSizes(watchlist, opportunities int)
}

type nopRecorder struct{}

func (nopRecorder) RecordSelection(string) {}
func (nopRecorder) RecordSearch(string) {}
func (nopRecorder) SetListSizes(int, int) {}

// Deps are the collaborators the App sequences. Notifier may be nil, in
// which case permission stays "default" and no system alert is sent.
type Deps struct {
	Market   MarketSource
	Chart    ChartSource
	News     NewsSource
	Search   SearchSource
	Insight  Analyst
	Notifier Dispatcher
}

// Timings holds the demo timer durations
type Timings struct {
	DiscoveryEnabled bool
	DiscoveryDelay   time.Duration
	ToastDuration    time.Duration
	SearchDebounce   time.Duration
}

// DefaultTimings returns the standard demo timings with discovery enabled.
func DefaultTimings() Timings {
	return Timings{
		DiscoveryEnabled: true,
		DiscoveryDelay:   DefaultDiscoveryDelay,
		ToastDuration:    DefaultToastDuration,
		SearchDebounce:   DefaultSearchDebounce,
	}
}

// Option configures an App
type Option func(*App)

// WithClock sets the clock driving all timers
func WithClock(c clock.Clock) Option {
	return func(a *App) {
		if c != nil {
			a.clock = c
		}
	}
}

// WithTimings overrides the demo timings. Zero durations keep the defaults.
func WithTimings(t Timings) Option {
	return func(a *App) {
		a.timings.DiscoveryEnabled = t.DiscoveryEnabled
		if t.DiscoveryDelay > 0 {
			a.timings.DiscoveryDelay = t.DiscoveryDelay
		}
		if t.ToastDuration > 0 {
			a.timings.ToastDuration = t.ToastDuration
		}
		if t.SearchDebounce > 0 {
			a.timings.SearchDebounce = t.SearchDebounce
		}
	}
}

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) Option {
	return func(a *App) {
		if r != nil {
			a.recorder = r
		}
	}
}

// WithArchiver archives the startup market snapshot, keeping the newest
// keep snapshots (0 keeps all).
func WithArchiver(ar Archiver, keep int) Option {
	return func(a *App) {
		a.archiver = ar
		a.archiveKeep = keep
	}
}

// WithAlertStore sets where raised notifications are recorded
func WithAlertStore(s alert.Store) Option {
	return func(a *App) {
		if s != nil {
			a.alerts = s
		}
	}
}

// App owns the dashboard state and its transitions. All methods are safe
// for concurrent use.
type App struct {
	deps        Deps
	logger      *zap.Logger
	clock       clock.Clock
	timings     Timings
	recorder    Recorder
	archiver    Archiver
	archiveKeep int
	alerts      alert.Store

	mu    sync.Mutex
	state State
	ctx   context.Context

	started   bool
	stopped   bool
	selectGen uint64
	searchGen uint64
	toastGen  uint64

	discoveryTimer clock.Timer
	searchTimer    clock.Timer
	toastTimer     clock.Timer
}

// New creates an App in the DASHBOARD view with empty lists.
func New(deps Deps, logger *zap.Logger, opts ...Option) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{
		deps:     deps,
		logger:   logger,
		clock:    clock.Real(),
		timings:  DefaultTimings(),
		recorder: nopRecorder{},
		alerts:   alert.NewMemoryStore(100),
		state:    initialState(),
		ctx:      context.Background(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// State returns a copy of the current state.
func (a *App) State() State {
	a.mu.Lock()
	s := a.state.clone()
	a.mu.Unlock()

	if a.deps.Notifier != nil {
		s.NotificationPermission = a.deps.Notifier.Permission()
	}
	return s
}

// Start schedules the discovery simulation and loads the market lists
// once. It blocks until the load completes. ctx also scopes the fetches
// issued by later transitions.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.started {
		a.mu.Unlock()
		return fmt.Errorf("app already started")
	}
	a.started = true
	a.ctx = ctx
	a.state.IsLoadingData = true
	if a.timings.DiscoveryEnabled {
		a.discoveryTimer = a.clock.AfterFunc(a.timings.DiscoveryDelay, a.SimulateDiscovery)
	}
	a.mu.Unlock()

	a.logger.Info("AlphaPulse starting",
		zap.Bool("discovery", a.timings.DiscoveryEnabled),
		zap.Duration("discovery_delay", a.timings.DiscoveryDelay),
	)

	data := a.deps.Market.FetchMarketData(ctx)

	a.mu.Lock()
	a.state.Watchlist = mergeLoaded(a.state.Watchlist, data.Watchlist)
	a.state.Opportunities = mergeLoaded(a.state.Opportunities, data.Opportunities)
	a.state.IsLoadingData = false
	watch, opps := len(a.state.Watchlist), len(a.state.Opportunities)
	a.mu.Unlock()

	a.recorder.SetListSizes(watch, opps)
	a.logger.Info("market data loaded",
		zap.Int("watchlist", watch),
		zap.Int("opportunities", opps),
	)

	a.archive(ctx, data)
	return nil
}

func (a *App) archive(ctx context.Context, data core.MarketData) {
	if a.archiver == nil {
		return
	}
	if _, err := a.archiver.Save(ctx, data); err != nil {
		a.logger.Warn("archiving market snapshot failed", zap.Error(err))
		return
	}
	if a.archiveKeep > 0 {
		if _, err := a.archiver.Prune(ctx, a.archiveKeep); err != nil {
			a.logger.Warn("pruning market snapshots failed", zap.Error(err))
		}
	}
}

// Stop cancels every pending timer. In-flight fetches still complete but
// no timer fires afterwards.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopped = true
	for _, t := range []clock.Timer{a.discoveryTimer, a.searchTimer, a.toastTimer} {
		if t != nil {
			t.Stop()
		}
	}
	a.discoveryTimer, a.searchTimer, a.toastTimer = nil, nil, nil
	a.logger.Info("AlphaPulse stopped")
}

// Select opens the detail view for stock and fetches insight, chart and
// news concurrently. The results are applied together only if no later
// Select happened meanwhile. The returned channel closes once the
// selection settles, applied or dropped.
func (a *App) Select(stock core.Quote) <-chan struct{} {
	a.mu.Lock()
	a.selectGen++
	gen := a.selectGen
	a.state.SelectedStock = &stock
	a.state.View = ViewDetail
	a.state.CurrentInsight = nil
	a.state.IsAnalyzing = true
	a.state.Chart = []core.ChartPoint{}
	a.state.News = []core.NewsItem{}
	ctx := a.ctx
	a.mu.Unlock()

	a.logger.Debug("stock selected", zap.String("symbol", stock.Symbol), zap.Uint64("generation", gen))

	done := make(chan struct{})
	go func() {
		defer close(done)

		var (
			insight core.Insight
			chart   []core.ChartPoint
			news    []core.NewsItem
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			insight = a.deps.Insight.AnalyzeStock(gctx, stock)
			return nil
		})
		g.Go(func() error {
			chart = a.deps.Chart.FetchChartData(gctx, stock.Symbol, stock.Price)
			return nil
		})
		g.Go(func() error {
			news = a.deps.News.FetchCompanyNews(gctx, stock.Symbol)
			return nil
		})
		// Every source falls back instead of failing.
		_ = g.Wait()

		a.mu.Lock()
		if gen != a.selectGen {
			a.mu.Unlock()
			a.recorder.RecordSelection("stale")
			a.logger.Debug("discarding superseded selection", zap.String("symbol", stock.Symbol), zap.Uint64("generation", gen))
			return
		}
		a.state.CurrentInsight = &insight
		a.state.Chart = nonNil(chart)
		a.state.News = nonNil(news)
		a.state.IsAnalyzing = false
		a.mu.Unlock()

		a.recorder.RecordSelection("applied")
	}()
	return done
}

// Back returns to the dashboard. The selection is kept but not shown.
func (a *App) Back() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state.View = ViewDashboard
}

// SetTab switches the dashboard list.
func (a *App) SetTab(tab Tab) error {
	if !tab.Valid() {
		return core.WrapError(core.ErrInvalidRequest, fmt.Errorf("unknown tab %q", tab))
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state.ActiveTab = tab
	return nil
}

// AddStock closes the search surface and prepends a freshly fetched quote
// for symbol to the watchlist. Symbols already on the watchlist are left
// alone. The returned channel closes once the watchlist is settled.
func (a *App) AddStock(symbol string) <-chan struct{} {
	done := make(chan struct{})
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	a.mu.Lock()
	a.closeSearchLocked()
	if symbol == "" || containsSymbol(a.state.Watchlist, symbol) {
		a.mu.Unlock()
		close(done)
		return done
	}
	ctx := a.ctx
	a.mu.Unlock()

	go func() {
		defer close(done)
		quote := a.deps.Market.FetchStockQuote(ctx, symbol)

		a.mu.Lock()
		// A concurrent add may have won the race.
		if containsSymbol(a.state.Watchlist, quote.Symbol) {
			a.mu.Unlock()
			return
		}
		a.state.Watchlist = prepend(a.state.Watchlist, quote)
		watch, opps := len(a.state.Watchlist), len(a.state.Opportunities)
		a.mu.Unlock()

		a.recorder.SetListSizes(watch, opps)
		a.logger.Info("stock added to watchlist", zap.String("symbol", quote.Symbol))
	}()
	return done
}

// SimulateDiscovery raises the fixed discovery opportunity. It does
// nothing when that symbol is already an opportunity.
func (a *App) SimulateDiscovery() {
	stock := Discovery()

	a.mu.Lock()
	if a.stopped || containsSymbol(a.state.Opportunities, stock.Symbol) {
		a.mu.Unlock()
		return
	}
	a.state.Opportunities = prepend(a.state.Opportunities, stock)

	n := core.Notification{
		ID:        uuid.NewString(),
		Title:     fmt.Sprintf("🚀 AI Signal: %s", stock.Symbol),
		Body:      "Confidence 96%. Breakout detected.",
		Stock:     stock,
		CreatedAt: a.clock.Now(),
	}
	a.showToastLocked(n)
	watch, opps := len(a.state.Watchlist), len(a.state.Opportunities)
	ctx := a.ctx
	a.mu.Unlock()

	a.recorder.SetListSizes(watch, opps)
	a.logger.Info("opportunity discovered", zap.String("symbol", stock.Symbol))

	if _, err := a.alerts.Save(ctx, n); err != nil {
		a.logger.Warn("recording notification failed", zap.Error(err))
	}
	a.pushSystemAlert(ctx, n)
}

func (a *App) pushSystemAlert(ctx context.Context, n core.Notification) {
	if a.deps.Notifier == nil || a.deps.Notifier.Permission() != notifier.PermissionGranted {
		return
	}
	stock := n.Stock
	err := a.deps.Notifier.Dispatch(ctx, notifier.Message{
		Title:              n.Title,
		Body:               n.Body,
		Stock:              &stock,
		Icon:               notifier.DefaultIcon,
		Vibrate:            DiscoveryVibrate,
		Tag:                DiscoveryTag,
		RequireInteraction: true,
		CreatedAt:          n.CreatedAt,
	})
	if err != nil {
		a.logger.Warn("system notification failed", zap.String("symbol", stock.Symbol), zap.Error(err))
	}
}

// showToastLocked replaces the current toast and restarts its expiry.
func (a *App) showToastLocked(n core.Notification) {
	if a.toastTimer != nil {
		a.toastTimer.Stop()
	}
	a.toastGen++
	gen := a.toastGen
	a.state.PendingNotification = &n
	a.toastTimer = a.clock.AfterFunc(a.timings.ToastDuration, func() { a.expireToast(gen) })
}

func (a *App) expireToast(gen uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.toastGen {
		return
	}
	a.state.PendingNotification = nil
	a.toastTimer = nil
}

// DismissNotification clears the toast, if any.
func (a *App) DismissNotification() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.dismissLocked()
}

func (a *App) dismissLocked() {
	if a.toastTimer != nil {
		a.toastTimer.Stop()
		a.toastTimer = nil
	}
	a.toastGen++
	a.state.PendingNotification = nil
}

// ClickNotification selects the toast's stock and dismisses the toast.
// It reports false when no toast is showing.
func (a *App) ClickNotification() (<-chan struct{}, bool) {
	a.mu.Lock()
	pending := a.state.PendingNotification
	if pending == nil {
		a.mu.Unlock()
		return nil, false
	}
	stock := pending.Stock
	a.dismissLocked()
	a.mu.Unlock()

	return a.Select(stock), true
}

// RequestNotificationPermission asks the platform for permission to send
// system alerts and returns the resulting state.
func (a *App) RequestNotificationPermission(ctx context.Context) notifier.Permission {
	if a.deps.Notifier == nil {
		return notifier.PermissionDenied
	}
	perm := a.deps.Notifier.RequestPermission(ctx)

	a.mu.Lock()
	a.state.NotificationPermission = perm
	a.mu.Unlock()
	return perm
}

// Notifications returns the most recent raised notifications, newest first.
func (a *App) Notifications(ctx context.Context, limit int) ([]core.Notification, error) {
	return a.alerts.List(ctx, alert.ListFilter{Limit: limit})
}

// OpenSearch shows the search surface with an empty query.
func (a *App) OpenSearch() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cancelSearchLocked()
	a.state.SearchOpen = true
	a.state.SearchQuery = ""
	a.state.SearchResults = []core.SearchHit{}
}

// CloseSearch hides the search surface and drops any pending search.
func (a *App) CloseSearch() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closeSearchLocked()
}

func (a *App) closeSearchLocked() {
	a.cancelSearchLocked()
	a.state.SearchOpen = false
}

func (a *App) cancelSearchLocked() {
	a.searchGen++
	if a.searchTimer != nil {
		a.searchTimer.Stop()
		a.searchTimer = nil
	}
	a.state.IsSearching = false
}

// Search records a keystroke. The query runs after the debounce window
// passes without another keystroke, and only the latest query's results
// are applied.
func (a *App) Search(query string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.cancelSearchLocked()
	a.state.SearchQuery = query
	gen := a.searchGen

	if a.stopped {
		return
	}
	a.searchTimer = a.clock.AfterFunc(a.timings.SearchDebounce, func() { a.runSearch(gen, query) })
}

func (a *App) runSearch(gen uint64, query string) {
	a.mu.Lock()
	if gen != a.searchGen {
		a.mu.Unlock()
		return
	}
	a.searchTimer = nil
	if strings.TrimSpace(query) == "" {
		a.state.SearchResults = []core.SearchHit{}
		a.mu.Unlock()
		return
	}
	a.state.IsSearching = true
	ctx := a.ctx
	a.mu.Unlock()

	hits := a.deps.Search.SearchStocks(ctx, query)

	a.mu.Lock()
	if gen != a.searchGen {
		a.mu.Unlock()
		a.recorder.RecordSearch("stale")
		return
	}
	a.state.SearchResults = nonNil(hits)
	a.state.IsSearching = false
	a.mu.Unlock()

	a.recorder.RecordSearch("applied")
}

// FindQuote looks symbol up in the watchlist then the opportunities.
func (a *App) FindQuote(symbol string) (core.Quote, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, list := range [][]core.Quote{a.state.Watchlist, a.state.Opportunities} {
		for _, q := range list {
			if q.Symbol == symbol {
				return q, true
			}
		}
	}
	return core.Quote{}, false
}

// Quote returns the listed quote for symbol, or fetches one through the
// market source when it is on neither list.
func (a *App) Quote(ctx context.Context, symbol string) core.Quote {
	if q, ok := a.FindQuote(symbol); ok {
		return q
	}
	return a.deps.Market.FetchStockQuote(ctx, symbol)
}

// Analyze produces a standalone thesis for symbol without touching the
// dashboard state.
func (a *App) Analyze(ctx context.Context, symbol string) (core.Quote, core.Insight) {
	q := a.Quote(ctx, symbol)
	return q, a.deps.Insight.AnalyzeStock(ctx, q)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
