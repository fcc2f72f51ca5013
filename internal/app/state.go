package app

import (
	"slices"

	"github.com/newthinker/alphapulse/internal/core"
	"github.com/newthinker/alphapulse/internal/notifier"
)

// View is the screen the dashboard is showing
type View string

const (
	ViewDashboard View = "DASHBOARD"
	ViewDetail    View = "DETAIL"
)

// Tab selects which list the dashboard shows
type Tab string

const (
	TabWatchlist     Tab = "WATCHLIST"
	TabOpportunities Tab = "OPPORTUNITIES"
)

// Valid reports whether t is a known tab.
func (t Tab) Valid() bool {
	return t == TabWatchlist || t == TabOpportunities
}

// State is a point-in-time copy of the dashboard state. Mutating it has no
// effect on the App it came from.
type State struct {
	View           View          `json:"view"`
	SelectedStock  *core.Quote   `json:"selectedStock"`
	CurrentInsight *core.Insight `json:"currentInsight"`
	IsAnalyzing    bool          `json:"isAnalyzing"`
	ActiveTab      Tab           `json:"activeTab"`

	Watchlist     []core.Quote `json:"watchlist"`
	Opportunities []core.Quote `json:"opportunities"`
	IsLoadingData bool         `json:"isLoadingData"`

	Chart []core.ChartPoint `json:"chart"`
	News  []core.NewsItem   `json:"news"`

	SearchOpen    bool             `json:"searchOpen"`
	SearchQuery   string           `json:"searchQuery"`
	SearchResults []core.SearchHit `json:"searchResults"`
	IsSearching   bool             `json:"isSearching"`

	PendingNotification    *core.Notification  `json:"pendingNotification"`
	NotificationPermission notifier.Permission `json:"notificationPermission"`
}

func initialState() State {
	return State{
		View:                   ViewDashboard,
		ActiveTab:              TabWatchlist,
		Watchlist:              []core.Quote{},
		Opportunities:          []core.Quote{},
		Chart:                  []core.ChartPoint{},
		News:                   []core.NewsItem{},
		SearchResults:          []core.SearchHit{},
		NotificationPermission: notifier.PermissionDefault,
	}
}

func (s State) clone() State {
	out := s
	out.SelectedStock = clonePtr(s.SelectedStock)
	out.PendingNotification = clonePtr(s.PendingNotification)
	if s.CurrentInsight != nil {
		in := *s.CurrentInsight
		in.KeyDrivers = slices.Clone(in.KeyDrivers)
		in.RiskFactors = slices.Clone(in.RiskFactors)
		out.CurrentInsight = &in
	}
	out.Watchlist = slices.Clone(s.Watchlist)
	out.Opportunities = slices.Clone(s.Opportunities)
	out.Chart = slices.Clone(s.Chart)
	out.News = slices.Clone(s.News)
	out.SearchResults = slices.Clone(s.SearchResults)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func containsSymbol(list []core.Quote, symbol string) bool {
	return slices.ContainsFunc(list, func(q core.Quote) bool { return q.Symbol == symbol })
}

// prepend returns a new slice with q at the head; list is left untouched.
func prepend(list []core.Quote, q core.Quote) []core.Quote {
	out := make([]core.Quote, 0, len(list)+1)
	out = append(out, q)
	return append(out, list...)
}

// mergeLoaded keeps entries added before the startup load ahead of the
// loaded ones and drops loaded duplicates.
func mergeLoaded(existing, loaded []core.Quote) []core.Quote {
	out := make([]core.Quote, 0, len(existing)+len(loaded))
	out = append(out, existing...)
	for _, q := range loaded {
		if !containsSymbol(out, q.Symbol) {
			out = append(out, q)
		}
	}
	return out
}
