package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Business metrics
	providerRequests   *prometheus.CounterVec
	fallbacks          *prometheus.CounterVec
	marketDataAttempts prometheus.Histogram
	selections         *prometheus.CounterVec
	searches           *prometheus.CounterVec
	notifications      *prometheus.CounterVec
	insightDuration    prometheus.Histogram
	watchlistSymbols   prometheus.Gauge
	opportunities      prometheus.Gauge
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	// Business metrics
	r.providerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alphapulse_provider_requests_total",
			Help: "Total number of market data provider requests",
		},
		[]string{"provider", "endpoint", "status"},
	)
	r.fallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alphapulse_fallbacks_total",
			Help: "Total number of responses served from mock or synthetic data",
		},
		[]string{"component"},
	)
	r.marketDataAttempts = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "alphapulse_market_data_attempts",
			Help:    "Dates tried per market data load",
			Buckets: []float64{1, 2, 3, 4, 5},
		},
	)
	r.selections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alphapulse_selections_total",
			Help: "Stock selections by outcome",
		},
		[]string{"outcome"},
	)
	r.searches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alphapulse_searches_total",
			Help: "Debounced searches by outcome",
		},
		[]string{"outcome"},
	)
	r.notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alphapulse_notifications_total",
			Help: "Notifications dispatched by channel",
		},
		[]string{"channel", "status"},
	)
	r.insightDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "alphapulse_insight_duration_seconds",
			Help:    "Reasoning service latency in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
		},
	)
	r.watchlistSymbols = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "alphapulse_watchlist_symbols",
			Help: "Number of symbols in watchlist",
		},
	)
	r.opportunities = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "alphapulse_opportunity_symbols",
			Help: "Number of symbols in the opportunity feed",
		},
	)

	reg.MustRegister(r.providerRequests)
	reg.MustRegister(r.fallbacks)
	reg.MustRegister(r.marketDataAttempts)
	reg.MustRegister(r.selections)
	reg.MustRegister(r.searches)
	reg.MustRegister(r.notifications)
	reg.MustRegister(r.insightDuration)
	reg.MustRegister(r.watchlistSymbols)
	reg.MustRegister(r.opportunities)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordProviderRequest records one outbound provider call.
func (r *Registry) RecordProviderRequest(provider, endpoint, status string) {
	r.providerRequests.WithLabelValues(provider, endpoint, status).Inc()
}

// RecordFallback records a response served from mock or synthetic data.
func (r *Registry) RecordFallback(component string) {
	r.fallbacks.WithLabelValues(component).Inc()
}

// RecordMarketDataAttempts records how many dates a market data load tried.
func (r *Registry) RecordMarketDataAttempts(attempts int) {
	r.marketDataAttempts.Observe(float64(attempts))
}

// RecordSelection records whether a selection's results were applied or dropped.
func (r *Registry) RecordSelection(outcome string) {
	r.selections.WithLabelValues(outcome).Inc()
}

// RecordSearch records whether a debounced search result was applied or dropped.
func (r *Registry) RecordSearch(outcome string) {
	r.searches.WithLabelValues(outcome).Inc()
}

// RecordNotification records a notification dispatch.
func (r *Registry) RecordNotification(channel, status string) {
	r.notifications.WithLabelValues(channel, status).Inc()
}

// RecordInsight records reasoning service latency.
func (r *Registry) RecordInsight(duration float64) {
	r.insightDuration.Observe(duration)
}

// SetListSizes sets the watchlist and opportunity gauges.
func (r *Registry) SetListSizes(watchlist, opportunities int) {
	r.watchlistSymbols.Set(float64(watchlist))
	r.opportunities.Set(float64(opportunities))
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
