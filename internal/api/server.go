// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	handler "github.com/newthinker/alphapulse/internal/api/handler/api"
	"github.com/newthinker/alphapulse/internal/api/middleware"
	"github.com/newthinker/alphapulse/internal/api/response"
	"github.com/newthinker/alphapulse/internal/app"
	"github.com/newthinker/alphapulse/internal/metrics"
	"github.com/newthinker/alphapulse/internal/storage/alert"
)

// DefaultMetricsPath is where Prometheus metrics are served when no path
// is configured.
const DefaultMetricsPath = "/metrics"

// Server represents the HTTP server for AlphaPulse
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
	v1         *http.ServeMux
}

// Config holds server configuration
type Config struct {
	Host        string
	Port        int
	APIKey      string
	MetricsPath string
}

// Dependencies are the collaborators the routes are served from. Metrics
// may be nil, which disables the metrics endpoint and middleware.
type Dependencies struct {
	App     *app.App
	Alerts  alert.Store
	Metrics *metrics.Registry
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Dependencies, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.App == nil {
		return nil, fmt.Errorf("api: app is required")
	}
	if deps.Alerts == nil {
		deps.Alerts = alert.NewMemoryStore(100)
	}

	mux := http.NewServeMux()

	s := &Server{
		logger: logger,
		mux:    mux,
	}
	s.setupRoutes(cfg, deps)

	var h http.Handler = mux
	if deps.Metrics != nil {
		h = metrics.HTTPMiddleware(deps.Metrics, s.routeLabel)(h)
	}
	h = metrics.LoggingMiddleware(logger)(h)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config, deps Dependencies) {
	s.mux.HandleFunc("GET /api/health", s.handleHealth)

	if deps.Metrics != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = DefaultMetricsPath
		}
		s.mux.Handle("GET "+path, promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	state := handler.NewStateHandler(deps.App)
	watchlist := handler.NewWatchlistHandler(deps.App)
	search := handler.NewSearchHandler(deps.App)
	notifications := handler.NewNotificationsHandler(deps.App, deps.Alerts)
	insight := handler.NewInsightHandler(deps.App)
	chart := handler.NewChartHandler(deps.App)

	v1 := http.NewServeMux()
	s.v1 = v1
	v1.HandleFunc("GET /api/v1/state", state.Get)
	v1.HandleFunc("POST /api/v1/select", state.Select)
	v1.HandleFunc("POST /api/v1/back", state.Back)
	v1.HandleFunc("POST /api/v1/tab", state.SetTab)

	v1.HandleFunc("GET /api/v1/watchlist", watchlist.List)
	v1.HandleFunc("POST /api/v1/watchlist", watchlist.Add)

	v1.HandleFunc("POST /api/v1/search/open", search.Open)
	v1.HandleFunc("POST /api/v1/search/close", search.Close)
	v1.HandleFunc("POST /api/v1/search", search.Query)
	v1.HandleFunc("GET /api/v1/search", search.Results)

	v1.HandleFunc("GET /api/v1/notifications", notifications.List)
	v1.HandleFunc("GET /api/v1/notifications/{id}", notifications.Get)
	v1.HandleFunc("POST /api/v1/notifications/permission", notifications.RequestPermission)
	v1.HandleFunc("POST /api/v1/notifications/dismiss", notifications.Dismiss)
	v1.HandleFunc("POST /api/v1/notifications/click", notifications.Click)

	v1.HandleFunc("GET /api/v1/insight/{symbol}", insight.Get)
	v1.HandleFunc("GET /api/v1/chart.png", chart.PNG)

	s.mux.Handle("/api/v1/", middleware.APIKeyAuth(cfg.APIKey)(v1))
}

// routeLabel names the registered pattern a request matches, so path
// parameters do not multiply metric series.
func (s *Server) routeLabel(r *http.Request) string {
	mux := s.mux
	if strings.HasPrefix(r.URL.Path, "/api/v1/") {
		mux = s.v1
	}
	_, pattern := mux.Handler(r)
	if pattern == "" {
		return "unmatched"
	}
	if _, path, ok := strings.Cut(pattern, " "); ok {
		return path
	}
	return pattern
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
