// internal/api/handler/api/watchlist.go
package api

import (
	"net/http"
	"strings"

	"github.com/newthinker/alphapulse/internal/api/response"
	"github.com/newthinker/alphapulse/internal/app"
	"github.com/newthinker/alphapulse/internal/core"
)

// WatchlistApp defines the interface needed from app.App.
type WatchlistApp interface {
	State() app.State
	AddStock(symbol string) <-chan struct{}
}

// WatchlistHandler handles watchlist API requests.
type WatchlistHandler struct {
	app WatchlistApp
}

// NewWatchlistHandler creates a new watchlist handler.
func NewWatchlistHandler(app WatchlistApp) *WatchlistHandler {
	return &WatchlistHandler{app: app}
}

// AddRequest is the request body for adding a symbol.
type AddRequest struct {
	Symbol string `json:"symbol"`
}

// List returns the watchlist and opportunity quotes.
func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	s := h.app.State()
	response.JSON(w, http.StatusOK, map[string]any{
		"watchlist":     s.Watchlist,
		"opportunities": s.Opportunities,
		"count":         len(s.Watchlist),
		"loading":       s.IsLoadingData,
	})
}

// Add fetches a quote for the symbol and puts it at the head of the
// watchlist. Adding a listed symbol is a no-op reported as added=false.
func (h *WatchlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, err)
		return
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		response.Error(w, http.StatusBadRequest, core.ErrInvalidRequest)
		return
	}

	listed := containsSymbol(h.app.State().Watchlist, symbol)
	if !waitFor(r, h.app.AddStock(symbol)) {
		return
	}

	if listed {
		response.JSON(w, http.StatusOK, map[string]any{
			"symbol": symbol,
			"added":  false,
		})
		return
	}

	s := h.app.State()
	response.JSON(w, http.StatusCreated, map[string]any{
		"symbol":    symbol,
		"added":     true,
		"watchlist": s.Watchlist,
	})
}

func containsSymbol(list []core.Quote, symbol string) bool {
	for _, q := range list {
		if q.Symbol == symbol {
			return true
		}
	}
	return false
}
