// internal/api/handler/api/state.go
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/newthinker/alphapulse/internal/api/response"
	"github.com/newthinker/alphapulse/internal/app"
	"github.com/newthinker/alphapulse/internal/core"
)

// StateApp defines the interface needed from app.App.
type StateApp interface {
	State() app.State
	FindQuote(symbol string) (core.Quote, bool)
	Quote(ctx context.Context, symbol string) core.Quote
	Select(stock core.Quote) <-chan struct{}
	Back()
	SetTab(tab app.Tab) error
}

// StateHandler serves the dashboard state and its navigation transitions.
type StateHandler struct {
	app StateApp
}

// NewStateHandler creates a new state handler.
func NewStateHandler(app StateApp) *StateHandler {
	return &StateHandler{app: app}
}

// SelectRequest is the request body for selecting a stock.
type SelectRequest struct {
	Symbol string `json:"symbol"`
}

// TabRequest is the request body for switching tabs.
type TabRequest struct {
	Tab string `json:"tab"`
}

// Get returns the current state.
func (h *StateHandler) Get(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.app.State())
}

// Select opens the detail view for a symbol. Listed symbols reuse their
// quote; others are fetched first. The detail payload loads in the
// background unless ?wait=true is given.
func (h *StateHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, err)
		return
	}
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		response.Error(w, http.StatusBadRequest, core.ErrInvalidRequest)
		return
	}

	quote, ok := h.app.FindQuote(symbol)
	if !ok {
		quote = h.app.Quote(r.Context(), symbol)
	}
	done := h.app.Select(quote)

	if !waitRequested(r) {
		response.JSON(w, http.StatusAccepted, h.app.State())
		return
	}
	if !waitFor(r, done) {
		return
	}
	response.JSON(w, http.StatusOK, h.app.State())
}

// Back returns to the dashboard.
func (h *StateHandler) Back(w http.ResponseWriter, r *http.Request) {
	h.app.Back()
	response.JSON(w, http.StatusOK, h.app.State())
}

// SetTab switches the dashboard list.
func (h *StateHandler) SetTab(w http.ResponseWriter, r *http.Request) {
	var req TabRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, err)
		return
	}
	if err := h.app.SetTab(app.Tab(strings.ToUpper(req.Tab))); err != nil {
		response.Error(w, http.StatusBadRequest, err)
		return
	}
	response.JSON(w, http.StatusOK, h.app.State())
}

func waitRequested(r *http.Request) bool {
	return r.URL.Query().Get("wait") == "true"
}

// waitFor blocks until done closes or the client goes away. It reports
// false in the latter case; nothing is written then.
func waitFor(r *http.Request, done <-chan struct{}) bool {
	select {
	case <-done:
		return true
	case <-r.Context().Done():
		return false
	}
}
