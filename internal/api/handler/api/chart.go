// internal/api/handler/api/chart.go
package api

import (
	"net/http"
	"strconv"

	"github.com/newthinker/alphapulse/internal/api/response"
	"github.com/newthinker/alphapulse/internal/app"
	"github.com/newthinker/alphapulse/internal/core"
	"github.com/newthinker/alphapulse/internal/render"
)

// ChartApp defines the interface needed from app.App.
type ChartApp interface {
	State() app.State
}

// ChartHandler renders the detail view's price series.
type ChartHandler struct {
	app ChartApp
}

// NewChartHandler creates a new chart handler.
func NewChartHandler(app ChartApp) *ChartHandler {
	return &ChartHandler{app: app}
}

// PNG writes the selected stock's chart as an image. It fails with 404
// until a selection has loaded its series.
func (h *ChartHandler) PNG(w http.ResponseWriter, r *http.Request) {
	s := h.app.State()
	if s.SelectedStock == nil || len(s.Chart) < 2 {
		response.Error(w, http.StatusNotFound, core.ErrNoData)
		return
	}

	img, err := render.PriceChart(s.SelectedStock.Symbol, s.Chart)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(img)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(img)
}
