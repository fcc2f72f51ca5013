// internal/api/handler/api/insight.go
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/newthinker/alphapulse/internal/api/response"
	"github.com/newthinker/alphapulse/internal/core"
)

// InsightApp defines the interface needed from app.App.
type InsightApp interface {
	Analyze(ctx context.Context, symbol string) (core.Quote, core.Insight)
}

// InsightHandler produces standalone trade theses.
type InsightHandler struct {
	app InsightApp
}

// NewInsightHandler creates a new insight handler.
func NewInsightHandler(app InsightApp) *InsightHandler {
	return &InsightHandler{app: app}
}

// Get analyzes the symbol in the path. The dashboard state is untouched.
func (h *InsightHandler) Get(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(r.PathValue("symbol")))
	if symbol == "" {
		response.Error(w, http.StatusBadRequest, core.ErrInvalidRequest)
		return
	}

	quote, insight := h.app.Analyze(r.Context(), symbol)
	response.JSON(w, http.StatusOK, map[string]any{
		"quote":   quote,
		"insight": insight,
	})
}
