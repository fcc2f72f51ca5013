// internal/api/handler/api/search.go
package api

import (
	"net/http"

	"github.com/newthinker/alphapulse/internal/api/response"
	"github.com/newthinker/alphapulse/internal/app"
)

// SearchApp defines the interface needed from app.App.
type SearchApp interface {
	State() app.State
	OpenSearch()
	CloseSearch()
	Search(query string)
}

// SearchHandler drives the search surface.
type SearchHandler struct {
	app SearchApp
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(app SearchApp) *SearchHandler {
	return &SearchHandler{app: app}
}

// SearchRequest is one keystroke's worth of query text.
type SearchRequest struct {
	Query string `json:"query"`
}

// Open shows the search surface with a cleared query.
func (h *SearchHandler) Open(w http.ResponseWriter, r *http.Request) {
	h.app.OpenSearch()
	h.writeSearch(w, http.StatusOK)
}

// Close hides the search surface.
func (h *SearchHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.app.CloseSearch()
	h.writeSearch(w, http.StatusOK)
}

// Query records the query text. The lookup runs after the debounce, so
// results are read back with Results.
func (h *SearchHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, err)
		return
	}
	h.app.Search(req.Query)
	h.writeSearch(w, http.StatusAccepted)
}

// Results returns the search surface.
func (h *SearchHandler) Results(w http.ResponseWriter, r *http.Request) {
	h.writeSearch(w, http.StatusOK)
}

func (h *SearchHandler) writeSearch(w http.ResponseWriter, status int) {
	s := h.app.State()
	response.JSON(w, status, map[string]any{
		"open":      s.SearchOpen,
		"query":     s.SearchQuery,
		"results":   s.SearchResults,
		"searching": s.IsSearching,
	})
}
