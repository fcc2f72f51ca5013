// internal/api/handler/api/notifications.go
package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/newthinker/alphapulse/internal/api/response"
	"github.com/newthinker/alphapulse/internal/app"
	"github.com/newthinker/alphapulse/internal/core"
	"github.com/newthinker/alphapulse/internal/notifier"
	"github.com/newthinker/alphapulse/internal/storage/alert"
)

// NotificationsApp defines the interface needed from app.App.
type NotificationsApp interface {
	State() app.State
	RequestNotificationPermission(ctx context.Context) notifier.Permission
	DismissNotification()
	ClickNotification() (<-chan struct{}, bool)
}

// NotificationsHandler handles the toast, the permission flow and the
// notification history.
type NotificationsHandler struct {
	app   NotificationsApp
	store alert.Store
}

// NewNotificationsHandler creates a new notifications handler.
func NewNotificationsHandler(app NotificationsApp, store alert.Store) *NotificationsHandler {
	return &NotificationsHandler{app: app, store: store}
}

// RequestPermission asks for system notification permission.
func (h *NotificationsHandler) RequestPermission(w http.ResponseWriter, r *http.Request) {
	perm := h.app.RequestNotificationPermission(r.Context())
	response.JSON(w, http.StatusOK, map[string]any{
		"permission": perm,
	})
}

// Dismiss hides the pending toast.
func (h *NotificationsHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	h.app.DismissNotification()
	response.JSON(w, http.StatusOK, h.app.State())
}

// Click opens the toast's stock. It fails with 404 when no toast is
// showing.
func (h *NotificationsHandler) Click(w http.ResponseWriter, r *http.Request) {
	done, ok := h.app.ClickNotification()
	if !ok {
		response.Error(w, http.StatusNotFound, core.ErrNoData)
		return
	}
	if !waitRequested(r) {
		response.JSON(w, http.StatusAccepted, h.app.State())
		return
	}
	if !waitFor(r, done) {
		return
	}
	response.JSON(w, http.StatusOK, h.app.State())
}

// List returns raised notifications matching query parameters.
func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := alert.ListFilter{
		Symbol: strings.ToUpper(q.Get("symbol")),
	}

	if from := q.Get("from"); from != "" {
		if t, ok := parseTime(from); ok {
			filter.From = t
		}
	}

	if to := q.Get("to"); to != "" {
		if t, ok := parseTime(to); ok {
			filter.To = t
		}
	}

	if limit := q.Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil {
			filter.Limit = n
		}
	} else {
		filter.Limit = 50 // Default limit
	}

	if offset := q.Get("offset"); offset != "" {
		if n, err := strconv.Atoi(offset); err == nil {
			filter.Offset = n
		}
	}

	items, err := h.store.List(r.Context(), filter)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err)
		return
	}

	count, _ := h.store.Count(r.Context(), filter)

	response.JSON(w, http.StatusOK, map[string]any{
		"notifications": items,
		"total":         count,
		"limit":         filter.Limit,
		"offset":        filter.Offset,
	})
}

// Get returns a single notification by ID.
func (h *NotificationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		response.Error(w, http.StatusNotFound, err)
		return
	}

	response.JSON(w, http.StatusOK, n)
}

func parseTime(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
