// internal/storage/alert/interface.go
package alert

import (
	"context"
	"time"

	"github.com/newthinker/alphapulse/internal/core"
)

// Store persists the opportunity notifications raised by the dashboard.
type Store interface {
	// Save persists a notification, assigning an ID when it has none.
	Save(ctx context.Context, n core.Notification) (core.Notification, error)

	// GetByID retrieves a notification by its ID.
	GetByID(ctx context.Context, id string) (*core.Notification, error)

	// List retrieves notifications matching the filter, newest first.
	List(ctx context.Context, filter ListFilter) ([]core.Notification, error)

	// Count returns the number of notifications matching the filter.
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// ListFilter defines criteria for listing notifications.
type ListFilter struct {
	Symbol string
	From   time.Time
	To     time.Time
	Limit  int
	Offset int
}
