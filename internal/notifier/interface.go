package notifier

import (
	"context"
	"time"

	"github.com/newthinker/alphapulse/internal/core"
)

// Config holds notifier configuration
type Config struct {
	Type   string         `mapstructure:"type"`
	Params map[string]any `mapstructure:"params"`
}

// Message is a system notification as delivered to a channel
type Message struct {
	Title string
	Body  string
	// Stock is the quote the notification points at, if any.
	Stock *core.Quote
	// Presentation hints; channels that cannot render them ignore them.
	Icon               string
	Vibrate            []int
	Tag                string
	RequireInteraction bool
	CreatedAt          time.Time
}

// Notifier defines the interface for a notification channel
type Notifier interface {
	// Name returns the unique identifier for this notifier
	Name() string

	// Init initializes the notifier with configuration
	Init(cfg Config) error

	// Send delivers a single notification
	Send(ctx context.Context, msg Message) error
}
