package notifier

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/newthinker/alphapulse/internal/core"
)

// DefaultIcon is attached to system notifications that carry no icon.
const DefaultIcon = "https://cdn-icons-png.flaticon.com/512/5836/5836233.png"

// Permission is the system notification permission state
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// WelcomeMessage is dispatched once when permission is granted.
func WelcomeMessage() Message {
	return Message{
		Title:   "AlphaPulse Active",
		Body:    "System notifications enabled.",
		Icon:    DefaultIcon,
		Vibrate: []int{100, 50, 100},
	}
}

// Recorder receives one event per channel delivery.
type Recorder interface {
	RecordNotification(channel, status string)
}

type nopRecorder struct{}

func (nopRecorder) RecordNotification(string, string) {}

// PlatformOption configures a Platform
type PlatformOption func(*Platform)

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) PlatformOption {
	return func(p *Platform) {
		if r != nil {
			p.recorder = r
		}
	}
}

// WithNow overrides the time source used to stamp messages
func WithNow(now func() time.Time) PlatformOption {
	return func(p *Platform) {
		if now != nil {
			p.now = now
		}
	}
}

// Platform is the system notification surface: a permission gate in front
// of the registered channels.
type Platform struct {
	mu         sync.Mutex
	registry   *Registry
	permission Permission
	logger     *zap.Logger
	recorder   Recorder
	now        func() time.Time
}

// NewPlatform creates a platform over registry with permission "default".
func NewPlatform(registry *Registry, logger *zap.Logger, opts ...PlatformOption) *Platform {
	if registry == nil {
		registry = NewRegistry()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Platform{
		registry:   registry,
		permission: PermissionDefault,
		logger:     logger,
		recorder:   nopRecorder{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Permission returns the current permission state.
func (p *Platform) Permission() Permission {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.permission
}

// RequestPermission resolves a "default" permission: granted when at least
// one channel is registered, denied otherwise. A settled permission is
// returned unchanged. On grant the welcome message is dispatched.
func (p *Platform) RequestPermission(ctx context.Context) Permission {
	p.mu.Lock()
	if p.permission != PermissionDefault {
		perm := p.permission
		p.mu.Unlock()
		return perm
	}
	if p.registry.Len() > 0 {
		p.permission = PermissionGranted
	} else {
		p.permission = PermissionDenied
	}
	perm := p.permission
	p.mu.Unlock()

	p.logger.Info("notification permission resolved", zap.String("permission", string(perm)))

	if perm == PermissionGranted {
		if err := p.Dispatch(ctx, WelcomeMessage()); err != nil {
			p.logger.Warn("welcome notification failed", zap.Error(err))
		}
	}
	return perm
}

// Dispatch delivers msg to every registered channel. It fails when
// permission is not granted or any channel fails; the remaining channels
// are still attempted.
func (p *Platform) Dispatch(ctx context.Context, msg Message) error {
	if perm := p.Permission(); perm != PermissionGranted {
		return core.WrapError(core.ErrNotifierFailed, fmt.Errorf("permission %s", perm))
	}
	if msg.Icon == "" {
		msg.Icon = DefaultIcon
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = p.now()
	}

	failures := p.registry.NotifyAll(ctx, msg)
	for _, n := range p.registry.GetAll() {
		status := "success"
		if _, failed := failures[n.Name()]; failed {
			status = "error"
		}
		p.recorder.RecordNotification(n.Name(), status)
	}
	if len(failures) == 0 {
		return nil
	}

	names := make([]string, 0, len(failures))
	for name := range failures {
		names = append(names, name)
	}
	sort.Strings(names)
	errs := make([]error, 0, len(names))
	for _, name := range names {
		errs = append(errs, fmt.Errorf("%s: %w", name, failures[name]))
	}
	return core.WrapError(core.ErrNotifierFailed, errors.Join(errs...))
}
