// internal/storage/alert/memory.go
package alert

import (
	"context"
	"fmt"
	"sync"

	"github.com/newthinker/alphapulse/internal/core"
)

// MemoryStore is a bounded in-memory notification store.
type MemoryStore struct {
	items   []core.Notification
	maxSize int
	mu      sync.RWMutex
	counter int64
}

// NewMemoryStore creates a new in-memory store with max capacity.
func NewMemoryStore(maxSize int) *MemoryStore {
	if maxSize <= 0 {
		maxSize = 100
	}
	return &MemoryStore{
		items:   make([]core.Notification, 0, maxSize),
		maxSize: maxSize,
	}
}

// Save adds a notification to the store, evicting the oldest past capacity.
func (m *MemoryStore) Save(ctx context.Context, n core.Notification) (core.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counter++
	if n.ID == "" {
		n.ID = fmt.Sprintf("ntf_%d_%d", n.CreatedAt.UnixNano(), m.counter)
	}

	m.items = append(m.items, n)
	if len(m.items) > m.maxSize {
		m.items = m.items[len(m.items)-m.maxSize:]
	}

	return n, nil
}

// GetByID retrieves a notification by ID.
func (m *MemoryStore) GetByID(ctx context.Context, id string) (*core.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.items {
		if m.items[i].ID == id {
			n := m.items[i]
			return &n, nil
		}
	}
	return nil, core.ErrNoData
}

// List returns notifications matching the filter, newest first.
func (m *MemoryStore) List(ctx context.Context, filter ListFilter) ([]core.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := []core.Notification{}
	for i := len(m.items) - 1; i >= 0; i-- {
		if matches(m.items[i], filter) {
			result = append(result, m.items[i])
		}
	}

	if filter.Offset >= len(result) {
		return []core.Notification{}, nil
	}
	if filter.Offset > 0 {
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}

	return result, nil
}

// Count returns the count of matching notifications.
func (m *MemoryStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, n := range m.items {
		if matches(n, filter) {
			count++
		}
	}
	return count, nil
}

func matches(n core.Notification, filter ListFilter) bool {
	if filter.Symbol != "" && n.Stock.Symbol != filter.Symbol {
		return false
	}
	if !filter.From.IsZero() && n.CreatedAt.Before(filter.From) {
		return false
	}
	if !filter.To.IsZero() && n.CreatedAt.After(filter.To) {
		return false
	}
	return true
}
