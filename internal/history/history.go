// Package history keeps the list of sent requests, newest first.
package history

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/studiowebux/restforge/internal/ids"
	"github.com/studiowebux/restforge/internal/storage"
	"github.com/studiowebux/restforge/internal/types"
)

// DefaultMaxItems is how many entries are kept before the oldest are dropped
const DefaultMaxItems = 100

// Option configures a Manager
type Option func(*Manager)

// WithMaxItems overrides DefaultMaxItems. Values below 1 are ignored.
func WithMaxItems(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.max = n
		}
	}
}

// WithIDGenerator sets the generator used by Record
func WithIDGenerator(gen ids.Generator) Option {
	return func(m *Manager) {
		m.ids = ids.OrDefault(gen)
	}
}

// WithClock sets the time source used by Record
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithLogger sets the logger for load and save failures
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// Manager holds the history list and persists every change
type Manager struct {
	mu     sync.RWMutex
	store  storage.Store
	items  []types.RequestHistoryItem
	max    int
	ids    ids.Generator
	now    func() time.Time
	logger *slog.Logger
}

// NewManager creates a manager backed by store. Call Load to read persisted entries.
func NewManager(store storage.Store, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		items:  []types.RequestHistoryItem{},
		max:    DefaultMaxItems,
		ids:    ids.Default,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load replaces the in-memory list with the persisted one.
// On failure the list is left empty and the error is returned.
func (m *Manager) Load() error {
	var items []types.RequestHistoryItem
	_, err := storage.LoadJSON(m.store, storage.KeyHistory, &items)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		m.items = []types.RequestHistoryItem{}
		m.logger.Warn("failed to load history", "error", err)
		return fmt.Errorf("failed to load history: %w", err)
	}
	if items == nil {
		items = []types.RequestHistoryItem{}
	}
	m.items = m.truncate(items)
	return nil
}

// Add prepends item and drops entries beyond the limit
func (m *Manager) Add(item types.RequestHistoryItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := make([]types.RequestHistoryItem, 0, len(m.items)+1)
	items = append(items, item)
	items = append(items, m.items...)
	m.items = m.truncate(items)

	return m.save()
}

// Record adds a new entry for a sent request and returns it
func (m *Manager) Record(req *types.RequestConfig, resp *types.ResponseData) (types.RequestHistoryItem, error) {
	if req == nil {
		return types.RequestHistoryItem{}, fmt.Errorf("cannot record a nil request")
	}

	item := types.RequestHistoryItem{
		ID:        m.ids.NewID(),
		Request:   *req.Clone(),
		Response:  resp,
		Timestamp: m.now().UnixMilli(),
	}
	if err := m.Add(item); err != nil {
		return item, err
	}
	return item, nil
}

// Delete removes the entry with the given id
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := make([]types.RequestHistoryItem, 0, len(m.items))
	for _, item := range m.items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(m.items) {
		return fmt.Errorf("history item %s: %w", id, storage.ErrNotFound)
	}
	m.items = kept

	return m.save()
}

// Clear removes every entry
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = []types.RequestHistoryItem{}
	return m.save()
}

// Items returns a copy of the list, newest first
func (m *Manager) Items() []types.RequestHistoryItem {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]types.RequestHistoryItem, len(m.items))
	copy(items, m.items)
	return items
}

// Get returns the entry with the given id
func (m *Manager) Get(id string) (types.RequestHistoryItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, item := range m.items {
		if item.ID == id {
			return item, nil
		}
	}
	return types.RequestHistoryItem{}, fmt.Errorf("history item %s: %w", id, storage.ErrNotFound)
}

func (m *Manager) truncate(items []types.RequestHistoryItem) []types.RequestHistoryItem {
	if len(items) > m.max {
		return items[:m.max]
	}
	return items
}

// save must be called with mu held
func (m *Manager) save() error {
	if err := storage.SaveJSON(m.store, storage.KeyHistory, m.items); err != nil {
		m.logger.Warn("failed to save history", "error", err)
		return fmt.Errorf("failed to save history: %w", err)
	}
	return nil
}
