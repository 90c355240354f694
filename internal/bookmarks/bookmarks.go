// Package bookmarks stores frequently used JMESPath query expressions.
package bookmarks

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/studiowebux/restforge/internal/ids"
	"github.com/studiowebux/restforge/internal/storage"
)

// Bookmark represents a saved query expression
type Bookmark struct {
	ID         string `json:"id"`
	Expression string `json:"expression"`
	CreatedAt  int64  `json:"createdAt"` // unix milliseconds
}

// Option configures a Manager
type Option func(*Manager)

// WithIDGenerator sets the generator for bookmark ids
func WithIDGenerator(gen ids.Generator) Option {
	return func(m *Manager) {
		m.ids = ids.OrDefault(gen)
	}
}

// WithClock sets the time source for CreatedAt
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithLogger sets the logger for load failures
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// Manager handles bookmark persistence. Bookmarks are kept newest first.
type Manager struct {
	mu        sync.RWMutex
	store     storage.Store
	bookmarks []Bookmark
	ids       ids.Generator
	now       func() time.Time
	logger    *slog.Logger
}

// NewManager creates a manager backed by store
func NewManager(store storage.Store, opts ...Option) *Manager {
	m := &Manager{
		store:     store,
		bookmarks: []Bookmark{},
		ids:       ids.Default,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load replaces the in-memory bookmarks with the persisted ones
func (m *Manager) Load() error {
	var bookmarks []Bookmark
	_, err := storage.LoadJSON(m.store, storage.KeyBookmarks, &bookmarks)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		m.bookmarks = []Bookmark{}
		m.logger.Warn("failed to load bookmarks", "error", err)
		return fmt.Errorf("failed to load bookmarks: %w", err)
	}
	if bookmarks == nil {
		bookmarks = []Bookmark{}
	}
	m.bookmarks = bookmarks
	return nil
}

// Save adds a bookmark. It reports false when the expression is already saved.
func (m *Manager) Save(expression string) (bool, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return false, fmt.Errorf("expression cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, b := range m.bookmarks {
		if b.Expression == expression {
			return false, nil
		}
	}

	b := Bookmark{ID: m.ids.NewID(), Expression: expression, CreatedAt: m.now().UnixMilli()}
	m.bookmarks = append([]Bookmark{b}, m.bookmarks...)
	return true, m.save()
}

// Delete removes a bookmark by id
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, b := range m.bookmarks {
		if b.ID == id {
			m.bookmarks = append(m.bookmarks[:i], m.bookmarks[i+1:]...)
			return m.save()
		}
	}
	return fmt.Errorf("bookmark %s: %w", id, storage.ErrNotFound)
}

// List returns all bookmarks, newest first
func (m *Manager) List() []Bookmark {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Bookmark, len(m.bookmarks))
	copy(out, m.bookmarks)
	return out
}

// Search filters bookmarks by case-insensitive substring match
func (m *Manager) Search(query string) []Bookmark {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return m.List()
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Bookmark
	for _, b := range m.bookmarks {
		if strings.Contains(strings.ToLower(b.Expression), query) {
			out = append(out, b)
		}
	}
	return out
}

// Resolve expands "@id" to the saved expression. Anything else is returned as is.
func (m *Manager) Resolve(query string) (string, error) {
	id, ok := strings.CutPrefix(query, "@")
	if !ok {
		return query, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, b := range m.bookmarks {
		if b.ID == id {
			return b.Expression, nil
		}
	}
	return "", fmt.Errorf("bookmark %s: %w", id, storage.ErrNotFound)
}

func (m *Manager) save() error {
	return storage.SaveJSON(m.store, storage.KeyBookmarks, m.bookmarks)
}
