// Package session keeps the open request tabs and the user settings.
package session

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/studiowebux/restforge/internal/ids"
	"github.com/studiowebux/restforge/internal/request"
	"github.com/studiowebux/restforge/internal/storage"
	"github.com/studiowebux/restforge/internal/types"
)

// tabState is the persisted form of the open tabs
type tabState struct {
	Tabs        []types.Tab `json:"tabs"`
	ActiveTabID string      `json:"activeTabId"`
}

// Option configures a Manager
type Option func(*Manager)

// WithIDGenerator sets the generator for tab and request ids
func WithIDGenerator(gen ids.Generator) Option {
	return func(m *Manager) {
		m.ids = ids.OrDefault(gen)
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

// Manager handles tabs and settings
type Manager struct {
	mu       sync.RWMutex
	store    storage.Store
	tabs     []types.Tab
	activeID string
	settings types.AppSettings
	ids      ids.Generator
	logger   *slog.Logger
}

// NewManager creates a new session manager with default settings and no tabs
func NewManager(store storage.Store, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		tabs:     []types.Tab{},
		settings: types.DefaultSettings(),
		ids:      ids.Default,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load loads settings and tabs from the store. Missing keys keep the defaults.
func (m *Manager) Load() error {
	if err := m.LoadSettings(); err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if err := m.LoadTabs(); err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	return nil
}

// LoadSettings loads the settings, starting from defaults so new fields get a value
func (m *Manager) LoadSettings() error {
	settings := types.DefaultSettings()
	_, err := storage.LoadJSON(m.store, storage.KeySettings, &settings)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		m.settings = types.DefaultSettings()
		m.logger.Warn("failed to load settings", "error", err)
		return fmt.Errorf("failed to parse settings: %w", err)
	}
	if settings.Theme == "" {
		settings.Theme = types.ThemeSystem
	}
	m.settings = settings
	return nil
}

// LoadTabs loads the open tabs. A tab cannot still be loading after a restart.
func (m *Manager) LoadTabs() error {
	var state tabState
	_, err := storage.LoadJSON(m.store, storage.KeyTabs, &state)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		m.tabs = []types.Tab{}
		m.activeID = ""
		m.logger.Warn("failed to load tabs", "error", err)
		return fmt.Errorf("failed to parse tabs: %w", err)
	}

	if state.Tabs == nil {
		state.Tabs = []types.Tab{}
	}
	for i := range state.Tabs {
		state.Tabs[i].IsLoading = false
	}
	m.tabs = state.Tabs
	m.activeID = state.ActiveTabID
	if m.indexOf(m.activeID) < 0 {
		m.activeID = ""
		if len(m.tabs) > 0 {
			m.activeID = m.tabs[0].ID
		}
	}
	return nil
}

// Settings returns the current settings
func (m *Manager) Settings() types.AppSettings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings
}

// UpdateSettings applies fn to the settings and persists the result
func (m *Manager) UpdateSettings(fn func(*types.AppSettings)) (types.AppSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.settings
	fn(&next)
	m.settings = next

	if err := storage.SaveJSON(m.store, storage.KeySettings, m.settings); err != nil {
		m.logger.Warn("failed to save settings", "error", err)
		return m.settings, fmt.Errorf("failed to save settings: %w", err)
	}
	return m.settings, nil
}

// OpenTab opens a tab holding a copy of req, or an empty request when req is nil,
// and makes it active
func (m *Manager) OpenTab(req *types.RequestConfig) (types.Tab, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if req == nil {
		settings := m.settings
		req = request.NewEmptyRequest(m.ids, &settings)
	} else {
		req = req.Clone()
	}

	tab := types.Tab{
		ID:      m.ids.NewID(),
		Request: *req,
	}
	m.tabs = append(m.tabs, tab)
	m.activeID = tab.ID
	return tab, m.save()
}

// DuplicateTab opens a copy of a tab with fresh tab and request ids
func (m *Manager) DuplicateTab(id string) (types.Tab, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return types.Tab{}, notFound(id)
	}

	src := m.tabs[i]
	req := src.Request.Clone()
	req.ID = m.ids.NewID()

	tab := types.Tab{
		ID:       m.ids.NewID(),
		Request:  *req,
		Response: copyResponse(src.Response),
	}
	m.tabs = append(m.tabs, tab)
	m.activeID = tab.ID
	return tab, m.save()
}

// CloseTab closes a tab. When the active tab closes, the tab before it
// (or the new first tab) becomes active.
func (m *Manager) CloseTab(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return notFound(id)
	}

	m.tabs = append(m.tabs[:i], m.tabs[i+1:]...)

	if m.activeID == id {
		m.activeID = ""
		if len(m.tabs) > 0 {
			m.activeID = m.tabs[max(0, i-1)].ID
		}
	}
	return m.save()
}

// SetActive makes a tab active
func (m *Manager) SetActive(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.indexOf(id) < 0 {
		return notFound(id)
	}
	m.activeID = id
	return m.save()
}

// ActiveTab returns the active tab, false when no tab is open
func (m *Manager) ActiveTab() (types.Tab, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if i := m.indexOf(m.activeID); i >= 0 {
		return m.tabs[i], true
	}
	return types.Tab{}, false
}

// Tabs returns a copy of the open tabs in display order
func (m *Manager) Tabs() []types.Tab {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]types.Tab, len(m.tabs))
	copy(out, m.tabs)
	return out
}

// UpdateRequest replaces the request held by a tab
func (m *Manager) UpdateRequest(tabID string, req *types.RequestConfig) error {
	if req == nil {
		return fmt.Errorf("request is required")
	}
	return m.mutate(tabID, func(tab *types.Tab) {
		tab.Request = *req.Clone()
	})
}

// SetResponse stores the last response of a tab and clears its loading flag
func (m *Manager) SetResponse(tabID string, resp *types.ResponseData) error {
	return m.mutate(tabID, func(tab *types.Tab) {
		tab.Response = copyResponse(resp)
		tab.IsLoading = false
	})
}

// SetLoading marks a tab as waiting for a response
func (m *Manager) SetLoading(tabID string, loading bool) error {
	return m.mutate(tabID, func(tab *types.Tab) {
		tab.IsLoading = loading
	})
}

func (m *Manager) mutate(tabID string, fn func(*types.Tab)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(tabID)
	if i < 0 {
		return notFound(tabID)
	}
	fn(&m.tabs[i])
	return m.save()
}

// indexOf must be called with mu held
func (m *Manager) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i := range m.tabs {
		if m.tabs[i].ID == id {
			return i
		}
	}
	return -1
}

// save must be called with mu held
func (m *Manager) save() error {
	state := tabState{Tabs: m.tabs, ActiveTabID: m.activeID}
	if err := storage.SaveJSON(m.store, storage.KeyTabs, state); err != nil {
		m.logger.Warn("failed to save tabs", "error", err)
		return fmt.Errorf("failed to save tabs: %w", err)
	}
	return nil
}

func copyResponse(resp *types.ResponseData) *types.ResponseData {
	if resp == nil {
		return nil
	}
	c := *resp
	if resp.Headers != nil {
		c.Headers = make(map[string]string, len(resp.Headers))
		for k, v := range resp.Headers {
			c.Headers[k] = v
		}
	}
	return &c
}

func notFound(id string) error {
	return fmt.Errorf("tab %s: %w", id, storage.ErrNotFound)
}
