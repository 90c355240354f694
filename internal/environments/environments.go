// Package environments manages named variable sets used for {{var}} substitution.
package environments

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/studiowebux/restforge/internal/ids"
	"github.com/studiowebux/restforge/internal/storage"
	"github.com/studiowebux/restforge/internal/types"
)

// Option configures a Manager
type Option func(*Manager)

// WithIDGenerator sets the generator for environment and variable ids
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

// Manager holds the environments and persists every change
type Manager struct {
	mu           sync.RWMutex
	store        storage.Store
	environments []types.Environment
	ids          ids.Generator
	logger       *slog.Logger
}

// NewManager creates a manager backed by store
func NewManager(store storage.Store, opts ...Option) *Manager {
	m := &Manager{
		store:        store,
		environments: []types.Environment{},
		ids:          ids.Default,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load replaces the in-memory environments with the persisted ones
func (m *Manager) Load() error {
	var environments []types.Environment
	_, err := storage.LoadJSON(m.store, storage.KeyEnvironments, &environments)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		m.environments = []types.Environment{}
		m.logger.Warn("failed to load environments", "error", err)
		return fmt.Errorf("failed to load environments: %w", err)
	}

	for i := range environments {
		if environments[i].Variables == nil {
			environments[i].Variables = []types.KeyValuePair{}
		}
	}
	if environments == nil {
		environments = []types.Environment{}
	}
	m.environments = environments
	return nil
}

// Add creates an environment with no variables
func (m *Manager) Add(name string) (types.Environment, error) {
	if strings.TrimSpace(name) == "" {
		return types.Environment{}, fmt.Errorf("environment name is required")
	}

	env := types.Environment{
		ID:        m.ids.NewID(),
		Name:      name,
		Variables: []types.KeyValuePair{},
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.environments = append(m.environments, env)
	return env, m.save()
}

// Delete removes an environment
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return notFound(id)
	}
	m.environments = append(m.environments[:i], m.environments[i+1:]...)
	return m.save()
}

// Update replaces the name and variables of an environment. An empty name keeps the current one.
func (m *Manager) Update(id, name string, vars []types.KeyValuePair) (types.Environment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return types.Environment{}, notFound(id)
	}
	if name != "" {
		m.environments[i].Name = name
	}
	if vars != nil {
		m.environments[i].Variables = append([]types.KeyValuePair(nil), vars...)
	}
	return m.environments[i], m.save()
}

// SetVariable sets key to value, adding an enabled variable when key is new
func (m *Manager) SetVariable(id, key, value string) error {
	if key == "" {
		return fmt.Errorf("variable name is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return notFound(id)
	}

	vars := m.environments[i].Variables
	for j := range vars {
		if vars[j].Key == key {
			vars[j].Value = value
			return m.save()
		}
	}

	m.environments[i].Variables = append(vars, types.KeyValuePair{
		ID:      m.ids.NewID(),
		Key:     key,
		Value:   value,
		Enabled: true,
	})
	return m.save()
}

// Get returns an environment by id or, failing that, by exact name
func (m *Manager) Get(idOrName string) (types.Environment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if i := m.indexOf(idOrName); i >= 0 {
		return m.environments[i], nil
	}
	for _, env := range m.environments {
		if env.Name == idOrName {
			return env, nil
		}
	}
	return types.Environment{}, notFound(idOrName)
}

// List returns a copy of all environments
func (m *Manager) List() []types.Environment {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]types.Environment, len(m.environments))
	copy(out, m.environments)
	return out
}

// Variables returns the enabled variables of an environment.
// An empty id yields no variables and no error.
func (m *Manager) Variables(idOrName string) ([]types.KeyValuePair, error) {
	if idOrName == "" {
		return nil, nil
	}

	env, err := m.Get(idOrName)
	if err != nil {
		return nil, err
	}

	var enabled []types.KeyValuePair
	for _, v := range env.Variables {
		if v.Enabled && v.Key != "" {
			enabled = append(enabled, v)
		}
	}
	return enabled, nil
}

// indexOf must be called with mu held
func (m *Manager) indexOf(id string) int {
	for i, env := range m.environments {
		if env.ID == id {
			return i
		}
	}
	return -1
}

// save must be called with mu held
func (m *Manager) save() error {
	if err := storage.SaveJSON(m.store, storage.KeyEnvironments, m.environments); err != nil {
		m.logger.Warn("failed to save environments", "error", err)
		return fmt.Errorf("failed to save environments: %w", err)
	}
	return nil
}

func notFound(id string) error {
	return fmt.Errorf("environment %s: %w", id, storage.ErrNotFound)
}
