// Package collections manages named groups of saved requests.
package collections

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"
	"github.com/tidwall/jsonc"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/studiowebux/restforge/internal/config"
	"github.com/studiowebux/restforge/internal/ids"
	"github.com/studiowebux/restforge/internal/storage"
	"github.com/studiowebux/restforge/internal/types"
)

// ValidationError lists the schema violations of an imported file
type ValidationError struct {
	Path   string
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid collection file %s: %s", e.Path, strings.Join(e.Errors, "; "))
}

// Update holds the fields to change; nil fields are left alone
type Update struct {
	Name        *string
	Description *string
}

// SearchResult is one fuzzy match. RequestID is empty when the collection itself matched.
type SearchResult struct {
	CollectionID   string
	CollectionName string
	RequestID      string
	RequestName    string
	Score          int
}

// Option configures a Manager
type Option func(*Manager)

// WithIDGenerator sets the generator used for new collections and copied requests
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

// Manager holds the collections and persists every change
type Manager struct {
	mu          sync.RWMutex
	store       storage.Store
	collections []types.Collection
	ids         ids.Generator
	logger      *slog.Logger
}

// NewManager creates a manager backed by store. Call Load to read persisted collections.
func NewManager(store storage.Store, opts ...Option) *Manager {
	m := &Manager{
		store:       store,
		collections: []types.Collection{},
		ids:         ids.Default,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load replaces the in-memory collections with the persisted ones
func (m *Manager) Load() error {
	var collections []types.Collection
	_, err := storage.LoadJSON(m.store, storage.KeyCollections, &collections)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		m.collections = []types.Collection{}
		m.logger.Warn("failed to load collections", "error", err)
		return fmt.Errorf("failed to load collections: %w", err)
	}
	if collections == nil {
		collections = []types.Collection{}
	}
	m.collections = collections
	return nil
}

// Add creates an empty collection
func (m *Manager) Add(name, description string) (types.Collection, error) {
	if strings.TrimSpace(name) == "" {
		return types.Collection{}, fmt.Errorf("collection name is required")
	}

	c := types.Collection{
		ID:          m.ids.NewID(),
		Name:        name,
		Description: description,
		Requests:    []types.RequestConfig{},
		Folders:     []types.Collection{},
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.collections = append(m.collections, c)
	return c, m.save()
}

// Delete removes a collection
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return notFound(id)
	}
	m.collections = append(m.collections[:i], m.collections[i+1:]...)
	return m.save()
}

// Update changes the name or description of a collection
func (m *Manager) Update(id string, upd Update) (types.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return types.Collection{}, notFound(id)
	}
	if upd.Name != nil {
		if strings.TrimSpace(*upd.Name) == "" {
			return types.Collection{}, fmt.Errorf("collection name is required")
		}
		m.collections[i].Name = *upd.Name
	}
	if upd.Description != nil {
		m.collections[i].Description = *upd.Description
	}
	return m.collections[i], m.save()
}

// AddRequest stores a copy of req with a fresh id and returns the copy
func (m *Manager) AddRequest(collectionID string, req *types.RequestConfig) (types.RequestConfig, error) {
	if req == nil {
		return types.RequestConfig{}, fmt.Errorf("cannot add a nil request")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(collectionID)
	if i < 0 {
		return types.RequestConfig{}, notFound(collectionID)
	}

	saved := *req.Clone()
	saved.ID = m.ids.NewID()
	m.collections[i].Requests = append(m.collections[i].Requests, saved)
	return saved, m.save()
}

// RemoveRequest deletes a request from a collection
func (m *Manager) RemoveRequest(collectionID, requestID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(collectionID)
	if i < 0 {
		return notFound(collectionID)
	}

	requests := m.collections[i].Requests
	kept := make([]types.RequestConfig, 0, len(requests))
	for _, req := range requests {
		if req.ID != requestID {
			kept = append(kept, req)
		}
	}
	if len(kept) == len(requests) {
		return fmt.Errorf("request %s: %w", requestID, storage.ErrNotFound)
	}
	m.collections[i].Requests = kept
	return m.save()
}

// Get returns a collection by id or, failing that, by exact name
func (m *Manager) Get(idOrName string) (types.Collection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if i := m.indexOf(idOrName); i >= 0 {
		return m.collections[i], nil
	}
	for _, c := range m.collections {
		if c.Name == idOrName {
			return c, nil
		}
	}
	return types.Collection{}, notFound(idOrName)
}

// GetRequest finds a request in a collection or any of its folders
func (m *Manager) GetRequest(collectionID, requestID string) (types.RequestConfig, error) {
	c, err := m.Get(collectionID)
	if err != nil {
		return types.RequestConfig{}, err
	}

	for _, req := range AllRequests(c) {
		if req.ID == requestID || req.Name == requestID {
			return req, nil
		}
	}
	return types.RequestConfig{}, fmt.Errorf("request %s: %w", requestID, storage.ErrNotFound)
}

// List returns a copy of all collections
func (m *Manager) List() []types.Collection {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]types.Collection, len(m.collections))
	copy(out, m.collections)
	return out
}

// AllRequests flattens the requests of c and its folders, depth first
func AllRequests(c types.Collection) []types.RequestConfig {
	requests := append([]types.RequestConfig(nil), c.Requests...)
	for _, f := range c.Folders {
		requests = append(requests, AllRequests(f)...)
	}
	return requests
}

// Search fuzzy-matches query against collection names and "collection/request" names.
// Results are ordered best match first. An empty query returns everything.
func (m *Manager) Search(query string) []SearchResult {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var candidates []SearchResult
	var names []string
	for _, c := range m.collections {
		candidates = append(candidates, SearchResult{CollectionID: c.ID, CollectionName: c.Name})
		names = append(names, c.Name)
		for _, req := range AllRequests(c) {
			candidates = append(candidates, SearchResult{
				CollectionID:   c.ID,
				CollectionName: c.Name,
				RequestID:      req.ID,
				RequestName:    req.Name,
			})
			names = append(names, c.Name+"/"+req.Name)
		}
	}

	if strings.TrimSpace(query) == "" {
		return candidates
	}

	matches := fuzzy.Find(query, names)
	results := make([]SearchResult, 0, len(matches))
	for _, match := range matches {
		r := candidates[match.Index]
		r.Score = match.Score
		results = append(results, r)
	}
	return results
}

// Import reads collections from a .json, .jsonc, .yaml or .yml file,
// validates them, assigns fresh ids and adds them.
func (m *Manager) Import(path string) ([]types.Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	doc, err := toJSON(path, data)
	if err != nil {
		return nil, err
	}

	if err := validate(path, doc); err != nil {
		return nil, err
	}

	imported, err := decode(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	for i := range imported {
		m.assignIDs(&imported[i])
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.collections = append(m.collections, imported...)
	return imported, m.save()
}

// AddCollection adds a complete collection, such as one converted from a HAR
// file. The collection and everything in it get fresh ids.
func (m *Manager) AddCollection(c types.Collection) (types.Collection, error) {
	if strings.TrimSpace(c.Name) == "" {
		return types.Collection{}, fmt.Errorf("collection name is required")
	}
	m.assignIDs(&c)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.collections = append(m.collections, c)
	return c, m.save()
}

// Export writes a collection to path as YAML (.yaml/.yml) or indented JSON
func (m *Manager) Export(id, path string) error {
	c, err := m.Get(id)
	if err != nil {
		return err
	}

	var data []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to encode collection: %w", err)
	}

	if err := os.WriteFile(path, data, config.FilePermissions); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func toJSON(path string, data []byte) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
		out, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to convert YAML: %w", err)
		}
		return out, nil
	case ".jsonc":
		return jsonc.ToJSON(data), nil
	default:
		return data, nil
	}
}

func validate(path string, doc []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(collectionSchema),
		gojsonschema.NewBytesLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("failed to validate %s: %w", path, err)
	}
	if result.Valid() {
		return nil
	}

	verr := &ValidationError{Path: path}
	for _, e := range result.Errors() {
		verr.Errors = append(verr.Errors, e.String())
	}
	return verr
}

func decode(doc []byte) ([]types.Collection, error) {
	if trimmed := bytes.TrimSpace(doc); len(trimmed) > 0 && trimmed[0] == '[' {
		var many []types.Collection
		if err := json.Unmarshal(trimmed, &many); err != nil {
			return nil, err
		}
		return many, nil
	}

	var one types.Collection
	if err := json.Unmarshal(doc, &one); err != nil {
		return nil, err
	}
	return []types.Collection{one}, nil
}

// assignIDs gives c, its requests, their pairs and its folders fresh ids
func (m *Manager) assignIDs(c *types.Collection) {
	c.ID = m.ids.NewID()
	if c.Requests == nil {
		c.Requests = []types.RequestConfig{}
	}
	if c.Folders == nil {
		c.Folders = []types.Collection{}
	}

	for i := range c.Requests {
		req := &c.Requests[i]
		req.ID = m.ids.NewID()
		if req.Method == "" {
			req.Method = types.MethodGet
		}
		if req.BodyType == "" {
			req.BodyType = types.BodyNone
		}
		if req.Auth.Type == "" {
			req.Auth.Type = types.AuthNone
		}
		req.Headers = m.pairIDs(req.Headers)
		req.QueryParams = m.pairIDs(req.QueryParams)
		if req.FormData != nil {
			req.FormData = m.pairIDs(req.FormData)
		}
	}

	for i := range c.Folders {
		m.assignIDs(&c.Folders[i])
	}
}

func (m *Manager) pairIDs(pairs []types.KeyValuePair) []types.KeyValuePair {
	if pairs == nil {
		return []types.KeyValuePair{}
	}
	for i := range pairs {
		pairs[i].ID = m.ids.NewID()
	}
	return pairs
}

// indexOf must be called with mu held
func (m *Manager) indexOf(id string) int {
	for i, c := range m.collections {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// save must be called with mu held
func (m *Manager) save() error {
	if err := storage.SaveJSON(m.store, storage.KeyCollections, m.collections); err != nil {
		m.logger.Warn("failed to save collections", "error", err)
		return fmt.Errorf("failed to save collections: %w", err)
	}
	return nil
}

func notFound(id string) error {
	return fmt.Errorf("collection %s: %w", id, storage.ErrNotFound)
}
