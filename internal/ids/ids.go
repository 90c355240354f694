// Package ids mints identifiers for requests, tabs, collections and key-value pairs.
package ids

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Generator mints process-unique identifiers
type Generator interface {
	NewID() string
}

// GeneratorFunc adapts a plain function to Generator
type GeneratorFunc func() string

// NewID calls f
func (f GeneratorFunc) NewID() string {
	return f()
}

// UUID generates random (version 4) UUIDs
type UUID struct{}

// NewID returns a new random UUID string
func (UUID) NewID() string {
	return uuid.New().String()
}

// Default is the generator used when none is injected
var Default Generator = UUID{}

// Sequence generates predictable ids ("<prefix>-1", "<prefix>-2", ...).
// It is safe for concurrent use.
type Sequence struct {
	mu     sync.Mutex
	prefix string
	next   int
}

// NewSequence creates a sequence generator with the given prefix
func NewSequence(prefix string) *Sequence {
	if prefix == "" {
		prefix = "id"
	}
	return &Sequence{prefix: prefix, next: 1}
}

// NewID returns the next id in the sequence
func (s *Sequence) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := fmt.Sprintf("%s-%d", s.prefix, s.next)
	s.next++
	return id
}

// OrDefault returns gen, or Default when gen is nil
func OrDefault(gen Generator) Generator {
	if gen == nil {
		return Default
	}
	return gen
}
