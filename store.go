package comps

import (
	"fmt"
	"maps"
	"sync"
)

// StoreLocator is a locator usable as a Store key.
type StoreLocator interface {
	Locator
	comparable
}

// Store tracks the containers of placed hosts, such as the block entities or
// entities of one world, by locator. It implements Resolver so that sync
// packets can find their target.
type Store[L StoreLocator] struct {
	mf *Metafactory

	mu      sync.RWMutex
	entries map[L]*Container
}

// NewStore creates a store building containers with mf.
func NewStore[L StoreLocator](mf *Metafactory) *Store[L] {
	return &Store[L]{mf: mf, entries: make(map[L]*Container)}
}

// Attach builds a container for the host of kind at loc. A container already
// attached at loc is released and replaced.
func (s *Store[L]) Attach(loc L, kind Kind, host any) (*Container, error) {
	c, err := s.mf.NewContainer(kind, host)
	if err != nil {
		return nil, fmt.Errorf("attach at %s: %w", loc, err)
	}

	s.mu.Lock()
	old := s.entries[loc]
	s.entries[loc] = c
	s.mu.Unlock()

	if old != nil {
		old.Release()
	}
	return c, nil
}

// Load attaches a container at loc and restores it from doc.
// The container is attached even if some components failed to read.
func (s *Store[L]) Load(loc L, kind Kind, host any, doc Document) (*Container, error) {
	c, err := s.Attach(loc, kind, host)
	if err != nil {
		return nil, err
	}
	if err := c.ReadDocument(doc); err != nil {
		s.mf.env.log.Warn("comps: components restored with errors",
			"kind", kind.String(),
			"locator", loc.String(),
			"error", err)
		return c, err
	}
	return c, nil
}

// At returns the container at loc.
func (s *Store[L]) At(loc L) (*Container, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.entries[loc]
	return c, ok
}

// Remove releases and forgets the container at loc.
func (s *Store[L]) Remove(loc L) bool {
	s.mu.Lock()
	c, ok := s.entries[loc]
	delete(s.entries, loc)
	s.mu.Unlock()

	if ok {
		c.Release()
	}
	return ok
}

// Len returns the number of attached containers.
func (s *Store[L]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Save writes the document of every container holding persistent data.
func (s *Store[L]) Save() map[L]Document {
	s.mu.RLock()
	entries := maps.Clone(s.entries)
	s.mu.RUnlock()

	out := make(map[L]Document, len(entries))
	for loc, c := range entries {
		if doc := c.WriteDocument(); len(doc) > 0 {
			out[loc] = doc
		}
	}
	return out
}

// Resolve implements Resolver.
func (s *Store[L]) Resolve(kind Kind, loc Locator) (Provider, bool) {
	l, ok := loc.(L)
	if !ok {
		return nil, false
	}
	c, ok := s.At(l)
	if !ok || c.Kind() != kind {
		return nil, false
	}
	return c, true
}

// Resolvers combines resolvers, returning the first match.
type Resolvers []Resolver

// Resolve implements Resolver.
func (rs Resolvers) Resolve(kind Kind, loc Locator) (Provider, bool) {
	for _, r := range rs {
		if p, ok := r.Resolve(kind, loc); ok {
			return p, true
		}
	}
	return nil, false
}
