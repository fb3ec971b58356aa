package comps

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Metafactory builds and caches the blueprints of one category.
//
// Blueprints are built on first use of a kind and memoized exactly once:
// concurrent first uses of the same kind share a single build and observe
// the same *Blueprint.
type Metafactory struct {
	category  Category
	callbacks *callbackTable
	env       *containerEnv

	// cache maps Kind to its built *Blueprint.
	cache   map[Kind]*Blueprint
	cacheMu sync.RWMutex

	// flight collapses concurrent builds of the same kind.
	flight singleflight.Group
}

// containerEnv is the configuration shared by every container of a manager.
type containerEnv struct {
	log   *slog.Logger
	hooks Hooks
	lazy  bool
}

// newMetafactory creates a metafactory for a category.
func newMetafactory(category Category, callbacks *callbackTable, env *containerEnv) *Metafactory {
	return &Metafactory{
		category:  category,
		callbacks: callbacks,
		env:       env,
		cache:     make(map[Kind]*Blueprint),
	}
}

// Category returns the category this metafactory builds blueprints for.
func (m *Metafactory) Category() Category {
	return m.category
}

// Blueprint returns the blueprint for kind, building it on first use.
// Returns a *BlueprintConstructionError if a provider callback fails; the
// failure is not cached.
func (m *Metafactory) Blueprint(kind Kind) (*Blueprint, error) {
	if kind.Category != m.category {
		return nil, fmt.Errorf("kind %s does not belong to the %s metafactory", kind, m.category)
	}
	if kind.ID == "" || kind.IsWildcard() {
		return nil, fmt.Errorf("kind %s is not a concrete kind", kind)
	}

	// Fast path: already built.
	if bp, ok := m.cached(kind); ok {
		return bp, nil
	}

	v, err, _ := m.flight.Do(kind.ID, func() (any, error) {
		// A previous flight may have finished between our check and Do.
		if bp, ok := m.cached(kind); ok {
			return bp, nil
		}
		bp, err := m.build(kind)
		if err != nil {
			return nil, err
		}

		m.cacheMu.Lock()
		m.cache[kind] = bp
		m.cacheMu.Unlock()

		if h := m.env.hooks.OnBlueprint; h != nil {
			h(bp)
		}
		return bp, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Blueprint), nil
}

// cached returns the cached blueprint for kind.
func (m *Metafactory) cached(kind Kind) (*Blueprint, bool) {
	m.cacheMu.RLock()
	defer m.cacheMu.RUnlock()
	bp, ok := m.cache[kind]
	return bp, ok
}

// build runs every callback applying to kind against a fresh builder.
func (m *Metafactory) build(kind Kind) (*Blueprint, error) {
	b := newBlueprintBuilder(kind, m.env.log)

	for _, cb := range m.callbacks.forKind(kind) {
		b.provider = cb.provider
		b.lastKey = ""
		if err := runCallback(cb.fn, kind, b); err != nil {
			cerr := &BlueprintConstructionError{
				Kind:     kind,
				Provider: cb.provider,
				Key:      b.lastKey,
				Err:      err,
			}
			m.env.log.Error("comps: blueprint construction failed",
				"kind", kind.String(),
				"provider", cb.provider,
				"component", b.lastKey.String(),
				"error", err)
			return nil, cerr
		}
	}

	bp := b.build()
	m.env.log.Debug("comps: built blueprint",
		"kind", kind.String(),
		"components", bp.Len(),
		"size", bp.Size())
	return bp, nil
}

// runCallback invokes fn, converting panics into errors.
func runCallback(fn Callback, kind Kind, b *BlueprintBuilder) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoverError(r)
		}
	}()
	return fn(kind, b)
}

// NewContainer builds a container for a host of the given kind.
// The host is passed to every component factory.
func (m *Metafactory) NewContainer(kind Kind, host any) (*Container, error) {
	bp, err := m.Blueprint(kind)
	if err != nil {
		return nil, err
	}
	return m.Build(bp, host)
}

// Build creates a container from a blueprint. Unless lazy initialization is
// configured, every declared component is constructed immediately.
func (m *Metafactory) Build(bp *Blueprint, host any) (*Container, error) {
	return newContainer(bp, host, m.env)
}

// Known returns true if a blueprint for kind was already built.
func (m *Metafactory) Known(kind Kind) bool {
	_, ok := m.cached(kind)
	return ok
}

// Targets returns true if any callback was registered for exactly kind.
// Wildcard callbacks are not considered.
func (m *Metafactory) Targets(kind Kind) bool {
	return m.callbacks.hasSpecific(kind)
}

// Kinds returns the kinds with a built blueprint, sorted by id.
func (m *Metafactory) Kinds() []Kind {
	m.cacheMu.RLock()
	kinds := make([]Kind, 0, len(m.cache))
	for k := range m.cache {
		kinds = append(kinds, k)
	}
	m.cacheMu.RUnlock()

	slices.SortFunc(kinds, func(a, b Kind) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return kinds
}
