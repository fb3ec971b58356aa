package comps

import (
	"fmt"
)

// Builder configures a Manager before initialization.
// Use NewBuilder() to create a builder and chain configuration methods.
type Builder struct {
	bundles  []*Bundle
	options  []Option
	registry *Registry
}

// NewBuilder creates a new builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Bundle adds a bundle. Bundles are applied in the order they are added,
// which is the order their callbacks run in.
func (b *Builder) Bundle(bundle *Bundle) *Builder {
	b.bundles = append(b.bundles, bundle)
	return b
}

// Option adds manager options.
func (b *Builder) Option(opts ...Option) *Builder {
	b.options = append(b.options, opts...)
	return b
}

// Registry makes the manager use r instead of a fresh registry, so several
// managers can share key indices. r must not be frozen.
func (b *Builder) Registry(r *Registry) *Builder {
	b.registry = r
	return b
}

// Init registers every bundle's keys, then every bundle's callbacks, freezes
// the registry and returns the Manager. Multiple managers can coexist.
func (b *Builder) Init() (*Manager, error) {
	opts := defaultOptions()
	for _, o := range b.options {
		o(&opts)
	}

	reg := b.registry
	if reg == nil {
		reg = NewRegistry()
	}
	if reg.Frozen() {
		return nil, fmt.Errorf("init: %w", ErrRegistryFrozen)
	}

	callbacks := newCallbackTable()
	for _, bundle := range b.bundles {
		if err := bundle.registerKeys(reg); err != nil {
			return nil, fmt.Errorf("init: %w", err)
		}
	}
	for _, bundle := range b.bundles {
		if err := bundle.registerCallbacks(reg, callbacks); err != nil {
			return nil, fmt.Errorf("init: %w", err)
		}
	}
	reg.Freeze()

	m := newManager(reg, callbacks, opts)
	m.bundles = b.bundles
	m.log.Info("comps: initialized",
		"bundles", len(b.bundles),
		"components", reg.Len())

	for _, bundle := range b.bundles {
		for _, hook := range bundle.postInitHooks {
			hook(m)
		}
	}
	return m, nil
}
