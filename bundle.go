package comps

import (
	"fmt"
)

// Bundle groups the component keys and callbacks of one provider.
// Bundles are registered with the Builder and applied in order at Init.
type Bundle struct {
	name string

	// keys holds key declarations, registered before any callback.
	keys []KeyDecl

	// callbacks holds callback registrations in declaration order.
	callbacks []callbackRegistration

	postInitHooks []func(*Manager)
}

// callbackRegistration is either a raw callback or a single component
// registration whose key is resolved by id at Init.
type callbackRegistration struct {
	target  Kind
	fn      Callback
	keyID   string
	factory Factory
}

// KeyDecl is a component key declaration, created with Declare.
type KeyDecl struct {
	id       string
	register func(r *Registry) error
}

// ID returns the declared identifier.
func (d KeyDecl) ID() string {
	return d.id
}

// Declare declares a component key of type C. At Init the key is registered
// and stored in dst, which may be nil.
//
//	var Counter comps.ComponentKey[*CounterComponent]
//
//	bundle.Key(comps.Declare("mymod:counter", &Counter))
func Declare[C any](id string, dst *ComponentKey[C]) KeyDecl {
	return KeyDecl{
		id: id,
		register: func(r *Registry) error {
			k, err := RegisterIfAbsent[C](r, id)
			if err != nil {
				return err
			}
			if dst != nil {
				*dst = k
			}
			return nil
		},
	}
}

// NewBundle creates a new bundle with the given name. The name identifies
// the provider in logs and errors.
func NewBundle(name string) *Bundle {
	return &Bundle{name: name}
}

// Name returns the bundle name.
func (b *Bundle) Name() string {
	return b.name
}

// Key declares a component key.
func (b *Bundle) Key(d KeyDecl) *Bundle {
	b.keys = append(b.keys, d)
	return b
}

// Callback registers fn for target. A target with the Wildcard id applies
// to every kind of its category.
func (b *Bundle) Callback(target Kind, fn Callback) *Bundle {
	b.callbacks = append(b.callbacks, callbackRegistration{target: target, fn: fn})
	return b
}

// Register adds the component keyID, built by factory, to target.
func (b *Bundle) Register(target Kind, keyID string, factory Factory) *Bundle {
	b.callbacks = append(b.callbacks, callbackRegistration{target: target, keyID: keyID, factory: factory})
	return b
}

// Block registers a component for a block kind, or every block with Wildcard.
func (b *Bundle) Block(kindID, keyID string, factory Factory) *Bundle {
	return b.Register(Kind{Category: BlockCategory, ID: kindID}, keyID, factory)
}

// Item registers a component for an item kind, or every item with Wildcard.
func (b *Bundle) Item(kindID, keyID string, factory Factory) *Bundle {
	return b.Register(Kind{Category: ItemCategory, ID: kindID}, keyID, factory)
}

// Entity registers a component for an entity kind, or every entity with Wildcard.
func (b *Bundle) Entity(kindID, keyID string, factory Factory) *Bundle {
	return b.Register(Kind{Category: EntityCategory, ID: kindID}, keyID, factory)
}

// PostInit registers a hook run once the manager is initialized.
func (b *Bundle) PostInit(hook func(*Manager)) *Bundle {
	b.postInitHooks = append(b.postInitHooks, hook)
	return b
}

// registerKeys registers the bundle's key declarations.
func (b *Bundle) registerKeys(r *Registry) error {
	for _, d := range b.keys {
		if d.register == nil {
			return fmt.Errorf("bundle %s: empty key declaration", b.name)
		}
		if err := d.register(r); err != nil {
			return fmt.Errorf("bundle %s: %w", b.name, err)
		}
	}
	return nil
}

// registerCallbacks resolves component registrations and adds every callback
// to t. Keys must already be registered.
func (b *Bundle) registerCallbacks(r *Registry, t *callbackTable) error {
	for _, reg := range b.callbacks {
		fn := reg.fn
		if fn == nil {
			id, err := ParseIdentifier(reg.keyID)
			if err != nil {
				return fmt.Errorf("bundle %s: %w", b.name, err)
			}
			key, ok := r.Get(id)
			if !ok {
				return fmt.Errorf("bundle %s: component %s is not declared", b.name, id)
			}
			if reg.factory == nil {
				return fmt.Errorf("bundle %s: nil factory for %s", b.name, id)
			}
			fn = componentCallback(key, reg.factory)
		}
		if err := t.add(reg.target, b.name, fn); err != nil {
			return fmt.Errorf("bundle %s: %w", b.name, err)
		}
	}
	return nil
}
