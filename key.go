package comps

import (
	"fmt"
	"reflect"
)

// Index is the dense index of a component key, assigned at registration.
// Valid indices range from 0 to MaxComponents-1.
type Index uint16

// MaxComponents is the maximum number of component keys a registry supports.
const MaxComponents = 1024

// Key is the type-erased identity of one component kind.
// Two keys with the same identifier in one registry are the same *Key.
type Key struct {
	id    Identifier
	index Index
	typ   reflect.Type
	caps  Capabilities

	// Erased capability calls, captured at registration so that hot paths
	// only test capability bits.
	copyFn  func(dst, src Component)
	equalFn func(a, b Component) bool
}

func newKey[C any](id Identifier, index Index) *Key {
	k := &Key{
		id:    id,
		index: index,
		typ:   reflect.TypeFor[C](),
		caps:  capabilitiesOf[C](),
	}
	if k.caps.Has(CapCopy) {
		k.copyFn = func(dst, src Component) {
			any(dst.(C)).(Copier[C]).CopyFrom(src.(C))
		}
	}
	if k.caps.Has(CapEqual) {
		k.equalFn = func(a, b Component) bool {
			return any(a.(C)).(Comparable[C]).ComponentEqual(b.(C))
		}
	}
	return k
}

// ID returns the key's identifier.
func (k *Key) ID() Identifier {
	return k.id
}

// Index returns the key's dense index.
func (k *Key) Index() Index {
	return k.index
}

// Type returns the component type the key was declared with.
func (k *Key) Type() reflect.Type {
	return k.typ
}

// Capabilities returns the optional interfaces the key's type implements.
func (k *Key) Capabilities() Capabilities {
	return k.caps
}

// IsProvidedBy returns true if the provider's container declares this key.
func (k *Key) IsProvidedBy(p Provider) bool {
	c := containerOf(p)
	return c != nil && c.blueprint.mask.Has(k.index)
}

// String returns a string representation of the key for debugging.
func (k *Key) String() string {
	return fmt.Sprintf("Key{%s #%d %v}", k.id, k.index, k.typ)
}

// ComponentKey is the typed accessor for one component kind.
// The zero value is not registered; obtain keys through RegisterIfAbsent
// or Declare.
type ComponentKey[C any] struct {
	key *Key
}

// Key returns the erased key.
func (k ComponentKey[C]) Key() *Key {
	return k.key
}

// ID returns the key's identifier, or "" for an unregistered key.
func (k ComponentKey[C]) ID() Identifier {
	if k.key == nil {
		return ""
	}
	return k.key.id
}

// Registered returns true if the key was obtained from a registry.
func (k ComponentKey[C]) Registered() bool {
	return k.key != nil
}

// Get returns the component for this key.
// Returns a *MissingComponentError if the provider's blueprint does not
// declare the key.
func (k ComponentKey[C]) Get(p Provider) (C, error) {
	var zero C
	c := containerOf(p)
	if c == nil {
		return zero, &MissingComponentError{Key: k.ID()}
	}
	v, err := c.Get(k.key)
	if err != nil {
		return zero, err
	}
	return v.(C), nil
}

// MustGet is like Get but panics with the *MissingComponentError if the
// component is not provided.
func (k ComponentKey[C]) MustGet(p Provider) C {
	v, err := k.Get(p)
	if err != nil {
		panic(err)
	}
	return v
}

// Lookup returns the component if the provider declares the key.
// It never fails; use it for optional or cross-kind queries.
func (k ComponentKey[C]) Lookup(p Provider) (C, bool) {
	var zero C
	c := containerOf(p)
	if c == nil || k.key == nil {
		return zero, false
	}
	v, ok := c.Lookup(k.key)
	if !ok {
		return zero, false
	}
	return v.(C), true
}

// IsProvidedBy returns true if the provider's container declares this key.
// It is an O(1) bitset check and never constructs components.
func (k ComponentKey[C]) IsProvidedBy(p Provider) bool {
	if k.key == nil {
		return false
	}
	return k.key.IsProvidedBy(p)
}

// Sync sends this component of the host at loc through s.
func (k ComponentKey[C]) Sync(p Provider, loc Locator, s *Syncer) error {
	return s.Sync(loc, p, k.key)
}

// containerOf returns the container of p, tolerating nil providers.
func containerOf(p Provider) *Container {
	if p == nil {
		return nil
	}
	return p.Components()
}
