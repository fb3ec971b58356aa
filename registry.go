package comps

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
)

// Registry maps identifiers to component keys.
//
// It is populated during initialization and frozen afterwards. Registration
// is serialized by a mutex; lookups are lock-free and safe for concurrent use
// at any time.
type Registry struct {
	// byID maps Identifier to *Key using sync.Map for lock-free reads.
	// Keys are registered once but looked up constantly.
	byID sync.Map

	// keys stores keys indexed by Index.
	keys [MaxComponents]atomic.Pointer[Key]

	// count is the next index to assign. Indices are never reused.
	count atomic.Uint32

	frozen atomic.Bool

	// mu serializes registration.
	mu sync.Mutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// RegisterIfAbsent registers a component key for id with type C, or returns
// the existing key if id is already registered with the same type.
//
// Returns a *RegistrationConflictError if id is registered with a different
// type, and ErrRegistryFrozen if id is new and the registry is frozen.
func RegisterIfAbsent[C any](r *Registry, id string) (ComponentKey[C], error) {
	ident, err := ParseIdentifier(id)
	if err != nil {
		return ComponentKey[C]{}, err
	}
	t := reflect.TypeFor[C]()

	// Fast path: already registered.
	if k, ok := r.Get(ident); ok {
		return checkKeyType[C](k, t)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another registration may have won while we waited.
	if k, ok := r.Get(ident); ok {
		return checkKeyType[C](k, t)
	}
	if r.frozen.Load() {
		return ComponentKey[C]{}, fmt.Errorf("registering %s: %w", ident, ErrRegistryFrozen)
	}

	n := r.count.Load()
	if n >= MaxComponents {
		return ComponentKey[C]{}, fmt.Errorf("registering %s: %w (max %d)", ident, ErrRegistryFull, MaxComponents)
	}

	k := newKey[C](ident, Index(n))
	r.keys[n].Store(k)
	r.byID.Store(ident, k)
	r.count.Store(n + 1)

	return ComponentKey[C]{key: k}, nil
}

func checkKeyType[C any](k *Key, t reflect.Type) (ComponentKey[C], error) {
	if k.typ != t {
		return ComponentKey[C]{}, &RegistrationConflictError{ID: k.id, Existing: k.typ, Wanted: t}
	}
	return ComponentKey[C]{key: k}, nil
}

// Get returns the key registered for id.
func (r *Registry) Get(id Identifier) (*Key, bool) {
	if v, ok := r.byID.Load(id); ok {
		return v.(*Key), true
	}
	return nil, false
}

// KeyAt returns the key with the given index.
func (r *Registry) KeyAt(i Index) (*Key, bool) {
	if int(i) >= MaxComponents {
		return nil, false
	}
	k := r.keys[i].Load()
	return k, k != nil
}

// Keys returns all registered keys in registration order.
func (r *Registry) Keys() []*Key {
	n := r.count.Load()
	keys := make([]*Key, 0, n)
	for i := range n {
		if k := r.keys[i].Load(); k != nil {
			keys = append(keys, k)
		}
	}
	return keys
}

// Len returns the number of registered keys.
func (r *Registry) Len() int {
	return int(r.count.Load())
}

// Freeze ends the registration phase. New identifiers are rejected afterwards;
// repeated registrations of existing keys keep working.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen.Store(true)
	r.mu.Unlock()
}

// Frozen returns true once Freeze has been called.
func (r *Registry) Frozen() bool {
	return r.frozen.Load()
}

// Reset clears all registrations and unfreezes the registry.
// It exists for test harnesses; keys obtained before Reset must not be used.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID.Range(func(k, _ any) bool {
		r.byID.Delete(k)
		return true
	})
	for i := range r.count.Load() {
		r.keys[i].Store(nil)
	}
	r.count.Store(0)
	r.frozen.Store(false)
}
