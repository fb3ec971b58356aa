package comps

import (
	"fmt"
	"log/slog"
	"reflect"
)

// Blueprint is the immutable, memoized layout of the containers of one kind.
// It is computed once by running every applicable callback, and shared by
// every container of that kind.
type Blueprint struct {
	kind Kind

	// entries holds the declared components in blueprint order.
	entries []blueprintEntry

	// slots maps a key index to its position in entries, or -1.
	// Its length is the container size: the highest declared index plus one.
	slots []int32

	// mask is the set of declared key indices.
	mask Bitmask

	// caps holds, per capability bit, the declared keys having it.
	caps [capabilityCount]Bitmask
}

// blueprintEntry is one declared component and how to construct it.
type blueprintEntry struct {
	key      *Key
	factory  Factory
	provider string
}

// Kind returns the kind this blueprint was built for.
func (bp *Blueprint) Kind() Kind {
	return bp.kind
}

// Keys returns the declared keys in blueprint order.
func (bp *Blueprint) Keys() []*Key {
	keys := make([]*Key, len(bp.entries))
	for i, e := range bp.entries {
		keys[i] = e.key
	}
	return keys
}

// Len returns the number of declared components.
func (bp *Blueprint) Len() int {
	return len(bp.entries)
}

// Size returns the slot count of containers built from this blueprint.
func (bp *Blueprint) Size() int {
	return len(bp.slots)
}

// Mask returns the set of declared key indices.
func (bp *Blueprint) Mask() Bitmask {
	return bp.mask
}

// Declares returns true if the blueprint includes key.
func (bp *Blueprint) Declares(key *Key) bool {
	return key != nil && bp.mask.Has(key.index)
}

// Supports returns true if any declared component has all capabilities in c.
func (bp *Blueprint) Supports(c Capabilities) bool {
	m := bp.capMask(c)
	return !m.IsZero()
}

// Provider returns the name of the provider that declared key, or "".
func (bp *Blueprint) Provider(key *Key) string {
	if e, ok := bp.entry(key); ok {
		return e.provider
	}
	return ""
}

// capMask returns the declared keys having all capabilities in c.
func (bp *Blueprint) capMask(c Capabilities) Bitmask {
	m := bp.mask
	for i := range capabilityCount {
		if c&(1<<i) != 0 {
			m = m.And(bp.caps[i])
		}
	}
	return m
}

// entry returns the entry for key.
func (bp *Blueprint) entry(key *Key) (blueprintEntry, bool) {
	if key == nil || int(key.index) >= len(bp.slots) {
		return blueprintEntry{}, false
	}
	pos := bp.slots[key.index]
	if pos < 0 {
		return blueprintEntry{}, false
	}
	return bp.entries[pos], true
}

// construct runs the entry's factory for host and validates the result.
func (e blueprintEntry) construct(host any) (c Component, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("factory for %s from %s: %w", e.key.id, e.provider, recoverError(r))
		}
	}()

	c = e.factory(host)
	if isNil(c) {
		return nil, fmt.Errorf("factory for %s from %s returned nil", e.key.id, e.provider)
	}
	if t := reflect.TypeOf(c); !t.AssignableTo(e.key.typ) {
		return nil, fmt.Errorf("factory for %s from %s returned %v, want %v", e.key.id, e.provider, t, e.key.typ)
	}
	return c, nil
}

// isNil reports whether c is nil or wraps a nil pointer, map, slice, func,
// chan or interface.
func isNil(c Component) bool {
	if c == nil {
		return true
	}
	switch v := reflect.ValueOf(c); v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// BlueprintBuilder collects the components of a blueprint while callbacks run.
type BlueprintBuilder struct {
	kind    Kind
	entries []blueprintEntry
	mask    Bitmask

	// provider and lastKey track provenance for error reporting.
	provider string
	lastKey  Identifier

	log *slog.Logger
}

func newBlueprintBuilder(kind Kind, log *slog.Logger) *BlueprintBuilder {
	return &BlueprintBuilder{kind: kind, log: log}
}

// Kind returns the kind being built.
func (b *BlueprintBuilder) Kind() Kind {
	return b.kind
}

// Has returns true if key was already added.
func (b *BlueprintBuilder) Has(key *Key) bool {
	return key != nil && b.mask.Has(key.index)
}

// Add declares key with factory. If key was already added by an earlier
// callback the first declaration wins and the call is ignored.
func (b *BlueprintBuilder) Add(key *Key, factory Factory) error {
	if key == nil {
		return fmt.Errorf("add to %s: unregistered component key", b.kind)
	}
	b.lastKey = key.id
	if factory == nil {
		return fmt.Errorf("add %s to %s: nil factory", key.id, b.kind)
	}

	if b.mask.Has(key.index) {
		var first string
		for _, e := range b.entries {
			if e.key == key {
				first = e.provider
				break
			}
		}
		b.log.Warn("comps: duplicate component declaration ignored",
			"kind", b.kind.String(),
			"component", key.id.String(),
			"kept", first,
			"ignored", b.provider)
		return nil
	}

	b.entries = append(b.entries, blueprintEntry{key: key, factory: factory, provider: b.provider})
	b.mask.Set(key.index)
	return nil
}

// AddComponent declares key with a typed factory.
func AddComponent[C any](b *BlueprintBuilder, key ComponentKey[C], factory func(host any) C) error {
	if factory == nil {
		return b.Add(key.key, nil)
	}
	return b.Add(key.key, func(host any) Component {
		return factory(host)
	})
}

// build freezes the builder into a Blueprint.
func (b *BlueprintBuilder) build() *Blueprint {
	bp := &Blueprint{
		kind:    b.kind,
		entries: b.entries,
		mask:    b.mask,
	}

	size := 0
	for _, e := range b.entries {
		if int(e.key.index)+1 > size {
			size = int(e.key.index) + 1
		}
	}
	bp.slots = make([]int32, size)
	for i := range bp.slots {
		bp.slots[i] = -1
	}

	for pos, e := range b.entries {
		bp.slots[e.key.index] = int32(pos)
		for i := range capabilityCount {
			if e.key.caps&(1<<i) != 0 {
				bp.caps[i].Set(e.key.index)
			}
		}
	}
	return bp
}
