package comps

import (
	"errors"
	"fmt"
	"reflect"
)

// Container holds the components attached to one host object.
//
// Storage is a dense slice indexed by key index and sized by the blueprint,
// so lookups are O(1). A slot is either empty or holds the single component
// constructed for its key; components are never swapped for another key.
//
// Containers are owned by their host and are not safe for concurrent use.
// Mutations from other goroutines must be marshaled onto the owning goroutine,
// for example through an Executor.
type Container struct {
	blueprint *Blueprint
	host      any
	env       *containerEnv

	// slots stores components indexed by key index.
	slots []Component

	// populated tracks which slots hold a component.
	populated Bitmask
}

// newContainer allocates a container and, unless lazy, constructs every
// declared component in blueprint order.
func newContainer(bp *Blueprint, host any, env *containerEnv) (*Container, error) {
	c := &Container{
		blueprint: bp,
		host:      host,
		env:       env,
		slots:     make([]Component, bp.Size()),
	}
	if env.lazy {
		return c, nil
	}
	for _, e := range bp.entries {
		if _, err := c.construct(e); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Components implements Provider.
func (c *Container) Components() *Container {
	return c
}

// Blueprint returns the blueprint the container was built from.
func (c *Container) Blueprint() *Blueprint {
	return c.blueprint
}

// Kind returns the kind of the container's host.
func (c *Container) Kind() Kind {
	return c.blueprint.kind
}

// Host returns the host value passed to the component factories.
func (c *Container) Host() any {
	return c.host
}

// construct builds the component for e and stores it in its slot.
func (c *Container) construct(e blueprintEntry) (Component, error) {
	v, err := e.construct(c.host)
	if err != nil {
		return nil, fmt.Errorf("constructing %s for %s: %w", e.key.id, c.blueprint.kind, err)
	}
	c.slots[e.key.index] = v
	c.populated.Set(e.key.index)

	if e.key.caps.Has(CapAttach) {
		v.(Attachable).Attach(c)
	}
	return v, nil
}

// Get returns the component for key, constructing it first if the container
// is lazy. Returns a *MissingComponentError if the blueprint does not declare key.
func (c *Container) Get(key *Key) (Component, error) {
	if c == nil || key == nil || !c.blueprint.mask.Has(key.index) {
		return nil, c.missing(key)
	}
	if c.populated.Has(key.index) {
		return c.slots[key.index], nil
	}
	e, _ := c.blueprint.entry(key)
	return c.construct(e)
}

// Lookup returns the component for key if the blueprint declares it.
// Unlike Get, an undeclared key is not an error.
func (c *Container) Lookup(key *Key) (Component, bool) {
	if c == nil || key == nil || !c.blueprint.mask.Has(key.index) {
		return nil, false
	}
	v, err := c.Get(key)
	if err != nil {
		c.env.log.Error("comps: lazy component construction failed",
			"kind", c.blueprint.kind.String(),
			"component", key.id.String(),
			"error", err)
		return nil, false
	}
	return v, true
}

// Declares returns true if the container's blueprint includes key.
func (c *Container) Declares(key *Key) bool {
	return c != nil && c.blueprint.Declares(key)
}

// Has returns true if the slot for key holds a component.
func (c *Container) Has(key *Key) bool {
	return c != nil && key != nil && c.populated.Has(key.index)
}

// Keys returns the keys of populated slots in blueprint order.
func (c *Container) Keys() []*Key {
	keys := make([]*Key, 0, c.populated.Count())
	for _, e := range c.blueprint.entries {
		if c.populated.Has(e.key.index) {
			keys = append(keys, e.key)
		}
	}
	return keys
}

// HasComponents returns true if at least one slot is populated.
func (c *Container) HasComponents() bool {
	return !c.populated.IsZero()
}

// each calls fn for every populated component having all capabilities in
// caps, in blueprint order.
func (c *Container) each(caps Capabilities, fn func(e blueprintEntry, v Component)) {
	mask := c.populated.And(c.blueprint.capMask(caps))
	if mask.IsZero() {
		return
	}
	for _, e := range c.blueprint.entries {
		if mask.Has(e.key.index) {
			fn(e, c.slots[e.key.index])
		}
	}
}

// CopyFrom copies every component populated in other into c.
// Components with the Copier contract are deep copied; others are left in
// their freshly constructed default state. Keys c does not declare are skipped.
func (c *Container) CopyFrom(other *Container) error {
	if other == nil || other == c {
		return nil
	}
	for _, e := range other.blueprint.entries {
		k := e.key
		if !other.populated.Has(k.index) || !c.blueprint.mask.Has(k.index) {
			continue
		}
		dst, err := c.Get(k)
		if err != nil {
			return err
		}
		if k.caps.Has(CapCopy) {
			k.copyFn(dst, other.slots[k.index])
		}
	}
	return nil
}

// WriteDocument serializes every populated persistent component under its
// key identifier, in blueprint order.
func (c *Container) WriteDocument() Document {
	doc := make(Document)
	c.each(CapPersistent, func(e blueprintEntry, v Component) {
		sub := make(Document)
		if err := writeComponent(v.(Persistent), sub); err != nil {
			c.env.log.Error("comps: failed to write component",
				"kind", c.blueprint.kind.String(),
				"component", e.key.id.String(),
				"error", err)
			return
		}
		doc[e.key.id.String()] = sub
	})
	return doc
}

func writeComponent(p Persistent, doc Document) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoverError(r)
		}
	}()
	p.WriteNBT(doc)
	return nil
}

// ReadDocument restores persistent components from doc.
//
// Fields missing from doc leave their component untouched. A component that
// fails to read is reset to its default state and reported in the returned
// error; the remaining components are still read.
func (c *Container) ReadDocument(doc Document) error {
	var errs []error
	for _, e := range c.blueprint.entries {
		k := e.key
		if !k.caps.Has(CapPersistent) {
			continue
		}
		if !doc.Has(k.id.String()) {
			continue
		}
		sub, ok := doc.Compound(k.id.String())
		if !ok {
			err := fmt.Errorf("field is %T, not a compound", doc[k.id.String()])
			c.env.log.Warn("comps: ignored malformed component field",
				"kind", c.blueprint.kind.String(),
				"component", k.id.String(),
				"error", err)
			errs = append(errs, &DocumentError{Key: k.id, Err: err})
			continue
		}

		v, err := c.Get(k)
		if err != nil {
			errs = append(errs, &DocumentError{Key: k.id, Err: err})
			continue
		}
		if h := c.env.hooks.OnDeserialize; h != nil {
			h(c.blueprint.kind, k)
		}
		if err := readComponent(v.(Persistent), sub); err != nil {
			c.env.log.Warn("comps: failed to read component, using default",
				"kind", c.blueprint.kind.String(),
				"component", k.id.String(),
				"error", err)
			errs = append(errs, &DocumentError{Key: k.id, Err: err})
			c.reset(e)
		}
	}
	return errors.Join(errs...)
}

func readComponent(p Persistent, doc Document) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoverError(r)
		}
	}()
	return p.ReadNBT(doc)
}

// reset replaces the component for e with a fresh default.
func (c *Container) reset(e blueprintEntry) {
	c.slots[e.key.index] = nil
	c.populated.Clear(e.key.index)
	if _, err := c.construct(e); err != nil {
		c.env.log.Error("comps: failed to reset component",
			"kind", c.blueprint.kind.String(),
			"component", e.key.id.String(),
			"error", err)
	}
}

// Equal reports whether c and other declare the same keys and hold equal
// components for each of them. Lazy slots are constructed as needed.
// Components implementing Comparable decide for themselves; persistent
// components are compared by their documents, others with reflect.DeepEqual.
func (c *Container) Equal(other *Container) bool {
	if c == nil || other == nil {
		return c.declaresNothing() && other.declaresNothing()
	}
	if c == other {
		return true
	}
	if !c.blueprint.mask.Equals(other.blueprint.mask) {
		return false
	}
	for _, e := range c.blueprint.entries {
		a, err := c.Get(e.key)
		if err != nil {
			return false
		}
		b, err := other.Get(e.key)
		if err != nil {
			return false
		}
		if !componentsEqual(e.key, a, b) {
			return false
		}
	}
	return true
}

func (c *Container) declaresNothing() bool {
	return c == nil || c.blueprint.mask.IsZero()
}

func componentsEqual(k *Key, a, b Component) bool {
	switch {
	case k.caps.Has(CapEqual):
		return k.equalFn(a, b)
	case k.caps.Has(CapPersistent):
		da, db := make(Document), make(Document)
		if writeComponent(a.(Persistent), da) != nil || writeComponent(b.(Persistent), db) != nil {
			return false
		}
		return reflect.DeepEqual(da, db)
	default:
		return reflect.DeepEqual(a, b)
	}
}

// Tick calls ServerTick on every populated ticking component.
// A panicking component is logged and does not stop the others.
func (c *Container) Tick() {
	c.each(CapTick, func(e blueprintEntry, v Component) {
		defer func() {
			if r := recover(); r != nil {
				c.env.log.Error("comps: panic in component tick",
					"kind", c.blueprint.kind.String(),
					"component", e.key.id.String(),
					"error", recoverError(r))
			}
		}()
		v.(ServerTicker).ServerTick()
	})
}

// Release detaches every populated component and empties the container.
// The container must not be used afterwards.
func (c *Container) Release() {
	c.each(CapDetach, func(_ blueprintEntry, v Component) {
		v.(Detachable).Detach(c)
	})
	clear(c.slots)
	c.populated = Bitmask{}
}

// missing builds the error for an undeclared key.
func (c *Container) missing(key *Key) error {
	err := &MissingComponentError{}
	if key != nil {
		err.Key = key.id
	}
	if c != nil {
		err.Kind = c.blueprint.kind
	}
	return err
}

// String returns a string representation of the container for debugging.
func (c *Container) String() string {
	ids := ""
	for _, k := range c.Keys() {
		if ids != "" {
			ids += ", "
		}
		ids += k.id.String()
	}
	return "Container{Kind: " + c.blueprint.kind.String() + ", Components: [" + ids + "]}"
}
