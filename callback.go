package comps

import (
	"fmt"
)

// Factory constructs a component in its default state for one host object.
// The host is whatever value was passed when the container was built, such
// as an item.Stack or a world.Block.
type Factory func(host any) Component

// Callback populates a blueprint for a kind. Callbacks are invoked once per
// kind, the first time a host of that kind needs a container.
type Callback func(kind Kind, b *BlueprintBuilder) error

// callbackEntry is a callback with the provider it came from.
type callbackEntry struct {
	fn       Callback
	provider string
}

// callbackTable holds registered callbacks in registration order.
// It is written during initialization only and read-only afterwards.
type callbackTable struct {
	specific map[Kind][]callbackEntry
	wildcard [categoryCount][]callbackEntry
}

func newCallbackTable() *callbackTable {
	return &callbackTable{specific: make(map[Kind][]callbackEntry)}
}

// add registers fn for target. A target with the Wildcard id applies to every
// kind of its category.
func (t *callbackTable) add(target Kind, provider string, fn Callback) error {
	if !target.Category.Valid() {
		return fmt.Errorf("callback from %s: invalid category %d", provider, target.Category)
	}
	if target.ID == "" {
		return fmt.Errorf("callback from %s: empty kind id", provider)
	}
	if fn == nil {
		return fmt.Errorf("callback from %s for %s: nil callback", provider, target)
	}

	entry := callbackEntry{fn: fn, provider: provider}
	if target.IsWildcard() {
		t.wildcard[target.Category] = append(t.wildcard[target.Category], entry)
		return nil
	}
	t.specific[target] = append(t.specific[target], entry)
	return nil
}

// forKind returns the callbacks applying to kind: first those registered for
// the exact kind, then the category wildcards, each in registration order.
func (t *callbackTable) forKind(kind Kind) []callbackEntry {
	specific := t.specific[kind]
	wildcard := t.wildcard[kind.Category]
	out := make([]callbackEntry, 0, len(specific)+len(wildcard))
	out = append(out, specific...)
	return append(out, wildcard...)
}

// hasSpecific returns true if any callback targets kind directly.
func (t *callbackTable) hasSpecific(kind Kind) bool {
	return len(t.specific[kind]) > 0
}

// componentCallback returns a callback adding a single factory for key.
func componentCallback(key *Key, factory Factory) Callback {
	return func(_ Kind, b *BlueprintBuilder) error {
		return b.Add(key, factory)
	}
}
