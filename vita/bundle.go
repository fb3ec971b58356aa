package vita

import (
	"github.com/oriumgames/comps"
)

const (
	// KeyID identifies the vitality component.
	KeyID = "vita:vitality"
	// HomeKeyID identifies the home component.
	HomeKeyID = "vita:home"
)

var (
	// Key is the vitality component, set when a manager is initialized with Bundle.
	Key comps.ComponentKey[Vitality]
	// HomeKey is the home component of players.
	HomeKey comps.ComponentKey[*Home]
)

// Bundle returns the vita bundle. Every entity and item gets vitality, the
// given blocks get vitality and players get a home.
func Bundle(blocks ...string) *comps.Bundle {
	b := comps.NewBundle("vita").
		Key(comps.Declare(KeyID, &Key)).
		Key(comps.Declare(HomeKeyID, &HomeKey)).
		Entity(comps.Wildcard, KeyID, func(any) comps.Component { return New(0) }).
		Item(comps.Wildcard, KeyID, func(any) comps.Component { return NewItem() }).
		Entity("minecraft:player", HomeKeyID, func(any) comps.Component { return NewHome() })
	for _, id := range blocks {
		b.Block(id, KeyID, func(any) comps.Component { return New(0) })
	}
	return b
}

// Get returns the vitality of p, or nil if p has none.
func Get(p comps.Provider) Vitality {
	v, _ := Key.Lookup(p)
	return v
}
