package comps

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMetafactory_BlueprintExactlyOnce(t *testing.T) {
	var calls, built atomic.Int32
	var key ComponentKey[*counter]
	bundle := NewBundle("test").
		Key(Declare("mod:counter", &key)).
		Callback(furnace, func(_ Kind, b *BlueprintBuilder) error {
			calls.Add(1)
			return AddComponent(b, key, func(any) *counter { return &counter{} })
		})
	m := newTestManager(t, []Option{WithHooks(Hooks{
		OnBlueprint: func(*Blueprint) { built.Add(1) },
	})}, bundle)
	mf := m.Metafactory(BlockCategory)

	const n = 64
	results := make([]*Blueprint, n)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			bp, err := mf.Blueprint(furnace)
			if err == nil {
				results[i] = bp
			}
		}()
	}
	close(start)
	wg.Wait()

	require.NotNil(t, results[0])
	for _, bp := range results {
		require.Same(t, results[0], bp)
	}
	require.Equal(t, int32(1), calls.Load())
	require.Equal(t, int32(1), built.Load())
	require.True(t, mf.Known(furnace))
	require.Equal(t, []Kind{furnace}, mf.Kinds())
}

func TestMetafactory_SpecificBeforeWildcard(t *testing.T) {
	var order []string
	record := func(name string) Callback {
		return func(Kind, *BlueprintBuilder) error {
			order = append(order, name)
			return nil
		}
	}
	wildcard := Kind{Category: BlockCategory, ID: Wildcard}

	m := newTestManager(t, nil,
		NewBundle("a").Callback(wildcard, record("a-wildcard")).Callback(furnace, record("a-furnace")),
		NewBundle("b").Callback(furnace, record("b-furnace")).Callback(wildcard, record("b-wildcard")),
	)
	_, err := m.Metafactory(BlockCategory).Blueprint(furnace)
	require.NoError(t, err)
	require.Equal(t, []string{"a-furnace", "b-furnace", "a-wildcard", "b-wildcard"}, order)

	order = nil
	_, err = m.Metafactory(BlockCategory).Blueprint(Kind{Category: BlockCategory, ID: "minecraft:chest"})
	require.NoError(t, err)
	require.Equal(t, []string{"a-wildcard", "b-wildcard"}, order)
}

func TestMetafactory_FirstDeclarationWins(t *testing.T) {
	var key ComponentKey[*label]
	labelled := func(s string) Factory {
		return func(any) Component { return &label{s: s} }
	}

	m := newTestManager(t, nil,
		NewBundle("base").
			Key(Declare("mod:label", &key)).
			Block(Wildcard, "mod:label", labelled("wildcard")).
			Block("minecraft:furnace", "mod:label", labelled("base")),
		NewBundle("addon").
			Block("minecraft:furnace", "mod:label", labelled("addon")),
	)
	mf := m.Metafactory(BlockCategory)

	c, err := mf.NewContainer(furnace, nil)
	require.NoError(t, err)
	require.Equal(t, "base", key.MustGet(c).s, "first specific registration wins")

	bp, err := mf.Blueprint(furnace)
	require.NoError(t, err)
	require.Equal(t, "base", bp.Provider(key.Key()))
	require.Equal(t, 1, bp.Len())

	chest, err := mf.NewContainer(Kind{Category: BlockCategory, ID: "minecraft:chest"}, nil)
	require.NoError(t, err)
	require.Equal(t, "wildcard", key.MustGet(chest).s)
}

func TestMetafactory_ConstructionError(t *testing.T) {
	var key ComponentKey[*counter]
	fail := true
	m := newTestManager(t, nil,
		NewBundle("broken").
			Key(Declare("mod:counter", &key)).
			Callback(furnace, func(_ Kind, b *BlueprintBuilder) error {
				if err := b.Add(key.Key(), newCounter); err != nil {
					return err
				}
				if fail {
					panic("callback exploded")
				}
				return nil
			}),
	)
	mf := m.Metafactory(BlockCategory)

	_, err := mf.NewContainer(furnace, nil)
	var cerr *BlueprintConstructionError
	require.True(t, errors.As(err, &cerr))
	require.Equal(t, "broken", cerr.Provider)
	require.Equal(t, furnace, cerr.Kind)
	require.Equal(t, Identifier("mod:counter"), cerr.Key)
	require.False(t, mf.Known(furnace), "failures are not cached")

	fail = false
	c, err := mf.NewContainer(furnace, nil)
	require.NoError(t, err)
	require.True(t, key.IsProvidedBy(c))
}

func TestMetafactory_RejectsForeignKinds(t *testing.T) {
	m := newTestManager(t, nil)
	_, err := m.Metafactory(BlockCategory).Blueprint(Kind{Category: ItemCategory, ID: "minecraft:diamond"})
	require.Error(t, err)
	_, err = m.Metafactory(BlockCategory).Blueprint(Kind{Category: BlockCategory, ID: Wildcard})
	require.Error(t, err)
	require.Nil(t, m.Metafactory(Category(42)))
}

func TestBlueprint_Layout(t *testing.T) {
	var first, second ComponentKey[*counter]
	var life ComponentKey[*lifecycle]
	m := newTestManager(t, nil,
		NewBundle("test").
			Key(Declare("mod:first", &first)).
			Key(Declare("mod:unused", (*ComponentKey[*label])(nil))).
			Key(Declare("mod:second", &second)).
			Key(Declare("mod:life", &life)).
			Block("minecraft:furnace", "mod:second", newCounter).
			Block("minecraft:furnace", "mod:life", func(any) Component { return &lifecycle{} }),
	)
	bp, err := m.Metafactory(BlockCategory).Blueprint(furnace)
	require.NoError(t, err)

	require.Equal(t, []*Key{second.Key(), life.Key()}, bp.Keys(), "blueprint order is declaration order")
	require.Equal(t, int(life.Key().Index())+1, bp.Size(), "slots are sized to the highest declared index")
	require.True(t, bp.Declares(second.Key()))
	require.False(t, bp.Declares(first.Key()))
	require.True(t, bp.Supports(CapSync))
	require.True(t, bp.Supports(CapTick|CapAttach|CapDetach))
	require.False(t, bp.Supports(CapTick|CapSync))
}
