package comps

import (
	"testing"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestStore_Lifecycle(t *testing.T) {
	var key ComponentKey[*counter]
	var life ComponentKey[*lifecycle]
	m := newTestManager(t, nil,
		NewBundle("test").
			Key(Declare("mod:counter", &key)).
			Key(Declare("mod:life", &life)).
			Block("minecraft:furnace", "mod:counter", newCounter).
			Block("minecraft:furnace", "mod:life", func(any) Component { return &lifecycle{} }),
	)
	store := m.BlockStore()
	a := BlockLocator{Pos: cube.Pos{1, 1, 1}}
	b := BlockLocator{Pos: cube.Pos{2, 2, 2}}

	ca, err := store.Attach(a, furnace, nil)
	require.NoError(t, err)
	key.MustGet(ca).n = 3
	_, err = store.Attach(b, furnace, nil)
	require.NoError(t, err)
	require.Equal(t, 2, store.Len())

	got, ok := store.At(a)
	require.True(t, ok)
	require.Same(t, ca, got)

	saved := store.Save()
	require.Len(t, saved, 2)
	require.Equal(t, Document{"n": int32(3)}, saved[a]["mod:counter"])

	l := life.MustGet(ca)
	require.True(t, store.Remove(a))
	require.False(t, store.Remove(a))
	require.Equal(t, 1, l.detached, "removing a container detaches its components")

	loaded, err := store.Load(a, furnace, nil, saved[a])
	require.NoError(t, err)
	require.Equal(t, int32(3), key.MustGet(loaded).n)

	old, _ := store.At(b)
	oldLife := life.MustGet(old)
	_, err = store.Attach(b, furnace, nil)
	require.NoError(t, err)
	require.Equal(t, 1, oldLife.detached, "replacing a container releases the old one")
}

func TestStore_Resolve(t *testing.T) {
	m := newTestManager(t, nil,
		NewBundle("test").
			Key(Declare("mod:counter", (*ComponentKey[*counter])(nil))).
			Block("minecraft:furnace", "mod:counter", newCounter).
			Entity("minecraft:zombie", "mod:counter", newCounter),
	)
	blocks := m.BlockStore()
	entities := m.EntityStore()
	zombie := Kind{Category: EntityCategory, ID: "minecraft:zombie"}

	pos := BlockLocator{Pos: cube.Pos{0, 70, 0}}
	id := EntityLocator{ID: uuid.New()}
	_, err := blocks.Attach(pos, furnace, nil)
	require.NoError(t, err)
	_, err = entities.Attach(id, zombie, nil)
	require.NoError(t, err)

	resolver := Resolvers{blocks, entities}
	_, ok := resolver.Resolve(furnace, pos)
	require.True(t, ok)
	_, ok = resolver.Resolve(zombie, id)
	require.True(t, ok)

	_, ok = blocks.Resolve(furnace, id)
	require.False(t, ok, "entity locators never match a block store")
	_, ok = blocks.Resolve(Kind{Category: BlockCategory, ID: "minecraft:chest"}, pos)
	require.False(t, ok, "the kind must match the attached container")
}

func TestStore_AttachUnknownCategory(t *testing.T) {
	m := newTestManager(t, nil)
	_, err := m.BlockStore().Attach(BlockLocator{}, Kind{Category: EntityCategory, ID: "minecraft:zombie"}, nil)
	require.Error(t, err)
}
