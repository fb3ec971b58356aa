package comps

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type containerFixture struct {
	m       *Manager
	counter ComponentKey[*counter]
	label   ComponentKey[*label]
	life    ComponentKey[*lifecycle]
	other   ComponentKey[*counter]
}

func newContainerFixture(t *testing.T, opts ...Option) *containerFixture {
	f := &containerFixture{}
	f.m = newTestManager(t, opts,
		NewBundle("test").
			Key(Declare("mod:counter", &f.counter)).
			Key(Declare("mod:label", &f.label)).
			Key(Declare("mod:life", &f.life)).
			Key(Declare("mod:other", &f.other)).
			Block("minecraft:furnace", "mod:counter", newCounter).
			Block("minecraft:furnace", "mod:label", func(host any) Component {
				s, _ := host.(string)
				return &label{s: s}
			}).
			Block("minecraft:furnace", "mod:life", func(any) Component { return &lifecycle{} }),
	)
	return f
}

func (f *containerFixture) furnace(t *testing.T, host any) *Container {
	t.Helper()
	c, err := f.m.Metafactory(BlockCategory).NewContainer(furnace, host)
	require.NoError(t, err)
	return c
}

func TestContainer_Get(t *testing.T) {
	f := newContainerFixture(t)
	c := f.furnace(t, "hot")

	l, err := f.label.Get(c)
	require.NoError(t, err)
	require.Equal(t, "hot", l.s, "factories receive the host")
	require.Same(t, l, f.label.MustGet(c), "a slot keeps its component")

	_, err = f.other.Get(c)
	var missing *MissingComponentError
	require.True(t, errors.As(err, &missing))
	require.Equal(t, Identifier("mod:other"), missing.Key)
	require.Equal(t, furnace, missing.Kind)
	require.PanicsWithError(t, missing.Error(), func() { f.other.MustGet(c) })
	func() {
		defer func() {
			err, _ := recover().(error)
			var panicked *MissingComponentError
			require.ErrorAs(t, err, &panicked)
			require.Equal(t, Identifier("mod:other"), panicked.Key)
		}()
		f.other.MustGet(c)
	}()

	_, ok := f.other.Lookup(c)
	require.False(t, ok)
	require.False(t, f.other.IsProvidedBy(c))
	require.True(t, f.counter.IsProvidedBy(c))

	_, err = f.counter.Get(nil)
	require.Error(t, err)
	_, ok = f.counter.Lookup(nil)
	require.False(t, ok)
}

func TestContainer_Keys(t *testing.T) {
	f := newContainerFixture(t)
	c := f.furnace(t, nil)

	require.True(t, c.HasComponents())
	require.Equal(t, []*Key{f.counter.Key(), f.label.Key(), f.life.Key()}, c.Keys())
	require.Equal(t, furnace, c.Kind())
	require.Equal(t, furnace, f.life.MustGet(c).attached, "Attach runs on construction")
}

func TestContainer_Lazy(t *testing.T) {
	f := newContainerFixture(t, WithLazyInit(true))
	c := f.furnace(t, nil)

	require.False(t, c.HasComponents())
	require.Empty(t, c.Keys())
	require.True(t, f.counter.IsProvidedBy(c), "declaration does not need construction")
	require.False(t, c.Has(f.counter.Key()))

	v, ok := f.counter.Lookup(c)
	require.True(t, ok)
	require.NotNil(t, v)
	require.True(t, c.Has(f.counter.Key()))
	require.Equal(t, []*Key{f.counter.Key()}, c.Keys())
}

func TestContainer_DocumentRoundTrip(t *testing.T) {
	f := newContainerFixture(t)
	src := f.furnace(t, nil)
	f.counter.MustGet(src).n = 42

	doc := src.WriteDocument()
	require.Equal(t, Document{"mod:counter": Document{"n": int32(42)}}, doc, "only persistent components are written")

	data, err := f.m.EncodeDocument(doc)
	require.NoError(t, err)
	decoded, err := f.m.DecodeDocument(data)
	require.NoError(t, err)

	dst := f.furnace(t, nil)
	require.NoError(t, dst.ReadDocument(decoded))
	require.Equal(t, int32(42), f.counter.MustGet(dst).n)
	require.True(t, src.Equal(dst))
}

func TestContainer_ReadDocumentMissingField(t *testing.T) {
	f := newContainerFixture(t)
	c := f.furnace(t, nil)
	f.counter.MustGet(c).n = 7

	require.NoError(t, c.ReadDocument(Document{"mod:unrelated": Document{"x": int32(1)}}))
	require.Equal(t, int32(7), f.counter.MustGet(c).n, "absent fields keep the current value")
}

func TestContainer_ReadDocumentNotCompound(t *testing.T) {
	f := newContainerFixture(t)
	c := f.furnace(t, nil)
	f.counter.MustGet(c).n = 7

	err := c.ReadDocument(Document{"mod:counter": int32(5)})
	var derr *DocumentError
	require.ErrorAs(t, err, &derr)
	require.Equal(t, Identifier("mod:counter"), derr.Key)
	require.ErrorContains(t, err, "not a compound")
	require.Equal(t, int32(7), f.counter.MustGet(c).n)
}

func TestContainer_ReadDocumentIsolatesFailures(t *testing.T) {
	var good, bad ComponentKey[*counter]
	m := newTestManager(t, nil,
		NewBundle("test").
			Key(Declare("mod:good", &good)).
			Key(Declare("mod:bad", &bad)).
			Block("minecraft:furnace", "mod:bad", newCounter).
			Block("minecraft:furnace", "mod:good", newCounter),
	)
	c, err := m.Metafactory(BlockCategory).NewContainer(furnace, nil)
	require.NoError(t, err)
	original := bad.MustGet(c)
	original.n = 3

	err = c.ReadDocument(Document{
		"mod:bad":  Document{"n": "not a number"},
		"mod:good": Document{"n": int32(9)},
	})
	var derr *DocumentError
	require.True(t, errors.As(err, &derr))
	require.Equal(t, Identifier("mod:bad"), derr.Key)

	require.Equal(t, int32(9), good.MustGet(c).n, "other components are still read")
	require.Zero(t, bad.MustGet(c).n, "the failing component is reset to its default")
	require.NotSame(t, original, bad.MustGet(c))
}

func TestContainer_CopyFrom(t *testing.T) {
	f := newContainerFixture(t)
	src := f.furnace(t, "src")
	f.counter.MustGet(src).n = 11

	dst := f.furnace(t, "dst")
	require.NoError(t, dst.CopyFrom(src))

	require.Equal(t, src.Keys(), dst.Keys())
	require.Equal(t, int32(11), f.counter.MustGet(dst).n)
	require.NotSame(t, f.counter.MustGet(src), f.counter.MustGet(dst), "copies are not aliased")
	require.Equal(t, "dst", f.label.MustGet(dst).s, "components without CopyFrom keep their default")

	f.counter.MustGet(src).n = 12
	require.Equal(t, int32(11), f.counter.MustGet(dst).n)
}

func TestContainer_CopyFromIntoLazy(t *testing.T) {
	f := newContainerFixture(t, WithLazyInit(true))
	src := f.furnace(t, nil)
	f.counter.MustGet(src).n = 5

	dst := f.furnace(t, nil)
	require.NoError(t, dst.CopyFrom(src))
	require.Equal(t, src.Keys(), dst.Keys())
	require.Equal(t, int32(5), f.counter.MustGet(dst).n)
}

func TestContainer_Equal(t *testing.T) {
	f := newContainerFixture(t)
	a, b := f.furnace(t, nil), f.furnace(t, nil)
	require.True(t, a.Equal(b))

	f.counter.MustGet(a).n = 1
	require.False(t, a.Equal(b))
	f.counter.MustGet(b).n = 1
	require.True(t, a.Equal(b))

	f.label.MustGet(a).s = "different"
	require.False(t, a.Equal(b), "components without ComponentEqual are compared by value")

	var nilContainer *Container
	require.False(t, a.Equal(nilContainer))
	require.True(t, nilContainer.Equal(nil))
}

func TestContainer_TickAndRelease(t *testing.T) {
	var first, second ComponentKey[*lifecycle]
	m := newTestManager(t, nil,
		NewBundle("test").
			Key(Declare("mod:first", &first)).
			Key(Declare("mod:second", &second)).
			Block("minecraft:furnace", "mod:first", func(any) Component { return &lifecycle{panics: true} }).
			Block("minecraft:furnace", "mod:second", func(any) Component { return &lifecycle{} }),
	)
	c, err := m.Metafactory(BlockCategory).NewContainer(furnace, nil)
	require.NoError(t, err)
	a, b := first.MustGet(c), second.MustGet(c)

	require.NotPanics(t, c.Tick)
	c.Tick()
	require.Equal(t, 2, a.ticks)
	require.Equal(t, 2, b.ticks, "a panicking component does not stop the others")

	c.Release()
	require.Equal(t, 1, a.detached)
	require.Equal(t, 1, b.detached)
	require.False(t, c.HasComponents())
}

func TestContainer_FactoryErrors(t *testing.T) {
	var key ComponentKey[*counter]
	m := newTestManager(t, nil,
		NewBundle("test").
			Key(Declare("mod:counter", &key)).
			Block("minecraft:furnace", "mod:counter", func(any) Component { return &label{} }).
			Block("minecraft:chest", "mod:counter", func(any) Component { return nil }),
	)
	mf := m.Metafactory(BlockCategory)

	_, err := mf.NewContainer(furnace, nil)
	require.ErrorContains(t, err, "want *comps.counter")

	_, err = mf.NewContainer(Kind{Category: BlockCategory, ID: "minecraft:chest"}, nil)
	require.ErrorContains(t, err, "returned nil")
}

func TestContainer_FactoryTypedNil(t *testing.T) {
	var key ComponentKey[*counter]
	m := newTestManager(t, nil,
		NewBundle("test").
			Key(Declare("mod:counter", &key)).
			Block("minecraft:furnace", "mod:counter", func(any) Component { return (*counter)(nil) }),
	)
	_, err := m.Metafactory(BlockCategory).NewContainer(furnace, nil)
	require.ErrorContains(t, err, "returned nil")
}
