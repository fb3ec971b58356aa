package comps

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/sandertv/gophertunnel/minecraft/protocol"
	"github.com/stretchr/testify/require"
)

// counter is a component with every data capability.
type counter struct {
	n int32
}

func (c *counter) WriteNBT(doc Document) {
	doc["n"] = c.n
}

func (c *counter) ReadNBT(doc Document) error {
	if !doc.Has("n") {
		return nil
	}
	n, ok := doc.Int32("n")
	if !ok {
		return errors.New("n is not an integer")
	}
	c.n = n
	return nil
}

func (c *counter) WriteSyncPayload(w *protocol.Writer) {
	w.Varint32(&c.n)
}

func (c *counter) ApplySyncPayload(r *protocol.Reader) {
	r.Varint32(&c.n)
}

func (c *counter) CopyFrom(src *counter) {
	c.n = src.n
}

func (c *counter) ComponentEqual(other *counter) bool {
	return c.n == other.n
}

// label has no capabilities.
type label struct {
	s string
}

// lifecycle records attach, detach and tick calls.
type lifecycle struct {
	attached Kind
	detached int
	ticks    int
	panics   bool
}

func (l *lifecycle) Attach(p Provider) { l.attached = p.Components().Kind() }
func (l *lifecycle) Detach(Provider)   { l.detached++ }

func (l *lifecycle) ServerTick() {
	l.ticks++
	if l.panics {
		panic("tick failed")
	}
}

var furnace = Kind{Category: BlockCategory, ID: "minecraft:furnace"}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestManager initializes a manager with a discarding logger.
func newTestManager(t *testing.T, opts []Option, bundles ...*Bundle) *Manager {
	t.Helper()
	b := NewBuilder().Option(WithLogger(discardLogger()))
	b.Option(opts...)
	for _, bundle := range bundles {
		b.Bundle(bundle)
	}
	m, err := b.Init()
	require.NoError(t, err)
	return m
}

func newCounter(any) Component { return &counter{} }
