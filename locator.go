package comps

import (
	"fmt"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/google/uuid"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

// Locator addresses one host instance within a world.
type Locator interface {
	fmt.Stringer
	locatorTag() uint8
	marshal(w *protocol.Writer)
}

const (
	blockLocatorTag uint8 = iota + 1
	entityLocatorTag
)

// BlockLocator addresses a block entity by its position.
type BlockLocator struct {
	Pos cube.Pos
}

func (BlockLocator) locatorTag() uint8 { return blockLocatorTag }

func (l BlockLocator) marshal(w *protocol.Writer) {
	pos := protocol.BlockPos{int32(l.Pos[0]), int32(l.Pos[1]), int32(l.Pos[2])}
	w.BlockPos(&pos)
}

func (l BlockLocator) String() string {
	return fmt.Sprintf("block(%d, %d, %d)", l.Pos[0], l.Pos[1], l.Pos[2])
}

// EntityLocator addresses an entity by its UUID.
type EntityLocator struct {
	ID uuid.UUID
}

func (EntityLocator) locatorTag() uint8 { return entityLocatorTag }

func (l EntityLocator) marshal(w *protocol.Writer) {
	id := l.ID
	w.UUID(&id)
}

func (l EntityLocator) String() string {
	return "entity(" + l.ID.String() + ")"
}

// readLocator reads a tagged locator. The reader panics on short input.
func readLocator(r *protocol.Reader) (Locator, error) {
	var tag uint8
	r.Uint8(&tag)
	switch tag {
	case blockLocatorTag:
		var pos protocol.BlockPos
		r.BlockPos(&pos)
		return BlockLocator{Pos: cube.Pos{int(pos[0]), int(pos[1]), int(pos[2])}}, nil
	case entityLocatorTag:
		var id uuid.UUID
		r.UUID(&id)
		return EntityLocator{ID: id}, nil
	}
	return nil, fmt.Errorf("%w: unknown locator tag %d", ErrMalformedPacket, tag)
}

// writeLocator writes a tagged locator.
func writeLocator(w *protocol.Writer, l Locator) {
	tag := l.locatorTag()
	w.Uint8(&tag)
	l.marshal(w)
}
