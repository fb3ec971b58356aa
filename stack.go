package comps

import (
	"bytes"

	"github.com/df-mc/dragonfly/server/item"
	"github.com/sandertv/gophertunnel/minecraft/nbt"
)

// StackValueKey is the item.Stack value under which frozen components are kept,
// as an NBT compound encoded with StackEncoding.
const StackValueKey = "comps:components"

// StackEncoding is the NBT encoding of component data stored on item stacks.
// Dragonfly persists stack values with encoding/gob, which handles the byte
// slice natively.
var StackEncoding nbt.Encoding = nbt.LittleEndian

// StackHolder returns a frozen holder for the components stored on stack.
// Components are constructed only once the holder's Components is called.
// Empty stacks get a holder that provides nothing.
func StackHolder(mf *Metafactory, stack item.Stack) *Holder {
	if stack.Empty() {
		return NewHolder(nil, Kind{Category: ItemCategory}, stack, nil)
	}
	kind := ItemKind(stack.Item())
	data := stackData(stack)
	if len(data) == 0 {
		return NewHolder(mf, kind, stack, nil)
	}
	doc, err := DecodeDocument(data, StackEncoding)
	if err != nil {
		if mf != nil {
			mf.env.log.Warn("comps: dropped unreadable stack components",
				"kind", kind.String(),
				"error", err)
		}
		return NewHolder(mf, kind, stack, nil)
	}
	return NewHolder(mf, kind, stack, doc)
}

func stackData(stack item.Stack) []byte {
	v, ok := stack.Value(StackValueKey)
	if !ok {
		return nil
	}
	data, _ := v.([]byte)
	return data
}

// WithHolder returns stack carrying the components of h. The stack value is
// always freshly encoded; values of existing stacks are never modified.
func WithHolder(stack item.Stack, h *Holder) item.Stack {
	if h == nil || h.HasNoComponentData() {
		return stack.WithValue(StackValueKey, nil)
	}
	doc := h.Document()
	if len(doc) == 0 {
		return stack.WithValue(StackValueKey, nil)
	}
	data, err := EncodeDocument(doc, StackEncoding)
	if err != nil {
		if h.mf != nil {
			h.mf.env.log.Error("comps: failed to store stack components",
				"kind", h.kind.String(),
				"error", err)
		}
		return stack
	}
	return stack.WithValue(StackValueKey, data)
}

// CopyStack returns dst carrying a copy of the components of src. The encoded
// data is shared as is, nothing is decoded.
func CopyStack(src, dst item.Stack) item.Stack {
	data := stackData(src)
	if src.Empty() || len(data) == 0 {
		return dst.WithValue(StackValueKey, nil)
	}
	return dst.WithValue(StackValueKey, data)
}

// StacksCompatible reports whether two stacks of the same item carry equal
// components. Stacks of different items are never compatible.
func StacksCompatible(mf *Metafactory, a, b item.Stack) bool {
	if a.Empty() || b.Empty() {
		return a.Empty() == b.Empty()
	}
	if ItemKind(a.Item()) != ItemKind(b.Item()) {
		return false
	}
	if bytes.Equal(stackData(a), stackData(b)) {
		return true
	}
	return StackHolder(mf, a).Equal(StackHolder(mf, b))
}
