package vita

import (
	"reflect"

	"github.com/oriumgames/comps"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

// ItemVita is the vitality of an item stack. It keeps its state in a
// document of its own, so unknown fields written by other versions survive
// a round trip.
type ItemVita struct {
	doc comps.Document
}

// NewItem returns an ItemVita with no vitality.
func NewItem() *ItemVita {
	return &ItemVita{doc: make(comps.Document)}
}

// Vitality returns the current vitality.
func (v *ItemVita) Vitality() int32 {
	n, _ := v.doc.Int32("vitality")
	return n
}

// SetVitality sets the vitality. Values of 0 or less remove the field.
func (v *ItemVita) SetVitality(n int32) {
	if n <= 0 {
		delete(v.doc, "vitality")
		return
	}
	v.doc["vitality"] = n
}

// WriteNBT implements comps.Persistent. Every field is written, including
// fields this version does not know.
func (v *ItemVita) WriteNBT(doc comps.Document) {
	for k, val := range v.doc.Clone() {
		doc[k] = val
	}
}

// ReadNBT implements comps.Persistent.
func (v *ItemVita) ReadNBT(doc comps.Document) error {
	v.doc = doc.Clone()
	return nil
}

// WriteSyncPayload implements comps.AutoSynced. Only the vitality is sent.
func (v *ItemVita) WriteSyncPayload(w *protocol.Writer) {
	n := v.Vitality()
	w.Varint32(&n)
}

// ApplySyncPayload implements comps.AutoSynced.
func (v *ItemVita) ApplySyncPayload(r *protocol.Reader) {
	var n int32
	r.Varint32(&n)
	v.SetVitality(n)
}

// CopyFrom implements comps.Copier. Copying from another ItemVita keeps all
// of its fields.
func (v *ItemVita) CopyFrom(src Vitality) {
	if o, ok := src.(*ItemVita); ok {
		v.doc = o.doc.Clone()
		return
	}
	v.SetVitality(src.Vitality())
}

// ComponentEqual implements comps.Comparable.
func (v *ItemVita) ComponentEqual(other Vitality) bool {
	if o, ok := other.(*ItemVita); ok {
		return reflect.DeepEqual(v.doc, o.doc)
	}
	return other != nil && v.Vitality() == other.Vitality()
}
