// Package vita is sample content for comps: a vitality value carried by
// blocks, entities and items, and a home anchor for entities.
package vita

import (
	"github.com/oriumgames/comps"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

// Vitality is the component type of Key. Blocks and entities carry a *Vita,
// items an *ItemVita.
type Vitality interface {
	Vitality() int32
	SetVitality(v int32)

	comps.Persistent
	comps.AutoSynced

	CopyFrom(src Vitality)
	ComponentEqual(other Vitality) bool
}

// Vita is a plain vitality counter.
type Vita struct {
	vitality int32
}

// New returns a Vita with the given vitality.
func New(v int32) *Vita {
	return &Vita{vitality: max(v, 0)}
}

// Vitality returns the current vitality.
func (v *Vita) Vitality() int32 {
	return v.vitality
}

// SetVitality sets the vitality. Negative values are clamped to 0.
func (v *Vita) SetVitality(n int32) {
	v.vitality = max(n, 0)
}

// WriteNBT implements comps.Persistent.
func (v *Vita) WriteNBT(doc comps.Document) {
	doc["vitality"] = v.vitality
}

// ReadNBT implements comps.Persistent.
func (v *Vita) ReadNBT(doc comps.Document) error {
	if n, ok := doc.Int32("vitality"); ok {
		v.SetVitality(n)
	}
	return nil
}

// WriteSyncPayload implements comps.AutoSynced.
func (v *Vita) WriteSyncPayload(w *protocol.Writer) {
	w.Varint32(&v.vitality)
}

// ApplySyncPayload implements comps.AutoSynced.
func (v *Vita) ApplySyncPayload(r *protocol.Reader) {
	var n int32
	r.Varint32(&n)
	v.SetVitality(n)
}

// CopyFrom implements comps.Copier.
func (v *Vita) CopyFrom(src Vitality) {
	v.SetVitality(src.Vitality())
}

// ComponentEqual implements comps.Comparable.
func (v *Vita) ComponentEqual(other Vitality) bool {
	return other != nil && v.Vitality() == other.Vitality()
}

// TransferTo moves up to amount vitality from src to dst and returns the
// amount moved.
func TransferTo(src, dst Vitality, amount int32) int32 {
	if amount <= 0 || src == dst {
		return 0
	}
	moved := min(amount, src.Vitality())
	src.SetVitality(src.Vitality() - moved)
	dst.SetVitality(dst.Vitality() + moved)
	return moved
}
