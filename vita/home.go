package vita

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oriumgames/comps"
)

// Home anchors an entity to a position. It counts the ticks the entity has
// spent away from it.
type Home struct {
	pos   mgl64.Vec3
	set   bool
	away  int64
	owner comps.Kind

	// Here reports the entity's current position. Nil means always home.
	Here func() mgl64.Vec3

	// Radius is the distance within which the entity counts as home.
	Radius float64
}

// NewHome returns an unset home with a radius of 8 blocks.
func NewHome() *Home {
	return &Home{Radius: 8}
}

// Set anchors the home at pos and resets the away counter.
func (h *Home) Set(pos mgl64.Vec3) {
	h.pos, h.set, h.away = pos, true, 0
}

// Position returns the anchor and whether one was set.
func (h *Home) Position() (mgl64.Vec3, bool) {
	return h.pos, h.set
}

// Distance returns the distance from pos to the anchor.
func (h *Home) Distance(pos mgl64.Vec3) float64 {
	return h.pos.Sub(pos).Len()
}

// Away returns the number of ticks spent outside Radius.
func (h *Home) Away() int64 {
	return h.away
}

// Owner returns the kind of the entity the home is attached to.
func (h *Home) Owner() comps.Kind {
	return h.owner
}

// ServerTick implements comps.ServerTicker.
func (h *Home) ServerTick() {
	if !h.set || h.Here == nil {
		return
	}
	if h.Distance(h.Here()) > h.Radius {
		h.away++
	} else {
		h.away = 0
	}
}

// Attach implements comps.Attachable.
func (h *Home) Attach(p comps.Provider) {
	if c := p.Components(); c != nil {
		h.owner = c.Kind()
	}
}

// WriteNBT implements comps.Persistent. An unset home writes nothing.
func (h *Home) WriteNBT(doc comps.Document) {
	if !h.set {
		return
	}
	doc["x"], doc["y"], doc["z"] = h.pos[0], h.pos[1], h.pos[2]
	doc["away"] = h.away
}

// ReadNBT implements comps.Persistent.
func (h *Home) ReadNBT(doc comps.Document) error {
	x, okx := doc.Float64("x")
	y, oky := doc.Float64("y")
	z, okz := doc.Float64("z")
	if !okx || !oky || !okz {
		return nil
	}
	h.Set(mgl64.Vec3{x, y, z})
	h.away, _ = doc.Int64("away")
	return nil
}

// CopyFrom implements comps.Copier.
func (h *Home) CopyFrom(src *Home) {
	h.pos, h.set, h.away, h.Radius = src.pos, src.set, src.away, src.Radius
}
