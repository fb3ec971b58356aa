package comps

import (
	"github.com/df-mc/dragonfly/server/block/cube"
)

// SidedProvider exposes different components depending on the face they are
// accessed from, as pipes or machines do.
type SidedProvider interface {
	Components(face cube.Face) Provider
}

// Sides is a SidedProvider with an optional provider per face. Faces without
// their own provider fall back to Center.
type Sides struct {
	Center Provider
	Faces  [6]Provider
}

// Components implements SidedProvider.
func (s *Sides) Components(face cube.Face) Provider {
	if int(face) >= 0 && int(face) < len(s.Faces) && s.Faces[face] != nil {
		return s.Faces[face]
	}
	if s.Center != nil {
		return s.Center
	}
	return EmptyProvider()
}

type emptyProvider struct{}

func (emptyProvider) Components() *Container { return nil }

type emptySided struct{}

func (emptySided) Components(cube.Face) Provider { return emptyProvider{} }

// EmptyProvider returns a provider without components. Every ComponentKey
// lookup against it fails.
func EmptyProvider() Provider {
	return emptyProvider{}
}

// EmptySided returns a SidedProvider answering EmptyProvider for every face.
func EmptySided() SidedProvider {
	return emptySided{}
}
