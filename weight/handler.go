package weight

import "fmt"

// Direction restricts traversal of an edge relative to its stored direction.
type Direction uint8

const (
	Both     Direction = 0
	Forward  Direction = 1
	Backward Direction = 2
)

// String implements fmt.Stringer.
func (d Direction) String() string {
	switch d {
	case Both:
		return "both"
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	default:
		return "unknown"
	}
}

// ParseDirection parses the String form of a direction. The empty string
// means Both.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "", "both":
		return Both, nil
	case "forward":
		return Forward, nil
	case "backward":
		return Backward, nil
	default:
		return Both, fmt.Errorf("unknown direction %q", s)
	}
}

// Factor is the cost per metre of a profile and the direction it may be
// travelled in. A zero Value means not accessible.
type Factor struct {
	Value     float32
	Direction Direction
}

// NoFactor is returned for inaccessible profiles.
var NoFactor = Factor{}

// Accessible reports whether the factor allows traversal at all.
func (f Factor) Accessible() bool {
	return f.Value > 0
}

// Traversable reports whether an edge with factor f may be travelled from
// the vertex it is enumerated at. inverted is the enumerator's DataInverted.
func Traversable(f Factor, inverted bool) bool {
	if !f.Accessible() {
		return false
	}
	switch f.Direction {
	case Forward:
		return !inverted
	case Backward:
		return inverted
	default:
		return true
	}
}

// FactorFunc maps an edge profile to its factor.
type FactorFunc func(profile uint16) Factor

// WeightAndDir is a precomputed weight with its allowed direction.
type WeightAndDir struct {
	Weight    float32
	Direction Direction
}

// Handler computes edge costs. Implementations must be safe for concurrent
// use by independent searches.
type Handler interface {
	// Calculate returns the cost of travelling distance metres over edge
	// edgeID with the given profile, and the factor used.
	Calculate(profile uint16, distance float32, edgeID uint32) (float32, Factor)
	// Contracted decodes the weight of a contracted edge.
	Contracted(data uint32, edgeID uint32) WeightAndDir
	// Add returns weight plus the cost of the edge.
	Add(weight float32, profile uint16, distance float32, edgeID uint32) (float32, Factor)
}

// Edge decodes a packed edge data word and asks h for its cost.
func Edge(h Handler, data uint32, edgeID uint32) (float32, Factor) {
	distance, profile := DecodeEdgeData(data)
	return h.Calculate(profile, distance, edgeID)
}
