package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange is returned when a vertex id is not part of the graph.
	ErrOutOfRange = errors.New("vertex out of range")

	// ErrSelfLoop is returned when an edge would connect a vertex to itself.
	ErrSelfLoop = errors.New("self-loop edges are not supported")

	// ErrDataSize is returned when edge data does not match the graph's edge data size.
	ErrDataSize = errors.New("edge data size mismatch")

	// ErrCapacity is returned when the edge id space is exhausted.
	ErrCapacity = errors.New("edge capacity exhausted")

	// ErrInvalidCoordinate is returned for a latitude the graph reserves to
	// mark unwritten vertices.
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	// ErrCorrupt is returned when a serialized graph is malformed.
	ErrCorrupt = errors.New("corrupt graph data")
)

func outOfRange(v, count uint32) error {
	return fmt.Errorf("%w: vertex %d, vertex count %d", ErrOutOfRange, v, count)
}
