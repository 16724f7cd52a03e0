package graph

import (
	"iter"
	"slices"

	"github.com/hupe1980/roadnet/geo"
)

// Edge is a snapshot of an edge as seen from one of its endpoints.
type Edge struct {
	ID   uint32
	From uint32
	To   uint32
	Data []uint32
	// DataInverted is set when the edge is seen from its stored to vertex,
	// so From and To are swapped relative to the stored direction.
	DataInverted bool
	// Shape runs from From to To.
	Shape []geo.Coordinate
}

// EdgeEnumerator is a reusable cursor over the edges incident to a vertex.
// It is not safe for concurrent use; give each goroutine its own.
type EdgeEnumerator struct {
	g        *Graph
	vertex   uint32
	first    uint32
	current  uint32
	next     uint32
	to       uint32
	inverted bool
}

// EdgeEnumerator returns an unpositioned cursor over g.
func (g *Graph) EdgeEnumerator() *EdgeEnumerator {
	return &EdgeEnumerator{
		g:       g,
		vertex:  NoVertex,
		first:   NoEdge,
		current: NoEdge,
		next:    NoEdge,
		to:      NoVertex,
	}
}

// EdgeEnumeratorAt returns a cursor positioned at v.
func (g *Graph) EdgeEnumeratorAt(v uint32) (*EdgeEnumerator, error) {
	if v >= g.vertexCount {
		return nil, outOfRange(v, g.vertexCount)
	}
	e := g.EdgeEnumerator()
	e.MoveTo(v)
	return e, nil
}

// MoveTo positions the cursor before the first edge of v. It reports false,
// leaving the cursor unpositioned, when v has no coordinate.
func (e *EdgeEnumerator) MoveTo(v uint32) bool {
	if !e.g.hasVertex(v) {
		e.vertex, e.first, e.current, e.next = NoVertex, NoEdge, NoEdge, NoEdge
		return false
	}
	e.vertex = v
	e.first = e.g.vertices[v]
	e.Reset()
	return true
}

// Reset rewinds the cursor to before the first edge of the current vertex.
func (e *EdgeEnumerator) Reset() {
	e.current = NoEdge
	e.next = e.first
	e.to = NoVertex
	e.inverted = false
}

// HasData reports whether the cursor is positioned at a vertex.
func (e *EdgeEnumerator) HasData() bool {
	return e.vertex != NoVertex
}

// MoveNext advances to the next edge. It reports false when the chain is exhausted.
func (e *EdgeEnumerator) MoveNext() bool {
	if e.next == NoEdge {
		e.current = NoEdge
		return false
	}
	e.current = e.next

	edges := e.g.edges
	base := int(e.current) * edgeSize
	if edges[base+fromOffset] == e.vertex {
		e.to = edges[base+toOffset]
		e.inverted = false
		e.next = edges[base+nextFromOffset]
	} else {
		e.to = edges[base+fromOffset]
		e.inverted = true
		e.next = edges[base+nextToOffset]
	}
	return true
}

// ID returns the id of the current edge.
func (e *EdgeEnumerator) ID() uint32 {
	return e.current
}

// From returns the vertex the cursor is positioned at.
func (e *EdgeEnumerator) From() uint32 {
	return e.vertex
}

// To returns the opposite endpoint of the current edge.
func (e *EdgeEnumerator) To() uint32 {
	return e.to
}

// DataInverted reports whether the current edge is stored in the opposite direction.
func (e *EdgeEnumerator) DataInverted() bool {
	return e.inverted
}

// Data returns the data words of the current edge. The slice aliases graph
// storage and is only valid until the next mutation.
func (e *EdgeEnumerator) Data() []uint32 {
	return e.g.data(e.current)
}

// Data0 returns the first data word of the current edge.
func (e *EdgeEnumerator) Data0() uint32 {
	return e.g.edgeData[int(e.current)*e.g.edgeDataSize]
}

// Shape returns the intermediate coordinates of the current edge, ordered
// from From to To.
func (e *EdgeEnumerator) Shape() []geo.Coordinate {
	shape := e.g.shapes.get(e.current)
	if e.inverted {
		slices.Reverse(shape)
	}
	return shape
}

// Edge returns a snapshot of the current edge.
func (e *EdgeEnumerator) Edge() Edge {
	return Edge{
		ID:           e.current,
		From:         e.vertex,
		To:           e.to,
		Data:         slices.Clone(e.Data()),
		DataInverted: e.inverted,
		Shape:        e.Shape(),
	}
}

// Count returns the number of edges at the current vertex without moving the cursor.
func (e *EdgeEnumerator) Count() int {
	n := 0
	for id := e.first; id != NoEdge; id = e.g.next(id, e.vertex) {
		n++
	}
	return n
}

// All resets the cursor and yields a snapshot of every edge at the current vertex.
func (e *EdgeEnumerator) All() iter.Seq[Edge] {
	return func(yield func(Edge) bool) {
		e.Reset()
		for e.MoveNext() {
			if !yield(e.Edge()) {
				return
			}
		}
	}
}
