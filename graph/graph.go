package graph

import (
	"fmt"
	"math"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/roadnet/geo"
)

const (
	// NoVertex marks an absent vertex. Removed edges carry it as both endpoints.
	NoVertex uint32 = math.MaxUint32
	// NoEdge terminates an adjacency chain.
	NoEdge uint32 = math.MaxUint32
)

// Edge slot layout: from, to, next edge in from's chain, next edge in to's chain.
const (
	edgeSize       = 4
	fromOffset     = 0
	toOffset       = 1
	nextFromOffset = 2
	nextToOffset   = 3
)

// noCoordinate marks a vertex slot whose coordinate was never written.
const noCoordinate float32 = math.MaxFloat32

// Graph is a geometric graph with index-threaded adjacency.
type Graph struct {
	edgeDataSize int

	vertices    []uint32  // head of each vertex's edge chain
	coordinates []float32 // lat, lon per vertex
	edges       []uint32  // edgeSize words per edge slot
	edgeData    []uint32  // edgeDataSize words per edge slot
	shapes      *shapeStore

	removed     *roaring.Bitmap // dead edge slots
	vertexCount uint32
	edgeCount   uint32

	// borrowed is set while the slices alias memory owned by the caller.
	borrowed bool
}

// New creates an empty graph whose edges carry edgeDataSize uint32 words.
func New(edgeDataSize int, opts ...Option) *Graph {
	if edgeDataSize < 0 {
		panic(fmt.Sprintf("graph: negative edge data size %d", edgeDataSize))
	}
	o := applyOptions(opts)

	g := &Graph{
		edgeDataSize: edgeDataSize,
		edges:        make([]uint32, 0, o.edgeCapacity*edgeSize),
		edgeData:     make([]uint32, 0, o.edgeCapacity*edgeDataSize),
		shapes:       newShapeStore(o.edgeCapacity),
		removed:      roaring.New(),
	}
	g.resizeVertices(o.vertexCapacity)
	return g
}

// EdgeDataSize returns the number of uint32 data words per edge.
func (g *Graph) EdgeDataSize() int {
	return g.edgeDataSize
}

// VertexCount returns the highest vertex id ever written plus one.
func (g *Graph) VertexCount() uint32 {
	return g.vertexCount
}

// EdgeCount returns the number of live edges.
func (g *Graph) EdgeCount() uint32 {
	return g.edgeCount
}

// EdgeSlots returns the size of the edge id space in use. Every edge id,
// live or removed, is below it.
func (g *Graph) EdgeSlots() uint32 {
	return uint32(len(g.edges) / edgeSize)
}

// resizeVertices reallocates the vertex arrays to exactly n slots.
func (g *Graph) resizeVertices(n int) {
	vertices := make([]uint32, n)
	coordinates := make([]float32, n*2)
	k := copy(vertices, g.vertices)
	copy(coordinates, g.coordinates)
	for i := k; i < n; i++ {
		vertices[i] = NoEdge
		coordinates[i*2] = noCoordinate
		coordinates[i*2+1] = noCoordinate
	}
	g.vertices = vertices
	g.coordinates = coordinates
}

// AddVertex sets the coordinate of vertex id, growing the graph as needed.
// Writing an existing vertex moves it. A latitude of math.MaxFloat32 marks
// unwritten vertices and is rejected with ErrInvalidCoordinate.
func (g *Graph) AddVertex(id uint32, lat, lon float32) error {
	if id == NoVertex {
		return fmt.Errorf("%w: vertex id %d is reserved", ErrOutOfRange, id)
	}
	if lat == noCoordinate {
		return fmt.Errorf("%w: latitude %v is reserved", ErrInvalidCoordinate, lat)
	}
	g.own()

	if int(id) >= len(g.vertices) {
		g.resizeVertices(max(int(id)+1, len(g.vertices)*2))
	}
	g.coordinates[int(id)*2] = lat
	g.coordinates[int(id)*2+1] = lon
	if id >= g.vertexCount {
		g.vertexCount = id + 1
	}
	return nil
}

// GetVertex returns the coordinate of vertex id. It reports false when the
// vertex was never written.
func (g *Graph) GetVertex(id uint32) (geo.Coordinate, bool) {
	if !g.hasVertex(id) {
		return geo.Coordinate{}, false
	}
	return geo.Coordinate{
		Latitude:  g.coordinates[int(id)*2],
		Longitude: g.coordinates[int(id)*2+1],
	}, true
}

func (g *Graph) hasVertex(id uint32) bool {
	return id < g.vertexCount && g.coordinates[int(id)*2] != noCoordinate
}

// AddEdge adds an edge between two existing vertices and returns its id.
// An existing edge between the same pair, in either direction, is replaced:
// it is removed and the new edge gets a fresh id.
func (g *Graph) AddEdge(from, to uint32, data []uint32, shape []geo.Coordinate) (uint32, error) {
	if !g.hasVertex(from) {
		return NoEdge, fmt.Errorf("%w: edge from vertex %d, vertex count %d", ErrOutOfRange, from, g.vertexCount)
	}
	if !g.hasVertex(to) {
		return NoEdge, fmt.Errorf("%w: edge to vertex %d, vertex count %d", ErrOutOfRange, to, g.vertexCount)
	}
	if from == to {
		return NoEdge, fmt.Errorf("%w: vertex %d", ErrSelfLoop, from)
	}
	if len(data) != g.edgeDataSize {
		return NoEdge, fmt.Errorf("%w: got %d words, want %d", ErrDataSize, len(data), g.edgeDataSize)
	}
	if len(g.edges)/edgeSize >= int(NoEdge) {
		return NoEdge, ErrCapacity
	}
	g.own()

	if existing := g.find(from, to); existing != NoEdge {
		g.remove(existing)
	}

	id := g.EdgeSlots()
	g.edges = append(g.edges, from, to, g.vertices[from], g.vertices[to])
	g.edgeData = append(g.edgeData, data...)
	g.vertices[from] = id
	g.vertices[to] = id
	g.shapes.set(id, shape)
	g.edgeCount++

	return id, nil
}

// next returns the edge following id in v's chain.
func (g *Graph) next(id, v uint32) uint32 {
	base := int(id) * edgeSize
	if g.edges[base+fromOffset] == v {
		return g.edges[base+nextFromOffset]
	}
	return g.edges[base+nextToOffset]
}

// find returns the edge between from and to in either direction, or NoEdge.
func (g *Graph) find(from, to uint32) uint32 {
	for e := g.vertices[from]; e != NoEdge; e = g.next(e, from) {
		base := int(e) * edgeSize
		if g.edges[base+fromOffset] == to || g.edges[base+toOffset] == to {
			return e
		}
	}
	return NoEdge
}

// chain appends the ids of all edges incident to v to buf.
func (g *Graph) chain(v uint32, buf []uint32) []uint32 {
	for e := g.vertices[v]; e != NoEdge; e = g.next(e, v) {
		buf = append(buf, e)
	}
	return buf
}

// unlink removes edge id from v's chain.
func (g *Graph) unlink(v, id uint32) {
	prev := NoEdge
	for e := g.vertices[v]; e != NoEdge; prev, e = e, g.next(e, v) {
		if e != id {
			continue
		}
		next := g.next(e, v)
		if prev == NoEdge {
			g.vertices[v] = next
			return
		}
		base := int(prev) * edgeSize
		if g.edges[base+fromOffset] == v {
			g.edges[base+nextFromOffset] = next
		} else {
			g.edges[base+nextToOffset] = next
		}
		return
	}
}

func (g *Graph) remove(id uint32) {
	base := int(id) * edgeSize
	from, to := g.edges[base+fromOffset], g.edges[base+toOffset]
	g.unlink(from, id)
	g.unlink(to, id)

	g.edges[base+fromOffset] = NoVertex
	g.edges[base+toOffset] = NoVertex
	g.edges[base+nextFromOffset] = NoEdge
	g.edges[base+nextToOffset] = NoEdge
	clear(g.edgeData[int(id)*g.edgeDataSize : (int(id)+1)*g.edgeDataSize])
	g.shapes.remove(id)

	g.removed.Add(id)
	g.edgeCount--
}

func (g *Graph) isLive(id uint32) bool {
	return int(id) < len(g.edges)/edgeSize && g.edges[int(id)*edgeSize] != NoVertex
}

// RemoveEdge removes the edge with the given id. It reports false when no
// such edge exists.
func (g *Graph) RemoveEdge(id uint32) bool {
	if !g.isLive(id) {
		return false
	}
	g.own()
	g.remove(id)
	return true
}

// RemoveEdgeBetween removes the edge between from and to, in either
// direction. It reports false when there is none.
func (g *Graph) RemoveEdgeBetween(from, to uint32) bool {
	if from >= g.vertexCount || to >= g.vertexCount {
		return false
	}
	id := g.find(from, to)
	if id == NoEdge {
		return false
	}
	g.own()
	g.remove(id)
	return true
}

// RemoveEdges removes every edge incident to v and returns how many were removed.
func (g *Graph) RemoveEdges(v uint32) int {
	if v >= g.vertexCount {
		return 0
	}
	ids := g.chain(v, nil)
	if len(ids) == 0 {
		return 0
	}
	g.own()
	for _, id := range ids {
		g.remove(id)
	}
	return len(ids)
}

// GetEdge returns a copy of the edge with the given id in its stored direction.
func (g *Graph) GetEdge(id uint32) (Edge, bool) {
	if !g.isLive(id) {
		return Edge{}, false
	}
	base := int(id) * edgeSize
	return Edge{
		ID:    id,
		From:  g.edges[base+fromOffset],
		To:    g.edges[base+toOffset],
		Data:  slices.Clone(g.data(id)),
		Shape: g.shapes.get(id),
	}, true
}

func (g *Graph) data(id uint32) []uint32 {
	start := int(id) * g.edgeDataSize
	end := start + g.edgeDataSize
	return g.edgeData[start:end:end]
}

// Switch exchanges the identities of v1 and v2: their coordinates and
// incident edges trade places. Applying it twice restores the graph.
func (g *Graph) Switch(v1, v2 uint32) error {
	if v1 >= g.vertexCount || v2 >= g.vertexCount {
		return fmt.Errorf("%w: switch %d and %d, vertex count %d", ErrOutOfRange, v1, v2, g.vertexCount)
	}
	if v1 == v2 {
		return nil
	}
	g.own()

	// Collect both chains before renaming; an edge between v1 and v2 is in
	// both and must be renamed once.
	ids := g.chain(v1, nil)
	for e := g.vertices[v2]; e != NoEdge; e = g.next(e, v2) {
		base := int(e) * edgeSize
		if g.edges[base+fromOffset] != v1 && g.edges[base+toOffset] != v1 {
			ids = append(ids, e)
		}
	}

	for _, id := range ids {
		base := int(id) * edgeSize
		for _, k := range [2]int{base + fromOffset, base + toOffset} {
			switch g.edges[k] {
			case v1:
				g.edges[k] = v2
			case v2:
				g.edges[k] = v1
			}
		}
	}

	g.vertices[v1], g.vertices[v2] = g.vertices[v2], g.vertices[v1]
	c1, c2 := int(v1)*2, int(v2)*2
	g.coordinates[c1], g.coordinates[c2] = g.coordinates[c2], g.coordinates[c1]
	g.coordinates[c1+1], g.coordinates[c2+1] = g.coordinates[c2+1], g.coordinates[c1+1]
	return nil
}

// Compress drops shape coordinates no longer referenced by a live edge and
// releases removed edge slots at the end of the id space, which makes those
// ids available again. Live edge ids never change.
//
// Anything keyed by a released id, such as a score, attaches to the next
// edge added under that id. Drop such entries for removed edges first.
func (g *Graph) Compress() {
	g.own()
	g.shapes.compress()

	slots := len(g.edges) / edgeSize
	n := slots
	for n > 0 && g.removed.Contains(uint32(n-1)) {
		n--
	}
	if n == slots {
		return
	}
	g.removed.RemoveRange(uint64(n), uint64(slots))
	g.edges = g.edges[:n*edgeSize]
	g.edgeData = g.edgeData[:n*g.edgeDataSize]
	g.shapes.truncate(n)
}

// Trim releases spare capacity. Vertex storage shrinks to VertexCount
// (at least one slot) and edge storage to the slots in use.
func (g *Graph) Trim() {
	g.own()
	g.resizeVertices(max(int(g.vertexCount), 1))
	g.edges = shrink(g.edges, len(g.edges))
	g.edgeData = shrink(g.edgeData, len(g.edgeData))
	g.shapes.trim()
	g.removed.RunOptimize()
}

// own replaces views into caller memory by owned copies before the first
// mutation of a graph loaded without copying.
func (g *Graph) own() {
	if !g.borrowed {
		return
	}
	g.vertices = slices.Clone(g.vertices)
	g.coordinates = slices.Clone(g.coordinates)
	g.edges = slices.Clone(g.edges)
	g.edgeData = slices.Clone(g.edgeData)
	g.shapes.own()
	g.borrowed = false
}

// shrink returns a copy of s[:n] with capacity n.
func shrink[S ~[]E, E any](s S, n int) S {
	out := make(S, n)
	copy(out, s)
	return out
}
