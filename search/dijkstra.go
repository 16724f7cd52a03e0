package search

import (
	"context"
	"fmt"
	"sync"

	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/roadnet/geo"
	"github.com/hupe1980/roadnet/graph"
	"github.com/hupe1980/roadnet/queue"
	"github.com/hupe1980/roadnet/weight"
)

// Path is a computed route.
type Path struct {
	// Vertices are the graph vertices passed, in order.
	Vertices []uint32 `json:"vertices"`
	// Edges are the edges travelled, including the partially travelled
	// edges of the source and target points.
	Edges []uint32 `json:"edges"`
	// Weight is the total cost according to the handler.
	Weight float32 `json:"weight"`
	// Distance is the length of the route in metres.
	Distance float32 `json:"distance"`
	// Shape is the geometry of the route from source to target.
	Shape []geo.Coordinate `json:"shape"`
}

type label struct {
	vertex   uint32
	edge     uint32 // edge travelled to reach vertex, graph.NoEdge for roots
	prev     int32
	weight   float32
	distance float32
}

// goal is the remaining cost from a vertex to a target.
type goal struct {
	target   int
	weight   float32
	distance float32
}

type candidate struct {
	found    bool
	direct   bool
	label    int32
	weight   float32
	distance float32
}

// endpoint is either a point on an edge or a bare vertex.
type endpoint struct {
	vertex uint32
	point  Point
	edge   *edgeInfo
}

type edgeInfo struct {
	edge     graph.Edge
	poly     []geo.Coordinate
	weight   float32
	distance float32
	factor   weight.Factor
}

// state is the per-search scratch space.
type state struct {
	heap    *queue.BinaryHeap[int32]
	labels  []label
	settled *bitset.BitSet
	enum    *graph.EdgeEnumerator
}

// Dijkstra runs shortest-path searches over one graph with one handler.
// It is safe for concurrent use by multiple goroutines.
type Dijkstra struct {
	g    *graph.Graph
	h    weight.Handler
	opts Options
	pool sync.Pool
}

// New creates a Dijkstra over g using h for edge costs.
func New(g *graph.Graph, h weight.Handler, optFns ...Option) (*Dijkstra, error) {
	if g.EdgeDataSize() == 0 {
		return nil, ErrNoEdgeData
	}
	opts := DefaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	d := &Dijkstra{g: g, h: h, opts: opts}
	d.pool.New = func() any {
		return &state{
			heap:    queue.NewBinaryHeap[int32](opts.HeapCapacity),
			settled: bitset.New(uint(g.VertexCount())),
			enum:    g.EdgeEnumerator(),
		}
	}
	return d, nil
}

func (d *Dijkstra) acquire() *state {
	st := d.pool.Get().(*state)
	st.heap.Clear()
	st.labels = st.labels[:0]
	st.settled.ClearAll()
	return st
}

func (d *Dijkstra) release(st *state) {
	d.pool.Put(st)
}

func (d *Dijkstra) restricted(v uint32) bool {
	return d.opts.Restricted != nil && d.opts.Restricted.Contains(v)
}

func (d *Dijkstra) edgeInfo(id uint32) (*edgeInfo, error) {
	e, ok := d.g.GetEdge(id)
	if !ok {
		return nil, fmt.Errorf("%w: edge %d", ErrInvalidPoint, id)
	}
	from, _ := d.g.GetVertex(e.From)
	to, _ := d.g.GetVertex(e.To)

	poly := make([]geo.Coordinate, 0, len(e.Shape)+2)
	poly = append(append(append(poly, from), e.Shape...), to)

	distance, profile := weight.DecodeEdgeData(e.Data[0])
	w, f := d.h.Calculate(profile, distance, id)
	return &edgeInfo{edge: e, poly: poly, weight: w, distance: distance, factor: f}, nil
}

func (d *Dijkstra) pointEndpoint(p Point) (endpoint, error) {
	if p.Offset < 0 || p.Offset > 1 {
		return endpoint{}, fmt.Errorf("%w: offset %v", ErrInvalidPoint, p.Offset)
	}
	info, err := d.edgeInfo(p.EdgeID)
	if err != nil {
		return endpoint{}, err
	}
	return endpoint{vertex: graph.NoVertex, point: p, edge: info}, nil
}

func (d *Dijkstra) vertexEndpoint(v uint32) (endpoint, error) {
	if _, ok := d.g.GetVertex(v); !ok {
		return endpoint{}, fmt.Errorf("%w: vertex %d", ErrInvalidPoint, v)
	}
	return endpoint{vertex: v}, nil
}

// seeds returns the root labels of a search leaving from src.
func seeds(src endpoint) []label {
	if src.edge == nil {
		return []label{{vertex: src.vertex, edge: graph.NoEdge, prev: -1}}
	}
	e, o := src.edge, src.point.Offset
	var out []label
	if weight.Traversable(e.factor, false) {
		out = append(out, label{vertex: e.edge.To, edge: graph.NoEdge, prev: -1,
			weight: e.weight * (1 - o), distance: e.distance * (1 - o)})
	}
	if weight.Traversable(e.factor, true) {
		out = append(out, label{vertex: e.edge.From, edge: graph.NoEdge, prev: -1,
			weight: e.weight * o, distance: e.distance * o})
	}
	return out
}

// addGoals registers the vertices from which target i is reached.
func addGoals(goals map[uint32][]goal, i int, dst endpoint) {
	if dst.edge == nil {
		goals[dst.vertex] = append(goals[dst.vertex], goal{target: i})
		return
	}
	e, o := dst.edge, dst.point.Offset
	if weight.Traversable(e.factor, false) {
		goals[e.edge.From] = append(goals[e.edge.From], goal{target: i, weight: e.weight * o, distance: e.distance * o})
	}
	if weight.Traversable(e.factor, true) {
		goals[e.edge.To] = append(goals[e.edge.To], goal{target: i, weight: e.weight * (1 - o), distance: e.distance * (1 - o)})
	}
}

// direct returns the cost of travelling from src to dst along their shared edge.
func direct(src, dst endpoint) candidate {
	if src.edge == nil || dst.edge == nil || src.point.EdgeID != dst.point.EdgeID {
		return candidate{}
	}
	e := src.edge
	delta := dst.point.Offset - src.point.Offset
	if (delta >= 0 && weight.Traversable(e.factor, false)) || (delta <= 0 && weight.Traversable(e.factor, true)) {
		delta = max(delta, -delta)
		return candidate{found: true, direct: true, label: -1, weight: e.weight * delta, distance: e.distance * delta}
	}
	return candidate{}
}

func finished(best []candidate, frontier float32) bool {
	for _, c := range best {
		if !c.found || c.weight > frontier {
			return false
		}
	}
	return true
}

func (d *Dijkstra) run(ctx context.Context, st *state, roots []label, goals map[uint32][]goal, best []candidate) error {
	for _, r := range roots {
		if d.restricted(r.vertex) || r.weight > d.opts.MaxWeight {
			continue
		}
		st.labels = append(st.labels, r)
		st.heap.Push(int32(len(st.labels)-1), r.weight)
	}

	for st.heap.Count() > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		if finished(best, st.heap.PeekWeight()) {
			return nil
		}

		idx := st.heap.Pop()
		cur := st.labels[idx]
		if st.settled.Test(uint(cur.vertex)) {
			continue
		}
		st.settled.Set(uint(cur.vertex))

		for _, gl := range goals[cur.vertex] {
			w := cur.weight + gl.weight
			if w > d.opts.MaxWeight {
				continue
			}
			if c := &best[gl.target]; !c.found || w < c.weight {
				*c = candidate{found: true, label: idx, weight: w, distance: cur.distance + gl.distance}
			}
		}

		if !st.enum.MoveTo(cur.vertex) {
			continue
		}
		for st.enum.MoveNext() {
			to := st.enum.To()
			if st.settled.Test(uint(to)) || d.restricted(to) {
				continue
			}
			distance, profile := weight.DecodeEdgeData(st.enum.Data0())
			w, f := d.h.Add(cur.weight, profile, distance, st.enum.ID())
			if !weight.Traversable(f, st.enum.DataInverted()) || w > d.opts.MaxWeight {
				continue
			}
			st.labels = append(st.labels, label{
				vertex:   to,
				edge:     st.enum.ID(),
				prev:     idx,
				weight:   w,
				distance: cur.distance + distance,
			})
			st.heap.Push(int32(len(st.labels)-1), w)
		}
	}
	return nil
}

func (d *Dijkstra) search(ctx context.Context, src endpoint, dsts []endpoint) ([]*Path, error) {
	best := make([]candidate, len(dsts))
	goals := make(map[uint32][]goal, len(dsts)*2)
	for i, dst := range dsts {
		best[i] = direct(src, dst)
		addGoals(goals, i, dst)
	}

	st := d.acquire()
	defer d.release(st)

	if err := d.run(ctx, st, seeds(src), goals, best); err != nil {
		return nil, err
	}

	paths := make([]*Path, len(dsts))
	for i, c := range best {
		if c.found {
			paths[i] = d.path(st, src, dsts[i], c)
		}
	}
	return paths, nil
}

// Route computes the cheapest route from source to target.
func (d *Dijkstra) Route(ctx context.Context, source, target Point) (*Path, error) {
	src, err := d.pointEndpoint(source)
	if err != nil {
		return nil, err
	}
	dst, err := d.pointEndpoint(target)
	if err != nil {
		return nil, err
	}
	return d.one(ctx, src, dst)
}

// RouteVertices computes the cheapest route between two vertices.
func (d *Dijkstra) RouteVertices(ctx context.Context, source, target uint32) (*Path, error) {
	src, err := d.vertexEndpoint(source)
	if err != nil {
		return nil, err
	}
	dst, err := d.vertexEndpoint(target)
	if err != nil {
		return nil, err
	}
	return d.one(ctx, src, dst)
}

func (d *Dijkstra) one(ctx context.Context, src, dst endpoint) (*Path, error) {
	paths, err := d.search(ctx, src, []endpoint{dst})
	if err != nil {
		return nil, err
	}
	if paths[0] == nil {
		return nil, ErrNoRoute
	}
	return paths[0], nil
}

// OneToMany computes the cheapest route from source to every target in a
// single search. Unreachable targets get a nil path.
func (d *Dijkstra) OneToMany(ctx context.Context, source Point, targets []Point) ([]*Path, error) {
	src, err := d.pointEndpoint(source)
	if err != nil {
		return nil, err
	}
	dsts := make([]endpoint, len(targets))
	for i, t := range targets {
		if dsts[i], err = d.pointEndpoint(t); err != nil {
			return nil, err
		}
	}
	return d.search(ctx, src, dsts)
}
