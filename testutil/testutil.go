package testutil

import (
	"math"
	"math/rand"
	"sync"

	"github.com/hupe1980/roadnet/geo"
	"github.com/hupe1980/roadnet/graph"
	"github.com/hupe1980/roadnet/weight"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float32 returns, as a float32, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// Coordinate returns a random coordinate inside the box spanned by min and max.
func (r *RNG) Coordinate(minC, maxC geo.Coordinate) geo.Coordinate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return geo.Coordinate{
		Latitude:  minC.Latitude + r.rand.Float32()*(maxC.Latitude-minC.Latitude),
		Longitude: minC.Longitude + r.rand.Float32()*(maxC.Longitude-minC.Longitude),
	}
}

// GridOptions shapes the network built by Grid.
type GridOptions struct {
	Rows, Cols int
	// Spacing between neighbouring vertices in degrees. Defaults to 0.001.
	Spacing float32
	// Jitter moves every vertex by up to this fraction of Spacing.
	Jitter float32
	// Profiles are drawn uniformly from [1, Profiles]. Defaults to 1.
	Profiles int
	// DropRate is the fraction of grid edges left out.
	DropRate float32
	// ShapeRate is the fraction of edges that get an intermediate point.
	ShapeRate float32
}

// Grid builds a jittered grid network with one data word per edge. Vertex
// r*Cols+c sits in row r, column c; edges connect horizontal and vertical
// neighbours.
func (r *RNG) Grid(opts GridOptions) *graph.Graph {
	if opts.Spacing <= 0 {
		opts.Spacing = 0.001
	}
	if opts.Profiles <= 0 {
		opts.Profiles = 1
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	n := opts.Rows * opts.Cols
	g := graph.New(1, graph.WithVertexCapacity(n), graph.WithEdgeCapacity(2*n))
	coords := make([]geo.Coordinate, n)
	jitter := func() float32 { return (r.rand.Float32()*2 - 1) * opts.Jitter * opts.Spacing }
	for row := range opts.Rows {
		for col := range opts.Cols {
			c := geo.Coordinate{
				Latitude:  float32(row)*opts.Spacing + jitter(),
				Longitude: float32(col)*opts.Spacing + jitter(),
			}
			v := row*opts.Cols + col
			coords[v] = c
			_ = g.AddVertex(uint32(v), c.Latitude, c.Longitude)
		}
	}

	connect := func(from, to int) {
		if r.rand.Float32() < opts.DropRate {
			return
		}
		var shape []geo.Coordinate
		points := []geo.Coordinate{coords[from], coords[to]}
		if r.rand.Float32() < opts.ShapeRate {
			mid := geo.Coordinate{
				Latitude:  (coords[from].Latitude+coords[to].Latitude)/2 + opts.Spacing/4,
				Longitude: (coords[from].Longitude + coords[to].Longitude) / 2,
			}
			shape = []geo.Coordinate{mid}
			points = []geo.Coordinate{coords[from], mid, coords[to]}
		}
		profile := uint16(1 + r.rand.Intn(opts.Profiles))
		data, err := weight.EncodeEdgeData(geo.PolylineLength(points), profile)
		if err != nil {
			return
		}
		_, _ = g.AddEdge(uint32(from), uint32(to), []uint32{data}, shape)
	}

	for row := range opts.Rows {
		for col := range opts.Cols {
			v := row*opts.Cols + col
			if col+1 < opts.Cols {
				connect(v, v+1)
			}
			if row+1 < opts.Rows {
				connect(v, v+opts.Cols)
			}
		}
	}
	return g
}

// ExactWeights returns the cheapest weight from source to every vertex,
// computed by Bellman-Ford relaxation over all edges. Unreachable vertices
// get +Inf.
func ExactWeights(g *graph.Graph, h weight.Handler, source uint32) []float64 {
	type arc struct {
		from, to uint32
		w        float64
	}

	var arcs []arc
	e := g.EdgeEnumerator()
	for v := range g.VertexCount() {
		if !e.MoveTo(v) {
			continue
		}
		for e.MoveNext() {
			w, f := weight.Edge(h, e.Data0(), e.ID())
			if weight.Traversable(f, e.DataInverted()) {
				arcs = append(arcs, arc{from: v, to: e.To(), w: float64(w)})
			}
		}
	}

	dist := make([]float64, g.VertexCount())
	for i := range dist {
		dist[i] = math.Inf(1)
	}
	if int(source) >= len(dist) {
		return dist
	}
	dist[source] = 0

	for range len(dist) {
		changed := false
		for _, a := range arcs {
			if d := dist[a.from] + a.w; d < dist[a.to] {
				dist[a.to] = d
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return dist
}
