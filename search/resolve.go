package search

import (
	"context"
	"fmt"
	"math"

	"github.com/hupe1980/roadnet/geo"
	"github.com/hupe1980/roadnet/graph"
	"github.com/hupe1980/roadnet/weight"
)

// metresPerDegree is the length of one degree of latitude.
const metresPerDegree = 111320

// Point is a location on an edge.
type Point struct {
	EdgeID uint32 `json:"edge_id"`
	// Offset is the position along the edge as a fraction of its length,
	// measured from the edge's stored from vertex.
	Offset float32 `json:"offset"`
	// Location is the snapped coordinate.
	Location geo.Coordinate `json:"location"`
	// Distance is the distance in metres between the resolved coordinate
	// and Location.
	Distance float32 `json:"distance"`
}

// Resolver snaps coordinates onto the routable edges of a graph.
type Resolver struct {
	g *graph.Graph
	h weight.Handler
}

// NewResolver creates a resolver. An edge is routable when h gives it an
// accessible factor in at least one direction.
func NewResolver(g *graph.Graph, h weight.Handler) *Resolver {
	return &Resolver{g: g, h: h}
}

// Resolve returns the point on the routable edge closest to c within
// radius metres.
//
// TODO: replace the linear scan with a spatial index over edge bounds.
func (r *Resolver) Resolve(ctx context.Context, c geo.Coordinate, radius float32) (Point, error) {
	if r.g.EdgeDataSize() == 0 {
		return Point{}, ErrNoEdgeData
	}

	latMargin := float64(radius) / metresPerDegree
	lonMargin := latMargin / math.Max(math.Cos(float64(c.Latitude)*math.Pi/180), 1e-6)

	best := Point{Distance: math.MaxFloat32}
	found := false

	enum := r.g.EdgeEnumerator()
	var poly []geo.Coordinate
	for v := range r.g.VertexCount() {
		if v%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return Point{}, err
			}
		}
		if !enum.MoveTo(v) {
			continue
		}
		for enum.MoveNext() {
			// each edge once, from its stored from vertex
			if enum.DataInverted() {
				continue
			}
			distance, profile := weight.DecodeEdgeData(enum.Data0())
			if _, f := r.h.Calculate(profile, distance, enum.ID()); !f.Accessible() {
				continue
			}

			from, _ := r.g.GetVertex(v)
			to, _ := r.g.GetVertex(enum.To())
			poly = append(append(append(poly[:0], from), enum.Shape()...), to)
			if !near(poly, c, latMargin, lonMargin) {
				continue
			}

			if p, ok := project(poly, c); ok && p.Distance <= radius && p.Distance < best.Distance {
				p.EdgeID = enum.ID()
				best, found = p, true
			}
		}
	}

	if !found {
		return Point{}, fmt.Errorf("%w: %v,%v within %vm", ErrUnresolved, c.Latitude, c.Longitude, radius)
	}
	return best, nil
}

// ResolveEdge returns the id of the routable edge closest to c.
func (r *Resolver) ResolveEdge(ctx context.Context, c geo.Coordinate, radius float32) (uint32, error) {
	p, err := r.Resolve(ctx, c, radius)
	if err != nil {
		return graph.NoEdge, err
	}
	return p.EdgeID, nil
}

func near(poly []geo.Coordinate, c geo.Coordinate, latMargin, lonMargin float64) bool {
	minLat, maxLat := math.Inf(1), math.Inf(-1)
	minLon, maxLon := math.Inf(1), math.Inf(-1)
	for _, p := range poly {
		minLat, maxLat = math.Min(minLat, float64(p.Latitude)), math.Max(maxLat, float64(p.Latitude))
		minLon, maxLon = math.Min(minLon, float64(p.Longitude)), math.Max(maxLon, float64(p.Longitude))
	}
	lat, lon := float64(c.Latitude), float64(c.Longitude)
	return lat >= minLat-latMargin && lat <= maxLat+latMargin &&
		lon >= minLon-lonMargin && lon <= maxLon+lonMargin
}

// project finds the closest point to c on poly and its offset.
func project(poly []geo.Coordinate, c geo.Coordinate) (Point, bool) {
	total := geo.PolylineLength(poly)
	best := Point{Distance: math.MaxFloat32}
	found := false

	var acc float32
	for i := 1; i < len(poly); i++ {
		a, b := poly[i-1], poly[i]
		proj, d := geo.ProjectOnSegment(c, a, b)
		if d < best.Distance {
			best.Location = proj
			best.Distance = d
			if total > 0 {
				best.Offset = min((acc+geo.Distance(a, proj))/total, 1)
			}
			found = true
		}
		acc += geo.Distance(a, b)
	}
	return best, found
}
