package search

import (
	"slices"

	"github.com/hupe1980/roadnet/geo"
	"github.com/hupe1980/roadnet/graph"
)

// path rebuilds the route found for candidate c.
func (d *Dijkstra) path(st *state, src, dst endpoint, c candidate) *Path {
	p := &Path{Weight: c.weight, Distance: c.distance}

	if c.direct {
		p.Edges = []uint32{src.point.EdgeID}
		p.Shape = subDirected(src.edge.poly, src.point.Offset, dst.point.Offset)
		return p
	}

	var chain []label
	for i := c.label; i >= 0; i = st.labels[i].prev {
		chain = append(chain, st.labels[i])
	}
	slices.Reverse(chain)
	root, last := chain[0].vertex, chain[len(chain)-1].vertex

	if src.edge != nil {
		p.Edges = append(p.Edges, src.point.EdgeID)
		end := float32(0)
		if root == src.edge.edge.To {
			end = 1
		}
		p.Shape = subDirected(src.edge.poly, src.point.Offset, end)
	}

	for i, l := range chain {
		p.Vertices = append(p.Vertices, l.vertex)
		if l.edge != graph.NoEdge {
			p.Edges = append(p.Edges, l.edge)
			if e, ok := d.g.GetEdge(l.edge); ok {
				shape := e.Shape
				if e.From != chain[i-1].vertex {
					slices.Reverse(shape)
				}
				p.Shape = appendShape(p.Shape, shape...)
			}
		}
		if coord, ok := d.g.GetVertex(l.vertex); ok {
			p.Shape = appendShape(p.Shape, coord)
		}
	}

	if dst.edge != nil {
		p.Edges = append(p.Edges, dst.point.EdgeID)
		start := float32(0)
		if last == dst.edge.edge.To {
			start = 1
		}
		p.Shape = appendShape(p.Shape, subDirected(dst.edge.poly, start, dst.point.Offset)...)
	}

	if p.Shape == nil {
		p.Shape = []geo.Coordinate{}
	}
	return p
}
