package graph

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/roadnet/internal/conv"
	"github.com/hupe1980/roadnet/persistence"
)

// Binary layout, all little-endian:
//
//	header        total size of sections 1-4 (u64), vertex count (u64), edge slots (u64)
//	vertices      V x u32, first edge of each chain
//	edges         E x 4 u32, from, to, next from, next to
//	edge data     E x D u32
//	coordinates   V x 2 f32
//	shape header  coordinate stream size in bytes (u64), coordinate count (u64)
//	shape index   E x 2 u32, pointer and count
//	shape stream  max(1, C) x 2 f32
//
// The total in the header lets a reader derive D without knowing it upfront.
const (
	headerSize      = 24
	shapeHeaderSize = 16

	// maxEdgeDataSize bounds the edge data size accepted from a stream.
	maxEdgeDataSize = 1 << 16
)

func (g *Graph) graphSize() uint64 {
	v := uint64(g.vertexCount)
	e := uint64(len(g.edges) / edgeSize)
	return headerSize + v*4 + e*edgeSize*4 + e*uint64(g.edgeDataSize)*4
}

// SerializedSize returns the number of bytes Serialize writes.
func (g *Graph) SerializedSize() int64 {
	e := uint64(len(g.edges) / edgeSize)
	c := uint64(max(g.shapes.count(), 1))
	return int64(g.graphSize() + uint64(g.vertexCount)*8 + shapeHeaderSize + e*8 + c*8)
}

// Serialize writes the graph to w and returns the number of bytes written.
// It does not close w.
func (g *Graph) Serialize(w io.Writer) (int64, error) {
	bw := persistence.NewWriter(w)
	v := int(g.vertexCount)
	e := len(g.edges) / edgeSize

	if err := bw.WriteUint64(g.graphSize()); err != nil {
		return bw.Written(), err
	}
	if err := bw.WriteUint64(uint64(v)); err != nil {
		return bw.Written(), err
	}
	if err := bw.WriteUint64(uint64(e)); err != nil {
		return bw.Written(), err
	}
	if err := bw.WriteUint32Slice(g.vertices[:v]); err != nil {
		return bw.Written(), err
	}
	if err := bw.WriteUint32Slice(g.edges); err != nil {
		return bw.Written(), err
	}
	if err := bw.WriteUint32Slice(g.edgeData); err != nil {
		return bw.Written(), err
	}
	if err := bw.WriteFloat32Slice(g.coordinates[:v*2]); err != nil {
		return bw.Written(), err
	}
	if err := g.writeShapes(bw, e); err != nil {
		return bw.Written(), err
	}
	return bw.Written(), nil
}

func (g *Graph) writeShapes(bw *persistence.Writer, slots int) error {
	count := g.shapes.count()

	if err := bw.WriteUint64(uint64(max(count, 1)) * 8); err != nil {
		return err
	}
	if err := bw.WriteUint64(uint64(count)); err != nil {
		return err
	}
	if err := bw.WriteUint32Slice(g.shapes.index[:slots*2]); err != nil {
		return err
	}
	if count == 0 {
		return bw.WriteZeros(8)
	}
	return bw.WriteFloat32Slice(g.shapes.coordinates)
}

// Deserialize reads a graph from r. It does not close r.
//
// When r is a *bytes.Buffer and copy is false, the graph views the buffer's
// memory instead of copying it; the buffer must then stay untouched while the
// graph is in use. The first mutation of such a graph copies its storage.
func Deserialize(r io.Reader, copy bool, opts ...Option) (*Graph, error) {
	if buf, ok := r.(*bytes.Buffer); ok && !copy {
		g, n, err := DeserializeBytes(buf.Bytes(), false, opts...)
		if err != nil {
			return nil, err
		}
		buf.Next(int(n))
		return g, nil
	}
	return decode(persistence.NewReader(r), false, opts)
}

// DeserializeBytes reads a graph from b and returns it with the number of
// bytes consumed. With copy false the graph views b, which suits
// memory-mapped files; b must outlive the graph or its first mutation.
func DeserializeBytes(b []byte, copy bool, opts ...Option) (*Graph, int64, error) {
	sr := persistence.NewSliceReader(b, copy)
	g, err := decode(sr, !copy, opts)
	if err != nil {
		return nil, 0, err
	}
	return g, sr.Offset(), nil
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorrupt, fmt.Sprintf(format, args...))
}

func decode(r persistence.SectionReader, borrowed bool, opts []Option) (*Graph, error) {
	o := applyOptions(opts)

	var header [3]uint64
	for i := range header {
		v, err := r.ReadUint64()
		if err != nil {
			return nil, corrupt("header: %v", err)
		}
		header[i] = v
	}
	total, v, e := header[0], header[1], header[2]

	if v >= math.MaxUint32 {
		return nil, corrupt("vertex count %d", v)
	}
	if e >= uint64(NoEdge) {
		return nil, corrupt("edge slots %d", e)
	}
	fixed := headerSize + v*4 + e*edgeSize*4
	if total < fixed {
		return nil, corrupt("total size %d below %d", total, fixed)
	}

	d := uint64(o.edgeDataSize)
	if rest := total - fixed; e > 0 {
		if rest%(e*4) != 0 {
			return nil, corrupt("edge data of %d bytes for %d edges", rest, e)
		}
		d = rest / (e * 4)
	} else if rest != 0 {
		return nil, corrupt("edge data of %d bytes without edges", rest)
	}
	if d > maxEdgeDataSize {
		return nil, corrupt("edge data size %d", d)
	}

	g := &Graph{
		edgeDataSize: int(d),
		shapes:       &shapeStore{},
		removed:      roaring.New(),
		vertexCount:  uint32(v),
		borrowed:     borrowed,
	}

	var err error
	if g.vertices, err = r.ReadUint32Slice(int(v)); err != nil {
		return nil, corrupt("vertices: %v", err)
	}
	if g.edges, err = r.ReadUint32Slice(int(e) * edgeSize); err != nil {
		return nil, corrupt("edges: %v", err)
	}
	if g.edgeData, err = r.ReadUint32Slice(int(e * d)); err != nil {
		return nil, corrupt("edge data: %v", err)
	}
	if g.coordinates, err = r.ReadFloat32Slice(int(v) * 2); err != nil {
		return nil, corrupt("coordinates: %v", err)
	}

	streamSize, err := r.ReadUint64()
	if err != nil {
		return nil, corrupt("shape header: %v", err)
	}
	count, err := r.ReadUint64()
	if err != nil {
		return nil, corrupt("shape header: %v", err)
	}
	if count >= math.MaxUint32 || streamSize != max(count, 1)*8 {
		return nil, corrupt("shape stream of %d bytes for %d coordinates", streamSize, count)
	}
	if g.shapes.index, err = r.ReadUint32Slice(int(e) * 2); err != nil {
		return nil, corrupt("shape index: %v", err)
	}
	n, err := conv.Uint64ToInt(count * 2)
	if err != nil {
		return nil, corrupt("shape stream: %v", err)
	}
	if g.shapes.coordinates, err = r.ReadFloat32Slice(n); err != nil {
		return nil, corrupt("shape stream: %v", err)
	}
	if count == 0 {
		if err := r.Skip(8); err != nil {
			return nil, corrupt("shape stream: %v", err)
		}
	}

	if err := g.index(); err != nil {
		return nil, err
	}
	return g, nil
}

// index checks the structure of a decoded graph and rebuilds the live edge
// count and the removed slot set.
func (g *Graph) index() error {
	slots := uint32(len(g.edges) / edgeSize)

	for v, head := range g.vertices {
		if head != NoEdge && head >= slots {
			return corrupt("vertex %d points at edge %d of %d", v, head, slots)
		}
	}

	shapeCount := uint64(g.shapes.count())
	for id := range slots {
		base := int(id) * edgeSize
		from, to := g.edges[base+fromOffset], g.edges[base+toOffset]
		if from == NoVertex && to == NoVertex {
			g.removed.Add(id)
			continue
		}
		if from >= g.vertexCount || to >= g.vertexCount || from == to {
			return corrupt("edge %d connects %d and %d", id, from, to)
		}
		for _, next := range g.edges[base+nextFromOffset : base+nextToOffset+1] {
			if next != NoEdge && next >= slots {
				return corrupt("edge %d links to edge %d of %d", id, next, slots)
			}
		}
		ptr, n := uint64(g.shapes.index[int(id)*2]), uint64(g.shapes.index[int(id)*2+1])
		if n > 0 && ptr+n > shapeCount {
			return corrupt("edge %d shape [%d,%d) beyond %d coordinates", id, ptr, ptr+n, shapeCount)
		}
		g.edgeCount++
	}

	for v, head := range g.vertices {
		if err := g.checkChain(uint32(v), head, slots); err != nil {
			return err
		}
	}
	return nil
}

// checkChain walks the edge chain of v. Every edge on it must touch v, and
// the chain cannot be longer than the number of slots without looping.
func (g *Graph) checkChain(v, head, slots uint32) error {
	steps := uint32(0)
	for id := head; id != NoEdge; steps++ {
		if steps >= slots {
			return corrupt("edge chain of vertex %d loops", v)
		}
		base := int(id) * edgeSize
		switch v {
		case g.edges[base+fromOffset]:
			id = g.edges[base+nextFromOffset]
		case g.edges[base+toOffset]:
			id = g.edges[base+nextToOffset]
		default:
			return corrupt("edge %d on the chain of vertex %d does not touch it", id, v)
		}
	}
	return nil
}
