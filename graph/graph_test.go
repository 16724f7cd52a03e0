package graph

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/roadnet/geo"
)

func newTestGraph(t *testing.T, vertices int) *Graph {
	t.Helper()
	g := New(1, WithVertexCapacity(4), WithEdgeCapacity(4))
	for v := range vertices {
		require.NoError(t, g.AddVertex(uint32(v), float32(v), float32(v)))
	}
	return g
}

func addEdge(t *testing.T, g *Graph, from, to, data uint32) uint32 {
	t.Helper()
	id, err := g.AddEdge(from, to, []uint32{data}, nil)
	require.NoError(t, err)
	return id
}

// edgesAt returns the edges at v keyed by their opposite vertex.
func edgesAt(t *testing.T, g *Graph, v uint32) map[uint32]Edge {
	t.Helper()
	e, err := g.EdgeEnumeratorAt(v)
	require.NoError(t, err)

	out := make(map[uint32]Edge)
	for edge := range e.All() {
		_, dup := out[edge.To]
		require.False(t, dup, "duplicate edge %d->%d", v, edge.To)
		out[edge.To] = edge
	}
	require.Equal(t, e.Count(), len(out))
	return out
}

func TestAddEdge(t *testing.T) {
	g := newTestGraph(t, 2)

	id1 := addEdge(t, g, 0, 1, 10)
	assert.Equal(t, uint32(0), id1)

	at0 := edgesAt(t, g, 0)
	require.Len(t, at0, 1)
	assert.Equal(t, Edge{ID: id1, From: 0, To: 1, Data: []uint32{10}}, at0[1])

	at1 := edgesAt(t, g, 1)
	require.Len(t, at1, 1)
	assert.Equal(t, Edge{ID: id1, From: 1, To: 0, Data: []uint32{10}, DataInverted: true}, at1[0])

	require.NoError(t, g.AddVertex(2, 2, 2))
	id2 := addEdge(t, g, 1, 2, 20)

	at1 = edgesAt(t, g, 1)
	require.Len(t, at1, 2)
	assert.True(t, at1[0].DataInverted)
	assert.Equal(t, id1, at1[0].ID)
	assert.False(t, at1[2].DataInverted)
	assert.Equal(t, id2, at1[2].ID)
	assert.Equal(t, []uint32{20}, at1[2].Data)

	at2 := edgesAt(t, g, 2)
	require.Len(t, at2, 1)
	assert.Equal(t, Edge{ID: id2, From: 2, To: 1, Data: []uint32{20}, DataInverted: true}, at2[1])

	require.NoError(t, g.AddVertex(3, 3, 3))
	id3 := addEdge(t, g, 1, 3, 30)
	assert.Len(t, edgesAt(t, g, 1), 3)

	t.Run("ReplaceReversed", func(t *testing.T) {
		id4, err := g.AddEdge(3, 1, []uint32{30}, nil)
		require.NoError(t, err)
		assert.NotEqual(t, id3, id4)
		assert.Equal(t, uint32(3), g.EdgeCount())

		_, ok := g.GetEdge(id3)
		assert.False(t, ok)

		at1 := edgesAt(t, g, 1)
		require.Len(t, at1, 3)
		assert.Equal(t, id4, at1[3].ID)
		assert.True(t, at1[3].DataInverted)

		at3 := edgesAt(t, g, 3)
		require.Len(t, at3, 1)
		assert.Equal(t, id4, at3[1].ID)
		assert.False(t, at3[1].DataInverted)
	})

	t.Run("ConnectIslands", func(t *testing.T) {
		require.NoError(t, g.AddVertex(4, 4, 4))
		require.NoError(t, g.AddVertex(5, 5, 5))
		id5 := addEdge(t, g, 4, 5, 40)
		id6 := addEdge(t, g, 5, 3, 50)

		at3 := edgesAt(t, g, 3)
		require.Len(t, at3, 2)
		assert.Equal(t, id6, at3[5].ID)
		assert.True(t, at3[5].DataInverted)
		assert.Equal(t, []uint32{50}, at3[5].Data)

		at5 := edgesAt(t, g, 5)
		require.Len(t, at5, 2)
		assert.Equal(t, id5, at5[4].ID)
		assert.True(t, at5[4].DataInverted)
		assert.Equal(t, id6, at5[3].ID)
		assert.False(t, at5[3].DataInverted)

		assert.Len(t, edgesAt(t, g, 0), 1)
		assert.Len(t, edgesAt(t, g, 1), 3)
		assert.Len(t, edgesAt(t, g, 2), 1)
	})
}

func TestAddEdgeErrors(t *testing.T) {
	g := newTestGraph(t, 2)

	_, err := g.AddEdge(0, 2, []uint32{1}, nil)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = g.AddEdge(5, 0, []uint32{1}, nil)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = g.AddEdge(1, 1, []uint32{1}, nil)
	assert.ErrorIs(t, err, ErrSelfLoop)

	_, err = g.AddEdge(0, 1, []uint32{1, 2}, nil)
	assert.ErrorIs(t, err, ErrDataSize)

	_, err = g.AddEdge(0, 1, nil, nil)
	assert.ErrorIs(t, err, ErrDataSize)

	assert.Equal(t, uint32(0), g.EdgeCount())
	assert.Equal(t, uint32(0), g.EdgeSlots())
}

func TestAddVertex(t *testing.T) {
	g := newTestGraph(t, 3)

	for v := range uint32(3) {
		c, ok := g.GetVertex(v)
		require.True(t, ok)
		assert.Equal(t, geo.Coordinate{Latitude: float32(v), Longitude: float32(v)}, c)
	}

	_, ok := g.GetVertex(10000)
	assert.False(t, ok)

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, g.AddVertex(1, 51.2, 4.4))
		c, ok := g.GetVertex(1)
		require.True(t, ok)
		assert.Equal(t, geo.Coordinate{Latitude: 51.2, Longitude: 4.4}, c)
		assert.Equal(t, uint32(3), g.VertexCount())
	})

	t.Run("SparseGrowth", func(t *testing.T) {
		require.NoError(t, g.AddVertex(100, 1, 1))
		assert.Equal(t, uint32(101), g.VertexCount())

		_, ok := g.GetVertex(50)
		assert.False(t, ok)
		_, ok = g.GetVertex(100)
		assert.True(t, ok)
	})

	t.Run("Reserved", func(t *testing.T) {
		assert.ErrorIs(t, g.AddVertex(NoVertex, 0, 0), ErrOutOfRange)
		assert.ErrorIs(t, g.AddVertex(7, math.MaxFloat32, 0), ErrInvalidCoordinate)
		assert.Equal(t, uint32(101), g.VertexCount())

		require.NoError(t, g.AddVertex(7, -math.MaxFloat32, math.MaxFloat32))
		_, ok := g.GetVertex(7)
		assert.True(t, ok)
	})
}

func TestEdgeEnumerator(t *testing.T) {
	g := newTestGraph(t, 6)
	e1 := addEdge(t, g, 0, 1, 10)
	e2 := addEdge(t, g, 1, 2, 20)
	e3 := addEdge(t, g, 1, 3, 30)
	e4 := addEdge(t, g, 3, 4, 40)
	e5 := addEdge(t, g, 4, 1, 50)
	e6 := addEdge(t, g, 5, 1, 60)

	edges := g.EdgeEnumerator()
	assert.False(t, edges.HasData())
	assert.False(t, edges.MoveNext())

	require.True(t, edges.MoveTo(0))
	assert.True(t, edges.HasData())
	assert.Equal(t, 1, edges.Count())
	require.True(t, edges.MoveNext())
	assert.Equal(t, e1, edges.ID())
	assert.Equal(t, uint32(0), edges.From())
	assert.Equal(t, uint32(1), edges.To())
	assert.Equal(t, uint32(10), edges.Data0())
	assert.False(t, edges.MoveNext())

	tests := []struct {
		vertex uint32
		want   map[uint32]Edge
	}{
		{1, map[uint32]Edge{
			0: {ID: e1, From: 1, To: 0, Data: []uint32{10}, DataInverted: true},
			2: {ID: e2, From: 1, To: 2, Data: []uint32{20}},
			3: {ID: e3, From: 1, To: 3, Data: []uint32{30}},
			4: {ID: e5, From: 1, To: 4, Data: []uint32{50}, DataInverted: true},
			5: {ID: e6, From: 1, To: 5, Data: []uint32{60}, DataInverted: true},
		}},
		{2, map[uint32]Edge{
			1: {ID: e2, From: 2, To: 1, Data: []uint32{20}, DataInverted: true},
		}},
		{3, map[uint32]Edge{
			1: {ID: e3, From: 3, To: 1, Data: []uint32{30}, DataInverted: true},
			4: {ID: e4, From: 3, To: 4, Data: []uint32{40}},
		}},
		{4, map[uint32]Edge{
			3: {ID: e4, From: 4, To: 3, Data: []uint32{40}, DataInverted: true},
			1: {ID: e5, From: 4, To: 1, Data: []uint32{50}},
		}},
		{5, map[uint32]Edge{
			1: {ID: e6, From: 5, To: 1, Data: []uint32{60}},
		}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, edgesAt(t, g, tt.vertex), "vertex %d", tt.vertex)
	}

	t.Run("Reset", func(t *testing.T) {
		require.True(t, edges.MoveTo(1))
		n := 0
		for edges.MoveNext() {
			n++
		}
		edges.Reset()
		for edges.MoveNext() {
			n--
		}
		assert.Equal(t, 0, n)
	})

	t.Run("OutOfRange", func(t *testing.T) {
		_, err := g.EdgeEnumeratorAt(6)
		assert.ErrorIs(t, err, ErrOutOfRange)
		assert.False(t, edges.MoveTo(6))
		assert.False(t, edges.HasData())
	})

	t.Run("VertexWithoutCoordinate", func(t *testing.T) {
		require.NoError(t, g.AddVertex(8, 0, 0))
		e, err := g.EdgeEnumeratorAt(7)
		require.NoError(t, err)
		assert.False(t, e.HasData())
		assert.False(t, e.MoveNext())
	})

	t.Run("AllStopsEarly", func(t *testing.T) {
		require.True(t, edges.MoveTo(1))
		n := 0
		for range edges.All() {
			n++
			if n == 2 {
				break
			}
		}
		assert.Equal(t, 2, n)
	})
}

func TestEdgeShape(t *testing.T) {
	g := newTestGraph(t, 2)
	shape := []geo.Coordinate{{Latitude: 1, Longitude: 1}, {Latitude: 2, Longitude: 2}}
	id, err := g.AddEdge(0, 1, []uint32{1}, shape)
	require.NoError(t, err)

	assert.Equal(t, shape, edgesAt(t, g, 0)[1].Shape)
	assert.Equal(t, []geo.Coordinate{{Latitude: 2, Longitude: 2}, {Latitude: 1, Longitude: 1}}, edgesAt(t, g, 1)[0].Shape)

	edge, ok := g.GetEdge(id)
	require.True(t, ok)
	assert.Equal(t, shape, edge.Shape)

	// shapes are copies
	edge.Shape[0].Latitude = 9
	edge, _ = g.GetEdge(id)
	assert.Equal(t, float32(1), edge.Shape[0].Latitude)
}

func TestRemoveEdge(t *testing.T) {
	t.Run("Between", func(t *testing.T) {
		g := newTestGraph(t, 2)
		addEdge(t, g, 0, 1, 1)
		assert.True(t, g.RemoveEdgeBetween(1, 0))
		assert.False(t, g.RemoveEdgeBetween(0, 1))
		assert.False(t, g.RemoveEdgeBetween(0, 9))
		assert.Equal(t, uint32(0), g.EdgeCount())
	})

	t.Run("ByID", func(t *testing.T) {
		g := newTestGraph(t, 2)
		id := addEdge(t, g, 0, 1, 10)
		assert.True(t, g.RemoveEdge(id))
		assert.False(t, g.RemoveEdge(id))
		assert.False(t, g.RemoveEdge(42))
		assert.Empty(t, edgesAt(t, g, 0))
		assert.Empty(t, edgesAt(t, g, 1))
	})

	t.Run("MiddleOfChain", func(t *testing.T) {
		g := newTestGraph(t, 4)
		addEdge(t, g, 0, 1, 1)
		mid := addEdge(t, g, 0, 2, 2)
		addEdge(t, g, 3, 0, 3)

		require.True(t, g.RemoveEdge(mid))
		at0 := edgesAt(t, g, 0)
		assert.Len(t, at0, 2)
		assert.Contains(t, at0, uint32(1))
		assert.Contains(t, at0, uint32(3))
		assert.Empty(t, edgesAt(t, g, 2))
	})
}

func TestRemoveEdges(t *testing.T) {
	g := newTestGraph(t, 2)
	addEdge(t, g, 0, 1, 10)
	assert.Equal(t, 1, g.RemoveEdges(0))
	assert.Equal(t, 0, g.RemoveEdges(1))
	assert.Empty(t, edgesAt(t, g, 0))
	assert.Empty(t, edgesAt(t, g, 1))

	g = newTestGraph(t, 3)
	addEdge(t, g, 0, 1, 10)
	addEdge(t, g, 0, 2, 20)
	assert.Equal(t, 2, g.RemoveEdges(0))
	for v := range uint32(3) {
		assert.Empty(t, edgesAt(t, g, v))
	}

	g = newTestGraph(t, 3)
	addEdge(t, g, 0, 1, 10)
	addEdge(t, g, 0, 2, 20)
	addEdge(t, g, 1, 2, 30)
	assert.Equal(t, 2, g.RemoveEdges(0))
	assert.Empty(t, edgesAt(t, g, 0))
	assert.Len(t, edgesAt(t, g, 1), 1)
	assert.Len(t, edgesAt(t, g, 2), 1)
	assert.Equal(t, 0, g.RemoveEdges(99))
}

func TestVertexCountAndTrim(t *testing.T) {
	g := newTestGraph(t, 2)
	addEdge(t, g, 0, 1, 10)
	g.Trim()
	assert.Equal(t, uint32(2), g.VertexCount())
	assert.Equal(t, uint32(1), g.EdgeCount())
	assert.Len(t, g.vertices, 2)
	assert.Equal(t, len(g.edges), cap(g.edges))

	g = newTestGraph(t, 2)
	require.NoError(t, g.AddVertex(11001, 0, 0))
	addEdge(t, g, 0, 1, 10)
	addEdge(t, g, 0, 11001, 10)
	g.Trim()
	assert.Equal(t, uint32(11002), g.VertexCount())
	assert.Equal(t, uint32(2), g.EdgeCount())
	assert.Len(t, g.vertices, 11002)
	assert.Len(t, edgesAt(t, g, 11001), 1)

	g = New(1)
	g.Trim()
	assert.Equal(t, uint32(0), g.VertexCount())
	assert.Len(t, g.vertices, 1)
}

func TestEdgeCount(t *testing.T) {
	g := newTestGraph(t, 2)
	addEdge(t, g, 0, 1, 10)
	assert.Equal(t, uint32(1), g.EdgeCount())

	g = newTestGraph(t, 2)
	require.NoError(t, g.AddVertex(11001, 0, 0))
	addEdge(t, g, 0, 1, 10)
	addEdge(t, g, 0, 11001, 10)
	assert.Equal(t, uint32(2), g.EdgeCount())

	addEdge(t, g, 0, 11001, 20)
	assert.Equal(t, uint32(2), g.EdgeCount())
	assert.Equal(t, uint32(3), g.EdgeSlots())

	g.RemoveEdgeBetween(0, 11001)
	assert.Equal(t, uint32(1), g.EdgeCount())
	g.RemoveEdgeBetween(0, 1)
	assert.Equal(t, uint32(0), g.EdgeCount())
}

func TestCompress(t *testing.T) {
	g := newTestGraph(t, 3)
	shape := []geo.Coordinate{{Latitude: 1, Longitude: 1}}
	id, err := g.AddEdge(0, 1, []uint32{10}, shape)
	require.NoError(t, err)

	g.Compress()
	edge, ok := g.GetEdge(id)
	require.True(t, ok)
	assert.Equal(t, Edge{ID: id, From: 0, To: 1, Data: []uint32{10}, Shape: shape}, edge)

	t.Run("DropsStaleShapes", func(t *testing.T) {
		replaced, err := g.AddEdge(0, 1, []uint32{11}, []geo.Coordinate{{Latitude: 2, Longitude: 2}, {Latitude: 3, Longitude: 3}})
		require.NoError(t, err)
		kept, err := g.AddEdge(1, 2, []uint32{12}, []geo.Coordinate{{Latitude: 4, Longitude: 4}})
		require.NoError(t, err)
		_, err = g.AddEdge(1, 0, []uint32{13}, nil)
		require.NoError(t, err)
		assert.Equal(t, 4, g.shapes.count())

		g.Compress()
		assert.Equal(t, 1, g.shapes.count())
		_, ok := g.GetEdge(replaced)
		assert.False(t, ok)

		edge, ok := g.GetEdge(kept)
		require.True(t, ok)
		assert.Equal(t, []geo.Coordinate{{Latitude: 4, Longitude: 4}}, edge.Shape)
	})

	t.Run("KeepsLiveIDs", func(t *testing.T) {
		g := newTestGraph(t, 4)
		a := addEdge(t, g, 0, 1, 1)
		b := addEdge(t, g, 1, 2, 2)
		c := addEdge(t, g, 2, 3, 3)
		require.True(t, g.RemoveEdge(a))
		require.True(t, g.RemoveEdge(c))

		g.Compress()
		assert.Equal(t, uint32(2), g.EdgeSlots())
		edge, ok := g.GetEdge(b)
		require.True(t, ok)
		assert.Equal(t, []uint32{2}, edge.Data)

		// the released trailing slot is handed out again
		d := addEdge(t, g, 3, 0, 4)
		assert.Equal(t, c, d)
		assert.Equal(t, uint32(2), g.EdgeCount())
	})
}

func TestSwitch(t *testing.T) {
	t.Run("Pair", func(t *testing.T) {
		g := newTestGraph(t, 2)
		addEdge(t, g, 0, 1, 1)
		require.NoError(t, g.Switch(0, 1))

		at0 := edgesAt(t, g, 0)
		require.Len(t, at0, 1)
		assert.True(t, at0[1].DataInverted)
		assert.Equal(t, []uint32{1}, at0[1].Data)

		at1 := edgesAt(t, g, 1)
		require.Len(t, at1, 1)
		assert.False(t, at1[0].DataInverted)

		c0, _ := g.GetVertex(0)
		c1, _ := g.GetVertex(1)
		assert.Equal(t, geo.Coordinate{Latitude: 1, Longitude: 1}, c0)
		assert.Equal(t, geo.Coordinate{Latitude: 0, Longitude: 0}, c1)
	})

	t.Run("Star", func(t *testing.T) {
		g := newTestGraph(t, 6)
		for i, pair := range [][2]uint32{{0, 1}, {0, 2}, {0, 3}, {0, 4}, {5, 1}, {5, 2}, {5, 3}, {5, 4}} {
			addEdge(t, g, pair[0], pair[1], uint32(i+1))
		}
		require.NoError(t, g.Switch(0, 1))

		at0 := edgesAt(t, g, 0)
		require.Len(t, at0, 2)
		assert.True(t, at0[1].DataInverted)
		assert.Equal(t, []uint32{1}, at0[1].Data)
		assert.True(t, at0[5].DataInverted)
		assert.Equal(t, []uint32{5}, at0[5].Data)

		at1 := edgesAt(t, g, 1)
		require.Len(t, at1, 4)
		for to, data := range map[uint32]uint32{0: 1, 2: 2, 3: 3, 4: 4} {
			assert.Equal(t, []uint32{data}, at1[to].Data)
			assert.False(t, at1[to].DataInverted)
		}

		at2 := edgesAt(t, g, 2)
		require.Len(t, at2, 2)
		assert.True(t, at2[1].DataInverted)
		assert.Equal(t, []uint32{2}, at2[1].Data)

		at5 := edgesAt(t, g, 5)
		require.Len(t, at5, 4)
		assert.Equal(t, []uint32{5}, at5[0].Data)
	})

	t.Run("SelfInverse", func(t *testing.T) {
		g := newTestGraph(t, 4)
		addEdge(t, g, 0, 1, 1)
		addEdge(t, g, 1, 2, 2)
		addEdge(t, g, 2, 0, 3)
		addEdge(t, g, 3, 2, 4)

		before := make([]map[uint32]Edge, 4)
		for v := range uint32(4) {
			before[v] = edgesAt(t, g, v)
		}

		require.NoError(t, g.Switch(0, 2))
		require.NoError(t, g.Switch(0, 2))
		for v := range uint32(4) {
			assert.Equal(t, before[v], edgesAt(t, g, v), "vertex %d", v)
		}
	})

	t.Run("Errors", func(t *testing.T) {
		g := newTestGraph(t, 2)
		assert.ErrorIs(t, g.Switch(0, 2), ErrOutOfRange)
		assert.NoError(t, g.Switch(1, 1))
	})
}

func TestScenarioFourVertices(t *testing.T) {
	g := New(1)
	for v := range uint32(4) {
		require.NoError(t, g.AddVertex(v, 51+float32(v)*0.001, 4))
	}
	e01 := addEdge(t, g, 0, 1, 1)
	e12 := addEdge(t, g, 1, 2, 2)
	e23 := addEdge(t, g, 2, 3, 3)
	e30 := addEdge(t, g, 3, 0, 4)

	assert.Equal(t, uint32(4), g.VertexCount())
	assert.Equal(t, uint32(4), g.EdgeCount())

	at0 := edgesAt(t, g, 0)
	require.Len(t, at0, 2)
	assert.Equal(t, e01, at0[1].ID)
	assert.False(t, at0[1].DataInverted)
	assert.Equal(t, e30, at0[3].ID)
	assert.True(t, at0[3].DataInverted)

	require.True(t, g.RemoveEdgeBetween(1, 2))
	_, ok := g.GetEdge(e12)
	assert.False(t, ok)
	assert.Len(t, edgesAt(t, g, 1), 1)
	assert.Len(t, edgesAt(t, g, 2), 1)
	assert.Equal(t, e23, edgesAt(t, g, 2)[3].ID)
}
