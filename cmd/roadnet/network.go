package main

import (
	"fmt"
	"io"
	"os"

	"github.com/hupe1980/roadnet/codec"
	"github.com/hupe1980/roadnet/geo"
	"github.com/hupe1980/roadnet/graph"
	"github.com/hupe1980/roadnet/internal/conv"
	"github.com/hupe1980/roadnet/weight"
)

// networkFile is the JSON input of the build command. Vertex ids are
// positions in Vertices.
type networkFile struct {
	Vertices []geo.Coordinate `json:"vertices"`
	Edges    []networkEdge    `json:"edges"`
}

type networkEdge struct {
	From    uint32 `json:"from"`
	To      uint32 `json:"to"`
	Profile uint16 `json:"profile"`
	// Distance in metres. Computed from the geometry when zero.
	Distance float32          `json:"distance,omitempty"`
	Shape    []geo.Coordinate `json:"shape,omitempty"`
}

func readNetwork(path string) (*networkFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	var n networkFile
	if err := codec.Default.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &n, nil
}

// buildGraph turns n into a graph with one data word per edge.
func buildGraph(n *networkFile) (*graph.Graph, error) {
	g := graph.New(1,
		graph.WithVertexCapacity(len(n.Vertices)),
		graph.WithEdgeCapacity(len(n.Edges)),
	)
	for i, c := range n.Vertices {
		id, err := conv.IntToUint32(i)
		if err != nil {
			return nil, fmt.Errorf("vertex %d: %w", i, err)
		}
		if err := g.AddVertex(id, c.Latitude, c.Longitude); err != nil {
			return nil, fmt.Errorf("vertex %d: %w", id, err)
		}
	}

	for i, e := range n.Edges {
		distance := e.Distance
		if distance == 0 {
			from, ok := g.GetVertex(e.From)
			to, ok2 := g.GetVertex(e.To)
			if !ok || !ok2 {
				return nil, fmt.Errorf("edge %d: %w", i, graph.ErrOutOfRange)
			}
			points := make([]geo.Coordinate, 0, len(e.Shape)+2)
			points = append(points, from)
			points = append(points, e.Shape...)
			points = append(points, to)
			distance = geo.PolylineLength(points)
		}

		data, err := weight.EncodeEdgeData(distance, e.Profile)
		if err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
		if _, err := g.AddEdge(e.From, e.To, []uint32{data}, e.Shape); err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
	}
	g.Trim()
	return g, nil
}
