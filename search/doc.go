// Package search computes shortest routes over a graph.Graph.
//
// A route runs between two Points, locations snapped onto edges by a
// Resolver. Edge costs come from a weight.Handler, so the same graph can be
// searched with plain profile factors or with scores layered on top through
// weight.NewOverride.
//
// The search is a label-setting Dijkstra with lazy decrease-key: every
// relaxation pushes a new label and stale labels are skipped when popped.
// Searches never mutate the graph; a Dijkstra may be shared by any number
// of goroutines as long as nobody writes to the graph meanwhile.
package search
