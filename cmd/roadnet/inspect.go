package main

import (
	"github.com/hupe1980/roadnet"
	"github.com/hupe1980/roadnet/weight"
)

// profileCounts counts the live edges per profile id. Each edge is counted
// from its stored from vertex only.
func profileCounts(r *roadnet.Router) map[uint16]int {
	g := r.Graph()
	counts := make(map[uint16]int)
	e := g.EdgeEnumerator()
	for v := range g.VertexCount() {
		if !e.MoveTo(v) {
			continue
		}
		for e.MoveNext() {
			if e.DataInverted() {
				continue
			}
			_, p := weight.DecodeEdgeData(e.Data0())
			counts[p]++
		}
	}
	return counts
}
