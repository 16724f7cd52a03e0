// Package graph implements a compact geometric graph for road networks.
//
// Vertices are dense uint32 ids carrying a coordinate. Edges connect two
// distinct vertices, carry a fixed number of uint32 data words and an
// optional shape. Adjacency is threaded through the edge array itself: every
// edge stores, next to its endpoints, the id of the next edge in each
// endpoint's chain, so the whole structure lives in a handful of flat
// slices that serialize as raw memory and can be viewed in place from a
// memory-mapped file.
//
// An edge is stored once but is visible from both endpoints. When it is
// enumerated from its to vertex, the enumerator reports DataInverted so the
// caller can interpret direction-dependent data.
//
// A Graph supports a single writer. Any number of EdgeEnumerators may read
// concurrently as long as no mutation runs at the same time.
package graph
