// Package testutil provides testing utilities for roadnet.
//
// This package is intended for use in tests and benchmarks only.
// It generates seeded random road networks and computes exact shortest
// path weights to check search results against.
//
// # Random Networks
//
//	rng := testutil.NewRNG(seed)
//	g := rng.Grid(testutil.GridOptions{Rows: 20, Cols: 20, Profiles: 3})
//
// # Exact Search (Ground Truth)
//
//	weights := testutil.ExactWeights(g, handler, source)
package testutil
