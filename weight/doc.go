// Package weight computes edge traversal costs for search algorithms.
//
// Searches never interpret edge data themselves; they call a Handler. The
// Default handler multiplies an edge's distance by a per-profile factor.
// Override decorates any Handler with an edge-keyed score lookup that
// replaces the factor where a score exists and is transparent elsewhere.
package weight
