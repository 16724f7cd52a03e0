// Package scores holds per-edge safety scores that replace profile factors
// during routing.
//
// Scores arrive as raw samples, a coordinate and a score reported by a user
// or sensor. Process snaps each sample to the nearest routable edge and
// keeps the first score seen for every edge. The processed table is keyed by
// edge id and implements weight.ScoreSource, so it plugs straight into
// weight.NewOverride.
//
// Edge ids are only stable for a given network snapshot. A table processed
// against one snapshot must not be used with another.
package scores
