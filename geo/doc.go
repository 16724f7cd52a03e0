// Package geo provides the coordinate type shared by the graph store, the
// weight layer and point resolution, together with the few spherical
// helpers routing needs (haversine distance, closest point on a segment).
package geo
