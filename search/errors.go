package search

import "errors"

var (
	// ErrNoRoute is returned when the target cannot be reached from the source
	// within the configured limits.
	ErrNoRoute = errors.New("search: no route")
	// ErrUnresolved is returned when no routable edge lies within the search
	// radius of a coordinate.
	ErrUnresolved = errors.New("search: no edge within radius")
	// ErrNoEdgeData is returned for graphs whose edges carry no data word to
	// decode distance and profile from.
	ErrNoEdgeData = errors.New("search: graph has no edge data")
	// ErrInvalidPoint is returned for a point on a missing edge or with an
	// offset outside [0, 1].
	ErrInvalidPoint = errors.New("search: invalid point")
)
