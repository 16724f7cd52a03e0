package roadnet

import (
	"errors"
	"fmt"

	"github.com/hupe1980/roadnet/blobstore"
	"github.com/hupe1980/roadnet/graph"
	"github.com/hupe1980/roadnet/persistence"
	"github.com/hupe1980/roadnet/search"
)

var (
	// ErrNotFound is returned when a network snapshot or score table does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNoRoute is returned when the target cannot be reached from the source.
	ErrNoRoute = errors.New("no route")

	// ErrUnresolved is returned when a coordinate is too far from any routable road.
	ErrUnresolved = errors.New("coordinate not on network")

	// ErrInvalidArgument is returned for vertex ids or points the network does not contain.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrClosed is returned by a Router after Close.
	ErrClosed = errors.New("router closed")

	// ErrNoScores is returned by score operations on a Router without a score table.
	ErrNoScores = errors.New("router has no score table")
)

// ErrCorrupt indicates a network snapshot that failed validation.
//
// The underlying cause is available via errors.Unwrap.
type ErrCorrupt struct {
	Name  string
	cause error
}

func (e *ErrCorrupt) Error() string {
	return fmt.Sprintf("corrupt network snapshot %q: %v", e.Name, e.cause)
}

func (e *ErrCorrupt) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, blobstore.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, search.ErrNoRoute):
		return fmt.Errorf("%w: %w", ErrNoRoute, err)
	case errors.Is(err, search.ErrUnresolved):
		return fmt.Errorf("%w: %w", ErrUnresolved, err)
	case errors.Is(err, graph.ErrOutOfRange), errors.Is(err, search.ErrInvalidPoint):
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return err
}

// corruptError wraps validation failures of a snapshot named name.
func corruptError(name string, err error) error {
	if errors.Is(err, graph.ErrCorrupt) ||
		errors.Is(err, persistence.ErrInvalidMagic) ||
		errors.Is(err, persistence.ErrInvalidVersion) ||
		errors.Is(err, persistence.ErrTruncated) ||
		persistence.IsChecksumMismatch(err) {
		return &ErrCorrupt{Name: name, cause: err}
	}
	return translateError(err)
}
