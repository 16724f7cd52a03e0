package search

import (
	"math"

	"github.com/RoaringBitmap/roaring/v2"
)

// DefaultHeapCapacity is the initial frontier size of a search.
const DefaultHeapCapacity = 1024

// Options configures a Dijkstra.
type Options struct {
	// MaxWeight stops the search once the frontier exceeds it.
	MaxWeight float32
	// Restricted vertices are never entered.
	Restricted *roaring.Bitmap
	// HeapCapacity is the initial capacity of the frontier heap.
	HeapCapacity int
}

// DefaultOptions returns unbounded options.
func DefaultOptions() Options {
	return Options{
		MaxWeight:    math.MaxFloat32,
		HeapCapacity: DefaultHeapCapacity,
	}
}

// Option mutates Options.
type Option func(*Options)

// WithMaxWeight bounds the weight of returned routes.
func WithMaxWeight(w float32) Option {
	return func(o *Options) {
		if w > 0 {
			o.MaxWeight = w
		}
	}
}

// WithRestricted forbids routes through the given vertices. The bitmap must
// not be modified while searches run.
func WithRestricted(vertices *roaring.Bitmap) Option {
	return func(o *Options) {
		o.Restricted = vertices
	}
}

// WithHeapCapacity sets the initial frontier capacity.
func WithHeapCapacity(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.HeapCapacity = n
		}
	}
}
