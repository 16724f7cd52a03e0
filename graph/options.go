package graph

const (
	// DefaultVertexCapacity is the number of vertex slots preallocated by New.
	DefaultVertexCapacity = 1024
	// DefaultEdgeCapacity is the number of edge slots preallocated by New.
	DefaultEdgeCapacity = 1024
	// DefaultEdgeDataSize is assumed when deserializing a graph without edges.
	DefaultEdgeDataSize = 1
)

type options struct {
	vertexCapacity int
	edgeCapacity   int
	edgeDataSize   int
}

// Option configures a Graph.
type Option func(*options)

// WithVertexCapacity preallocates room for n vertices.
func WithVertexCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.vertexCapacity = n
		}
	}
}

// WithEdgeCapacity preallocates room for n edges.
func WithEdgeCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.edgeCapacity = n
		}
	}
}

// WithEdgeDataSize sets the edge data size assumed when a serialized graph
// has no edges and the size cannot be derived from the stream.
func WithEdgeDataSize(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.edgeDataSize = n
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{
		vertexCapacity: DefaultVertexCapacity,
		edgeCapacity:   DefaultEdgeCapacity,
		edgeDataSize:   DefaultEdgeDataSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
