package roadnet

import (
	"log/slog"

	"github.com/hupe1980/roadnet/persistence"
	"github.com/hupe1980/roadnet/resource"
	"github.com/hupe1980/roadnet/scores"
	"github.com/hupe1980/roadnet/search"
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	resources        *resource.Controller
	compression      persistence.Compression
	searchOptions    []search.Option
	radius           float32
	scores           *scores.Table
	copyOnLoad       bool
}

// Option configures Router construction and snapshot loading.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &roadnet.BasicMetricsCollector{}
//	router, _ := roadnet.New(g, profiles, roadnet.WithMetricsCollector(metrics))
//	// ... route ...
//	stats := metrics.GetStats()
//	fmt.Printf("Routes: %d, Avg latency: %dns\n", stats.RouteCount, stats.RouteAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithResourceController bounds concurrent searches, memory held by loaded
// networks and snapshot bandwidth.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resources = rc
	}
}

// WithCompression sets the payload compression used by Save.
// Compressed snapshots cannot be memory-mapped on load.
func WithCompression(c persistence.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithSearchOptions passes options to the route search.
func WithSearchOptions(opts ...search.Option) Option {
	return func(o *options) {
		o.searchOptions = append(o.searchOptions, opts...)
	}
}

// WithSnapRadius sets how far, in metres, a coordinate may lie from the road
// it is snapped to. Defaults to scores.DefaultRadius.
func WithSnapRadius(metres float32) Option {
	return func(o *options) {
		if metres > 0 {
			o.radius = metres
		}
	}
}

// WithScores overrides profile factors with per-edge scores from t.
func WithScores(t *scores.Table) Option {
	return func(o *options) {
		o.scores = t
	}
}

// WithCopyOnLoad makes Open copy the graph into heap memory instead of
// viewing the memory-mapped snapshot.
func WithCopyOnLoad() Option {
	return func(o *options) {
		o.copyOnLoad = true
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		compression:      persistence.CompressionNone,
		radius:           scores.DefaultRadius,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
