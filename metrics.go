package roadnet

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; the
// metrics/prometheus package provides one for Prometheus.
type MetricsCollector interface {
	// RecordRoute is called after each route computation.
	// err is nil if a route was found.
	RecordRoute(duration time.Duration, err error)

	// RecordBatchRoute is called after each RouteMany call.
	// count is the number of requests, failed the number without a route.
	RecordBatchRoute(count, failed int, duration time.Duration)

	// RecordResolve is called after snapping a coordinate onto the network.
	RecordResolve(duration time.Duration, err error)

	// RecordLoad is called after a network snapshot was opened.
	RecordLoad(bytes int64, duration time.Duration, err error)

	// RecordSave is called after a network snapshot was written.
	RecordSave(bytes int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordRoute(time.Duration, error)         {}
func (NoopMetricsCollector) RecordBatchRoute(int, int, time.Duration) {}
func (NoopMetricsCollector) RecordResolve(time.Duration, error)       {}
func (NoopMetricsCollector) RecordLoad(int64, time.Duration, error)   {}
func (NoopMetricsCollector) RecordSave(int64, time.Duration, error)   {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	RouteCount       atomic.Int64
	RouteErrors      atomic.Int64
	RouteTotalNanos  atomic.Int64
	BatchRouteCount  atomic.Int64
	BatchRouteItems  atomic.Int64
	BatchRouteFailed atomic.Int64
	ResolveCount     atomic.Int64
	ResolveErrors    atomic.Int64
	LoadCount        atomic.Int64
	LoadErrors       atomic.Int64
	LoadBytes        atomic.Int64
	SaveCount        atomic.Int64
	SaveErrors       atomic.Int64
	SaveBytes        atomic.Int64
}

// RecordRoute implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRoute(duration time.Duration, err error) {
	b.RouteCount.Add(1)
	b.RouteTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RouteErrors.Add(1)
	}
}

// RecordBatchRoute implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatchRoute(count, failed int, _ time.Duration) {
	b.BatchRouteCount.Add(1)
	b.BatchRouteItems.Add(int64(count))
	b.BatchRouteFailed.Add(int64(failed))
}

// RecordResolve implements MetricsCollector.
func (b *BasicMetricsCollector) RecordResolve(_ time.Duration, err error) {
	b.ResolveCount.Add(1)
	if err != nil {
		b.ResolveErrors.Add(1)
	}
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(bytes int64, _ time.Duration, err error) {
	b.LoadCount.Add(1)
	if err != nil {
		b.LoadErrors.Add(1)
		return
	}
	b.LoadBytes.Add(bytes)
}

// RecordSave implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSave(bytes int64, _ time.Duration, err error) {
	b.SaveCount.Add(1)
	if err != nil {
		b.SaveErrors.Add(1)
		return
	}
	b.SaveBytes.Add(bytes)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		RouteCount:       b.RouteCount.Load(),
		RouteErrors:      b.RouteErrors.Load(),
		RouteAvgNanos:    b.getAvgRouteNanos(),
		BatchRouteCount:  b.BatchRouteCount.Load(),
		BatchRouteItems:  b.BatchRouteItems.Load(),
		BatchRouteFailed: b.BatchRouteFailed.Load(),
		ResolveCount:     b.ResolveCount.Load(),
		ResolveErrors:    b.ResolveErrors.Load(),
		LoadCount:        b.LoadCount.Load(),
		LoadErrors:       b.LoadErrors.Load(),
		LoadBytes:        b.LoadBytes.Load(),
		SaveCount:        b.SaveCount.Load(),
		SaveErrors:       b.SaveErrors.Load(),
		SaveBytes:        b.SaveBytes.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgRouteNanos() int64 {
	count := b.RouteCount.Load()
	if count == 0 {
		return 0
	}
	return b.RouteTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	RouteCount       int64
	RouteErrors      int64
	RouteAvgNanos    int64
	BatchRouteCount  int64
	BatchRouteItems  int64
	BatchRouteFailed int64
	ResolveCount     int64
	ResolveErrors    int64
	LoadCount        int64
	LoadErrors       int64
	LoadBytes        int64
	SaveCount        int64
	SaveErrors       int64
	SaveBytes        int64
}
