// Package prometheus exports roadnet.MetricsCollector events as Prometheus metrics.
//
//	collector, err := prometheus.NewCollector(prom.DefaultRegisterer)
//	router, err := roadnet.Open(ctx, store, "lux.rnet", profiles,
//	    roadnet.WithMetricsCollector(collector))
//	http.Handle("/metrics", promhttp.Handler())
package prometheus

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/roadnet"
)

// Namespace prefixes every metric name.
const Namespace = "roadnet"

// Collector implements roadnet.MetricsCollector.
type Collector struct {
	latency      *prometheus.HistogramVec
	operations   *prometheus.CounterVec
	batchItems   *prometheus.CounterVec
	snapshotSize *prometheus.CounterVec
}

var _ roadnet.MetricsCollector = (*Collector)(nil)

// NewCollector creates the metrics and registers them with reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "operation_latency_seconds",
			Help:      "Latency of router operations",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"op", "status"}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "operations_total",
			Help:      "Router operations by outcome",
		}, []string{"op", "status"}),
		batchItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "batch_route_requests_total",
			Help:      "Route requests answered in batches",
		}, []string{"status"}),
		snapshotSize: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "snapshot_bytes_total",
			Help:      "Bytes of network snapshots loaded and saved",
		}, []string{"op"}),
	}

	var err error
	if c.latency, err = register(reg, c.latency); err != nil {
		return nil, err
	}
	if c.operations, err = register(reg, c.operations); err != nil {
		return nil, err
	}
	if c.batchItems, err = register(reg, c.batchItems); err != nil {
		return nil, err
	}
	if c.snapshotSize, err = register(reg, c.snapshotSize); err != nil {
		return nil, err
	}
	return c, nil
}

// register adds col to reg, reusing a collector registered earlier under
// the same name.
func register[T prometheus.Collector](reg prometheus.Registerer, col T) (T, error) {
	if err := reg.Register(col); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return col, err
	}
	return col, nil
}

// MustNewCollector is like NewCollector but panics on error.
func MustNewCollector(reg prometheus.Registerer) *Collector {
	c, err := NewCollector(reg)
	if err != nil {
		panic(err)
	}
	return c
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (c *Collector) observe(op string, d time.Duration, err error) {
	s := status(err)
	c.latency.WithLabelValues(op, s).Observe(d.Seconds())
	c.operations.WithLabelValues(op, s).Inc()
}

// RecordRoute implements roadnet.MetricsCollector.
func (c *Collector) RecordRoute(d time.Duration, err error) {
	c.observe("route", d, err)
}

// RecordBatchRoute implements roadnet.MetricsCollector.
func (c *Collector) RecordBatchRoute(count, failed int, d time.Duration) {
	c.observe("batch_route", d, nil)
	c.batchItems.WithLabelValues("success").Add(float64(count - failed))
	c.batchItems.WithLabelValues("error").Add(float64(failed))
}

// RecordResolve implements roadnet.MetricsCollector.
func (c *Collector) RecordResolve(d time.Duration, err error) {
	c.observe("resolve", d, err)
}

// RecordLoad implements roadnet.MetricsCollector.
func (c *Collector) RecordLoad(bytes int64, d time.Duration, err error) {
	c.observe("load", d, err)
	if err == nil {
		c.snapshotSize.WithLabelValues("load").Add(float64(bytes))
	}
}

// RecordSave implements roadnet.MetricsCollector.
func (c *Collector) RecordSave(bytes int64, d time.Duration, err error) {
	c.observe("save", d, err)
	if err == nil {
		c.snapshotSize.WithLabelValues("save").Add(float64(bytes))
	}
}
