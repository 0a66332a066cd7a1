// Package prometheus exports engine metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	c, err := vecknnprom.NewCollector(reg)
//	eng := vecknn.New(vecknn.WithMetricsCollector(c))
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/vecknn"
)

// Namespace prefixes every metric name.
const Namespace = "vecknn"

// Collector implements vecknn.MetricsCollector.
type Collector struct {
	latency *prometheus.HistogramVec
	queries *prometheus.CounterVec
	batches *prometheus.CounterVec
	faults  *prometheus.CounterVec
}

var _ vecknn.MetricsCollector = (*Collector)(nil)

// NewCollector creates a Collector and registers it with reg. A nil reg means
// prometheus.DefaultRegisterer.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "search_latency_seconds",
			Help:      "Latency of Search calls",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"backend", "status"}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "queries_total",
			Help:      "Queries answered, summed over batch elements",
		}, []string{"backend"}),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "batch_elements_total",
			Help:      "Batch elements processed",
		}, []string{"backend"}),
		faults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "device_faults_total",
			Help:      "Accelerator faults reported by Search",
		}, []string{"backend"}),
	}

	for _, col := range []prometheus.Collector{c.latency, c.queries, c.batches, c.faults} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// RecordSearch implements vecknn.MetricsCollector.
func (c *Collector) RecordSearch(backend string, batch, queries, _ int, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.latency.WithLabelValues(backend, status).Observe(d.Seconds())

	if err != nil {
		if vecknn.IsDeviceFault(err) {
			c.faults.WithLabelValues(backend).Inc()
		}
		return
	}
	c.batches.WithLabelValues(backend).Add(float64(batch))
	c.queries.WithLabelValues(backend).Add(float64(batch * queries))
}
