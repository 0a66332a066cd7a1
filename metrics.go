package vecknn

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; package
// metrics/prometheus provides a ready-made adapter.
type MetricsCollector interface {
	// RecordSearch is called after each Search call.
	// backend is "cpu" or the device name, batch the number of batch
	// elements, queries the number of queries per element, k the number of
	// neighbors requested. err is nil if successful.
	RecordSearch(backend string, batch, queries, k int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSearch(string, int, int, int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	SearchCount      atomic.Int64
	SearchErrors     atomic.Int64
	SearchTotalNanos atomic.Int64
	BatchCount       atomic.Int64
	QueryCount       atomic.Int64
	DeviceFaults     atomic.Int64
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(_ string, batch, queries, _ int, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SearchErrors.Add(1)
		if IsDeviceFault(err) {
			b.DeviceFaults.Add(1)
		}
		return
	}
	b.BatchCount.Add(int64(batch))
	b.QueryCount.Add(int64(batch) * int64(queries))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		SearchCount:    b.SearchCount.Load(),
		SearchErrors:   b.SearchErrors.Load(),
		SearchAvgNanos: b.getAvgSearchNanos(),
		BatchCount:     b.BatchCount.Load(),
		QueryCount:     b.QueryCount.Load(),
		DeviceFaults:   b.DeviceFaults.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgSearchNanos() int64 {
	count := b.SearchCount.Load()
	if count == 0 {
		return 0
	}
	return b.SearchTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	SearchCount    int64
	SearchErrors   int64
	SearchAvgNanos int64
	BatchCount     int64
	QueryCount     int64
	DeviceFaults   int64
}
