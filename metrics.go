package vcstore

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    storeCounter     prometheus.Counter
//	    searchHistogram  prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordStore(duration time.Duration, err error) {
//	    p.storeCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordStore is called after each store_vector operation.
	RecordStore(duration time.Duration, err error)

	// RecordRetrieve is called after each retrieve_vector operation.
	RecordRetrieve(duration time.Duration, err error)

	// RecordSearch is called after each find_similar operation. k is the
	// requested neighbor count, candidates is the number of vectors
	// scanned from the routed clusters.
	RecordSearch(k, candidates int, duration time.Duration, err error)

	// RecordDelete is called after each delete_vector operation.
	RecordDelete(duration time.Duration, err error)

	// RecordMaintenance is called after each perform_maintenance
	// operation. relocated is the number of vectors rewritten to a new
	// offset.
	RecordMaintenance(relocated int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordStore(time.Duration, error)            {}
func (NoopMetricsCollector) RecordRetrieve(time.Duration, error)         {}
func (NoopMetricsCollector) RecordSearch(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordDelete(time.Duration, error)           {}
func (NoopMetricsCollector) RecordMaintenance(int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	StoreCount        atomic.Int64
	StoreErrors       atomic.Int64
	StoreTotalNanos   atomic.Int64
	RetrieveCount     atomic.Int64
	RetrieveErrors    atomic.Int64
	SearchCount       atomic.Int64
	SearchErrors      atomic.Int64
	SearchTotalNanos  atomic.Int64
	SearchCandidates  atomic.Int64
	DeleteCount       atomic.Int64
	DeleteErrors      atomic.Int64
	MaintenanceCount  atomic.Int64
	MaintenanceErrors atomic.Int64
	Relocated         atomic.Int64
}

func (b *BasicMetricsCollector) RecordStore(duration time.Duration, err error) {
	b.StoreCount.Add(1)
	b.StoreTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.StoreErrors.Add(1)
	}
}

func (b *BasicMetricsCollector) RecordRetrieve(duration time.Duration, err error) {
	b.RetrieveCount.Add(1)
	if err != nil {
		b.RetrieveErrors.Add(1)
	}
}

func (b *BasicMetricsCollector) RecordSearch(k, candidates int, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	b.SearchCandidates.Add(int64(candidates))
	if err != nil {
		b.SearchErrors.Add(1)
	}
}

func (b *BasicMetricsCollector) RecordDelete(duration time.Duration, err error) {
	b.DeleteCount.Add(1)
	if err != nil {
		b.DeleteErrors.Add(1)
	}
}

func (b *BasicMetricsCollector) RecordMaintenance(relocated int, duration time.Duration, err error) {
	b.MaintenanceCount.Add(1)
	b.Relocated.Add(int64(relocated))
	if err != nil {
		b.MaintenanceErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		StoreCount:       b.StoreCount.Load(),
		StoreErrors:      b.StoreErrors.Load(),
		StoreAvgNanos:    b.getAvg(b.StoreTotalNanos.Load(), b.StoreCount.Load()),
		RetrieveCount:    b.RetrieveCount.Load(),
		RetrieveErrors:   b.RetrieveErrors.Load(),
		SearchCount:      b.SearchCount.Load(),
		SearchErrors:     b.SearchErrors.Load(),
		SearchAvgNanos:   b.getAvg(b.SearchTotalNanos.Load(), b.SearchCount.Load()),
		DeleteCount:      b.DeleteCount.Load(),
		DeleteErrors:     b.DeleteErrors.Load(),
		MaintenanceCount: b.MaintenanceCount.Load(),
		Relocated:        b.Relocated.Load(),
	}
}

func (b *BasicMetricsCollector) getAvg(totalNanos, count int64) int64 {
	if count == 0 {
		return 0
	}
	return totalNanos / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	StoreCount       int64
	StoreErrors      int64
	StoreAvgNanos    int64
	RetrieveCount    int64
	RetrieveErrors   int64
	SearchCount      int64
	SearchErrors     int64
	SearchAvgNanos   int64
	DeleteCount      int64
	DeleteErrors     int64
	MaintenanceCount int64
	Relocated        int64
}
