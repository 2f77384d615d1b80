package vcstore

import (
	"log/slog"

	"golang.org/x/time/rate"
)

// defaultClusterFanout is the default number of clusters scanned by
// find_similar (spec.md §4.5); WithClusterFanout overrides it.
const defaultClusterFanout = 3

// defaultMaxClusters is the default max_clusters passed to initialize
// when the caller doesn't override it (spec.md §4.5).
const defaultMaxClusters = 100

type options struct {
	logger             *Logger
	metricsCollector   MetricsCollector
	directIO           bool
	blockSize          int
	clusterFanout      int
	maxClusters        int
	maintenanceLimiter *rate.Limiter
}

// Option configures Initialize/OpenReadOnly behavior.
//
// Following the teacher's options.go, this exists to avoid exploding the
// constructor signature rather than to model unrelated concerns.
type Option func(*options)

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := vcstore.NewJSONLogger(slog.LevelInfo)
//	store, _ := vcstore.Initialize(path, "kmeans", dim, 0, vcstore.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
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

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &vcstore.BasicMetricsCollector{}
//	store, _ := vcstore.Initialize(path, "kmeans", dim, 0, vcstore.WithMetricsCollector(metrics))
//	// ... use store ...
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithDirectIO requests O_DIRECT for the underlying device. If the device
// or filesystem rejects O_DIRECT, the store transparently falls back to
// buffered mode and logs the downgrade (spec.md §2 Open/Mode).
func WithDirectIO(enabled bool) Option {
	return func(o *options) {
		o.directIO = enabled
	}
}

// WithClusterFanout overrides the number of clusters find_similar routes a
// query to. spec.md fixes this at 3; callers that need a different
// recall/latency trade-off can raise or lower it.
func WithClusterFanout(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.clusterFanout = n
		}
	}
}

// WithBlockSize overrides the block size used for alignment and the data
// offset allocator's rounding unit when the underlying path is a regular
// file rather than a block device (spec.md §4.1). Block devices always
// report their real logical block size via BLKSSZGET, which this option
// cannot override; it exists only because a plain file has no geometry of
// its own to query, and internal/blockio otherwise falls back to a fixed
// 512-byte default.
func WithBlockSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.blockSize = n
		}
	}
}

// WithMaxClusters sets the default max_clusters used by Initialize when its
// positional maxClusters argument is zero. spec.md §4.5 documents
// `initialize(path, strategy_name, vector_dim, max_clusters=100)`; passing 0
// positionally selects this default (itself defaulting to 100) instead of
// forcing every call site to repeat the literal.
func WithMaxClusters(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxClusters = n
		}
	}
}

// WithMaintenancePacing rate-limits the disk I/O issued by
// perform_maintenance, so a large rebalance doesn't saturate the device
// and starve concurrent readers on other processes sharing it. Pass a nil
// limiter (the default) to run maintenance unpaced.
func WithMaintenancePacing(limiter *rate.Limiter) Option {
	return func(o *options) {
		o.maintenanceLimiter = limiter
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		clusterFanout:    defaultClusterFanout,
		maxClusters:      defaultMaxClusters,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	return o
}
