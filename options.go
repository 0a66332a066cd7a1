package vecknn

import (
	"io"
	"log/slog"

	"github.com/hupe1980/vecknn/device"
	"github.com/hupe1980/vecknn/tensor"
)

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	accelerator      device.Context
	expanded         bool
	closers          []io.Closer
}

// Option configures an Engine.
type Option func(*options)

// WithAccelerator attaches an accelerator context. Search calls whose inputs
// reside on tensor.Accelerator run on its current stream; without one they
// fail with ErrNotSupported.
//
// The engine does not take ownership of ctx.
func WithAccelerator(ctx device.Context) Option {
	return func(o *options) {
		o.accelerator = ctx
	}
}

// WithExpandedDistances computes accelerator distances with one matrix
// multiplication (‖r‖² + ‖q‖² − 2·qᵀr) per batch element instead of the
// direct accumulation. Faster for large dimensions; distances differ from the
// direct form by floating-point rounding, so near-ties may rank differently.
//
// Only the accelerator path is affected.
func WithExpandedDistances() Option {
	return func(o *options) {
		o.expanded = true
	}
}

// WithMetricsCollector configures metrics collection for operations.
// Pass nil to disable metrics collection.
//
// Example with basic in-memory metrics:
//
//	metrics := &vecknn.BasicMetricsCollector{}
//	eng := vecknn.New(vecknn.WithMetricsCollector(metrics))
//	// ... use eng ...
//	stats := metrics.GetStats()
//	fmt.Printf("Searches: %d, Avg latency: %dns\n", stats.SearchCount, stats.SearchAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := vecknn.NewJSONLogger(slog.LevelInfo)
//	eng := vecknn.New(vecknn.WithLogger(logger))
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

// withOwned registers a resource released by Engine.Close.
func withOwned(c io.Closer) Option {
	return func(o *options) {
		o.closers = append(o.closers, c)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}

type searchOptions struct {
	distances *tensor.Tensor[float32]
}

// SearchOption configures a single Search call.
type SearchOption func(*searchOptions)

// WithDistances additionally writes the squared distance of every returned
// neighbor into dist, which must have the shape and residency of the index
// output.
func WithDistances(dist *tensor.Tensor[float32]) SearchOption {
	return func(o *searchOptions) {
		o.distances = dist
	}
}

func applySearchOptions(optFns []SearchOption) searchOptions {
	var o searchOptions
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
