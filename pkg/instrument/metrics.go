package instrument

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/filament-go/filament/pkg/filament"
)

// MetricsConfig configures the Prometheus observer.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "filament").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for write and effect duration.
	// Default: prometheus.DefBuckets.
	Buckets []float64

	// Registry is the Prometheus registerer to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus observer.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the duration histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// defaultMetricsConfig returns the default metrics configuration.
func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace:   "filament",
		Subsystem:   "",
		ConstLabels: nil,
		Buckets:     prometheus.DefBuckets,
		Registry:    prometheus.DefaultRegisterer,
	}
}

// batchPendingBuckets sizes the per-flush listener histogram. Flushes
// are counts, not durations, so the default second-scale buckets do not
// apply.
var batchPendingBuckets = []float64{1, 2, 5, 10, 25, 50, 100, 250}

// Metrics is a filament.Observer that exports engine activity as
// Prometheus metrics.
//
// NewMetrics registers its collectors immediately, so each instance
// needs its own Registry; registering two instances with the same
// registerer panics on the duplicate collectors.
type Metrics struct {
	signalsLive    prometheus.Gauge
	signalsCreated *prometheus.CounterVec
	writesTotal    *prometheus.CounterVec
	writeDuration  *prometheus.HistogramVec
	effectRuns     prometheus.Counter
	effectDuration prometheus.Histogram
	batchPending   prometheus.Histogram
	errorsTotal    *prometheus.CounterVec
}

// NewMetrics creates a Prometheus observer and registers its collectors.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		signalsLive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "signals_live",
			Help:        "Number of live signals",
			ConstLabels: config.ConstLabels,
		}),

		signalsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "signals_created_total",
			Help:        "Total number of signals created, by kind",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		writesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "writes_total",
			Help:        "Total number of accepted signal writes, by kind",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		writeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "write_duration_seconds",
			Help:        "Write pipeline duration in seconds, by kind",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"kind"}),

		effectRuns: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effect_runs_total",
			Help:        "Total number of effect executions",
			ConstLabels: config.ConstLabels,
		}),

		effectDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effect_duration_seconds",
			Help:        "Effect execution duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		batchPending: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "batch_pending_listeners",
			Help:        "Listeners flushed per batch close",
			ConstLabels: config.ConstLabels,
			Buckets:     batchPendingBuckets,
		}),

		errorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "errors_total",
			Help:        "Total number of engine errors, by kind",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),
	}
}

// SignalCreated counts the signal and raises the live gauge.
func (m *Metrics) SignalCreated(info filament.SignalInfo) {
	m.signalsLive.Inc()
	m.signalsCreated.WithLabelValues(string(info.Kind)).Inc()
}

// SignalWritten counts the write and observes its pipeline duration.
func (m *Metrics) SignalWritten(info filament.SignalInfo, dur time.Duration) {
	kind := string(info.Kind)
	m.writesTotal.WithLabelValues(kind).Inc()
	m.writeDuration.WithLabelValues(kind).Observe(dur.Seconds())
}

// SignalDisposed lowers the live gauge.
func (m *Metrics) SignalDisposed(filament.SignalInfo) {
	m.signalsLive.Dec()
}

// EffectRan counts the run and observes its duration.
func (m *Metrics) EffectRan(_ uint64, dur time.Duration) {
	m.effectRuns.Inc()
	m.effectDuration.Observe(dur.Seconds())
}

// BatchFlushed observes how many listeners the flush notified.
func (m *Metrics) BatchFlushed(pending int) {
	m.batchPending.Observe(float64(pending))
}

// EngineError counts the error under its kind label.
func (m *Metrics) EngineError(kind string, _ error) {
	m.errorsTotal.WithLabelValues(kind).Inc()
}

var _ filament.Observer = (*Metrics)(nil)
