package instrument

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/filament-go/filament/pkg/filament"
)

// Default tracer name for filament runtimes.
const defaultTracerName = "filament"

// Operation labels passed to the span filter.
const (
	OpWrite  = "write"
	OpEffect = "effect"
	OpBatch  = "batch"
	OpError  = "error"
)

// TracingConfig configures the OpenTelemetry observer.
type TracingConfig struct {
	// TracerName is the name of the tracer (default: "filament").
	TracerName string

	// Provider is the tracer provider.
	// Default: the global OpenTelemetry provider.
	Provider trace.TracerProvider

	// BaseContext is the parent context for emitted spans.
	// Default: context.Background().
	BaseContext context.Context

	// Filter determines which operations to trace, keyed by the Op
	// constants. Return true to trace the operation, false to skip.
	// If nil, all operations are traced.
	Filter func(op string) bool

	// tracer is the resolved tracer instance.
	tracer trace.Tracer
}

// TracingOption configures the OpenTelemetry observer.
type TracingOption func(*TracingConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracingOption {
	return func(c *TracingConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(provider trace.TracerProvider) TracingOption {
	return func(c *TracingConfig) {
		c.Provider = provider
	}
}

// WithBaseContext sets the parent context for emitted spans.
func WithBaseContext(ctx context.Context) TracingOption {
	return func(c *TracingConfig) {
		c.BaseContext = ctx
	}
}

// WithSpanFilter sets a filter function for operations.
func WithSpanFilter(filter func(op string) bool) TracingOption {
	return func(c *TracingConfig) {
		c.Filter = filter
	}
}

// defaultTracingConfig returns the default tracing configuration.
func defaultTracingConfig() TracingConfig {
	return TracingConfig{
		TracerName:  defaultTracerName,
		BaseContext: context.Background(),
		Filter:      nil,
	}
}

// Tracing is a filament.Observer that emits an OpenTelemetry span for
// every accepted write, effect run, batch flush, and engine error.
// Write and effect spans carry the operation's measured duration.
//
// Signal creation and disposal are not traced. They are lifecycle
// counts rather than operations; Metrics covers them.
type Tracing struct {
	filament.NoOpObserver

	cfg TracingConfig
}

// NewTracing creates an OpenTelemetry observer.
func NewTracing(opts ...TracingOption) *Tracing {
	config := defaultTracingConfig()
	for _, opt := range opts {
		opt(&config)
	}

	if config.Provider == nil {
		config.Provider = otel.GetTracerProvider()
	}
	config.tracer = config.Provider.Tracer(config.TracerName)

	return &Tracing{cfg: config}
}

// SignalWritten emits a span spanning the write pipeline.
func (t *Tracing) SignalWritten(info filament.SignalInfo, dur time.Duration) {
	if t.skip(OpWrite) {
		return
	}

	// Callbacks fire after the fact, so the span is backdated to cover
	// the measured duration.
	start := time.Now().Add(-dur)
	_, span := t.cfg.tracer.Start(
		t.cfg.BaseContext,
		"filament.write",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithTimestamp(start),
		trace.WithAttributes(
			attribute.String("filament.signal", info.Name),
			attribute.String("filament.kind", string(info.Kind)),
			attribute.Int64("filament.id", int64(info.ID)),
			attribute.Int("filament.subscribers", info.Subscribers),
		),
	)
	span.End(trace.WithTimestamp(start.Add(dur)))
}

// EffectRan emits a span spanning the effect execution.
func (t *Tracing) EffectRan(id uint64, dur time.Duration) {
	if t.skip(OpEffect) {
		return
	}

	start := time.Now().Add(-dur)
	_, span := t.cfg.tracer.Start(
		t.cfg.BaseContext,
		"filament.effect",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithTimestamp(start),
		trace.WithAttributes(
			attribute.Int64("filament.effect_id", int64(id)),
		),
	)
	span.End(trace.WithTimestamp(start.Add(dur)))
}

// BatchFlushed emits a span recording the flush size.
func (t *Tracing) BatchFlushed(pending int) {
	if t.skip(OpBatch) {
		return
	}

	_, span := t.cfg.tracer.Start(
		t.cfg.BaseContext,
		"filament.batch",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.Int("filament.pending", pending),
		),
	)
	span.End()
}

// EngineError emits an error span with the failure recorded on it.
func (t *Tracing) EngineError(kind string, err error) {
	if t.skip(OpError) {
		return
	}

	_, span := t.cfg.tracer.Start(
		t.cfg.BaseContext,
		"filament.error",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("filament.error_kind", kind),
		),
	)
	span.RecordError(err)
	span.SetStatus(codes.Error, kind)
	span.End()
}

func (t *Tracing) skip(op string) bool {
	return t.cfg.Filter != nil && !t.cfg.Filter(op)
}

var _ filament.Observer = (*Tracing)(nil)
