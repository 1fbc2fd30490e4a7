// Package instrument provides production observers for filament runtimes.
//
// This package includes:
//   - Prometheus metrics observer
//   - OpenTelemetry tracing observer
//   - Multi, a fan-out combinator for composing observers
//
// # Prometheus Metrics
//
// Metrics exports engine activity as Prometheus collectors:
//   - filament_signals_live: Gauge of live signals
//   - filament_signals_created_total: Counter of created signals by kind
//   - filament_writes_total: Counter of accepted writes by kind
//   - filament_write_duration_seconds: Write pipeline duration histogram
//   - filament_effect_runs_total: Counter of effect executions
//   - filament_effect_duration_seconds: Effect execution duration histogram
//   - filament_batch_pending_listeners: Histogram of listeners flushed per batch
//   - filament_errors_total: Counter of engine errors by kind
//
//	metrics := instrument.NewMetrics()
//	rt := filament.New(filament.WithObserver(metrics))
//
// Then expose metrics on a separate port:
//
//	http.Handle("/metrics", promhttp.Handler())
//	go http.ListenAndServe(":9090", nil)
//
// # OpenTelemetry Tracing
//
// Tracing emits a span for every write, effect run, batch flush, and
// engine error. Spans carry the signal name, kind, and ID so traces from
// application code and engine internals line up in one timeline.
//
//	tracing := instrument.NewTracing(
//	    instrument.WithTracerName("my-app"),
//	    instrument.WithSpanFilter(func(op string) bool {
//	        return op != instrument.OpEffect
//	    }),
//	)
//	rt := filament.New(filament.WithObserver(tracing))
//
// The tracer uses the global OpenTelemetry tracer provider unless
// WithTracerProvider overrides it. Configure the provider in main()
// before constructing the runtime:
//
//	tp := sdktrace.NewTracerProvider(
//	    sdktrace.WithBatcher(exporter),
//	    sdktrace.WithResource(resource.NewWithAttributes(
//	        semconv.SchemaURL,
//	        semconv.ServiceName("my-app"),
//	    )),
//	)
//	otel.SetTracerProvider(tp)
//
// # Composition
//
// A runtime accepts a single observer. Use Multi to install several:
//
//	rt := filament.New(filament.WithObserver(
//	    instrument.Multi(metrics, tracing, hub),
//	))
package instrument
