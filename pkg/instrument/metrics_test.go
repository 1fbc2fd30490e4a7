package instrument

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/zoobzio/clockz"

	"github.com/filament-go/filament/pkg/filament"
)

func metricCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func metricGaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("gauge Write() error: %v", err)
	}
	if m.Gauge == nil {
		t.Fatal("expected gauge metric to have Gauge field")
	}
	return m.GetGauge().GetValue()
}

func metricHistogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	if m.Histogram == nil {
		t.Fatal("expected histogram metric to have Histogram field")
	}
	return m.GetHistogram().GetSampleCount()
}

func signalInfo(kind filament.SignalKind) filament.SignalInfo {
	return filament.SignalInfo{ID: 1, Name: "counter", Kind: kind}
}

func TestMetricsSignalLifecycle(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()))

	m.SignalCreated(signalInfo(filament.KindSignal))
	m.SignalCreated(signalInfo(filament.KindSignal))
	m.SignalCreated(signalInfo(filament.KindSlice))
	m.SignalDisposed(signalInfo(filament.KindSignal))

	if got := metricGaugeValue(t, m.signalsLive); got != 2 {
		t.Fatalf("signals_live=%v, want 2", got)
	}
	if got := metricCounterValue(t, m.signalsCreated.WithLabelValues("signal")); got != 2 {
		t.Fatalf("signals_created_total(signal)=%v, want 2", got)
	}
	if got := metricCounterValue(t, m.signalsCreated.WithLabelValues("slice")); got != 1 {
		t.Fatalf("signals_created_total(slice)=%v, want 1", got)
	}
}

func TestMetricsRecordsWrites(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()))

	m.SignalWritten(signalInfo(filament.KindSignal), 2*time.Millisecond)
	m.SignalWritten(signalInfo(filament.KindSignal), 3*time.Millisecond)
	m.SignalWritten(signalInfo(filament.KindComputed), time.Millisecond)

	if got := metricCounterValue(t, m.writesTotal.WithLabelValues("signal")); got != 2 {
		t.Fatalf("writes_total(signal)=%v, want 2", got)
	}
	if got := metricCounterValue(t, m.writesTotal.WithLabelValues("computed")); got != 1 {
		t.Fatalf("writes_total(computed)=%v, want 1", got)
	}
	if got := metricHistogramCount(t, m.writeDuration.WithLabelValues("signal")); got != 2 {
		t.Fatalf("write_duration_seconds(signal) count=%v, want 2", got)
	}
}

func TestMetricsRecordsEffectsAndBatches(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()))

	m.EffectRan(7, time.Millisecond)
	m.EffectRan(7, time.Millisecond)
	m.EffectRan(9, 2*time.Millisecond)
	m.BatchFlushed(4)

	if got := metricCounterValue(t, m.effectRuns); got != 3 {
		t.Fatalf("effect_runs_total=%v, want 3", got)
	}
	if got := metricHistogramCount(t, m.effectDuration); got != 3 {
		t.Fatalf("effect_duration_seconds count=%v, want 3", got)
	}
	if got := metricHistogramCount(t, m.batchPending); got != 1 {
		t.Fatalf("batch_pending_listeners count=%v, want 1", got)
	}
}

func TestMetricsRecordsErrorsByKind(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()))

	m.EngineError("validation", errors.New("too small"))
	m.EngineError("validation", errors.New("too big"))
	m.EngineError("persistence", errors.New("disk full"))

	if got := metricCounterValue(t, m.errorsTotal.WithLabelValues("validation")); got != 2 {
		t.Fatalf("errors_total(validation)=%v, want 2", got)
	}
	if got := metricCounterValue(t, m.errorsTotal.WithLabelValues("persistence")); got != 1 {
		t.Fatalf("errors_total(persistence)=%v, want 1", got)
	}
}

func TestMetricsConfigOptions(t *testing.T) {
	m := NewMetrics(
		WithRegistry(prometheus.NewRegistry()),
		WithNamespace("myapp"),
		WithSubsystem("state"),
		WithConstLabels(prometheus.Labels{"region": "eu"}),
		WithBuckets([]float64{0.001, 0.01}),
	)

	// Options only change metric identity, not behavior.
	m.SignalCreated(signalInfo(filament.KindSignal))
	if got := metricGaugeValue(t, m.signalsLive); got != 1 {
		t.Fatalf("signals_live=%v, want 1", got)
	}

	desc := m.signalsLive.Desc().String()
	for _, want := range []string{"myapp_state_signals_live", "region"} {
		if !strings.Contains(desc, want) {
			t.Errorf("expected metric description to mention %q, got %s", want, desc)
		}
	}
}

// End to end: a runtime wired with the observer reflects signal
// activity in the collectors.
func TestMetricsObservesRuntime(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()))
	rt := filament.New(
		filament.WithClock(clockz.NewFakeClock()),
		filament.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		filament.WithObserver(m),
	)

	sig := filament.NewSignal(rt, 0, filament.WithName[int]("hits"))
	if err := sig.Set(1); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := sig.Set(2); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	sig.Dispose()

	if got := metricCounterValue(t, m.signalsCreated.WithLabelValues("signal")); got != 1 {
		t.Fatalf("signals_created_total(signal)=%v, want 1", got)
	}
	if got := metricCounterValue(t, m.writesTotal.WithLabelValues("signal")); got != 2 {
		t.Fatalf("writes_total(signal)=%v, want 2", got)
	}
	if got := metricGaugeValue(t, m.signalsLive); got != 0 {
		t.Fatalf("signals_live=%v, want 0 after dispose", got)
	}
}
