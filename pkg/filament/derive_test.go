package filament

import (
	"errors"
	"strings"
	"testing"
)

func TestDeriveCombinesSources(t *testing.T) {
	rt := newTestRuntime()
	a := NewSignal(rt, 1)
	b := NewSignal(rt, 2)
	c := NewSignal(rt, 3)

	sum := Derive(rt, []*Signal[int]{a, b, c}, func(vals []int) (int, error) {
		total := 0
		for _, v := range vals {
			total += v
		}
		return total, nil
	})

	v, err := sum.Get()
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if v != 6 {
		t.Errorf("expected 6, got %d", v)
	}
}

func TestDeriveRecomputesOnAnySource(t *testing.T) {
	rt := newTestRuntime()
	first := NewSignal(rt, "Ada")
	last := NewSignal(rt, "Lovelace")

	full := Derive(rt, []*Signal[string]{first, last}, func(vals []string) (string, error) {
		return strings.Join(vals, " "), nil
	})

	last.Set("Byron")
	v, _ := full.Get()
	if v != "Ada Byron" {
		t.Errorf("expected recompute on second source, got %q", v)
	}

	first.Set("Annabella")
	v, _ = full.Get()
	if v != "Annabella Byron" {
		t.Errorf("expected recompute on first source, got %q", v)
	}
}

func TestDeriveErrorKeepsPreviousValue(t *testing.T) {
	rt := newTestRuntime()
	a := NewSignal(rt, 4)

	half := Derive(rt, []*Signal[int]{a}, func(vals []int) (int, error) {
		if vals[0]%2 != 0 {
			return 0, errors.New("odd input")
		}
		return vals[0] / 2, nil
	})

	a.Set(5)
	v, _ := half.Get()
	if v != 2 {
		t.Errorf("failed recompute should keep the previous value, got %d", v)
	}
	if half.Err() == nil {
		t.Error("expected recorded error")
	}

	a.Set(10)
	v, _ = half.Get()
	if v != 5 {
		t.Errorf("expected recovery, got %d", v)
	}
}

// Disposal is eager: the tracking effect leaves every source's subscriber
// set immediately, unlike Computed where sources prune lazily.
func TestDeriveDisposeDetachesEagerly(t *testing.T) {
	rt := newTestRuntime()
	a := NewSignal(rt, 1)
	b := NewSignal(rt, 2)

	evals := 0
	d := Derive(rt, []*Signal[int]{a, b}, func(vals []int) (int, error) {
		evals++
		return vals[0] + vals[1], nil
	})

	if got := a.base.subscriberCount(); got != 1 {
		t.Fatalf("expected the tracking effect subscribed, got %d", got)
	}

	d.Dispose()
	if got := a.base.subscriberCount(); got != 0 {
		t.Errorf("expected eager detach from a, still %d subscribers", got)
	}
	if got := b.base.subscriberCount(); got != 0 {
		t.Errorf("expected eager detach from b, still %d subscribers", got)
	}

	before := evals
	a.Set(100)
	if evals != before {
		t.Errorf("disposed derivation recomputed: %d extra evals", evals-before)
	}
	if _, err := d.Get(); !errors.Is(err, ErrDisposed) {
		t.Errorf("expected ErrDisposed, got %v", err)
	}
}

func TestDeriveKindAndEvents(t *testing.T) {
	rt := newTestRuntime()
	a := NewSignal(rt, 1)

	d := Derive(rt, []*Signal[int]{a}, func(vals []int) (int, error) {
		return vals[0] * 3, nil
	}, WithName[int]("tripled"))

	if d.Name() != "tripled" {
		t.Errorf("expected name tripled, got %q", d.Name())
	}
	if got := d.Signal().Kind(); got != KindDerived {
		t.Errorf("expected kind derived, got %q", got)
	}

	var events []int
	d.On(EventChange, func(ev Event[int]) { events = append(events, ev.Value) })
	a.Set(2)
	if len(events) != 1 || events[0] != 6 {
		t.Errorf("expected change event with 6, got %v", events)
	}
}

func TestDeriveSourceSliceIsCopied(t *testing.T) {
	rt := newTestRuntime()
	a := NewSignal(rt, 1)
	b := NewSignal(rt, 2)
	sources := []*Signal[int]{a}

	d := Derive(rt, sources, func(vals []int) (int, error) {
		return vals[0] * 10, nil
	})

	// Mutating the caller's slice after construction must not change the
	// derivation's source set.
	sources[0] = b
	a.Set(3)
	v, _ := d.Get()
	if v != 30 {
		t.Errorf("expected derivation bound to the original source, got %d", v)
	}
}
