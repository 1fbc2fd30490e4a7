package filament

import (
	"errors"
	"testing"
)

func TestEffectRunsImmediately(t *testing.T) {
	rt := newTestRuntime()

	runs := 0
	CreateEffect(rt, func() error {
		runs++
		return nil
	})
	if runs != 1 {
		t.Errorf("expected immediate run, got %d", runs)
	}
}

func TestEffectRerunsOnChange(t *testing.T) {
	rt := newTestRuntime()
	sig := NewSignal(rt, 0)

	var last int
	CreateEffect(rt, func() error {
		v, err := sig.Get()
		if err != nil {
			return err
		}
		last = v
		return nil
	})

	sig.Set(5)
	if last != 5 {
		t.Errorf("effect did not observe the write, last=%d", last)
	}
	sig.Set(9)
	if last != 9 {
		t.Errorf("effect did not observe the second write, last=%d", last)
	}
}

func TestEffectDisposeStopsReruns(t *testing.T) {
	rt := newTestRuntime()
	sig := NewSignal(rt, 0)

	runs := 0
	eff := CreateEffect(rt, func() error {
		sig.Get()
		runs++
		return nil
	})

	eff.Dispose()
	if !eff.Disposed() {
		t.Fatal("expected disposed effect")
	}
	sig.Set(1)
	sig.Set(2)
	if runs != 1 {
		t.Errorf("disposed effect re-ran: %d runs", runs)
	}
}

func TestEffectErrorReportedToRuntime(t *testing.T) {
	var reported []error
	rt := newTestRuntime(WithErrorHandler(func(err error) { reported = append(reported, err) }))
	sig := NewSignal(rt, 0)

	CreateEffect(rt, func() error {
		v, _ := sig.Get()
		if v > 0 {
			return errors.New("effect failed")
		}
		return nil
	})
	if len(reported) != 0 {
		t.Fatalf("unexpected errors before write: %v", reported)
	}

	sig.Set(1)
	if len(reported) != 1 {
		t.Fatalf("expected one reported error, got %d", len(reported))
	}
	var cerr *ComputationError
	if !errors.As(reported[0], &cerr) {
		t.Errorf("expected ComputationError, got %v", reported[0])
	}
}

func TestEffectPanicRecovered(t *testing.T) {
	var reported []error
	rt := newTestRuntime(WithErrorHandler(func(err error) { reported = append(reported, err) }))
	sig := NewSignal(rt, 0)

	runs := 0
	CreateEffect(rt, func() error {
		v, _ := sig.Get()
		runs++
		if v == 1 {
			panic("effect blew up")
		}
		return nil
	})

	sig.Set(1)
	if len(reported) != 1 {
		t.Fatalf("expected the panic reported, got %d errors", len(reported))
	}

	// The effect stays alive after a panic.
	sig.Set(2)
	if runs != 3 {
		t.Errorf("expected effect to keep re-running after a panic, got %d runs", runs)
	}
}

// An effect that writes its own dependency must settle instead of
// recursing: the nested run is skipped while the outer run is active.
func TestEffectSelfWriteSettles(t *testing.T) {
	rt := newTestRuntime()
	sig := NewSignal(rt, 0)

	runs := 0
	CreateEffect(rt, func() error {
		v, err := sig.Get()
		if err != nil {
			return err
		}
		runs++
		if v < 3 {
			return sig.Set(v + 1)
		}
		return nil
	})

	if runs > 10 {
		t.Fatalf("self-writing effect did not settle: %d runs", runs)
	}
	v, _ := sig.Get()
	if v == 0 {
		t.Error("self-write never applied")
	}
}

func TestEffectTracksMultipleSources(t *testing.T) {
	rt := newTestRuntime()
	a := NewSignal(rt, 1)
	b := NewSignal(rt, 2)

	sum := 0
	CreateEffect(rt, func() error {
		av, _ := a.Get()
		bv, _ := b.Get()
		sum = av + bv
		return nil
	})

	a.Set(10)
	if sum != 12 {
		t.Errorf("expected 12 after writing a, got %d", sum)
	}
	b.Set(20)
	if sum != 30 {
		t.Errorf("expected 30 after writing b, got %d", sum)
	}
}

func TestEffectIDsAreUnique(t *testing.T) {
	rt := newTestRuntime()
	e1 := CreateEffect(rt, func() error { return nil })
	e2 := CreateEffect(rt, func() error { return nil })
	if e1.ID() == e2.ID() {
		t.Errorf("expected distinct effect IDs, both %d", e1.ID())
	}
}
