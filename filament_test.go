package filament

import (
	"errors"
	"testing"
)

// =============================================================================
// Runtime Tests
// =============================================================================

func TestNewRuntime(t *testing.T) {
	rt := New()
	if rt == nil {
		t.Fatal("expected runtime")
	}
}

func TestRuntimesAreIndependent(t *testing.T) {
	a := New()
	b := New()

	sig := NewSignal(a, 1)
	runs := 0
	CreateEffect(b, func() error {
		runs++
		return nil
	})

	if err := sig.Set(2); err != nil {
		t.Fatalf("set: %v", err)
	}
	if runs != 1 {
		t.Errorf("expected effect on runtime b to run once, got %d", runs)
	}
}

// =============================================================================
// Reactive Primitive Tests
// =============================================================================

func TestNewSignal(t *testing.T) {
	rt := New()
	s := NewSignal(rt, 42)

	v, err := s.Get()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if v != 42 {
		t.Errorf("expected 42, got %d", v)
	}

	if err := s.Set(100); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, _ := s.Get(); v != 100 {
		t.Errorf("expected 100, got %d", v)
	}
}

func TestNewComputed(t *testing.T) {
	rt := New()
	count := NewSignal(rt, 5)
	doubled := NewComputed(rt, func() (int, error) {
		v, err := count.Get()
		return v * 2, err
	})

	if v, _ := doubled.Get(); v != 10 {
		t.Errorf("expected 10, got %d", v)
	}

	if err := count.Set(7); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, _ := doubled.Get(); v != 14 {
		t.Errorf("expected 14 after write, got %d", v)
	}
}

func TestCreateEffect(t *testing.T) {
	rt := New()
	count := NewSignal(rt, 0)

	var seen []int
	CreateEffect(rt, func() error {
		v, err := count.Get()
		seen = append(seen, v)
		return err
	})

	for _, v := range []int{1, 2, 3} {
		if err := count.Set(v); err != nil {
			t.Fatalf("set %d: %v", v, err)
		}
	}

	want := []int{0, 1, 2, 3}
	if len(seen) != len(want) {
		t.Fatalf("expected %d runs, got %d (%v)", len(want), len(seen), seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("run %d: expected %d, got %d", i, want[i], seen[i])
		}
	}
}

func TestDerive(t *testing.T) {
	rt := New()
	a := NewSignal(rt, 2)
	b := NewSignal(rt, 3)

	sum := Derive(rt, []*Signal[int]{a, b}, func(vs []int) (int, error) {
		return vs[0] + vs[1], nil
	})

	if v, _ := sum.Get(); v != 5 {
		t.Errorf("expected 5, got %d", v)
	}
	if err := a.Set(10); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, _ := sum.Get(); v != 13 {
		t.Errorf("expected 13, got %d", v)
	}
}

func TestSelect(t *testing.T) {
	type address struct {
		City string
	}
	type user struct {
		Address address
	}

	rt := New()
	sig := NewSignal(rt, user{Address: address{City: "Oslo"}})
	city := Select(rt, sig, "Address.City")

	v, err := city.Get()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if v != "Oslo" {
		t.Errorf("expected Oslo, got %v", v)
	}
}

func TestBatch(t *testing.T) {
	rt := New()
	a := NewSignal(rt, 0)
	b := NewSignal(rt, 0)

	runs := 0
	CreateEffect(rt, func() error {
		_, errA := a.Get()
		_, errB := b.Get()
		runs++
		return errors.Join(errA, errB)
	})

	rt.Batch(func() {
		a.Set(1)
		b.Set(2)
	})

	if runs != 2 {
		t.Errorf("expected 1 initial run + 1 batched rerun, got %d", runs)
	}
}

// =============================================================================
// Container Tests
// =============================================================================

func TestSliceSignal(t *testing.T) {
	rt := New()
	list := NewSliceSignal(rt, []string{"a", "b"})

	if err := list.Append("c"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if list.Len() != 3 {
		t.Errorf("expected len 3, got %d", list.Len())
	}

	upper := MapSlice(list, func(s string) string { return s + "!" })
	vs, err := upper.Get()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(vs) != 3 || vs[2] != "c!" {
		t.Errorf("unexpected projection %v", vs)
	}
}

func TestMapSignal(t *testing.T) {
	rt := New()
	m := NewMapSignal(rt, map[string]int{"a": 1})

	if err := m.SetKey("b", 2); err != nil {
		t.Fatalf("setkey: %v", err)
	}
	if v, ok := m.GetKey("b"); !ok || v != 2 {
		t.Errorf("expected b=2, got %d (ok=%v)", v, ok)
	}
}

// =============================================================================
// Option and Validation Tests
// =============================================================================

func TestSignalOptions(t *testing.T) {
	rt := New(WithRegistry())
	NewSignal(rt, 0,
		WithName[int]("counter"),
		WithValidatorFunc(func(v int) bool { return v >= 0 }),
	)

	infos := rt.Signals()
	if len(infos) != 1 {
		t.Fatalf("expected 1 registered signal, got %d", len(infos))
	}
	if infos[0].Name != "counter" {
		t.Errorf("expected name counter, got %q", infos[0].Name)
	}
	if infos[0].Kind != KindSignal {
		t.Errorf("expected kind %q, got %q", KindSignal, infos[0].Kind)
	}
}

func TestValidationRejection(t *testing.T) {
	rt := New()
	sig := NewSignal(rt, 1, WithValidatorFunc(func(v int) bool { return v > 0 }))

	err := sig.Set(-5)
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if v, _ := sig.Get(); v != 1 {
		t.Errorf("rejected write mutated value: %d", v)
	}
}

func TestEventHandlers(t *testing.T) {
	rt := New()
	sig := NewSignal(rt, 0)

	var changes []int
	sig.On(EventChange, func(ev Event[int]) {
		changes = append(changes, ev.Value)
	})

	sig.Set(1)
	sig.Set(2)

	if len(changes) != 2 || changes[0] != 1 || changes[1] != 2 {
		t.Errorf("unexpected change events %v", changes)
	}
}

func TestDisposedSignalRejectsWrites(t *testing.T) {
	rt := New()
	sig := NewSignal(rt, 0)
	sig.Dispose()

	if err := sig.Set(1); !errors.Is(err, ErrDisposed) {
		t.Errorf("expected ErrDisposed, got %v", err)
	}
}
