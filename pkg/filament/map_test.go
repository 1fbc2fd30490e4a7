package filament

import (
	"errors"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMapSetGetKey(t *testing.T) {
	rt := newTestRuntime()
	m := NewMapSignal[string, int](rt, nil)

	if err := m.SetKey("a", 1); err != nil {
		t.Fatalf("SetKey failed: %v", err)
	}
	v, ok := m.GetKey("a")
	if !ok || v != 1 {
		t.Errorf("GetKey = %d, %v", v, ok)
	}
	if _, ok := m.GetKey("missing"); ok {
		t.Error("expected ok=false for absent key")
	}
}

func TestMapDeleteAbsentStillNotifies(t *testing.T) {
	rt := newTestRuntime()
	m := NewMapSignal(rt, map[string]int{"a": 1})

	changes := 0
	m.On(EventChange, func(Event[map[string]int]) { changes++ })

	if err := m.DeleteKey("nope"); err != nil {
		t.Fatalf("DeleteKey failed: %v", err)
	}
	if changes != 1 {
		t.Errorf("deleting an absent key should still notify, got %d events", changes)
	}

	m.DeleteKey("a")
	if changes != 2 {
		t.Errorf("expected a second change event, got %d", changes)
	}
	if m.HasKey("a") {
		t.Error("expected a removed")
	}
}

func TestMapUpdateKey(t *testing.T) {
	rt := newTestRuntime()
	m := NewMapSignal(rt, map[string]int{"hits": 1})

	if err := m.UpdateKey("hits", func(n int) int { return n + 1 }); err != nil {
		t.Fatalf("UpdateKey failed: %v", err)
	}
	if v, _ := m.GetKey("hits"); v != 2 {
		t.Errorf("expected 2, got %d", v)
	}

	// Absent keys feed the zero value to fn.
	if err := m.UpdateKey("misses", func(n int) int { return n + 10 }); err != nil {
		t.Fatalf("UpdateKey absent failed: %v", err)
	}
	if v, _ := m.GetKey("misses"); v != 10 {
		t.Errorf("expected 10 from zero value, got %d", v)
	}
}

func TestMapClear(t *testing.T) {
	rt := newTestRuntime()
	m := NewMapSignal(rt, map[string]int{"a": 1, "b": 2})

	changes := 0
	m.On(EventChange, func(Event[map[string]int]) { changes++ })

	if err := m.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if m.Len() != 0 {
		t.Errorf("expected empty after clear, got %d", m.Len())
	}
	if changes != 1 {
		t.Errorf("expected one change event, got %d", changes)
	}

	// Clearing an already-empty map still notifies.
	m.Clear()
	if changes != 2 {
		t.Errorf("expected a second change event, got %d", changes)
	}
}

func TestMapAccessorsTrack(t *testing.T) {
	rt := newTestRuntime()
	m := NewMapSignal[string, int](rt, nil)

	var sizes []int
	CreateEffect(rt, func() error {
		sizes = append(sizes, m.Len())
		return nil
	})

	m.SetKey("a", 1)
	m.SetKey("b", 2)
	if len(sizes) != 3 || sizes[2] != 2 {
		t.Errorf("Len should track, observed %v", sizes)
	}
}

func TestMapSnapshotIsIndependent(t *testing.T) {
	rt := newTestRuntime()
	m := NewMapSignal(rt, map[string]int{"a": 1})

	snap := m.Snapshot()
	snap["a"] = 99
	snap["b"] = 2

	if v, _ := m.GetKey("a"); v != 1 {
		t.Error("mutating the snapshot leaked into the container")
	}
	if m.HasKey("b") {
		t.Error("snapshot insert leaked into the container")
	}
}

func TestMapKeyView(t *testing.T) {
	rt := newTestRuntime()
	m := NewMapSignal[string, int](rt, nil)

	view := m.Get("score")
	got, err := view.Get()
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for absent key, got %v", *got)
	}

	m.SetKey("score", 42)
	got, _ = view.Get()
	if got == nil || *got != 42 {
		t.Errorf("expected view updated to 42, got %v", got)
	}

	m.DeleteKey("score")
	got, _ = view.Get()
	if got != nil {
		t.Errorf("expected nil after delete, got %v", *got)
	}
}

func TestMapEntriesKeysValuesViews(t *testing.T) {
	rt := newTestRuntime()
	m := NewMapSignal(rt, map[string]int{"a": 1, "b": 2})

	entries := m.Entries()
	keys := m.Keys()
	values := m.Values()

	es, _ := entries.Get()
	sort.Slice(es, func(i, j int) bool { return es[i].Key < es[j].Key })
	want := []MapEntry[string, int]{{Key: "a", Value: 1}, {Key: "b", Value: 2}}
	if diff := cmp.Diff(want, es); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}

	ks, _ := keys.Get()
	sort.Strings(ks)
	if diff := cmp.Diff([]string{"a", "b"}, ks); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}

	vs, _ := values.Get()
	sort.Ints(vs)
	if diff := cmp.Diff([]int{1, 2}, vs); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}

	// Views recompute on mutation.
	m.SetKey("c", 3)
	ks, _ = keys.Get()
	if len(ks) != 3 {
		t.Errorf("keys view after insert = %v", ks)
	}
}

func TestMapViewsAreNotCached(t *testing.T) {
	rt := newTestRuntime()
	m := NewMapSignal(rt, map[string]int{"a": 1})

	if m.Get("a") == m.Get("a") {
		t.Error("expected a fresh view per call")
	}
}

func TestMapDispose(t *testing.T) {
	rt := newTestRuntime()
	m := NewMapSignal(rt, map[string]int{"a": 1})

	m.Dispose()
	if err := m.SetKey("b", 2); !errors.Is(err, ErrDisposed) {
		t.Errorf("expected ErrDisposed, got %v", err)
	}
	if err := m.DeleteKey("a"); !errors.Is(err, ErrDisposed) {
		t.Errorf("expected ErrDisposed, got %v", err)
	}
	if m.Len() != 0 {
		t.Errorf("expected zero length after dispose, got %d", m.Len())
	}
}

func TestMapKind(t *testing.T) {
	rt := newTestRuntime()
	m := NewMapSignal(rt, map[string]int{}, WithName[map[string]int]("scores"))

	info := m.Signal().Info()
	if info.Kind != KindMap {
		t.Errorf("expected kind map, got %q", info.Kind)
	}
	if info.Name != "scores" {
		t.Errorf("expected name scores, got %q", info.Name)
	}
}
