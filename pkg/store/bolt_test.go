package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

// mustTempBolt returns a Bolt store backed by a file in the test's temp
// directory, closed when the test ends.
func mustTempBolt(t *testing.T) *Bolt {
	t.Helper()
	st, err := NewBolt(filepath.Join(t.TempDir(), "filament.db"))
	if err != nil {
		t.Fatalf("NewBolt failed: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestBoltStoreRoundTrip(t *testing.T) {
	st := mustTempBolt(t)
	ctx := context.Background()

	if err := st.Save(ctx, "profile", `{"name":"ada"}`); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	v, ok, err := st.Load(ctx, "profile")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !ok || v != `{"name":"ada"}` {
		t.Errorf("Load = %q, %v", v, ok)
	}

	if _, ok, _ := st.Load(ctx, "missing"); ok {
		t.Error("Load reported a missing key present")
	}

	if err := st.Delete(ctx, "profile"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := st.Load(ctx, "profile"); ok {
		t.Error("key still present after Delete")
	}
}

func TestBoltStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filament.db")
	ctx := context.Background()

	st, err := NewBolt(path)
	if err != nil {
		t.Fatalf("NewBolt failed: %v", err)
	}
	st.Save(ctx, "counter", "42")
	st.Close()

	reopened, err := NewBolt(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	v, ok, err := reopened.Load(ctx, "counter")
	if err != nil || !ok || v != "42" {
		t.Errorf("Load after reopen = %q, %v, %v", v, ok, err)
	}
}

func TestBoltStoreClosed(t *testing.T) {
	st := mustTempBolt(t)
	ctx := context.Background()

	if err := st.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}

	if err := st.Save(ctx, "k", "v"); !errors.Is(err, ErrClosed) {
		t.Errorf("Save after Close = %v", err)
	}
	if _, _, err := st.Load(ctx, "k"); !errors.Is(err, ErrClosed) {
		t.Errorf("Load after Close = %v", err)
	}
}
