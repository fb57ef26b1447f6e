package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formwizard/internal/store"
	"github.com/goliatone/go-formwizard/pkg/scheme"
)

func openStore(t *testing.T, opts ...store.Option) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "state", "wizard.db"), opts...)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_ContainerRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	id := scheme.NewID()

	c := s.Container(id)
	for key, value := range map[string]any{
		"address.street": "Main",
		"address.number": 42,
		"content.tags":   []any{"a", "b"},
		"_scheme":        id.String(),
	} {
		if err := c.Set(key, value); err != nil {
			t.Fatalf("set %s: %v", key, err)
		}
	}
	if err := c.Save(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}

	restored := s.Container(id)
	if err := restored.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	want := map[string]any{
		"address": map[string]any{"street": "Main", "number": 42.0},
		"content": map[string]any{"tags": []any{"a", "b"}},
		"_scheme": id.String(),
	}
	if diff := cmp.Diff(want, restored.Values()); diff != "" {
		t.Fatalf("restored values mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_CommitReplacesPreviousRows(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	id := scheme.NewID()

	if err := s.Commit(ctx, id, map[string]any{"a": map[string]any{"x": 1, "y": 2}}); err != nil {
		t.Fatalf("first commit: %v", err)
	}
	if err := s.Commit(ctx, id, map[string]any{"a": map[string]any{"x": 3}}); err != nil {
		t.Fatalf("second commit: %v", err)
	}

	got, err := s.Fetch(ctx, id)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"a": map[string]any{"x": 3.0}}, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_SchemesAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	first, second := scheme.NewID(), scheme.NewID()

	if err := s.Commit(ctx, first, map[string]any{"k": "one"}); err != nil {
		t.Fatalf("commit first: %v", err)
	}
	if err := s.Commit(ctx, second, map[string]any{"k": "two"}); err != nil {
		t.Fatalf("commit second: %v", err)
	}

	ids, err := s.Schemes(ctx)
	if err != nil {
		t.Fatalf("schemes: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 schemes, got %v", ids)
	}

	if err := s.Reset(ctx, first); err != nil {
		t.Fatalf("reset: %v", err)
	}
	got, err := s.Fetch(ctx, first)
	if err != nil {
		t.Fatalf("fetch first: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected first scheme cleared, got %v", got)
	}
	got, err = s.Fetch(ctx, second)
	if err != nil {
		t.Fatalf("fetch second: %v", err)
	}
	if got["k"] != "two" {
		t.Fatalf("second scheme affected by reset: %v", got)
	}
}

func TestStore_UpdatedAtUsesClock(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := openStore(t, store.WithClock(func() time.Time { return fixed }))
	id := scheme.NewID()

	if _, ok, err := s.UpdatedAt(ctx, id); err != nil || ok {
		t.Fatalf("expected no rows, got ok=%v err=%v", ok, err)
	}
	if err := s.Commit(ctx, id, map[string]any{"k": true}); err != nil {
		t.Fatalf("commit: %v", err)
	}
	stamp, ok, err := s.UpdatedAt(ctx, id)
	if err != nil || !ok {
		t.Fatalf("updated_at: ok=%v err=%v", ok, err)
	}
	if !stamp.Equal(fixed) {
		t.Fatalf("want %v, got %v", fixed, stamp)
	}
}

func TestStore_Closed(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "wizard.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := s.Fetch(context.Background(), scheme.NewID()); !errors.Is(err, store.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if err := s.Close(); !errors.Is(err, store.ErrClosed) {
		t.Fatalf("expected ErrClosed on second close, got %v", err)
	}
}

func TestStore_CancelledContext(t *testing.T) {
	s := openStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Commit(ctx, scheme.NewID(), map[string]any{"k": 1}); err == nil {
		t.Fatalf("expected error on cancelled context")
	}
}
