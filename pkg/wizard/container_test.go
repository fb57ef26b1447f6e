package wizard_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formwizard/pkg/scheme"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

func TestMemoryContainer_DottedPaths(t *testing.T) {
	c := wizard.NewMemoryContainer(scheme.NewID())

	if err := c.Set("address.street", "Main"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.Set("address.geo.lat", 40.4); err != nil {
		t.Fatalf("set nested: %v", err)
	}
	if !c.Exists("address.geo") || c.Exists("address.zip") {
		t.Fatalf("exists mismatch")
	}
	if got := c.Get("address.street", nil); got != "Main" {
		t.Fatalf("expected Main, got %v", got)
	}
	if got := c.Get("address.zip", "none"); got != "none" {
		t.Fatalf("expected default, got %v", got)
	}
	if err := c.Set("address..zip", 1); !errors.Is(err, wizard.ErrInvalidPath) {
		t.Fatalf("expected ErrInvalidPath, got %v", err)
	}
}

func TestMemoryContainer_SaveLoadReset(t *testing.T) {
	ctx := context.Background()
	backend := wizard.NewMemoryBackend()
	id := scheme.NewID()

	writer := backend.Container(id)
	if err := writer.Set("content.body", "hello"); err != nil {
		t.Fatalf("set: %v", err)
	}

	reader := backend.Container(id)
	if err := reader.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if reader.Exists("content.body") {
		t.Fatalf("unsaved values must not be visible")
	}

	if err := writer.Save(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := reader.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := reader.Get("content.body", nil); got != "hello" {
		t.Fatalf("expected committed value, got %v", got)
	}

	writer.UnsetAll()
	if writer.Exists("content.body") {
		t.Fatalf("UnsetAll should clear the working set")
	}

	if err := reader.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	other := backend.Container(id)
	if err := other.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(other.Values()) != 0 {
		t.Fatalf("expected reset backend, got %v", other.Values())
	}
}

func TestFlattenExpand(t *testing.T) {
	nested := map[string]any{
		"address": map[string]any{"street": "Main", "geo": map[string]any{"lat": 1.5}},
		"empty":   map[string]any{},
		"tags":    []any{"a", "b"},
	}
	flat := wizard.Flatten(nested)
	want := map[string]any{
		"address.street":  "Main",
		"address.geo.lat": 1.5,
		"empty":           map[string]any{},
		"tags":            []any{"a", "b"},
	}
	if diff := cmp.Diff(want, flat); diff != "" {
		t.Fatalf("flatten mismatch (-want +got):\n%s", diff)
	}

	back, err := wizard.Expand(flat)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if diff := cmp.Diff(nested, back); diff != "" {
		t.Fatalf("expand mismatch (-want +got):\n%s", diff)
	}
}
