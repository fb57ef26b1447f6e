package testsupport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formwizard/pkg/fields"
)

// DefaultValues returns the default value table used across package tests.
func DefaultValues() fields.DefaultValues {
	return fields.DefaultValues{
		fields.TypeNumber: {"min": 1, "max": 100, "step": 1},
		fields.TypeYear:   {"min": 1900, "max": 2100, "step": 1},
		fields.TypeRange:  {"min": 0, "max": 100, "step": 1},
		fields.TypeSelect: {
			"list":    map[string]any{"home": "Home", "work": "Work"},
			"classes": map[string]any{"home": "", "work": ""},
		},
		fields.TypeCheckboxes: {"list": map[string]any{}, "classes": map[string]any{}},
		fields.TypeRadio:      {"list": map[string]any{}, "classes": map[string]any{}},
		fields.TypeDate:       {"format": "m/d/Y"},
		fields.TypeFile:       {"extension_title": "Images", "extensions": "jpg;png", "max": "10M"},
		fields.TypeAttach:     {"extension_title": "Documents", "extensions": "pdf", "max": "2M"},
		fields.TypeString:     {"title": ""},
		fields.TypeBool:       {"title": ""},
	}
}

// ProfileDocument returns a two-parent schema: an address group and a
// content group.
func ProfileDocument() fields.Document {
	return fields.Document{
		Widget:     fields.StrategySchema,
		Validator:  fields.StrategySorted,
		FormFormat: "html",
		Decorator:  fields.DecoratorDefault,
		FieldsTypes: map[string]map[string]string{
			"address": {
				"street": fields.TypeString,
				"number": fields.TypeNumber,
				"kind":   fields.TypeSelect,
			},
			"content": {
				"body":      fields.TypeString,
				"published": fields.TypeDate,
			},
		},
		FieldsValues: map[string]map[string]fields.Values{
			"address": {
				"number": {"min": 5, "bogus": true},
			},
		},
		FieldsAdvanced: map[string]any{
			fields.TypeNumber: map[string]any{"placeholder": "0"},
		},
		FieldsLabels: map[string]string{
			"street":    "Street",
			"number":    "Number",
			"kind":      "Kind",
			"body":      "Body",
			"published": "Published on",
		},
		FieldsOrder: map[string][]string{
			"address": {"street", "number", "kind"},
		},
	}
}

// ProfileSchema wraps ProfileDocument.
func ProfileSchema() *fields.Schema {
	return fields.NewSchema(ProfileDocument())
}

// MustFactory builds a factory or fails the test.
func MustFactory(t *testing.T, src fields.Source, defaults fields.DefaultValues, opts ...fields.Option) *fields.Factory {
	t.Helper()

	factory, err := fields.NewFactory(src, defaults, opts...)
	if err != nil {
		t.Fatalf("new factory: %v", err)
	}
	return factory
}

// WriteGolden writes arbitrary data to a golden file when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// CompareJSONGolden decodes the golden file and the JSON form of got into
// generic values and returns their diff. Formatting differences are ignored.
func CompareJSONGolden(t *testing.T, path string, got any) string {
	t.Helper()

	want, err := decodeGeneric(MustReadGolden(t, path))
	if err != nil {
		t.Fatalf("decode golden %s: %v", path, err)
	}
	payload, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal value: %v", err)
	}
	have, err := decodeGeneric(payload)
	if err != nil {
		t.Fatalf("decode value: %v", err)
	}
	return cmp.Diff(want, have)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteTempFile writes data under t.TempDir and returns the path.
func WriteTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

func decodeGeneric(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, errors.New("testsupport: empty payload")
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("testsupport: unmarshal: %w", err)
	}
	return out, nil
}
