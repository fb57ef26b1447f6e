package validator

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
)

const (
	kindNull    = "null"
	kindBoolean = "boolean"
	kindNumber  = "number"
	kindString  = "string"
	kindArray   = "array"
	kindObject  = "object"
)

// valueKind classifies a value the way the type-guarded merge compares it.
// Integers and floats share one kind because decoded documents do not keep
// them apart reliably; slices and maps share the array kind.
func valueKind(value any) string {
	switch value.(type) {
	case nil:
		return kindNull
	case bool:
		return kindBoolean
	case string:
		return kindString
	case json.Number:
		return kindNumber
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return kindNumber
	case reflect.Slice, reflect.Array, reflect.Map:
		return kindArray
	case reflect.String:
		return kindString
	case reflect.Bool:
		return kindBoolean
	default:
		return kindObject
	}
}

// mergeTyped overlays input on defaults. A key present in both with non-nil
// values of different kinds aborts the merge.
func mergeTyped(defaults, input map[string]any) (map[string]any, error) {
	out := cloneMap(defaults)
	if len(input) == 0 {
		return out, nil
	}

	keys := make([]string, 0, len(input))
	for key := range input {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := input[key]
		if current, ok := defaults[key]; ok && current != nil && value != nil {
			want, got := valueKind(current), valueKind(value)
			if want != got {
				return nil, fmt.Errorf("%w: element with key %q has incorrect type value (want %s, got %s)", ErrTypeMismatch, key, want, got)
			}
		}
		out[key] = value
	}
	return out, nil
}

// isEmpty reports whether value is nil, an empty string, an empty collection,
// or a collection whose every element is itself empty.
func isEmpty(value any) bool {
	switch typed := value.(type) {
	case nil:
		return true
	case string:
		return typed == ""
	case map[string]any:
		for _, item := range typed {
			if !isEmpty(item) {
				return false
			}
		}
		return true
	case []any:
		for _, item := range typed {
			if !isEmpty(item) {
				return false
			}
		}
		return true
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if !isEmpty(rv.Index(i).Interface()) {
				return false
			}
		}
		return true
	case reflect.Map:
		iter := rv.MapRange()
		for iter.Next() {
			if !isEmpty(iter.Value().Interface()) {
				return false
			}
		}
		return true
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

var numericPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// isNumeric accepts numbers and numeric strings.
func isNumeric(value any) bool {
	if s, ok := value.(string); ok {
		return numericPattern.MatchString(strings.TrimSpace(s))
	}
	_, ok := toFloat(value)
	return ok
}

func toFloat(value any) (float64, bool) {
	switch typed := value.(type) {
	case json.Number:
		f, err := typed.Float64()
		return f, err == nil
	case string:
		return 0, false
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}

// collectionKeys returns the keys of a map or the indices of a slice. The
// second result is false when value is not a collection.
func collectionKeys(value any) (map[any]struct{}, bool) {
	switch typed := value.(type) {
	case nil:
		return map[any]struct{}{}, true
	case map[string]any:
		out := make(map[any]struct{}, len(typed))
		for key := range typed {
			out[key] = struct{}{}
		}
		return out, true
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Map:
		out := make(map[any]struct{}, rv.Len())
		for _, key := range rv.MapKeys() {
			out[key.Interface()] = struct{}{}
		}
		return out, true
	case reflect.Slice, reflect.Array:
		out := make(map[any]struct{}, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = struct{}{}
		}
		return out, true
	default:
		return nil, false
	}
}

func toStrings(value any) []string {
	switch typed := value.(type) {
	case []string:
		return typed
	case string:
		return []string{typed}
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}
	out := make([]string, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out = append(out, fmt.Sprint(rv.Index(i).Interface()))
	}
	return out
}

