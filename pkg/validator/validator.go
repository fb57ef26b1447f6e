package validator

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Option keys shared by every validator kind.
const (
	OptionRequired    = "required"
	OptionTrim        = "trim"
	OptionEmptyValues = "empty_values"
)

// Default field keys carried by generated field payloads.
const (
	KeyTitle  = "title"
	KeyType   = "type"
	KeyValues = "values"
)

// DefaultFieldKeys lists the keys every generated field payload may carry in
// addition to the kind-specific values.
var DefaultFieldKeys = []string{KeyTitle, KeyType, KeyValues}

// Clock returns the current time. The date kind reads it during Check.
type Clock func() time.Time

// Option customises a validator before its kind is configured.
type Option func(*Validator)

// WithClock overrides the time source used by time-dependent kinds.
func WithClock(clock Clock) Option {
	return func(v *Validator) {
		if clock != nil {
			v.clock = clock
		}
	}
}

// Validator holds the values and options of a single field constraint. It is
// not safe for concurrent mutation; each instance belongs to one call chain.
type Validator struct {
	kind        Kind
	values      map[string]any
	options     map[string]any
	notValidate map[string]bool
	clock       Clock
}

// New constructs a validator of the given kind. The kind seeds its default
// values and options first, then the caller's values and options are merged
// on top. Keys the kind does not declare fail with ErrUnsupportedKey unless
// they are flagged in notValidate; values whose kind differs from the default
// fail with ErrTypeMismatch. No partially built validator is returned.
func New(kind Kind, values, options map[string]any, notValidate map[string]bool, opts ...Option) (*Validator, error) {
	if kind.Name == "" || kind.Clean == nil {
		return nil, fmt.Errorf("%w: kind is not configured", ErrUnknownKind)
	}

	v := &Validator{
		kind:        kind,
		values:      make(map[string]any),
		options:     baseOptions(),
		notValidate: cloneFlags(notValidate),
		clock:       time.Now,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(v)
	}
	if kind.Configure != nil {
		kind.Configure(v)
	}

	if unknown := unknownKeys(values, v.values, v.notValidate); len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %s does not support the following values key: %s", ErrUnsupportedKey, kind.Name, quoteKeys(unknown))
	}
	if unknown := unknownKeys(options, v.options, nil); len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %s does not support the following option: %s", ErrUnsupportedKey, kind.Name, quoteKeys(unknown))
	}

	merged, err := mergeTyped(v.values, values)
	if err != nil {
		return nil, err
	}
	v.values = merged

	mergedOptions, err := mergeTyped(v.options, options)
	if err != nil {
		return nil, err
	}
	v.options = mergedOptions

	return v, nil
}

// Build looks up a registered kind by name and constructs a validator.
func Build(name string, values, options map[string]any, notValidate map[string]bool, opts ...Option) (*Validator, error) {
	kind, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
	return New(kind, values, options, notValidate, opts...)
}

func baseOptions() map[string]any {
	return map[string]any{
		OptionRequired:    true,
		OptionTrim:        false,
		OptionEmptyValues: true,
	}
}

// Type reports the kind name.
func (v *Validator) Type() string {
	return v.kind.Name
}

// Value returns the named value or nil when absent.
func (v *Validator) Value(name string) any {
	return v.values[name]
}

// AddValue declares a value with its default. Kinds call it from Configure;
// it is the only way to introduce a new key.
func (v *Validator) AddValue(name string, value any) *Validator {
	v.values[name] = value
	return v
}

// SetValue changes an existing value.
func (v *Validator) SetValue(name string, value any) error {
	if _, ok := v.values[name]; !ok {
		return fmt.Errorf("%w: %s does not support the following value: '%s'", ErrUnsupportedKey, v.kind.Name, name)
	}
	v.values[name] = value
	return nil
}

// HasValue reports whether the named value is set to a non-nil value.
func (v *Validator) HasValue(name string) bool {
	value, ok := v.values[name]
	return ok && value != nil
}

// Values returns a copy of all values.
func (v *Validator) Values() map[string]any {
	return cloneMap(v.values)
}

// SetValues replaces all values.
func (v *Validator) SetValues(values map[string]any) {
	v.values = cloneMap(values)
}

// Option returns the named option or nil when absent.
func (v *Validator) Option(name string) any {
	return v.options[name]
}

// AddOption declares an option with its default.
func (v *Validator) AddOption(name string, value any) *Validator {
	v.options[name] = value
	return v
}

// SetOption changes an existing option.
func (v *Validator) SetOption(name string, value any) error {
	if _, ok := v.options[name]; !ok {
		return fmt.Errorf("%w: %s does not support the following option: '%s'", ErrUnsupportedKey, v.kind.Name, name)
	}
	v.options[name] = value
	return nil
}

// HasOption reports whether the named option is set to a non-nil value.
func (v *Validator) HasOption(name string) bool {
	value, ok := v.options[name]
	return ok && value != nil
}

// Options returns a copy of all options.
func (v *Validator) Options() map[string]any {
	return cloneMap(v.options)
}

// SetOptions replaces all options.
func (v *Validator) SetOptions(options map[string]any) {
	v.options = cloneMap(options)
}

// NotValidate returns the keys excluded from Check.
func (v *Validator) NotValidate() map[string]bool {
	return cloneFlags(v.notValidate)
}

// Now returns the validator clock reading.
func (v *Validator) Now() time.Time {
	return v.clock()
}

// Check cleans the validator values. Keys flagged in notValidate are removed
// first and string values are trimmed when the trim option is set. An empty
// checkable set fails with ErrRequiredValueMissing when required, otherwise
// the empty_values option is returned without running the kind's clean rule.
// A successful clean returns true.
func (v *Validator) Check() (any, error) {
	clean := v.checkable()

	if truthy(v.options[OptionTrim]) {
		for key, value := range clean {
			if s, ok := value.(string); ok {
				clean[key] = strings.TrimSpace(s)
			}
		}
	}

	if isEmpty(clean) {
		if truthy(v.options[OptionRequired]) {
			return nil, fmt.Errorf("%w: %s", ErrRequiredValueMissing, v.kind.Name)
		}
		return v.options[OptionEmptyValues], nil
	}

	v.values = clean
	if err := v.kind.Clean(v); err != nil {
		return nil, err
	}
	return true, nil
}

func (v *Validator) checkable() map[string]any {
	out := make(map[string]any, len(v.values))
	for key, value := range v.values {
		if v.notValidate[key] {
			continue
		}
		out[key] = value
	}
	return out
}

func unknownKeys(input, declared map[string]any, exempt map[string]bool) []string {
	var out []string
	for key := range input {
		if exempt[key] {
			continue
		}
		if _, ok := declared[key]; !ok {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

func quoteKeys(keys []string) string {
	return "'" + strings.Join(keys, "', '") + "'"
}

func cloneMap(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func cloneFlags(src map[string]bool) map[string]bool {
	out := make(map[string]bool, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func truthy(value any) bool {
	switch typed := value.(type) {
	case bool:
		return typed
	case nil:
		return false
	case string:
		return typed != "" && typed != "0"
	default:
		if f, ok := toFloat(typed); ok {
			return f != 0
		}
		return !isEmpty(typed)
	}
}
