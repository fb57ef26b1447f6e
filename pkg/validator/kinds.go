package validator

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Built-in kind names.
const (
	KindChoice = "choice"
	KindDate   = "date"
	KindFile   = "file"
	KindNumber = "number"
	KindPass   = "pass"
)

// Kind is the strategy behind a validator. Configure seeds default values and
// options on a fresh validator; Clean validates the checkable values.
type Kind struct {
	Name      string
	Configure func(v *Validator)
	Clean     func(v *Validator) error
}

// Choice validates option lists: the list and classes key sets must match and
// every list key must be a string.
var Choice = Kind{
	Name: KindChoice,
	Configure: func(v *Validator) {
		v.AddValue("list", map[string]any{})
		v.AddValue("classes", map[string]any{})
	},
	Clean: cleanChoice,
}

// Date validates that the configured date format survives a format and parse
// round trip of the current time.
var Date = Kind{
	Name: KindDate,
	Configure: func(v *Validator) {
		v.AddValue("format", "m/d/Y")
	},
	Clean: cleanDate,
}

// File validates ';' separated extensions and a max size such as "10M".
var File = Kind{
	Name: KindFile,
	Configure: func(v *Validator) {
		v.AddValue("extension_title", "")
		v.AddValue("extensions", "")
		v.AddValue("max", "")
		v.AddOption("size_options", []any{"K", "M", "G"})
	},
	Clean: cleanFile,
}

// Number validates numeric min and max bounds.
var Number = Kind{
	Name: KindNumber,
	Configure: func(v *Validator) {
		v.AddValue("min", 1)
		v.AddValue("max", 100)
		v.AddValue("step", 1)
	},
	Clean: cleanNumber,
}

// Pass accepts anything and is optional by default.
var Pass = Kind{
	Name: KindPass,
	Configure: func(v *Validator) {
		v.AddOption(OptionRequired, false)
	},
	Clean: func(*Validator) error { return nil },
}

func cleanChoice(v *Validator) error {
	list, ok := collectionKeys(v.Value("list"))
	if !ok {
		return fmt.Errorf("%w: list must be a collection", ErrInvalidValue)
	}
	classes, ok := collectionKeys(v.Value("classes"))
	if !ok {
		return fmt.Errorf("%w: classes must be a collection", ErrInvalidValue)
	}

	if len(list) != len(classes) {
		return fmt.Errorf("%w: arrays list and classes must match each other", ErrInvalidValue)
	}
	for key := range list {
		if _, ok := classes[key]; !ok {
			return fmt.Errorf("%w: arrays list and classes must match each other", ErrInvalidValue)
		}
	}

	for key := range list {
		if _, ok := key.(string); !ok {
			return fmt.Errorf("%w: the key %v must be a string", ErrInvalidValue, key)
		}
	}
	return nil
}

func cleanDate(v *Validator) error {
	format, _ := v.Value("format").(string)
	if format == "" {
		return fmt.Errorf("%w: date format is empty", ErrInvalidValue)
	}

	now := v.Now()
	formatted, err := FormatDate(format, now)
	if err != nil {
		return err
	}
	parsed, err := ParseDate(format, formatted, now)
	if err != nil {
		return fmt.Errorf("%w: date format %q does not parse its own output: %v", ErrInvalidValue, format, err)
	}
	if again, _ := FormatDate(format, parsed); again != formatted {
		return fmt.Errorf("%w: date format %q is not reversible", ErrInvalidValue, format)
	}
	return nil
}

var extensionPattern = regexp.MustCompile(`[a-zA-Z0-9]`)

func cleanFile(v *Validator) error {
	extensions, _ := v.Value("extensions").(string)
	for _, extension := range strings.Split(extensions, ";") {
		if extension != "" && !extensionPattern.MatchString(extension) {
			return fmt.Errorf("%w: %s is not supported", ErrInvalidValue, extension)
		}
	}

	var limit string
	if raw := v.Value("max"); raw != nil {
		limit = fmt.Sprint(raw)
	}
	if limit == "" {
		return fmt.Errorf("%w: incorrect file size %q", ErrInvalidValue, limit)
	}
	size, unit := limit[:len(limit)-1], limit[len(limit)-1:]

	if !isNumeric(size) || !containsString(toStrings(v.Option("size_options")), unit) {
		return fmt.Errorf("%w: incorrect file size %q", ErrInvalidValue, limit)
	}
	return nil
}

func cleanNumber(v *Validator) error {
	if !isNumeric(v.Value("max")) {
		return fmt.Errorf("%w: max is not numeric", ErrInvalidValue)
	}
	if !isNumeric(v.Value("min")) {
		return fmt.Errorf("%w: min is not numeric", ErrInvalidValue)
	}
	return nil
}

func containsString(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}

type kindRegistry struct {
	mu    sync.RWMutex
	kinds map[string]Kind
}

var kinds = &kindRegistry{kinds: map[string]Kind{
	KindChoice: Choice,
	KindDate:   Date,
	KindFile:   File,
	KindNumber: Number,
	KindPass:   Pass,
}}

// Register adds a kind by name. Duplicate names return an error.
func Register(kind Kind) error {
	name := strings.TrimSpace(kind.Name)
	if name == "" {
		return fmt.Errorf("validator: kind name is required")
	}
	if kind.Clean == nil {
		return fmt.Errorf("validator: kind %q has no clean rule", name)
	}

	kinds.mu.Lock()
	defer kinds.mu.Unlock()

	if _, exists := kinds.kinds[name]; exists {
		return fmt.Errorf("validator: kind %q already registered", name)
	}
	kinds.kinds[name] = kind
	return nil
}

// Lookup returns the kind registered under name.
func Lookup(name string) (Kind, bool) {
	kinds.mu.RLock()
	defer kinds.mu.RUnlock()

	kind, ok := kinds.kinds[strings.TrimSpace(name)]
	return kind, ok
}

// Kinds returns the sorted registered kind names.
func Kinds() []string {
	kinds.mu.RLock()
	defer kinds.mu.RUnlock()

	names := make([]string, 0, len(kinds.kinds))
	for name := range kinds.kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Declared returns the value keys a kind seeds, sorted.
func Declared(kind Kind) []string {
	probe := &Validator{kind: kind, values: make(map[string]any), options: baseOptions()}
	if kind.Configure != nil {
		kind.Configure(probe)
	}
	keys := make([]string, 0, len(probe.values))
	for key := range probe.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
