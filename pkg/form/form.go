// Package form is the sink element hooks push generated widgets, validators
// and defaults into.
package form

import (
	"sort"
	"sync"

	"github.com/goliatone/go-formwizard/pkg/fields"
)

// Sink receives the widgets, validators and defaults produced while a step is
// prepared. The core never reads from it.
type Sink interface {
	SetWidgets(widgets map[string]fields.WidgetGroup)
	AddWidgets(widgets map[string]fields.WidgetGroup)
	AddValidators(validators map[string]fields.ValidatorGroup)
	AddDefaults(defaults map[string]any)
}

// Form is the default Sink. It keeps widget and validator groups by name and
// a defaults map seeded at construction.
type Form struct {
	mu         sync.RWMutex
	name       string
	seed       map[string]any
	defaults   map[string]any
	widgets    map[string]fields.WidgetGroup
	validators map[string]fields.ValidatorGroup
}

var _ Sink = (*Form)(nil)

// New creates a form. defaults seeds the values AddDefaults merges onto.
func New(name string, defaults map[string]any) *Form {
	return &Form{
		name:       name,
		seed:       cloneMap(defaults),
		defaults:   cloneMap(defaults),
		widgets:    make(map[string]fields.WidgetGroup),
		validators: make(map[string]fields.ValidatorGroup),
	}
}

// Name returns the form name.
func (f *Form) Name() string { return f.name }

// SetWidgets replaces every widget group.
func (f *Form) SetWidgets(widgets map[string]fields.WidgetGroup) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.widgets = make(map[string]fields.WidgetGroup, len(widgets))
	for name, group := range widgets {
		f.widgets[name] = group
	}
}

// AddWidgets sets each widget group by name.
func (f *Form) AddWidgets(widgets map[string]fields.WidgetGroup) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for name, group := range widgets {
		f.widgets[name] = group
	}
}

// AddValidators sets each validator group by name.
func (f *Form) AddValidators(validators map[string]fields.ValidatorGroup) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for name, group := range validators {
		f.validators[name] = group
	}
}

// AddDefaults merges defaults onto the constructor defaults. Without
// constructor defaults the given map replaces the current one.
func (f *Form) AddDefaults(defaults map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.seed) == 0 {
		f.defaults = cloneMap(defaults)
		return
	}
	merged := cloneMap(f.seed)
	for k, v := range defaults {
		merged[k] = v
	}
	f.defaults = merged
}

// Widgets returns a copy of the widget groups.
func (f *Form) Widgets() map[string]fields.WidgetGroup {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make(map[string]fields.WidgetGroup, len(f.widgets))
	for k, v := range f.widgets {
		out[k] = v
	}
	return out
}

// Validators returns a copy of the validator groups.
func (f *Form) Validators() map[string]fields.ValidatorGroup {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make(map[string]fields.ValidatorGroup, len(f.validators))
	for k, v := range f.validators {
		out[k] = v
	}
	return out
}

// Defaults returns a copy of the current defaults.
func (f *Form) Defaults() map[string]any {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return cloneMap(f.defaults)
}

// Check runs every validator group and returns the failures keyed by
// "group.field". It returns nil when every validator passed.
func (f *Form) Check() map[string]error {
	groups := f.Validators()
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	var failures map[string]error
	for _, name := range names {
		for field, err := range groups[name].Check() {
			if failures == nil {
				failures = make(map[string]error)
			}
			failures[name+"."+field] = err
		}
	}
	return failures
}

func cloneMap(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
