package fields

import (
	"sort"

	"github.com/goliatone/go-formwizard/pkg/validator"
)

// Widget describes how one field is presented and edited.
type Widget struct {
	Key      string `json:"key"`
	Type     string `json:"type"`
	Label    string `json:"label,omitempty"`
	Format   string `json:"format"`
	Values   Values `json:"values"`
	Advanced any    `json:"advanced,omitempty"`
}

// WidgetBuilder constructs the widget of one field from its resolved values.
// The factory fills Key, Type and Format, and fills Label and Advanced when
// the builder leaves them empty.
type WidgetBuilder func(key, fieldType string, values Values) Widget

// BuildWidget is used for field types without a registered builder.
func BuildWidget(key, fieldType string, values Values) Widget {
	return Widget{Key: key, Type: fieldType, Values: values}
}

// WidgetGroup holds the widgets generated for one parent key.
type WidgetGroup struct {
	Name      string            `json:"name"`
	Format    string            `json:"format"`
	Strategy  string            `json:"strategy"`
	Decorator string            `json:"decorator"`
	Widgets   map[string]Widget `json:"widgets"`
	Order     []string          `json:"order"`
	Meta      map[string]string `json:"meta,omitempty"`
}

// Ordered returns the widgets following Order.
func (g WidgetGroup) Ordered() []Widget {
	out := make([]Widget, 0, len(g.Order))
	for _, key := range g.Order {
		if widget, ok := g.Widgets[key]; ok {
			out = append(out, widget)
		}
	}
	return out
}

// ValidatorGroup holds the validators generated for one parent key.
type ValidatorGroup struct {
	Name       string                          `json:"name"`
	Decorator  string                          `json:"decorator"`
	Validators map[string]*validator.Validator `json:"-"`
	Order      []string                        `json:"order"`
	Meta       map[string]string               `json:"meta,omitempty"`
}

// Check runs every validator of the group. Each field is checked on its own;
// a failing field never stops its siblings. The returned map only holds the
// failing keys and is nil when every field passed.
func (g ValidatorGroup) Check() map[string]error {
	var failures map[string]error
	for _, key := range g.keys() {
		v := g.Validators[key]
		if v == nil {
			continue
		}
		if _, err := v.Check(); err != nil {
			if failures == nil {
				failures = make(map[string]error)
			}
			failures[key] = err
		}
	}
	return failures
}

func (g ValidatorGroup) keys() []string {
	if len(g.Order) == len(g.Validators) {
		return g.Order
	}
	return sortedKeys(g.Validators)
}

// Strategy orders the fields of a group. preferred is the source's declared
// order for the parent key, when it has one.
type Strategy struct {
	Name  string
	Order func(keys, preferred []string) []string
}

// Built-in strategy names.
const (
	StrategySchema = "schema"
	StrategySorted = "sorted"
)

// SchemaStrategy keeps the declared order, appending undeclared keys sorted.
var SchemaStrategy = Strategy{
	Name: StrategySchema,
	Order: func(keys, preferred []string) []string {
		present := make(map[string]bool, len(keys))
		for _, key := range keys {
			present[key] = true
		}
		out := make([]string, 0, len(keys))
		for _, key := range preferred {
			if present[key] {
				out = append(out, key)
				delete(present, key)
			}
		}
		rest := make([]string, 0, len(present))
		for key := range present {
			rest = append(rest, key)
		}
		sort.Strings(rest)
		return append(out, rest...)
	},
}

// SortedStrategy orders fields by key.
var SortedStrategy = Strategy{
	Name: StrategySorted,
	Order: func(keys, _ []string) []string {
		out := append([]string(nil), keys...)
		sort.Strings(out)
		return out
	},
}
