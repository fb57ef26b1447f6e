// Package elements holds concrete wizard elements.
package elements

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-formwizard/pkg/fields"
	"github.com/goliatone/go-formwizard/pkg/form"
	"github.com/goliatone/go-formwizard/pkg/prompt"
	"github.com/goliatone/go-formwizard/pkg/scheme"
	"github.com/goliatone/go-formwizard/pkg/validator"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

// SchemeKey is the container key FieldGroup.Save stamps with the scheme id.
const SchemeKey = "_scheme"

// Option customises a FieldGroup.
type Option func(*FieldGroup)

// WithPrompter makes ProcessRequest ask for every field of the group.
func WithPrompter(driver prompt.Driver) Option {
	return func(g *FieldGroup) {
		g.prompter = driver
	}
}

// WithLogger sets the logger used for lifecycle traces.
func WithLogger(logger *slog.Logger) Option {
	return func(g *FieldGroup) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// FieldGroup is the element for one parent key of a factory. Its values live
// in the container under "parent.child".
type FieldGroup struct {
	wizard.BaseElement

	parent     string
	widgets    fields.WidgetGroup
	validators fields.ValidatorGroup
	prompter   prompt.Driver
	logger     *slog.Logger

	step   string
	values map[string]any
}

var _ wizard.Element = (*FieldGroup)(nil)

// NewFieldGroup binds an element to parent. The factory must have generated
// groups for it.
func NewFieldGroup(factory *fields.Factory, parent string, opts ...Option) (*FieldGroup, error) {
	if factory == nil {
		return nil, fmt.Errorf("elements: factory is required")
	}
	widgets, ok := factory.WidgetGroup(parent)
	if !ok {
		return nil, fmt.Errorf("elements: no widgets generated for %q", parent)
	}
	validators, _ := factory.ValidatorGroup(parent)

	g := &FieldGroup{
		parent:     parent,
		widgets:    widgets,
		validators: validators,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		values:     make(map[string]any),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g, nil
}

// Parent returns the parent key the element is bound to.
func (g *FieldGroup) Parent() string { return g.parent }

// Step returns the step name recorded by Configure.
func (g *FieldGroup) Step() string { return g.step }

// Values returns a copy of the present values.
func (g *FieldGroup) Values() map[string]any {
	out := make(map[string]any, len(g.values))
	for k, v := range g.values {
		out[k] = v
	}
	return out
}

// Path returns the container key of child.
func (g *FieldGroup) Path(child string) string {
	return g.parent + "." + child
}

// ProcessRequest asks for every field when a prompter is configured and
// writes the answers into the container.
func (g *FieldGroup) ProcessRequest(ctx context.Context, c wizard.Container) error {
	if g.prompter == nil {
		return nil
	}
	for _, widget := range g.widgets.Ordered() {
		value, err := g.ask(ctx, widget, c.Get(g.Path(widget.Key), nil))
		if err != nil {
			return fmt.Errorf("elements: ask %s: %w", g.Path(widget.Key), err)
		}
		if err := c.Set(g.Path(widget.Key), value); err != nil {
			return err
		}
	}
	return nil
}

// Init loads the present values of the group from the container.
func (g *FieldGroup) Init(_ context.Context, id scheme.ID, c wizard.Container) error {
	g.values = make(map[string]any)
	for _, key := range g.widgets.Order {
		if c.Exists(g.Path(key)) {
			g.values[key] = c.Get(g.Path(key), nil)
		}
	}
	g.logger.Debug("field group initialised", "parent", g.parent, "scheme", id.String(), "values", len(g.values))
	return nil
}

// Configure pushes the group's widgets and validators into the form and its
// present values as defaults.
func (g *FieldGroup) Configure(_ context.Context, f form.Sink, step string, _ wizard.Container) error {
	g.step = step
	f.AddWidgets(map[string]fields.WidgetGroup{g.parent: g.widgets})
	f.AddValidators(map[string]fields.ValidatorGroup{g.parent: g.validators})
	f.AddDefaults(map[string]any{g.parent: g.Values()})
	return nil
}

// Save refreshes the present values from the container, writes them back
// under the group's paths and stamps the scheme id.
func (g *FieldGroup) Save(_ context.Context, id scheme.ID, c wizard.Container) error {
	for _, key := range g.widgets.Order {
		if c.Exists(g.Path(key)) {
			g.values[key] = c.Get(g.Path(key), nil)
		}
	}
	for _, key := range sortedKeys(g.values) {
		if err := c.Set(g.Path(key), g.values[key]); err != nil {
			return err
		}
	}
	return c.Set(SchemeKey, id.String())
}

func (g *FieldGroup) ask(ctx context.Context, widget fields.Widget, current any) (any, error) {
	message := widget.Label
	if message == "" {
		message = widget.Key
	}

	switch widget.Type {
	case fields.TypeSelect, fields.TypeRadio:
		options := choiceOptions(widget.Values)
		idx, err := g.prompter.Select(ctx, prompt.SelectConfig{
			Message:      message,
			Options:      options,
			DefaultIndex: indexOf(options, fmt.Sprint(current)),
		})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(options) {
			return nil, fmt.Errorf("elements: selection %d out of range", idx)
		}
		return options[idx], nil

	case fields.TypeCheckboxes:
		options := choiceOptions(widget.Values)
		picked, err := g.prompter.MultiSelect(ctx, prompt.SelectConfig{
			Message:  message,
			Options:  options,
			Defaults: indicesOf(options, current),
		})
		if err != nil {
			return nil, err
		}
		out := make([]any, 0, len(picked))
		for _, idx := range picked {
			if idx >= 0 && idx < len(options) {
				out = append(out, options[idx])
			}
		}
		return out, nil

	case fields.TypeBool:
		def, _ := current.(bool)
		return g.prompter.Confirm(ctx, prompt.ConfirmConfig{Message: message, Default: def})

	case fields.TypeNumber, fields.TypeYear, fields.TypeRange:
		answer, err := g.prompter.Input(ctx, prompt.InputConfig{
			Message:   message,
			Default:   defaultText(current),
			Validator: numberRule(widget.Values),
		})
		if err != nil {
			return nil, err
		}
		return strconv.ParseFloat(strings.TrimSpace(answer), 64)

	case fields.TypeDate:
		format, _ := widget.Values["format"].(string)
		return g.prompter.Input(ctx, prompt.InputConfig{
			Message:   message,
			Default:   defaultText(current),
			Help:      format,
			Validator: dateRule(format),
		})

	default:
		return g.prompter.Input(ctx, prompt.InputConfig{Message: message, Default: defaultText(current)})
	}
}

// choiceOptions returns the sorted keys of a choice field's list.
func choiceOptions(values fields.Values) []string {
	list, _ := values["list"].(map[string]any)
	return sortedKeys(list)
}

func numberRule(values fields.Values) func(string) error {
	return func(answer string) error {
		n, err := strconv.ParseFloat(strings.TrimSpace(answer), 64)
		if err != nil {
			return fmt.Errorf("%q is not a number", answer)
		}
		if lo, ok := asFloat(values["min"]); ok && n < lo {
			return fmt.Errorf("%v is below the minimum %v", n, lo)
		}
		if hi, ok := asFloat(values["max"]); ok && n > hi {
			return fmt.Errorf("%v is above the maximum %v", n, hi)
		}
		return nil
	}
}

func dateRule(format string) func(string) error {
	return func(answer string) error {
		if format == "" {
			return nil
		}
		if _, err := validator.ParseDate(format, strings.TrimSpace(answer), time.Now()); err != nil {
			return fmt.Errorf("%q does not match %s", answer, format)
		}
		return nil
	}
}

func asFloat(value any) (float64, bool) {
	switch typed := value.(type) {
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case float64:
		return typed, true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		return n, err == nil
	default:
		return 0, false
	}
}

func defaultText(current any) string {
	if current == nil {
		return ""
	}
	return fmt.Sprint(current)
}

func indexOf(options []string, value string) int {
	for i, option := range options {
		if option == value {
			return i
		}
	}
	return 0
}

func indicesOf(options []string, current any) []int {
	picked, _ := current.([]any)
	seen := make(map[string]bool, len(picked))
	for _, item := range picked {
		seen[fmt.Sprint(item)] = true
	}
	var out []int
	for i, option := range options {
		if seen[option] {
			out = append(out, i)
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
