package fields

import (
	"fmt"
	"html"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"
)

// Built-in decorator names.
const (
	DecoratorDefault  = "default"
	DecoratorSanitize = "sanitize"
	DecoratorTheme    = "theme"
)

// Decorator wraps the groups generated for a parent key. A schema names the
// decorator to apply; the same decorator is used for widgets and validators.
type Decorator interface {
	Name() string
	DecorateWidgets(group *WidgetGroup) error
	DecorateValidators(group *ValidatorGroup) error
}

// DefaultDecorator leaves groups unchanged.
type DefaultDecorator struct{}

func (DefaultDecorator) Name() string { return DecoratorDefault }

func (DefaultDecorator) DecorateWidgets(*WidgetGroup) error { return nil }

func (DefaultDecorator) DecorateValidators(*ValidatorGroup) error { return nil }

// SanitizeDecorator strips markup from widget labels and string titles.
type SanitizeDecorator struct{}

func (SanitizeDecorator) Name() string { return DecoratorSanitize }

func (SanitizeDecorator) DecorateWidgets(group *WidgetGroup) error {
	for key, widget := range group.Widgets {
		widget.Label = sanitizeText(widget.Label)
		if title, ok := widget.Values["title"].(string); ok {
			values := cloneValues(widget.Values)
			values["title"] = sanitizeText(title)
			widget.Values = values
		}
		group.Widgets[key] = widget
	}
	return nil
}

func (SanitizeDecorator) DecorateValidators(*ValidatorGroup) error { return nil }

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

func sanitizeText(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	// The policy escapes entities for HTML output; prompts render plain text.
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(trimmed)))
}

// ThemeDecorator resolves a go-theme selection and records it on each group's
// Meta: "theme", "variant" and one "token.<name>" entry per manifest token.
type ThemeDecorator struct {
	selector theme.ThemeSelector
	theme    string
	variant  string

	once      sync.Once
	selection *theme.Selection
	err       error
}

// NewThemeDecorator builds a decorator around selector. Empty theme and
// variant defer to the selector's defaults.
func NewThemeDecorator(selector theme.ThemeSelector, themeName, variant string) *ThemeDecorator {
	return &ThemeDecorator{selector: selector, theme: themeName, variant: variant}
}

func (d *ThemeDecorator) Name() string { return DecoratorTheme }

func (d *ThemeDecorator) DecorateWidgets(group *WidgetGroup) error {
	meta, err := d.meta()
	if err != nil {
		return err
	}
	group.Meta = mergeMeta(group.Meta, meta)
	return nil
}

func (d *ThemeDecorator) DecorateValidators(group *ValidatorGroup) error {
	meta, err := d.meta()
	if err != nil {
		return err
	}
	group.Meta = mergeMeta(group.Meta, meta)
	return nil
}

func (d *ThemeDecorator) meta() (map[string]string, error) {
	if d.selector == nil {
		return nil, fmt.Errorf("fields: theme decorator has no selector")
	}
	d.once.Do(func() {
		d.selection, d.err = d.selector.Select(d.theme, d.variant)
	})
	if d.err != nil {
		return nil, fmt.Errorf("fields: select theme %q: %w", d.theme, d.err)
	}
	if d.selection == nil {
		return nil, fmt.Errorf("fields: theme %q resolved to nothing", d.theme)
	}

	meta := map[string]string{
		"theme":   d.selection.Theme,
		"variant": d.selection.Variant,
	}
	if d.selection.Manifest != nil {
		for name, value := range d.selection.Manifest.Tokens {
			meta["token."+name] = value
		}
	}
	return meta, nil
}

func mergeMeta(dst, src map[string]string) map[string]string {
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
