package fields_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formwizard/pkg/fields"
	"github.com/goliatone/go-formwizard/pkg/testsupport"
	"github.com/goliatone/go-formwizard/pkg/validator"
)

func TestNewFactory_InvalidSchemaAborts(t *testing.T) {
	doc := testsupport.ProfileDocument()
	doc.Decorator = ""
	doc.FieldsTypes = nil
	doc.FieldsValues = nil

	factory, err := fields.NewFactory(fields.NewSchema(doc), testsupport.DefaultValues())
	if factory != nil {
		t.Fatalf("expected no factory on failure")
	}
	if !errors.Is(err, fields.ErrSchemaInvalid) {
		t.Fatalf("expected ErrSchemaInvalid, got %v", err)
	}

	var schemaErr *fields.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected *SchemaError, got %T", err)
	}
	want := []string{fields.CodeDecorator, fields.CodeFieldsEmpty}
	if diff := cmp.Diff(want, schemaErr.Codes()); diff != "" {
		t.Fatalf("issue codes mismatch (-want +got):\n%s", diff)
	}
}

func TestNewFactory_DefaultsRoundTrip(t *testing.T) {
	doc := testsupport.ProfileDocument()
	doc.FieldsValues = nil
	defaults := testsupport.DefaultValues()

	factory := testsupport.MustFactory(t, fields.NewSchema(doc), defaults)

	resolved := factory.ResolvedValues()
	for parent, children := range doc.FieldsTypes {
		for child, fieldType := range children {
			got := resolved[parent][child]
			if diff := cmp.Diff(defaults[fieldType], got); diff != "" {
				t.Fatalf("%s.%s values mismatch (-want +got):\n%s", parent, child, diff)
			}
		}
	}
}

func TestNewFactory_EmptyOverrideKeepsDefaults(t *testing.T) {
	doc := testsupport.ProfileDocument()
	doc.FieldsValues = map[string]map[string]fields.Values{
		"address": {"number": {}},
	}

	factory := testsupport.MustFactory(t, fields.NewSchema(doc), testsupport.DefaultValues())
	want := fields.Values{"min": 1, "max": 100, "step": 1}
	if diff := cmp.Diff(want, factory.ResolvedValues()["address"]["number"]); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateFieldValues_DropsUnknownKeys(t *testing.T) {
	got := fields.CreateFieldValues(
		fields.Values{"min": 5, "bogus": true},
		fields.Values{"min": 1, "max": 100, "step": 1},
	)
	want := fields.Values{"min": 5, "max": 100, "step": 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("merge mismatch (-want +got):\n%s", diff)
	}
}

func TestNewFactory_OverrideIsRestricted(t *testing.T) {
	factory := testsupport.MustFactory(t, testsupport.ProfileSchema(), testsupport.DefaultValues())

	want := fields.Values{"min": 5, "max": 100, "step": 1}
	if diff := cmp.Diff(want, factory.ResolvedValues()["address"]["number"]); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}

	group, ok := factory.ValidatorGroup("address")
	if !ok {
		t.Fatalf("expected address validators")
	}
	if got := group.Validators["number"].Value("min"); got != 5 {
		t.Fatalf("expected validator min 5, got %v", got)
	}
}

func TestNewFactory_UnknownFieldType(t *testing.T) {
	doc := testsupport.ProfileDocument()
	doc.FieldsTypes["address"]["colour"] = "palette"

	_, err := fields.NewFactory(fields.NewSchema(doc), testsupport.DefaultValues())
	if !errors.Is(err, fields.ErrUnknownFieldType) {
		t.Fatalf("expected ErrUnknownFieldType, got %v", err)
	}
}

func TestNewFactory_UnknownStrategy(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*fields.Document)
	}{
		{name: "decorator", mutate: func(doc *fields.Document) { doc.Decorator = "fancy" }},
		{name: "widget", mutate: func(doc *fields.Document) { doc.Widget = "grid" }},
		{name: "validator", mutate: func(doc *fields.Document) { doc.Validator = "strict" }},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			doc := testsupport.ProfileDocument()
			tc.mutate(&doc)

			_, err := fields.NewFactory(fields.NewSchema(doc), testsupport.DefaultValues())
			if !errors.Is(err, fields.ErrUnknownStrategy) {
				t.Fatalf("expected ErrUnknownStrategy, got %v", err)
			}
		})
	}
}

func TestNewFactory_OverrideTypeMismatch(t *testing.T) {
	doc := testsupport.ProfileDocument()
	doc.FieldsValues["address"]["number"] = fields.Values{"max": "abc"}

	_, err := fields.NewFactory(fields.NewSchema(doc), testsupport.DefaultValues())
	if !errors.Is(err, validator.ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch, got %v", err)
	}
}

func TestNewFactory_WidgetGroupGolden(t *testing.T) {
	factory := testsupport.MustFactory(t, testsupport.ProfileSchema(), testsupport.DefaultValues())

	group, ok := factory.WidgetGroup("address")
	if !ok {
		t.Fatalf("expected address widgets")
	}

	const golden = "testdata/address_widgets.golden.json"
	testsupport.WriteGolden(t, golden, group)
	if diff := testsupport.CompareJSONGolden(t, golden, group); diff != "" {
		t.Fatalf("widget group mismatch (-want +got):\n%s", diff)
	}

	var keys []string
	for _, widget := range group.Ordered() {
		keys = append(keys, widget.Key)
	}
	if diff := cmp.Diff([]string{"street", "number", "kind"}, keys); diff != "" {
		t.Fatalf("widget order mismatch (-want +got):\n%s", diff)
	}
}

func TestNewFactory_ValidatorGroups(t *testing.T) {
	fixed := func() time.Time { return time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC) }
	factory := testsupport.MustFactory(t, testsupport.ProfileSchema(), testsupport.DefaultValues(), fields.WithClock(fixed))

	if diff := cmp.Diff([]string{"address", "content"}, factory.Parents()); diff != "" {
		t.Fatalf("parents mismatch (-want +got):\n%s", diff)
	}

	address, _ := factory.ValidatorGroup("address")
	if diff := cmp.Diff([]string{"kind", "number", "street"}, address.Order); diff != "" {
		t.Fatalf("validator order mismatch (-want +got):\n%s", diff)
	}
	if got := address.Validators["street"].Type(); got != validator.KindPass {
		t.Fatalf("expected pass validator for string field, got %q", got)
	}
	if got := address.Validators["kind"].Type(); got != validator.KindChoice {
		t.Fatalf("expected choice validator for select field, got %q", got)
	}
	if failures := address.Check(); failures != nil {
		t.Fatalf("expected address validators to pass, got %v", failures)
	}

	content, _ := factory.ValidatorGroup("content")
	if failures := content.Check(); failures != nil {
		t.Fatalf("expected content validators to pass, got %v", failures)
	}
}

func TestValidatorGroup_CheckIsolatesFailures(t *testing.T) {
	factory := testsupport.MustFactory(t, testsupport.ProfileSchema(), testsupport.DefaultValues())
	group, _ := factory.ValidatorGroup("address")

	if err := group.Validators["number"].SetValue("max", "abc"); err != nil {
		t.Fatalf("set max: %v", err)
	}
	if err := group.Validators["kind"].SetValue("classes", map[string]any{"home": ""}); err != nil {
		t.Fatalf("set classes: %v", err)
	}

	failures := group.Check()
	if len(failures) != 2 {
		t.Fatalf("expected two failing fields, got %v", failures)
	}
	if !errors.Is(failures["number"], validator.ErrInvalidValue) {
		t.Fatalf("expected number failure, got %v", failures["number"])
	}
	if !errors.Is(failures["kind"], validator.ErrInvalidValue) {
		t.Fatalf("expected kind failure, got %v", failures["kind"])
	}
	if _, ok := failures["street"]; ok {
		t.Fatalf("street should not fail")
	}
}

func TestNewFactory_SanitizeDecorator(t *testing.T) {
	doc := testsupport.ProfileDocument()
	doc.Decorator = fields.DecoratorSanitize
	doc.FieldsLabels["street"] = "<b>Street</b><script>alert(1)</script>"

	factory := testsupport.MustFactory(t, fields.NewSchema(doc), testsupport.DefaultValues())
	group, _ := factory.WidgetGroup("address")

	if got := group.Widgets["street"].Label; got != "Street" {
		t.Fatalf("expected sanitized label, got %q", got)
	}
	if group.Decorator != fields.DecoratorSanitize {
		t.Fatalf("expected decorator name recorded, got %q", group.Decorator)
	}
}

func TestNewFactory_SanitizeKeepsPlainText(t *testing.T) {
	doc := testsupport.ProfileDocument()
	doc.Decorator = fields.DecoratorSanitize
	doc.FieldsLabels["street"] = "Terms & Conditions <b>now</b>"
	doc.FieldsLabels["number"] = `"Quoted" it's 5 > 4`

	factory := testsupport.MustFactory(t, fields.NewSchema(doc), testsupport.DefaultValues())
	group, _ := factory.WidgetGroup("address")

	if got := group.Widgets["street"].Label; got != "Terms & Conditions now" {
		t.Fatalf("expected unescaped label, got %q", got)
	}
	if got := group.Widgets["number"].Label; got != `"Quoted" it's 5 > 4` {
		t.Fatalf("expected punctuation kept, got %q", got)
	}
}

func TestNewFactory_ThemeDecorator(t *testing.T) {
	selector := &stubThemeSelector{selection: &theme.Selection{
		Theme:   "acme",
		Variant: "dark",
		Manifest: &theme.Manifest{
			Name:   "acme",
			Tokens: map[string]string{"brand": "#123456"},
		},
	}}

	registry := fields.DefaultRegistry()
	registry.MustRegisterDecorator(fields.NewThemeDecorator(selector, "acme", "dark"))

	doc := testsupport.ProfileDocument()
	doc.Decorator = fields.DecoratorTheme

	factory := testsupport.MustFactory(t, fields.NewSchema(doc), testsupport.DefaultValues(), fields.WithRegistry(registry))

	want := map[string]string{"theme": "acme", "variant": "dark", "token.brand": "#123456"}
	widgets, _ := factory.WidgetGroup("content")
	if diff := cmp.Diff(want, widgets.Meta); diff != "" {
		t.Fatalf("widget meta mismatch (-want +got):\n%s", diff)
	}
	validators, _ := factory.ValidatorGroup("address")
	if diff := cmp.Diff(want, validators.Meta); diff != "" {
		t.Fatalf("validator meta mismatch (-want +got):\n%s", diff)
	}
	if selector.calls != 1 {
		t.Fatalf("expected selection to be resolved once, got %d", selector.calls)
	}
}

func TestNewFactory_ThemeDecoratorError(t *testing.T) {
	registry := fields.DefaultRegistry()
	registry.MustRegisterDecorator(fields.NewThemeDecorator(&stubThemeSelector{err: errors.New("missing")}, "ghost", ""))

	doc := testsupport.ProfileDocument()
	doc.Decorator = fields.DecoratorTheme

	if _, err := fields.NewFactory(fields.NewSchema(doc), testsupport.DefaultValues(), fields.WithRegistry(registry)); err == nil {
		t.Fatalf("expected theme selection error")
	}
}

func TestNewFactory_WidgetValuesAreIndependent(t *testing.T) {
	factory := testsupport.MustFactory(t, testsupport.ProfileSchema(), testsupport.DefaultValues())

	address := factory.Widgets()["address"]
	address.Widgets["number"].Values["min"] = 99
	address.Widgets["kind"].Values["list"].(map[string]any)["extra"] = "Extra"

	resolved := factory.ResolvedValues()["address"]
	if got := resolved["number"]["min"]; got != 5 {
		t.Fatalf("expected resolved min 5, got %v", got)
	}
	if _, ok := resolved["kind"]["list"].(map[string]any)["extra"]; ok {
		t.Fatalf("widget list change leaked into resolved values")
	}
	validators, _ := factory.ValidatorGroup("address")
	if got := validators.Validators["number"].Value("min"); got != 5 {
		t.Fatalf("expected validator min 5, got %v", got)
	}
}

func TestNewFactory_RegisteredWidgetBuilder(t *testing.T) {
	registry := fields.DefaultRegistry()
	registry.MustRegisterWidget(fields.TypeNumber, func(key, fieldType string, values fields.Values) fields.Widget {
		values["input"] = "spinner"
		return fields.Widget{Values: values, Advanced: map[string]any{"step": values["step"]}}
	})

	factory := testsupport.MustFactory(t, testsupport.ProfileSchema(), testsupport.DefaultValues(), fields.WithRegistry(registry))
	group, _ := factory.WidgetGroup("address")

	number := group.Widgets["number"]
	want := fields.Widget{
		Key:      "number",
		Type:     fields.TypeNumber,
		Label:    "Number",
		Format:   "html",
		Values:   fields.Values{"min": 5, "max": 100, "step": 1, "input": "spinner"},
		Advanced: map[string]any{"step": 1},
	}
	if diff := cmp.Diff(want, number); diff != "" {
		t.Fatalf("number widget mismatch (-want +got):\n%s", diff)
	}
	if _, ok := factory.ResolvedValues()["address"]["number"]["input"]; ok {
		t.Fatalf("builder change leaked into resolved values")
	}
	if got := group.Widgets["street"].Type; got != fields.TypeString {
		t.Fatalf("expected default builder for street, got type %q", got)
	}

	if err := registry.RegisterWidget(fields.TypeNumber, fields.BuildWidget); err == nil {
		t.Fatalf("expected duplicate widget builder error")
	}
	if err := registry.RegisterWidget("", fields.BuildWidget); err == nil {
		t.Fatalf("expected empty field type error")
	}
}

func TestRegistry_Duplicates(t *testing.T) {
	registry := fields.DefaultRegistry()
	if err := registry.RegisterDecorator(fields.DefaultDecorator{}); err == nil {
		t.Fatalf("expected duplicate decorator error")
	}
	if err := registry.RegisterStrategy(fields.SortedStrategy); err == nil {
		t.Fatalf("expected duplicate strategy error")
	}
	if err := registry.MapFieldType("colour", "palette"); !errors.Is(err, validator.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}

	if diff := cmp.Diff([]string{"default", "sanitize"}, registry.Decorators()); diff != "" {
		t.Fatalf("decorators mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(fieldsTypesSorted(), registry.FieldTypes()); diff != "" {
		t.Fatalf("field types mismatch (-want +got):\n%s", diff)
	}
}

func fieldsTypesSorted() []string {
	return []string{"attach", "bool", "checkboxes", "date", "file", "number", "radio", "range", "select", "string", "year"}
}

type stubThemeSelector struct {
	selection *theme.Selection
	err       error
	calls     int
}

func (s *stubThemeSelector) Select(_, _ string, _ ...theme.QueryOption) (*theme.Selection, error) {
	s.calls++
	return s.selection, s.err
}
