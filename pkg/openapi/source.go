package openapi

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formwizard/pkg/fields"
)

// Date formats written into the values of derived date fields.
const (
	DateFormat     = "Y-m-d"
	DateTimeFormat = `Y-m-d\TH:i:sP`
)

var requestMediaTypes = []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"}

// Option customises schema derivation.
type Option func(*options)

type options struct {
	parent       string
	widget       string
	validator    string
	formFormat   string
	decorator    string
	advanced     map[string]any
	externalRefs bool
	validateDoc  bool
}

// WithParent names the parent key of scalar properties. It defaults to the
// operation id.
func WithParent(parent string) Option {
	return func(o *options) {
		o.parent = strings.TrimSpace(parent)
	}
}

// WithStrategies sets the widget and validator strategy identifiers.
func WithStrategies(widget, validator string) Option {
	return func(o *options) {
		o.widget = widget
		o.validator = validator
	}
}

// WithFormFormat sets the form format. It defaults to "html".
func WithFormFormat(format string) Option {
	return func(o *options) {
		o.formFormat = format
	}
}

// WithDecorator sets the decorator identifier. It defaults to "default".
func WithDecorator(name string) Option {
	return func(o *options) {
		o.decorator = name
	}
}

// WithAdvanced replaces the derived advanced parameters.
func WithAdvanced(advanced map[string]any) Option {
	return func(o *options) {
		o.advanced = advanced
	}
}

// WithExternalRefs allows references to other documents.
func WithExternalRefs(allowed bool) Option {
	return func(o *options) {
		o.externalRefs = allowed
	}
}

// WithValidation validates the document before derivation.
func WithValidation(enabled bool) Option {
	return func(o *options) {
		o.validateDoc = enabled
	}
}

// LoadFile reads path and derives the schema of operationID.
func LoadFile(ctx context.Context, path, operationID string, opts ...Option) (*fields.Schema, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("openapi: read %s: %w", path, err)
	}
	return SchemaFromOperation(ctx, raw, operationID, opts...)
}

// Operations lists the operation ids of a document in sorted order.
func Operations(ctx context.Context, raw []byte) ([]string, error) {
	doc, err := load(ctx, raw, options{})
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, path := range doc.Paths.InMatchingOrder() {
		for _, op := range doc.Paths.Value(path).Operations() {
			if op.OperationID != "" {
				ids = append(ids, op.OperationID)
			}
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// SchemaFromOperation derives a field schema from the request body of
// operationID. Properties map onto field types as follows: integer and number
// become number, boolean becomes bool, string with enum becomes select, string
// with a date or date-time format becomes date, string with a binary format
// becomes file, array with enum items becomes checkboxes and everything else
// becomes string.
func SchemaFromOperation(ctx context.Context, raw []byte, operationID string, opts ...Option) (*fields.Schema, error) {
	cfg := options{
		widget:     fields.StrategySchema,
		validator:  fields.StrategySchema,
		formFormat: "html",
		decorator:  "default",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.parent == "" {
		cfg.parent = operationID
	}

	doc, err := load(ctx, raw, cfg)
	if err != nil {
		return nil, err
	}
	op := findOperation(doc, operationID)
	if op == nil {
		return nil, fmt.Errorf("%w: %q", ErrOperationNotFound, operationID)
	}
	body := requestSchema(op.RequestBody)
	if body == nil || len(body.Properties) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoRequestBody, operationID)
	}

	b := newBuilder(operationID)
	b.collect(cfg.parent, body)

	advanced := cfg.advanced
	if len(advanced) == 0 {
		advanced = b.advanced()
	}

	schema := fields.NewSchema(fields.Document{
		Widget:         cfg.widget,
		Validator:      cfg.validator,
		FormFormat:     cfg.formFormat,
		Decorator:      cfg.decorator,
		FieldsTypes:    b.types,
		FieldsValues:   b.values,
		FieldsAdvanced: advanced,
		FieldsLabels:   b.labels,
		FieldsOrder:    b.order,
	})
	return schema, nil
}

func load(ctx context.Context, raw []byte, cfg options) (*openapi3.T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, ErrEmptyDocument
	}
	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: cfg.externalRefs,
	}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if cfg.validateDoc {
		if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi: validate: %w", err)
		}
	}
	if doc.Paths == nil {
		doc.Paths = openapi3.NewPaths()
	}
	return doc, nil
}

func findOperation(doc *openapi3.T, operationID string) *openapi3.Operation {
	for _, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for _, op := range item.Operations() {
			if op != nil && op.OperationID == operationID {
				return op
			}
		}
	}
	return nil
}

func requestSchema(ref *openapi3.RequestBodyRef) *openapi3.Schema {
	if ref == nil || ref.Value == nil {
		return nil
	}
	content := ref.Value.Content
	for _, mediaType := range requestMediaTypes {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil && mt.Schema.Value != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

type builder struct {
	operation string
	types     map[string]map[string]string
	values    map[string]map[string]fields.Values
	labels    map[string]string
	order     map[string][]string
	used      map[string]bool
}

func newBuilder(operation string) *builder {
	return &builder{
		operation: operation,
		types:     make(map[string]map[string]string),
		values:    make(map[string]map[string]fields.Values),
		labels:    make(map[string]string),
		order:     make(map[string][]string),
		used:      make(map[string]bool),
	}
}

// collect adds the properties of schema under parent. Object properties open
// a parent key named after the property.
func (b *builder) collect(parent string, schema *openapi3.Schema) {
	for _, name := range propertyOrder(schema) {
		ref := schema.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		prop := ref.Value
		if typeOf(prop.Type) == openapi3.TypeObject && len(prop.Properties) > 0 {
			b.collect(name, prop)
			continue
		}

		kind := fieldType(prop)
		if b.types[parent] == nil {
			b.types[parent] = make(map[string]string)
		}
		b.types[parent][name] = kind
		b.order[parent] = append(b.order[parent], name)
		b.used[kind] = true

		label := strings.TrimSpace(prop.Title)
		if label == "" {
			label = name
		}
		b.labels[name] = label

		if values := fieldValues(kind, prop); len(values) > 0 {
			if b.values[parent] == nil {
				b.values[parent] = make(map[string]fields.Values)
			}
			b.values[parent][name] = values
		}
	}
}

func (b *builder) advanced() map[string]any {
	out := make(map[string]any, len(b.used))
	for fieldType := range b.used {
		out[fieldType] = map[string]any{"operation": b.operation}
	}
	return out
}

// propertyOrder lists required properties first, each run sorted.
func propertyOrder(schema *openapi3.Schema) []string {
	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}
	var head, tail []string
	for name := range schema.Properties {
		if required[name] {
			head = append(head, name)
		} else {
			tail = append(tail, name)
		}
	}
	sort.Strings(head)
	sort.Strings(tail)
	return append(head, tail...)
}

func fieldType(prop *openapi3.Schema) string {
	switch typeOf(prop.Type) {
	case openapi3.TypeInteger, openapi3.TypeNumber:
		return fields.TypeNumber
	case openapi3.TypeBoolean:
		return fields.TypeBool
	case openapi3.TypeArray:
		if prop.Items != nil && prop.Items.Value != nil && len(prop.Items.Value.Enum) > 0 {
			return fields.TypeCheckboxes
		}
		return fields.TypeString
	case openapi3.TypeString:
		switch {
		case len(prop.Enum) > 0:
			return fields.TypeSelect
		case prop.Format == "date" || prop.Format == "date-time":
			return fields.TypeDate
		case prop.Format == "binary":
			return fields.TypeFile
		}
	}
	return fields.TypeString
}

func fieldValues(fieldType string, prop *openapi3.Schema) fields.Values {
	switch fieldType {
	case fields.TypeSelect:
		return choiceValues(prop.Enum)
	case fields.TypeCheckboxes:
		return choiceValues(prop.Items.Value.Enum)
	case fields.TypeNumber:
		values := fields.Values{}
		if prop.Min != nil {
			values["min"] = *prop.Min
		}
		if prop.Max != nil {
			values["max"] = *prop.Max
		}
		return values
	case fields.TypeDate:
		if prop.Format == "date-time" {
			return fields.Values{"format": DateTimeFormat}
		}
		return fields.Values{"format": DateFormat}
	}
	return nil
}

func choiceValues(enum []any) fields.Values {
	list := make(map[string]any, len(enum))
	classes := make(map[string]any, len(enum))
	for _, item := range enum {
		key := fmt.Sprint(item)
		list[key] = key
		classes[key] = ""
	}
	return fields.Values{"list": list, "classes": classes}
}

func typeOf(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	values := types.Slice()
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
