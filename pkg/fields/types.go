package fields

import "sort"

// Field types understood by the default registry.
const (
	TypeNumber     = "number"
	TypeString     = "string"
	TypeCheckboxes = "checkboxes"
	TypeSelect     = "select"
	TypeYear       = "year"
	TypeRange      = "range"
	TypeDate       = "date"
	TypeBool       = "bool"
	TypeFile       = "file"
	TypeRadio      = "radio"
	TypeAttach     = "attach"
)

// Types lists every built-in field type.
var Types = []string{
	TypeNumber, TypeString, TypeCheckboxes, TypeSelect, TypeYear, TypeRange,
	TypeDate, TypeBool, TypeFile, TypeRadio, TypeAttach,
}

// Values is the value bag of one field.
type Values = map[string]any

// DefaultValues maps a field type to its default value bag.
type DefaultValues map[string]Values

// Bag returns a copy of the default bag for fieldType.
func (d DefaultValues) Bag(fieldType string) (Values, bool) {
	bag, ok := d[fieldType]
	if !ok {
		return nil, false
	}
	return cloneValues(bag), true
}

// Source supplies a field schema to the factory.
type Source interface {
	Widget() string
	Validator() string
	FormFormat() string
	Decorator() string
	// FieldsTypes maps parent key -> child key -> field type.
	FieldsTypes() map[string]map[string]string
	// FieldsValues maps parent key -> child key -> override values.
	FieldsValues() map[string]map[string]Values
	// FieldsAdvanced maps field type -> advanced parameters.
	FieldsAdvanced() map[string]any
	// FieldsLabels maps child key -> display label.
	FieldsLabels() map[string]string
}

// Orderer is implemented by sources that carry a preferred child order per
// parent key. The schema strategy honours it.
type Orderer interface {
	FieldsOrder() map[string][]string
}

// Document is the on-disk shape of a schema.
type Document struct {
	Widget         string                       `json:"widget" yaml:"widget"`
	Validator      string                       `json:"validator" yaml:"validator"`
	FormFormat     string                       `json:"formFormat" yaml:"formFormat"`
	Decorator      string                       `json:"decorator" yaml:"decorator"`
	FieldsTypes    map[string]map[string]string `json:"fieldsTypes" yaml:"fieldsTypes"`
	FieldsValues   map[string]map[string]Values `json:"fieldsValues" yaml:"fieldsValues"`
	FieldsAdvanced map[string]any               `json:"fieldsAdvanced" yaml:"fieldsAdvanced"`
	FieldsLabels   map[string]string            `json:"fieldsLabels" yaml:"fieldsLabels"`
	FieldsOrder    map[string][]string          `json:"fieldsOrder,omitempty" yaml:"fieldsOrder,omitempty"`
}

// Schema is the concrete Source backed by a Document.
type Schema struct {
	doc Document
}

var (
	_ Source  = (*Schema)(nil)
	_ Orderer = (*Schema)(nil)
)

// NewSchema wraps a document.
func NewSchema(doc Document) *Schema {
	return &Schema{doc: doc}
}

// Document returns the underlying document.
func (s *Schema) Document() Document { return s.doc }

func (s *Schema) Widget() string     { return s.doc.Widget }
func (s *Schema) Validator() string  { return s.doc.Validator }
func (s *Schema) FormFormat() string { return s.doc.FormFormat }
func (s *Schema) Decorator() string  { return s.doc.Decorator }

func (s *Schema) FieldsTypes() map[string]map[string]string  { return s.doc.FieldsTypes }
func (s *Schema) FieldsValues() map[string]map[string]Values { return s.doc.FieldsValues }
func (s *Schema) FieldsAdvanced() map[string]any             { return s.doc.FieldsAdvanced }
func (s *Schema) FieldsLabels() map[string]string            { return s.doc.FieldsLabels }
func (s *Schema) FieldsOrder() map[string][]string           { return s.doc.FieldsOrder }

func (s *Schema) SetWidget(widget string) *Schema {
	s.doc.Widget = widget
	return s
}

func (s *Schema) SetValidator(validator string) *Schema {
	s.doc.Validator = validator
	return s
}

func (s *Schema) SetFormFormat(format string) *Schema {
	s.doc.FormFormat = format
	return s
}

func (s *Schema) SetDecorator(decorator string) *Schema {
	s.doc.Decorator = decorator
	return s
}

func (s *Schema) SetFieldsTypes(types map[string]map[string]string) *Schema {
	s.doc.FieldsTypes = types
	return s
}

func (s *Schema) SetFieldsValues(values map[string]map[string]Values) *Schema {
	s.doc.FieldsValues = values
	return s
}

func (s *Schema) SetFieldsAdvanced(advanced map[string]any) *Schema {
	s.doc.FieldsAdvanced = advanced
	return s
}

func (s *Schema) SetFieldsLabels(labels map[string]string) *Schema {
	s.doc.FieldsLabels = labels
	return s
}

func (s *Schema) SetFieldsOrder(order map[string][]string) *Schema {
	s.doc.FieldsOrder = order
	return s
}

// Parents returns the sorted parent keys of a source.
func Parents(src Source) []string {
	types := src.FieldsTypes()
	keys := make([]string, 0, len(types))
	for key := range types {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// cloneValues copies src, including nested maps and slices.
func cloneValues(src Values) Values {
	out := make(Values, len(src))
	for k, v := range src {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return cloneValues(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), typed...)
	default:
		return value
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
