package fields

import (
	"fmt"
	"sort"
	"strings"
)

// Issue codes reported by DataValidator.
const (
	CodeFormFormat  = "FORM_FORMAT_ERROR"
	CodeDecorator   = "DECORATOR_FORMAT_ERROR"
	CodeAdvanced    = "ADVANCED_ERROR"
	CodeLabels      = "LABELS_ERROR"
	CodeFieldsEmpty = "FIELDS_EMPTY_ERROR"
	CodeFieldsDiff  = "FIELDS_DIFF_ERROR"
)

var issueMessages = map[string]string{
	CodeFormFormat:  "Form format should not be empty",
	CodeDecorator:   "Decorator format should not be empty",
	CodeAdvanced:    "Advanced field should not be empty",
	CodeLabels:      "Labels field should not be empty",
	CodeFieldsEmpty: "Arrays must not be empty",
	CodeFieldsDiff:  "Arrays must match each other",
}

// Issue is one failed schema check. Fields names the offending keys when the
// check concerns specific fields.
type Issue struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

func (i Issue) Error() string {
	if len(i.Fields) == 0 {
		return fmt.Sprintf("%s: %s", i.Code, i.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", i.Code, i.Message, strings.Join(i.Fields, ", "))
}

// Result is the outcome of DataValidator.Validate.
type Result struct {
	Issues []Issue
}

// Valid reports whether no issue was found.
func (r Result) Valid() bool {
	return len(r.Issues) == 0
}

// Has reports whether an issue with the given code was found.
func (r Result) Has(code string) bool {
	for _, issue := range r.Issues {
		if issue.Code == code {
			return true
		}
	}
	return false
}

// Err returns a *SchemaError when the result carries issues.
func (r Result) Err() error {
	if r.Valid() {
		return nil
	}
	return &SchemaError{Issues: append([]Issue(nil), r.Issues...)}
}

// DataValidator checks the shape of a schema before generation. Every check
// runs; issues accumulate and never short-circuit. The schema is not modified.
type DataValidator struct {
	issues []Issue
}

// NewDataValidator returns an empty validator.
func NewDataValidator() *DataValidator {
	return &DataValidator{}
}

// Validate runs the format and content checks against src. Issues from a
// previous call are discarded.
func (d *DataValidator) Validate(src Source) Result {
	d.issues = nil
	if src == nil {
		d.add(CodeFieldsEmpty)
		return d.result()
	}

	d.validateFormat(src)
	d.validateFields(src)
	return d.result()
}

// Errors returns the issues recorded by the last Validate call.
func (d *DataValidator) Errors() []Issue {
	return append([]Issue(nil), d.issues...)
}

func (d *DataValidator) validateFormat(src Source) {
	if isBlank(src.FormFormat()) {
		d.add(CodeFormFormat)
	}
	if isBlank(src.Decorator()) {
		d.add(CodeDecorator)
	}
	if len(src.FieldsAdvanced()) == 0 {
		d.add(CodeAdvanced)
	}
	if len(src.FieldsLabels()) == 0 {
		d.add(CodeLabels)
	}
}

func (d *DataValidator) validateFields(src Source) {
	types := src.FieldsTypes()
	values := src.FieldsValues()

	if len(types) == 0 && len(values) == 0 {
		d.add(CodeFieldsEmpty)
	}

	if orphans := orphanKeys(types, values); len(orphans) > 0 {
		d.add(CodeFieldsDiff, orphans...)
	}
}

func (d *DataValidator) add(code string, fields ...string) {
	d.issues = append(d.issues, Issue{Code: code, Message: issueMessages[code], Fields: fields})
}

func (d *DataValidator) result() Result {
	return Result{Issues: d.Errors()}
}

// orphanKeys lists override keys, as "parent" or "parent.child", that have no
// matching entry in types.
func orphanKeys(types map[string]map[string]string, values map[string]map[string]Values) []string {
	var out []string
	for parent, children := range values {
		declared, ok := types[parent]
		if !ok {
			out = append(out, parent)
			continue
		}
		for child := range children {
			if _, ok := declared[child]; !ok {
				out = append(out, parent+"."+child)
			}
		}
	}
	sort.Strings(out)
	return out
}

func isBlank(value string) bool {
	return strings.TrimSpace(value) == ""
}
