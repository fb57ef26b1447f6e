package fields

import (
	"errors"
	"strings"
)

var (
	// ErrSchemaInvalid reports a schema that failed DataValidator checks.
	ErrSchemaInvalid = errors.New("fields: schema invalid")
	// ErrUnknownFieldType reports a field type missing from the default values table.
	ErrUnknownFieldType = errors.New("fields: invalid field type")
	// ErrUnknownStrategy reports a decorator or strategy identifier with no registry entry.
	ErrUnknownStrategy = errors.New("fields: unknown strategy")
)

// SchemaError carries every issue found while validating a schema.
type SchemaError struct {
	Issues []Issue
}

func (e *SchemaError) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return ErrSchemaInvalid.Error()
	}
	messages := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		messages = append(messages, issue.Error())
	}
	return ErrSchemaInvalid.Error() + ": " + strings.Join(messages, "; ")
}

// Unwrap exposes ErrSchemaInvalid to errors.Is.
func (e *SchemaError) Unwrap() error {
	return ErrSchemaInvalid
}

// Codes reports the issue codes in the order they were found.
func (e *SchemaError) Codes() []string {
	if e == nil {
		return nil
	}
	codes := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		codes = append(codes, issue.Code)
	}
	return codes
}
