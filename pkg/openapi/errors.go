package openapi

import "errors"

var (
	// ErrEmptyDocument is returned for an empty payload.
	ErrEmptyDocument = errors.New("openapi: document payload is empty")
	// ErrOperationNotFound is returned when no operation carries the id.
	ErrOperationNotFound = errors.New("openapi: operation not found")
	// ErrNoRequestBody is returned when the operation has no usable object body.
	ErrNoRequestBody = errors.New("openapi: operation has no object request body")
)
