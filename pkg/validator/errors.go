package validator

import "errors"

var (
	// ErrUnsupportedKey is returned when a caller sets or introduces a value or
	// option key the validator kind does not declare.
	ErrUnsupportedKey = errors.New("validator: unsupported key")
	// ErrTypeMismatch is returned when a caller-supplied value has a different
	// kind than the default registered for the same key.
	ErrTypeMismatch = errors.New("validator: type mismatch")
	// ErrRequiredValueMissing is returned by Check when the checkable values
	// are empty and the required option is set.
	ErrRequiredValueMissing = errors.New("validator: required")
	// ErrInvalidValue wraps every kind-specific cleaning failure.
	ErrInvalidValue = errors.New("validator: invalid value")
	// ErrUnknownKind is returned when a kind name is not registered.
	ErrUnknownKind = errors.New("validator: unknown kind")
)
