package prompt

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("prompt: aborted")
	// ErrNoOptions reports a select prompt without options.
	ErrNoOptions = errors.New("prompt: select has no options")
)
