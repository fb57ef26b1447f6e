package wizard

import (
	"errors"
	"fmt"
)

// Hook names reported by HookError.
const (
	HookProcessRequest     = "ProcessRequest"
	HookInit               = "Init"
	HookConfigure          = "Configure"
	HookSave               = "Save"
	HookDoBeforeValidation = "DoBeforeValidation"
	HookDoOnSubmit         = "DoOnSubmit"
	HookGroup              = "Group"
)

var (
	// ErrElementHook reports a failed element lifecycle hook.
	ErrElementHook = errors.New("wizard: element hook failed")
	// ErrInvalidPath reports a malformed container key.
	ErrInvalidPath = errors.New("wizard: invalid path")
)

// HookError records which hook failed, on which step and at which collection
// index. Remaining hooks of the call are not run; container writes already
// made are kept.
type HookError struct {
	Step  string
	Hook  string
	Index int
	Err   error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("wizard: step %q: %s on element %d: %v", e.Step, e.Hook, e.Index, e.Err)
}

// Unwrap returns the hook's error together with ErrElementHook.
func (e *HookError) Unwrap() []error {
	return []error{ErrElementHook, e.Err}
}
