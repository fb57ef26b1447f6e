package wizard

import (
	"context"
	"sort"

	"github.com/goliatone/go-formwizard/pkg/form"
	"github.com/goliatone/go-formwizard/pkg/scheme"
)

// Element is one form element's lifecycle. A Step calls ProcessRequest, Init
// and Configure, in that order, while preparing its form; Save during the
// wizard-wide save; DoBeforeValidation and DoOnSubmit when values are
// submitted.
type Element interface {
	ProcessRequest(ctx context.Context, c Container) error
	Init(ctx context.Context, id scheme.ID, c Container) error
	Configure(ctx context.Context, f form.Sink, step string, c Container) error
	Save(ctx context.Context, id scheme.ID, c Container) error
	DoBeforeValidation(ctx context.Context, values map[string]any, c Container) error
	DoOnSubmit(ctx context.Context, values map[string]any, c Container) error
}

// BaseElement provides the default optional hooks. Embed it and implement
// Init, Configure and Save.
type BaseElement struct{}

// ProcessRequest does nothing.
func (BaseElement) ProcessRequest(context.Context, Container) error { return nil }

// DoBeforeValidation does nothing.
func (BaseElement) DoBeforeValidation(context.Context, map[string]any, Container) error {
	return nil
}

// DoOnSubmit writes every submitted key and value into the container with
// SubmitAll. Keys are dotted container paths, so "a.b" lands under "a".
func (BaseElement) DoOnSubmit(_ context.Context, values map[string]any, c Container) error {
	return SubmitAll(values, c)
}

// SubmitAll writes values into c in key order. Keys are dotted paths; when
// any key has an empty segment ("" or "a..b") it returns ErrInvalidPath and
// writes nothing.
func SubmitAll(values map[string]any, c Container) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		if err := ValidPath(key); err != nil {
			return err
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := c.Set(key, values[key]); err != nil {
			return err
		}
	}
	return nil
}
