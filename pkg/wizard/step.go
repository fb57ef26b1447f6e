package wizard

import (
	"context"
	"io"
	"log/slog"

	"github.com/goliatone/go-formwizard/pkg/form"
	"github.com/goliatone/go-formwizard/pkg/scheme"
)

// Grouper selects the elements of a step before it is prepared, typically by
// calling SetElements and SetAllElements.
type Grouper func(ctx context.Context, s *Step) error

// Option customises a Step.
type Option func(*Step)

// WithElements sets the step-local elements.
func WithElements(elements *Collection) Option {
	return func(s *Step) {
		s.SetElements(elements)
	}
}

// WithAllElements sets the wizard-wide elements saved by SaveForm.
func WithAllElements(elements *Collection) Option {
	return func(s *Step) {
		s.SetAllElements(elements)
	}
}

// WithGrouper sets the hook run at the start of PrepareForm.
func WithGrouper(grouper Grouper) Option {
	return func(s *Step) {
		s.grouper = grouper
	}
}

// WithLogger sets the logger used for lifecycle traces.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Step) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Step drives one wizard page. It starts unprepared; the first successful
// PrepareForm (directly or through GetForm) marks it prepared for the rest of
// its life, so each element's ProcessRequest, Init and Configure run at most
// once per Step. A Step is not safe for concurrent use.
type Step struct {
	container   Container
	form        form.Sink
	id          scheme.ID
	name        string
	elements    *Collection
	allElements *Collection
	grouper     Grouper
	logger      *slog.Logger
	prepared    bool
}

// NewStep builds an unprepared step.
func NewStep(container Container, f form.Sink, id scheme.ID, name string, opts ...Option) *Step {
	s := &Step{
		container:   container,
		form:        f,
		id:          id,
		name:        name,
		elements:    NewCollection(),
		allElements: NewCollection(),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

// SetElements replaces the step-local elements.
func (s *Step) SetElements(elements *Collection) {
	if elements == nil {
		elements = NewCollection()
	}
	s.elements = elements
}

// SetAllElements replaces the wizard-wide elements.
func (s *Step) SetAllElements(elements *Collection) {
	if elements == nil {
		elements = NewCollection()
	}
	s.allElements = elements
}

func (s *Step) Name() string             { return s.name }
func (s *Step) ID() scheme.ID            { return s.id }
func (s *Step) Prepared() bool           { return s.prepared }
func (s *Step) Elements() *Collection    { return s.elements }
func (s *Step) AllElements() *Collection { return s.allElements }
func (s *Step) Container() Container     { return s.container }

// GetForm prepares the step when needed and returns its form. Once prepared,
// the same form is returned without running any hook.
func (s *Step) GetForm(ctx context.Context) (form.Sink, error) {
	if !s.prepared {
		if err := s.PrepareForm(ctx); err != nil {
			return nil, err
		}
	}
	return s.form, nil
}

// PrepareForm runs the grouper, then ProcessRequest, Init and Configure on
// every step-local element in order. It does nothing on a prepared step. A
// failing hook stops preparation and leaves the step unprepared.
func (s *Step) PrepareForm(ctx context.Context) error {
	if s.prepared {
		return nil
	}

	if s.grouper != nil {
		if err := s.grouper(ctx, s); err != nil {
			return &HookError{Step: s.name, Hook: HookGroup, Index: -1, Err: err}
		}
	}

	err := s.elements.Each(func(index int, element Element) error {
		if err := element.ProcessRequest(ctx, s.container); err != nil {
			return s.hookErr(HookProcessRequest, index, err)
		}
		if err := element.Init(ctx, s.id, s.container); err != nil {
			return s.hookErr(HookInit, index, err)
		}
		if err := element.Configure(ctx, s.form, s.name, s.container); err != nil {
			return s.hookErr(HookConfigure, index, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.prepared = true
	s.logger.Debug("step prepared", "step", s.name, "scheme", s.id.String(), "elements", s.elements.Count())
	return nil
}

// Submit runs DoBeforeValidation then DoOnSubmit on every step-local element
// in order, stopping at the first error.
func (s *Step) Submit(ctx context.Context, values map[string]any) error {
	err := s.elements.Each(func(index int, element Element) error {
		if err := element.DoBeforeValidation(ctx, values, s.container); err != nil {
			return s.hookErr(HookDoBeforeValidation, index, err)
		}
		if err := element.DoOnSubmit(ctx, values, s.container); err != nil {
			return s.hookErr(HookDoOnSubmit, index, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Debug("step submitted", "step", s.name, "keys", len(values))
	return nil
}

// SaveForm calls Save on every wizard element, not only this step's. It stops
// at the first error without undoing earlier saves.
func (s *Step) SaveForm(ctx context.Context) error {
	err := s.allElements.Each(func(index int, element Element) error {
		if err := element.Save(ctx, s.id, s.container); err != nil {
			return s.hookErr(HookSave, index, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Debug("step saved", "step", s.name, "scheme", s.id.String(), "elements", s.allElements.Count())
	return nil
}

func (s *Step) hookErr(hook string, index int, err error) error {
	s.logger.Debug("element hook failed", "step", s.name, "hook", hook, "index", index, "error", err)
	return &HookError{Step: s.name, Hook: hook, Index: index, Err: err}
}
