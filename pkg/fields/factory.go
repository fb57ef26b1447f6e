package fields

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/goliatone/go-formwizard/pkg/validator"
)

// Option customises a Factory.
type Option func(*Factory)

// WithRegistry swaps the registry used to resolve schema identifiers.
func WithRegistry(registry *Registry) Option {
	return func(f *Factory) {
		if registry != nil {
			f.registry = registry
		}
	}
}

// WithLogger sets the logger used for generation traces.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Factory) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithClock sets the clock handed to generated validators.
func WithClock(clock validator.Clock) Option {
	return func(f *Factory) {
		f.clock = clock
	}
}

// Factory holds the widgets and validators generated from one schema.
// Generation runs once, inside NewFactory.
type Factory struct {
	source   Source
	defaults DefaultValues
	registry *Registry
	logger   *slog.Logger
	clock    validator.Clock

	checker    *DataValidator
	values     map[string]map[string]Values
	widgets    map[string]WidgetGroup
	validators map[string]ValidatorGroup
}

// NewFactory validates src and generates its widgets and validators. Any
// failure aborts generation and no factory is returned: schema issues surface
// as a *SchemaError, unknown field types as ErrUnknownFieldType and unknown
// decorator or strategy identifiers as ErrUnknownStrategy.
func NewFactory(src Source, defaults DefaultValues, opts ...Option) (*Factory, error) {
	f := &Factory{
		source:   src,
		defaults: defaults,
		registry: DefaultRegistry(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		checker:  NewDataValidator(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(f)
	}

	if err := f.generate(); err != nil {
		return nil, fmt.Errorf("fields: generate: %w", err)
	}
	return f, nil
}

// Validator returns the schema validator used during generation, holding the
// issues of the last run.
func (f *Factory) Validator() *DataValidator {
	return f.checker
}

// Source returns the schema the factory was built from.
func (f *Factory) Source() Source {
	return f.source
}

// Widgets returns the widget groups keyed by parent key.
func (f *Factory) Widgets() map[string]WidgetGroup {
	out := make(map[string]WidgetGroup, len(f.widgets))
	for k, v := range f.widgets {
		out[k] = v
	}
	return out
}

// Validators returns the validator groups keyed by parent key.
func (f *Factory) Validators() map[string]ValidatorGroup {
	out := make(map[string]ValidatorGroup, len(f.validators))
	for k, v := range f.validators {
		out[k] = v
	}
	return out
}

// WidgetGroup returns the widgets of one parent key.
func (f *Factory) WidgetGroup(parent string) (WidgetGroup, bool) {
	group, ok := f.widgets[parent]
	return group, ok
}

// ValidatorGroup returns the validators of one parent key.
func (f *Factory) ValidatorGroup(parent string) (ValidatorGroup, bool) {
	group, ok := f.validators[parent]
	return group, ok
}

// ResolvedValues returns the resolved value bags keyed by parent then child key.
func (f *Factory) ResolvedValues() map[string]map[string]Values {
	out := make(map[string]map[string]Values, len(f.values))
	for parent, children := range f.values {
		inner := make(map[string]Values, len(children))
		for child, bag := range children {
			inner[child] = cloneValues(bag)
		}
		out[parent] = inner
	}
	return out
}

// Parents returns the sorted parent keys of the generated groups.
func (f *Factory) Parents() []string {
	return sortedKeys(f.widgets)
}

func (f *Factory) generate() error {
	if f.source == nil {
		return fmt.Errorf("%w: source is required", ErrSchemaInvalid)
	}
	if result := f.checker.Validate(f.source); !result.Valid() {
		return result.Err()
	}

	decorator, err := f.registry.Decorator(f.source.Decorator())
	if err != nil {
		return err
	}
	widgetStrategy, err := f.registry.Strategy(orDefault(f.source.Widget(), StrategySchema))
	if err != nil {
		return err
	}
	validatorStrategy, err := f.registry.Strategy(orDefault(f.source.Validator(), StrategySchema))
	if err != nil {
		return err
	}

	var preferred map[string][]string
	if orderer, ok := f.source.(Orderer); ok {
		preferred = orderer.FieldsOrder()
	}

	f.values = make(map[string]map[string]Values)
	f.widgets = make(map[string]WidgetGroup)
	f.validators = make(map[string]ValidatorGroup)

	types := f.source.FieldsTypes()
	for _, parent := range sortedKeys(types) {
		children := types[parent]
		bags := make(map[string]Values, len(children))
		widgets := WidgetGroup{
			Name:      parent,
			Format:    f.source.FormFormat(),
			Strategy:  widgetStrategy.Name,
			Decorator: decorator.Name(),
			Widgets:   make(map[string]Widget, len(children)),
		}
		validators := ValidatorGroup{
			Name:       parent,
			Decorator:  decorator.Name(),
			Validators: make(map[string]*validator.Validator, len(children)),
		}

		for _, child := range sortedKeys(children) {
			fieldType := children[child]
			bag, err := f.fieldValues(parent, child, fieldType)
			if err != nil {
				return err
			}
			bags[child] = bag
			widgets.Widgets[child] = f.widget(child, fieldType, bag)

			v, err := f.validator(fieldType, bag)
			if err != nil {
				return fmt.Errorf("field %s.%s: %w", parent, child, err)
			}
			validators.Validators[child] = v
		}

		keys := sortedKeys(children)
		widgets.Order = widgetStrategy.Order(keys, preferred[parent])
		validators.Order = validatorStrategy.Order(keys, preferred[parent])

		if err := decorator.DecorateWidgets(&widgets); err != nil {
			return fmt.Errorf("decorate widgets %q: %w", parent, err)
		}
		if err := decorator.DecorateValidators(&validators); err != nil {
			return fmt.Errorf("decorate validators %q: %w", parent, err)
		}

		f.values[parent] = bags
		f.widgets[parent] = widgets
		f.validators[parent] = validators
		f.logger.Debug("fields generated", "parent", parent, "fields", len(children), "decorator", decorator.Name())
	}
	return nil
}

// fieldValues resolves the value bag of one field: the type's defaults with
// a non-empty override merged on top.
func (f *Factory) fieldValues(parent, child, fieldType string) (Values, error) {
	defaults, ok := f.defaults.Bag(fieldType)
	if !ok {
		return nil, fmt.Errorf("%w: %q (field %s.%s)", ErrUnknownFieldType, fieldType, parent, child)
	}

	override, ok := f.source.FieldsValues()[parent][child]
	if !ok || len(override) == 0 {
		return defaults, nil
	}
	return CreateFieldValues(override, defaults), nil
}

// widget builds from a copy of bag so widgets never share state with the
// resolved values or the validators.
func (f *Factory) widget(key, fieldType string, bag Values) Widget {
	w := f.registry.WidgetBuilder(fieldType)(key, fieldType, cloneValues(bag))
	w.Key = key
	w.Type = fieldType
	w.Format = f.source.FormFormat()
	if w.Label == "" {
		w.Label = f.source.FieldsLabels()[key]
	}
	if w.Advanced == nil {
		w.Advanced = f.source.FieldsAdvanced()[fieldType]
	}
	if w.Values == nil {
		w.Values = Values{}
	}
	return w
}

func (f *Factory) validator(fieldType string, bag Values) (*validator.Validator, error) {
	kindName, ok := f.registry.FieldKind(fieldType)
	if !ok {
		kindName = validator.KindPass
	}
	kind, ok := validator.Lookup(kindName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", validator.ErrUnknownKind, kindName)
	}

	declared := make(map[string]bool)
	for _, key := range validator.Declared(kind) {
		declared[key] = true
	}
	notValidate := make(map[string]bool)
	for key := range bag {
		if !declared[key] {
			notValidate[key] = true
		}
	}

	var opts []validator.Option
	if f.clock != nil {
		opts = append(opts, validator.WithClock(f.clock))
	}
	return validator.New(kind, cloneValues(bag), nil, notValidate, opts...)
}

// CreateFieldValues merges override onto defaults and keeps only the keys the
// defaults declare: shared keys take the override value, keys unknown to the
// defaults are dropped.
func CreateFieldValues(override, defaults Values) Values {
	out := make(Values, len(defaults))
	for key, value := range defaults {
		if replacement, ok := override[key]; ok {
			out[key] = replacement
			continue
		}
		out[key] = value
	}
	return out
}

func orDefault(value, fallback string) string {
	if isBlank(value) {
		return fallback
	}
	return value
}
