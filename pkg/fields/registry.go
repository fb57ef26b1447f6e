package fields

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formwizard/pkg/validator"
)

// Registry resolves the identifiers a schema names: decorators, ordering
// strategies, and per field type the widget builder and validator kind.
type Registry struct {
	mu         sync.RWMutex
	decorators map[string]Decorator
	strategies map[string]Strategy
	kinds      map[string]string
	widgets    map[string]WidgetBuilder
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		decorators: make(map[string]Decorator),
		strategies: make(map[string]Strategy),
		kinds:      make(map[string]string),
		widgets:    make(map[string]WidgetBuilder),
	}
}

// DefaultRegistry returns a registry seeded with the built-in decorators,
// strategies and field type mapping.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegisterDecorator(DefaultDecorator{})
	r.MustRegisterDecorator(SanitizeDecorator{})
	r.MustRegisterStrategy(SchemaStrategy)
	r.MustRegisterStrategy(SortedStrategy)

	for fieldType, kind := range map[string]string{
		TypeNumber:     validator.KindNumber,
		TypeYear:       validator.KindNumber,
		TypeRange:      validator.KindNumber,
		TypeSelect:     validator.KindChoice,
		TypeCheckboxes: validator.KindChoice,
		TypeRadio:      validator.KindChoice,
		TypeDate:       validator.KindDate,
		TypeFile:       validator.KindFile,
		TypeAttach:     validator.KindFile,
		TypeString:     validator.KindPass,
		TypeBool:       validator.KindPass,
	} {
		if err := r.MapFieldType(fieldType, kind); err != nil {
			panic(err)
		}
	}
	return r
}

// RegisterDecorator adds a decorator by its Name(). Duplicate names return an error.
func (r *Registry) RegisterDecorator(decorator Decorator) error {
	if decorator == nil {
		return fmt.Errorf("fields: decorator is required")
	}
	name := strings.TrimSpace(decorator.Name())
	if name == "" {
		return fmt.Errorf("fields: decorator name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.decorators[name]; exists {
		return fmt.Errorf("fields: decorator %q already registered", name)
	}
	r.decorators[name] = decorator
	return nil
}

// MustRegisterDecorator panics on registration failure.
func (r *Registry) MustRegisterDecorator(decorator Decorator) {
	if err := r.RegisterDecorator(decorator); err != nil {
		panic(err)
	}
}

// Decorator retrieves a decorator by name.
func (r *Registry) Decorator(name string) (Decorator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	decorator, ok := r.decorators[strings.TrimSpace(name)]
	if !ok {
		return nil, fmt.Errorf("%w: decorator %q not found", ErrUnknownStrategy, name)
	}
	return decorator, nil
}

// Decorators returns the sorted decorator names.
func (r *Registry) Decorators() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.decorators)
}

// RegisterStrategy adds an ordering strategy. Duplicate names return an error.
func (r *Registry) RegisterStrategy(strategy Strategy) error {
	name := strings.TrimSpace(strategy.Name)
	if name == "" {
		return fmt.Errorf("fields: strategy name is required")
	}
	if strategy.Order == nil {
		return fmt.Errorf("fields: strategy %q has no order func", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.strategies[name]; exists {
		return fmt.Errorf("fields: strategy %q already registered", name)
	}
	r.strategies[name] = strategy
	return nil
}

// MustRegisterStrategy panics on registration failure.
func (r *Registry) MustRegisterStrategy(strategy Strategy) {
	if err := r.RegisterStrategy(strategy); err != nil {
		panic(err)
	}
}

// Strategy retrieves an ordering strategy by name.
func (r *Registry) Strategy(name string) (Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	strategy, ok := r.strategies[strings.TrimSpace(name)]
	if !ok {
		return Strategy{}, fmt.Errorf("%w: strategy %q not found", ErrUnknownStrategy, name)
	}
	return strategy, nil
}

// Strategies returns the sorted strategy names.
func (r *Registry) Strategies() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.strategies)
}

// MapFieldType binds a field type to a registered validator kind, replacing
// any previous binding.
func (r *Registry) MapFieldType(fieldType, kind string) error {
	fieldType = strings.TrimSpace(fieldType)
	if fieldType == "" {
		return fmt.Errorf("fields: field type is required")
	}
	if _, ok := validator.Lookup(kind); !ok {
		return fmt.Errorf("fields: field type %q: %w: %q", fieldType, validator.ErrUnknownKind, kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds[fieldType] = kind
	return nil
}

// FieldKind reports the validator kind bound to a field type.
func (r *Registry) FieldKind(fieldType string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kind, ok := r.kinds[fieldType]
	return kind, ok
}

// FieldTypes returns the sorted field types with a kind binding.
func (r *Registry) FieldTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.kinds))
	for fieldType := range r.kinds {
		types = append(types, fieldType)
	}
	sort.Strings(types)
	return types
}

// RegisterWidget binds a widget builder to a field type. Field types without
// one use BuildWidget. Duplicate bindings return an error.
func (r *Registry) RegisterWidget(fieldType string, build WidgetBuilder) error {
	fieldType = strings.TrimSpace(fieldType)
	if fieldType == "" {
		return fmt.Errorf("fields: field type is required")
	}
	if build == nil {
		return fmt.Errorf("fields: widget builder for %q is required", fieldType)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.widgets[fieldType]; exists {
		return fmt.Errorf("fields: widget builder for %q already registered", fieldType)
	}
	r.widgets[fieldType] = build
	return nil
}

// MustRegisterWidget panics on registration failure.
func (r *Registry) MustRegisterWidget(fieldType string, build WidgetBuilder) {
	if err := r.RegisterWidget(fieldType, build); err != nil {
		panic(err)
	}
}

// WidgetBuilder returns the builder bound to a field type, or BuildWidget.
func (r *Registry) WidgetBuilder(fieldType string) WidgetBuilder {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if build, ok := r.widgets[fieldType]; ok {
		return build
	}
	return BuildWidget
}
