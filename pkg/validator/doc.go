// Package validator implements the field-level validators produced by the
// fields factory. A Validator owns a typed value set and option set seeded by
// its Kind; callers may refine existing keys but never introduce new ones.
//
// Kinds are plain strategy values (a configure function plus a clean
// predicate) registered by name, so new field kinds can be added without
// subclassing:
//
//	v, err := validator.New(validator.Number, map[string]any{"max": 50}, nil, nil)
//	if err != nil {
//		return err
//	}
//	if _, err := v.Check(); err != nil {
//		return err
//	}
package validator
