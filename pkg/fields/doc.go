// Package fields compiles a field schema into per-field validators and
// widgets.
//
// A schema (Source) names field types per parent key, optional per-field
// override values, labels, advanced parameters and the identifiers of the
// decorator and widget/validator strategies to apply. NewFactory checks the
// schema with a DataValidator, resolves every identifier against a Registry
// and then generates one WidgetGroup and one ValidatorGroup per parent key:
//
//	schema, _ := fields.LoadFile("profile.yaml")
//	defaults, _ := fields.LoadDefaults("defaults.yaml")
//	factory, err := fields.NewFactory(schema, defaults)
//	if err != nil {
//		var schemaErr *fields.SchemaError
//		if errors.As(err, &schemaErr) {
//			// schemaErr.Issues lists every failed check
//		}
//	}
//	widgets := factory.Widgets()["address"]
//
// Override values may only refine keys already present in the type's
// default bag; see CreateFieldValues.
package fields
