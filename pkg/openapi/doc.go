// Package openapi derives field schemas from OpenAPI 3 documents.
//
// The request body of one operation becomes a fields.Schema: every scalar
// property is a child field of a single parent key and every object property
// becomes a parent key of its own.
//
//	schema, err := openapi.SchemaFromOperation(ctx, raw, "createAddress")
//	if err != nil {
//		return err
//	}
//	factory, err := fields.NewFactory(schema, defaults)
package openapi
