package openapi_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formwizard/pkg/fields"
	"github.com/goliatone/go-formwizard/pkg/openapi"
	"github.com/goliatone/go-formwizard/pkg/testsupport"
)

const contactsDocument = `
openapi: 3.0.3
info:
  title: Contacts
  version: 1.0.0
paths:
  /contacts:
    get:
      operationId: listContacts
      responses:
        "200":
          description: ok
    post:
      operationId: createContact
      requestBody:
        content:
          application/json:
            schema:
              type: object
              required: [name, kind]
              properties:
                name:
                  type: string
                  title: Full name
                kind:
                  type: string
                  enum: [home, work]
                age:
                  type: integer
                  minimum: 18
                  maximum: 99
                subscribed:
                  type: boolean
                born:
                  type: string
                  format: date
                avatar:
                  type: string
                  format: binary
                tags:
                  type: array
                  items:
                    type: string
                    enum: [friend, family]
                address:
                  type: object
                  properties:
                    street:
                      type: string
                    country:
                      type: string
      responses:
        "201":
          description: created
`

func TestSchemaFromOperation_MapsProperties(t *testing.T) {
	schema, err := openapi.SchemaFromOperation(context.Background(), []byte(contactsDocument), "createContact")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}

	wantTypes := map[string]map[string]string{
		"createContact": {
			"name":       fields.TypeString,
			"kind":       fields.TypeSelect,
			"age":        fields.TypeNumber,
			"subscribed": fields.TypeBool,
			"born":       fields.TypeDate,
			"avatar":     fields.TypeFile,
			"tags":       fields.TypeCheckboxes,
		},
		"address": {
			"street":  fields.TypeString,
			"country": fields.TypeString,
		},
	}
	if diff := cmp.Diff(wantTypes, schema.FieldsTypes()); diff != "" {
		t.Fatalf("types mismatch (-want +got):\n%s", diff)
	}

	wantOrder := []string{"kind", "name", "age", "avatar", "born", "subscribed", "tags"}
	if diff := cmp.Diff(wantOrder, schema.FieldsOrder()["createContact"]); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}

	labels := schema.FieldsLabels()
	if labels["name"] != "Full name" || labels["age"] != "age" {
		t.Fatalf("unexpected labels: %v", labels)
	}

	values := schema.FieldsValues()["createContact"]
	wantKind := fields.Values{
		"list":    map[string]any{"home": "home", "work": "work"},
		"classes": map[string]any{"home": "", "work": ""},
	}
	if diff := cmp.Diff(wantKind, values["kind"]); diff != "" {
		t.Fatalf("kind values mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(fields.Values{"min": 18.0, "max": 99.0}, values["age"]); diff != "" {
		t.Fatalf("age values mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(fields.Values{"format": openapi.DateFormat}, values["born"]); diff != "" {
		t.Fatalf("born values mismatch (-want +got):\n%s", diff)
	}
	if _, ok := values["name"]; ok {
		t.Fatalf("plain strings should carry no override values")
	}
}

func TestSchemaFromOperation_FeedsFactory(t *testing.T) {
	schema, err := openapi.SchemaFromOperation(context.Background(), []byte(contactsDocument), "createContact",
		openapi.WithParent("contact"),
		openapi.WithDecorator("sanitize"),
	)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}

	factory := testsupport.MustFactory(t, schema, testsupport.DefaultValues())
	if diff := cmp.Diff([]string{"address", "contact"}, factory.Parents()); diff != "" {
		t.Fatalf("parents mismatch (-want +got):\n%s", diff)
	}

	resolved := factory.ResolvedValues()["contact"]
	if resolved["age"]["min"] != 18.0 || resolved["age"]["step"] != 1 {
		t.Fatalf("age not merged onto defaults: %v", resolved["age"])
	}
	if resolved["born"]["format"] != openapi.DateFormat {
		t.Fatalf("born format not overridden: %v", resolved["born"])
	}

	group, ok := factory.WidgetGroup("contact")
	if !ok {
		t.Fatalf("missing contact widget group")
	}
	if group.Widgets["name"].Label != "Full name" {
		t.Fatalf("unexpected label %q", group.Widgets["name"].Label)
	}
	if group.Widgets["age"].Advanced == nil {
		t.Fatalf("expected derived advanced parameters on number widgets")
	}
}

func TestSchemaFromOperation_Errors(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name      string
		raw       string
		operation string
		want      error
	}{
		{name: "empty", raw: "  ", operation: "createContact", want: openapi.ErrEmptyDocument},
		{name: "unknown operation", raw: contactsDocument, operation: "deleteContact", want: openapi.ErrOperationNotFound},
		{name: "no body", raw: contactsDocument, operation: "listContacts", want: openapi.ErrNoRequestBody},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := openapi.SchemaFromOperation(ctx, []byte(tc.raw), tc.operation)
			if !errors.Is(err, tc.want) {
				t.Fatalf("want %v, got %v", tc.want, err)
			}
		})
	}

	if _, err := openapi.SchemaFromOperation(ctx, []byte("openapi: [broken"), "x"); err == nil {
		t.Fatalf("expected load error for malformed document")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := openapi.SchemaFromOperation(cancelled, []byte(contactsDocument), "createContact"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestOperations(t *testing.T) {
	ids, err := openapi.Operations(context.Background(), []byte(contactsDocument))
	if err != nil {
		t.Fatalf("operations: %v", err)
	}
	if diff := cmp.Diff([]string{"createContact", "listContacts"}, ids); diff != "" {
		t.Fatalf("operations mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFile(t *testing.T) {
	path := testsupport.WriteTempFile(t, "contacts.yaml", []byte(contactsDocument))
	schema, err := openapi.LoadFile(context.Background(), path, "createContact")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if schema.FieldsTypes()["createContact"]["kind"] != fields.TypeSelect {
		t.Fatalf("unexpected types: %v", schema.FieldsTypes())
	}
}
