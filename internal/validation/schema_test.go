package validation

import (
	"errors"
	"strings"
	"testing"
)

const widgetSchema = `{
  "type": "object",
  "required": ["name"],
  "properties": {
    "name": {"type": "string"},
    "count": {"type": "integer", "minimum": 0}
  }
}`

func TestSchemaValidateJSON(t *testing.T) {
	schema, err := CompileSchema("widget.json", []byte(widgetSchema))
	if err != nil {
		t.Fatalf("compile schema: %v", err)
	}

	if err := schema.ValidateJSON([]byte(`{"name":"hero","count":2}`)); err != nil {
		t.Fatalf("expected payload to validate, got %v", err)
	}

	err = schema.ValidateJSON([]byte(`{"count":-1}`))
	if err == nil {
		t.Fatalf("expected validation failure")
	}
	if !errors.Is(err, ErrSchemaValidation) {
		t.Fatalf("expected ErrSchemaValidation, got %v", err)
	}
	if issues := Issues(err); len(issues) < 2 {
		t.Fatalf("expected at least two issues, got %+v", issues)
	}
}

func TestSchemaValidateJSONRejectsSyntaxErrors(t *testing.T) {
	schema := MustCompileSchema("widget.json", []byte(widgetSchema))

	err := schema.ValidateJSON([]byte(`{"name":`))
	if !errors.Is(err, ErrSchemaValidation) {
		t.Fatalf("expected ErrSchemaValidation, got %v", err)
	}
}

func TestCompileSchemaInvalid(t *testing.T) {
	if _, err := CompileSchema("broken.json", []byte(`{"type": 12}`)); !errors.Is(err, ErrSchemaInvalid) {
		t.Fatalf("expected ErrSchemaInvalid, got %v", err)
	}
}

func TestSchemaErrorNamesSchemaAndOrdersIssues(t *testing.T) {
	schema := MustCompileSchema("widget.json", []byte(widgetSchema))

	err := schema.ValidateJSON([]byte(`{"name": 3, "count": -1}`))
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected *SchemaError, got %T", err)
	}
	if schemaErr.Schema != "widget.json" || schema.Name() != "widget.json" {
		t.Fatalf("expected schema name widget.json, got %q", schemaErr.Schema)
	}
	issues := Issues(err)
	if len(issues) != 2 || issues[0].Location != "#/count" || issues[1].Location != "#/name" {
		t.Fatalf("expected issues ordered by location, got %+v", issues)
	}
	if !strings.HasPrefix(err.Error(), "widget.json: #/count") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestIssuesWrapsPlainErrors(t *testing.T) {
	issues := Issues(errors.New("boom"))
	if len(issues) != 1 || issues[0].Location != "#" || issues[0].Message != "boom" {
		t.Fatalf("expected root issue, got %+v", issues)
	}
	if Issues(nil) != nil {
		t.Fatalf("expected nil issues for nil error")
	}
}
