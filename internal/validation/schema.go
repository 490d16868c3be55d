package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	ErrSchemaInvalid    = errors.New("schema invalid")
	ErrSchemaValidation = errors.New("schema validation failed")
)

// ValidationIssue points at one offending location in a structured payload.
// Location is a JSON pointer fragment, "#" for the document root.
type ValidationIssue struct {
	Location string `json:"location"`
	Message  string `json:"message,omitempty"`
}

func (i ValidationIssue) String() string {
	if i.Message == "" {
		return i.Location
	}
	return i.Location + ": " + i.Message
}

// SchemaError is returned when a payload does not satisfy a Schema.
type SchemaError struct {
	Schema string
	Issues []ValidationIssue
	cause  error
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString(e.Schema)
	b.WriteString(": ")
	if len(e.Issues) == 0 {
		b.WriteString(ErrSchemaValidation.Error())
		return b.String()
	}
	for idx, issue := range e.Issues {
		if idx > 0 {
			b.WriteString("; ")
		}
		b.WriteString(issue.String())
	}
	return b.String()
}

func (e *SchemaError) Is(target error) bool {
	return target == ErrSchemaValidation
}

func (e *SchemaError) Unwrap() error {
	return e.cause
}

// Issues lists the validation issues carried by err. Errors that are not
// schema failures become a single root issue.
func Issues(err error) []ValidationIssue {
	if err == nil {
		return nil
	}
	var schemaErr *SchemaError
	if errors.As(err, &schemaErr) {
		return schemaErr.Issues
	}
	var compiled *jsonschema.ValidationError
	if errors.As(err, &compiled) {
		return leafIssues(compiled)
	}
	return []ValidationIssue{{Location: "#", Message: err.Error()}}
}

// Schema checks structured payloads such as the layout submission against a
// compiled draft 2020-12 document.
type Schema struct {
	name     string
	compiled *jsonschema.Schema
}

// CompileSchema compiles document under name.
func CompileSchema(name string, document []byte) (*Schema, error) {
	if name = strings.TrimSpace(name); name == "" {
		name = "schema.json"
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(name, bytes.NewReader(document)); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSchemaInvalid, name, err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSchemaInvalid, name, err)
	}
	return &Schema{name: name, compiled: compiled}, nil
}

// MustCompileSchema is CompileSchema for package level schemas.
func MustCompileSchema(name string, document []byte) *Schema {
	schema, err := CompileSchema(name, document)
	if err != nil {
		panic(err)
	}
	return schema
}

// Name is the resource name the schema was compiled under.
func (s *Schema) Name() string {
	if s == nil {
		return ""
	}
	return s.name
}

// ValidateJSON decodes raw and validates the result. Malformed JSON is
// reported as a root issue.
func (s *Schema) ValidateJSON(raw []byte) error {
	if s == nil {
		return nil
	}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var payload any
	if err := decoder.Decode(&payload); err != nil {
		return &SchemaError{
			Schema: s.name,
			Issues: []ValidationIssue{{Location: "#", Message: err.Error()}},
			cause:  err,
		}
	}
	return s.Validate(payload)
}

// Validate checks an already decoded payload.
func (s *Schema) Validate(payload any) error {
	if s == nil {
		return nil
	}
	err := s.compiled.Validate(payload)
	if err == nil {
		return nil
	}
	return &SchemaError{Schema: s.name, Issues: Issues(err), cause: err}
}

// leafIssues flattens the cause tree to its leaves, ordered by location.
func leafIssues(root *jsonschema.ValidationError) []ValidationIssue {
	var issues []ValidationIssue
	stack := []*jsonschema.ValidationError{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if node == nil {
			continue
		}
		if len(node.Causes) > 0 {
			stack = append(stack, node.Causes...)
			continue
		}
		location := strings.TrimSpace(node.InstanceLocation)
		if !strings.HasPrefix(location, "#") {
			location = "#" + location
		}
		issues = append(issues, ValidationIssue{Location: location, Message: strings.TrimSpace(node.Message)})
	}
	sort.SliceStable(issues, func(a, b int) bool {
		return issues[a].Location < issues[b].Location
	})
	return issues
}
