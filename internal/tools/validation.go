package tools

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/mark3labs/mcp-go/mcp"
)

// Validation is either a typed value or the list of field errors that
// prevented producing one.
type Validation[T any] struct {
	value  T
	errors []FieldError
}

// Valid wraps a successfully validated value.
func Valid[T any](value T) Validation[T] {
	return Validation[T]{value: value}
}

// Invalid reports why no value could be produced. At least one error
// should be given.
func Invalid[T any](errs ...FieldError) Validation[T] {
	if len(errs) == 0 {
		errs = []FieldError{{Message: "invalid value"}}
	}
	return Validation[T]{errors: errs}
}

// OK reports whether the validation succeeded.
func (v Validation[T]) OK() bool {
	return len(v.errors) == 0
}

// Value returns the validated value, the zero value when !OK().
func (v Validation[T]) Value() T {
	return v.value
}

// Errors returns the field errors, nil when OK().
func (v Validation[T]) Errors() []FieldError {
	return v.errors
}

// Err returns an *ArgumentError for a failed validation, nil otherwise.
func (v Validation[T]) Err() error {
	if v.OK() {
		return nil
	}
	return &ArgumentError{Fields: v.errors}
}

// Schema validates argument bags against a tool's input schema.
type Schema struct {
	resolved *jsonschema.Resolved
}

// CompileSchema resolves the input schema declared by tool.
func CompileSchema(tool mcp.Tool) (*Schema, error) {
	raw := tool.RawInputSchema
	if len(raw) == 0 {
		var err error
		raw, err = json.Marshal(tool.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal input schema of %s: %w", tool.Name, err)
		}
	}

	var schema jsonschema.Schema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, fmt.Errorf("invalid input schema of %s: %w", tool.Name, err)
	}

	resolved, err := schema.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve input schema of %s: %w", tool.Name, err)
	}
	return &Schema{resolved: resolved}, nil
}

// Validate checks that args is an object conforming to the schema.
func (s *Schema) Validate(args any) Validation[map[string]any] {
	obj, ok := args.(map[string]any)
	if !ok {
		return Invalid[map[string]any](FieldError{Message: fmt.Sprintf("expected an object, got %T", args)})
	}
	if err := s.resolved.Validate(obj); err != nil {
		return Invalid[map[string]any](FieldError{Message: err.Error()})
	}
	return Valid(obj)
}
