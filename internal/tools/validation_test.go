package tools

import (
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidation(t *testing.T) {
	ok := Valid(42)
	assert.True(t, ok.OK())
	assert.Equal(t, 42, ok.Value())
	assert.Nil(t, ok.Errors())
	assert.NoError(t, ok.Err())

	bad := Invalid[int](
		FieldError{Field: "summary", Message: "is required"},
		FieldError{Message: "expected an object"},
	)
	assert.False(t, bad.OK())
	assert.Zero(t, bad.Value())
	assert.Len(t, bad.Errors(), 2)

	var argErr *ArgumentError
	require.True(t, errors.As(bad.Err(), &argErr))
	assert.Equal(t, "summary: is required; expected an object", argErr.Details())
	assert.Equal(t, "invalid arguments: summary: is required; expected an object", argErr.Error())

	assert.False(t, Invalid[string]().OK(), "Invalid without errors must still fail")
}

func TestResultMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"no arguments", ErrNoArguments, "No arguments provided"},
		{"unknown tool", &UnknownToolError{Name: "x"}, "Unknown tool: x"},
		{"argument error", &ArgumentError{Fields: []FieldError{{Field: "end_time", Message: "is required"}}}, "Invalid arguments: end_time: is required"},
		{"panic", &PanicError{Value: "boom"}, "Internal error: boom"},
		{"other", errors.New("Rate Limit Exceeded"), "Rate Limit Exceeded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resultMessage(tt.err))
		})
	}
}

func TestSchema_Validate(t *testing.T) {
	schema, err := CompileSchema(mcp.NewTool("create",
		mcp.WithString("summary", mcp.Required()),
		mcp.WithArray("tags", mcp.Items(map[string]any{"type": "string"})),
		mcp.WithObject("options",
			mcp.Properties(map[string]any{
				"useDefault": map[string]any{"type": "boolean"},
			}),
		),
	))
	require.NoError(t, err)

	tests := []struct {
		name  string
		args  any
		valid bool
	}{
		{"required only", map[string]any{"summary": "Sync"}, true},
		{"all fields", map[string]any{"summary": "Sync", "tags": []any{"a", "b"}, "options": map[string]any{"useDefault": true}}, true},
		{"missing required", map[string]any{"tags": []any{}}, false},
		{"wrong item type", map[string]any{"summary": "Sync", "tags": []any{float64(1)}}, false},
		{"wrong nested type", map[string]any{"summary": "Sync", "options": map[string]any{"useDefault": "yes"}}, false},
		{"array instead of object", []any{}, false},
		{"nil map", map[string]any(nil), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := schema.Validate(tt.args)
			assert.Equal(t, tt.valid, v.OK(), "errors: %v", v.Errors())
			if tt.valid {
				assert.Equal(t, tt.args, v.Value())
			} else {
				assert.Error(t, v.Err())
			}
		})
	}
}

func TestCompileSchema_RawSchema(t *testing.T) {
	schema, err := CompileSchema(mcp.NewToolWithRawSchema("raw", "", []byte(`{
		"type": "object",
		"properties": {"n": {"type": "number"}},
		"required": ["n"]
	}`)))
	require.NoError(t, err)

	assert.True(t, schema.Validate(map[string]any{"n": float64(3)}).OK())
	assert.False(t, schema.Validate(map[string]any{"n": "three"}).OK())
}
