package tools

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoArguments is reported when a call carries no argument object.
var ErrNoArguments = errors.New("no arguments provided")

// FieldError describes one rejected argument. Field is empty when the
// problem concerns the argument object as a whole.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) String() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// ArgumentError is returned when tool arguments are missing or invalid.
type ArgumentError struct {
	Fields []FieldError
}

func (e *ArgumentError) Error() string {
	return "invalid arguments: " + e.Details()
}

// Details joins the field errors with "; ".
func (e *ArgumentError) Details() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.String())
	}
	return strings.Join(parts, "; ")
}

// UnknownToolError is returned when a call names a tool that is not
// registered.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool %q", e.Name)
}

// PanicError carries a panic recovered from a tool handler.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("tool handler panicked: %v", e.Value)
}

// resultMessage renders err as the text returned to the host.
func resultMessage(err error) string {
	var (
		unknown  *UnknownToolError
		argErr   *ArgumentError
		panicErr *PanicError
	)
	switch {
	case errors.Is(err, ErrNoArguments):
		return "No arguments provided"
	case errors.As(err, &unknown):
		return "Unknown tool: " + unknown.Name
	case errors.As(err, &argErr):
		return "Invalid arguments: " + argErr.Details()
	case errors.As(err, &panicErr):
		return fmt.Sprintf("Internal error: %v", panicErr.Value)
	default:
		return err.Error()
	}
}
