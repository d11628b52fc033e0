package tools

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tobedoit/gCalendar-mcp/internal/instrumentation"
	"github.com/tobedoit/gCalendar-mcp/internal/logging"
)

// InvocationRecorder records tool invocation metrics.
type InvocationRecorder interface {
	RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration)
}

// Dispatcher routes tool calls to their registered handlers and turns
// every outcome into a CallToolResult. No error or panic raised while
// handling a call escapes CallTool.
type Dispatcher struct {
	registry *Registry
	logger   *slog.Logger
	metrics  InvocationRecorder
	audit    *instrumentation.AuditLogger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.logger = logger }
}

// WithMetrics records every invocation on m.
func WithMetrics(m InvocationRecorder) DispatcherOption {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithAuditLogger writes every invocation to al.
func WithAuditLogger(al *instrumentation.AuditLogger) DispatcherOption {
	return func(d *Dispatcher) { d.audit = al }
}

// NewDispatcher returns a dispatcher serving the tools in registry.
func NewDispatcher(registry *Registry, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ListTools returns the registered tools.
func (d *Dispatcher) ListTools() []mcp.Tool {
	return d.registry.ListTools()
}

// CallTool executes request and always returns a result. Failures are
// reported with IsError set:
//   - an unregistered tool yields "Unknown tool: <name>"
//   - absent arguments yield "No arguments provided"
//   - arguments rejected by the tool's schema yield "Invalid arguments: ..."
//   - handler errors and panics yield their message
func (d *Dispatcher) CallTool(ctx context.Context, request mcp.CallToolRequest) *mcp.CallToolResult {
	name := request.Params.Name
	logger := logging.WithTool(d.logger, name)
	payload, _ := json.Marshal(request.Params)
	logger.Debug("tool call received", logging.Payload(payload))

	label := instrumentation.BoundedLabel(name, d.registry.Names())
	ctx, span := instrumentation.StartToolSpan(ctx, label)
	defer span.End()

	invocation := instrumentation.NewToolInvocation(label).WithSpanContext(ctx)

	result, err := d.invoke(ctx, request)
	switch {
	case err != nil:
		result = mcp.NewToolResultError(resultMessage(err))
	case result.IsError:
		err = errors.New(resultText(result))
	}

	if err != nil {
		instrumentation.SetSpanError(span, err)
		invocation.CompleteWithError(err)

		attrs := []any{logging.Status(logging.StatusError), logging.Err(err)}
		var panicErr *PanicError
		if errors.As(err, &panicErr) {
			instrumentation.AddSpanEvent(span, "panic")
			attrs = append(attrs, logging.Stack(panicErr.Stack))
		}
		logger.Error("tool call failed", attrs...)
	} else {
		instrumentation.SetSpanSuccess(span)
		invocation.CompleteSuccess()
		logger.Debug("tool call succeeded",
			logging.Status(logging.StatusSuccess),
			slog.Duration(logging.KeyDuration, invocation.Duration))
	}

	if d.metrics != nil {
		d.metrics.RecordToolInvocation(ctx, label, invocation.Status(), invocation.Duration)
	}
	d.audit.LogToolInvocation(invocation)

	return result
}

// invoke resolves, validates and runs the call. A nil error guarantees a
// non-nil result.
func (d *Dispatcher) invoke(ctx context.Context, request mcp.CallToolRequest) (result *mcp.CallToolResult, err error) {
	e, ok := d.registry.lookup(request.Params.Name)
	if !ok {
		return nil, &UnknownToolError{Name: request.Params.Name}
	}

	if request.Params.Arguments == nil {
		return nil, ErrNoArguments
	}

	args := e.schema.Validate(request.Params.Arguments)
	if !args.OK() {
		return nil, args.Err()
	}
	request.Params.Arguments = args.Value()

	defer func() {
		if r := recover(); r != nil {
			result, err = nil, &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()

	result, err = e.handler(ctx, request)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, errors.New("tool returned no result")
	}
	return result, nil
}

// resultText joins the text content of result.
func resultText(result *mcp.CallToolResult) string {
	var parts []string
	for _, c := range result.Content {
		switch tc := c.(type) {
		case mcp.TextContent:
			parts = append(parts, tc.Text)
		case *mcp.TextContent:
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}
