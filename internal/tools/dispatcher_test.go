package tools

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tobedoit/gCalendar-mcp/internal/instrumentation"
	"github.com/tobedoit/gCalendar-mcp/internal/logging"
)

type invocation struct {
	tool, status string
}

type fakeRecorder struct {
	calls []invocation
}

func (r *fakeRecorder) RecordToolInvocation(_ context.Context, toolName, status string, _ time.Duration) {
	r.calls = append(r.calls, invocation{toolName, status})
}

type dispatcherFixture struct {
	dispatcher *Dispatcher
	logs       *bytes.Buffer
	audit      *bytes.Buffer
	metrics    *fakeRecorder
}

func newFixture(t *testing.T, handlers map[string]Handler) *dispatcherFixture {
	t.Helper()

	r := NewRegistry()
	for _, name := range []string{"echo", "fail", "explode", "reject", "empty"} {
		handler, ok := handlers[name]
		if !ok {
			continue
		}
		require.NoError(t, r.Add(echoTool(name), handler))
	}

	var logs, audit bytes.Buffer
	metrics := &fakeRecorder{}
	d := NewDispatcher(r,
		WithLogger(logging.New(&logs, logging.LevelDebug)),
		WithMetrics(metrics),
		WithAuditLogger(instrumentation.NewAuditLogger(logging.New(&audit, logging.LevelInfo))),
	)
	return &dispatcherFixture{dispatcher: d, logs: &logs, audit: &audit, metrics: metrics}
}

func callRequest(name string, args any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	tc, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "content is %T", result.Content[0])
	return tc.Text
}

var allHandlers = map[string]Handler{
	"echo": echoHandler,
	"fail": func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, errors.New("calendar unavailable")
	},
	"explode": func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var m map[string]int
		m["boom"]++
		return nil, nil
	},
	"reject": func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultError("Failed to create event: quota"), nil
	},
	"empty": func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, nil
	},
}

func TestDispatcher_Success(t *testing.T) {
	f := newFixture(t, allHandlers)

	result := f.dispatcher.CallTool(context.Background(), callRequest("echo", map[string]any{"text": "hello"}))

	assert.False(t, result.IsError)
	assert.Equal(t, "echo: hello", text(t, result))
	assert.Equal(t, []invocation{{"echo", instrumentation.StatusSuccess}}, f.metrics.calls)
	assert.Contains(t, f.logs.String(), `level=DEBUG msg="tool call received" tool=echo payload=`)
	assert.Contains(t, f.logs.String(), `\"text\":\"hello\"`)
	assert.Contains(t, f.audit.String(), "msg=tool_executed")
}

func TestDispatcher_UnknownTool(t *testing.T) {
	f := newFixture(t, allHandlers)

	result := f.dispatcher.CallTool(context.Background(), callRequest("delete_calendar", map[string]any{}))

	assert.True(t, result.IsError)
	assert.Equal(t, "Unknown tool: delete_calendar", text(t, result))
	assert.Contains(t, f.logs.String(), "level=ERROR")
	// Unknown names are not used as metric labels.
	assert.Equal(t, []invocation{{instrumentation.LabelUnknown, instrumentation.StatusError}}, f.metrics.calls)
}

func TestDispatcher_NoArguments(t *testing.T) {
	called := false
	f := newFixture(t, map[string]Handler{
		"echo": func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			called = true
			return echoHandler(ctx, req)
		},
	})

	result := f.dispatcher.CallTool(context.Background(), callRequest("echo", nil))

	assert.True(t, result.IsError)
	assert.Equal(t, "No arguments provided", text(t, result))
	assert.False(t, called, "handler must not run without arguments")
}

func TestDispatcher_InvalidArguments(t *testing.T) {
	tests := []struct {
		name string
		args any
	}{
		{"missing required field", map[string]any{"repeat": float64(2)}},
		{"wrong type", map[string]any{"text": float64(5)}},
		{"not an object", []any{"text"}},
		{"scalar", "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, allHandlers)

			result := f.dispatcher.CallTool(context.Background(), callRequest("echo", tt.args))

			assert.True(t, result.IsError)
			assert.True(t, strings.HasPrefix(text(t, result), "Invalid arguments: "), text(t, result))
		})
	}
}

func TestDispatcher_HandlerError(t *testing.T) {
	f := newFixture(t, allHandlers)

	result := f.dispatcher.CallTool(context.Background(), callRequest("fail", map[string]any{"text": "x"}))

	assert.True(t, result.IsError)
	assert.Equal(t, "calendar unavailable", text(t, result))
	assert.Contains(t, f.logs.String(), `level=ERROR msg="tool call failed" tool=fail status=error error="calendar unavailable"`)
	assert.Contains(t, f.audit.String(), "msg=tool_failed")
}

func TestDispatcher_ErrorResultIsPassedThrough(t *testing.T) {
	f := newFixture(t, allHandlers)

	result := f.dispatcher.CallTool(context.Background(), callRequest("reject", map[string]any{"text": "x"}))

	assert.True(t, result.IsError)
	assert.Equal(t, "Failed to create event: quota", text(t, result))
	assert.Contains(t, f.logs.String(), "level=ERROR")
	assert.Equal(t, []invocation{{"reject", instrumentation.StatusError}}, f.metrics.calls)
}

func TestDispatcher_NilResult(t *testing.T) {
	f := newFixture(t, allHandlers)

	result := f.dispatcher.CallTool(context.Background(), callRequest("empty", map[string]any{"text": "x"}))

	assert.True(t, result.IsError)
	assert.Equal(t, "tool returned no result", text(t, result))
}

func TestDispatcher_PanicIsRecovered(t *testing.T) {
	f := newFixture(t, allHandlers)

	result := f.dispatcher.CallTool(context.Background(), callRequest("explode", map[string]any{"text": "x"}))

	assert.True(t, result.IsError)
	assert.Contains(t, text(t, result), "Internal error: assignment to entry in nil map")
	assert.Contains(t, f.logs.String(), "stack=")
	assert.Contains(t, f.logs.String(), "runtime/debug.Stack")
}

func TestDispatcher_ServesNextCallAfterFailure(t *testing.T) {
	f := newFixture(t, allHandlers)
	ctx := context.Background()

	for _, name := range []string{"fail", "explode", "reject", "nope"} {
		assert.True(t, f.dispatcher.CallTool(ctx, callRequest(name, map[string]any{"text": "x"})).IsError, name)
	}

	result := f.dispatcher.CallTool(ctx, callRequest("echo", map[string]any{"text": "still here"}))
	assert.False(t, result.IsError)
	assert.Equal(t, "echo: still here", text(t, result))
	assert.Len(t, f.metrics.calls, 5)
}

func TestDispatcher_WithoutOptionalCollaborators(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(echoTool("echo"), echoHandler))
	d := NewDispatcher(r)

	assert.Len(t, d.ListTools(), 1)
	result := d.CallTool(context.Background(), callRequest("echo", map[string]any{"text": "quiet"}))
	assert.Equal(t, "echo: quiet", text(t, result))
}
