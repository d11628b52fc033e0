package transport

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tobedoit/gCalendar-mcp/internal/instrumentation"
	"github.com/tobedoit/gCalendar-mcp/internal/logging"
)

// JSON-RPC error codes used by the transport.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

const methodToolsCall = "tools/call"

// MessageHandler answers every method except tools/call.
// *mcpserver.MCPServer implements it.
type MessageHandler interface {
	HandleMessage(ctx context.Context, message json.RawMessage) mcp.JSONRPCMessage
}

// ToolCaller executes tools/call requests. *tools.Dispatcher implements it.
type ToolCaller interface {
	CallTool(ctx context.Context, request mcp.CallToolRequest) *mcp.CallToolResult
}

// RequestRecorder records one metric sample per handled frame.
type RequestRecorder interface {
	RecordRequest(ctx context.Context, method, status string, duration time.Duration)
}

// PanicHandler receives a panic recovered while a frame was handled.
// (*lifecycle.Guard).Recovered implements it.
type PanicHandler func(name string, recovered any, stack []byte)

type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

func (r request) isNotification() bool {
	return len(r.ID) == 0
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

var nullID = json.RawMessage("null")

// Stdio serves line-delimited JSON-RPC frames. Frames are handled one at a
// time and every response is written as a single line.
type Stdio struct {
	handler MessageHandler
	caller  ToolCaller
	logger  *slog.Logger
	metrics RequestRecorder
	onPanic PanicHandler
}

// Option configures a Stdio transport.
type Option func(*Stdio)

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Stdio) { s.logger = logger }
}

// WithMetrics records every frame on m.
func WithMetrics(m RequestRecorder) Option {
	return func(s *Stdio) { s.metrics = m }
}

// WithPanicHandler reports panics raised while handling a frame to h.
// The frame is answered with an internal error and serving continues.
func WithPanicHandler(h PanicHandler) Option {
	return func(s *Stdio) { s.onPanic = h }
}

// NewStdio creates a transport that routes tools/call to caller and
// everything else to handler.
func NewStdio(handler MessageHandler, caller ToolCaller, opts ...Option) *Stdio {
	s := &Stdio{
		handler: handler,
		caller:  caller,
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Serve reads frames from in until it is exhausted or ctx is done and
// writes responses to out. Reaching EOF returns nil.
func (s *Stdio) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan []byte)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)
		reader := bufio.NewReader(in)
		for {
			line, err := reader.ReadBytes('\n')
			if len(bytes.TrimSpace(line)) > 0 {
				select {
				case lines <- line:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					readErr <- err
				}
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					return fmt.Errorf("failed to read from transport: %w", err)
				default:
					s.logger.Info("transport closed by host")
					return nil
				}
			}
			data := s.processFrame(ctx, bytes.TrimSpace(line))
			if data == nil {
				continue
			}
			if _, err := out.Write(data); err != nil {
				return fmt.Errorf("failed to write to transport: %w", err)
			}
		}
	}
}

// processFrame handles frame and returns the encoded response line, nil for
// notifications. A panic anywhere on that path is reported and answered
// with an internal error.
func (s *Stdio) processFrame(ctx context.Context, frame []byte) (data []byte) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		stack := debug.Stack()
		if s.onPanic != nil {
			s.onPanic("frame handler", r, stack)
		} else {
			s.logger.Error("frame handler panicked", slog.Any("panic", r), logging.Stack(stack))
		}
		data = internalError(frame, fmt.Sprintf("%v", r))
	}()

	resp := s.handleFrame(ctx, frame)
	if resp == nil {
		return nil
	}
	data, err := encodeFrame(resp)
	if err != nil {
		s.logger.Error("failed to encode response", logging.Err(err))
		return internalError(frame, err.Error())
	}
	return data
}

// internalError answers frame with a -32603 error, nil when frame carries no id.
func internalError(frame []byte, detail string) []byte {
	var req request
	if err := json.Unmarshal(frame, &req); err != nil || req.isNotification() {
		return nil
	}
	data, err := encodeFrame(errorResponse(req.ID, codeInternalError, "Internal error", detail))
	if err != nil {
		return nil
	}
	return data
}

// handleFrame returns the value to send back, nil for notifications.
func (s *Stdio) handleFrame(ctx context.Context, frame []byte) any {
	start := time.Now()

	var req request
	if err := json.Unmarshal(frame, &req); err != nil {
		s.logger.Error("malformed frame", logging.Payload(frame), logging.Err(err))
		s.record(ctx, "", instrumentation.StatusError, start)
		return errorResponse(nullID, codeParseError, "Parse error", err.Error())
	}
	s.logger.Debug("request received", logging.Method(req.Method), logging.Payload(frame))

	ctx, span := instrumentation.StartRequestSpan(ctx, req.Method)
	defer span.End()

	var resp any
	if req.Method == methodToolsCall {
		resp = s.handleToolCall(ctx, req)
	} else {
		if msg := s.handler.HandleMessage(ctx, frame); msg != nil {
			resp = msg
		}
	}

	status := instrumentation.StatusSuccess
	if isErrorResponse(resp) {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, fmt.Errorf("%s returned an error", req.Method))
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	s.record(ctx, req.Method, status, start)

	return resp
}

func (s *Stdio) handleToolCall(ctx context.Context, req request) any {
	if req.isNotification() {
		s.logger.Error("tools/call sent as a notification, ignoring")
		return nil
	}

	var params mcp.CallToolParams
	if len(req.Params) == 0 {
		return errorResponse(req.ID, codeInvalidRequest, "Invalid request", "missing params")
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	call := mcp.CallToolRequest{Params: params}
	call.Method = req.Method

	return response{
		JSONRPC: mcp.JSONRPC_VERSION,
		ID:      req.ID,
		Result:  s.caller.CallTool(ctx, call),
	}
}

func (s *Stdio) record(ctx context.Context, method, status string, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordRequest(ctx, method, status, time.Since(start))
	}
}

func errorResponse(id json.RawMessage, code int, message string, data any) response {
	return response{
		JSONRPC: mcp.JSONRPC_VERSION,
		ID:      id,
		Error:   &rpcError{Code: code, Message: message, Data: data},
	}
}

func isErrorResponse(resp any) bool {
	switch r := resp.(type) {
	case response:
		return r.Error != nil
	case mcp.JSONRPCError, *mcp.JSONRPCError:
		return true
	}
	return false
}

// encodeFrame renders v as one line. The JSON encoding never contains a raw
// newline, so a frame cannot span lines.
func encodeFrame(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
