package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Handler executes a tool call whose arguments already passed schema
// validation.
type Handler = mcpserver.ToolHandlerFunc

type entry struct {
	tool    mcp.Tool
	schema  *Schema
	handler Handler
}

// Registry is the ordered set of tools the server exposes. Tools are added
// during startup; the registry is read-only once the dispatcher serves calls.
type Registry struct {
	entries []*entry
	byName  map[string]*entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*entry)}
}

// Add registers tool with handler. Tool names must be unique and the input
// schema must resolve.
func (r *Registry) Add(tool mcp.Tool, handler Handler) error {
	if tool.Name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if handler == nil {
		return fmt.Errorf("tool %s has no handler", tool.Name)
	}
	if _, exists := r.byName[tool.Name]; exists {
		return fmt.Errorf("tool %s is already registered", tool.Name)
	}

	schema, err := CompileSchema(tool)
	if err != nil {
		return err
	}

	e := &entry{tool: tool, schema: schema, handler: handler}
	r.entries = append(r.entries, e)
	r.byName[tool.Name] = e
	return nil
}

// ListTools returns the registered tools in registration order.
func (r *Registry) ListTools() []mcp.Tool {
	tools := make([]mcp.Tool, 0, len(r.entries))
	for _, e := range r.entries {
		tools = append(tools, e.tool)
	}
	return tools
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		names = append(names, e.tool.Name)
	}
	return names
}

func (r *Registry) lookup(name string) (*entry, bool) {
	e, ok := r.byName[name]
	return e, ok
}

// Register adds every tool to s with calls routed through d, so tools/list
// and tools/call served by s match the registry.
func (r *Registry) Register(s *mcpserver.MCPServer, d *Dispatcher) {
	for _, e := range r.entries {
		s.AddTool(e.tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return d.CallTool(ctx, request), nil
		})
	}
}
