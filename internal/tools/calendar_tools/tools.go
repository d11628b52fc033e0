package calendar_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tobedoit/gCalendar-mcp/internal/server"
	"github.com/tobedoit/gCalendar-mcp/internal/tools"
)

// CreateEventToolName is the name the host calls the tool by.
const CreateEventToolName = "create_event"

// NewCreateEventTool describes the create_event tool and its arguments.
func NewCreateEventTool() mcp.Tool {
	return mcp.NewTool(CreateEventToolName,
		mcp.WithDescription("Create a new event in the user's primary Google Calendar"),
		mcp.WithString(argSummary,
			mcp.Required(),
			mcp.Description("Event title"),
		),
		mcp.WithString(argDescription,
			mcp.Description("Event description"),
		),
		mcp.WithString(argLocation,
			mcp.Description("Event location"),
		),
		mcp.WithString(argStartTime,
			mcp.Required(),
			mcp.Description("Start time (ISO-8601, e.g. '2025-01-01T10:00:00+09:00')"),
		),
		mcp.WithString(argEndTime,
			mcp.Required(),
			mcp.Description("End time (ISO-8601, e.g. '2025-01-01T10:30:00+09:00')"),
		),
		mcp.WithArray(argAttendees,
			mcp.Description("Email addresses of the attendees"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithObject(argReminders,
			mcp.Description("Reminder settings. Defaults to a popup 10 minutes before start"),
			mcp.Properties(map[string]any{
				"useDefault": map[string]any{
					"type":        "boolean",
					"description": "Use the calendar's default reminders",
				},
				"overrides": map[string]any{
					"type":        "array",
					"description": "Explicit reminders",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"method": map[string]any{
								"type":        "string",
								"description": "Reminder method ('popup' or 'email')",
							},
							"minutes": map[string]any{
								"type":        "integer",
								"description": "Whole minutes before the event starts",
							},
						},
						"required": []string{"method", "minutes"},
					},
				},
			}),
		),
	)
}

// RegisterCalendarTools adds the calendar tools to r. Handlers read their
// dependencies from sc.
func RegisterCalendarTools(r *tools.Registry, sc *server.ServerContext) error {
	err := r.Add(NewCreateEventTool(), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleCreateEvent(ctx, request, sc)
	})
	if err != nil {
		return fmt.Errorf("failed to register %s: %w", CreateEventToolName, err)
	}
	return nil
}
