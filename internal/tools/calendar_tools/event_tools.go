package calendar_tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tobedoit/gCalendar-mcp/internal/calendar"
	"github.com/tobedoit/gCalendar-mcp/internal/server"
)

func handleCreateEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	decoded := DecodeEventArgs(request.GetArguments())
	if !decoded.OK() {
		return nil, decoded.Err()
	}

	draft, err := BuildDraft(decoded.Value(), sc.TimeZone())
	if err != nil {
		return nil, err
	}

	inserter, err := sc.CalendarInserter()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	event, err := inserter.InsertEvent(ctx, draft)
	if err != nil {
		message := err.Error()
		var remote *calendar.RemoteCallError
		if errors.As(err, &remote) {
			message = remote.Message
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create event: %s", message)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Event created: %s", event.HTMLLink)), nil
}
