package calendar_tools

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tobedoit/gCalendar-mcp/internal/calendar"
)

func argsFromJSON(t *testing.T, raw string) map[string]any {
	t.Helper()
	var args map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &args))
	return args
}

func TestDecodeEventArgs(t *testing.T) {
	decoded := DecodeEventArgs(argsFromJSON(t, `{
		"summary": "Sync",
		"description": "Weekly",
		"location": "Room 1",
		"start_time": "2025-01-01T10:00:00+09:00",
		"end_time": "2025-01-01T10:30:00+09:00",
		"attendees": ["a@example.com", "b@example.com"],
		"reminders": {"useDefault": false, "overrides": [{"method": "email", "minutes": 60}]}
	}`))
	require.True(t, decoded.OK(), "unexpected errors: %v", decoded.Errors())

	assert.Equal(t, EventArgs{
		Summary:     "Sync",
		Description: "Weekly",
		Location:    "Room 1",
		StartTime:   "2025-01-01T10:00:00+09:00",
		EndTime:     "2025-01-01T10:30:00+09:00",
		Attendees:   []string{"a@example.com", "b@example.com"},
		Reminders: &calendar.ReminderPolicy{
			Overrides: []calendar.ReminderOverride{{Method: "email", Minutes: 60}},
		},
	}, decoded.Value())
}

func TestDecodeEventArgs_AbsentOptionals(t *testing.T) {
	decoded := DecodeEventArgs(argsFromJSON(t, `{"summary": "Sync", "start_time": "a", "end_time": "b"}`))
	require.True(t, decoded.OK())

	args := decoded.Value()
	assert.Nil(t, args.Reminders)
	assert.Nil(t, args.Attendees)
	assert.Empty(t, args.Location)
}

func TestDecodeEventArgs_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		contains string
	}{
		{
			name:     "summary is a number",
			raw:      `{"summary": 5, "start_time": "a", "end_time": "b"}`,
			contains: "summary",
		},
		{
			name:     "attendee is not a string",
			raw:      `{"summary": "s", "start_time": "a", "end_time": "b", "attendees": ["a@example.com", 7]}`,
			contains: "attendees",
		},
		{
			name:     "fractional minutes",
			raw:      `{"summary": "s", "start_time": "a", "end_time": "b", "reminders": {"overrides": [{"method": "popup", "minutes": 2.5}]}}`,
			contains: "whole number",
		},
		{
			name:     "reminders is a string",
			raw:      `{"summary": "s", "start_time": "a", "end_time": "b", "reminders": "soon"}`,
			contains: "reminders",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded := DecodeEventArgs(argsFromJSON(t, tt.raw))
			require.False(t, decoded.OK())
			require.NotEmpty(t, decoded.Errors())
			assert.Contains(t, decoded.Err().Error(), tt.contains)
		})
	}
}
