// Package calendar_tools provides the create_event MCP tool.
//
// A call is decoded into EventArgs, turned into a calendar.Draft by
// BuildDraft and inserted through the server context's calendar.Inserter.
// Every event is annotated with the deployment's fixed time zone and gets
// a single popup reminder 10 minutes before start unless the caller states
// a reminder preference.
package calendar_tools
