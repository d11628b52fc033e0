// Package tools holds the tool registry and the dispatcher that serves
// tools/call requests.
//
// Tools are added to a Registry at startup together with their input
// schema, which is resolved once with github.com/google/jsonschema-go.
// The Dispatcher validates every argument bag against that schema before
// the handler sees it and converts all failures, including recovered
// panics, into CallToolResult values with IsError set.
package tools
