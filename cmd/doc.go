// Package cmd implements the command-line interface for gcalendar-mcp.
//
// This package provides the following commands:
//   - (root) and serve: serve MCP over standard input and output
//   - version: display version information
//
// Startup failures such as missing OAuth client credentials are logged to
// standard error and end the process with status 1.
package cmd
