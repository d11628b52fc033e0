// Package transport carries MCP frames over a byte stream, normally the
// process's standard input and output.
//
// Each line is one JSON-RPC message. tools/call requests go to the tool
// dispatcher; every other method is answered by the mcp-go server. Frames
// are processed in order and each response is written as one line.
package transport
