// Package logging provides the diagnostic channel of the gcalendar-mcp server.
//
// The MCP transport owns standard output: every byte written there must be a
// protocol frame. Diagnostics therefore go to a separate sink (standard error)
// through log/slog, filtered by a threshold that is read once at startup.
//
// # Levels
//
// Four severities are ordered silent < error < info < debug. A record is
// emitted when its severity ranks at or below the configured threshold, so
// "info" keeps error and info records and drops debug ones, and "silent"
// drops everything.
//
// # Stream discipline
//
// GuardStdout captures the real standard output for the transport and swaps
// os.Stdout for a pipe whose lines are re-logged on the diagnostic channel
// with source=stdout. The standard library log package is redirected the same
// way with source=stdlog. Dependencies that accept a writer or logger are
// wired to the diagnostic sink when they are constructed.
//
// # Usage
//
//	logger := logging.New(os.Stderr, logging.LevelInfo)
//	logger.Info("server started", logging.Tool("create_event"))
//
// User emails are hashed and tokens masked before they reach a log line.
package logging
