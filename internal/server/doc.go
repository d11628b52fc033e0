// Package server holds the state shared by the MCP tool handlers and the
// optional HTTP listener for metrics and health probes.
//
// # Key Components
//
// ServerContext is built once at startup. It carries the loaded
// configuration, the diagnostic and audit loggers, the instrumentation
// provider and the Calendar API client. When no refresh token is
// configured the client is absent and CalendarInserter returns a
// *config.MissingError, so tool calls fail without touching the network.
//
// MetricsServer exposes the Prometheus scrape handler on /metrics together
// with the HealthChecker probes /healthz and /readyz. It never writes to
// standard output, which belongs to the stdio protocol stream.
package server
