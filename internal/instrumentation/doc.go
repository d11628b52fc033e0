// Package instrumentation provides OpenTelemetry metrics, tracing and audit
// logging for the calendar MCP server.
//
// # Metrics
//
//   - mcp_requests_total / mcp_request_duration_seconds: frames handled by
//     the transport, by method and status
//   - mcp_tool_invocations_total / mcp_tool_duration_seconds: tool calls by
//     tool name and status
//   - google_api_operations_total / google_api_operation_duration_seconds:
//     Calendar API calls by service, operation and status
//   - oauth_token_refresh_total: refresh-token exchanges by result
//
// Method and tool labels are bounded to the known set (see BoundedLabel).
//
// # Tracing
//
// Spans are created per request (mcp.<method>), per tool invocation
// (tool.<name>) and per Google API call (google.<service>.<operation>).
//
// # Configuration
//
// LoadConfig reads these environment variables through viper:
//   - INSTRUMENTATION_ENABLED: enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: prometheus, otlp or stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout or none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: service name (default: gcalendar-mcp)
//   - AUDIT_LOGGING_ENABLED, AUDIT_LOGGING_INCLUDE_RESOURCE_IDS
//
// Standard output carries protocol frames, so the stdout exporters write
// to Config.DiagnosticWriter (stderr unless set).
//
// # Example Usage
//
//	cfg := instrumentation.LoadConfig(v)
//	cfg.ServiceVersion = version
//	cfg.Logger = logger
//	provider, err := instrumentation.NewProvider(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	provider.Metrics().RecordToolInvocation(ctx, "create_event", instrumentation.StatusSuccess, time.Since(start))
package instrumentation
