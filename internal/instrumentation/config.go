package instrumentation

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Config holds the configuration for OpenTelemetry instrumentation.
type Config struct {
	// ServiceName is the name of the service (default: gcalendar-mcp)
	ServiceName string

	// ServiceVersion is the version of the service
	ServiceVersion string

	// ServiceInstanceID is the unique instance identifier (default: hostname)
	ServiceInstanceID string

	// Enabled determines if instrumentation is active (default: true)
	Enabled bool

	// MetricsExporter specifies the metrics exporter type
	// Options: "prometheus", "otlp", "stdout" (default: "prometheus")
	MetricsExporter string

	// TracingExporter specifies the tracing exporter type
	// Options: "otlp", "stdout", "none" (default: "none")
	TracingExporter string

	// OTLPEndpoint is the OTLP collector endpoint
	// Example: "localhost:4318" (without protocol prefix)
	OTLPEndpoint string

	// OTLPInsecure controls whether to use insecure HTTP for OTLP export.
	// Only for local development against an unencrypted collector.
	OTLPInsecure bool

	// TraceSamplingRate is the sampling rate for traces (0.0 to 1.0, default: 0.1)
	TraceSamplingRate float64

	// PrometheusEndpoint is the path for the Prometheus metrics endpoint (default: "/metrics")
	PrometheusEndpoint string

	// DiagnosticWriter receives the output of the stdout exporters.
	// The process stdout carries protocol frames, so this defaults to os.Stderr.
	DiagnosticWriter io.Writer

	// Logger receives instrumentation warnings. Defaults to slog.Default().
	Logger *slog.Logger

	// AuditLogging configures audit logging behavior.
	AuditLogging AuditLoggingConfig
}

// AuditLoggingConfig holds configuration for audit logging.
type AuditLoggingConfig struct {
	// Enabled determines if audit logging is active (default: true)
	Enabled bool

	// IncludeResourceIDs adds the created event ID to audit entries (default: false).
	IncludeResourceIDs bool
}

// Environment variables holding the instrumentation settings.
const (
	EnvServiceName        = "OTEL_SERVICE_NAME"
	EnvServiceInstanceID  = "OTEL_SERVICE_INSTANCE_ID"
	EnvEnabled            = "INSTRUMENTATION_ENABLED"
	EnvMetricsExporter    = "METRICS_EXPORTER"
	EnvTracingExporter    = "TRACING_EXPORTER"
	EnvOTLPEndpoint       = "OTEL_EXPORTER_OTLP_ENDPOINT"
	EnvOTLPInsecure       = "OTEL_EXPORTER_OTLP_INSECURE"
	EnvSamplingRate       = "OTEL_TRACES_SAMPLER_ARG"
	EnvPrometheusEndpoint = "PROMETHEUS_ENDPOINT"
	EnvAuditEnabled       = "AUDIT_LOGGING_ENABLED"
	EnvAuditResourceIDs   = "AUDIT_LOGGING_INCLUDE_RESOURCE_IDS"
)

// Viper keys of the instrumentation settings.
const (
	keyServiceName        = "instrumentation.service_name"
	keyServiceInstanceID  = "instrumentation.service_instance_id"
	keyEnabled            = "instrumentation.enabled"
	keyMetricsExporter    = "instrumentation.metrics_exporter"
	keyTracingExporter    = "instrumentation.tracing_exporter"
	keyOTLPEndpoint       = "instrumentation.otlp_endpoint"
	keyOTLPInsecure       = "instrumentation.otlp_insecure"
	keySamplingRate       = "instrumentation.trace_sampling_rate"
	keyPrometheusEndpoint = "instrumentation.prometheus_endpoint"
	keyAuditEnabled       = "instrumentation.audit.enabled"
	keyAuditResourceIDs   = "instrumentation.audit.include_resource_ids"
)

var envBindings = map[string]string{
	keyServiceName:        EnvServiceName,
	keyServiceInstanceID:  EnvServiceInstanceID,
	keyEnabled:            EnvEnabled,
	keyMetricsExporter:    EnvMetricsExporter,
	keyTracingExporter:    EnvTracingExporter,
	keyOTLPEndpoint:       EnvOTLPEndpoint,
	keyOTLPInsecure:       EnvOTLPInsecure,
	keySamplingRate:       EnvSamplingRate,
	keyPrometheusEndpoint: EnvPrometheusEndpoint,
	keyAuditEnabled:       EnvAuditEnabled,
	keyAuditResourceIDs:   EnvAuditResourceIDs,
}

var defaults = map[string]any{
	keyServiceName:        DefaultServiceName,
	keyEnabled:            true,
	keyMetricsExporter:    ExporterPrometheus,
	keyTracingExporter:    ExporterNone,
	keyOTLPInsecure:       false,
	keySamplingRate:       0.1,
	keyPrometheusEndpoint: "/metrics",
	keyAuditEnabled:       true,
	keyAuditResourceIDs:   false,
}

// LoadConfig binds the instrumentation environment variables on v and
// reads the resulting Config. Values that do not parse fall back to their
// defaults.
func LoadConfig(v *viper.Viper) Config {
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	return Config{
		ServiceName:        v.GetString(keyServiceName),
		ServiceVersion:     "unknown",
		ServiceInstanceID:  v.GetString(keyServiceInstanceID),
		Enabled:            getBool(v, keyEnabled),
		MetricsExporter:    v.GetString(keyMetricsExporter),
		TracingExporter:    v.GetString(keyTracingExporter),
		OTLPEndpoint:       v.GetString(keyOTLPEndpoint),
		OTLPInsecure:       getBool(v, keyOTLPInsecure),
		TraceSamplingRate:  getFloat(v, keySamplingRate),
		PrometheusEndpoint: v.GetString(keyPrometheusEndpoint),
		AuditLogging: AuditLoggingConfig{
			Enabled:            getBool(v, keyAuditEnabled),
			IncludeResourceIDs: getBool(v, keyAuditResourceIDs),
		},
	}
}

func getBool(v *viper.Viper, key string) bool {
	if b, err := cast.ToBoolE(v.Get(key)); err == nil {
		return b
	}
	return cast.ToBool(defaults[key])
}

func getFloat(v *viper.Viper, key string) float64 {
	if f, err := cast.ToFloat64E(v.Get(key)); err == nil {
		return f
	}
	return cast.ToFloat64(defaults[key])
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.TraceSamplingRate < 0 || c.TraceSamplingRate > 1 {
		return fmt.Errorf("trace sampling rate must be between 0.0 and 1.0, got %f", c.TraceSamplingRate)
	}

	validMetricsExporters := map[string]bool{ExporterPrometheus: true, ExporterOTLP: true, ExporterStdout: true}
	if c.MetricsExporter != "" && !validMetricsExporters[c.MetricsExporter] {
		return fmt.Errorf("invalid metrics exporter %q, must be one of: prometheus, otlp, stdout", c.MetricsExporter)
	}

	validTracingExporters := map[string]bool{ExporterOTLP: true, ExporterStdout: true, ExporterNone: true}
	if c.TracingExporter != "" && !validTracingExporters[c.TracingExporter] {
		return fmt.Errorf("invalid tracing exporter %q, must be one of: otlp, stdout, none", c.TracingExporter)
	}

	if c.TracingExporter == ExporterOTLP && c.OTLPEndpoint == "" {
		return fmt.Errorf("OTLP endpoint is required when using OTLP tracing exporter")
	}
	if c.MetricsExporter == ExporterOTLP && c.OTLPEndpoint == "" {
		return fmt.Errorf("OTLP endpoint is required when using OTLP metrics exporter")
	}

	return nil
}

func (c *Config) diagnosticWriter() io.Writer {
	if c.DiagnosticWriter != nil {
		return c.DiagnosticWriter
	}
	return os.Stderr
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// DefaultServiceName is reported as service.name unless OTEL_SERVICE_NAME is set.
const DefaultServiceName = "gcalendar-mcp"

// Constants for metric label values.
const (
	// Status values
	StatusSuccess = "success"
	StatusError   = "error"

	// OAuth result values
	OAuthResultSuccess = "success"
	OAuthResultFailure = "failure"

	// Google service names
	ServiceCalendar = "calendar"

	// Exporter types
	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"

	// Metric recording intervals
	DefaultMetricInterval = 10 * time.Second
)
