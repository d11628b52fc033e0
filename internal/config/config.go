// Package config loads the server configuration from the environment and
// command-line flags.
package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
	"golang.org/x/oauth2/google"

	"github.com/tobedoit/gCalendar-mcp/internal/logging"
)

// Environment variables read at startup.
const (
	EnvClientID     = "GOOGLE_CLIENT_ID"
	EnvClientSecret = "GOOGLE_CLIENT_SECRET"
	EnvRefreshToken = "GOOGLE_REFRESH_TOKEN"
	EnvTokenURL     = "GOOGLE_TOKEN_URL"
	EnvLogLevel     = "MCP_LOG_LEVEL"
	EnvTimeZone     = "CALENDAR_TIME_ZONE"
	EnvMetricsAddr  = "METRICS_ADDR"
)

// Viper keys. Flags bound in cmd use the same keys.
const (
	KeyClientID     = "google.client_id"
	KeyClientSecret = "google.client_secret"
	KeyRefreshToken = "google.refresh_token"
	KeyTokenURL     = "google.token_url"
	KeyLogLevel     = "log_level"
	KeyTimeZone     = "time_zone"
	KeyMetricsAddr  = "metrics_addr"
)

// DefaultTimeZone is the zone attached to every event start and end.
const DefaultTimeZone = "Asia/Seoul"

// Config holds the application configuration
type Config struct {
	Google      GoogleConfig
	LogLevel    logging.Level
	TimeZone    string
	MetricsAddr string

	// Ignored lists settings that did not parse and were replaced by their
	// defaults. They are reported once a logger exists.
	Ignored []error
}

// GoogleConfig holds the OAuth client and refresh token used for Calendar calls
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	TokenURL     string
}

// HasRefreshToken reports whether calls to the Calendar API can be authorized.
func (g GoogleConfig) HasRefreshToken() bool {
	return g.RefreshToken != ""
}

// MissingError reports required settings that are absent.
type MissingError struct {
	Keys []string
}

func (e *MissingError) Error() string {
	if len(e.Keys) == 1 {
		return fmt.Sprintf("%s is not configured", e.Keys[0])
	}
	return "missing required configuration: " + strings.Join(e.Keys, ", ")
}

// NewViper returns a viper instance bound to the server's environment variables.
func NewViper() *viper.Viper {
	v := viper.New()
	bindings := map[string]string{
		KeyClientID:     EnvClientID,
		KeyClientSecret: EnvClientSecret,
		KeyRefreshToken: EnvRefreshToken,
		KeyTokenURL:     EnvTokenURL,
		KeyLogLevel:     EnvLogLevel,
		KeyTimeZone:     EnvTimeZone,
		KeyMetricsAddr:  EnvMetricsAddr,
	}
	for key, env := range bindings {
		// BindEnv only fails when no key is given.
		_ = v.BindEnv(key, env)
	}
	v.SetDefault(KeyLogLevel, logging.DefaultLevel.String())
	v.SetDefault(KeyTimeZone, DefaultTimeZone)
	v.SetDefault(KeyTokenURL, google.Endpoint.TokenURL)
	return v
}

// Load reads the configuration from v. A *MissingError is returned when the
// OAuth client id or secret is absent; the refresh token is optional. An
// unknown log level falls back to the default and is listed in Ignored.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Google: GoogleConfig{
			ClientID:     strings.TrimSpace(v.GetString(KeyClientID)),
			ClientSecret: strings.TrimSpace(v.GetString(KeyClientSecret)),
			RefreshToken: strings.TrimSpace(v.GetString(KeyRefreshToken)),
			TokenURL:     strings.TrimSpace(v.GetString(KeyTokenURL)),
		},
		TimeZone:    strings.TrimSpace(v.GetString(KeyTimeZone)),
		MetricsAddr: strings.TrimSpace(v.GetString(KeyMetricsAddr)),
	}

	var missing []string
	if cfg.Google.ClientID == "" {
		missing = append(missing, EnvClientID)
	}
	if cfg.Google.ClientSecret == "" {
		missing = append(missing, EnvClientSecret)
	}
	if len(missing) > 0 {
		return nil, &MissingError{Keys: missing}
	}

	level, err := logging.ParseLevel(v.GetString(KeyLogLevel))
	if err != nil {
		cfg.Ignored = append(cfg.Ignored, fmt.Errorf("invalid %s, using %s: %w", EnvLogLevel, logging.DefaultLevel, err))
	}
	cfg.LogLevel = level

	if cfg.TimeZone == "" {
		cfg.TimeZone = DefaultTimeZone
	}
	if _, err := time.LoadLocation(cfg.TimeZone); err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", EnvTimeZone, cfg.TimeZone, err)
	}

	if cfg.Google.TokenURL == "" {
		cfg.Google.TokenURL = google.Endpoint.TokenURL
	}

	return cfg, nil
}
