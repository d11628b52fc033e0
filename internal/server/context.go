package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tobedoit/gCalendar-mcp/internal/calendar"
	"github.com/tobedoit/gCalendar-mcp/internal/config"
	"github.com/tobedoit/gCalendar-mcp/internal/google"
	"github.com/tobedoit/gCalendar-mcp/internal/instrumentation"
	"github.com/tobedoit/gCalendar-mcp/internal/logging"
)

// ServerContext holds everything a tool handler needs. It is built once at
// startup and passed explicitly; nothing in it changes afterwards.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	config   config.Config
	logger   *slog.Logger
	provider *instrumentation.Provider
	audit    *instrumentation.AuditLogger

	inserter    calendar.Inserter
	inserterErr error

	mu       sync.RWMutex
	shutdown bool
}

// Option configures a ServerContext.
type Option func(*ServerContext)

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) Option {
	return func(sc *ServerContext) { sc.logger = logger }
}

// WithInstrumentation sets the provider whose metrics every component records to.
func WithInstrumentation(provider *instrumentation.Provider) Option {
	return func(sc *ServerContext) { sc.provider = provider }
}

// WithAuditLogger sets the audit logger used by the dispatcher.
func WithAuditLogger(al *instrumentation.AuditLogger) Option {
	return func(sc *ServerContext) { sc.audit = al }
}

// WithCalendarInserter replaces the Calendar API client.
func WithCalendarInserter(inserter calendar.Inserter) Option {
	return func(sc *ServerContext) { sc.inserter = inserter }
}

// NewServerContext creates a new server context. Unless an inserter is
// supplied, a Calendar client authorized by cfg.Google is created. A
// missing refresh token is not an error here: CalendarInserter reports it
// on every call instead.
func NewServerContext(ctx context.Context, cfg config.Config, opts ...Option) (*ServerContext, error) {
	shutdownCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		ctx:    shutdownCtx,
		cancel: cancel,
		config: cfg,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(sc)
	}
	if sc.audit == nil {
		sc.audit = instrumentation.NewAuditLogger(sc.logger)
	}

	if sc.inserter == nil {
		if err := sc.initCalendarClient(); err != nil {
			cancel()
			return nil, err
		}
	}

	return sc, nil
}

func (sc *ServerContext) initCalendarClient() error {
	if !sc.config.Google.HasRefreshToken() {
		sc.inserterErr = &config.MissingError{Keys: []string{config.EnvRefreshToken}}
		return nil
	}

	creds := google.NewCredentials(sc.config.Google)
	httpClient, err := creds.HTTPClient(sc.ctx, sc.Metrics())
	if err != nil {
		return fmt.Errorf("failed to create authorized HTTP client: %w", err)
	}

	client, err := calendar.NewClient(sc.ctx, httpClient,
		calendar.WithMetrics(sc.Metrics()),
		calendar.WithLogger(sc.logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create Calendar client: %w", err)
	}
	sc.inserter = client
	return nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Config returns the loaded configuration.
func (sc *ServerContext) Config() config.Config {
	return sc.config
}

// TimeZone is the zone every event timestamp is annotated with.
func (sc *ServerContext) TimeZone() string {
	return sc.config.TimeZone
}

// Logger returns the diagnostic logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// Metrics returns the metrics recorder. It is never nil; without a
// provider it records nothing.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	if sc.provider == nil || sc.provider.Metrics() == nil {
		return &instrumentation.Metrics{}
	}
	return sc.provider.Metrics()
}

// Instrumentation returns the provider, nil when none was configured.
func (sc *ServerContext) Instrumentation() *instrumentation.Provider {
	return sc.provider
}

// AuditLogger returns the audit logger.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.audit
}

// CalendarInserter returns the Calendar API client, or a
// *config.MissingError when no refresh token is configured.
func (sc *ServerContext) CalendarInserter() (calendar.Inserter, error) {
	if sc.inserter == nil {
		return nil, sc.inserterErr
	}
	return sc.inserter, nil
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown cancels the server context and flushes instrumentation.
func (sc *ServerContext) Shutdown(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()

	if sc.provider != nil {
		return sc.provider.Shutdown(ctx)
	}
	return nil
}
