package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/tobedoit/gCalendar-mcp/internal/config"
	"github.com/tobedoit/gCalendar-mcp/internal/instrumentation"
	"github.com/tobedoit/gCalendar-mcp/internal/lifecycle"
	"github.com/tobedoit/gCalendar-mcp/internal/logging"
	"github.com/tobedoit/gCalendar-mcp/internal/server"
	"github.com/tobedoit/gCalendar-mcp/internal/tools"
	"github.com/tobedoit/gCalendar-mcp/internal/tools/calendar_tools"
	"github.com/tobedoit/gCalendar-mcp/internal/transport"
)

// terminationSignals end the process with status 0.
var terminationSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP}

func newServeCmd(v *viper.Viper, s streams) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve MCP over standard input and output",
		Long: `Serve MCP over standard input and output.

Standard output carries protocol frames only. Diagnostics, including
anything a dependency prints, are written to standard error.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), v, s)
		},
	}
}

func runServe(ctx context.Context, v *viper.Viper, s streams) error {
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	logger := logging.New(s.err, cfg.LogLevel)
	for _, err := range cfg.Ignored {
		logger.Error("ignoring invalid setting", logging.Err(err))
	}

	// Protocol frames go to the real stdout; stray writes are logged.
	stdoutGuard, err := logging.GuardStdout(logger)
	if err != nil {
		return err
	}
	defer stdoutGuard.Restore()
	out := s.out
	if out == nil {
		out = stdoutGuard.Protocol()
	}

	if cfg.Google.HasRefreshToken() {
		logger.Debug("google credentials loaded",
			slog.String("refresh_token", logging.SanitizeToken(cfg.Google.RefreshToken)))
	} else {
		logger.Info("GOOGLE_REFRESH_TOKEN is not set, create_event will fail until it is configured")
	}

	instrConfig := instrumentation.LoadConfig(v)
	instrConfig.ServiceVersion = version
	instrConfig.DiagnosticWriter = s.err
	instrConfig.Logger = logger

	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}

	serverContext, err := server.NewServerContext(ctx, *cfg,
		server.WithLogger(logger),
		server.WithInstrumentation(provider),
		server.WithAuditLogger(instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging)),
	)
	if err != nil {
		_ = provider.Shutdown(ctx)
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := serverContext.Shutdown(shutdownCtx); err != nil {
			logger.Error("error during server context shutdown", logging.Err(err))
		}
	}()

	registry := tools.NewRegistry()
	if err := calendar_tools.RegisterCalendarTools(registry, serverContext); err != nil {
		return err
	}
	dispatcher := tools.NewDispatcher(registry,
		tools.WithLogger(logger),
		tools.WithMetrics(serverContext.Metrics()),
		tools.WithAuditLogger(serverContext.AuditLogger()),
	)

	mcpSrv := newMCPServer(logger)
	registry.Register(mcpSrv, dispatcher)
	for _, name := range registry.Names() {
		logger.Debug("tool registered", logging.Tool(name))
	}

	guard := lifecycle.New(
		lifecycle.WithLogger(logger),
		lifecycle.WithShutdownHook(serverContext.Shutdown),
		lifecycle.WithShutdownHook(func(context.Context) error {
			stdoutGuard.Restore()
			return nil
		}),
	)

	var metricsServer *server.MetricsServer
	health := server.NewHealthChecker(serverContext)
	if cfg.MetricsAddr != "" {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    cfg.MetricsAddr,
			InstrumentationProvider: provider,
			Health:                  health,
			Logger:                  logger,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		if err := metricsServer.Listen(); err != nil {
			return err
		}
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, terminationSignals...)
	defer signal.Stop(signals)

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		// The host closing stdin ends the session.
		defer stop()
		stdio := transport.NewStdio(mcpSrv, dispatcher,
			transport.WithLogger(logger),
			transport.WithMetrics(serverContext.Metrics()),
			transport.WithPanicHandler(guard.Recovered),
		)
		return stdio.Serve(gctx, s.in, out)
	})

	g.Go(func() error {
		return guard.Watch(gctx, signals)
	})

	if metricsServer != nil {
		guard.Go("metrics server", func() error {
			return metricsServer.Serve(gctx)
		})
	}

	health.SetReady(true)
	logger.Info("gcalendar-mcp ready",
		slog.String("version", version),
		slog.String("time_zone", cfg.TimeZone),
		slog.Any("tools", registry.Names()),
	)

	return g.Wait()
}

func newMCPServer(logger *slog.Logger) *mcpserver.MCPServer {
	hooks := &mcpserver.Hooks{}
	hooks.AddOnError(func(_ context.Context, _ any, method mcp.MCPMethod, _ any, err error) {
		logger.Error("mcp request failed", logging.Method(string(method)), logging.Err(err))
	})

	return mcpserver.NewMCPServer(instrumentation.DefaultServiceName, version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithHooks(hooks),
	)
}
