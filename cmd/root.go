package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tobedoit/gCalendar-mcp/internal/config"
	"github.com/tobedoit/gCalendar-mcp/internal/logging"
)

// version will be set by main
var version = "dev"

// SetVersion sets the version reported by the server and the version command.
func SetVersion(v string) {
	version = v
}

// streams are the process's standard streams. Tests substitute them.
type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

// newRootCmd builds the command tree. Running the root command serves MCP
// on stdio.
func newRootCmd(v *viper.Viper, s streams) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gcalendar-mcp",
		Short: "MCP server that creates Google Calendar events",
		Long: `gcalendar-mcp is a Model Context Protocol server speaking JSON-RPC over
standard input and output. It exposes a single tool, create_event, which
inserts an event into the primary calendar of the Google account whose
refresh token is configured.

Configuration is read from the environment:
  GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET  OAuth client (required)
  GOOGLE_REFRESH_TOKEN                    refresh token (optional)
  MCP_LOG_LEVEL                           debug, info, error or silent
  CALENDAR_TIME_ZONE                      zone attached to every event`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), v, s)
		},
	}
	rootCmd.SetVersionTemplate(`{{printf "gcalendar-mcp version %s\n" .Version}}`)
	rootCmd.SetIn(s.in)
	rootCmd.SetOut(s.out)
	rootCmd.SetErr(s.err)

	flags := rootCmd.PersistentFlags()
	flags.String("log-level", "", "Log threshold: debug, info, error or silent. Can also use MCP_LOG_LEVEL env var.")
	flags.String("time-zone", "", "IANA time zone attached to event start and end. Can also use CALENDAR_TIME_ZONE env var.")
	flags.String("metrics-addr", "", "Serve Prometheus metrics and health probes on this address. Can also use METRICS_ADDR env var.")
	for key, name := range map[string]string{
		config.KeyLogLevel:    "log-level",
		config.KeyTimeZone:    "time-zone",
		config.KeyMetricsAddr: "metrics-addr",
	} {
		// BindPFlag only fails on a nil flag.
		_ = v.BindPFlag(key, flags.Lookup(name))
	}

	rootCmd.AddCommand(newServeCmd(v, s))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute is the main entry point for the CLI application
func Execute() {
	s := streams{in: os.Stdin, out: os.Stdout, err: os.Stderr}
	v := config.NewViper()
	if err := newRootCmd(v, s).Execute(); err != nil {
		reportFailure(v, s.err, err)
		os.Exit(1)
	}
}

// reportFailure logs err at error level, honouring the configured log level.
// An unparsable level falls back to the default.
func reportFailure(v *viper.Viper, w io.Writer, err error) {
	level, _ := logging.ParseLevel(v.GetString(config.KeyLogLevel))
	logging.New(w, level).Error("gcalendar-mcp failed", logging.Err(err))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "gcalendar-mcp version %s\n", version)
			return err
		},
	}
}
