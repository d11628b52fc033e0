package logging

import (
	"io"
	"log"
	"log/slog"
	"strings"
)

// New returns a logger writing text records to w, filtered by level.
// Each record carries time, level and message.
// Warnings from dependencies are tagged INFO, so only DEBUG, INFO and ERROR
// ever appear.
func New(w io.Writer, level Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       level.Slog(),
		ReplaceAttr: foldSeverity,
	}))
}

func foldSeverity(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 || a.Key != slog.LevelKey {
		return a
	}
	lvl, ok := a.Value.Any().(slog.Level)
	if !ok {
		return a
	}
	switch {
	case lvl >= slog.LevelError:
		return slog.String(slog.LevelKey, "ERROR")
	case lvl >= slog.LevelInfo:
		return slog.String(slog.LevelKey, "INFO")
	default:
		return slog.String(slog.LevelKey, "DEBUG")
	}
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slogSilent}))
}

// ErrorLogger adapts logger to a *log.Logger for dependencies that only
// accept the standard library type. Every line is logged at error level.
func ErrorLogger(logger *slog.Logger, source string) *log.Logger {
	return slog.NewLogLogger(logger.With(slog.String(KeySource, source)).Handler(), slog.LevelError)
}

// lineWriter re-logs every written chunk as one info record.
type lineWriter struct {
	logger *slog.Logger
	source string
}

// Writer returns an io.Writer whose output is logged at info level with
// the given source tag.
func Writer(logger *slog.Logger, source string) io.Writer {
	return &lineWriter{logger: logger, source: source}
}

func (w *lineWriter) Write(p []byte) (int, error) {
	msg := strings.TrimRight(string(p), "\r\n")
	if msg != "" {
		w.logger.Info(msg, slog.String(KeySource, w.source))
	}
	return len(p), nil
}
