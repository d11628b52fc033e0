package logging

import (
	"fmt"
	"log/slog"
	"strings"
)

// Level is a diagnostic severity. Higher values are more verbose.
type Level int

const (
	LevelSilent Level = iota
	LevelError
	LevelInfo
	LevelDebug
)

// DefaultLevel is used when MCP_LOG_LEVEL is unset.
const DefaultLevel = LevelDebug

// slogSilent sits above every level slog emits, so nothing passes it.
const slogSilent = slog.LevelError + 100

var levelNames = map[Level]string{
	LevelSilent: "silent",
	LevelError:  "error",
	LevelInfo:   "info",
	LevelDebug:  "debug",
}

// ParseLevel parses one of debug, info, error or silent (case-insensitive).
// An empty string yields DefaultLevel.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultLevel, nil
	}
	for lvl, name := range levelNames {
		if name == s {
			return lvl, nil
		}
	}
	return DefaultLevel, fmt.Errorf("invalid log level %q (expected debug, info, error or silent)", s)
}

// String returns the lower-case level name.
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// Enabled reports whether a record of severity msg passes threshold l.
func (l Level) Enabled(msg Level) bool {
	return msg != LevelSilent && msg <= l
}

// Slog maps the threshold onto the slog level that admits the same records.
// Warnings are treated as info.
func (l Level) Slog() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelError:
		return slog.LevelError
	default:
		return slogSilent
	}
}
