// Package logging configures the process-wide structured logger.
package logging

import (
	"os"
	"strings"
	"time"

	clog "github.com/charmbracelet/log"
)

// New returns a structured logger writing to stderr at the given level.
// Component code derives sub-loggers via With("component", name).
func New(level string) *clog.Logger {
	logger := clog.NewWithOptions(os.Stderr, clog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           ParseLevel(level),
		Prefix:          "snapdesk",
	})
	return logger
}

// ParseLevel converts a level string to a clog.Level, defaulting to info.
func ParseLevel(level string) clog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return clog.DebugLevel
	case "info":
		return clog.InfoLevel
	case "warn", "warning":
		return clog.WarnLevel
	case "error":
		return clog.ErrorLevel
	default:
		return clog.InfoLevel
	}
}

// Redact masks secrets before they reach a log line. Empty values stay
// empty so log output distinguishes "unset" from "set".
func Redact(secret string) string {
	if secret == "" {
		return ""
	}
	return "[redacted]"
}
