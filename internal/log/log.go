package log

import (
	"os"

	charm "github.com/charmbracelet/log"
)

var logger = charm.NewWithOptions(os.Stderr, charm.Options{
	ReportTimestamp: true,
})

// Configure sets the log level and output format.
// Level is one of: debug, info, warn, error. Format is "console" or "json".
func Configure(level, format string) {
	lvl, err := charm.ParseLevel(level)
	if err != nil {
		lvl = charm.InfoLevel
	}
	logger.SetLevel(lvl)

	if format == "json" {
		logger.SetFormatter(charm.JSONFormatter)
	} else {
		logger.SetFormatter(charm.TextFormatter)
	}
}

// Debug logs a debug message with optional key-value pairs
func Debug(msg string, args ...interface{}) {
	logger.Debug(msg, args...)
}

// Info logs an info message with optional key-value pairs
func Info(msg string, args ...interface{}) {
	logger.Info(msg, args...)
}

// Warn logs a warning message with optional key-value pairs
func Warn(msg string, args ...interface{}) {
	logger.Warn(msg, args...)
}

// Error logs an error message with optional key-value pairs
func Error(msg string, args ...interface{}) {
	logger.Error(msg, args...)
}
