// Package logging builds charmbracelet loggers configured from the
// environment, optionally writing to a timestamped file.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const (
	EnvLevel  = "AVRDIS_LOG_LEVEL"
	EnvPrefix = "AVRDIS_LOG_PREFIX"
	EnvToFile = "AVRDIS_LOG_TO_FILE"
)

// LoggerCloser wraps a logger and provides a Close method for cleanup
type LoggerCloser struct {
	*log.Logger
	closer io.Closer
}

// Close closes the underlying writer if it's closeable
func (lc *LoggerCloser) Close() error {
	if lc.closer != nil {
		return lc.closer.Close()
	}
	return nil
}

// LevelFromEnv maps AVRDIS_LOG_LEVEL to a level, defaulting to info.
func LevelFromEnv() log.Level {
	switch strings.ToLower(os.Getenv(EnvLevel)) {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// NewLoggerWithWriter creates a logger on w. debug forces the debug level
// regardless of the environment.
func NewLoggerWithWriter(w io.Writer, debug bool) *LoggerCloser {
	lg := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		ReportCaller:    debug,
	})

	lg.SetLevel(LevelFromEnv())
	if debug {
		lg.SetLevel(log.DebugLevel)
	}

	prefix := os.Getenv(EnvPrefix)
	if prefix == "" {
		prefix = "avrdis "
	}

	var closer io.Closer
	if c, ok := w.(io.Closer); ok && w != os.Stderr {
		closer = c
	}

	return &LoggerCloser{
		Logger: lg.WithPrefix(prefix),
		closer: closer,
	}
}

// NewLogger creates a new logger based on environment variables
// AVRDIS_LOG_LEVEL: debug, info, warn, error (default: info)
// AVRDIS_LOG_PREFIX: prefix for log messages (default: "avrdis ")
// AVRDIS_LOG_TO_FILE: when set to "1", logs to a timestamped file instead of stderr
func NewLogger(debug bool) *LoggerCloser {
	output := io.Writer(os.Stderr)

	if os.Getenv(EnvToFile) == "1" {
		timestamp := time.Now().Format("20060102-150405")
		logFile := fmt.Sprintf("avrdis-%s-debug.log", timestamp)

		f, err := os.OpenFile(logFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err == nil {
			output = f
		}
		// If file creation fails, fall back to stderr
	}

	return NewLoggerWithWriter(output, debug)
}
