package config

import (
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// LogOutput selects where SetupLogger writes.
type LogOutput int

const (
	// LogConsole writes text to stderr and JSON to the log file.
	LogConsole LogOutput = iota
	// LogFileOnly writes JSON to the log file. Used while the terminal UI
	// owns the screen.
	LogFileOnly
)

// SetupLogger creates the application logger for out.
// Returns the logger and a cleanup function to close the file.
func SetupLogger(logFile string, level slog.Level, out LogOutput) (*slog.Logger, func() error) {
	opts := &slog.HandlerOptions{Level: level}
	noop := func() error { return nil }

	var handlers []slog.Handler
	if out == LogConsole {
		handlers = append(handlers, slog.NewTextHandler(os.Stderr, opts))
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		if out == LogFileOnly {
			return slog.New(slog.DiscardHandler), noop
		}
		// Fall back to stderr-only if file fails
		logger := slog.New(handlers[0])
		logger.Error("failed to open log file, using stderr only", "error", err, "file", logFile)
		return logger, noop
	}

	handlers = append(handlers, slog.NewJSONHandler(file, opts))
	return slog.New(slogmulti.Fanout(handlers...)), file.Close
}

// SetupLoggerWithWriters creates a logger with custom writers (for testing).
func SetupLoggerWithWriters(stderr, file io.Writer, level slog.Level) *slog.Logger {
	stderrHandler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})
	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})
	return slog.New(slogmulti.Fanout(stderrHandler, fileHandler))
}
