package cli

import (
	"log"
	"log/slog"
	"os"
)

var stdout = log.New(os.Stdout, "[fileupd] ", 0)
var stderr = log.New(os.Stderr, "[fileupd] ", 0)

// SetupStructuredLogger configures the process-wide slog logger that the
// handler and its collaborators log through. The plain stdout/stderr
// loggers above are reserved for CLI chatter during startup and shutdown.
func SetupStructuredLogger() *slog.Logger {
	level := slog.LevelInfo
	if Flags.VerboseOutput {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return logger
}
