package telemetry

import (
	"log/slog"
	"os"
)

// InitSlog points the default slog logger at stderr, keeping stdout free
// for the tool's actual output. Verbose enables debug-level records.
func InitSlog(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}
