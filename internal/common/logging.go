package common

import (
	"io"
	"log/slog"
)

// SetupLogger installs a JSON logger writing to w as the slog default. The
// level is Info, or Debug in development mode.
func SetupLogger(w io.Writer, developmentMode bool) *slog.Logger {
	var programLevel = new(slog.LevelVar) // Info by default
	if developmentMode {
		programLevel.Set(slog.LevelDebug)
	}
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: programLevel}))
	slog.SetDefault(logger)
	return logger
}
