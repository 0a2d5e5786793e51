// Package logging builds the process-wide slog logger for the binaries.
package logging

import (
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
)

// New returns a colored human-readable logger in development and a JSON
// logger everywhere else.
func New(w io.Writer, environment string, level slog.Level) *slog.Logger {
	if environment == "development" {
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}
