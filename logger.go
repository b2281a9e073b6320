package match

import (
	"log/slog"
	"os"
)

// logger is the package-wide structured logger. The engine logs
// lifecycle events only; nothing is logged on the matching hot path.
var logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))

// SetLogger replaces the package logger.
func SetLogger(l *slog.Logger) {
	logger = l
}
