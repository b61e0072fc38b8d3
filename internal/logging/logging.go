package logging

import (
	"log/slog"
	"os"

	"github.com/rinodehi1978/resell-trap/internal/config"
)

// Setup installs the default slog handler at the configured verbosity.
// The level string must already have passed config validation.
func Setup(level string) {
	l, err := config.ParseLogLevel(level)
	if err != nil {
		l = slog.LevelInfo
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})
	slog.SetDefault(slog.New(handler))
}
