package app

import (
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/heartmarshall/recobot/internal/config"
)

// NewLogger builds the process logger from cfg, installs it as the slog
// default and returns it. Output goes to stderr.
//
// Format "text" adds source locations for local runs; anything else is JSON.
func NewLogger(cfg config.LogConfig) *slog.Logger {
	logger := newLogger(os.Stderr, cfg)
	slog.SetDefault(logger)
	return logger
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(strings.TrimSpace(cfg.Format), "text") {
		opts.AddSource = true
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler).With(slog.String("app", "recobot"))
}

// parseLevel accepts slog level names in any case, including offsets such
// as "warn+2". Unknown values fall back to info.
func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// telegramLogger routes the Bot API client's Printf output into logger at
// debug level.
func telegramLogger(logger *slog.Logger) *log.Logger {
	return slog.NewLogLogger(logger.With(slog.String("component", "telegram_api")).Handler(), slog.LevelDebug)
}
