package logging

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/Pyxl-Jim/ESP32-Wifi-Thermometer/internal/config"
)

// Stamper supplies the timestamp for diagnostic-file lines; it returns an
// empty string while the clock is unsynced.
type Stamper interface {
	LogStamp() string
}

// New builds the process logger: a colored console handler in dev, JSON in
// prod, with every record mirrored to the diagnostic log file.
func New(cfg config.Config, version string, appName string, stamper Stamper) *slog.Logger {
	diag := NewDiagHandler(cfg.LogFile, cfg.LogLevel, stamper)

	if version == "dev" {
		h := tint.NewHandler(os.Stdout, &tint.Options{
			Level:      cfg.LogLevel,
			AddSource:  true,
			TimeFormat: time.Kitchen,
		})
		return slog.New(teeHandler{h, diag}).With("app", appName)
	}

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})
	return slog.New(teeHandler{h, diag}).With(
		"app", appName,
		"version", version,
		"env", cfg.AppEnv,
	)
}

// teeHandler fans each record out to every wrapped handler.
type teeHandler []slog.Handler

func (t teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t teeHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range t {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = h.WithGroup(name)
	}
	return out
}
