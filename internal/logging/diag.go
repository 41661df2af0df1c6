package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DiagHandler appends one "[timestamp] message" line per record to the
// agent's diagnostic log file. The file is opened and closed per write so a
// power loss never costs more than the line in flight.
type DiagHandler struct {
	path    string
	level   slog.Level
	stamper Stamper
	attrs   []slog.Attr

	mu *sync.Mutex
}

func NewDiagHandler(path string, level slog.Level, stamper Stamper) *DiagHandler {
	return &DiagHandler{
		path:    path,
		level:   level,
		stamper: stamper,
		mu:      &sync.Mutex{},
	}
}

func (h *DiagHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *DiagHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	stamp := ""
	if h.stamper != nil {
		stamp = h.stamper.LogStamp()
	}
	fmt.Fprintf(&b, "[%s] %s", stamp, r.Message)
	for _, a := range h.attrs {
		appendAttr(&b, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&b, a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	return appendLine(h.path, b.String())
}

func (h *DiagHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := *h
	out.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &out
}

func (h *DiagHandler) WithGroup(string) slog.Handler { return h }

func appendAttr(b *strings.Builder, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}
	fmt.Fprintf(b, " %s=%v", a.Key, a.Value)
}

func appendLine(path, line string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open diag log: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write diag log: %w", err)
	}
	return nil
}
