package logging

import (
	"context"
	"log/slog"
)

// teeHandler fans records out to the console handler and the log file.
type teeHandler struct {
	primary slog.Handler
	file    slog.Handler
}

func (h *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.primary.Enabled(ctx, level) || h.file.Enabled(ctx, level)
}

func (h *teeHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	if h.primary.Enabled(ctx, r.Level) {
		firstErr = h.primary.Handle(ctx, r.Clone())
	}
	if h.file.Enabled(ctx, r.Level) {
		if err := h.file.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (h *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &teeHandler{primary: h.primary.WithAttrs(attrs), file: h.file.WithAttrs(attrs)}
}

func (h *teeHandler) WithGroup(name string) slog.Handler {
	return &teeHandler{primary: h.primary.WithGroup(name), file: h.file.WithGroup(name)}
}
