package security

import (
	"context"
	"log/slog"
)

// RedactingHandler wraps the bridge's real slog.Handler and scrubs every
// string that passes through it. The module loggers handed out by the
// app context all descend from one redacting root, so a Slack token or
// signing secret logged anywhere, including inside wrapped errors, comes
// out as the placeholder.
type RedactingHandler struct {
	inner    slog.Handler
	redactor *Redactor
}

var _ slog.Handler = (*RedactingHandler)(nil)

// NewRedactingHandler wraps inner so every record passes through redactor.
func NewRedactingHandler(inner slog.Handler, redactor *Redactor) *RedactingHandler {
	return &RedactingHandler{inner: inner, redactor: redactor}
}

// Enabled delegates to the wrapped handler.
func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle scrubs the message and every attribute of the record, then
// forwards the cleaned record to the wrapped handler.
func (h *RedactingHandler) Handle(ctx context.Context, record slog.Record) error {
	clean := slog.NewRecord(record.Time, record.Level, h.redactor.Redact(record.Message), record.PC)

	record.Attrs(func(a slog.Attr) bool {
		clean.AddAttrs(h.scrub(a))
		return true
	})

	return h.inner.Handle(ctx, clean)
}

// WithAttrs scrubs the attributes once, here, and folds them into the
// wrapped handler; they never need scrubbing again per record.
func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		clean[i] = h.scrub(a)
	}
	return &RedactingHandler{inner: h.inner.WithAttrs(clean), redactor: h.redactor}
}

// WithGroup delegates grouping to the wrapped handler.
func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{inner: h.inner.WithGroup(name), redactor: h.redactor}
}

// scrub redacts an attribute's value, descending into groups. The value
// is resolved first so LogValuer, error, and Stringer types are scrubbed
// in their final string form.
func (h *RedactingHandler) scrub(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	switch a.Value.Kind() {
	case slog.KindString:
		a.Value = slog.StringValue(h.redactor.Redact(a.Value.String()))

	case slog.KindGroup:
		members := a.Value.Group()
		clean := make([]slog.Attr, len(members))
		for i, member := range members {
			clean[i] = h.scrub(member)
		}
		a.Value = slog.GroupValue(clean...)

	case slog.KindAny:
		// Errors carrying a token in their text land here. Replace the
		// value only when redaction changed something, so non-secret
		// values keep their concrete type.
		text := a.Value.String()
		if cleaned := h.redactor.Redact(text); cleaned != text {
			a.Value = slog.StringValue(cleaned)
		}
	}
	return a
}
