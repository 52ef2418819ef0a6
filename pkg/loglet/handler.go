package loglet

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Handler is a slog.Handler that forwards records to a loglet log through
// a Client. Delivery follows the client's mode: synchronous clients report
// send failures through the slog error path, asynchronous ones never do.
type Handler struct {
	client *Client
	min    slog.Level
	attrs  []slog.Attr
	groups []string
}

// NewHandler builds a Handler that drops records below min.
func NewHandler(client *Client, min slog.Level) *Handler {
	return &Handler{client: client, min: min}
}

// Enabled implements slog.Handler.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.min
}

// Handle implements slog.Handler. Attrs are folded into the message text;
// the record level maps onto the service's 0-100 scale.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(r.Message)
	for _, a := range h.attrs {
		writeAttr(&b, nil, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, h.groups, a)
		return true
	})
	return h.client.Submit(b.String(), LevelFromSlog(r.Level))
}

// WithAttrs implements slog.Handler. Attrs are qualified with the open
// groups at the time they are attached.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := *h
	h2.attrs = append([]slog.Attr(nil), h.attrs...)
	for _, a := range attrs {
		a.Key = qualify(h.groups, a.Key)
		h2.attrs = append(h2.attrs, a)
	}
	return &h2
}

// WithGroup implements slog.Handler.
func (h *Handler) WithGroup(name string) slog.Handler {
	h2 := *h
	h2.groups = append(append([]string(nil), h.groups...), name)
	return &h2
}

func writeAttr(b *strings.Builder, groups []string, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}
	b.WriteByte(' ')
	fmt.Fprintf(b, "%s=%v", qualify(groups, a.Key), a.Value.Resolve().Any())
}

func qualify(groups []string, key string) string {
	if len(groups) == 0 {
		return key
	}
	return strings.Join(groups, ".") + "." + key
}

// LevelFromSlog maps a slog level onto the service's severity scale:
// Debug 10, Info 20, Warn 30, Error 40, anything above 50.
func LevelFromSlog(l slog.Level) int {
	switch {
	case l < slog.LevelInfo:
		return 10
	case l < slog.LevelWarn:
		return 20
	case l < slog.LevelError:
		return 30
	case l < slog.LevelError+4:
		return 40
	default:
		return 50
	}
}
