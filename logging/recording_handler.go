package logging

import (
	"context"
	"log/slog"
)

// recordingHandler copies records into a Recorder while passing them on to
// the underlying handler.
type recordingHandler struct {
	underlying slog.Handler
	recorder   *Recorder
	component  string
	attrs      []slog.Attr // keys already carry the group prefix
	prefix     string      // dotted group path
}

func newRecordingHandler(underlying slog.Handler, recorder *Recorder, component string) *recordingHandler {
	return &recordingHandler{
		underlying: underlying,
		recorder:   recorder,
		component:  component,
	}
}

func (h *recordingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.recorder.level || h.underlying.Enabled(ctx, level)
}

func (h *recordingHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= h.recorder.level {
		entry := Entry{
			Time:      r.Time,
			Level:     r.Level.String(),
			Component: h.component,
			Message:   r.Message,
		}
		if n := len(h.attrs) + r.NumAttrs(); n > 0 {
			entry.Attributes = make(map[string]any, n)
		}
		for _, a := range h.attrs {
			entry.Attributes[a.Key] = resolveValue(a.Value)
		}
		r.Attrs(func(a slog.Attr) bool {
			entry.Attributes[h.prefix+a.Key] = resolveValue(a.Value)
			return true
		})
		h.recorder.Add(entry)
	}

	// The underlying handler does not filter by level in Handle.
	if !h.underlying.Enabled(ctx, r.Level) {
		return nil
	}
	return h.underlying.Handle(ctx, r)
}

// WithAttrs must return a recordingHandler so that loggers derived with With
// keep recording.
func (h *recordingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(merged, h.attrs)
	for _, a := range attrs {
		merged = append(merged, slog.Attr{Key: h.prefix + a.Key, Value: a.Value})
	}

	clone := *h
	clone.underlying = h.underlying.WithAttrs(attrs)
	clone.attrs = merged
	return &clone
}

func (h *recordingHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.underlying = h.underlying.WithGroup(name)
	clone.prefix = h.prefix + name + "."
	return &clone
}

// resolveValue converts a slog.Value to a JSON-serializable value.
func resolveValue(v slog.Value) any {
	v = v.Resolve()

	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindInt64:
		return v.Int64()
	case slog.KindUint64:
		return v.Uint64()
	case slog.KindFloat64:
		return v.Float64()
	case slog.KindBool:
		return v.Bool()
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time()
	case slog.KindGroup:
		attrs := v.Group()
		group := make(map[string]any, len(attrs))
		for _, a := range attrs {
			group[a.Key] = resolveValue(a.Value)
		}
		return group
	default:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return v.Any()
	}
}
