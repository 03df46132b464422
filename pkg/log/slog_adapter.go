package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes host events to an slog.Logger.
// Useful for development when you want to see host events in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at a level matching the
// event's severity.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("category", event.Category.String()),
	}

	// Add optional identifiers
	if event.Unit != "" {
		attrs = append(attrs, slog.String("unit", event.Unit))
	}
	if event.HostID != "" {
		attrs = append(attrs, slog.String("host_id", event.HostID))
	}
	if event.ConnectionID != "" {
		attrs = append(attrs, slog.String("conn_id", event.ConnectionID))
	}
	if event.RemoteAddr != "" {
		attrs = append(attrs, slog.String("remote_addr", event.RemoteAddr))
	}

	// Add type-specific attributes
	switch {
	case event.Lifecycle != nil:
		attrs = append(attrs,
			slog.String("phase", event.Lifecycle.Phase.String()),
		)
		if event.Lifecycle.InstanceID != "" {
			attrs = append(attrs, slog.String("instance_id", event.Lifecycle.InstanceID))
		}
	case event.Param != nil:
		attrs = append(attrs,
			slog.String("param", event.Param.Param),
			slog.Int64("old_value", event.Param.OldValue),
			slog.Int64("new_value", event.Param.NewValue),
			slog.Bool("privileged", event.Param.Privileged),
		)
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Frame != nil:
		attrs = append(attrs,
			slog.String("direction", event.Direction.String()),
			slog.Int("frame_size", event.Frame.Size),
			slog.Bool("truncated", event.Frame.Truncated),
		)
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_msg", event.Error.Message),
		)
		if event.Error.Context != "" {
			attrs = append(attrs, slog.String("error_context", event.Error.Context))
		}
	}

	msg := event.Message
	if msg == "" {
		msg = "host event"
	}

	a.logger.LogAttrs(context.Background(), slogLevel(event.Level), msg, attrs...)
}

// slogLevel maps an event level to an slog level.
func slogLevel(l Level) slog.Level {
	switch l {
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
