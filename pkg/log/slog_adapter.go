package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes provider events to an slog.Logger.
// Useful for development when you want to see events in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("sequence_id", event.SequenceID),
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}

	if event.Source != "" {
		attrs = append(attrs, slog.String("source", event.Source))
	}

	// Add type-specific attributes
	switch {
	case event.Invocation != nil:
		inv := event.Invocation
		attrs = append(attrs,
			slog.Uint64("transaction_id", inv.TransactionID),
			slog.String("operation", inv.OperationHandle),
			slog.String("invocation_state", string(inv.State)),
		)
		if inv.Kind != "" {
			attrs = append(attrs, slog.String("kind", inv.Kind))
		}
		if inv.Error != "" {
			attrs = append(attrs,
				slog.String("invocation_error", string(inv.Error)),
				slog.String("error_msg", inv.ErrorMessage),
			)
		}
		if inv.Duration != nil {
			attrs = append(attrs, slog.Duration("duration", *inv.Duration))
		}
	case event.Commit != nil:
		c := event.Commit
		attrs = append(attrs,
			slog.Uint64("mdib_version", c.MdibVersion),
			slog.Int("metrics", c.Metrics),
			slog.Int("alerts", c.Alerts),
			slog.Int("components", c.Components),
			slog.Int("contexts", c.Contexts),
			slog.Int("operational", c.Operational),
			slog.Int("descriptions", c.Descriptions),
		)
	case event.Message != nil:
		attrs = append(attrs,
			slog.String("msg_id", event.Message.MessageID),
			slog.String("msg_type", event.Message.Type.String()),
		)
		if event.Message.Action != "" {
			attrs = append(attrs, slog.String("action", event.Message.Action))
		}
		if event.Message.Size > 0 {
			attrs = append(attrs, slog.Int("size", event.Message.Size))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
		if event.Error.Code != nil {
			attrs = append(attrs, slog.Int("error_code", *event.Error.Code))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "sdc", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
