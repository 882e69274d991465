package wire

import (
	"context"
	"log/slog"
	"time"

	"github.com/sdc-protocol/sdc-go/pkg/log"
	"github.com/sdc-protocol/sdc-go/pkg/pmtypes"
	"github.com/sdc-protocol/sdc-go/pkg/sco"
)

// Dispatcher answers encoded requests using a sco.Registry.
type Dispatcher struct {
	registry *sco.Registry
	logger   *slog.Logger
	events   log.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithLogger sets the operational logger.
func WithLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithEventLogger sets the protocol event logger.
func WithEventLogger(l log.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.events = log.OrNoop(l) }
}

// NewDispatcher creates a dispatcher for registry.
func NewDispatcher(registry *sco.Registry, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		logger:   slog.New(slog.DiscardHandler),
		events:   log.NoopLogger{},
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Handle decodes one request and returns the encoded response.
//
// A request that cannot be framed (bad CBOR, missing message id, unknown
// action) returns an error and no response. A request whose argument does
// not decode is answered with FAILED and INVALID_VALUE without reaching
// the engine. Admission errors such as a full queue are answered with
// FAILED and UNSPECIFIED.
func (d *Dispatcher) Handle(ctx context.Context, data []byte) ([]byte, error) {
	req, err := DecodeRequest(data)
	if err != nil {
		return nil, err
	}
	d.logMessage(log.DirectionIn, log.MessageTypeRequest, req.MessageID, req.Action.String(), req.Source, len(data))

	resp := d.dispatch(ctx, req)

	out, err := EncodeResponse(resp)
	if err != nil {
		return nil, err
	}
	d.logMessage(log.DirectionOut, log.MessageTypeResponse, resp.MessageID, req.Action.String(), req.Source, len(out))
	return out, nil
}

func (d *Dispatcher) dispatch(ctx context.Context, req *Request) *Response {
	m := d.registry.Mdib()
	failed := func(kind ErrorKind, msg string) *Response {
		return &Response{
			Type:         MessageTypeResponse,
			MessageID:    req.MessageID,
			Status:       StatusFailed,
			MdibVersion:  m.MdibVersion(),
			SequenceID:   m.SequenceID(),
			Error:        kind,
			ErrorMessage: msg,
		}
	}

	sr, err := req.ToSco(m.Registry())
	if err != nil {
		d.logger.Warn("request argument rejected",
			"operation", req.OperationHandle, "action", req.Action, "error", err)
		return failed(ErrorKindFor(pmtypes.InvocationErrorInvalidValue), err.Error())
	}

	info, err := d.registry.HandleRequest(ctx, sr)
	if err != nil {
		d.logger.Warn("request not admitted",
			"operation", req.OperationHandle, "action", req.Action, "error", err)
		return failed(ErrorUnspecified, err.Error())
	}
	return ResponseFromInfo(req.MessageID, info)
}

func (d *Dispatcher) logMessage(dir log.Direction, t log.MessageType, id, action, source string, size int) {
	d.events.Log(log.Event{
		Timestamp:  time.Now(),
		SequenceID: d.registry.Mdib().SequenceID(),
		Direction:  dir,
		Layer:      log.LayerWire,
		Category:   log.CategoryMessage,
		Source:     source,
		Message: &log.MessageEvent{
			Type:      t,
			MessageID: id,
			Action:    action,
			Size:      size,
		},
	})
}
