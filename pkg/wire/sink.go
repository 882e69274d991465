package wire

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/sdc-protocol/sdc-go/pkg/log"
	"github.com/sdc-protocol/sdc-go/pkg/sco"
)

// StreamSink writes every operation invoked report as a CBOR item to w.
// Items are self delimiting, so a reader decodes them with NewDecoder.
type StreamSink struct {
	mu     sync.Mutex
	w      io.Writer
	events log.Logger
}

// NewStreamSink creates a sink writing to w. events may be nil.
func NewStreamSink(w io.Writer, events log.Logger) *StreamSink {
	return &StreamSink{w: w, events: log.OrNoop(events)}
}

// NotifyOperation encodes r and writes it.
func (s *StreamSink) NotifyOperation(_ context.Context, r *sco.OperationInvokedReport) error {
	rep := ReportFromSco(r)
	data, err := EncodeReport(rep)
	if err != nil {
		return err
	}

	s.mu.Lock()
	_, err = s.w.Write(data)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.events.Log(log.Event{
		Timestamp:  time.Now(),
		SequenceID: r.SequenceID,
		Direction:  log.DirectionOut,
		Layer:      log.LayerWire,
		Category:   log.CategoryMessage,
		Source:     r.Source,
		Message: &log.MessageEvent{
			Type:   log.MessageTypeReport,
			Action: rep.Action.String(),
			Size:   len(data),
		},
	})
	return nil
}

var _ sco.ReportSink = (*StreamSink)(nil)
