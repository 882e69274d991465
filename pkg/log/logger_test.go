package log

import (
	"testing"
	"time"

	"github.com/sdc-protocol/sdc-go/pkg/pmtypes"
)

func TestNoopLoggerDoesNotPanic(t *testing.T) {
	logger := NoopLogger{}

	event := Event{
		Timestamp:  time.Now(),
		SequenceID: "urn:uuid:test",
		Direction:  DirectionOut,
		Layer:      LayerSco,
		Category:   CategoryInvocation,
	}

	// nil payloads
	logger.Log(event)

	event.Invocation = &InvocationEvent{TransactionID: 1, OperationHandle: "op", State: pmtypes.InvocationWait}
	logger.Log(event)

	event.Invocation = nil
	event.Commit = &CommitEvent{MdibVersion: 3, Metrics: 1}
	logger.Log(event)

	event.Commit = nil
	event.Message = &MessageEvent{Type: MessageTypeRequest, MessageID: "m-1"}
	logger.Log(event)

	event.Message = nil
	event.Error = &ErrorEventData{Message: "test error"}
	logger.Log(event)
}

func TestLoggerFunc(t *testing.T) {
	var got []uint64
	var l Logger = LoggerFunc(func(e Event) {
		got = append(got, e.Commit.MdibVersion)
	})
	l.Log(Event{Commit: &CommitEvent{MdibVersion: 4}})
	l.Log(Event{Commit: &CommitEvent{MdibVersion: 5}})

	if len(got) != 2 || got[0] != 4 || got[1] != 5 {
		t.Errorf("got %v, want [4 5]", got)
	}
}

func TestOrNoop(t *testing.T) {
	if _, ok := OrNoop(nil).(NoopLogger); !ok {
		t.Error("OrNoop(nil) should return NoopLogger")
	}
	m := NewMultiLogger()
	if OrNoop(m) != Logger(m) {
		t.Error("OrNoop should return a non-nil logger unchanged")
	}
}

func TestNoopLoggerIsZeroValue(t *testing.T) {
	var logger NoopLogger
	logger.Log(Event{})
}
