package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/sdc-protocol/sdc-go/pkg/pmtypes"
)

func logJSON(t *testing.T, event Event) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	NewSlogAdapter(slog.New(handler)).Log(event)

	if buf.Len() == 0 {
		t.Fatal("no output produced")
	}
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	return entry
}

func TestSlogAdapterLogsInvocationEvent(t *testing.T) {
	entry := logJSON(t, Event{
		Timestamp:  time.Now(),
		SequenceID: "seq-123",
		Direction:  DirectionOut,
		Layer:      LayerSco,
		Category:   CategoryInvocation,
		Invocation: &InvocationEvent{
			TransactionID:   4,
			OperationHandle: "op_set",
			Kind:            "SetValue",
			State:           pmtypes.InvocationFailed,
			Error:           pmtypes.InvocationErrorOther,
			ErrorMessage:    "boom",
		},
	})

	if entry["sequence_id"] != "seq-123" {
		t.Errorf("sequence_id: got %v", entry["sequence_id"])
	}
	if entry["layer"] != "SCO" {
		t.Errorf("layer: got %v, want SCO", entry["layer"])
	}
	if entry["transaction_id"] != float64(4) {
		t.Errorf("transaction_id: got %v, want 4", entry["transaction_id"])
	}
	if entry["invocation_state"] != "Fail" {
		t.Errorf("invocation_state: got %v, want Fail", entry["invocation_state"])
	}
	if entry["invocation_error"] != "Oth" || entry["error_msg"] != "boom" {
		t.Errorf("error attrs: got %v / %v", entry["invocation_error"], entry["error_msg"])
	}
}

func TestSlogAdapterLogsCommitEvent(t *testing.T) {
	entry := logJSON(t, Event{
		Timestamp: time.Now(),
		Layer:     LayerMdib,
		Category:  CategoryCommit,
		Commit:    &CommitEvent{MdibVersion: 9, Metrics: 2},
	})

	if entry["mdib_version"] != float64(9) {
		t.Errorf("mdib_version: got %v, want 9", entry["mdib_version"])
	}
	if entry["metrics"] != float64(2) {
		t.Errorf("metrics: got %v, want 2", entry["metrics"])
	}
	if entry["msg"] != "sdc" {
		t.Errorf("msg: got %v, want sdc", entry["msg"])
	}
}

func TestSlogAdapterInterfaceSatisfaction(t *testing.T) {
	var _ Logger = (*SlogAdapter)(nil)
}
