package log

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/sdc-protocol/sdc-go/pkg/pmtypes"
)

func createTestLogFile(t *testing.T, events []Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.sdclog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create test log: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

func readFiltered(t *testing.T, path string, filter Filter) []Event {
	t.Helper()
	reader, err := NewFilteredReader(path, filter)
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer reader.Close()

	var read []Event
	for {
		event, err := reader.Next()
		if err == io.EOF {
			return read
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		read = append(read, event)
	}
}

func invocation(tr uint64, op string, state pmtypes.InvocationState) Event {
	return Event{
		Timestamp:  time.Now(),
		SequenceID: "seq-1",
		Direction:  DirectionOut,
		Layer:      LayerSco,
		Category:   CategoryInvocation,
		Invocation: &InvocationEvent{TransactionID: tr, OperationHandle: op, State: state},
	}
}

func TestReaderIteratesEvents(t *testing.T) {
	events := []Event{
		{Timestamp: time.Now(), SequenceID: "seq-1", Layer: LayerMdib, Category: CategoryCommit},
		{Timestamp: time.Now(), SequenceID: "seq-2", Layer: LayerSco, Category: CategoryInvocation},
		{Timestamp: time.Now(), SequenceID: "seq-3", Layer: LayerWire, Category: CategoryMessage},
	}
	path := createTestLogFile(t, events)

	read := readFiltered(t, path, Filter{})
	if len(read) != 3 {
		t.Fatalf("got %d events, want 3", len(read))
	}
	if read[0].SequenceID != "seq-1" || read[2].SequenceID != "seq-3" {
		t.Errorf("order: got %q..%q", read[0].SequenceID, read[2].SequenceID)
	}
}

func TestReaderHandlesEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.sdclog")
	logger, _ := NewFileLogger(path)
	logger.Close()

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	if event, err := reader.Next(); err != io.EOF {
		t.Errorf("expected io.EOF, got err=%v, event=%+v", err, event)
	}
}

func TestReaderFilterByLayer(t *testing.T) {
	path := createTestLogFile(t, []Event{
		{Timestamp: time.Now(), Layer: LayerMdib, Category: CategoryCommit},
		invocation(1, "op", pmtypes.InvocationWait),
		{Timestamp: time.Now(), Layer: LayerMdib, Category: CategoryCommit},
	})

	layer := LayerMdib
	if got := len(readFiltered(t, path, Filter{Layer: &layer})); got != 2 {
		t.Errorf("got %d events, want 2", got)
	}
}

func TestReaderFilterByOperation(t *testing.T) {
	path := createTestLogFile(t, []Event{
		invocation(1, "op_a", pmtypes.InvocationWait),
		invocation(1, "op_a", pmtypes.InvocationStarted),
		invocation(2, "op_b", pmtypes.InvocationWait),
		{Timestamp: time.Now(), Layer: LayerMdib, Category: CategoryCommit},
		invocation(1, "op_a", pmtypes.InvocationFinished),
	})

	read := readFiltered(t, path, Filter{OperationHandle: "op_a"})
	if len(read) != 3 {
		t.Fatalf("got %d events, want 3", len(read))
	}
	if read[2].Invocation.State != pmtypes.InvocationFinished {
		t.Errorf("last state = %q, want %q", read[2].Invocation.State, pmtypes.InvocationFinished)
	}

	tr := uint64(2)
	read = readFiltered(t, path, Filter{TransactionID: &tr})
	if len(read) != 1 || read[0].Invocation.OperationHandle != "op_b" {
		t.Errorf("TransactionID filter: got %d events", len(read))
	}
}

func TestReaderFilterByTimeRange(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	path := createTestLogFile(t, []Event{
		{Timestamp: base, SequenceID: "a"},
		{Timestamp: base.Add(time.Minute), SequenceID: "b"},
		{Timestamp: base.Add(2 * time.Minute), SequenceID: "c"},
	})

	start := base.Add(30 * time.Second)
	end := base.Add(2 * time.Minute)
	read := readFiltered(t, path, Filter{TimeStart: &start, TimeEnd: &end})
	if len(read) != 1 || read[0].SequenceID != "b" {
		t.Errorf("got %+v, want only b", read)
	}
}

func TestReaderCombinedFilters(t *testing.T) {
	path := createTestLogFile(t, []Event{
		{Timestamp: time.Now(), SequenceID: "s1", Direction: DirectionIn, Layer: LayerWire, Category: CategoryMessage},
		{Timestamp: time.Now(), SequenceID: "s1", Direction: DirectionOut, Layer: LayerWire, Category: CategoryMessage},
		{Timestamp: time.Now(), SequenceID: "s2", Direction: DirectionIn, Layer: LayerWire, Category: CategoryMessage},
	})

	dir := DirectionIn
	cat := CategoryMessage
	read := readFiltered(t, path, Filter{SequenceID: "s1", Direction: &dir, Category: &cat})
	if len(read) != 1 {
		t.Errorf("got %d events, want 1", len(read))
	}
}
