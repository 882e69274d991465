package commands

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/sdc-protocol/sdc-go/pkg/log"
	"github.com/sdc-protocol/sdc-go/pkg/pmtypes"
)

const testSequenceID = "urn:uuid:6f4c1d1e-3c1a-4c55-9a55-3c5e0b2a0d11"

func createTestLogFile(t *testing.T, events []log.Event) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.sdclog")

	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

// invocationEvents returns the three events of one successful SetValue
// invocation followed by its commit.
func invocationEvents(ts time.Time, tr uint64, handle string) []log.Event {
	d := 1500 * time.Microsecond
	inv := func(st pmtypes.InvocationState, offset time.Duration) log.Event {
		e := log.Event{
			Timestamp:  ts.Add(offset),
			SequenceID: testSequenceID,
			Direction:  log.DirectionOut,
			Layer:      log.LayerSco,
			Category:   log.CategoryInvocation,
			Invocation: &log.InvocationEvent{
				TransactionID:   tr,
				OperationHandle: handle,
				Kind:            "SetValue",
				State:           st,
				MdibVersion:     tr,
			},
		}
		if st.IsTerminal() {
			e.Invocation.Duration = &d
		}
		return e
	}
	return []log.Event{
		inv(pmtypes.InvocationWait, 0),
		inv(pmtypes.InvocationStarted, time.Millisecond),
		{
			Timestamp:  ts.Add(2 * time.Millisecond),
			SequenceID: testSequenceID,
			Direction:  log.DirectionOut,
			Layer:      log.LayerMdib,
			Category:   log.CategoryCommit,
			Commit:     &log.CommitEvent{MdibVersion: tr, Metrics: 1},
		},
		inv(pmtypes.InvocationFinished, 3*time.Millisecond),
	}
}
