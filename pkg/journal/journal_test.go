package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdc-protocol/sdc-go/pkg/pmtypes"
	"github.com/sdc-protocol/sdc-go/pkg/sco"
)

const seq = "urn:uuid:6f4c1d1e-3c1a-4c55-9a55-3c5e0b2a0d11"

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func report(tr uint64, handle string, state pmtypes.InvocationState) *sco.OperationInvokedReport {
	return &sco.OperationInvokedReport{
		SequenceID:      seq,
		MdibVersion:     tr,
		OperationHandle: handle,
		OperationTarget: "numeric.ch0.vmd0",
		Kind:            sco.KindSetValue,
		TransactionID:   tr,
		State:           state,
		Source:          "consumer-1",
	}
}

// record writes the WAIT, START and terminal reports of one transaction.
func record(t *testing.T, j *Journal, tr uint64, handle string, final pmtypes.InvocationState) {
	t.Helper()
	ctx := context.Background()
	for _, st := range []pmtypes.InvocationState{pmtypes.InvocationWait, pmtypes.InvocationStarted, final} {
		r := report(tr, handle, st)
		if st == pmtypes.InvocationFailed {
			r.Error = pmtypes.InvocationErrorOther
			r.ErrorMessage = "value out of range"
		}
		require.NoError(t, j.NotifyOperation(ctx, r))
	}
}

func TestJournalRecordsReports(t *testing.T) {
	j := openTestJournal(t)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	j.now = func() time.Time { return fixed }

	record(t, j, 1, "op.a", pmtypes.InvocationFinished)

	entries, err := j.Transaction(context.Background(), seq, 1)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	states := []pmtypes.InvocationState{entries[0].State, entries[1].State, entries[2].State}
	assert.Equal(t, []pmtypes.InvocationState{
		pmtypes.InvocationWait, pmtypes.InvocationStarted, pmtypes.InvocationFinished,
	}, states)

	e := entries[2]
	assert.True(t, e.Terminal())
	assert.False(t, entries[0].Terminal())
	assert.Equal(t, "op.a", e.OperationHandle)
	assert.Equal(t, "numeric.ch0.vmd0", e.OperationTarget)
	assert.Equal(t, "SetValue", e.Kind)
	assert.Equal(t, "consumer-1", e.Source)
	assert.Equal(t, uint64(1), e.MdibVersion)
	assert.True(t, fixed.Equal(e.RecordedAt))
	assert.Less(t, entries[0].ID, entries[2].ID)
}

func TestJournalByOperation(t *testing.T) {
	j := openTestJournal(t)
	record(t, j, 1, "op.a", pmtypes.InvocationFinished)
	record(t, j, 2, "op.b", pmtypes.InvocationFailed)
	record(t, j, 3, "op.a", pmtypes.InvocationFinishedModified)

	ctx := context.Background()
	all, err := j.ByOperation(ctx, "op.a", 0)
	require.NoError(t, err)
	require.Len(t, all, 6)
	assert.Equal(t, uint64(1), all[0].TransactionID)
	assert.Equal(t, uint64(3), all[5].TransactionID)

	last, err := j.ByOperation(ctx, "op.a", 2)
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, pmtypes.InvocationStarted, last[0].State)
	assert.Equal(t, pmtypes.InvocationFinishedModified, last[1].State)

	failed, err := j.Query(ctx, Filter{State: pmtypes.InvocationFailed})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "op.b", failed[0].OperationHandle)
	assert.Equal(t, pmtypes.InvocationErrorOther, failed[0].Error)
	assert.Equal(t, "value out of range", failed[0].ErrorMessage)

	ops, err := j.Operations(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"op.a": 6, "op.b": 3}, ops)
}

func TestJournalReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path)
	require.NoError(t, err)
	record(t, j, 1, "op.a", pmtypes.InvocationFinished)
	require.NoError(t, j.Close())
	require.NoError(t, j.Close(), "closing twice")

	_, err = j.Query(context.Background(), Filter{})
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, j.NotifyOperation(context.Background(), report(2, "op.a", pmtypes.InvocationWait)), ErrClosed)

	j, err = Open(path)
	require.NoError(t, err)
	defer j.Close()
	entries, err := j.Query(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestJournalInMemory(t *testing.T) {
	j, err := Open(":memory:")
	require.NoError(t, err)
	defer j.Close()

	record(t, j, 1, "op.a", pmtypes.InvocationFinished)
	entries, err := j.Query(context.Background(), Filter{SequenceID: "urn:uuid:other"})
	require.NoError(t, err)
	assert.Empty(t, entries)
}
