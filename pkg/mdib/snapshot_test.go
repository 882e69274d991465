package mdib

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdc-protocol/sdc-go/pkg/model"
)

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	m := newTestMdib(t)
	_, err := m.Transaction(context.Background(), func(tx *Transaction) error {
		return setNumeric(tx, "msrmt.ch0.vmd0", 72)
	})
	require.NoError(t, err)

	snap, err := m.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, testSequenceID, snap.SequenceID)
	assert.Equal(t, uint64(1), snap.MdibVersion)
	require.NotNil(t, snap.Description)
	assert.Equal(t, RootTag, snap.Description.Tag)

	// Survive a JSON round trip as a store would do.
	data, err := json.Marshal(snap)
	require.NoError(t, err)
	var decoded Snapshot
	require.NoError(t, json.Unmarshal(data, &decoded))

	reg := model.NewRegistry()
	r, err := Restore(reg, &decoded, Config{SequenceID: "ignored"})
	require.NoError(t, err)

	assert.Equal(t, testSequenceID, r.SequenceID())
	assert.Equal(t, uint64(1), r.MdibVersion())

	want := m.Descriptors()
	got := r.Descriptors()
	require.Equal(t, handles(want), handles(got))
	for i := range want {
		assert.Empty(t, reg.Diff(want[i], got[i]), want[i].Base().Handle)
	}

	wantStates := m.States()
	gotStates := r.States()
	require.Len(t, gotStates, len(wantStates))
	for i := range wantStates {
		assert.Empty(t, reg.Diff(wantStates[i], gotStates[i]), wantStates[i].Base().DescriptorHandle)
	}
}

func TestSnapshotEmptyMdib(t *testing.T) {
	m := New(model.NewRegistry(), Config{SequenceID: "urn:uuid:empty"})
	snap, err := m.Snapshot()
	require.NoError(t, err)
	assert.Nil(t, snap.Description)

	r, err := Restore(model.NewRegistry(), snap, Config{})
	require.NoError(t, err)
	_, ok := r.Root()
	assert.False(t, ok)
}

func TestRestoreInvalidSnapshot(t *testing.T) {
	reg := model.NewRegistry()

	_, err := Restore(reg, nil, Config{})
	assert.ErrorIs(t, err, ErrInvalidSnapshot)

	_, err = Restore(reg, &Snapshot{}, Config{})
	assert.ErrorIs(t, err, ErrInvalidSnapshot)

	_, err = Restore(reg, &Snapshot{
		SequenceID: "urn:uuid:x",
		States:     []*model.Node{{Tag: StateTag, Type: string(model.VmdStateType)}},
	}, Config{})
	assert.ErrorIs(t, err, ErrInvalidSnapshot)

	_, err = Restore(reg, &Snapshot{
		SequenceID:  "urn:uuid:x",
		Description: &model.Node{Tag: RootTag, Type: "Bogus"},
	}, Config{})
	assert.ErrorIs(t, err, ErrInvalidSnapshot)
	assert.ErrorIs(t, err, model.ErrUnknownNodeType)
}
