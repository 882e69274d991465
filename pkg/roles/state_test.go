package roles

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdc-protocol/sdc-go/pkg/mdib"
	"github.com/sdc-protocol/sdc-go/pkg/model"
	"github.com/sdc-protocol/sdc-go/pkg/pmtypes"
	"github.com/sdc-protocol/sdc-go/pkg/sco"
)

func TestStateProviderSetsAlertState(t *testing.T) {
	d := newDevice(t, NewStateProvider(nil))

	proposal := &model.LimitAlertConditionState{}
	proposal.DescriptorHandle = "lac.numeric.ch0.vmd0"
	proposal.ActivationState = pmtypes.AlertOff
	proposal.Presence = true
	proposal.StateVersion = 99

	r := d.invoke(t, "op.set.alert.lac", sco.KindSetAlertState, proposal)
	require.Equal(t, pmtypes.InvocationFinished, r.State, r.ErrorMessage)

	s, ok := d.mdib.State("lac.numeric.ch0.vmd0")
	require.True(t, ok)
	lac := s.(*model.LimitAlertConditionState)
	assert.Equal(t, pmtypes.AlertOff, lac.ActivationState)
	assert.True(t, lac.Presence)
	assert.Equal(t, uint64(1), lac.StateVersion)
}

func TestStateProviderRejectsOtherAlertState(t *testing.T) {
	d := newDevice(t, NewStateProvider(nil))

	proposal := &model.AlertSignalState{}
	proposal.DescriptorHandle = "as.lac.numeric.ch0.vmd0"
	r := d.invoke(t, "op.set.alert.lac", sco.KindSetAlertState, proposal)
	assert.Equal(t, pmtypes.InvocationFailed, r.State)
	assert.Contains(t, r.ErrorMessage, ErrWrongDescriptor.Error())
}

func TestStateProviderHonoursModifiableData(t *testing.T) {
	m, err := mdib.LoadDescriptionFile(model.NewRegistry(), "../mdib/testdata/device.yaml", mdib.Config{})
	require.NoError(t, err)
	_, err = m.Transaction(context.Background(), func(tx *mdib.Transaction) error {
		od, err := tx.Registry().CreateDescriptor(model.SetComponentStateOperationDescriptorType, "op.set.vmd0", "sco.mds0")
		if err != nil {
			return err
		}
		sd := od.(model.SetStateOperationDescriptor)
		sd.Operation().OperationTarget = "vmd0"
		sd.SetState().ModifiableData = []string{"ActivationState"}
		return tx.AddDescriptor(od)
	})
	require.NoError(t, err)
	d := startDevice(t, m, NewStateProvider(nil))

	hours := uint64(1200)
	proposal := &model.VmdState{}
	proposal.DescriptorHandle = "vmd0"
	proposal.ActivationState = pmtypes.ActivationStandBy
	proposal.OperatingHours = &hours

	r := d.invoke(t, "op.set.vmd0", sco.KindSetComponentState, []model.State{proposal})
	require.Equal(t, pmtypes.InvocationFinished, r.State, r.ErrorMessage)

	s, ok := d.mdib.State("vmd0")
	require.True(t, ok)
	vmd := s.(*model.VmdState)
	assert.Equal(t, pmtypes.ActivationStandBy, vmd.ActivationState)
	assert.Nil(t, vmd.OperatingHours)
}

func TestStateProviderKinds(t *testing.T) {
	d := newDevice(t)
	p := NewStateProvider(nil, sco.KindSetMetricState)
	p.Init(d.mdib)

	desc, ok := d.mdib.Descriptor("op.set.alert.lac")
	require.True(t, ok)
	_, ok = p.MakeOperation(desc.(model.OperationDescriptor))
	assert.False(t, ok)

	_, ok = NewStateProvider(nil).MakeOperation(desc.(model.OperationDescriptor))
	assert.True(t, ok)

	// Only set-state kinds are handled, whatever the provider is asked for.
	setValue, ok := d.mdib.Descriptor("op.set.numeric.ch0.vmd0")
	require.True(t, ok)
	_, ok = NewStateProvider(nil, sco.KindSetValue).MakeOperation(setValue.(model.OperationDescriptor))
	assert.False(t, ok)
}
