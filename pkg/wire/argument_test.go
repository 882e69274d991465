package wire

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdc-protocol/sdc-go/pkg/model"
	"github.com/sdc-protocol/sdc-go/pkg/pmtypes"
	"github.com/sdc-protocol/sdc-go/pkg/sco"
)

func locationProposal(t *testing.T, reg *model.Registry) *model.LocationContextState {
	t.Helper()
	s, err := reg.CreateState(model.LocationContextStateType)
	require.NoError(t, err)
	ls := s.(*model.LocationContextState)
	ls.DescriptorHandle = "lc0"
	ls.ContextAssociation = pmtypes.AssociationAssociated
	ls.LocationDetail = &pmtypes.LocationDetail{Facility: "HOSP", Bed: "7"}
	return ls
}

func alertProposal(t *testing.T, reg *model.Registry) *model.LimitAlertConditionState {
	t.Helper()
	s, err := reg.CreateState(model.LimitAlertConditionStateType)
	require.NoError(t, err)
	as := s.(*model.LimitAlertConditionState)
	as.DescriptorHandle = "lac.numeric.ch0.vmd0"
	as.ActivationState = pmtypes.AlertOff
	return as
}

func TestArgumentRoundTrip(t *testing.T) {
	reg := model.NewRegistry()
	loc := locationProposal(t, reg)
	alert := alertProposal(t, reg)

	tests := []struct {
		name string
		kind sco.Kind
		arg  any
	}{
		{"set value", sco.KindSetValue, 42.5},
		{"set string", sco.KindSetString, "ON"},
		{"activate", sco.KindActivate, []string{"full", "3"}},
		{"context states", sco.KindSetContextState, []model.ContextState{loc}},
		{"metric states", sco.KindSetMetricState, []model.State{alert}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := EncodeArgument(reg, tt.kind, tt.arg)
			require.NoError(t, err)

			got, err := DecodeArgument(reg, tt.kind, raw)
			require.NoError(t, err)

			switch want := tt.arg.(type) {
			case []model.ContextState:
				states, ok := got.([]model.ContextState)
				require.True(t, ok, "%T", got)
				require.Len(t, states, len(want))
				for i := range want {
					assert.True(t, reg.Equal(want[i], states[i]), reg.Diff(want[i], states[i]))
				}
			case []model.State:
				states, ok := got.([]model.State)
				require.True(t, ok, "%T", got)
				require.Len(t, states, len(want))
				for i := range want {
					assert.True(t, reg.Equal(want[i], states[i]), reg.Diff(want[i], states[i]))
				}
			default:
				assert.Equal(t, tt.arg, got)
			}
		})
	}
}

func TestAlertStateArgumentIsSingle(t *testing.T) {
	reg := model.NewRegistry()
	alert := alertProposal(t, reg)

	raw, err := EncodeArgument(reg, sco.KindSetAlertState, alert)
	require.NoError(t, err)

	got, err := DecodeArgument(reg, sco.KindSetAlertState, raw)
	require.NoError(t, err)
	s, ok := got.(model.State)
	require.True(t, ok, "%T", got)
	assert.Equal(t, "lac.numeric.ch0.vmd0", s.Base().DescriptorHandle)
	assert.Equal(t, pmtypes.AlertOff, s.(*model.LimitAlertConditionState).ActivationState)

	_, err = EncodeArgument(reg, sco.KindSetAlertState, []model.State{alert, alert})
	assert.ErrorIs(t, err, ErrArgumentShape)
}

func TestArgumentErrors(t *testing.T) {
	reg := model.NewRegistry()

	_, err := EncodeArgument(reg, sco.KindSetValue, "42")
	assert.ErrorIs(t, err, ErrArgumentShape)

	raw := mustMarshal(t, "not a number")
	_, err = DecodeArgument(reg, sco.KindSetValue, raw)
	assert.ErrorIs(t, err, ErrArgumentShape)

	_, err = DecodeArgument(reg, sco.KindSetString, nil)
	assert.ErrorIs(t, err, ErrMissingArgument)

	got, err := DecodeArgument(reg, sco.KindActivate, nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	// A metric state is not a context state.
	alert := alertProposal(t, reg)
	raw, err = EncodeArgument(reg, sco.KindSetMetricState, []model.State{alert})
	require.NoError(t, err)
	_, err = DecodeArgument(reg, sco.KindSetContextState, raw)
	assert.ErrorIs(t, err, ErrArgumentShape)
}

func TestArgumentFromValue(t *testing.T) {
	reg := model.NewRegistry()

	v, err := ArgumentFromValue(reg, sco.KindSetValue, "42")
	require.NoError(t, err)
	assert.Equal(t, 42.0, v)

	v, err = ArgumentFromValue(reg, sco.KindSetValue, 7)
	require.NoError(t, err)
	assert.Equal(t, 7.0, v)

	v, err = ArgumentFromValue(reg, sco.KindSetString, "OFF")
	require.NoError(t, err)
	assert.Equal(t, "OFF", v)

	v, err = ArgumentFromValue(reg, sco.KindActivate, []any{"a", 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "2"}, v)

	_, err = ArgumentFromValue(reg, sco.KindSetValue, nil)
	assert.ErrorIs(t, err, ErrMissingArgument)
}

func TestArgumentFromValueShapeErrors(t *testing.T) {
	reg := model.NewRegistry()
	tests := []struct {
		name string
		kind sco.Kind
		v    any
	}{
		{"nil alert state", sco.KindSetAlertState, []any{nil}},
		{"two alert states", sco.KindSetAlertState, []any{map[string]any{}, map[string]any{}}},
		{"no alert state", sco.KindSetAlertState, []any{}},
		{"nil context state", sco.KindSetContextState, []any{nil}},
		{"nil metric state", sco.KindSetMetricState, []any{nil}},
		{"nil component state", sco.KindSetComponentState, []any{nil}},
		{"number as states", sco.KindSetMetricState, 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			require.NotPanics(t, func() {
				_, err = ArgumentFromValue(reg, tt.kind, tt.v)
			})
			assert.ErrorIs(t, err, ErrArgumentShape)
		})
	}
}

func TestArgumentFromJSONNodes(t *testing.T) {
	reg := model.NewRegistry()
	loc := locationProposal(t, reg)

	n, err := reg.Materialize(loc, "", nil)
	require.NoError(t, err)
	data, err := json.Marshal(n)
	require.NoError(t, err)

	var generic any
	require.NoError(t, json.Unmarshal(data, &generic))

	// A single object is accepted where a list is expected.
	v, err := ArgumentFromValue(reg, sco.KindSetContextState, generic)
	require.NoError(t, err)
	states, ok := v.([]model.ContextState)
	require.True(t, ok, "%T", v)
	require.Len(t, states, 1)
	assert.True(t, reg.Equal(loc, states[0]), reg.Diff(loc, states[0]))

	v, err = ArgumentFromValue(reg, sco.KindSetAlertState, []any{generic})
	require.NoError(t, err)
	_, ok = v.(*model.LocationContextState)
	assert.True(t, ok, "%T", v)
}
