package mdib

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdc-protocol/sdc-go/pkg/model"
	"github.com/sdc-protocol/sdc-go/pkg/pmtypes"
)

const testSequenceID = "urn:uuid:6f4c1d1e-3c1a-4c55-9a55-3c5e0b2a0d11"

func newTestMdib(t *testing.T) *Mdib {
	t.Helper()
	m, err := LoadDescriptionFile(model.NewRegistry(), "testdata/device.yaml", Config{})
	require.NoError(t, err)
	return m
}

func handles(ds []model.Descriptor) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Base().Handle)
	}
	return out
}

func TestLoadDescription(t *testing.T) {
	m := newTestMdib(t)

	assert.Equal(t, testSequenceID, m.SequenceID())
	assert.Equal(t, uint64(0), m.MdibVersion())

	root, ok := m.Root()
	require.True(t, ok)
	assert.Equal(t, "mds0", root.Base().Handle)
	require.NotNil(t, root.Base().Type)
	assert.Equal(t, "70041", root.Base().Type.Code)

	assert.Equal(t,
		[]string{"asy.mds0", "sco.mds0", "sc0", "clock0", "vmd0"},
		handles(m.Children("mds0")))

	metrics := m.Descriptors(model.NumericMetricDescriptorType)
	assert.Equal(t, []string{"numeric.ch0.vmd0", "msrmt.ch0.vmd0"}, handles(metrics))

	d, ok := m.Descriptor("numeric.ch0.vmd0")
	require.True(t, ok)
	nd := d.(*model.NumericMetricDescriptor)
	assert.Equal(t, "ch0.vmd0", nd.ParentHandle)
	assert.Equal(t, pmtypes.MetricCategorySetting, nd.MetricCategory)
	assert.InDelta(t, 0.1, nd.Resolution, 1e-12)
}

func TestLoadDescriptionFillsMissingStates(t *testing.T) {
	m := newTestMdib(t)

	// Every single-state descriptor has a state.
	for _, d := range m.Descriptors() {
		if m.Registry().IsMultiState(d.NodeType()) {
			continue
		}
		_, ok := m.State(d.Base().Handle)
		assert.True(t, ok, "missing state for %s", d.Base().Handle)
	}

	s, ok := m.State("numeric.ch0.vmd0")
	require.True(t, ok)
	ns := s.(*model.NumericMetricState)
	require.NotNil(t, ns.MetricValue)
	require.NotNil(t, ns.MetricValue.Value)
	assert.Equal(t, 60.0, *ns.MetricValue.Value)
	assert.Equal(t, pmtypes.ValidityValid, ns.MetricValue.MetricQuality.Validity)

	op, ok := m.State("op.set.numeric.ch0.vmd0")
	require.True(t, ok)
	assert.Equal(t, pmtypes.OperatingEnabled, op.(*model.SetValueOperationState).OperatingMode)

	// Context descriptors only have the states listed in the description.
	assert.Empty(t, m.ContextStates("pc0"))
	loc := m.ContextStates("lc0")
	require.Len(t, loc, 1)
	assert.Equal(t, "lc0.initial", loc[0].Multi().Handle)
	assert.Equal(t, pmtypes.AssociationAssociated, loc[0].Context().ContextAssociation)
}

func TestLoadDescriptionErrors(t *testing.T) {
	reg := model.NewRegistry()
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"invalid yaml", "mds: [", "failed to parse YAML"},
		{"missing mds", "states: []", "mds is required"},
		{"root not mds", "mds: {type: VmdDescriptor, handle: vmd0}", "root must be an MdsDescriptor"},
		{"unknown type", "mds: {type: MdsDescriptor, handle: mds0, children: [{type: Bogus, handle: x}]}", "unknown node type"},
		{
			"state for unknown descriptor",
			"mds: {type: MdsDescriptor, handle: mds0}\nstates: [{type: VmdState, descriptor: vmd9}]",
			"unknown handle",
		},
		{
			"state of wrong type",
			"mds: {type: MdsDescriptor, handle: mds0}\nstates: [{type: VmdState, descriptor: mds0}]",
			"state does not match descriptor",
		},
		{
			"duplicate handle",
			"mds: {type: MdsDescriptor, handle: mds0, children: [{type: VmdDescriptor, handle: mds0}]}",
			"duplicate handle",
		},
		{
			"context state takes descriptor handle",
			"mds: {type: MdsDescriptor, handle: mds0, children: [{type: SystemContextDescriptor, handle: sc0, " +
				"children: [{type: LocationContextDescriptor, handle: lc0}]}]}\n" +
				"states: [{type: LocationContextState, descriptor: lc0, handle: sc0}]",
			"duplicate handle",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadDescription(reg, strings.NewReader(tt.yaml), Config{})
			require.Error(t, err)
			var de *DescriptionError
			require.ErrorAs(t, err, &de)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadDescriptionFileError(t *testing.T) {
	_, err := LoadDescriptionFile(model.NewRegistry(), "testdata/missing.yaml", Config{})
	var de *DescriptionError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "testdata/missing.yaml", de.File)
}

func TestNewGeneratesSequenceID(t *testing.T) {
	a := New(model.NewRegistry(), Config{})
	b := New(model.NewRegistry(), Config{})
	assert.True(t, strings.HasPrefix(a.SequenceID(), "urn:uuid:"))
	assert.NotEqual(t, a.SequenceID(), b.SequenceID())
}

func TestReadersReturnCopies(t *testing.T) {
	m := newTestMdib(t)

	s, _ := m.State("numeric.ch0.vmd0")
	*s.(*model.NumericMetricState).MetricValue.Value = 1

	d, _ := m.Descriptor("numeric.ch0.vmd0")
	d.Base().Handle = "changed"

	cs := m.ContextStates("lc0")
	cs[0].Context().ContextAssociation = pmtypes.AssociationDisassociated

	s2, _ := m.State("numeric.ch0.vmd0")
	assert.Equal(t, 60.0, *s2.(*model.NumericMetricState).MetricValue.Value)
	d2, _ := m.Descriptor("numeric.ch0.vmd0")
	assert.Equal(t, "numeric.ch0.vmd0", d2.Base().Handle)
	assert.Equal(t, pmtypes.AssociationAssociated, m.ContextStates("lc0")[0].Context().ContextAssociation)
}

func TestLookupContextStates(t *testing.T) {
	m := newTestMdib(t)
	_, err := m.Transaction(context.Background(), func(tx *Transaction) error {
		for _, s := range []struct{ desc, handle string }{{"pc0", "pc0.a"}, {"ec0", "ec0.a"}} {
			st, err := tx.Registry().CreateState(stateTypeOf(t, tx, s.desc))
			if err != nil {
				return err
			}
			st.Base().DescriptorHandle = s.desc
			st.(model.MultiState).Multi().Handle = s.handle
			if err := tx.AddState(st); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	stateHandles := func(states []model.ContextState) []string {
		var out []string
		for _, s := range states {
			out = append(out, s.Multi().Handle)
		}
		return out
	}

	assert.Equal(t, []string{"ec0.a", "lc0.initial", "pc0.a"}, stateHandles(m.LookupContextStates()))
	assert.Equal(t, []string{"pc0.a"}, stateHandles(m.LookupContextStates("pc0.a")))
	assert.Equal(t, []string{"lc0.initial"}, stateHandles(m.LookupContextStates("lc0")))
	assert.Equal(t, []string{"ec0.a", "lc0.initial", "pc0.a"}, stateHandles(m.LookupContextStates("mds0")))
	assert.Equal(t, []string{"pc0.a", "ec0.a"}, stateHandles(m.LookupContextStates("pc0", "pc0.a", "ec0")))
	assert.Empty(t, m.LookupContextStates("unknown", "vmd0"))
}

func stateTypeOf(t *testing.T, tx *Transaction, handle string) model.NodeType {
	t.Helper()
	d, ok := tx.lookupDescriptor(handle)
	require.True(t, ok)
	dv, _ := tx.Registry().DescriptorVariant(d.NodeType())
	return dv.StateType
}

func TestHandlesAreNormalized(t *testing.T) {
	m := newTestMdib(t)
	decomposed := "A\u030a.ch0.vmd0"
	composed := "\u00c5.ch0.vmd0"

	_, err := m.Transaction(context.Background(), func(tx *Transaction) error {
		d, err := tx.Registry().CreateDescriptor(model.StringMetricDescriptorType, decomposed, "ch0.vmd0")
		if err != nil {
			return err
		}
		return tx.AddDescriptor(d)
	})
	require.NoError(t, err)

	d, ok := m.Descriptor(composed)
	require.True(t, ok)
	assert.Equal(t, composed, d.Base().Handle)
	_, ok = m.State(decomposed)
	assert.True(t, ok)
}
