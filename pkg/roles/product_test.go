package roles

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdc-protocol/sdc-go/pkg/model"
	"github.com/sdc-protocol/sdc-go/pkg/pmtypes"
	"github.com/sdc-protocol/sdc-go/pkg/sco"
)

// missingOperations adds one operation that is not in the MDIB.
type missingOperations struct {
	Base
	ops []*sco.Operation
}

func (p *missingOperations) MakeOperation(model.OperationDescriptor) (*sco.Operation, bool) {
	return nil, false
}

func (p *missingOperations) MakeMissingOperations() []*sco.Operation {
	return p.ops
}

func TestProductRegistersEveryOperation(t *testing.T) {
	d := newDevice(t, allProviders()...)

	var handles []string
	for _, op := range d.registry.Operations() {
		handles = append(handles, op.Handle())
	}
	assert.Equal(t, []string{
		"op.activate.selftest",
		"op.set.alert.lac",
		"op.set.ensemble",
		"op.set.enum.ch0.vmd0",
		"op.set.location",
		"op.set.numeric.ch0.vmd0",
		"op.set.string.ch0.vmd0",
	}, handles)
	assert.Equal(t, uint64(0), d.mdib.MdibVersion())
	assert.Len(t, d.product.Providers(), 6)
}

func TestProductFallsBackToRecordingOperation(t *testing.T) {
	d := newDevice(t)

	r := d.invoke(t, "op.set.numeric.ch0.vmd0", sco.KindSetValue, 1.0)
	assert.Equal(t, pmtypes.InvocationFinished, r.State)
	assert.Equal(t, uint64(0), d.mdib.MdibVersion())

	op := d.operation(t, "op.set.numeric.ch0.vmd0")
	assert.Equal(t, 1.0, op.CurrentArgument())
	assert.Nil(t, op.CurrentValue())
}

func TestProductFirstProviderWins(t *testing.T) {
	p := NewActivateProvider(nil)
	p.HandleCode("SELFTEST", func(context.Context, *sco.Invocation, []string) (sco.Outcome, error) {
		return sco.OutcomeCancelled, nil
	})
	d := newDevice(t, p, NewActivateProvider(nil))

	r := d.invoke(t, "op.activate.selftest", sco.KindActivate, nil)
	assert.Equal(t, pmtypes.InvocationCancelled, r.State)
}

func TestProductRegistersMissingOperations(t *testing.T) {
	extra := &missingOperations{
		Base: NewBase(nil),
		ops: []*sco.Operation{
			sco.NewOperation(sco.KindActivate, "op.activate.silence", "asy.mds0"),
			// Already described in the MDIB.
			sco.NewOperation(sco.KindSetValue, "op.set.numeric.ch0.vmd0", "numeric.ch0.vmd0"),
		},
	}
	d := newDevice(t, NewSetValueProvider(nil), extra)

	assert.Same(t, d.mdib, extra.Mdib())
	desc, ok := d.mdib.Descriptor("op.activate.silence")
	require.True(t, ok)
	assert.Equal(t, "sco.mds0", desc.Base().ParentHandle)

	// The MDIB operation keeps its provider's effect.
	r := d.invoke(t, "op.set.numeric.ch0.vmd0", sco.KindSetValue, 3.0)
	require.Equal(t, pmtypes.InvocationFinished, r.State)
	s, _ := d.mdib.State("numeric.ch0.vmd0")
	assert.Equal(t, 3.0, *s.(*model.NumericMetricState).MetricValue.Value)
}
