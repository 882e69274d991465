package sco

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sdc-protocol/sdc-go/pkg/log"
	"github.com/sdc-protocol/sdc-go/pkg/mdib"
	"github.com/sdc-protocol/sdc-go/pkg/model"
	"github.com/sdc-protocol/sdc-go/pkg/pmtypes"
)

// testDevice has no Sco, so the registry has to create the default one.
const testDevice = `
sequenceId: urn:uuid:0b7f8f52-44a4-4bde-9d55-1f0c9a8e2a10
mds:
  type: MdsDescriptor
  handle: mds0
  children:
    - type: SystemContextDescriptor
      handle: sc0
      children:
        - {type: PatientContextDescriptor, handle: pc0}
        - {type: LocationContextDescriptor, handle: lc0}
    - type: VmdDescriptor
      handle: vmd0
      children:
        - type: ChannelDescriptor
          handle: ch0
          children:
            - type: NumericMetricDescriptor
              handle: M1
              attrs: {MetricCategory: Set, Resolution: "0.1"}
              children:
                - tag: Unit
                  attrs: {Code: "262688"}
            - type: StringMetricDescriptor
              handle: S1
              attrs: {MetricCategory: Set}
              children:
                - tag: Unit
                  attrs: {Code: "262656"}
`

const testSequenceID = "urn:uuid:0b7f8f52-44a4-4bde-9d55-1f0c9a8e2a10"

func newTestMdib(t *testing.T) *mdib.Mdib {
	t.Helper()
	m, err := mdib.LoadDescription(model.NewRegistry(), strings.NewReader(testDevice), mdib.Config{})
	require.NoError(t, err)
	return m
}

type recordingSink struct {
	mu      sync.Mutex
	reports []*OperationInvokedReport
}

func (s *recordingSink) NotifyOperation(_ context.Context, r *OperationInvokedReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, r)
	return nil
}

func (s *recordingSink) all() []*OperationInvokedReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*OperationInvokedReport, len(s.reports))
	copy(out, s.reports)
	return out
}

// waitFor blocks until at least n reports arrived.
func (s *recordingSink) waitFor(t *testing.T, n int) []*OperationInvokedReport {
	t.Helper()
	require.Eventually(t, func() bool { return len(s.all()) >= n }, 2*time.Second, time.Millisecond)
	return s.all()
}

type recordingLogger struct {
	mu     sync.Mutex
	events []log.Event
}

func (r *recordingLogger) Log(e log.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingLogger) all() []log.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]log.Event, len(r.events))
	copy(out, r.events)
	return out
}

type fixture struct {
	mdib     *mdib.Mdib
	sink     *recordingSink
	engine   *Engine
	registry *Registry
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	m := newTestMdib(t)
	sink := &recordingSink{}
	engine, err := NewEngine(m, sink, cfg)
	require.NoError(t, err)
	reg, err := NewRegistry(context.Background(), m, engine, cfg)
	require.NoError(t, err)
	require.NoError(t, engine.Start())
	t.Cleanup(func() { _ = engine.Stop() })
	return &fixture{mdib: m, sink: sink, engine: engine, registry: reg}
}

func (f *fixture) register(t *testing.T, op *Operation) *Operation {
	t.Helper()
	require.NoError(t, f.registry.RegisterOperation(context.Background(), op, ""))
	return op
}

// setNumericEffect writes the float64 argument into the target metric.
func setNumericEffect(ctx context.Context, inv *Invocation) (Outcome, error) {
	v := inv.Request.Argument.(float64)
	_, err := inv.Operation.Mdib().Transaction(ctx, func(tx *mdib.Transaction) error {
		s, err := tx.State(inv.Operation.Target())
		if err != nil {
			return err
		}
		ns := s.(*model.NumericMetricState)
		if ns.MetricValue == nil {
			ns.MetricValue = pmtypes.NewNumericMetricValue()
		}
		ns.MetricValue.Value = &v
		ns.MetricValue.MetricQuality.Validity = pmtypes.ValidityValid
		return nil
	})
	if err != nil {
		return OutcomeFinished, err
	}
	inv.Operation.SetCurrentValue(v)
	return OutcomeFinished, nil
}

func states(rs []*OperationInvokedReport) []pmtypes.InvocationState {
	out := make([]pmtypes.InvocationState, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.State)
	}
	return out
}
