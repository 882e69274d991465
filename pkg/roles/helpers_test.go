package roles

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sdc-protocol/sdc-go/pkg/mdib"
	"github.com/sdc-protocol/sdc-go/pkg/model"
	"github.com/sdc-protocol/sdc-go/pkg/pmtypes"
	"github.com/sdc-protocol/sdc-go/pkg/sco"
)

type recordingSink struct {
	mu      sync.Mutex
	reports []*sco.OperationInvokedReport
}

func (s *recordingSink) NotifyOperation(_ context.Context, r *sco.OperationInvokedReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, r)
	return nil
}

// terminal returns the last report of transaction tr once it is terminal.
func (s *recordingSink) terminal(tr uint64) (*sco.OperationInvokedReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reports {
		if r.TransactionID != tr {
			continue
		}
		switch r.State {
		case pmtypes.InvocationWait, pmtypes.InvocationStarted:
		default:
			return r, true
		}
	}
	return nil, false
}

type device struct {
	mdib     *mdib.Mdib
	sink     *recordingSink
	registry *sco.Registry
	product  *Product
}

func newDevice(t *testing.T, providers ...Provider) *device {
	t.Helper()
	m, err := mdib.LoadDescriptionFile(model.NewRegistry(), "../mdib/testdata/device.yaml", mdib.Config{})
	require.NoError(t, err)
	return startDevice(t, m, providers...)
}

func startDevice(t *testing.T, m *mdib.Mdib, providers ...Provider) *device {
	t.Helper()
	sink := &recordingSink{}
	engine, err := sco.NewEngine(m, sink, sco.DefaultConfig())
	require.NoError(t, err)
	registry, err := sco.NewRegistry(context.Background(), m, engine, sco.DefaultConfig())
	require.NoError(t, err)

	product := NewProduct(registry, Config{}, providers...)
	require.NoError(t, product.Init(context.Background()))
	require.NoError(t, engine.Start())
	t.Cleanup(func() { _ = engine.Stop() })
	return &device{mdib: m, sink: sink, registry: registry, product: product}
}

// invoke runs one request to completion and returns its terminal report.
func (d *device) invoke(t *testing.T, handle string, kind sco.Kind, arg any) *sco.OperationInvokedReport {
	t.Helper()
	info, err := d.registry.HandleRequest(context.Background(), sco.Request{
		OperationHandle: handle,
		Kind:            kind,
		Argument:        arg,
	})
	require.NoError(t, err)
	require.Equal(t, pmtypes.InvocationWait, info.State, info.ErrorMessage)

	var r *sco.OperationInvokedReport
	require.Eventually(t, func() bool {
		var ok bool
		r, ok = d.sink.terminal(info.TransactionID)
		return ok
	}, 2*time.Second, time.Millisecond)
	return r
}

func (d *device) operation(t *testing.T, handle string) *sco.Operation {
	t.Helper()
	op, ok := d.registry.OperationByHandle(handle)
	require.True(t, ok, handle)
	return op
}

func allProviders() []Provider {
	return []Provider{
		NewSetValueProvider(nil),
		NewSetStringProvider(nil),
		NewLocationContextProvider(nil),
		NewEnsembleContextProvider(nil),
		NewStateProvider(nil),
		NewActivateProvider(nil),
	}
}
