package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdc-protocol/sdc-go/pkg/inspect"
	"github.com/sdc-protocol/sdc-go/pkg/journal"
	"github.com/sdc-protocol/sdc-go/pkg/model"
	"github.com/sdc-protocol/sdc-go/pkg/pmtypes"
	"github.com/sdc-protocol/sdc-go/pkg/sco"
	"github.com/sdc-protocol/sdc-go/pkg/service"
)

const numericOp = "op.set.numeric.ch0.vmd0"

type testAPI struct {
	provider *service.Provider
	journal  *journal.Journal
	handler  http.Handler
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	j, err := journal.Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	metrics := prometheus.NewRegistry()
	cfg := service.DefaultProviderConfig()
	cfg.DescriptionPath = "../mdib/testdata/device.yaml"
	cfg.Sinks = []sco.ReportSink{j}
	cfg.Metrics = metrics
	p, err := service.NewProvider(model.NewRegistry(), cfg)
	require.NoError(t, err)
	require.NoError(t, p.Start(context.Background()))
	t.Cleanup(func() { _ = p.Stop(context.Background()) })

	return &testAPI{
		provider: p,
		journal:  j,
		handler:  NewHandler(p, WithJournal(j), WithGatherer(metrics)),
	}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, req)
	return rr
}

func (a *testAPI) waitJournal(t *testing.T, handle string, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		entries, err := a.journal.ByOperation(context.Background(), handle, 0)
		return err == nil && len(entries) >= n
	}, 2*time.Second, 10*time.Millisecond)
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestGetHealth(t *testing.T) {
	a := newTestAPI(t)
	rr := a.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rr)["status"])
}

func TestGetInfo(t *testing.T) {
	a := newTestAPI(t)
	rr := a.do(t, http.MethodGet, "/info", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	info := decode[InfoResponse](t, rr)
	assert.Equal(t, "urn:uuid:6f4c1d1e-3c1a-4c55-9a55-3c5e0b2a0d11", info.SequenceID)
	assert.Equal(t, 7, info.Operations)
}

func TestGetTree(t *testing.T) {
	a := newTestAPI(t)
	rr := a.do(t, http.MethodGet, "/mdib", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, rr.Body.String(), "numeric.ch0.vmd0 NumericMetric [60 Vld]")

	rr = a.do(t, http.MethodGet, "/mdib?states=false", nil)
	assert.NotContains(t, rr.Body.String(), "[60 Vld]")
}

func TestGetPath(t *testing.T) {
	a := newTestAPI(t)

	rr := a.do(t, http.MethodGet, "/mdib/numeric.ch0.vmd0/state", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), "NumericMetricState")

	rr = a.do(t, http.MethodGet, "/mdib/nope.vmd0", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = a.do(t, http.MethodGet, "/mdib/numeric.ch0.vmd0/state/NoSuchField", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetOperations(t *testing.T) {
	a := newTestAPI(t)
	rr := a.do(t, http.MethodGet, "/operations", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	ops := decode[[]Operation](t, rr)
	require.Len(t, ops, 7)
	byHandle := make(map[string]Operation)
	for _, op := range ops {
		byHandle[op.Handle] = op
	}
	assert.Equal(t, Operation{Handle: numericOp, Kind: "SetValue", Target: "numeric.ch0.vmd0", OperatingMode: "En"}, byHandle[numericOp])
	assert.Equal(t, "Activate", byHandle["op.activate.selftest"].Kind)
}

func TestInvokeSetValue(t *testing.T) {
	a := newTestAPI(t)
	rr := a.do(t, http.MethodPost, "/operations/"+numericOp, InvokeRequest{Argument: 42, Source: "test"})
	require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())

	info := decode[InvocationInfo](t, rr)
	assert.Equal(t, "Wait", info.State)
	assert.NotZero(t, info.TransactionID)

	a.waitJournal(t, numericOp, 3)
	s, ok := a.provider.Mdib().State("numeric.ch0.vmd0")
	require.True(t, ok)
	assert.Equal(t, 42.0, *s.(*model.NumericMetricState).MetricValue.Value)

	rr = a.do(t, http.MethodGet, "/journal/"+numericOp, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	entries := decode[[]JournalEntry](t, rr)
	require.Len(t, entries, 3)
	assert.Equal(t, "Fin", entries[2].State)
	assert.Equal(t, "test", entries[0].Source)

	rr = a.do(t, http.MethodGet, "/journal?operation="+numericOp+"&limit=1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]JournalEntry](t, rr), 1)
}

func TestInvokeSetContextState(t *testing.T) {
	a := newTestAPI(t)
	reg := a.provider.Mdib().Registry()
	st, err := reg.CreateState(model.LocationContextStateType)
	require.NoError(t, err)
	loc := st.(*model.LocationContextState)
	loc.DescriptorHandle = "lc0"
	loc.LocationDetail = &pmtypes.LocationDetail{Facility: "HOSP", Bed: "12"}
	n, err := reg.Materialize(loc, "", nil)
	require.NoError(t, err)

	rr := a.do(t, http.MethodPost, "/operations/op.set.location", InvokeRequest{Argument: []any{n}})
	require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())

	a.waitJournal(t, "op.set.location", 3)
	assert.Len(t, a.provider.Mdib().ContextStates("lc0"), 2)
}

func TestInvokeErrors(t *testing.T) {
	a := newTestAPI(t)

	tests := []struct {
		name   string
		path   string
		body   any
		status int
	}{
		{"nil alert state", "/operations/op.set.alert.lac", InvokeRequest{Argument: []any{nil}}, http.StatusBadRequest},
		{"bad argument", "/operations/" + numericOp, InvokeRequest{Argument: "sixty"}, http.StatusBadRequest},
		{"missing argument", "/operations/" + numericOp, InvokeRequest{}, http.StatusBadRequest},
		{"bad body", "/operations/" + numericOp, "not an object", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := a.do(t, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
			assert.NotEmpty(t, decode[ErrorResponse](t, rr).Error)
		})
	}
}

func TestInvokeUnknownOperation(t *testing.T) {
	a := newTestAPI(t)

	rr := a.do(t, http.MethodPost, "/operations/op.nope", InvokeRequest{Argument: 1})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	info := decode[InvocationInfo](t, rr)
	assert.Equal(t, "Fail", info.State)
	assert.Equal(t, "Inv", info.Error)
	assert.Contains(t, info.ErrorMessage, "op.nope")
	assert.Zero(t, info.TransactionID)
	assert.Equal(t, a.provider.Mdib().SequenceID(), info.SequenceID)
}

func TestJournalErrors(t *testing.T) {
	a := newTestAPI(t)
	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodGet, "/journal?limit=-1", nil).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodGet, "/journal?transaction=x", nil).Code)

	bare := NewHandler(a.provider)
	rr := httptest.NewRecorder()
	bare.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/journal", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	bare.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetMetrics(t *testing.T) {
	a := newTestAPI(t)
	rr := a.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "sdc_sco_queue_depth")
}

func TestNotStarted(t *testing.T) {
	cfg := service.DefaultProviderConfig()
	cfg.DescriptionPath = "../mdib/testdata/device.yaml"
	p, err := service.NewProvider(nil, cfg)
	require.NoError(t, err)

	h := NewHandler(p)
	for _, path := range []string{"/info", "/mdib", "/snapshot", "/operations"} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code, path)
	}
}

func TestClient(t *testing.T) {
	a := newTestAPI(t)
	srv := httptest.NewServer(a.handler)
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL+"/", nil)
	ctx := context.Background()

	info, err := c.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, info.Operations)

	ops, err := c.Operations(ctx)
	require.NoError(t, err)
	assert.Len(t, ops, 7)

	inv, err := c.Invoke(ctx, "op.set.string.ch0.vmd0", "ready", "client")
	require.NoError(t, err)
	assert.Equal(t, "Wait", inv.State)
	a.waitJournal(t, "op.set.string.ch0.vmd0", 3)

	entries, err := c.Journal(ctx, "op.set.string.ch0.vmd0", 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	// The snapshot feeds a remote inspector.
	remote := inspect.NewRemoteInspector(c, model.NewRegistry())
	insp, err := remote.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, info.SequenceID, remote.SequenceID())
	s, ok := insp.Mdib().State("string.ch0.vmd0")
	require.True(t, ok)
	assert.Equal(t, `"ready"`, inspect.Summarize(s))

	inv, err = c.Invoke(ctx, "op.nope", 1, "")
	require.NoError(t, err)
	assert.Equal(t, "Fail", inv.State)
	assert.Equal(t, "Inv", inv.Error)

	_, err = c.Invoke(ctx, "op.set.numeric.ch0.vmd0", "sixty", "")
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadRequest, se.Status)
	assert.Equal(t, "invalid argument", se.Message)
}
