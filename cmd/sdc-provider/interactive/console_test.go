package interactive

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdc-protocol/sdc-go/pkg/model"
	"github.com/sdc-protocol/sdc-go/pkg/service"
)

// syncBuffer guards a buffer written by event handler goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

func newTestConsole(t *testing.T) (*Console, *service.Provider, *syncBuffer) {
	t.Helper()
	cfg := service.DefaultProviderConfig()
	cfg.DescriptionPath = "../../../pkg/mdib/testdata/device.yaml"
	p, err := service.NewProvider(model.NewRegistry(), cfg)
	require.NoError(t, err)

	out := &syncBuffer{}
	c := newConsole(out)
	c.Attach(p)
	require.NoError(t, p.Start(context.Background()))
	t.Cleanup(func() { _ = p.Stop(context.Background()) })
	return c, p, out
}

func TestConsoleStatusAndTree(t *testing.T) {
	c, _, out := newTestConsole(t)
	ctx := context.Background()

	assert.False(t, c.Execute(ctx, "status"))
	assert.Contains(t, out.String(), "urn:uuid:6f4c1d1e-3c1a-4c55-9a55-3c5e0b2a0d11")
	assert.Contains(t, out.String(), "Operations:  7")

	out.Reset()
	c.Execute(ctx, "tree")
	assert.Contains(t, out.String(), "numeric.ch0.vmd0 NumericMetric [60 Vld]")

	out.Reset()
	c.Execute(ctx, "ops")
	assert.Contains(t, out.String(), "op.activate.selftest")
}

func TestConsoleRead(t *testing.T) {
	c, _, out := newTestConsole(t)
	ctx := context.Background()

	c.Execute(ctx, "read numeric.ch0.vmd0/state")
	assert.Contains(t, out.String(), "NumericMetricState")

	out.Reset()
	c.Execute(ctx, "read")
	assert.Contains(t, out.String(), "Usage: read <path>")

	out.Reset()
	c.Execute(ctx, "read nope.vmd0")
	assert.Contains(t, out.String(), "Error:")
}

func TestConsoleSetValue(t *testing.T) {
	c, p, out := newTestConsole(t)

	c.Execute(context.Background(), "set op.set.numeric.ch0.vmd0 42")
	assert.Contains(t, out.String(), "op.set.numeric.ch0.vmd0: transaction")

	require.Eventually(t, func() bool {
		s, ok := p.Mdib().State("numeric.ch0.vmd0")
		if !ok {
			return false
		}
		v := s.(*model.NumericMetricState).MetricValue
		return v != nil && v.Value != nil && *v.Value == 42
	}, 2*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(out.String()), []byte("op.set.numeric.ch0.vmd0 Fin"))
	}, 2*time.Second, 10*time.Millisecond)
}

func TestConsoleSetString(t *testing.T) {
	c, p, _ := newTestConsole(t)

	c.Execute(context.Background(), "set op.set.string.ch0.vmd0 ready")
	require.Eventually(t, func() bool {
		s, ok := p.Mdib().State("string.ch0.vmd0")
		if !ok {
			return false
		}
		v := s.(*model.StringMetricState).MetricValue
		return v != nil && v.Value != nil && *v.Value == "ready"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestConsoleOperatingMode(t *testing.T) {
	c, _, out := newTestConsole(t)
	ctx := context.Background()

	c.Execute(ctx, "mode op.set.enum.ch0.vmd0 Dis")
	assert.Contains(t, out.String(), "op.set.enum.ch0.vmd0: Dis")

	out.Reset()
	c.Execute(ctx, "ops")
	assert.Regexp(t, `op\.set\.enum\.ch0\.vmd0\s+\S+\s+\S+\s+Dis`, out.String())

	out.Reset()
	c.Execute(ctx, "mode op.set.enum.ch0.vmd0 Off")
	assert.Contains(t, out.String(), "Invalid operating mode: Off")
}

func TestConsoleErrors(t *testing.T) {
	c, _, out := newTestConsole(t)
	ctx := context.Background()

	tests := []struct {
		line string
		want string
	}{
		{"set op.nope 1", "Unknown operation: op.nope"},
		{"set op.set.numeric.ch0.vmd0", "Usage: set"},
		{"set op.set.numeric.ch0.vmd0 sixty", "Invalid argument"},
		{"activate", "Usage: activate"},
		{"save", "Error:"},
		{"frobnicate", "Unknown command: frobnicate"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			out.Reset()
			assert.False(t, c.Execute(ctx, tt.line))
			assert.Contains(t, out.String(), tt.want)
		})
	}
}

func TestConsoleQuit(t *testing.T) {
	c := newConsole(&syncBuffer{})
	assert.True(t, c.Execute(context.Background(), "quit"))
	assert.True(t, c.Execute(context.Background(), "Q"))
	assert.False(t, c.Execute(context.Background(), "   "))
}

func TestConsoleWithoutProvider(t *testing.T) {
	out := &syncBuffer{}
	c := newConsole(out)
	c.Execute(context.Background(), "tree")
	assert.Contains(t, out.String(), "Provider not started")
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, 42.0, parseValue("42"))
	assert.Equal(t, "ready", parseValue("ready"))
	assert.Equal(t, "two words", parseValue(`"two words"`))
	assert.Equal(t, map[string]any{"a": 1.0}, parseValue(`{"a":1}`))
}
