package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDescription = "../../pkg/mdib/testdata/device.yaml"

func TestDescribeTree(t *testing.T) {
	var out bytes.Buffer
	describeCmd.SetOut(&out)
	require.NoError(t, describeCmd.Flags().Set("description", testDescription))
	t.Cleanup(func() { _ = describeCmd.Flags().Set("description", "") })

	require.NoError(t, runDescribe(describeCmd, nil))
	assert.Contains(t, out.String(), "SequenceID: urn:uuid:6f4c1d1e-3c1a-4c55-9a55-3c5e0b2a0d11")
	assert.Contains(t, out.String(), "numeric.ch0.vmd0 NumericMetric [60 Vld]")

	out.Reset()
	require.NoError(t, runDescribe(describeCmd, []string{"lc0/state/lc0.initial"}))
	assert.Contains(t, out.String(), "LocationContextState")

	assert.Error(t, runDescribe(describeCmd, []string{"nope.vmd0"}))
}

func TestLoadConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "provider.yaml")
	require.NoError(t, os.WriteFile(path, []byte("description: device.yaml\napi:\n  listen: :9090\n"), 0o600))

	flags := runCmd.Flags()
	require.NoError(t, flags.Set("config", path))
	require.NoError(t, flags.Set("listen", "127.0.0.1:8081"))
	require.NoError(t, flags.Set("snapshot", filepath.Join(dir, "mdib.json")))

	cfg, err := loadConfig(runCmd)
	require.NoError(t, err)
	assert.Equal(t, "device.yaml", cfg.Description)
	assert.Equal(t, "127.0.0.1:8081", cfg.API.Listen)
	assert.Equal(t, filepath.Join(dir, "mdib.json"), cfg.Snapshot.File)
	require.NotNil(t, cfg.Snapshot.OnStop)
	assert.True(t, *cfg.Snapshot.OnStop)
}
