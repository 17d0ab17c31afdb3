package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.csv")
	require.NoError(t, os.WriteFile(path, []byte("5\n1\n3\n2\n4\n"), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestQuantileCmd(t *testing.T) {
	out, err := execute(t, "quantile", "--input", writeSample(t), "--level", "0.5")
	require.NoError(t, err)
	assert.Contains(t, out, "2.5")
	assert.Contains(t, out, "5 observations")
}

func TestQuantileCmd_OutOfRange(t *testing.T) {
	path := writeSample(t)

	_, err := execute(t, "quantile", "--input", path, "--level", "0.1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "below lowest")

	out, err := execute(t, "quantile", "--input", path, "--level", "0.1", "--extrapolate")
	require.NoError(t, err)
	assert.Contains(t, out, "1")
}

func TestShortfallCmd_JSON(t *testing.T) {
	out, err := execute(t, "shortfall", "--input", writeSample(t), "--level", "0.5", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"value": 1.7`)
	assert.Contains(t, out, `"kind": "expected shortfall"`)
}

func TestMethodsCmd(t *testing.T) {
	out, err := execute(t, "methods")
	require.NoError(t, err)
	assert.Contains(t, out, "sample-interpolation")
	assert.Contains(t, out, "index-above")
	assert.Contains(t, out, "excel-interpolation")
}

func TestQuantileCmd_UnknownMethod(t *testing.T) {
	_, err := execute(t, "quantile", "--input", writeSample(t), "--method", "harrell-davis")
	require.Error(t, err)
}
