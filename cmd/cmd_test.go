package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gofield/InputParameters"
)

var fileInput = []byte(`
Title: Rotation
Grid:
  Type: Uniform
  Extent: [11, 11]
  Origin: [-1, -1]
  Spacing: [0.2, 0.2]
Field:
  Function: rotation
Streamline:
  Method: RK4
  StepSize: 0.05
  MaxSteps: 20
  Seeds: [[0.5, 0]]
Probes:
  - [0.5, 0.25]
  - [3, 3]
`)

func parse(t *testing.T) *InputParameters.Dataset {
	ds := &InputParameters.Dataset{}
	require.NoError(t, ds.Parse(fileInput))
	require.NoError(t, ds.Validate())
	return ds
}

func TestRunInfo(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runInfo(&out, parse(t)))
	assert.Contains(t, out.String(), "Structuring: Uniform")
	assert.Contains(t, out.String(), "Points: 121")
	assert.Contains(t, out.String(), "Cells: 100")
}

func TestRunProbe(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runProbe(&out, parse(t), 0, true))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Equal(t, 2, len(lines))
	assert.Contains(t, lines[0], "-0.25000")
	assert.Contains(t, lines[0], "grad")
	assert.Contains(t, lines[1], "outside the domain")
}

func TestRunStreamlines(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runStreamlines(&out, parse(t), true))
	assert.Contains(t, out.String(), "Line 0: 21 points")
	assert.Contains(t, out.String(), "MaxSteps")
}

func TestRunThreshold(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runThreshold(&out, parse(t), 0, 0.5))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, "33 of 121 points above 0.5", lines[0])
	assert.Equal(t, 34, len(lines))
	assert.True(t, strings.HasPrefix(lines[1], "0: "))
}

func TestLoadDataset(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "dataset.yaml")
	require.NoError(t, os.WriteFile(fileName, fileInput, 0o644))
	viper.Set("inputFile", fileName)
	viper.Set("parallel", 3)
	defer viper.Reset()
	ds, err := loadDataset()
	require.NoError(t, err)
	assert.Equal(t, "Rotation", ds.Title)
	assert.Equal(t, 3, ds.ParallelDegree)

	viper.Set("newtonIterations", 7)
	viper.Set("newtonTolerance", 1.e-9)
	viper.Set("containsTolerance", 1.e-6)
	ds, err = loadDataset()
	require.NoError(t, err)
	opts := ds.NewtonOptions()
	assert.Equal(t, 7, opts.MaxIterations)
	assert.Equal(t, 1.e-9, opts.Tolerance)
	assert.Equal(t, 1.e-6, opts.ContainsTolerance)

	viper.Set("inputFile", "")
	_, err = loadDataset()
	assert.Error(t, err)
}
