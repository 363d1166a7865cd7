package InputParameters

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gofield/domain"
	"github.com/notargets/gofield/field"
	"github.com/notargets/gofield/streamline"
)

func TestParse(t *testing.T) {
	fileInput := []byte(`
Title: Test Case
Grid:
  Type: Uniform
  Extent: [5, 3]
  Origin: [0, 0]
  Spacing: [0.25, 0.5]
Field:
  Function: linear
  TimeSteps: [0, 1]
Newton:
  Tolerance: 1.e-12
Streamline:
  Method: RK4
  StepSize: 0.05
  MaxSteps: 40
  Seeds:
    - [0.1, 0.1]
Probes:
  - [0.5, 0.5]
  - [1, 1]
ParallelDegree: 2
`)
	var ds Dataset
	require.NoError(t, ds.Parse(fileInput))
	ds.Print()
	assert.Equal(t, "Test Case", ds.Title)
	assert.Equal(t, []int{5, 3}, ds.Grid.Extent)
	assert.Equal(t, 2, len(ds.Probes))
	assert.Equal(t, 2, ds.ParallelDegree)
	require.NoError(t, ds.Validate())
	{ // Newton defaults fill unset entries
		opts := ds.NewtonOptions()
		assert.Equal(t, 1.e-12, opts.Tolerance)
		assert.Equal(t, 20, opts.MaxIterations)
	}
	{ // Grid and field
		d, err := ds.BuildGrid()
		require.NoError(t, err)
		assert.Equal(t, domain.Uniform, d.Structuring())
		assert.Equal(t, 15, d.NumPoints())
		f, err := ds.BuildField(d)
		require.NoError(t, err)
		assert.Equal(t, 2, f.NumTimeSteps())
		ev, err := f.MakeEvaluator(field.WithNewton(ds.NewtonOptions()))
		require.NoError(t, err)
		v, err := ev.Value([]float64{0.6, 0.3}, 0.5, nil)
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float64{1 + 0.6 + 2*0.3}, v, 1.e-12)
	}
	{ // Streamline options
		opts, err := ds.StreamlineOptions()
		require.NoError(t, err)
		assert.Equal(t, streamline.RK4, opts.Method)
		assert.Equal(t, 40, opts.MaxSteps)
	}
}

func TestBuildUnstructured(t *testing.T) {
	fileInput := []byte(`
Grid:
  Type: Unstructured
  Points: [[0, 0], [1, 0], [1, 1], [0, 1]]
  Cells:
    - Type: Triangle
      Indices: [0, 1, 2, 0, 2, 3]
Field:
  Part: Cells
  Values: [1.5, 2.5]
`)
	var ds Dataset
	require.NoError(t, ds.Parse(fileInput))
	d, err := ds.BuildGrid()
	require.NoError(t, err)
	g, ok := d.(domain.Grid)
	require.True(t, ok)
	assert.Equal(t, 2, g.NumCells())
	f, err := ds.BuildField(d)
	require.NoError(t, err)
	ev, err := f.MakeEvaluator()
	require.NoError(t, err)
	v, err := ev.Value([]float64{0.2, 0.8}, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{2.5}, v)
	{ // Sampled cell centers
		ds.Field = FieldSpec{Function: "radial", Part: "Cells"}
		f, err = ds.BuildField(d)
		require.NoError(t, err)
		assert.InDelta(t, 0.5, f.Values().Scalar(0), 1.e-15)
	}
}

func TestValidate(t *testing.T) {
	var ds Dataset
	assert.True(t, errors.Is(ds.Validate(), ErrInput))
	ds.Grid = GridSpec{Type: "Uniform", Extent: []int{2}, Origin: []float64{0}, Spacing: []float64{1}}
	assert.True(t, errors.Is(ds.Validate(), ErrInput))
	ds.Field.Function = "nothing"
	assert.True(t, errors.Is(ds.Validate(), ErrInput))
	ds.Field.Function = "rotation"
	assert.NoError(t, ds.Validate())
	ds.Field.Part = "Edges"
	assert.True(t, errors.Is(ds.Validate(), ErrInput))
	ds.Field.Part = ""
	ds.Grid.Precision = "half"
	assert.True(t, errors.Is(ds.Validate(), ErrInput))
	ds.Grid = GridSpec{Type: "Uniform", Extent: []int{1}, Origin: []float64{0}, Spacing: []float64{1}}
	_, err := ds.BuildGrid()
	assert.True(t, errors.Is(err, domain.ErrBadExtent))
}
