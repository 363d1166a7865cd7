package streamline

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/gofield/data"
	"github.com/notargets/gofield/domain"
	"github.com/notargets/gofield/field"
)

func makeEvaluator(t *testing.T, fn func(p, v []float64)) *field.Evaluator {
	g, err := domain.MakeUniformGrid([]int{21, 21}, []float64{-1, -1}, []float64{0.1, 0.1})
	require.NoError(t, err)
	f, err := field.Sample(g, data.Vector(2), data.Float64, func(p []float64, _ float64, dst []float64) {
		fn(p, dst)
	})
	require.NoError(t, err)
	ev, err := f.MakeEvaluator()
	require.NoError(t, err)
	return ev
}

func TestUniformFlow(t *testing.T) {
	ev := makeEvaluator(t, func(_, v []float64) { v[0], v[1] = 1, 0 })
	line, err := Trace(ev, []float64{0.1, 0.5}, Options{Method: Euler, StepSize: 0.1, MaxSteps: 100})
	require.NoError(t, err)
	assert.Equal(t, LeftDomain, line.Reason)
	require.True(t, len(line.Points) > 5)
	for _, p := range line.Points {
		assert.InDelta(t, 0.5, p[1], 1.e-14)
	}
	last := line.Points[len(line.Points)-1]
	assert.True(t, last[0] <= 1+1.e-8 && last[0] > 0.85)
	assert.InDelta(t, last[0]-0.1, line.Length(), 1.e-12)
}

func TestRotation(t *testing.T) {
	ev := makeEvaluator(t, func(p, v []float64) { v[0], v[1] = -p[1], p[0] })
	{ // RK4 keeps the radius over one revolution
		line, err := Trace(ev, []float64{0.5, 0}, Options{Method: RK4, StepSize: 0.01, MaxSteps: 628})
		require.NoError(t, err)
		assert.Equal(t, MaxSteps, line.Reason)
		assert.Equal(t, 629, len(line.Points))
		for _, p := range line.Points {
			assert.InDelta(t, 0.5, floats.Norm(p, 2), 1.e-6)
		}
		assert.InDelta(t, 0.5*6.28, line.Length(), 1.e-3)
	}
	{ // Adaptive Euler shrinks its step to meet the tolerance
		line, err := Trace(ev, []float64{0.5, 0}, Options{Method: Euler, StepSize: 0.01, MaxSteps: 200, AdaptiveTolerance: 1.e-6})
		require.NoError(t, err)
		assert.Equal(t, MaxSteps, line.Reason)
		assert.Less(t, floats.Distance(line.Points[0], line.Points[1], 2), 0.005)
		for _, p := range line.Points {
			assert.InDelta(t, 0.5, floats.Norm(p, 2), 1.e-2)
		}
	}
}

func TestStagnation(t *testing.T) {
	{
		ev := makeEvaluator(t, func(p, v []float64) { v[0], v[1] = p[0], p[1] })
		line, err := Trace(ev, []float64{0, 0}, Options{Method: RK4, StepSize: 0.1, MaxSteps: 10})
		require.NoError(t, err)
		assert.Equal(t, Stagnation, line.Reason)
		assert.Equal(t, 1, len(line.Points))
	}
	{ // A sink is approached until the speed vanishes
		ev := makeEvaluator(t, func(p, v []float64) { v[0], v[1] = -p[0], -p[1] })
		line, err := Trace(ev, []float64{0.5, 0}, Options{Method: RK4, StepSize: 0.1, MaxSteps: 10000})
		require.NoError(t, err)
		assert.Equal(t, Stagnation, line.Reason)
		assert.Less(t, len(line.Points), 10000)
		assert.Less(t, math.Abs(line.Points[len(line.Points)-1][0]), 1.e-11)
	}
}

func TestTraceErrors(t *testing.T) {
	ev := makeEvaluator(t, func(p, v []float64) { v[0], v[1] = 1, 1 })
	_, err := Trace(ev, []float64{0, 0}, Options{StepSize: 0, MaxSteps: 10})
	assert.True(t, errors.Is(err, ErrOptions))
	_, err = Trace(ev, []float64{0, 0}, Options{StepSize: 0.1})
	assert.True(t, errors.Is(err, ErrOptions))
	_, err = Trace(ev, []float64{2, 0}, Options{StepSize: 0.1, MaxSteps: 10})
	assert.True(t, errors.Is(err, domain.ErrOutsideDomain))

	g, err := domain.MakeUniformGrid([]int{3, 3}, []float64{0, 0}, []float64{1, 1})
	require.NoError(t, err)
	f, err := field.Sample(g, data.Scalar, data.Float64, func(p []float64, _ float64, dst []float64) { dst[0] = p[0] })
	require.NoError(t, err)
	sev, err := f.MakeEvaluator()
	require.NoError(t, err)
	_, err = Trace(sev, []float64{1, 1}, Options{StepSize: 0.1, MaxSteps: 10})
	assert.True(t, errors.Is(err, ErrNotVectorField))

	m, err := ParseMethod("rk4")
	require.NoError(t, err)
	assert.Equal(t, RK4, m)
	_, err = ParseMethod("leapfrog")
	assert.True(t, errors.Is(err, ErrOptions))
}
