package data

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueArray(t *testing.T) {
	{ // Vector layout, both precisions
		for _, prec := range []Precision{Float64, Float32} {
			va, err := MakeValueArray([]float64{1, 2, 3, 4, 5, 6}, Vector(3), prec)
			require.NoError(t, err)
			assert.Equal(t, 2, va.Len())
			assert.Equal(t, prec, va.Precision())
			assert.Equal(t, []float64{4, 5, 6}, va.At(1, nil))
			assert.Equal(t, 4., va.Scalar(1))
			dst := make([]float64, 3)
			va.AddScaledTo(dst, 0, 2)
			va.AddScaledTo(dst, 1, -1)
			assert.Equal(t, []float64{-2, -1, 0}, dst)
			assert.Equal(t, 6*prec.Size(), va.Bytes())
		}
	}
	{ // Views share storage and compose
		va, err := MakeData(10, Scalar, Float64, func(i int, dst []float64) { dst[0] = float64(i * i) })
		require.NoError(t, err)
		sl := va.Slice(5, 10)
		assert.Equal(t, 5, sl.Len())
		assert.Equal(t, 25., sl.Scalar(0))
		sub, err := sl.Subset([]int{4, 0})
		require.NoError(t, err)
		assert.Equal(t, []float64{81, 25}, sub.Float64s())
		sub2, err := va.Subset([]int{9, 8, 7, 3})
		require.NoError(t, err)
		assert.Equal(t, []float64{64, 49}, sub2.Slice(1, 3).Float64s())
		nested, err := sub2.Subset([]int{3})
		require.NoError(t, err)
		assert.Equal(t, 9., nested.Scalar(0))
		_, err = va.Subset([]int{10})
		assert.True(t, errors.Is(err, ErrIndex))
		assert.Panics(t, func() { va.Scalar(10) })
	}
	{ // Tensor layout and validation
		la := Tensor(2)
		assert.Equal(t, 4, la.Components())
		assert.Equal(t, "Tensor(2x2)", la.String())
		_, err := MakeValueArray([]float64{1, 2, 3}, la, Float64)
		assert.True(t, errors.Is(err, ErrShape))
		_, err = MakeValueArray([]float64{1, math.Inf(1)}, Scalar, Float64)
		assert.True(t, errors.Is(err, ErrNotFinite))
		_, err = MakeValueArray([]float64{1}, Vector(0), Float64)
		assert.True(t, errors.Is(err, ErrLayout))
		_, err = MakeVectors([][]float64{{1, 2}, {3}}, Float64)
		assert.True(t, errors.Is(err, ErrShape))
		p, err := ParsePrecision("float32")
		require.NoError(t, err)
		assert.Equal(t, Float32, p)
		assert.Equal(t, "FLOAT32", p.String())
	}
	{ // Values finite in float64 but not in float32
		_, err := MakeValueArray([]float64{1, 1.e39}, Scalar, Float32)
		assert.True(t, errors.Is(err, ErrNotFinite))
		_, err = MakeVectors([][]float64{{0, 0}, {0, -1.e39}}, Float32)
		assert.True(t, errors.Is(err, ErrNotFinite))
		va, err := MakeValueArray([]float64{1, 1.e39}, Scalar, Float64)
		require.NoError(t, err)
		assert.Equal(t, 1.e39, va.Scalar(1))
		va, err = MakeValueArray([]float64{math.MaxFloat32}, Scalar, Float32)
		require.NoError(t, err)
		assert.False(t, math.IsInf(va.Scalar(0), 0))
	}
}
