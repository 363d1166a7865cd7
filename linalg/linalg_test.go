package linalg

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/num/quat"
)

func nearlyEqual(t *testing.T, A, B Matrix, tol float64) {
	nrA, ncA := A.Dims()
	nrB, ncB := B.Dims()
	require.Equal(t, nrA, nrB)
	require.Equal(t, ncA, ncB)
	for i := 0; i < nrA; i++ {
		for j := 0; j < ncA; j++ {
			assert.InDeltaf(t, A.At(i, j), B.At(i, j), tol, "entry (%d,%d)", i, j)
		}
	}
}

func TestMatrix(t *testing.T) {
	A := NewMatrix(2, 3, []float64{1, 2, 3, 4, 5, 6})
	{ // Products and transposes
		assert.Equal(t, []float64{-2, -2}, A.MulVec([]float64{1, 0, -1}))
		AT := A.Transpose()
		nr, nc := AT.Dims()
		assert.Equal(t, 3, nr)
		assert.Equal(t, 2, nc)
		assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, AT.Data())
		nearlyEqual(t, A.Mul(AT), NewMatrix(2, 2, []float64{14, 32, 32, 77}), 0)
		assert.Panics(t, func() { A.MulVec([]float64{1, 2}) })
	}
	{ // Copies own their storage
		C := A.Copy()
		C.Set(0, 0, 10)
		assert.Equal(t, 1., A.At(0, 0))
		assert.Equal(t, 10., C.At(0, 0))
	}
}

func TestLUPFactorization(t *testing.T) {
	{ // PA = LU round trip
		A := NewMatrix(4, 4, []float64{
			1, 2, 0, 4,
			3, -1, 2, 1,
			-2, 4, 1, 0,
			5, 0, 3, 2,
		})
		lup, err := MakeLUPFactorization(A)
		require.NoError(t, err)
		P, L, U := lup.Perm(), lup.Lower(), lup.Upper()
		nearlyEqual(t, P.Mul(A), L.Mul(U), 1.e-12)
		for i := 0; i < 4; i++ {
			assert.Equal(t, 1., L.At(i, i))
			for j := i + 1; j < 4; j++ {
				assert.Equal(t, 0., L.At(i, j))
				assert.Equal(t, 0., U.At(j, i))
			}
		}
		b := []float64{1, 2, 3, 4}
		x, err := lup.Solve(b)
		require.NoError(t, err)
		assert.True(t, floats.EqualApprox(A.MulVec(x), b, 1.e-12))
		assert.Equal(t, []float64{1, 2, 3, 4}, b)
		nearlyEqual(t, A.Mul(lup.Inverse()), MakeIdentity(4), 1.e-12)
		X, err := lup.SolveMatrix(MakeIdentity(4))
		require.NoError(t, err)
		nearlyEqual(t, X, lup.Inverse(), 1.e-12)
		_, err = lup.Solve([]float64{1, 2})
		assert.True(t, errors.Is(err, ErrDimensionMismatch))
	}
	{ // Determinant, including the sign from pivoting
		A := NewMatrix(2, 2, []float64{0, 1, 1, 0})
		lup, err := MakeLUPFactorization(A)
		require.NoError(t, err)
		assert.InDelta(t, -1., lup.Determinant(), 1.e-15)
		B := NewMatrix(3, 3, []float64{2, 0, 0, 0, 3, 0, 0, 0, 4})
		lup, err = MakeLUPFactorization(B)
		require.NoError(t, err)
		assert.InDelta(t, 24., lup.Determinant(), 1.e-12)
	}
	{ // Singular and degenerate input
		_, err := MakeLUPFactorization(NewMatrix(2, 2, []float64{1, 2, 2, 4}))
		assert.True(t, errors.Is(err, ErrSingular))
		_, err = MakeLUPFactorization(NewMatrix(2, 2))
		assert.True(t, errors.Is(err, ErrSingular))
		_, err = MakeLUPFactorization(NewMatrix(2, 3))
		assert.True(t, errors.Is(err, ErrNotSquare))
		_, err = MakeLUPFactorization(NewMatrix(2, 2, []float64{1, math.NaN(), 0, 1}))
		assert.True(t, errors.Is(err, ErrNotFinite))
	}
}

func TestNorms(t *testing.T) {
	A := NewMatrix(2, 3, []float64{
		1, -7, 2,
		-3, 4, 0,
	})
	assert.InDelta(t, 11., Matrix1Norm(A), 1.e-15)
	assert.InDelta(t, 10., MatrixInftyNorm(A), 1.e-15)
	assert.InDelta(t, math.Sqrt(79), FrobeniusNorm(A), 1.e-14)
	assert.InDelta(t, Matrix1Norm(A), MatrixInftyNorm(A.Transpose()), 1.e-15)
}

func TestTransforms(t *testing.T) {
	{ // Rotation about z maps x onto y
		R, err := MakeRotation([3]float64{0, 0, 2}, math.Pi/2)
		require.NoError(t, err)
		p, err := TransformPoint(R, [3]float64{1, 0, 0})
		require.NoError(t, err)
		assert.True(t, floats.EqualApprox(p[:], []float64{0, 1, 0}, 1.e-15))
	}
	{ // Rotations are orthogonal with unit determinant, and agree with quaternions
		axis := [3]float64{1, 2, -0.5}
		angle := 0.7
		R, err := MakeRotation(axis, angle)
		require.NoError(t, err)
		nearlyEqual(t, R.Mul(R.Transpose()), MakeIdentity(3), 1.e-14)
		lup, err := MakeLUPFactorization(R)
		require.NoError(t, err)
		assert.InDelta(t, 1., lup.Determinant(), 1.e-14)

		n := floats.Norm(axis[:], 2)
		s, c := math.Sincos(angle / 2)
		q := quat.Number{Real: c, Imag: s * axis[0] / n, Jmag: s * axis[1] / n, Kmag: s * axis[2] / n}
		Rq, err := MakeRotationQuat(quat.Scale(3, q))
		require.NoError(t, err)
		nearlyEqual(t, R, Rq, 1.e-14)

		RH, err := MakeRotationH(axis, angle)
		require.NoError(t, err)
		pt := [3]float64{0.3, -1, 2}
		p1, _ := TransformPoint(R, pt)
		p2, _ := TransformPoint(RH, pt)
		assert.True(t, floats.EqualApprox(p1[:], p2[:], 1.e-14))
	}
	{ // Homogeneous scale and translation compose from the left
		M := MakeTranslationH([3]float64{1, 2, 3}).Mul(MakeUniformScaleH(2))
		p, err := TransformPoint(M, [3]float64{1, 1, 1})
		require.NoError(t, err)
		assert.Equal(t, [3]float64{3, 4, 5}, p)
		p, err = TransformPoint(MakeScale([3]float64{1, 2, 3}), [3]float64{1, 1, 1})
		require.NoError(t, err)
		assert.Equal(t, [3]float64{1, 2, 3}, p)
		_, err = TransformPoint(MakeIdentity(2), [3]float64{})
		assert.True(t, errors.Is(err, ErrDimensionMismatch))
		_, err = Dehomogenize([4]float64{1, 1, 1, 0})
		assert.Error(t, err)
	}
	{ // Zero axis
		_, err := MakeRotation([3]float64{}, 1)
		assert.True(t, errors.Is(err, ErrZeroRotation))
		_, err = MakeRotationHQuat(quat.Number{})
		assert.True(t, errors.Is(err, ErrZeroRotation))
	}
}
