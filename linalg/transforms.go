package linalg

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/num/quat"
)

// MakeIdentity returns the n x n identity.
func MakeIdentity(n int) (R Matrix) {
	R = NewMatrix(n, n)
	for i := 0; i < n; i++ {
		R.M.Set(i, i, 1)
	}
	return
}

func MakeScale(s [3]float64) (R Matrix) {
	R = NewMatrix(3, 3)
	for i := 0; i < 3; i++ {
		R.M.Set(i, i, s[i])
	}
	return
}

func MakeScaleH(s [3]float64) (R Matrix) {
	R = MakeIdentity(4)
	for i := 0; i < 3; i++ {
		R.M.Set(i, i, s[i])
	}
	return
}

func MakeUniformScaleH(s float64) Matrix {
	return MakeScaleH([3]float64{s, s, s})
}

// MakeTranslationH is applied from the left to homogeneous column vectors.
func MakeTranslationH(offset [3]float64) (R Matrix) {
	R = MakeIdentity(4)
	for i := 0; i < 3; i++ {
		R.M.Set(i, 3, offset[i])
	}
	return
}

// MakeRotation is a right handed rotation by angle radians about axis.
func MakeRotation(axis [3]float64, angle float64) (R Matrix, err error) {
	var (
		norm = floats.Norm(axis[:], 2)
	)
	if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		err = fmt.Errorf("%w: axis %v", ErrZeroRotation, axis)
		return
	}
	var (
		x, y, z = axis[0] / norm, axis[1] / norm, axis[2] / norm
		s, c    = math.Sincos(angle)
		t       = 1 - c
	)
	R = NewMatrix(3, 3, []float64{
		t*x*x + c, t*x*y - s*z, t*x*z + s*y,
		t*x*y + s*z, t*y*y + c, t*y*z - s*x,
		t*x*z - s*y, t*y*z + s*x, t*z*z + c,
	})
	return
}

func MakeRotationH(axis [3]float64, angle float64) (R Matrix, err error) {
	var rot Matrix
	if rot, err = MakeRotation(axis, angle); err != nil {
		return
	}
	R = embedH(rot)
	return
}

// MakeRotationQuat normalizes q before building the rotation.
func MakeRotationQuat(q quat.Number) (R Matrix, err error) {
	var (
		norm = quat.Abs(q)
	)
	if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		err = fmt.Errorf("%w: quaternion %v", ErrZeroRotation, q)
		return
	}
	q = quat.Scale(1/norm, q)
	var (
		w, x, y, z = q.Real, q.Imag, q.Jmag, q.Kmag
	)
	R = NewMatrix(3, 3, []float64{
		1 - 2*(y*y+z*z), 2 * (x*y - w*z), 2 * (x*z + w*y),
		2 * (x*y + w*z), 1 - 2*(x*x+z*z), 2 * (y*z - w*x),
		2 * (x*z - w*y), 2 * (y*z + w*x), 1 - 2*(x*x+y*y),
	})
	return
}

func MakeRotationHQuat(q quat.Number) (R Matrix, err error) {
	var rot Matrix
	if rot, err = MakeRotationQuat(q); err != nil {
		return
	}
	R = embedH(rot)
	return
}

func embedH(rot Matrix) (R Matrix) {
	R = MakeIdentity(4)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			R.M.Set(i, j, rot.At(i, j))
		}
	}
	return
}

func Homogenize(v [3]float64) [4]float64 {
	return [4]float64{v[0], v[1], v[2], 1}
}

func Dehomogenize(v [4]float64) (r [3]float64, err error) {
	if v[3] == 0 {
		err = fmt.Errorf("%w: homogeneous coordinate w is zero", ErrNotFinite)
		return
	}
	for i := 0; i < 3; i++ {
		r[i] = v[i] / v[3]
	}
	return
}

// TransformPoint applies a 3x3 linear or a 4x4 homogeneous transform to p.
func TransformPoint(m Matrix, p [3]float64) (r [3]float64, err error) {
	nr, nc := m.Dims()
	switch {
	case nr == 3 && nc == 3:
		copy(r[:], m.MulVec(p[:]))
	case nr == 4 && nc == 4:
		var (
			h  = Homogenize(p)
			hr [4]float64
		)
		copy(hr[:], m.MulVec(h[:]))
		r, err = Dehomogenize(hr)
	default:
		err = fmt.Errorf("%w: transform must be 3x3 or 4x4, have %dx%d", ErrDimensionMismatch, nr, nc)
	}
	return
}
