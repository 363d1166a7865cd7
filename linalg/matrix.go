// Package linalg is the small dense linear algebra kernel used for cell geometry:
// matrices, LU factorization with partial pivoting, norms and affine transforms.
package linalg

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"
)

// Matrix is a row-major dense matrix. The zero value is not usable, create
// matrices with NewMatrix or one of the Make* constructors.
type Matrix struct {
	M *mat.Dense
}

// NewMatrix allocates an nr x nc matrix, zeroed or backed by dataO[0] in
// row-major order.
func NewMatrix(nr, nc int, dataO ...[]float64) (R Matrix) {
	var m *mat.Dense
	if len(dataO) != 0 {
		if len(dataO[0]) != nr*nc {
			err := fmt.Errorf("mismatch in allocation: NewMatrix nr,nc = %v,%v, len(data[0]) = %v", nr, nc, len(dataO[0]))
			panic(err)
		}
		m = mat.NewDense(nr, nc, dataO[0])
	} else {
		m = mat.NewDense(nr, nc, make([]float64, nr*nc))
	}
	R = Matrix{M: m}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m Matrix) Dims() (r, c int)          { return m.M.Dims() }
func (m Matrix) At(i, j int) float64       { return m.M.At(i, j) }
func (m Matrix) T() mat.Matrix             { return m.M.T() }
func (m Matrix) RawMatrix() blas64.General { return m.M.RawMatrix() }

// Data returns the backing row-major storage, shared with the receiver.
func (m Matrix) Data() []float64 { return m.M.RawMatrix().Data }

func (m Matrix) Set(i, j int, val float64) Matrix {
	m.M.Set(i, j, val)
	return m
}

// Copy is a deep copy with its own storage.
func (m Matrix) Copy() (R Matrix) {
	R = Matrix{M: mat.DenseCopyOf(m.M)}
	return
}

func (m Matrix) Transpose() (R Matrix) {
	R = Matrix{M: mat.DenseCopyOf(m.M.T())}
	return
}

func (m Matrix) Mul(A Matrix) (R Matrix) {
	var (
		nrM, ncM = m.Dims()
		nrA, ncA = A.Dims()
	)
	if ncM != nrA {
		panic(fmt.Errorf("%w: %dx%d times %dx%d", ErrDimensionMismatch, nrM, ncM, nrA, ncA))
	}
	R = NewMatrix(nrM, ncA)
	R.M.Mul(m.M, A.M)
	return
}

func (m Matrix) MulVec(v []float64) (r []float64) {
	var (
		nr, nc = m.Dims()
	)
	if len(v) != nc {
		panic(fmt.Errorf("%w: %dx%d times vector of length %d", ErrDimensionMismatch, nr, nc, len(v)))
	}
	r = make([]float64, nr)
	mat.NewVecDense(nr, r).MulVec(m.M, mat.NewVecDense(nc, v))
	return
}

func (m Matrix) IsSquare() bool {
	nr, nc := m.Dims()
	return nr == nc
}

// IsFinite reports whether every entry is neither NaN nor infinite.
func (m Matrix) IsFinite() bool {
	nr, nc := m.Dims()
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			if v := m.M.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

func (m Matrix) String() string {
	return fmt.Sprintf("%v", mat.Formatted(m.M, mat.Squeeze()))
}
