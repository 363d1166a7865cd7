package linalg

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/lapack"
	"gonum.org/v1/gonum/lapack/lapack64"
)

// SingularityThreshold is the reciprocal condition number below which a
// matrix is rejected as numerically singular.
const SingularityThreshold = 1.e-14

// LUPFactorization holds PA = LU for a square matrix A. A value returned by
// MakeLUPFactorization is always usable, singular input is rejected at
// construction.
type LUPFactorization struct {
	lu    Matrix // Packed L (unit diagonal, below) and U (on and above diagonal)
	ipiv  []int  // Row i was interchanged with row ipiv[i]
	rcond float64
}

// MakeLUPFactorization factors a private copy of A with partial pivoting,
// rejecting non-finite and numerically singular matrices.
func MakeLUPFactorization(A Matrix) (lup *LUPFactorization, err error) {
	var (
		nr, nc = A.Dims()
	)
	if nr != nc {
		err = fmt.Errorf("%w: LUP factorization of a %dx%d matrix", ErrNotSquare, nr, nc)
		return
	}
	if !A.IsFinite() {
		err = fmt.Errorf("%w: LUP factorization input", ErrNotFinite)
		return
	}
	var (
		lu    = A.Copy()
		a     = lu.RawMatrix()
		ipiv  = make([]int, nr)
		anorm = lapack64.Lange(lapack.MaxColumnSum, a, make([]float64, nc))
	)
	if ok := lapack64.Getrf(a, ipiv); !ok {
		err = fmt.Errorf("%w: zero pivot", ErrSingular)
		return
	}
	rcond := lapack64.Gecon(lapack.MaxColumnSum, a, anorm, make([]float64, 4*nr), make([]int, nr))
	if rcond < SingularityThreshold {
		err = fmt.Errorf("%w: reciprocal condition number %g", ErrSingular, rcond)
		return
	}
	lup = &LUPFactorization{
		lu:    lu,
		ipiv:  ipiv,
		rcond: rcond,
	}
	return
}

func (lup *LUPFactorization) N() int { return len(lup.ipiv) }

// RCond is the estimated reciprocal condition number in the 1-norm.
func (lup *LUPFactorization) RCond() float64 { return lup.rcond }

func (lup *LUPFactorization) Lower() (L Matrix) {
	n := lup.N()
	L = NewMatrix(n, n)
	for i := 0; i < n; i++ {
		L.M.Set(i, i, 1)
		for j := 0; j < i; j++ {
			L.M.Set(i, j, lup.lu.At(i, j))
		}
	}
	return
}

func (lup *LUPFactorization) Upper() (U Matrix) {
	n := lup.N()
	U = NewMatrix(n, n)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			U.M.Set(i, j, lup.lu.At(i, j))
		}
	}
	return
}

// Perm returns the permutation matrix P with PA = LU.
func (lup *LUPFactorization) Perm() (P Matrix) {
	var (
		n    = lup.N()
		rows = make([]int, n)
	)
	for i := range rows {
		rows[i] = i
	}
	for i, ip := range lup.ipiv {
		rows[i], rows[ip] = rows[ip], rows[i]
	}
	P = NewMatrix(n, n)
	for i, r := range rows {
		P.M.Set(i, r, 1)
	}
	return
}

// Determinant is the product of the U diagonal, signed by the pivot parity.
func (lup *LUPFactorization) Determinant() (det float64) {
	det = 1
	for i, ip := range lup.ipiv {
		det *= lup.lu.At(i, i)
		if ip != i {
			det = -det
		}
	}
	return
}

// Solve returns x with Ax = b, b is not modified.
func (lup *LUPFactorization) Solve(b []float64) (x []float64, err error) {
	n := lup.N()
	if len(b) != n {
		err = fmt.Errorf("%w: right hand side of length %d for %dx%d system", ErrDimensionMismatch, len(b), n, n)
		return
	}
	x = make([]float64, n)
	copy(x, b)
	lapack64.Getrs(blas.NoTrans, lup.lu.RawMatrix(),
		blas64.General{Rows: n, Cols: 1, Stride: 1, Data: x}, lup.ipiv)
	return
}

// SolveMatrix returns X with AX = B for every column of B.
func (lup *LUPFactorization) SolveMatrix(B Matrix) (X Matrix, err error) {
	var (
		n      = lup.N()
		nr, nc = B.Dims()
	)
	if nr != n {
		err = fmt.Errorf("%w: right hand side is %dx%d for %dx%d system", ErrDimensionMismatch, nr, nc, n, n)
		return
	}
	X = B.Copy()
	lapack64.Getrs(blas.NoTrans, lup.lu.RawMatrix(), X.RawMatrix(), lup.ipiv)
	return
}

// Inverse forms A^-1 from the packed factors.
func (lup *LUPFactorization) Inverse() (R Matrix) {
	var (
		n    = lup.N()
		work = make([]float64, n*n)
	)
	R = lup.lu.Copy()
	if ok := lapack64.Getri(R.RawMatrix(), lup.ipiv, work, len(work)); !ok {
		// Unreachable for a factorization that passed the condition check
		panic(fmt.Errorf("unable to invert, matrix is singular"))
	}
	return
}
