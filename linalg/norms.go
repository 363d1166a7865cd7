package linalg

import (
	"gonum.org/v1/gonum/lapack"
	"gonum.org/v1/gonum/lapack/lapack64"
)

// Matrix1Norm is the maximum absolute column sum.
func Matrix1Norm(m Matrix) float64 {
	_, nc := m.Dims()
	return lapack64.Lange(lapack.MaxColumnSum, m.RawMatrix(), make([]float64, nc))
}

// MatrixInftyNorm is the maximum absolute row sum.
func MatrixInftyNorm(m Matrix) float64 {
	_, nc := m.Dims()
	return lapack64.Lange(lapack.MaxRowSum, m.RawMatrix(), make([]float64, nc))
}

// FrobeniusNorm is the square root of the sum of squared entries.
func FrobeniusNorm(m Matrix) float64 {
	_, nc := m.Dims()
	return lapack64.Lange(lapack.Frobenius, m.RawMatrix(), make([]float64, nc))
}
