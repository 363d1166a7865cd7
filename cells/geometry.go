package cells

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/gofield/linalg"
)

type NewtonOptions struct {
	MaxIterations     int     // Iteration cap for non-affine cells
	Tolerance         float64 // Residual tolerance relative to the cell size
	ContainsTolerance float64 // Widening of the reference cell in membership tests
}

var DefaultNewtonOptions = NewtonOptions{
	MaxIterations:     20,
	Tolerance:         1.e-10,
	ContainsTolerance: 1.e-8,
}

func checkVertices(s *Strategy, vertices [][]float64) (gd int, err error) {
	if len(vertices) != s.NumVertices() {
		err = fmt.Errorf("%w: %s needs %d vertices, have %d",
			ErrVertexCount, s.cellType, s.NumVertices(), len(vertices))
		return
	}
	gd = len(vertices[0])
	if gd < s.dimension {
		err = fmt.Errorf("%w: %dD %s embedded in %d dimensions",
			ErrDegenerate, s.dimension, s.cellType, gd)
	}
	return
}

// MapToWorld returns sum_k w_k(xi) * vertices[k].
func MapToWorld(s *Strategy, vertices [][]float64, xi []float64) (x []float64) {
	var (
		w = make([]float64, s.NumVertices())
	)
	s.Shape(xi, w)
	x = make([]float64, len(vertices[0]))
	for k, v := range vertices {
		floats.AddScaled(x, w[k], v)
	}
	return
}

func newGradient(s *Strategy) (dw [][]float64) {
	dw = make([][]float64, s.NumVertices())
	for k := range dw {
		dw[k] = make([]float64, s.dimension)
	}
	return
}

// Jacobian returns the GD x TD matrix dx/dxi at xi.
func Jacobian(s *Strategy, vertices [][]float64, xi []float64) (J linalg.Matrix) {
	var (
		gd = len(vertices[0])
		td = s.dimension
		dw = newGradient(s)
	)
	s.ShapeGradient(xi, dw)
	J = linalg.NewMatrix(gd, td)
	data := J.Data()
	for k, v := range vertices {
		for g := 0; g < gd; g++ {
			for d := 0; d < td; d++ {
				data[g*td+d] += v[g] * dw[k][d]
			}
		}
	}
	return
}

// leastSquares solves J*step = r, through the normal equations when the cell
// is embedded in a higher dimension.
func leastSquares(J linalg.Matrix, r []float64) (step []float64, err error) {
	var (
		gd, td = J.Dims()
		lup    *linalg.LUPFactorization
	)
	if gd == td {
		if lup, err = linalg.MakeLUPFactorization(J); err != nil {
			return
		}
		return lup.Solve(r)
	}
	JT := J.Transpose()
	if lup, err = linalg.MakeLUPFactorization(JT.Mul(J)); err != nil {
		return
	}
	return lup.Solve(JT.MulVec(r))
}

func cellScale(vertices [][]float64) (scale float64) {
	var (
		lo = append([]float64{}, vertices[0]...)
		hi = append([]float64{}, vertices[0]...)
	)
	for _, v := range vertices[1:] {
		for j, c := range v {
			lo[j] = math.Min(lo[j], c)
			hi[j] = math.Max(hi[j], c)
		}
	}
	return math.Max(1, floats.Distance(lo, hi, 2))
}

// BulgeBound bounds how far a quadratic cell reaches beyond the box of its
// corners: the cell dimension times the largest offset of a mid-edge node
// from the midpoint of its edge. Linear cells give zero.
func BulgeBound(s *Strategy, vertices [][]float64) (b float64) {
	if !s.cellType.IsQuadratic() {
		return
	}
	var (
		nc  = len(s.corners)
		mid = make([]float64, len(vertices[0]))
	)
	for m, e := range s.edges {
		floats.AddTo(mid, vertices[e[0]], vertices[e[1]])
		floats.Scale(0.5, mid)
		b = math.Max(b, floats.Distance(mid, vertices[nc+m], 2))
	}
	return b * float64(s.dimension)
}

// LocalCoordinates inverts the reference to world map for x. Affine cells
// need one linear solve, others iterate Gauss-Newton from the reference cell
// center. The result may lie outside the reference cell, test it with
// Contains.
func LocalCoordinates(s *Strategy, vertices [][]float64, x []float64, opts NewtonOptions) (xi []float64, err error) {
	var gd int
	if gd, err = checkVertices(s, vertices); err != nil {
		return
	}
	if len(x) != gd {
		err = fmt.Errorf("%w: point of dimension %d for cell in %d dimensions",
			linalg.ErrDimensionMismatch, len(x), gd)
		return
	}
	if s.dimension == 0 {
		xi = []float64{}
		if floats.Distance(x, vertices[0], 2) > opts.Tolerance*cellScale(vertices) {
			err = ErrOffCell
		}
		return
	}
	var (
		scale = cellScale(vertices)
		tol   = opts.Tolerance * scale
		r     = make([]float64, gd)
		step  []float64
	)
	xi = s.Center()
	for it := 0; it <= opts.MaxIterations; it++ {
		floats.SubTo(r, x, MapToWorld(s, vertices, xi))
		if floats.Norm(r, 2) <= tol {
			return
		}
		if step, err = leastSquares(Jacobian(s, vertices, xi), r); err != nil {
			err = fmt.Errorf("%w: %s Jacobian: %v", ErrDegenerate, s.cellType, err)
			return
		}
		floats.Add(xi, step)
		if floats.HasNaN(xi) {
			break
		}
		if (s.affine && gd == s.dimension) || floats.Norm(step, 2) <= opts.Tolerance {
			if gd > s.dimension {
				floats.SubTo(r, x, MapToWorld(s, vertices, xi))
				if floats.Norm(r, 2) > opts.ContainsTolerance*scale {
					err = ErrOffCell
				}
			}
			return
		}
	}
	err = fmt.Errorf("%w: %s after %d iterations", ErrNotConverged, s.cellType, opts.MaxIterations)
	return
}

// WorldGradient fills grad[k] with the world space gradient of weight k at
// xi. Cells embedded in a higher dimension get the tangential gradient.
func WorldGradient(s *Strategy, vertices [][]float64, xi []float64, grad [][]float64) (err error) {
	var gd int
	if gd, err = checkVertices(s, vertices); err != nil {
		return
	}
	if s.dimension == 0 {
		for k := range grad {
			for g := range grad[k] {
				grad[k][g] = 0
			}
		}
		return
	}
	var (
		J   = Jacobian(s, vertices, xi)
		dw  = newGradient(s)
		lup *linalg.LUPFactorization
		y   []float64
	)
	s.ShapeGradient(xi, dw)
	if gd == s.dimension {
		if lup, err = linalg.MakeLUPFactorization(J.Transpose()); err != nil {
			return fmt.Errorf("%w: %v", ErrDegenerate, err)
		}
		for k := range dw {
			if y, err = lup.Solve(dw[k]); err != nil {
				return
			}
			copy(grad[k], y)
		}
		return
	}
	if lup, err = linalg.MakeLUPFactorization(J.Transpose().Mul(J)); err != nil {
		return fmt.Errorf("%w: %v", ErrDegenerate, err)
	}
	for k := range dw {
		if y, err = lup.Solve(dw[k]); err != nil {
			return
		}
		copy(grad[k], J.MulVec(y))
	}
	return
}
