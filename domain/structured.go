package domain

import (
	"fmt"
	"math"
	"sort"

	"github.com/notargets/gofield/cellcomplex"
	"github.com/notargets/gofield/cells"
)

// structuredGrid holds what uniform, rectilinear and curvilinear grids
// share: the implicit complex and its index arithmetic.
type structuredGrid struct {
	*pointSet
	complex *cellcomplex.Structured
	hyper   *cells.PrimaryHyperCellStrategy
}

func newStructuredGrid(ps *pointSet, sc *cellcomplex.Structured) structuredGrid {
	return structuredGrid{pointSet: ps, complex: sc, hyper: sc.Hyper()}
}

func (g structuredGrid) TopologicalDimension() int    { return g.hyper.Dimension() }
func (g structuredGrid) NumCells() int                { return g.hyper.NumCells() }
func (g structuredGrid) Cell(i int) cells.Cell        { return g.hyper.Cell(i) }
func (g structuredGrid) Complex() cellcomplex.Complex { return g.complex }
func (g structuredGrid) CellBounds(i int) BoundingBox { return cellBounds(g.pointSet, g.hyper.Cell(i)) }
func (g structuredGrid) PointIndex(multi []int) int   { return g.hyper.PointIndex(multi) }
func (g structuredGrid) PointMultiIndex(i int) []int  { return g.hyper.PointMultiIndex(i, nil) }
func (g structuredGrid) CellIndex(multi []int) int    { return g.hyper.CellIndex(multi) }
func (g structuredGrid) CellMultiIndex(c int) []int   { return g.hyper.CellMultiIndex(c, nil) }

// UniformGrid stores only origin, spacing and extent.
type UniformGrid struct {
	structuredGrid
	origin  []float64
	spacing []float64
}

func (g *UniformGrid) Origin() []float64  { return append([]float64{}, g.origin...) }
func (g *UniformGrid) Spacing() []float64 { return append([]float64{}, g.spacing...) }

// Locate is closed form, points on the upper boundary belong to the last
// cell of each axis.
func (g *UniformGrid) Locate(p []float64, _ int, opts cells.NewtonOptions) (loc Location, err error) {
	if err = checkPoint(g, p); err != nil {
		return
	}
	var (
		multi = make([]int, len(p))
		xi    = make([]float64, len(p))
	)
	for j, c := range p {
		var (
			u  = (c - g.origin[j]) / g.spacing[j]
			nc = g.extents[j] - 1
		)
		if u < -opts.ContainsTolerance || u > float64(nc)+opts.ContainsTolerance {
			err = fmt.Errorf("%w: %v not in bounds %v", ErrOutsideDomain, p, g.bounds)
			return
		}
		multi[j] = min(max(int(math.Floor(u)), 0), nc-1)
		xi[j] = u - float64(multi[j])
	}
	loc = Location{Cell: g.hyper.CellIndex(multi), Local: xi}
	return
}

func (g *UniformGrid) MakeInterpolator(part Part, opts ...InterpolatorOption) (Interpolator, error) {
	return newCellInterpolator(g, part, opts)
}

// RectilinearGrid stores one coordinate array per axis.
type RectilinearGrid struct {
	structuredGrid
	axes [][]float64
}

func (g *RectilinearGrid) Axis(j int) []float64 { return append([]float64{}, g.axes[j]...) }

func (g *RectilinearGrid) Locate(p []float64, _ int, opts cells.NewtonOptions) (loc Location, err error) {
	if err = checkPoint(g, p); err != nil {
		return
	}
	var (
		multi = make([]int, len(p))
		xi    = make([]float64, len(p))
	)
	for j, c := range p {
		var (
			axis = g.axes[j]
			n    = len(axis)
			tol  = opts.ContainsTolerance * (axis[n-1] - axis[0])
		)
		if c < axis[0]-tol || c > axis[n-1]+tol {
			err = fmt.Errorf("%w: %v not in bounds %v", ErrOutsideDomain, p, g.bounds)
			return
		}
		i := sort.Search(n, func(k int) bool { return axis[k] > c }) - 1
		multi[j] = min(max(i, 0), n-2)
		lo, hi := axis[multi[j]], axis[multi[j]+1]
		xi[j] = (c - lo) / (hi - lo)
	}
	loc = Location{Cell: g.hyper.CellIndex(multi), Local: xi}
	return
}

func (g *RectilinearGrid) MakeInterpolator(part Part, opts ...InterpolatorOption) (Interpolator, error) {
	return newCellInterpolator(g, part, opts)
}

// CurvilinearGrid has explicit points on a structured topology, its
// topological dimension may be below the point dimension.
type CurvilinearGrid struct {
	structuredGrid
	locator *cellLocator
}

func (g *CurvilinearGrid) Locate(p []float64, hint int, opts cells.NewtonOptions) (Location, error) {
	return g.locator.locate(p, hint, opts)
}

func (g *CurvilinearGrid) MakeInterpolator(part Part, opts ...InterpolatorOption) (Interpolator, error) {
	return newCellInterpolator(g, part, opts)
}
