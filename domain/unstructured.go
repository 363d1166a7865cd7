package domain

import (
	"github.com/notargets/gofield/cellcomplex"
	"github.com/notargets/gofield/cells"
)

// PointSet is a domain without cells. Interpolation on a point set is
// nearest neighbour.
type PointSet struct {
	*pointSet
}

func (ps *PointSet) MakeInterpolator(part Part, opts ...InterpolatorOption) (Interpolator, error) {
	return newNearestInterpolator(ps, part)
}

// UnstructuredGrid holds explicit points and cells of any supported type.
type UnstructuredGrid struct {
	*pointSet
	complex *cellcomplex.Unstructured
	locator *cellLocator
}

func newUnstructuredGrid(ps *pointSet, uc *cellcomplex.Unstructured) (g *UnstructuredGrid) {
	g = &UnstructuredGrid{pointSet: ps, complex: uc}
	g.locator = newCellLocator(g)
	return
}

func (g *UnstructuredGrid) TopologicalDimension() int               { return g.complex.Dimension() }
func (g *UnstructuredGrid) NumCells() int                           { return g.complex.NumCells() }
func (g *UnstructuredGrid) Cell(i int) cells.Cell                   { return g.complex.Cell(i) }
func (g *UnstructuredGrid) Complex() cellcomplex.Complex            { return g.complex }
func (g *UnstructuredGrid) Unstructured() *cellcomplex.Unstructured { return g.complex }
func (g *UnstructuredGrid) CellBounds(i int) BoundingBox            { return cellBounds(g.pointSet, g.complex.Cell(i)) }

func (g *UnstructuredGrid) Locate(p []float64, hint int, opts cells.NewtonOptions) (Location, error) {
	return g.locator.locate(p, hint, opts)
}

func (g *UnstructuredGrid) MakeInterpolator(part Part, opts ...InterpolatorOption) (Interpolator, error) {
	return newCellInterpolator(g, part, opts)
}

// SubGrid is a grid over a subset of its parent's points. Points are read
// through the lookup table, cells are numbered locally.
type SubGrid struct {
	*UnstructuredGrid
	parent Domain
	lookup []int
}

func (g *SubGrid) Parent() Domain { return g.parent }

// Lookup maps local point indices to parent point indices.
func (g *SubGrid) Lookup() []int { return g.lookup }

func (g *SubGrid) ParentPoint(i int) int { return g.lookup[i] }

func (g *SubGrid) MakeInterpolator(part Part, opts ...InterpolatorOption) (Interpolator, error) {
	return newCellInterpolator(g, part, opts)
}

// SubPointSet is a point set over a subset of its parent's points.
type SubPointSet struct {
	*PointSet
	parent Domain
	lookup []int
}

func (ps *SubPointSet) Parent() Domain        { return ps.parent }
func (ps *SubPointSet) Lookup() []int         { return ps.lookup }
func (ps *SubPointSet) ParentPoint(i int) int { return ps.lookup[i] }
