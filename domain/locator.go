package domain

import (
	"fmt"
	"math"
	"sync"

	"github.com/notargets/gofield/cells"
)

type pointReader interface {
	Dimension() int
	PointInto(i int, dst []float64) []float64
}

// cellVertices gathers the coordinates of a cell's points into buf.
func cellVertices(d pointReader, cell cells.Cell, buf [][]float64) [][]float64 {
	if cap(buf) < len(cell.Indices) {
		buf = make([][]float64, len(cell.Indices))
	}
	buf = buf[:len(cell.Indices)]
	for k, p := range cell.Indices {
		buf[k] = d.PointInto(p, buf[k])
	}
	return buf
}

// cellBounds holds the whole cell, quadratic cells are widened by their
// bulge beyond the node box.
func cellBounds(d pointReader, cell cells.Cell) (b BoundingBox) {
	var buf []float64
	b = NewBoundingBox(d.Dimension())
	for _, p := range cell.Indices {
		buf = d.PointInto(p, buf)
		b.Extend(buf)
	}
	if cell.Type.IsQuadratic() {
		s := cell.Strategy()
		if bulge := cells.BulgeBound(s, cellVertices(d, cell, nil)); bulge > 0 {
			b = b.Pad(bulge)
		}
	}
	return
}

// cellLocator finds cells of curvilinear and unstructured grids: the hint,
// its face neighbours, then the cell tree.
type cellLocator struct {
	grid     Grid
	treeOnce sync.Once
	tree     *cellTree
}

func newCellLocator(g Grid) *cellLocator {
	return &cellLocator{grid: g}
}

func domainTolerance(d Domain, opts cells.NewtonOptions) float64 {
	return opts.ContainsTolerance * math.Max(1, d.Bounds().Diagonal())
}

func (l *cellLocator) buildTree() {
	l.tree = buildCellTree(l.grid)
}

func (l *cellLocator) tryCell(c int, p []float64, opts cells.NewtonOptions, vbuf *[][]float64) (xi []float64, ok bool) {
	var (
		cell = l.grid.Cell(c)
		s    = cell.Strategy()
		err  error
	)
	*vbuf = cellVertices(l.grid, cell, *vbuf)
	if xi, err = cells.LocalCoordinates(s, *vbuf, p, opts); err != nil {
		return nil, false
	}
	return xi, s.Contains(xi, opts.ContainsTolerance)
}

func (l *cellLocator) locate(p []float64, hint int, opts cells.NewtonOptions) (loc Location, err error) {
	if err = checkPoint(l.grid, p); err != nil {
		return
	}
	var tol = domainTolerance(l.grid, opts)
	l.treeOnce.Do(l.buildTree)
	if reach := l.tree.bounds(); !reach.Contains(p, tol) {
		err = fmt.Errorf("%w: %v not in bounds %v", ErrOutsideDomain, p, reach)
		return
	}
	var (
		vbuf [][]float64
		try  = func(c int) bool {
			if xi, ok := l.tryCell(c, p, opts, &vbuf); ok {
				loc = Location{Cell: c, Local: xi}
				return true
			}
			return false
		}
	)
	if hint >= 0 && hint < l.grid.NumCells() {
		if try(hint) {
			return
		}
		for _, nbr := range l.grid.Complex().FaceNeighbors(hint) {
			if nbr >= 0 && try(nbr) {
				return
			}
		}
	}
	if !l.tree.visit(p, tol, try) {
		err = fmt.Errorf("%w: no cell holds %v", ErrOutsideDomain, p)
	}
	return
}
