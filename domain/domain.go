// Package domain builds the spatial domains fields are defined on: point
// sets and grids of every structuring, from uniform to unstructured, and the
// interpolators that locate points in their cells.
package domain

import (
	"fmt"
	"math"

	"github.com/notargets/gofield/cellcomplex"
	"github.com/notargets/gofield/cells"
)

// Structuring orders domains from the most general to the most specific
// point layout.
type Structuring uint8

const (
	Unstructured Structuring = iota
	Curvilinear
	Rectilinear
	Uniform
)

func (s Structuring) String() string {
	switch s {
	case Unstructured:
		return "Unstructured"
	case Curvilinear:
		return "Curvilinear"
	case Rectilinear:
		return "Rectilinear"
	case Uniform:
		return "Uniform"
	}
	return "Invalid"
}

// Part selects whether values live on domain points or on cells.
type Part uint8

const (
	Points Part = iota
	Cells
)

func (p Part) String() string {
	if p == Cells {
		return "Cells"
	}
	return "Points"
}

// Domain is the point set contract shared by every domain. Domains are
// immutable and safe for concurrent use.
type Domain interface {
	NumPoints() int
	// Dimension is the geometric dimension of the points
	Dimension() int
	Point(i int) []float64
	PointInto(i int, dst []float64) []float64
	Bounds() BoundingBox
	Structuring() Structuring
	// Extents is the number of points per axis, nil when unstructured
	Extents() []int
	NearestPoint(p []float64) (index int, distance float64)
	MakeInterpolator(part Part, opts ...InterpolatorOption) (Interpolator, error)
}

// Grid is a Domain with cells.
type Grid interface {
	Domain
	TopologicalDimension() int
	NumCells() int
	Cell(i int) cells.Cell
	Complex() cellcomplex.Complex
	CellBounds(i int) BoundingBox
	// Locate finds the cell holding p, hint is a cell to try first or -1
	Locate(p []float64, hint int, opts cells.NewtonOptions) (Location, error)
}

// Structured grids expose their index arithmetic.
type Structured interface {
	Grid
	PointIndex(multi []int) int
	PointMultiIndex(i int) []int
	CellIndex(multi []int) int
	CellMultiIndex(c int) []int
}

type Location struct {
	Cell  int
	Local []float64
}

type BoundingBox struct {
	Min, Max []float64
}

func NewBoundingBox(dim int) (b BoundingBox) {
	b = BoundingBox{Min: make([]float64, dim), Max: make([]float64, dim)}
	for j := 0; j < dim; j++ {
		b.Min[j], b.Max[j] = math.Inf(1), math.Inf(-1)
	}
	return
}

func (b BoundingBox) Dimension() int { return len(b.Min) }

func (b BoundingBox) Extend(p []float64) {
	for j, c := range p {
		b.Min[j] = math.Min(b.Min[j], c)
		b.Max[j] = math.Max(b.Max[j], c)
	}
}

func (b BoundingBox) Union(o BoundingBox) (r BoundingBox) {
	r = NewBoundingBox(b.Dimension())
	r.Extend(b.Min)
	r.Extend(b.Max)
	r.Extend(o.Min)
	r.Extend(o.Max)
	return
}

// Pad widens the box by pad on every side.
func (b BoundingBox) Pad(pad float64) (r BoundingBox) {
	r = NewBoundingBox(b.Dimension())
	for j := range b.Min {
		r.Min[j], r.Max[j] = b.Min[j]-pad, b.Max[j]+pad
	}
	return
}

func (b BoundingBox) Contains(p []float64, tol float64) bool {
	for j, c := range p {
		if c < b.Min[j]-tol || c > b.Max[j]+tol {
			return false
		}
	}
	return true
}

func (b BoundingBox) Center() (c []float64) {
	c = make([]float64, len(b.Min))
	for j := range c {
		c[j] = 0.5 * (b.Min[j] + b.Max[j])
	}
	return
}

func (b BoundingBox) Diagonal() (d float64) {
	for j := range b.Min {
		d += (b.Max[j] - b.Min[j]) * (b.Max[j] - b.Min[j])
	}
	return math.Sqrt(d)
}

func (b BoundingBox) LongestAxis() (axis int) {
	var best = math.Inf(-1)
	for j := range b.Min {
		if w := b.Max[j] - b.Min[j]; w > best {
			axis, best = j, w
		}
	}
	return
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("[%v, %v]", b.Min, b.Max)
}

func checkPoint(d Domain, p []float64) error {
	if len(p) != d.Dimension() {
		return fmt.Errorf("%w: query of dimension %d in a %d dimensional domain", ErrShapeMismatch, len(p), d.Dimension())
	}
	for _, c := range p {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("%w: query %v", ErrNotFinite, p)
		}
	}
	return nil
}
