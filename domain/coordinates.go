package domain

import (
	"github.com/notargets/gofield/cells"
	"github.com/notargets/gofield/data"
)

// coordinates is the point storage behind a domain.
type coordinates interface {
	Len() int
	Dim() int
	At(i int, dst []float64) []float64
}

func grow(dst []float64, n int) []float64 {
	if cap(dst) < n {
		return make([]float64, n)
	}
	return dst[:n]
}

// Explicit points in a vector ValueArray.
type explicitCoords struct {
	values *data.ValueArray
}

func (c explicitCoords) Len() int                          { return c.values.Len() }
func (c explicitCoords) Dim() int                          { return c.values.Components() }
func (c explicitCoords) At(i int, dst []float64) []float64 { return c.values.At(i, dst) }

// Points of a uniform grid, computed from origin and spacing.
type uniformCoords struct {
	hyper   *cells.PrimaryHyperCellStrategy
	origin  []float64
	spacing []float64
}

func (c uniformCoords) Len() int { return c.hyper.NumPoints() }
func (c uniformCoords) Dim() int { return len(c.origin) }

func (c uniformCoords) At(i int, dst []float64) []float64 {
	var multi [8]int
	dst = grow(dst, len(c.origin))
	for j, m := range c.hyper.PointMultiIndex(i, multi[:0]) {
		dst[j] = c.origin[j] + float64(m)*c.spacing[j]
	}
	return dst
}

// Points of a rectilinear grid, the tensor product of its axes.
type rectilinearCoords struct {
	hyper *cells.PrimaryHyperCellStrategy
	axes  [][]float64
}

func (c rectilinearCoords) Len() int { return c.hyper.NumPoints() }
func (c rectilinearCoords) Dim() int { return len(c.axes) }

func (c rectilinearCoords) At(i int, dst []float64) []float64 {
	var multi [8]int
	dst = grow(dst, len(c.axes))
	for j, m := range c.hyper.PointMultiIndex(i, multi[:0]) {
		dst[j] = c.axes[j][m]
	}
	return dst
}

// Points of a sub domain, addressed through the lookup into its parent.
type subCoords struct {
	parent pointReader
	lookup []int
}

func (c subCoords) Len() int { return len(c.lookup) }
func (c subCoords) Dim() int { return c.parent.Dimension() }

func (c subCoords) At(i int, dst []float64) []float64 {
	return c.parent.PointInto(c.lookup[i], dst)
}
