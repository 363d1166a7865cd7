package cells

import (
	"fmt"
)

// PrimaryHyperCellStrategy enumerates the cells of a structured grid of any
// dimension. Points and cells are linearized with the first axis fastest,
// the point index of multi-index (i, j, k) is i + ex0*(j + ex1*k).
type PrimaryHyperCellStrategy struct {
	extent       []int
	cellExtent   []int
	pointStrides []int
	cellStrides  []int
	offsets      []int // Point index offset of each cell vertex from its base
	faceAxis     []int
	faceSide     []int
	strategy     *Strategy
	numPoints    int
	numCells     int
}

func NewPrimaryHyperCellStrategy(extent []int) (h *PrimaryHyperCellStrategy, err error) {
	var (
		d = len(extent)
	)
	if d == 0 {
		err = fmt.Errorf("%w: no axes", ErrExtent)
		return
	}
	h = &PrimaryHyperCellStrategy{
		extent:       append([]int{}, extent...),
		cellExtent:   make([]int, d),
		pointStrides: make([]int, d),
		cellStrides:  make([]int, d),
		strategy:     HypercubeStrategy(d),
		numPoints:    1,
		numCells:     1,
	}
	for j, ex := range extent {
		if ex < 2 {
			h, err = nil, fmt.Errorf("%w: axis %d has %d points, need at least 2", ErrExtent, j, ex)
			return
		}
		h.pointStrides[j], h.cellStrides[j] = h.numPoints, h.numCells
		h.cellExtent[j] = ex - 1
		h.numPoints *= ex
		h.numCells *= ex - 1
	}
	base := h.strategy.vertices
	h.offsets = make([]int, len(base))
	for k, v := range base {
		for j, c := range v {
			h.offsets[k] += int(c) * h.pointStrides[j]
		}
	}
	for _, face := range h.strategy.faces {
		axis, side := faceOrientation(base, face)
		h.faceAxis = append(h.faceAxis, axis)
		h.faceSide = append(h.faceSide, side)
	}
	return
}

// faceOrientation finds the axis on which all face vertices share a
// reference coordinate.
func faceOrientation(base [][]float64, face []int) (axis, side int) {
	for j := range base[face[0]] {
		c := base[face[0]][j]
		shared := true
		for _, v := range face[1:] {
			if base[v][j] != c {
				shared = false
				break
			}
		}
		if shared {
			return j, int(c)
		}
	}
	return -1, 0
}

func (h *PrimaryHyperCellStrategy) Dimension() int      { return len(h.extent) }
func (h *PrimaryHyperCellStrategy) Strategy() *Strategy { return h.strategy }
func (h *PrimaryHyperCellStrategy) NumPoints() int      { return h.numPoints }
func (h *PrimaryHyperCellStrategy) NumCells() int       { return h.numCells }
func (h *PrimaryHyperCellStrategy) Extent() []int       { return append([]int{}, h.extent...) }
func (h *PrimaryHyperCellStrategy) CellExtent() []int   { return append([]int{}, h.cellExtent...) }

func (h *PrimaryHyperCellStrategy) PointIndex(multi []int) (i int) {
	for j, m := range multi {
		i += m * h.pointStrides[j]
	}
	return
}

func (h *PrimaryHyperCellStrategy) PointMultiIndex(i int, dst []int) []int {
	return unravel(i, h.extent, dst)
}

func (h *PrimaryHyperCellStrategy) CellIndex(multi []int) (c int) {
	for j, m := range multi {
		c += m * h.cellStrides[j]
	}
	return
}

func (h *PrimaryHyperCellStrategy) CellMultiIndex(c int, dst []int) []int {
	return unravel(c, h.cellExtent, dst)
}

func unravel(i int, extent, dst []int) []int {
	if cap(dst) < len(extent) {
		dst = make([]int, len(extent))
	}
	dst = dst[:len(extent)]
	for j, ex := range extent {
		dst[j] = i % ex
		i /= ex
	}
	return dst
}

// MakeBase returns the base vertex of cell c, its lowest point index.
func (h *PrimaryHyperCellStrategy) MakeBase(c int) int {
	var multi [8]int
	return h.PointIndex(h.CellMultiIndex(c, multi[:0]))
}

// MakeIndex is the inverse of MakeBase, -1 if base is not the base vertex of
// any cell.
func (h *PrimaryHyperCellStrategy) MakeIndex(base int) int {
	if base < 0 || base >= h.numPoints {
		return -1
	}
	var multi [8]int
	m := h.PointMultiIndex(base, multi[:0])
	for j, v := range m {
		if v >= h.cellExtent[j] {
			return -1
		}
	}
	return h.CellIndex(m)
}

func (h *PrimaryHyperCellStrategy) Vertices(c int, dst []int) []int {
	var (
		base = h.MakeBase(c)
	)
	dst = dst[:0]
	for _, off := range h.offsets {
		dst = append(dst, base+off)
	}
	return dst
}

func (h *PrimaryHyperCellStrategy) Cell(c int) Cell {
	return Cell{Type: h.strategy.cellType, Indices: h.Vertices(c, make([]int, 0, len(h.offsets)))}
}

// FaceNeighbors returns the neighbour across each local face, -1 on the
// grid boundary.
func (h *PrimaryHyperCellStrategy) FaceNeighbors(c int, dst []int) []int {
	var (
		multi [8]int
		m     = h.CellMultiIndex(c, multi[:0])
	)
	dst = dst[:0]
	for f, axis := range h.faceAxis {
		step := -1
		if h.faceSide[f] == 1 {
			step = 1
		}
		if n := m[axis] + step; n < 0 || n >= h.cellExtent[axis] {
			dst = append(dst, -1)
		} else {
			dst = append(dst, c+step*h.cellStrides[axis])
		}
	}
	return dst
}

// PointCells returns the cells incident to point p in ascending order.
func (h *PrimaryHyperCellStrategy) PointCells(p int, dst []int) []int {
	var (
		d     = len(h.extent)
		multi [8]int
		m     = h.PointMultiIndex(p, multi[:0])
	)
	dst = dst[:0]
	for corner := 0; corner < 1<<d; corner++ {
		var (
			c     int
			valid = true
		)
		for j := 0; j < d; j++ {
			cj := m[j] - 1 + (corner>>j)&1
			if cj < 0 || cj >= h.cellExtent[j] {
				valid = false
				break
			}
			c += cj * h.cellStrides[j]
		}
		if valid {
			dst = append(dst, c)
		}
	}
	return dst
}
