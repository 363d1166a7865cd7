package domain

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// pointSet carries the point storage shared by every domain type, the
// nearest point tree is built on first use.
type pointSet struct {
	coords      coordinates
	structuring Structuring
	extents     []int
	bounds      BoundingBox

	kdOnce sync.Once
	kd     *kdtree.Tree
}

func newPointSet(coords coordinates, structuring Structuring, extents []int) *pointSet {
	var (
		bounds = NewBoundingBox(coords.Dim())
		buf    []float64
	)
	for i := 0; i < coords.Len(); i++ {
		buf = coords.At(i, buf)
		bounds.Extend(buf)
	}
	return newPointSetWithBounds(coords, structuring, extents, bounds)
}

func newPointSetWithBounds(coords coordinates, structuring Structuring, extents []int, bounds BoundingBox) *pointSet {
	return &pointSet{
		coords:      coords,
		structuring: structuring,
		extents:     extents,
		bounds:      bounds,
	}
}

func (ps *pointSet) NumPoints() int           { return ps.coords.Len() }
func (ps *pointSet) Dimension() int           { return ps.coords.Dim() }
func (ps *pointSet) Structuring() Structuring { return ps.structuring }
func (ps *pointSet) Bounds() BoundingBox      { return ps.bounds }

func (ps *pointSet) Extents() []int {
	if ps.extents == nil {
		return nil
	}
	return append([]int{}, ps.extents...)
}

func (ps *pointSet) Point(i int) []float64 { return ps.coords.At(i, nil) }

func (ps *pointSet) PointInto(i int, dst []float64) []float64 { return ps.coords.At(i, dst) }

// The kd-tree stores point references. kdPlane follows the gonum Plane
// pattern to partition along one dimension.
type kdPoint struct {
	coords []float64
	index  int
}

func (p kdPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	return p.coords[d] - c.(kdPoint).coords[d]
}

func (p kdPoint) Dims() int { return len(p.coords) }

func (p kdPoint) Distance(c kdtree.Comparable) (sum float64) {
	q := c.(kdPoint)
	for j, v := range p.coords {
		d := v - q.coords[j]
		sum += d * d
	}
	return
}

type kdPoints []kdPoint

func (p kdPoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p kdPoints) Len() int                              { return len(p) }
func (p kdPoints) Pivot(d kdtree.Dim) int                { return kdPlane{kdPoints: p, Dim: d}.Pivot() }
func (p kdPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

type kdPlane struct {
	kdPoints
	kdtree.Dim
}

func (p kdPlane) Less(i, j int) bool {
	return p.kdPoints[i].coords[p.Dim] < p.kdPoints[j].coords[p.Dim]
}
func (p kdPlane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p kdPlane) Slice(start, end int) kdtree.SortSlicer {
	p.kdPoints = p.kdPoints[start:end]
	return p
}
func (p kdPlane) Swap(i, j int) {
	p.kdPoints[i], p.kdPoints[j] = p.kdPoints[j], p.kdPoints[i]
}

func (ps *pointSet) buildKDTree() {
	pts := make(kdPoints, ps.NumPoints())
	for i := range pts {
		pts[i] = kdPoint{coords: ps.Point(i), index: i}
	}
	ps.kd = kdtree.New(pts, false)
}

// NearestPoint returns the index of the closest domain point and its
// distance.
func (ps *pointSet) NearestPoint(p []float64) (index int, distance float64) {
	ps.kdOnce.Do(ps.buildKDTree)
	nearest, d2 := ps.kd.Nearest(kdPoint{coords: p})
	return nearest.(kdPoint).index, math.Sqrt(d2)
}
