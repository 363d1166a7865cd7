package domain

import (
	"fmt"
	"math"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/notargets/gofield/cellcomplex"
	"github.com/notargets/gofield/cells"
	"github.com/notargets/gofield/data"
)

// Every factory validates its input completely and returns either a usable
// domain or an error, never a partial object.

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func newStructured(extent []int) (sc *cellcomplex.Structured, err error) {
	if sc, err = cellcomplex.NewStructured(extent); err != nil {
		err = fmt.Errorf("%w: %v", ErrBadExtent, err)
	}
	return
}

// MakeUniformGrid builds an axis aligned grid of prod(extent) points from
// origin with the given spacing per axis.
func MakeUniformGrid(extent []int, origin, spacing []float64) (g *UniformGrid, err error) {
	var (
		d  = len(extent)
		sc *cellcomplex.Structured
	)
	if len(origin) != d || len(spacing) != d {
		err = fmt.Errorf("%w: extent %v, origin %v, spacing %v", ErrShapeMismatch, extent, origin, spacing)
		return
	}
	for j := 0; j < d; j++ {
		if !isFinite(origin[j]) {
			err = fmt.Errorf("%w: origin %v", ErrNotFinite, origin)
			return
		}
		if !isFinite(spacing[j]) || spacing[j] <= 0 {
			err = fmt.Errorf("%w: spacing %v must be positive", ErrBadSpacing, spacing)
			return
		}
	}
	if sc, err = newStructured(extent); err != nil {
		return
	}
	var (
		coords = uniformCoords{
			hyper:   sc.Hyper(),
			origin:  append([]float64{}, origin...),
			spacing: append([]float64{}, spacing...),
		}
		bounds = NewBoundingBox(d)
		upper  = make([]float64, d)
	)
	for j := 0; j < d; j++ {
		upper[j] = origin[j] + float64(extent[j]-1)*spacing[j]
	}
	bounds.Extend(origin)
	bounds.Extend(upper)
	g = &UniformGrid{
		structuredGrid: newStructuredGrid(newPointSetWithBounds(coords, Uniform, append([]int{}, extent...), bounds), sc),
		origin:         coords.origin,
		spacing:        coords.spacing,
	}
	log.WithFields(log.Fields{"extent": extent, "cells": g.NumCells()}).Debug("created uniform grid")
	return
}

func MakeUniformPointSet(extent []int, origin, spacing []float64) (ps *PointSet, err error) {
	var g *UniformGrid
	if g, err = MakeUniformGrid(extent, origin, spacing); err != nil {
		return
	}
	ps = &PointSet{pointSet: g.pointSet}
	return
}

func MakeRectilinearGrid(axes [][]float64) (g *RectilinearGrid, err error) {
	var (
		d      = len(axes)
		extent = make([]int, d)
		copied = make([][]float64, d)
		sc     *cellcomplex.Structured
	)
	if d == 0 {
		err = fmt.Errorf("%w: no axes", ErrBadExtent)
		return
	}
	for j, axis := range axes {
		if len(axis) < 2 {
			err = fmt.Errorf("%w: axis %d has %d values, need at least 2", ErrBadExtent, j, len(axis))
			return
		}
		for i, v := range axis {
			if !isFinite(v) {
				err = fmt.Errorf("%w: axis %d value %d", ErrNotFinite, j, i)
				return
			}
			if i > 0 && v <= axis[i-1] {
				err = fmt.Errorf("%w: axis %d at %d: %v <= %v", ErrNotMonotonic, j, i, v, axis[i-1])
				return
			}
		}
		extent[j] = len(axis)
		copied[j] = append([]float64{}, axis...)
	}
	if sc, err = newStructured(extent); err != nil {
		return
	}
	bounds := NewBoundingBox(d)
	for j, axis := range copied {
		bounds.Min[j], bounds.Max[j] = axis[0], axis[len(axis)-1]
	}
	coords := rectilinearCoords{hyper: sc.Hyper(), axes: copied}
	g = &RectilinearGrid{
		structuredGrid: newStructuredGrid(newPointSetWithBounds(coords, Rectilinear, extent, bounds), sc),
		axes:           copied,
	}
	log.WithFields(log.Fields{"extent": extent, "cells": g.NumCells()}).Debug("created rectilinear grid")
	return
}

func MakeRectilinearPointSet(axes [][]float64) (ps *PointSet, err error) {
	var g *RectilinearGrid
	if g, err = MakeRectilinearGrid(axes); err != nil {
		return
	}
	ps = &PointSet{pointSet: g.pointSet}
	return
}

func checkPoints(points *data.ValueArray) (dim int, err error) {
	if points == nil || points.Len() == 0 {
		err = fmt.Errorf("%w: no points", ErrShapeMismatch)
		return
	}
	if kind := points.Layout().Kind; kind == data.TensorKind {
		err = fmt.Errorf("%w: points need a vector layout, have %v", ErrShapeMismatch, points.Layout())
		return
	}
	dim = points.Components()
	return
}

func MakeCurvilinearGrid(extent []int, points *data.ValueArray) (g *CurvilinearGrid, err error) {
	var (
		gd int
		sc *cellcomplex.Structured
	)
	if gd, err = checkPoints(points); err != nil {
		return
	}
	if gd < len(extent) {
		err = fmt.Errorf("%w: %d dimensional points for a %d dimensional topology", ErrShapeMismatch, gd, len(extent))
		return
	}
	if sc, err = newStructured(extent); err != nil {
		return
	}
	if sc.NumPoints() != points.Len() {
		err = fmt.Errorf("%w: extent %v needs %d points, have %d", ErrShapeMismatch, extent, sc.NumPoints(), points.Len())
		return
	}
	g = &CurvilinearGrid{
		structuredGrid: newStructuredGrid(newPointSet(explicitCoords{values: points}, Curvilinear, append([]int{}, extent...)), sc),
	}
	g.locator = newCellLocator(g)
	log.WithFields(log.Fields{"extent": extent, "cells": g.NumCells()}).Debug("created curvilinear grid")
	return
}

func MakeCurvilinearPointSet(extent []int, points *data.ValueArray) (ps *PointSet, err error) {
	var g *CurvilinearGrid
	if g, err = MakeCurvilinearGrid(extent, points); err != nil {
		return
	}
	ps = &PointSet{pointSet: g.pointSet}
	return
}

func MakePointSet(points *data.ValueArray) (ps *PointSet, err error) {
	if _, err = checkPoints(points); err != nil {
		return
	}
	ps = &PointSet{pointSet: newPointSet(explicitCoords{values: points}, Unstructured, nil)}
	return
}

// MakeGrid builds an unstructured grid from a flattened index buffer grouped
// by cell type in counts order.
func MakeGrid(points *data.ValueArray, counts []cellcomplex.TypeCount, indices []int) (g *UnstructuredGrid, err error) {
	if _, err = checkPoints(points); err != nil {
		return
	}
	var uc *cellcomplex.Unstructured
	if uc, err = cellcomplex.New(points.Len(), counts, indices); err != nil {
		return
	}
	return MakeGridFromComplex(points, uc)
}

func MakeGridFromComplex(points *data.ValueArray, uc *cellcomplex.Unstructured) (g *UnstructuredGrid, err error) {
	var gd int
	if gd, err = checkPoints(points); err != nil {
		return
	}
	if err = checkComplex(gd, points.Len(), uc); err != nil {
		return
	}
	g = newUnstructuredGrid(newPointSet(explicitCoords{values: points}, Unstructured, nil), uc)
	log.WithFields(log.Fields{"points": g.NumPoints(), "cells": g.NumCells()}).Debug("created unstructured grid")
	return
}

func checkComplex(gd, numPoints int, uc *cellcomplex.Unstructured) error {
	if uc.NumPoints() != numPoints {
		return fmt.Errorf("%w: complex addresses %d points, have %d", ErrShapeMismatch, uc.NumPoints(), numPoints)
	}
	if uc.Dimension() > gd {
		return fmt.Errorf("%w: %dD cells in %d dimensions", ErrShapeMismatch, uc.Dimension(), gd)
	}
	return nil
}

// MakeLineSet builds a grid of line cells, one per consecutive point pair
// of each polyline.
func MakeLineSet(points *data.ValueArray, polylines [][]int) (g *UnstructuredGrid, err error) {
	var indices []int
	for i, pl := range polylines {
		if len(pl) < 2 {
			err = fmt.Errorf("%w: polyline %d has %d points", cellcomplex.ErrInvalidCount, i, len(pl))
			return
		}
		for k := 1; k < len(pl); k++ {
			indices = append(indices, pl[k-1], pl[k])
		}
	}
	return MakeGrid(points, []cellcomplex.TypeCount{{Type: cells.Line, Count: len(indices) / 2}}, indices)
}

// MakeSubGrid builds a grid over the parent points referenced by indices.
// Used points are compacted in ascending parent order.
func MakeSubGrid(parent Domain, counts []cellcomplex.TypeCount, indices []int) (g *SubGrid, err error) {
	var (
		np     = parent.NumPoints()
		local  = make(map[int]int)
		lookup []int
	)
	for i, p := range indices {
		if p < 0 || p >= np {
			err = fmt.Errorf("%w: index %d is %d, parent has %d points", ErrIndexOutOfRange, i, p, np)
			return
		}
		if _, ok := local[p]; !ok {
			local[p] = -1
			lookup = append(lookup, p)
		}
	}
	sort.Ints(lookup)
	for i, p := range lookup {
		local[p] = i
	}
	localIndices := make([]int, len(indices))
	for i, p := range indices {
		localIndices[i] = local[p]
	}
	if len(lookup) == 0 {
		err = fmt.Errorf("%w: no cells", cellcomplex.ErrInvalidCount)
		return
	}
	var uc *cellcomplex.Unstructured
	if uc, err = cellcomplex.New(len(lookup), counts, localIndices); err != nil {
		return
	}
	if err = checkComplex(parent.Dimension(), len(lookup), uc); err != nil {
		return
	}
	ps := newPointSet(subCoords{parent: parent, lookup: lookup}, Unstructured, nil)
	g = &SubGrid{
		UnstructuredGrid: newUnstructuredGrid(ps, uc),
		parent:           parent,
		lookup:           lookup,
	}
	log.WithFields(log.Fields{"points": len(lookup), "cells": g.NumCells(), "parentPoints": np}).Debug("created sub grid")
	return
}

// MakeSubPointSet selects parent points in the given order.
func MakeSubPointSet(parent Domain, indices []int) (ps *SubPointSet, err error) {
	var np = parent.NumPoints()
	if len(indices) == 0 {
		err = fmt.Errorf("%w: no points", ErrShapeMismatch)
		return
	}
	for i, p := range indices {
		if p < 0 || p >= np {
			err = fmt.Errorf("%w: index %d is %d, parent has %d points", ErrIndexOutOfRange, i, p, np)
			return
		}
	}
	lookup := append([]int{}, indices...)
	ps = &SubPointSet{
		PointSet: &PointSet{pointSet: newPointSet(subCoords{parent: parent, lookup: lookup}, Unstructured, nil)},
		parent:   parent,
		lookup:   lookup,
	}
	return
}
