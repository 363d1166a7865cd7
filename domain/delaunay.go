package domain

import (
	"fmt"

	"github.com/pradeep-pyro/triangle"
	log "github.com/sirupsen/logrus"

	"github.com/notargets/gofield/cellcomplex"
	"github.com/notargets/gofield/cells"
	"github.com/notargets/gofield/data"
)

// MakeTriangulatedGrid builds the Delaunay triangulation of a 2D point set.
// Triangles are oriented counter clockwise, slivers with zero area are
// dropped.
func MakeTriangulatedGrid(points *data.ValueArray) (g *UnstructuredGrid, err error) {
	var gd int
	if gd, err = checkPoints(points); err != nil {
		return
	}
	if gd != 2 {
		err = fmt.Errorf("%w: triangulation needs 2D points, have %dD", ErrShapeMismatch, gd)
		return
	}
	if points.Len() < 3 {
		err = fmt.Errorf("%w: triangulation needs 3 points, have %d", ErrShapeMismatch, points.Len())
		return
	}
	var (
		pts = make([][2]float64, points.Len())
		buf []float64
	)
	for i := range pts {
		buf = points.At(i, buf)
		pts[i] = [2]float64{buf[0], buf[1]}
	}
	var (
		tris    = triangle.Delaunay(pts)
		indices = make([]int, 0, 3*len(tris))
	)
	for _, tri := range tris {
		a, b, c := int(tri[0]), int(tri[1]), int(tri[2])
		area := orient2D(pts[a], pts[b], pts[c])
		switch {
		case area == 0:
			continue
		case area < 0:
			b, c = c, b
		}
		indices = append(indices, a, b, c)
	}
	if len(indices) == 0 {
		err = fmt.Errorf("%w: points are collinear", ErrNoCells)
		return
	}
	log.WithFields(log.Fields{
		"points":    len(pts),
		"triangles": len(indices) / 3,
		"dropped":   len(tris) - len(indices)/3,
	}).Debug("triangulated point set")
	return MakeGrid(points, []cellcomplex.TypeCount{{Type: cells.Triangle, Count: len(indices) / 3}}, indices)
}

// orient2D is twice the signed area of triangle abc.
func orient2D(a, b, c [2]float64) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (c[0]-a[0])*(b[1]-a[1])
}
