// Package cellcomplex stores cell topology and answers adjacency queries,
// explicitly for unstructured cells and arithmetically for structured grids.
package cellcomplex

import (
	"errors"

	"github.com/notargets/gofield/cells"
)

var (
	ErrIndexOutOfRange = errors.New("point index out of range")
	ErrShapeMismatch   = errors.New("index buffer does not match cell counts")
	ErrInvalidCount    = errors.New("invalid cell or point count")
	ErrDegenerateCell  = errors.New("cell repeats a vertex")
	ErrUnsupportedType = errors.New("cell type not supported in an unstructured complex")
)

// Complex is the read-only topology shared by all grids. Returned slices
// must not be modified.
type Complex interface {
	NumPoints() int
	NumCells() int
	// Dimension is the highest topological dimension of the cells
	Dimension() int
	Cell(i int) cells.Cell
	// FaceNeighbors has one entry per local face, -1 on the boundary
	FaceNeighbors(i int) []int
	// Neighbors lists the distinct cells sharing a face with cell i
	Neighbors(i int) []int
	PointCells(p int) []int
}

// TypeCount is a run of Count consecutive cells of one Type in a flattened
// index buffer.
type TypeCount struct {
	Type  cells.Type
	Count int
}

// Face is a cell face, Vertices in the owning cell's outward orientation.
type Face struct {
	Vertices []int
	Cell     int // Owning cell
	LocalID  int // Local face ID within the cell
}
