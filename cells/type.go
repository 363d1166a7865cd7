// Package cells holds the reference cell types: vertex ordering, local
// connectivity, shape functions and the world to local coordinate inversion.
package cells

import (
	"fmt"
	"math/bits"
	"strings"
)

// Type represents the supported cell types
type Type uint8

const (
	// 0D cells
	Point Type = iota
	// 1D cells
	Line
	Line3 // 3-node line (quadratic)
	// 2D cells
	Triangle
	Quad
	Triangle6 // 6-node triangle (quadratic)
	Quad8     // 8-node quad (serendipity)
	// 3D cells
	Tet
	Hex
	Prism
	Pyramid
	Tet10 // 10-node tetrahedron (quadratic)
	Hex20 // 20-node hexahedron (serendipity)
	// Structured cells of dimension > 3
	Hypercube
	numTypes
)

var typeNames = [numTypes]string{
	"Point",
	"Line", "Line3",
	"Triangle", "Quad", "Triangle6", "Quad8",
	"Tet", "Hex", "Prism", "Pyramid", "Tet10", "Hex20",
	"Hypercube",
}

func (t Type) String() string {
	if t < numTypes {
		return typeNames[t]
	}
	return "Invalid"
}

func ParseType(name string) (t Type, err error) {
	for i, n := range typeNames {
		if strings.EqualFold(n, name) {
			t = Type(i)
			return
		}
	}
	err = fmt.Errorf("%w: %q", ErrUnknownType, name)
	return
}

func (t Type) Valid() bool { return t < numTypes }

// Dimension is the topological dimension, -1 for Hypercube whose dimension
// is carried by the cell.
func (t Type) Dimension() int {
	switch t {
	case Point:
		return 0
	case Line, Line3:
		return 1
	case Triangle, Quad, Triangle6, Quad8:
		return 2
	case Tet, Hex, Prism, Pyramid, Tet10, Hex20:
		return 3
	default:
		return -1
	}
}

// NumVertices is 0 for Hypercube, use HypercubeStrategy(d).NumVertices().
func (t Type) NumVertices() int {
	switch t {
	case Point:
		return 1
	case Line:
		return 2
	case Line3, Triangle:
		return 3
	case Quad, Tet:
		return 4
	case Pyramid:
		return 5
	case Triangle6, Prism:
		return 6
	case Quad8, Hex:
		return 8
	case Tet10:
		return 10
	case Hex20:
		return 20
	default:
		return 0
	}
}

func (t Type) IsQuadratic() bool {
	switch t {
	case Line3, Triangle6, Quad8, Tet10, Hex20:
		return true
	}
	return false
}

// Linear returns the linear parent of a quadratic type.
func (t Type) Linear() Type {
	switch t {
	case Line3:
		return Line
	case Triangle6:
		return Triangle
	case Quad8:
		return Quad
	case Tet10:
		return Tet
	case Hex20:
		return Hex
	}
	return t
}

// Cell references domain points by index, in the vertex order of its Type.
type Cell struct {
	Type    Type
	Indices []int
}

func (c Cell) NumVertices() int { return len(c.Indices) }

func (c Cell) Dimension() int {
	if c.Type == Hypercube {
		return bits.Len(uint(len(c.Indices))) - 1
	}
	return c.Type.Dimension()
}

func (c Cell) Strategy() *Strategy {
	if c.Type == Hypercube {
		return HypercubeStrategy(c.Dimension())
	}
	return Get(c.Type)
}
