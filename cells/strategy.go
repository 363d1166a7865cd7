package cells

import (
	"sync"
)

// Connectivity lists local vertex tuples of a reference cell. Faces are
// oriented outward for 2D and 3D cells, quadratic cells list the corner
// vertices of their linear parent.
type Connectivity struct {
	Edges [][]int
	Faces [][]int
}

// Strategy is the stateless behaviour of one cell type. Strategies are
// shared, obtain them with Get, HypercubeStrategy or Cell.Strategy.
type Strategy struct {
	cellType  Type
	dimension int
	vertices  [][]float64
	corners   []int
	edges     [][]int
	faces     [][]int
	center    []float64
	affine    bool
	shape     func(xi, w []float64)
	gradient  func(xi []float64, dw [][]float64)
	contains  func(xi []float64, tol float64) bool
}

var registry [numTypes]*Strategy

func init() {
	registry[Point] = newSimplex(Point, 0, nil, nil)
	registry[Line] = newSimplex(Line, 1,
		[][]int{{0, 1}},
		[][]int{{0}, {1}})
	registry[Triangle] = newSimplex(Triangle, 2,
		[][]int{{0, 1}, {1, 2}, {2, 0}},
		[][]int{{0, 1}, {1, 2}, {2, 0}})
	registry[Tet] = newSimplex(Tet, 3,
		[][]int{{0, 1}, {1, 2}, {2, 0}, {0, 3}, {1, 3}, {2, 3}},
		[][]int{
			{0, 2, 1}, // Face 0
			{0, 1, 3}, // Face 1
			{0, 3, 2}, // Face 2
			{1, 2, 3}, // Face 3
		})
	registry[Quad] = newCube(Quad,
		[][]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
		[][]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}},
		[][]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}})
	registry[Hex] = newCube(Hex,
		[][]float64{
			{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
			{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
		},
		[][]int{
			{0, 1}, {1, 2}, {2, 3}, {3, 0},
			{4, 5}, {5, 6}, {6, 7}, {7, 4},
			{0, 4}, {1, 5}, {2, 6}, {3, 7},
		},
		[][]int{
			{0, 3, 2, 1}, // Face 0 (bottom)
			{4, 5, 6, 7}, // Face 1 (top)
			{0, 1, 5, 4}, // Face 2
			{1, 2, 6, 5}, // Face 3
			{2, 3, 7, 6}, // Face 4
			{3, 0, 4, 7}, // Face 5
		})
	registry[Prism] = newPrism()
	registry[Pyramid] = newPyramid()
	registry[Line3] = newQuadraticSimplex(Line3, registry[Line])
	registry[Triangle6] = newQuadraticSimplex(Triangle6, registry[Triangle])
	registry[Tet10] = newQuadraticSimplex(Tet10, registry[Tet])
	registry[Quad8] = newSerendipity(Quad8, registry[Quad])
	registry[Hex20] = newSerendipity(Hex20, registry[Hex])
}

// Get returns the strategy of a fixed type, nil for Hypercube or an invalid
// type.
func Get(t Type) *Strategy {
	if t >= numTypes {
		return nil
	}
	return registry[t]
}

var (
	hypercubeMu    sync.Mutex
	hypercubeCache = map[int]*Strategy{}
)

// HypercubeStrategy returns the d-dimensional hypercube: Line, Quad and Hex
// for d <= 3, a lexicographically ordered Hypercube beyond.
func HypercubeStrategy(d int) *Strategy {
	switch {
	case d < 0:
		return nil
	case d == 0:
		return registry[Point]
	case d == 1:
		return registry[Line]
	case d == 2:
		return registry[Quad]
	case d == 3:
		return registry[Hex]
	}
	hypercubeMu.Lock()
	defer hypercubeMu.Unlock()
	if s, ok := hypercubeCache[d]; ok {
		return s
	}
	var (
		nv       = 1 << d
		vertices = make([][]float64, nv)
		edges    [][]int
		faces    [][]int
	)
	for k := 0; k < nv; k++ {
		vertices[k] = make([]float64, d)
		for j := 0; j < d; j++ {
			vertices[k][j] = float64((k >> j) & 1)
			if k&(1<<j) == 0 {
				edges = append(edges, []int{k, k | 1<<j})
			}
		}
	}
	for j := 0; j < d; j++ {
		for side := 0; side < 2; side++ {
			var face []int
			for k := 0; k < nv; k++ {
				if (k>>j)&1 == side {
					face = append(face, k)
				}
			}
			faces = append(faces, face)
		}
	}
	s := newCube(Hypercube, vertices, edges, faces)
	hypercubeCache[d] = s
	return s
}

func (s *Strategy) Type() Type       { return s.cellType }
func (s *Strategy) Dimension() int   { return s.dimension }
func (s *Strategy) NumVertices() int { return len(s.vertices) }
func (s *Strategy) NumEdges() int    { return len(s.edges) }
func (s *Strategy) NumFaces() int    { return len(s.faces) }

// Affine strategies map reference to world coordinates linearly.
func (s *Strategy) Affine() bool { return s.affine }

// Corners are the vertices of the linear parent.
func (s *Strategy) Corners() []int {
	return append([]int(nil), s.corners...)
}

// MakeBase returns the reference vertex coordinates.
func (s *Strategy) MakeBase() (base [][]float64) {
	base = make([][]float64, len(s.vertices))
	for k, v := range s.vertices {
		base[k] = append([]float64{}, v...)
	}
	return
}

// MakeIndex returns the local connectivity of the reference cell.
func (s *Strategy) MakeIndex() (c Connectivity) {
	c.Edges = copyTuples(s.edges)
	c.Faces = copyTuples(s.faces)
	return
}

func (s *Strategy) Center() []float64 {
	return append([]float64{}, s.center...)
}

// Shape fills w with one weight per vertex.
func (s *Strategy) Shape(xi, w []float64) { s.shape(xi, w) }

// ShapeGradient fills dw[k][j] with the derivative of weight k along xi[j].
func (s *Strategy) ShapeGradient(xi []float64, dw [][]float64) { s.gradient(xi, dw) }

// Contains reports whether xi lies in the reference cell, widened by tol.
func (s *Strategy) Contains(xi []float64, tol float64) bool { return s.contains(xi, tol) }

// FaceVertices maps local face f of a cell onto the cell's point indices.
func (s *Strategy) FaceVertices(f int, indices []int) (face []int) {
	face = make([]int, len(s.faces[f]))
	for i, lv := range s.faces[f] {
		face[i] = indices[lv]
	}
	return
}

func (s *Strategy) EdgeVertices(e int, indices []int) (edge [2]int) {
	edge[0], edge[1] = indices[s.edges[e][0]], indices[s.edges[e][1]]
	return
}

func copyTuples(t [][]int) (r [][]int) {
	r = make([][]int, len(t))
	for i := range t {
		r[i] = append([]int{}, t[i]...)
	}
	return
}

func identityCorners(n int) (c []int) {
	c = make([]int, n)
	for i := range c {
		c[i] = i
	}
	return
}
