package cells

import "math"

// Reference cells live in [0,1]^d. Simplices put vertex 0 at the origin and
// vertex j+1 on axis j.

func newSimplex(t Type, d int, edges, faces [][]int) (s *Strategy) {
	var (
		vertices = make([][]float64, d+1)
		center   = make([]float64, d)
	)
	for k := range vertices {
		vertices[k] = make([]float64, d)
		if k > 0 {
			vertices[k][k-1] = 1
		}
	}
	for j := range center {
		center[j] = 1 / float64(d+1)
	}
	s = &Strategy{
		cellType:  t,
		dimension: d,
		vertices:  vertices,
		corners:   identityCorners(d + 1),
		edges:     edges,
		faces:     faces,
		center:    center,
		affine:    true,
		shape: func(xi, w []float64) {
			w[0] = 1
			for j := 0; j < d; j++ {
				w[0] -= xi[j]
				w[j+1] = xi[j]
			}
		},
		gradient: func(_ []float64, dw [][]float64) {
			for k := 0; k <= d; k++ {
				for j := 0; j < d; j++ {
					dw[k][j] = dBarycentric(k, j)
				}
			}
		},
		contains: func(xi []float64, tol float64) bool {
			var sum float64
			for j := 0; j < d; j++ {
				if xi[j] < -tol {
					return false
				}
				sum += xi[j]
			}
			return sum <= 1+tol
		},
	}
	return
}

func dBarycentric(i, j int) float64 {
	switch {
	case i == 0:
		return -1
	case i == j+1:
		return 1
	}
	return 0
}

func newCube(t Type, vertices [][]float64, edges, faces [][]int) (s *Strategy) {
	var (
		d      = len(vertices[0])
		center = make([]float64, d)
	)
	for j := range center {
		center[j] = 0.5
	}
	s = &Strategy{
		cellType:  t,
		dimension: d,
		vertices:  vertices,
		corners:   identityCorners(len(vertices)),
		edges:     edges,
		faces:     faces,
		center:    center,
		shape: func(xi, w []float64) {
			for k, v := range vertices {
				p := 1.
				for j, c := range v {
					p *= lin(c, xi[j])
				}
				w[k] = p
			}
		},
		gradient: func(xi []float64, dw [][]float64) {
			for k, v := range vertices {
				for m := range v {
					p := 1.
					for j, c := range v {
						if j == m {
							p *= dlin(c)
						} else {
							p *= lin(c, xi[j])
						}
					}
					dw[k][m] = p
				}
			}
		},
		contains: func(xi []float64, tol float64) bool {
			for j := 0; j < d; j++ {
				if xi[j] < -tol || xi[j] > 1+tol {
					return false
				}
			}
			return true
		},
	}
	return
}

func lin(c, x float64) float64 {
	if c == 0 {
		return 1 - x
	}
	return x
}

func dlin(c float64) float64 {
	if c == 0 {
		return -1
	}
	return 1
}

// Prism: triangle (r,s) extruded along t, bottom 0-2, top 3-5.
func newPrism() *Strategy {
	var (
		dLr = [3]float64{-1, 1, 0}
		dLs = [3]float64{-1, 0, 1}
		df  = [2]float64{-1, 1}
	)
	return &Strategy{
		cellType:  Prism,
		dimension: 3,
		vertices: [][]float64{
			{0, 0, 0}, {1, 0, 0}, {0, 1, 0},
			{0, 0, 1}, {1, 0, 1}, {0, 1, 1},
		},
		corners: identityCorners(6),
		edges: [][]int{
			{0, 1}, {1, 2}, {2, 0},
			{3, 4}, {4, 5}, {5, 3},
			{0, 3}, {1, 4}, {2, 5},
		},
		faces: [][]int{
			{0, 2, 1},    // Face 0 (bottom tri)
			{3, 4, 5},    // Face 1 (top tri)
			{0, 1, 4, 3}, // Face 2 (quad)
			{1, 2, 5, 4}, // Face 3 (quad)
			{2, 0, 3, 5}, // Face 4 (quad)
		},
		center: []float64{1. / 3., 1. / 3., 0.5},
		shape: func(xi, w []float64) {
			var (
				L = [3]float64{1 - xi[0] - xi[1], xi[0], xi[1]}
				f = [2]float64{1 - xi[2], xi[2]}
			)
			for k := 0; k < 6; k++ {
				w[k] = L[k%3] * f[k/3]
			}
		},
		gradient: func(xi []float64, dw [][]float64) {
			var (
				L = [3]float64{1 - xi[0] - xi[1], xi[0], xi[1]}
				f = [2]float64{1 - xi[2], xi[2]}
			)
			for k := 0; k < 6; k++ {
				dw[k][0] = dLr[k%3] * f[k/3]
				dw[k][1] = dLs[k%3] * f[k/3]
				dw[k][2] = L[k%3] * df[k/3]
			}
		},
		contains: func(xi []float64, tol float64) bool {
			return xi[0] >= -tol && xi[1] >= -tol && xi[0]+xi[1] <= 1+tol &&
				xi[2] >= -tol && xi[2] <= 1+tol
		},
	}
}

// Pyramid: base [0,1]^2 at t=0, apex (0.5,0.5,1). Rational shape functions,
// written in base coordinates x = 2r-1, y = 2s-1.
func newPyramid() *Strategy {
	const apexTol = 1.e-14
	var (
		bx = [4]float64{-1, 1, 1, -1}
		by = [4]float64{-1, -1, 1, 1}
	)
	return &Strategy{
		cellType:  Pyramid,
		dimension: 3,
		vertices: [][]float64{
			{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
			{0.5, 0.5, 1},
		},
		corners: identityCorners(5),
		edges: [][]int{
			{0, 1}, {1, 2}, {2, 3}, {3, 0},
			{0, 4}, {1, 4}, {2, 4}, {3, 4},
		},
		faces: [][]int{
			{0, 3, 2, 1}, // Face 0 (base quad)
			{0, 1, 4},    // Face 1 (tri)
			{1, 2, 4},    // Face 2 (tri)
			{2, 3, 4},    // Face 3 (tri)
			{3, 0, 4},    // Face 4 (tri)
		},
		center: []float64{0.5, 0.5, 0.25},
		shape: func(xi, w []float64) {
			var (
				x, y, z = 2*xi[0] - 1, 2*xi[1] - 1, xi[2]
				q       float64
			)
			if 1-z > apexTol {
				q = z / (1 - z)
			}
			for i := 0; i < 4; i++ {
				w[i] = 0.25 * ((1+bx[i]*x)*(1+by[i]*y) - z + bx[i]*by[i]*x*y*q)
			}
			w[4] = z
		},
		gradient: func(xi []float64, dw [][]float64) {
			var (
				x, y, z = 2*xi[0] - 1, 2*xi[1] - 1, xi[2]
				q, dq   float64
			)
			if 1-z > apexTol {
				q = z / (1 - z)
				dq = 1 / ((1 - z) * (1 - z))
			}
			for i := 0; i < 4; i++ {
				bb := bx[i] * by[i]
				dw[i][0] = 2 * 0.25 * (bx[i]*(1+by[i]*y) + bb*y*q)
				dw[i][1] = 2 * 0.25 * (by[i]*(1+bx[i]*x) + bb*x*q)
				dw[i][2] = 0.25 * (-1 + bb*x*y*dq)
			}
			dw[4][0], dw[4][1], dw[4][2] = 0, 0, 1
		},
		contains: func(xi []float64, tol float64) bool {
			z := xi[2]
			if z < -tol || z > 1+tol {
				return false
			}
			half := math.Max(0, 1-z) / 2
			return math.Abs(xi[0]-0.5) <= half+tol && math.Abs(xi[1]-0.5) <= half+tol
		},
	}
}

// middleVertices appends one node at the midpoint of every parent edge.
func middleVertices(parent *Strategy) (vertices [][]float64) {
	vertices = parent.MakeBase()
	for _, e := range parent.edges {
		a, b := parent.vertices[e[0]], parent.vertices[e[1]]
		mid := make([]float64, len(a))
		for j := range mid {
			mid[j] = 0.5 * (a[j] + b[j])
		}
		vertices = append(vertices, mid)
	}
	return
}

// Quadratic Lagrange on simplices, in barycentric coordinates.
func newQuadraticSimplex(t Type, parent *Strategy) (s *Strategy) {
	var (
		d     = parent.dimension
		nc    = len(parent.vertices)
		edges = parent.edges
	)
	s = &Strategy{
		cellType:  t,
		dimension: d,
		vertices:  middleVertices(parent),
		corners:   identityCorners(nc),
		edges:     edges,
		faces:     parent.faces,
		center:    parent.Center(),
		contains:  parent.contains,
		shape: func(xi, w []float64) {
			var L [4]float64
			barycentric(xi, L[:d+1])
			for i := 0; i < nc; i++ {
				w[i] = L[i] * (2*L[i] - 1)
			}
			for m, e := range edges {
				w[nc+m] = 4 * L[e[0]] * L[e[1]]
			}
		},
		gradient: func(xi []float64, dw [][]float64) {
			var L [4]float64
			barycentric(xi, L[:d+1])
			for j := 0; j < d; j++ {
				for i := 0; i < nc; i++ {
					dw[i][j] = (4*L[i] - 1) * dBarycentric(i, j)
				}
				for m, e := range edges {
					a, b := e[0], e[1]
					dw[nc+m][j] = 4 * (L[b]*dBarycentric(a, j) + L[a]*dBarycentric(b, j))
				}
			}
		},
	}
	return
}

func barycentric(xi, L []float64) {
	L[0] = 1
	for j := range xi[:len(L)-1] {
		L[0] -= xi[j]
		L[j+1] = xi[j]
	}
}

// Serendipity quads and hexes, evaluated in x = 2*xi-1 on [-1,1]^d.
func newSerendipity(t Type, parent *Strategy) (s *Strategy) {
	var (
		d        = parent.dimension
		vertices = middleVertices(parent)
		nodes    = make([][]float64, len(vertices))
		midAxis  = make([]int, len(vertices))
		cScale   = 1 / math.Pow(2, float64(d))
		mScale   = 2 * cScale
	)
	for k, v := range vertices {
		nodes[k] = make([]float64, d)
		midAxis[k] = -1
		for j, c := range v {
			nodes[k][j] = 2*c - 1
			if nodes[k][j] == 0 {
				midAxis[k] = j
			}
		}
	}
	toX := func(xi []float64) (x [3]float64) {
		for j := 0; j < d; j++ {
			x[j] = 2*xi[j] - 1
		}
		return
	}
	// prod over j != skip of (1 + n_j x_j)
	prod := func(n []float64, x [3]float64, skip, skip2 int) (p float64) {
		p = 1
		for j := 0; j < d; j++ {
			if j != skip && j != skip2 {
				p *= 1 + n[j]*x[j]
			}
		}
		return
	}
	s = &Strategy{
		cellType:  t,
		dimension: d,
		vertices:  vertices,
		corners:   identityCorners(len(parent.vertices)),
		edges:     parent.edges,
		faces:     parent.faces,
		center:    parent.Center(),
		contains:  parent.contains,
		shape: func(xi, w []float64) {
			x := toX(xi)
			for k, n := range nodes {
				if m := midAxis[k]; m >= 0 {
					w[k] = mScale * (1 - x[m]*x[m]) * prod(n, x, m, -1)
					continue
				}
				sum := float64(1 - d)
				for j := 0; j < d; j++ {
					sum += n[j] * x[j]
				}
				w[k] = cScale * prod(n, x, -1, -1) * sum
			}
		},
		gradient: func(xi []float64, dw [][]float64) {
			x := toX(xi)
			for k, n := range nodes {
				if m := midAxis[k]; m >= 0 {
					for j := 0; j < d; j++ {
						if j == m {
							dw[k][j] = 2 * mScale * (-2 * x[m]) * prod(n, x, m, -1)
						} else {
							dw[k][j] = 2 * mScale * (1 - x[m]*x[m]) * n[j] * prod(n, x, m, j)
						}
					}
					continue
				}
				var (
					sum = float64(1 - d)
					p   = prod(n, x, -1, -1)
				)
				for j := 0; j < d; j++ {
					sum += n[j] * x[j]
				}
				for j := 0; j < d; j++ {
					dw[k][j] = 2 * cScale * n[j] * (prod(n, x, j, -1)*sum + p)
				}
			}
		},
	}
	return
}
