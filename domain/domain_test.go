package domain

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gofield/cellcomplex"
	"github.com/notargets/gofield/cells"
	"github.com/notargets/gofield/data"
)

func affine(p []float64) float64 { return 1 + 2*p[0] + 3*p[1] }

// interpolate combines affine values at the weighted points.
func interpolate(d Domain, w *Weights) (v float64) {
	for k, i := range w.Indices {
		v += w.Weights[k] * affine(d.Point(i))
	}
	return
}

func interpolateGradient(d Domain, w *Weights) (g []float64) {
	g = make([]float64, d.Dimension())
	for k, i := range w.Indices {
		f := affine(d.Point(i))
		for j := range g {
			g[j] += w.Gradients[k][j] * f
		}
	}
	return
}

func mustVectors(t *testing.T, vs [][]float64) *data.ValueArray {
	va, err := data.MakeVectors(vs, data.Float64)
	require.NoError(t, err)
	return va
}

func makeThreeGrids(t *testing.T) (grids []Structured) {
	ug, err := MakeUniformGrid([]int{3, 4}, []float64{0, 0}, []float64{0.5, 1})
	require.NoError(t, err)
	rg, err := MakeRectilinearGrid([][]float64{{0, 0.5, 1}, {0, 1, 2, 3}})
	require.NoError(t, err)
	pts := make([][]float64, ug.NumPoints())
	for i := range pts {
		pts[i] = ug.Point(i)
	}
	cg, err := MakeCurvilinearGrid([]int{3, 4}, mustVectors(t, pts))
	require.NoError(t, err)
	return []Structured{ug, rg, cg}
}

func TestFactoryValidation(t *testing.T) {
	{ // Uniform
		_, err := MakeUniformGrid([]int{1, 3}, []float64{0, 0}, []float64{1, 1})
		assert.True(t, errors.Is(err, ErrBadExtent))
		_, err = MakeUniformGrid([]int{2, 3}, []float64{0, 0}, []float64{1, 0})
		assert.True(t, errors.Is(err, ErrBadSpacing))
		_, err = MakeUniformGrid([]int{2, 3}, []float64{math.NaN(), 0}, []float64{1, 1})
		assert.True(t, errors.Is(err, ErrNotFinite))
		_, err = MakeUniformGrid([]int{2, 3}, []float64{0}, []float64{1, 1})
		assert.True(t, errors.Is(err, ErrShapeMismatch))
	}
	{ // Rectilinear
		_, err := MakeRectilinearGrid([][]float64{{0, 1}, {0, 2, 1}})
		assert.True(t, errors.Is(err, ErrNotMonotonic))
		_, err = MakeRectilinearGrid([][]float64{{0, 1}, {0, 0}})
		assert.True(t, errors.Is(err, ErrNotMonotonic))
		_, err = MakeRectilinearGrid([][]float64{{0}})
		assert.True(t, errors.Is(err, ErrBadExtent))
		_, err = MakeRectilinearGrid([][]float64{{0, math.Inf(1)}})
		assert.True(t, errors.Is(err, ErrNotFinite))
	}
	{ // Curvilinear point count and dimension
		pts := mustVectors(t, [][]float64{{0, 0}, {1, 0}, {0, 1}})
		_, err := MakeCurvilinearGrid([]int{2, 2}, pts)
		assert.True(t, errors.Is(err, ErrShapeMismatch))
		_, err = MakeCurvilinearGrid([]int{3, 1, 1}, pts)
		assert.True(t, errors.Is(err, ErrShapeMismatch))
	}
	{ // Unstructured
		pts := mustVectors(t, [][]float64{{0, 0}, {1, 0}, {0, 1}})
		_, err := MakeGrid(pts, []cellcomplex.TypeCount{{Type: cells.Triangle, Count: 1}}, []int{0, 1, 3})
		assert.True(t, errors.Is(err, cellcomplex.ErrIndexOutOfRange))
		_, err = MakeGrid(pts, []cellcomplex.TypeCount{{Type: cells.Tet, Count: 1}}, []int{0, 1, 2, 0})
		assert.Error(t, err)
		_, err = MakeGrid(nil, []cellcomplex.TypeCount{{Type: cells.Triangle, Count: 1}}, []int{0, 1, 2})
		assert.True(t, errors.Is(err, ErrShapeMismatch))
	}
}

func TestStructuredEquivalence(t *testing.T) {
	var (
		grids = makeThreeGrids(t)
		ref   = grids[0]
		opts  = cells.DefaultNewtonOptions
	)
	assert.Equal(t, Uniform, grids[0].Structuring())
	assert.Equal(t, Rectilinear, grids[1].Structuring())
	assert.Equal(t, Curvilinear, grids[2].Structuring())
	for _, g := range grids {
		{ // Same enumeration of points and cells
			require.Equal(t, 12, g.NumPoints())
			require.Equal(t, 6, g.NumCells())
			assert.Equal(t, 2, g.TopologicalDimension())
			assert.Equal(t, []int{3, 4}, g.Extents())
			for i := 0; i < g.NumPoints(); i++ {
				assert.InDeltaSlice(t, ref.Point(i), g.Point(i), 1.e-15)
				assert.Equal(t, i, g.PointIndex(g.PointMultiIndex(i)))
			}
			for c := 0; c < g.NumCells(); c++ {
				assert.Equal(t, ref.Cell(c), g.Cell(c))
				assert.Equal(t, c, g.CellIndex(g.CellMultiIndex(c)))
			}
			assert.InDeltaSlice(t, []float64{0, 0}, g.Bounds().Min, 1.e-15)
			assert.InDeltaSlice(t, []float64{1, 3}, g.Bounds().Max, 1.e-15)
		}
		{ // Same location and exact affine interpolation
			ip, err := g.MakeInterpolator(Points)
			require.NoError(t, err)
			var w Weights
			for _, p := range [][]float64{{0.1, 0.2}, {0.7, 1.3}, {0.3, 2.9}, {0.95, 0.5}} {
				want, err := ref.Locate(p, -1, opts)
				require.NoError(t, err)
				loc, err := g.Locate(p, -1, opts)
				require.NoError(t, err)
				assert.Equal(t, want.Cell, loc.Cell)
				assert.InDeltaSlice(t, want.Local, loc.Local, 1.e-9)

				require.NoError(t, ip.InterpolateGradient(p, &w))
				assert.InDelta(t, affine(p), interpolate(g, &w), 1.e-10)
				assert.InDeltaSlice(t, []float64{2, 3}, interpolateGradient(g, &w), 1.e-9)
			}
		}
	}
}

func TestLocate(t *testing.T) {
	var (
		grids = makeThreeGrids(t)
		opts  = cells.DefaultNewtonOptions
	)
	{ // The upper corner belongs to the last cell
		for _, g := range grids[:2] {
			loc, err := g.Locate([]float64{1, 3}, -1, opts)
			require.NoError(t, err)
			assert.Equal(t, 5, loc.Cell)
			assert.InDeltaSlice(t, []float64{1, 1}, loc.Local, 1.e-14)
		}
		loc, err := grids[2].Locate([]float64{1, 3}, -1, opts)
		require.NoError(t, err)
		assert.Equal(t, 5, loc.Cell)
	}
	for _, g := range grids {
		{ // Outside
			_, err := g.Locate([]float64{1.5, 0}, -1, opts)
			assert.True(t, errors.Is(err, ErrOutsideDomain))
			_, err = g.Locate([]float64{0.5, -0.1}, 2, opts)
			assert.True(t, errors.Is(err, ErrOutsideDomain))
		}
		{ // Bad queries
			_, err := g.Locate([]float64{0.5}, -1, opts)
			assert.True(t, errors.Is(err, ErrShapeMismatch))
			_, err = g.Locate([]float64{math.NaN(), 0}, -1, opts)
			assert.True(t, errors.Is(err, ErrNotFinite))
		}
		{ // A wrong hint still finds the cell
			loc, err := g.Locate([]float64{0.9, 2.5}, 0, opts)
			require.NoError(t, err)
			assert.Equal(t, 5, loc.Cell)
		}
	}
}

func TestUnstructuredGrid(t *testing.T) {
	var (
		pts  = mustVectors(t, [][]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}})
		opts = cells.DefaultNewtonOptions
	)
	g, err := MakeGrid(pts, []cellcomplex.TypeCount{{Type: cells.Triangle, Count: 2}}, []int{0, 1, 2, 0, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, Unstructured, g.Structuring())
	assert.Nil(t, g.Extents())
	assert.Equal(t, 2, g.NumCells())
	{ // Location
		loc, err := g.Locate([]float64{0.75, 0.25}, -1, opts)
		require.NoError(t, err)
		assert.Equal(t, 0, loc.Cell)
		loc, err = g.Locate([]float64{0.25, 0.75}, 0, opts)
		require.NoError(t, err)
		assert.Equal(t, 1, loc.Cell)
		_, err = g.Locate([]float64{1.25, 0.75}, -1, opts)
		assert.True(t, errors.Is(err, ErrOutsideDomain))
	}
	{ // The query tolerance widens the cell search
		p := []float64{1.0005, 0.5}
		_, err := g.Locate(p, -1, opts)
		assert.True(t, errors.Is(err, ErrOutsideDomain))
		loose := opts
		loose.ContainsTolerance = 1.e-3
		loc, err := g.Locate(p, -1, loose)
		require.NoError(t, err)
		assert.Equal(t, 0, loc.Cell)
	}
	{ // Affine interpolation is exact
		ip, err := g.MakeInterpolator(Points)
		require.NoError(t, err)
		var w Weights
		for _, p := range [][]float64{{0.75, 0.25}, {0.1, 0.8}, {0.5, 0.5}, {1, 1}} {
			require.NoError(t, ip.InterpolateGradient(p, &w))
			assert.InDelta(t, affine(p), interpolate(g, &w), 1.e-12)
			assert.InDeltaSlice(t, []float64{2, 3}, interpolateGradient(g, &w), 1.e-12)
		}
	}
	{ // Cell based values carry the cell with weight one
		ip, err := g.MakeInterpolator(Cells)
		require.NoError(t, err)
		var w Weights
		require.NoError(t, ip.InterpolateGradient([]float64{0.2, 0.7}, &w))
		assert.Equal(t, []int{1}, w.Indices)
		assert.Equal(t, []float64{1}, w.Weights)
		assert.Equal(t, []float64{0, 0}, w.Gradients[0])
		assert.True(t, errors.Is(ip.InterpolateCell(5, []float64{0, 0}, &w), ErrCellOutOfRange))
	}
}

func TestCurvedCells(t *testing.T) {
	// Edge 1-2 of the quadratic triangle bows outward past x = 1
	pts := mustVectors(t, [][]float64{
		{0, 0}, {1, 0}, {0, 1},
		{0.5, 0}, {0.8, 0.8}, {0, 0.5},
	})
	g, err := MakeGrid(pts, []cellcomplex.TypeCount{{Type: cells.Triangle6, Count: 1}}, []int{0, 1, 2, 3, 4, 5})
	require.NoError(t, err)
	p := []float64{1.004, 0.17}
	assert.False(t, g.Bounds().Contains(p, 0))
	assert.True(t, g.CellBounds(0).Contains(p, 0))
	loc, err := g.Locate(p, -1, cells.DefaultNewtonOptions)
	require.NoError(t, err)
	assert.Equal(t, 0, loc.Cell)
	assert.InDeltaSlice(t, []float64{0.91503, 0.08103}, loc.Local, 1.e-4)
}

func TestLineSet(t *testing.T) {
	var (
		pts  = mustVectors(t, [][]float64{{0, 0}, {1, 0}, {1, 1}})
		opts = cells.DefaultNewtonOptions
	)
	g, err := MakeLineSet(pts, [][]int{{0, 1, 2}})
	require.NoError(t, err)
	assert.Equal(t, 2, g.NumCells())
	assert.Equal(t, 1, g.TopologicalDimension())
	loc, err := g.Locate([]float64{0.5, 0}, -1, opts)
	require.NoError(t, err)
	assert.Equal(t, 0, loc.Cell)
	assert.InDeltaSlice(t, []float64{0.5}, loc.Local, 1.e-10)
	loc, err = g.Locate([]float64{1, 0.25}, -1, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, loc.Cell)
	assert.InDeltaSlice(t, []float64{0.25}, loc.Local, 1.e-10)
	_, err = g.Locate([]float64{0.5, 0.5}, -1, opts)
	assert.True(t, errors.Is(err, ErrOutsideDomain))

	_, err = MakeLineSet(pts, [][]int{{0}})
	assert.True(t, errors.Is(err, cellcomplex.ErrInvalidCount))
}

func TestSubDomains(t *testing.T) {
	parent, err := MakeUniformGrid([]int{3, 3}, []float64{0, 0}, []float64{1, 1})
	require.NoError(t, err)
	{ // Sub grid over the upper right cell
		sub, err := MakeSubGrid(parent, []cellcomplex.TypeCount{{Type: cells.Quad, Count: 1}}, []int{4, 5, 8, 7})
		require.NoError(t, err)
		assert.Equal(t, []int{4, 5, 7, 8}, sub.Lookup())
		assert.Equal(t, 4, sub.NumPoints())
		assert.Equal(t, []int{0, 1, 3, 2}, sub.Cell(0).Indices)
		for i, pi := range sub.Lookup() {
			assert.Equal(t, parent.Point(pi), sub.Point(i))
			assert.Equal(t, pi, sub.ParentPoint(i))
		}
		assert.Equal(t, Domain(parent), sub.Parent())
		loc, err := sub.Locate([]float64{1.5, 1.25}, -1, cells.DefaultNewtonOptions)
		require.NoError(t, err)
		assert.Equal(t, 0, loc.Cell)
		assert.InDeltaSlice(t, []float64{0.5, 0.25}, loc.Local, 1.e-10)
		_, err = sub.Locate([]float64{0.5, 0.5}, -1, cells.DefaultNewtonOptions)
		assert.True(t, errors.Is(err, ErrOutsideDomain))

		_, err = MakeSubGrid(parent, []cellcomplex.TypeCount{{Type: cells.Quad, Count: 1}}, []int{4, 5, 9, 7})
		assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	}
	{ // Sub point set keeps the given order
		sub, err := MakeSubPointSet(parent, []int{8, 0})
		require.NoError(t, err)
		assert.Equal(t, []float64{2, 2}, sub.Point(0))
		assert.Equal(t, []float64{0, 0}, sub.Point(1))
		assert.Equal(t, 8, sub.ParentPoint(0))
		_, err = MakeSubPointSet(parent, []int{-1})
		assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	}
}

func TestPointSet(t *testing.T) {
	grid, err := MakeUniformGrid([]int{3, 3}, []float64{0, 0}, []float64{1, 1})
	require.NoError(t, err)
	ps, err := MakeUniformPointSet([]int{3, 3}, []float64{0, 0}, []float64{1, 1})
	require.NoError(t, err)
	{ // Nearest point
		for _, d := range []Domain{grid, ps} {
			i, dist := d.NearestPoint([]float64{1.2, 1.9})
			assert.Equal(t, 7, i)
			assert.InDelta(t, math.Sqrt(0.05), dist, 1.e-14)
		}
	}
	{ // Point sets interpolate nearest neighbour and have no cells
		ip, err := ps.MakeInterpolator(Points)
		require.NoError(t, err)
		var w Weights
		require.NoError(t, ip.Interpolate([]float64{0.1, 1.8}, &w))
		assert.Equal(t, []int{6}, w.Indices)
		assert.Equal(t, []float64{1}, w.Weights)
		assert.True(t, errors.Is(ip.InterpolateCell(0, nil, &w), ErrNoCells))
		_, err = ps.MakeInterpolator(Cells)
		assert.True(t, errors.Is(err, ErrNoCells))
	}
	{ // Explicit points
		ps, err := MakePointSet(mustVectors(t, [][]float64{{0, 0, 0}, {1, 2, 3}, {-1, 0, 4}}))
		require.NoError(t, err)
		assert.Equal(t, 3, ps.Dimension())
		assert.Equal(t, []float64{-1, 0, 0}, ps.Bounds().Min)
		assert.Equal(t, []float64{1, 2, 4}, ps.Bounds().Max)
		i, _ := ps.NearestPoint([]float64{-0.8, 0.1, 3.5})
		assert.Equal(t, 2, i)
	}
	{ // Coordinates overflowing single precision never reach a point set
		pts := [][]float64{{0, 0}, {1, 0}, {0, 1.e39}}
		_, err := data.MakeVectors(pts, data.Float32)
		assert.True(t, errors.Is(err, data.ErrNotFinite))
		ps, err := MakePointSet(mustVectors(t, pts))
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 1.e39}, ps.Bounds().Max)
	}
}

func TestTriangulatedGrid(t *testing.T) {
	pts := mustVectors(t, [][]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0.5, 0.4}})
	g, err := MakeTriangulatedGrid(pts)
	require.NoError(t, err)
	require.Equal(t, 4, g.NumCells())
	var area float64
	for c := 0; c < g.NumCells(); c++ {
		idx := g.Cell(c).Indices
		a, b, d := g.Point(idx[0]), g.Point(idx[1]), g.Point(idx[2])
		signed := orient2D([2]float64{a[0], a[1]}, [2]float64{b[0], b[1]}, [2]float64{d[0], d[1]})
		assert.Greater(t, signed, 0.)
		area += 0.5 * signed
	}
	assert.InDelta(t, 1., area, 1.e-14)
	loc, err := g.Locate([]float64{0.5, 0.9}, -1, cells.DefaultNewtonOptions)
	require.NoError(t, err)
	assert.Contains(t, g.Cell(loc.Cell).Indices, 2)
	assert.Contains(t, g.Cell(loc.Cell).Indices, 3)

	_, err = MakeTriangulatedGrid(mustVectors(t, [][]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}))
	assert.True(t, errors.Is(err, ErrShapeMismatch))
}

func TestConcurrentLocate(t *testing.T) {
	var (
		n   = 9
		pts = make([][]float64, 0, n*n)
	)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			x, y := float64(i)/float64(n-1), float64(j)/float64(n-1)
			pts = append(pts, []float64{x + 0.1*y*y, y})
		}
	}
	g, err := MakeCurvilinearGrid([]int{n, n}, mustVectors(t, pts))
	require.NoError(t, err)
	var (
		wg      sync.WaitGroup
		results = make([]int, 8)
	)
	for k := range results {
		wg.Add(1)
		go func(k int) {
			defer wg.Done()
			loc, err := g.Locate([]float64{0.52, 0.33}, -1, cells.DefaultNewtonOptions)
			if err != nil {
				results[k] = -2
				return
			}
			results[k] = loc.Cell
		}(k)
	}
	wg.Wait()
	for _, c := range results {
		assert.Equal(t, results[0], c)
	}
	assert.GreaterOrEqual(t, results[0], 0)
}

func TestBoundingBox(t *testing.T) {
	b := NewBoundingBox(2)
	b.Extend([]float64{1, -1})
	b.Extend([]float64{-2, 3})
	assert.Equal(t, []float64{-2, -1}, b.Min)
	assert.Equal(t, []float64{1, 3}, b.Max)
	assert.Equal(t, 1, b.LongestAxis())
	assert.InDelta(t, 5., b.Diagonal(), 1.e-15)
	assert.True(t, b.Contains([]float64{1.05, 0}, 0.1))
	assert.False(t, b.Contains([]float64{1.05, 0}, 0))
	assert.Equal(t, []float64{-0.5, 1}, b.Center())
	p := b.Pad(1)
	assert.Equal(t, []float64{-3, -2}, p.Min)
	assert.Equal(t, []float64{-2, -1}, b.Min)
}
