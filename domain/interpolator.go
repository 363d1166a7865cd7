package domain

import (
	"fmt"

	"github.com/notargets/gofield/cells"
)

// Weights is the result of an interpolation: values at Indices combined
// with Weights reproduce the interpolated value. Gradients holds the world
// space gradient of each weight when requested.
type Weights struct {
	Cell      int
	Local     []float64
	Indices   []int
	Weights   []float64
	Gradients [][]float64
}

func (w *Weights) reset(n, dim int, withGradient bool) {
	w.Indices = resizeInts(w.Indices, n)
	w.Weights = grow(w.Weights, n)
	if !withGradient {
		w.Gradients = w.Gradients[:0]
		return
	}
	if cap(w.Gradients) < n {
		w.Gradients = make([][]float64, n)
	}
	w.Gradients = w.Gradients[:n]
	for k := range w.Gradients {
		w.Gradients[k] = grow(w.Gradients[k], dim)
		for j := range w.Gradients[k] {
			w.Gradients[k][j] = 0
		}
	}
}

func resizeInts(s []int, n int) []int {
	if cap(s) < n {
		return make([]int, n)
	}
	return s[:n]
}

// Interpolator turns a query into index and weight lists. Interpolators keep
// scratch state, the last located cell among it, and must not be shared
// between goroutines.
type Interpolator interface {
	Interpolate(p []float64, w *Weights) error
	InterpolateGradient(p []float64, w *Weights) error
	// InterpolateCell skips the point location
	InterpolateCell(cell int, local []float64, w *Weights) error
	InterpolateCellGradient(cell int, local []float64, w *Weights) error
}

type interpolatorConfig struct {
	newton cells.NewtonOptions
}

type InterpolatorOption func(*interpolatorConfig)

func WithNewton(opts cells.NewtonOptions) InterpolatorOption {
	return func(c *interpolatorConfig) {
		c.newton = opts
	}
}

type cellInterpolator struct {
	grid   Grid
	part   Part
	newton cells.NewtonOptions
	hint   int
	vbuf   [][]float64
}

func newCellInterpolator(g Grid, part Part, opts []InterpolatorOption) (Interpolator, error) {
	cfg := interpolatorConfig{newton: cells.DefaultNewtonOptions}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.newton.MaxIterations < 1 || cfg.newton.Tolerance <= 0 || cfg.newton.ContainsTolerance < 0 {
		return nil, fmt.Errorf("invalid Newton options %+v", cfg.newton)
	}
	return &cellInterpolator{
		grid:   g,
		part:   part,
		newton: cfg.newton,
		hint:   -1,
	}, nil
}

func (ci *cellInterpolator) locate(p []float64) (loc Location, err error) {
	if loc, err = ci.grid.Locate(p, ci.hint, ci.newton); err != nil {
		return
	}
	ci.hint = loc.Cell
	return
}

func (ci *cellInterpolator) Interpolate(p []float64, w *Weights) (err error) {
	var loc Location
	if loc, err = ci.locate(p); err != nil {
		return
	}
	return ci.weights(loc.Cell, loc.Local, w, false)
}

func (ci *cellInterpolator) InterpolateGradient(p []float64, w *Weights) (err error) {
	var loc Location
	if loc, err = ci.locate(p); err != nil {
		return
	}
	return ci.weights(loc.Cell, loc.Local, w, true)
}

func (ci *cellInterpolator) InterpolateCell(cell int, local []float64, w *Weights) error {
	return ci.weights(cell, local, w, false)
}

func (ci *cellInterpolator) InterpolateCellGradient(cell int, local []float64, w *Weights) error {
	return ci.weights(cell, local, w, true)
}

func (ci *cellInterpolator) weights(c int, local []float64, w *Weights, withGradient bool) (err error) {
	if c < 0 || c >= ci.grid.NumCells() {
		return fmt.Errorf("%w: cell %d, have %d", ErrCellOutOfRange, c, ci.grid.NumCells())
	}
	var (
		cell = ci.grid.Cell(c)
		s    = cell.Strategy()
		gd   = ci.grid.Dimension()
	)
	if len(local) != s.Dimension() {
		return fmt.Errorf("%w: local coordinate of dimension %d in a %dD cell", ErrShapeMismatch, len(local), s.Dimension())
	}
	w.Cell = c
	w.Local = append(w.Local[:0], local...)
	if ci.part == Cells {
		w.reset(1, gd, withGradient)
		w.Indices[0], w.Weights[0] = c, 1
		return
	}
	w.reset(cell.NumVertices(), gd, withGradient)
	copy(w.Indices, cell.Indices)
	s.Shape(local, w.Weights)
	if withGradient {
		ci.vbuf = cellVertices(ci.grid, cell, ci.vbuf)
		err = cells.WorldGradient(s, ci.vbuf, local, w.Gradients)
	}
	return
}

// nearestInterpolator serves point sets: the closest point with weight 1.
type nearestInterpolator struct {
	domain Domain
}

func newNearestInterpolator(d Domain, part Part) (Interpolator, error) {
	if part == Cells {
		return nil, fmt.Errorf("%w: cell based values on a %s point set", ErrNoCells, d.Structuring())
	}
	return &nearestInterpolator{domain: d}, nil
}

func (ni *nearestInterpolator) Interpolate(p []float64, w *Weights) (err error) {
	if err = checkPoint(ni.domain, p); err != nil {
		return
	}
	idx, _ := ni.domain.NearestPoint(p)
	w.Cell = -1
	w.Local = w.Local[:0]
	w.reset(1, ni.domain.Dimension(), false)
	w.Indices[0], w.Weights[0] = idx, 1
	return
}

func (ni *nearestInterpolator) InterpolateGradient(p []float64, w *Weights) (err error) {
	if err = ni.Interpolate(p, w); err != nil {
		return
	}
	w.reset(1, ni.domain.Dimension(), true)
	return
}

func (ni *nearestInterpolator) InterpolateCell(int, []float64, *Weights) error {
	return ErrNoCells
}

func (ni *nearestInterpolator) InterpolateCellGradient(int, []float64, *Weights) error {
	return ErrNoCells
}
