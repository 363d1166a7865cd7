package field

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/notargets/gofield/cells"
	"github.com/notargets/gofield/domain"
	"github.com/notargets/gofield/utils"
)

type config struct {
	newton cells.NewtonOptions
}

type Option func(*config)

// WithNewton sets the local coordinate inversion used to locate queries in
// curved cells.
func WithNewton(opts cells.NewtonOptions) Option {
	return func(c *config) {
		c.newton = opts
	}
}

// Evaluator interpolates a field continuously. It caches the last located
// cell and must not be shared between goroutines, use Clone.
type Evaluator struct {
	field  *Field
	cfg    config
	interp domain.Interpolator
	w      domain.Weights
	pbuf   []float64
}

// MakeEvaluator returns an evaluator with its own scratch buffers, use one
// per goroutine.
func (f *Field) MakeEvaluator(opts ...Option) (ev *Evaluator, err error) {
	cfg := config{newton: cells.DefaultNewtonOptions}
	for _, opt := range opts {
		opt(&cfg)
	}
	var ip domain.Interpolator
	if ip, err = f.domain.MakeInterpolator(f.part, domain.WithNewton(cfg.newton)); err != nil {
		return
	}
	ev = &Evaluator{field: f, cfg: cfg, interp: ip}
	log.WithFields(log.Fields{
		"structuring": f.domain.Structuring(),
		"part":        f.part,
		"components":  f.Components(),
		"steps":       f.NumTimeSteps(),
	}).Debug("created evaluator")
	return
}

func (ev *Evaluator) Field() *Field { return ev.field }

// Clone returns an independent evaluator over the same field.
func (ev *Evaluator) Clone() *Evaluator {
	ip, err := ev.field.domain.MakeInterpolator(ev.field.part, domain.WithNewton(ev.cfg.newton))
	if err != nil {
		panic(fmt.Errorf("clone of a valid evaluator: %w", err))
	}
	return &Evaluator{field: ev.field, cfg: ev.cfg, interp: ip}
}

func checkTime(t float64) error {
	if math.IsNaN(t) {
		return fmt.Errorf("%w: time %v", ErrNotANumber, t)
	}
	return nil
}

// Value interpolates the field at p and time t into dst.
func (ev *Evaluator) Value(p []float64, t float64, dst []float64) ([]float64, error) {
	if err := checkTime(t); err != nil {
		return dst, err
	}
	if err := ev.interp.Interpolate(p, &ev.w); err != nil {
		return dst, err
	}
	if node := ev.nodeAt(p); node >= 0 {
		return ev.field.valueAt(node, t, dst), nil
	}
	return ev.combine(t, dst)
}

// ValueInCell interpolates at a local coordinate of a cell.
func (ev *Evaluator) ValueInCell(cell int, local []float64, t float64, dst []float64) ([]float64, error) {
	if err := checkTime(t); err != nil {
		return dst, err
	}
	if err := ev.interp.InterpolateCell(cell, local, &ev.w); err != nil {
		return dst, err
	}
	return ev.combine(t, dst)
}

// Gradient is the world space derivative at p, Components rows of
// Dimension entries, row major.
func (ev *Evaluator) Gradient(p []float64, t float64, dst []float64) ([]float64, error) {
	if err := checkTime(t); err != nil {
		return dst, err
	}
	if err := ev.interp.InterpolateGradient(p, &ev.w); err != nil {
		return dst, err
	}
	return ev.combineGradient(t, dst)
}

func (ev *Evaluator) GradientInCell(cell int, local []float64, t float64, dst []float64) ([]float64, error) {
	if err := checkTime(t); err != nil {
		return dst, err
	}
	if err := ev.interp.InterpolateCellGradient(cell, local, &ev.w); err != nil {
		return dst, err
	}
	return ev.combineGradient(t, dst)
}

// nodeAt is the point carrying the dominant weight when p is exactly that
// point, -1 otherwise.
func (ev *Evaluator) nodeAt(p []float64) int {
	if ev.field.part != Points {
		return -1
	}
	var best = -1
	for k, wk := range ev.w.Weights {
		if best < 0 || wk > ev.w.Weights[best] {
			best = k
		}
	}
	if best < 0 {
		return -1
	}
	node := ev.w.Indices[best]
	ev.pbuf = ev.field.domain.PointInto(node, ev.pbuf)
	for j, c := range p {
		if ev.pbuf[j] != c {
			return -1
		}
	}
	return node
}

func (ev *Evaluator) combine(t float64, dst []float64) ([]float64, error) {
	var (
		f         = ev.field
		lo, hi, w = f.bracket(t)
	)
	dst = zeroed(dst, f.Components())
	for k, i := range ev.w.Indices {
		f.accumulate(dst, i, ev.w.Weights[k], lo, hi, w)
	}
	if utils.IsNan(dst) {
		return dst, fmt.Errorf("%w: at cell %d", ErrNotANumber, ev.w.Cell)
	}
	return dst, nil
}

func (ev *Evaluator) combineGradient(t float64, dst []float64) ([]float64, error) {
	var (
		f         = ev.field
		nc        = f.Components()
		gd        = f.domain.Dimension()
		lo, hi, w = f.bracket(t)
		value     = make([]float64, nc)
	)
	dst = zeroed(dst, nc*gd)
	for k, i := range ev.w.Indices {
		for c := range value {
			value[c] = 0
		}
		f.accumulate(value, i, 1, lo, hi, w)
		for c, v := range value {
			for j, g := range ev.w.Gradients[k] {
				dst[c*gd+j] += v * g
			}
		}
	}
	if utils.IsNan(dst) {
		return dst, fmt.Errorf("%w: gradient at cell %d", ErrNotANumber, ev.w.Cell)
	}
	return dst, nil
}

// DiscreteEvaluator reads stored values without spatial interpolation.
type DiscreteEvaluator struct {
	field *Field
}

func (f *Field) MakeDiscreteEvaluator() *DiscreteEvaluator {
	return &DiscreteEvaluator{field: f}
}

func (de *DiscreteEvaluator) NumValues() int    { return de.field.numValues }
func (de *DiscreteEvaluator) NumTimeSteps() int { return de.field.NumTimeSteps() }

func (de *DiscreteEvaluator) checkIndex(i int) error {
	if i < 0 || i >= de.field.numValues {
		return fmt.Errorf("%w: %d, have %d", ErrIndex, i, de.field.numValues)
	}
	return nil
}

// Value is stored value i of time step step.
func (de *DiscreteEvaluator) Value(i, step int, dst []float64) ([]float64, error) {
	if err := de.checkIndex(i); err != nil {
		return dst, err
	}
	if step < 0 || step >= de.field.NumTimeSteps() {
		return dst, fmt.Errorf("%w: %d, have %d", ErrStep, step, de.field.NumTimeSteps())
	}
	return de.field.steps[step].At(i, dst), nil
}

// ValueAt blends value i between the time steps around t.
func (de *DiscreteEvaluator) ValueAt(i int, t float64, dst []float64) ([]float64, error) {
	if err := de.checkIndex(i); err != nil {
		return dst, err
	}
	if err := checkTime(t); err != nil {
		return dst, err
	}
	return de.field.valueAt(i, t, dst), nil
}
