// Package field associates sampled values with a domain and evaluates them
// anywhere in space and time.
package field

import (
	"fmt"
	"math"
	"sort"

	"github.com/notargets/gofield/data"
	"github.com/notargets/gofield/domain"
)

type DomainPart = domain.Part

const (
	Points = domain.Points
	Cells  = domain.Cells
)

type TimeBehavior uint8

const (
	Steady TimeBehavior = iota
	Unsteady
)

func (tb TimeBehavior) String() string {
	if tb == Unsteady {
		return "Unsteady"
	}
	return "Steady"
}

// Field is immutable. Values hold NumTimeSteps blocks of NumValues entries,
// one block per time step in time order.
type Field struct {
	domain    domain.Domain
	part      DomainPart
	values    *data.ValueArray
	steps     []*data.ValueArray
	timeSteps []float64
	numValues int
}

// New attaches values to the points or cells of d. With time steps the
// values hold one block per step, in step order.
func New(d domain.Domain, part DomainPart, values *data.ValueArray, timeSteps ...float64) (f *Field, err error) {
	var nv int
	switch part {
	case Points:
		nv = d.NumPoints()
	case Cells:
		g, ok := d.(domain.Grid)
		if !ok {
			err = fmt.Errorf("%w: %s domain", ErrNeedsGrid, d.Structuring())
			return
		}
		nv = g.NumCells()
	default:
		err = fmt.Errorf("%w: unknown part %d", ErrShape, part)
		return
	}
	if values == nil {
		err = fmt.Errorf("%w: no values", ErrShape)
		return
	}
	for i, t := range timeSteps {
		if math.IsNaN(t) || math.IsInf(t, 0) || (i > 0 && t <= timeSteps[i-1]) {
			err = fmt.Errorf("%w: %v", ErrTimeSteps, timeSteps)
			return
		}
	}
	ns := max(1, len(timeSteps))
	if values.Len() != nv*ns {
		err = fmt.Errorf("%w: %d values for %d %s and %d time steps",
			ErrShape, values.Len(), nv, part, ns)
		return
	}
	f = &Field{
		domain:    d,
		part:      part,
		values:    values,
		steps:     make([]*data.ValueArray, ns),
		timeSteps: append([]float64{}, timeSteps...),
		numValues: nv,
	}
	for s := range f.steps {
		f.steps[s] = values.Slice(s*nv, (s+1)*nv)
	}
	return
}

func (f *Field) Domain() domain.Domain    { return f.domain }
func (f *Field) Part() DomainPart         { return f.part }
func (f *Field) Values() *data.ValueArray { return f.values }
func (f *Field) Layout() data.Layout      { return f.values.Layout() }
func (f *Field) Components() int          { return f.values.Components() }
func (f *Field) NumValues() int           { return f.numValues }
func (f *Field) NumTimeSteps() int        { return len(f.steps) }
func (f *Field) TimeSteps() []float64     { return append([]float64{}, f.timeSteps...) }

// Step is the view of the values stored for time step s.
func (f *Field) Step(s int) *data.ValueArray { return f.steps[s] }

func (f *Field) TimeBehavior() TimeBehavior {
	if len(f.timeSteps) > 1 {
		return Unsteady
	}
	return Steady
}

// TimeRange is unbounded for fields without time steps.
func (f *Field) TimeRange() (first, last float64) {
	if len(f.timeSteps) == 0 {
		return math.Inf(-1), math.Inf(1)
	}
	return f.timeSteps[0], f.timeSteps[len(f.timeSteps)-1]
}

// bracket finds the steps around t, the value at t is
// (1-w)*steps[lo] + w*steps[hi]. Outside the stored range the nearest step
// is used.
func (f *Field) bracket(t float64) (lo, hi int, w float64) {
	var ts = f.timeSteps
	switch {
	case len(ts) <= 1 || t <= ts[0]:
		return 0, 0, 0
	case t >= ts[len(ts)-1]:
		return len(ts) - 1, len(ts) - 1, 0
	}
	hi = sort.SearchFloat64s(ts, t)
	if ts[hi] == t {
		return hi, hi, 0
	}
	lo = hi - 1
	w = (t - ts[lo]) / (ts[hi] - ts[lo])
	return
}

// accumulate adds weight times the time blended value i into dst.
func (f *Field) accumulate(dst []float64, i int, weight float64, lo, hi int, w float64) {
	if lo == hi {
		f.steps[lo].AddScaledTo(dst, i, weight)
		return
	}
	f.steps[lo].AddScaledTo(dst, i, weight*(1-w))
	f.steps[hi].AddScaledTo(dst, i, weight*w)
}

func (f *Field) valueAt(i int, t float64, dst []float64) []float64 {
	lo, hi, w := f.bracket(t)
	if lo == hi {
		return f.steps[lo].At(i, dst)
	}
	dst = zeroed(dst, f.Components())
	f.accumulate(dst, i, 1, lo, hi, w)
	return dst
}

func zeroed(dst []float64, n int) []float64 {
	if cap(dst) < n {
		return make([]float64, n)
	}
	dst = dst[:n]
	for i := range dst {
		dst[i] = 0
	}
	return dst
}
