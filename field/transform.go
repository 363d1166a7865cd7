package field

import (
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/notargets/gofield/data"
	"github.com/notargets/gofield/domain"
	"github.com/notargets/gofield/utils"
)

// EvaluateMany evaluates f at every point, split over parallelDegree
// goroutines each holding its own evaluator. errs[i] is the error of point
// i, values[i] is nil when it failed.
func EvaluateMany(f *Field, points [][]float64, t float64, parallelDegree int, opts ...Option) (values [][]float64, errs []error, err error) {
	var (
		n          = len(points)
		evaluators []*Evaluator
		wg         = sync.WaitGroup{}
	)
	values, errs = make([][]float64, n), make([]error, n)
	if n == 0 {
		return
	}
	pm := utils.NewPartitionMap(utils.DefaultParallelDegree(parallelDegree, n), n)
	evaluators = make([]*Evaluator, pm.ParallelDegree)
	if evaluators[0], err = f.MakeEvaluator(opts...); err != nil {
		return
	}
	for np := 1; np < pm.ParallelDegree; np++ {
		evaluators[np] = evaluators[0].Clone()
	}
	for np := 0; np < pm.ParallelDegree; np++ {
		wg.Add(1)
		go func(np int) {
			defer wg.Done()
			ev := evaluators[np]
			kMin, kMax := pm.GetBucketRange(np)
			for k := kMin; k < kMax; k++ {
				var v []float64
				if v, errs[k] = ev.Value(points[k], t, nil); errs[k] == nil {
					values[k] = v
				}
			}
		}(np)
	}
	wg.Wait()
	log.WithFields(log.Fields{"points": n, "threads": pm.ParallelDegree}).Debug("evaluated points")
	return
}

// SubDomain is a domain addressing a subset of its parent's points.
type SubDomain interface {
	domain.Domain
	Parent() domain.Domain
	Lookup() []int
}

// Restrict maps a point based field onto a sub domain of its domain. The
// values are a view of the parent values, nothing is copied.
func Restrict(f *Field, sub SubDomain) (r *Field, err error) {
	if sub.Parent() != f.domain {
		err = ErrDomainMismatch
		return
	}
	if f.part != Points {
		err = fmt.Errorf("%w: restriction of %s values", ErrDomainMismatch, f.part)
		return
	}
	var (
		lookup = sub.Lookup()
		nl     = len(lookup)
		full   = make([]int, 0, nl*f.NumTimeSteps())
		view   *data.ValueArray
	)
	for s := 0; s < f.NumTimeSteps(); s++ {
		for _, i := range lookup {
			full = append(full, s*f.numValues+i)
		}
	}
	if view, err = f.values.Subset(full); err != nil {
		return
	}
	return New(sub, Points, view, f.timeSteps...)
}

// Sample builds a point based field from fn evaluated at every domain point
// and time step. The points are split over every CPU, fn is called
// concurrently.
func Sample(d domain.Domain, layout data.Layout, precision data.Precision,
	fn func(p []float64, t float64, dst []float64), timeSteps ...float64) (f *Field, err error) {
	var (
		npts  = d.NumPoints()
		ns    = max(1, len(timeSteps))
		n     = npts * ns
		comps = layout.Components()
		wg    = sync.WaitGroup{}
		va    *data.ValueArray
	)
	if comps <= 0 {
		err = fmt.Errorf("%w: %v", data.ErrLayout, layout)
		return
	}
	values := make([]float64, n*comps)
	pm := utils.NewPartitionMap(utils.DefaultParallelDegree(0, n), n)
	for np := 0; np < pm.ParallelDegree; np++ {
		wg.Add(1)
		go func(np int) {
			defer wg.Done()
			var pb []float64
			kMin, kMax := pm.GetBucketRange(np)
			for k := kMin; k < kMax; k++ {
				var t float64
				if len(timeSteps) > 0 {
					t = timeSteps[k/npts]
				}
				pb = d.PointInto(k%npts, pb)
				fn(pb, t, values[k*comps:(k+1)*comps])
			}
		}(np)
	}
	wg.Wait()
	if va, err = data.MakeValueArray(values, layout, precision); err != nil {
		return
	}
	log.WithFields(log.Fields{"values": n, "threads": pm.ParallelDegree}).Debug("sampled field")
	return New(d, Points, va, timeSteps...)
}

// Threshold evaluates f at every point of its domain at time t and returns
// the indices of the points whose value passes keep, in ascending order.
// Points the evaluator can not locate are skipped.
func Threshold(f *Field, t float64, keep func(v []float64) bool, parallelDegree int, opts ...Option) (indices []int, err error) {
	var (
		d      = f.domain
		points = make([][]float64, d.NumPoints())
		values [][]float64
	)
	for i := range points {
		points[i] = d.Point(i)
	}
	if values, _, err = EvaluateMany(f, points, t, parallelDegree, opts...); err != nil {
		return
	}
	for i, v := range values {
		if v != nil && keep(v) {
			indices = append(indices, i)
		}
	}
	return
}

// Above keeps values whose first component exceeds limit.
func Above(limit float64) func(v []float64) bool {
	return func(v []float64) bool { return v[0] > limit }
}
