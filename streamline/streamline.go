// Package streamline integrates curves tangent to a vector field.
package streamline

import (
	"errors"
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/gofield/domain"
	"github.com/notargets/gofield/field"
)

// StagnationSpeed is the speed below which a line stops.
const StagnationSpeed = 1.e-12

var (
	ErrNotVectorField = errors.New("streamlines need a vector field of the domain dimension")
	ErrOptions        = errors.New("invalid streamline options")
)

type Method uint8

const (
	Euler Method = iota
	RK4
)

func (m Method) String() string {
	if m == RK4 {
		return "RK4"
	}
	return "Euler"
}

func ParseMethod(name string) (m Method, err error) {
	switch name {
	case "Euler", "euler":
		return Euler, nil
	case "RK4", "rk4":
		return RK4, nil
	}
	err = fmt.Errorf("%w: unknown method %q", ErrOptions, name)
	return
}

// Reason tells why a line ended.
type Reason uint8

const (
	MaxSteps Reason = iota
	LeftDomain
	Stagnation
)

func (r Reason) String() string {
	switch r {
	case LeftDomain:
		return "LeftDomain"
	case Stagnation:
		return "Stagnation"
	}
	return "MaxSteps"
}

type Options struct {
	Method   Method
	StepSize float64
	MaxSteps int
	// AdaptiveTolerance above zero lets Euler halve and double its step by
	// comparing one full step against two half steps
	AdaptiveTolerance float64
	Time              float64 // The field is sampled at this time
}

type Line struct {
	Points [][]float64
	Reason Reason
}

// Length is the arc length of the line.
func (l Line) Length() (length float64) {
	for i := 1; i < len(l.Points); i++ {
		length += floats.Distance(l.Points[i-1], l.Points[i], 2)
	}
	return
}

type tracer struct {
	ev   *field.Evaluator
	opts Options
	k    [4][]float64
	tmp  []float64
}

// velocity evaluates into dst, outside reports whether p left the domain.
func (tr *tracer) velocity(p, dst []float64) (outside bool, err error) {
	if _, err = tr.ev.Value(p, tr.opts.Time, dst); err != nil {
		if errors.Is(err, domain.ErrOutsideDomain) {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

// Trace integrates from seed until the line leaves the domain, reaches a
// stagnation point or has taken MaxSteps steps.
func Trace(ev *field.Evaluator, seed []float64, opts Options) (line Line, err error) {
	var (
		f  = ev.Field()
		gd = f.Domain().Dimension()
	)
	if f.Components() != gd {
		err = fmt.Errorf("%w: %d components in %d dimensions", ErrNotVectorField, f.Components(), gd)
		return
	}
	if !(opts.StepSize > 0) || math.IsInf(opts.StepSize, 0) || opts.MaxSteps < 1 || opts.AdaptiveTolerance < 0 {
		err = fmt.Errorf("%w: %+v", ErrOptions, opts)
		return
	}
	tr := &tracer{ev: ev, opts: opts, tmp: make([]float64, gd)}
	for i := range tr.k {
		tr.k[i] = make([]float64, gd)
	}
	var (
		p       = append([]float64{}, seed...)
		h       = opts.StepSize
		outside bool
	)
	if outside, err = tr.velocity(p, tr.k[0]); err != nil {
		return
	}
	if outside {
		err = fmt.Errorf("%w: seed %v", domain.ErrOutsideDomain, seed)
		return
	}
	line.Points = append(line.Points, append([]float64{}, p...))
	for step := 0; ; step++ {
		if step == opts.MaxSteps {
			line.Reason = MaxSteps
			break
		}
		if floats.Norm(tr.k[0], 2) < StagnationSpeed {
			line.Reason = Stagnation
			break
		}
		var next []float64
		switch opts.Method {
		case RK4:
			next, outside, err = tr.rk4(p, h)
		default:
			next, h, outside, err = tr.euler(p, h)
		}
		if err != nil {
			return
		}
		if outside {
			line.Reason = LeftDomain
			break
		}
		// Velocity at the new point starts the next step
		if outside, err = tr.velocity(next, tr.k[0]); err != nil {
			return
		}
		if outside {
			line.Reason = LeftDomain
			break
		}
		p = next
		line.Points = append(line.Points, next)
	}
	log.WithFields(log.Fields{
		"method": opts.Method,
		"points": len(line.Points),
		"reason": line.Reason,
	}).Debug("traced streamline")
	return
}

// euler takes one step from p with k[0] holding the velocity at p. The
// adaptive variant returns the step size for the next step.
func (tr *tracer) euler(p []float64, h float64) (next []float64, hNext float64, outside bool, err error) {
	var (
		v0  = tr.k[0]
		tol = tr.opts.AdaptiveTolerance
	)
	if tol == 0 {
		next = floats.AddScaledTo(make([]float64, len(p)), p, h, v0)
		return next, h, false, nil
	}
	var (
		hMin = tr.opts.StepSize / 1024
		hMax = tr.opts.StepSize * 16
	)
	for {
		full := floats.AddScaledTo(make([]float64, len(p)), p, h, v0)
		mid := floats.AddScaledTo(tr.tmp, p, 0.5*h, v0)
		if outside, err = tr.velocity(mid, tr.k[1]); err != nil || outside {
			if outside && h > hMin {
				h *= 0.5
				continue
			}
			return
		}
		next = floats.AddScaledTo(make([]float64, len(p)), mid, 0.5*h, tr.k[1])
		estimate := floats.Distance(full, next, 2)
		switch {
		case estimate > tol && h > hMin:
			h *= 0.5
			continue
		case estimate < 0.25*tol:
			hNext = math.Min(2*h, hMax)
		default:
			hNext = h
		}
		return next, hNext, false, nil
	}
}

// rk4 is the classical fourth order Runge Kutta step.
func (tr *tracer) rk4(p []float64, h float64) (next []float64, outside bool, err error) {
	var (
		k   = tr.k
		tmp = tr.tmp
	)
	for _, s := range []struct {
		in, out int
		c       float64
	}{{0, 1, 0.5}, {1, 2, 0.5}, {2, 3, 1}} {
		floats.AddScaledTo(tmp, p, s.c*h, k[s.in])
		if outside, err = tr.velocity(tmp, k[s.out]); err != nil || outside {
			return
		}
	}
	next = make([]float64, len(p))
	for j := range next {
		next[j] = p[j] + h/6*(k[0][j]+2*k[1][j]+2*k[2][j]+k[3][j])
	}
	return
}
