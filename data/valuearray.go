// Package data holds the immutable value buffers shared by domains and
// fields.
package data

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrShape     = errors.New("value buffer does not match layout")
	ErrNotFinite = errors.New("non-finite value")
	ErrLayout    = errors.New("invalid layout")
	ErrIndex     = errors.New("value index out of range")
)

type Precision uint8

const (
	Float64 Precision = iota
	Float32
)

func (p Precision) String() string {
	switch p {
	case Float64:
		return "FLOAT64"
	case Float32:
		return "FLOAT32"
	}
	return "Invalid"
}

func (p Precision) Size() int {
	if p == Float32 {
		return 4
	}
	return 8
}

func ParsePrecision(name string) (p Precision, err error) {
	switch strings.ToUpper(name) {
	case "", "FLOAT64", "DOUBLE":
		p = Float64
	case "FLOAT32", "FLOAT":
		p = Float32
	default:
		err = fmt.Errorf("unknown precision %q", name)
	}
	return
}

type LayoutKind uint8

const (
	ScalarKind LayoutKind = iota
	VectorKind
	TensorKind
)

// Layout is the component structure of one value. Tensors are N x N, row
// major.
type Layout struct {
	Kind LayoutKind
	N    int
}

var Scalar = Layout{Kind: ScalarKind, N: 1}

func Vector(n int) Layout { return Layout{Kind: VectorKind, N: n} }
func Tensor(n int) Layout { return Layout{Kind: TensorKind, N: n} }

func (l Layout) Components() int {
	switch l.Kind {
	case ScalarKind:
		return 1
	case VectorKind:
		return l.N
	case TensorKind:
		return l.N * l.N
	}
	return 0
}

func (l Layout) String() string {
	switch l.Kind {
	case ScalarKind:
		return "Scalar"
	case VectorKind:
		return fmt.Sprintf("Vector(%d)", l.N)
	case TensorKind:
		return fmt.Sprintf("Tensor(%dx%d)", l.N, l.N)
	}
	return "Invalid"
}

// ValueArray is an immutable array of values in one Layout. Views made with
// Slice and Subset share the storage of their source.
type ValueArray struct {
	precision Precision
	layout    Layout
	comps     int
	f64       []float64
	f32       []float32
	offset    int   // Storage index of value 0 (or of lookup targets)
	lookup    []int // Optional remap of value i to storage offset+lookup[i]
	n         int
}

func checkLayout(layout Layout) (comps int, err error) {
	if comps = layout.Components(); comps <= 0 || (layout.Kind == ScalarKind && layout.N != 1) {
		err = fmt.Errorf("%w: %v", ErrLayout, layout)
	}
	return
}

// MakeValueArray copies values, grouped by layout, into storage of the given
// precision. Values that are not finite once stored are rejected.
func MakeValueArray(values []float64, layout Layout, precision Precision) (va *ValueArray, err error) {
	var comps int
	if comps, err = checkLayout(layout); err != nil {
		return
	}
	if len(values)%comps != 0 {
		err = fmt.Errorf("%w: %d values for %d components", ErrShape, len(values), comps)
		return
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			err = fmt.Errorf("%w: entry %d is %v", ErrNotFinite, i, v)
			return
		}
		// Narrowing overflows to Inf
		if precision == Float32 && math.IsInf(float64(float32(v)), 0) {
			err = fmt.Errorf("%w: entry %d (%v) overflows %s", ErrNotFinite, i, v, Float32)
			return
		}
	}
	va = &ValueArray{
		precision: precision,
		layout:    layout,
		comps:     comps,
		n:         len(values) / comps,
	}
	switch precision {
	case Float32:
		va.f32 = make([]float32, len(values))
		for i, v := range values {
			va.f32[i] = float32(v)
		}
	default:
		va.precision = Float64
		va.f64 = append([]float64{}, values...)
	}
	return
}

// MakeData generates n values, gen fills the components of value i.
func MakeData(n int, layout Layout, precision Precision, gen func(i int, dst []float64)) (va *ValueArray, err error) {
	var comps int
	if comps, err = checkLayout(layout); err != nil {
		return
	}
	values := make([]float64, n*comps)
	for i := 0; i < n; i++ {
		gen(i, values[i*comps:(i+1)*comps])
	}
	return MakeValueArray(values, layout, precision)
}

// MakeVectors packs equal length coordinate tuples, as used for points.
func MakeVectors(vs [][]float64, precision Precision) (va *ValueArray, err error) {
	if len(vs) == 0 {
		err = fmt.Errorf("%w: no vectors", ErrShape)
		return
	}
	var (
		dim    = len(vs[0])
		values = make([]float64, 0, dim*len(vs))
	)
	for i, v := range vs {
		if len(v) != dim {
			err = fmt.Errorf("%w: vector %d has %d components, expected %d", ErrShape, i, len(v), dim)
			return
		}
		values = append(values, v...)
	}
	return MakeValueArray(values, Vector(dim), precision)
}

func (va *ValueArray) Len() int             { return va.n }
func (va *ValueArray) Layout() Layout       { return va.layout }
func (va *ValueArray) Components() int      { return va.comps }
func (va *ValueArray) Precision() Precision { return va.precision }

func (va *ValueArray) storage(i int) int {
	if i < 0 || i >= va.n {
		panic(fmt.Sprintf("value index %d out of range [0,%d)", i, va.n))
	}
	if va.lookup != nil {
		return (va.offset + va.lookup[i]) * va.comps
	}
	return (va.offset + i) * va.comps
}

// At copies value i into dst, allocating when dst is too short.
func (va *ValueArray) At(i int, dst []float64) []float64 {
	if cap(dst) < va.comps {
		dst = make([]float64, va.comps)
	}
	dst = dst[:va.comps]
	s := va.storage(i)
	if va.f32 != nil {
		for j := range dst {
			dst[j] = float64(va.f32[s+j])
		}
	} else {
		copy(dst, va.f64[s:s+va.comps])
	}
	return dst
}

// Scalar returns the first component of value i.
func (va *ValueArray) Scalar(i int) float64 {
	s := va.storage(i)
	if va.f32 != nil {
		return float64(va.f32[s])
	}
	return va.f64[s]
}

// AddScaledTo accumulates w times value i into dst.
func (va *ValueArray) AddScaledTo(dst []float64, i int, w float64) {
	s := va.storage(i)
	if va.f32 != nil {
		for j := 0; j < va.comps; j++ {
			dst[j] += w * float64(va.f32[s+j])
		}
		return
	}
	for j, v := range va.f64[s : s+va.comps] {
		dst[j] += w * v
	}
}

// Slice is the view of values [start, end).
func (va *ValueArray) Slice(start, end int) *ValueArray {
	if start < 0 || end > va.n || start > end {
		panic(fmt.Sprintf("slice [%d,%d) out of range [0,%d)", start, end, va.n))
	}
	view := *va
	view.n = end - start
	if va.lookup != nil {
		view.lookup = va.lookup[start:end]
	} else {
		view.offset += start
	}
	return &view
}

// Subset is the view whose value i is value lookup[i] of the receiver.
func (va *ValueArray) Subset(lookup []int) (view *ValueArray, err error) {
	composed := make([]int, len(lookup))
	for i, l := range lookup {
		if l < 0 || l >= va.n {
			err = fmt.Errorf("%w: lookup %d is %d, have %d values", ErrIndex, i, l, va.n)
			return
		}
		if va.lookup != nil {
			composed[i] = va.lookup[l]
		} else {
			composed[i] = l
		}
	}
	v := *va
	v.lookup = composed
	v.n = len(lookup)
	view = &v
	return
}

// Float64s copies all values, flattened.
func (va *ValueArray) Float64s() (values []float64) {
	values = make([]float64, 0, va.n*va.comps)
	var buf []float64
	for i := 0; i < va.n; i++ {
		buf = va.At(i, buf)
		values = append(values, buf...)
	}
	return
}

// Bytes is the memory footprint of the storage and index tables.
func (va *ValueArray) Bytes() int {
	return len(va.f64)*8 + len(va.f32)*4 + len(va.lookup)*8
}
