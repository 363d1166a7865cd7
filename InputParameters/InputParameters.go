package InputParameters

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ghodss/yaml"

	"github.com/notargets/gofield/cellcomplex"
	"github.com/notargets/gofield/cells"
	"github.com/notargets/gofield/data"
	"github.com/notargets/gofield/domain"
	"github.com/notargets/gofield/field"
	"github.com/notargets/gofield/streamline"
)

var ErrInput = errors.New("invalid dataset description")

// Dataset describes a domain, a field over it and the queries to run, as
// read from a YAML input file
type Dataset struct {
	Title          string         `yaml:"Title"`
	Grid           GridSpec       `yaml:"Grid"`
	Field          FieldSpec      `yaml:"Field"`
	Newton         NewtonSpec     `yaml:"Newton"`
	Streamline     StreamlineSpec `yaml:"Streamline"`
	Probes         [][]float64    `yaml:"Probes"`
	ParallelDegree int            `yaml:"ParallelDegree"` // Zero uses every CPU
}

type GridSpec struct {
	Type      string      `yaml:"Type"` // Uniform, Rectilinear, Curvilinear, Unstructured, Triangulated or PointSet
	Extent    []int       `yaml:"Extent"`
	Origin    []float64   `yaml:"Origin"`
	Spacing   []float64   `yaml:"Spacing"`
	Axes      [][]float64 `yaml:"Axes"`
	Points    [][]float64 `yaml:"Points"`
	Cells     []CellBlock `yaml:"Cells"`
	Precision string      `yaml:"Precision"`
}

// CellBlock is a run of cells of one type, Indices holds their vertices back
// to back
type CellBlock struct {
	Type    string `yaml:"Type"`
	Indices []int  `yaml:"Indices"`
}

type FieldSpec struct {
	Function   string    `yaml:"Function"` // Name in Functions, or empty when Values are given
	Part       string    `yaml:"Part"`     // Points (default) or Cells
	Values     []float64 `yaml:"Values"`
	Components int       `yaml:"Components"`
	TimeSteps  []float64 `yaml:"TimeSteps"`
	Precision  string    `yaml:"Precision"`
}

type NewtonSpec struct {
	MaxIterations     int     `yaml:"MaxIterations"`
	Tolerance         float64 `yaml:"Tolerance"`
	ContainsTolerance float64 `yaml:"ContainsTolerance"`
}

type StreamlineSpec struct {
	Method            string      `yaml:"Method"`
	StepSize          float64     `yaml:"StepSize"`
	MaxSteps          int         `yaml:"MaxSteps"`
	AdaptiveTolerance float64     `yaml:"AdaptiveTolerance"`
	Time              float64     `yaml:"Time"`
	Seeds             [][]float64 `yaml:"Seeds"`
}

// Function is an analytic field, Vector functions have one component per
// point dimension
type Function struct {
	Vector bool
	Eval   func(p []float64, t float64, dst []float64)
}

var Functions = map[string]Function{
	"constant": {Eval: func(_ []float64, _ float64, dst []float64) { dst[0] = 1 }},
	"linear": {Eval: func(p []float64, _ float64, dst []float64) {
		dst[0] = 1
		for j, c := range p {
			dst[0] += float64(j+1) * c
		}
	}},
	"radial": {Eval: func(p []float64, _ float64, dst []float64) {
		dst[0] = 0
		for _, c := range p {
			dst[0] += c * c
		}
	}},
	"wave": {Eval: func(p []float64, t float64, dst []float64) {
		dst[0] = math.Sin(2*math.Pi*(p[0]-t)) * math.Exp(-t)
	}},
	"uniform": {Vector: true, Eval: func(p []float64, _ float64, dst []float64) {
		for j := range dst {
			dst[j] = 0
		}
		dst[0] = 1
	}},
	"rotation": {Vector: true, Eval: func(p []float64, _ float64, dst []float64) {
		for j := range dst {
			dst[j] = 0
		}
		if len(p) > 1 {
			dst[0], dst[1] = -p[1], p[0]
		}
	}},
	"sink": {Vector: true, Eval: func(p []float64, _ float64, dst []float64) {
		for j, c := range p {
			dst[j] = -c
		}
	}},
}

func FunctionNames() (names []string) {
	for name := range Functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return
}

func (ds *Dataset) Parse(data []byte) error {
	return yaml.Unmarshal(data, ds)
}

func (ds *Dataset) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ds.Title)
	fmt.Printf("[%s]\t\t= Grid Type\n", ds.Grid.Type)
	if len(ds.Grid.Extent) != 0 {
		fmt.Printf("%v\t\t= Extent\n", ds.Grid.Extent)
	}
	if len(ds.Grid.Points) != 0 {
		fmt.Printf("[%d]\t\t\t= Points\n", len(ds.Grid.Points))
	}
	for _, cb := range ds.Grid.Cells {
		fmt.Printf("Cells[%s] = %d indices\n", cb.Type, len(cb.Indices))
	}
	if ds.Field.Function != "" {
		fmt.Printf("[%s]\t\t= Function\n", ds.Field.Function)
	} else {
		fmt.Printf("[%d]\t\t\t= Values\n", len(ds.Field.Values))
	}
	fmt.Printf("%v\t\t= TimeSteps\n", ds.Field.TimeSteps)
	fmt.Printf("[%d]\t\t\t= Probes\n", len(ds.Probes))
}

func (ds *Dataset) Validate() error {
	switch strings.ToLower(ds.Grid.Type) {
	case "uniform":
		if len(ds.Grid.Extent) == 0 || len(ds.Grid.Origin) != len(ds.Grid.Extent) || len(ds.Grid.Spacing) != len(ds.Grid.Extent) {
			return fmt.Errorf("%w: uniform grids need Extent, Origin and Spacing of one length", ErrInput)
		}
	case "rectilinear":
		if len(ds.Grid.Axes) == 0 {
			return fmt.Errorf("%w: rectilinear grids need Axes", ErrInput)
		}
	case "curvilinear":
		if len(ds.Grid.Extent) == 0 || len(ds.Grid.Points) == 0 {
			return fmt.Errorf("%w: curvilinear grids need Extent and Points", ErrInput)
		}
	case "unstructured":
		if len(ds.Grid.Points) == 0 || len(ds.Grid.Cells) == 0 {
			return fmt.Errorf("%w: unstructured grids need Points and Cells", ErrInput)
		}
	case "triangulated", "pointset":
		if len(ds.Grid.Points) == 0 {
			return fmt.Errorf("%w: %s needs Points", ErrInput, ds.Grid.Type)
		}
	default:
		return fmt.Errorf("%w: unknown grid type %q", ErrInput, ds.Grid.Type)
	}
	if ds.Field.Function == "" && len(ds.Field.Values) == 0 {
		return fmt.Errorf("%w: the field needs a Function or Values", ErrInput)
	}
	if _, ok := Functions[ds.Field.Function]; ds.Field.Function != "" && !ok {
		return fmt.Errorf("%w: unknown function %q, have %v", ErrInput, ds.Field.Function, FunctionNames())
	}
	if _, err := ds.part(); err != nil {
		return err
	}
	if _, err := precision(ds.Grid.Precision); err != nil {
		return fmt.Errorf("%w: %v", ErrInput, err)
	}
	if _, err := precision(ds.Field.Precision); err != nil {
		return fmt.Errorf("%w: %v", ErrInput, err)
	}
	return nil
}

func precision(name string) (data.Precision, error) {
	if name == "" {
		return data.Float64, nil
	}
	return data.ParsePrecision(name)
}

func (ds *Dataset) part() (field.DomainPart, error) {
	switch strings.ToLower(ds.Field.Part) {
	case "", "points":
		return field.Points, nil
	case "cells":
		return field.Cells, nil
	}
	return field.Points, fmt.Errorf("%w: unknown part %q", ErrInput, ds.Field.Part)
}

// NewtonOptions fills unset entries with the defaults.
func (ds *Dataset) NewtonOptions() (opts cells.NewtonOptions) {
	opts = cells.DefaultNewtonOptions
	if ds.Newton.MaxIterations > 0 {
		opts.MaxIterations = ds.Newton.MaxIterations
	}
	if ds.Newton.Tolerance > 0 {
		opts.Tolerance = ds.Newton.Tolerance
	}
	if ds.Newton.ContainsTolerance > 0 {
		opts.ContainsTolerance = ds.Newton.ContainsTolerance
	}
	return
}

func (ds *Dataset) BuildGrid() (d domain.Domain, err error) {
	if err = ds.Validate(); err != nil {
		return
	}
	var (
		g    = ds.Grid
		prec data.Precision
		pts  *data.ValueArray
	)
	prec, _ = precision(g.Precision)
	if len(g.Points) != 0 {
		if pts, err = data.MakeVectors(g.Points, prec); err != nil {
			return
		}
	}
	switch strings.ToLower(g.Type) {
	case "uniform":
		return asDomain(domain.MakeUniformGrid(g.Extent, g.Origin, g.Spacing))
	case "rectilinear":
		return asDomain(domain.MakeRectilinearGrid(g.Axes))
	case "curvilinear":
		return asDomain(domain.MakeCurvilinearGrid(g.Extent, pts))
	case "triangulated":
		return asDomain(domain.MakeTriangulatedGrid(pts))
	case "pointset":
		return asDomain(domain.MakePointSet(pts))
	}
	var (
		counts  = make([]cellcomplex.TypeCount, len(g.Cells))
		indices []int
	)
	for i, cb := range g.Cells {
		var t cells.Type
		if t, err = cells.ParseType(cb.Type); err != nil {
			return
		}
		nv := t.NumVertices()
		if nv == 0 || len(cb.Indices)%nv != 0 {
			err = fmt.Errorf("%w: %d indices for %s cells", ErrInput, len(cb.Indices), t)
			return
		}
		counts[i] = cellcomplex.TypeCount{Type: t, Count: len(cb.Indices) / nv}
		indices = append(indices, cb.Indices...)
	}
	return asDomain(domain.MakeGrid(pts, counts, indices))
}

// asDomain keeps a failed constructor from returning a typed nil.
func asDomain[D domain.Domain](d D, err error) (domain.Domain, error) {
	if err != nil {
		return nil, err
	}
	return d, nil
}

// BuildField samples the function at points or cell centers, or wraps the
// given values.
func (ds *Dataset) BuildField(d domain.Domain) (f *field.Field, err error) {
	var (
		part, _ = ds.part()
		prec, _ = precision(ds.Field.Precision)
		va      *data.ValueArray
	)
	if ds.Field.Function == "" {
		layout := data.Scalar
		if ds.Field.Components > 1 {
			layout = data.Vector(ds.Field.Components)
		}
		if va, err = data.MakeValueArray(ds.Field.Values, layout, prec); err != nil {
			return
		}
		return field.New(d, part, va, ds.Field.TimeSteps...)
	}
	fn := Functions[ds.Field.Function]
	layout := data.Scalar
	if fn.Vector {
		layout = data.Vector(d.Dimension())
	}
	if part == field.Points {
		return field.Sample(d, layout, prec, fn.Eval, ds.Field.TimeSteps...)
	}
	g, ok := d.(domain.Grid)
	if !ok {
		err = fmt.Errorf("%w: %s domain", field.ErrNeedsGrid, d.Structuring())
		return
	}
	var (
		nc = g.NumCells()
		ts = ds.Field.TimeSteps
	)
	va, err = data.MakeData(nc*max(1, len(ts)), layout, prec, func(i int, dst []float64) {
		var t float64
		if len(ts) > 0 {
			t = ts[i/nc]
		}
		fn.Eval(g.CellBounds(i%nc).Center(), t, dst)
	})
	if err != nil {
		return
	}
	return field.New(d, part, va, ts...)
}

func (ds *Dataset) StreamlineOptions() (opts streamline.Options, err error) {
	var s = ds.Streamline
	opts = streamline.Options{
		StepSize:          s.StepSize,
		MaxSteps:          s.MaxSteps,
		AdaptiveTolerance: s.AdaptiveTolerance,
		Time:              s.Time,
	}
	if s.Method != "" {
		opts.Method, err = streamline.ParseMethod(s.Method)
	}
	return
}
