package cellcomplex

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/james-bowman/sparse"
	log "github.com/sirupsen/logrus"

	"github.com/notargets/gofield/cells"
)

// Unstructured is an explicit, immutable cell complex. Adjacency and
// point incidence are built on first use, once, and are safe for
// concurrent readers.
type Unstructured struct {
	numPoints int
	counts    []TypeCount
	types     []cells.Type
	offsets   []int // Cell i occupies indices[offsets[i]:offsets[i+1]]
	indices   []int
	dimension int

	adjacency sync.Once
	eToE      [][]int // Cell to cell across each local face
	eToF      [][]int // Cell to unique face
	faces     []Face

	incidence    sync.Once
	pointToCells *sparse.CSR // numPoints x numCells
}

type faceKey [4]int

func makeFaceKey(face []int) (key faceKey) {
	sorted := append([]int{}, face...)
	sort.Ints(sorted)
	for i := range key {
		key[i] = -1
		if i < len(sorted) {
			key[i] = sorted[i]
		}
	}
	return
}

// New builds a complex from a flattened index buffer grouped by type in
// counts order.
func New(numPoints int, counts []TypeCount, indices []int) (uc *Unstructured, err error) {
	if numPoints <= 0 {
		err = fmt.Errorf("%w: %d points", ErrInvalidCount, numPoints)
		return
	}
	if len(counts) == 0 {
		err = fmt.Errorf("%w: no cells", ErrInvalidCount)
		return
	}
	var (
		total, numCells int
	)
	for _, tc := range counts {
		if !tc.Type.Valid() || tc.Type == cells.Hypercube {
			err = fmt.Errorf("%w: %s", ErrUnsupportedType, tc.Type)
			return
		}
		if tc.Count <= 0 {
			err = fmt.Errorf("%w: %d cells of type %s", ErrInvalidCount, tc.Count, tc.Type)
			return
		}
		total += tc.Count * tc.Type.NumVertices()
		numCells += tc.Count
	}
	if len(indices) != total {
		err = fmt.Errorf("%w: have %d indices, cell counts need %d", ErrShapeMismatch, len(indices), total)
		return
	}
	uc = &Unstructured{
		numPoints: numPoints,
		counts:    append([]TypeCount{}, counts...),
		types:     make([]cells.Type, 0, numCells),
		offsets:   make([]int, 1, numCells+1),
		indices:   append([]int{}, indices...),
	}
	for _, tc := range counts {
		nv := tc.Type.NumVertices()
		if d := tc.Type.Dimension(); d > uc.dimension {
			uc.dimension = d
		}
		for n := 0; n < tc.Count; n++ {
			var (
				start = uc.offsets[len(uc.offsets)-1]
				cell  = uc.indices[start : start+nv]
			)
			if err = validateCell(numPoints, len(uc.types), cell); err != nil {
				return nil, err
			}
			uc.types = append(uc.types, tc.Type)
			uc.offsets = append(uc.offsets, start+nv)
		}
	}
	log.WithFields(log.Fields{
		"points": numPoints,
		"cells":  numCells,
	}).Debug("created unstructured cell complex")
	return
}

func validateCell(numPoints, cellID int, cell []int) error {
	for i, p := range cell {
		if p < 0 || p >= numPoints {
			return fmt.Errorf("%w: cell %d vertex %d is %d, have %d points",
				ErrIndexOutOfRange, cellID, i, p, numPoints)
		}
		for _, q := range cell[:i] {
			if p == q {
				return fmt.Errorf("%w: cell %d repeats point %d", ErrDegenerateCell, cellID, p)
			}
		}
	}
	return nil
}

// FromCells builds a complex from individual cells, consecutive cells of the
// same type are grouped.
func FromCells(numPoints int, cs []cells.Cell) (uc *Unstructured, err error) {
	var (
		counts  []TypeCount
		indices []int
	)
	for i, c := range cs {
		if nv := c.Type.NumVertices(); nv != len(c.Indices) {
			err = fmt.Errorf("%w: cell %d of type %s has %d vertices, needs %d",
				ErrShapeMismatch, i, c.Type, len(c.Indices), nv)
			return
		}
		if n := len(counts); n > 0 && counts[n-1].Type == c.Type {
			counts[n-1].Count++
		} else {
			counts = append(counts, TypeCount{Type: c.Type, Count: 1})
		}
		indices = append(indices, c.Indices...)
	}
	return New(numPoints, counts, indices)
}

func (uc *Unstructured) NumPoints() int          { return uc.numPoints }
func (uc *Unstructured) NumCells() int           { return len(uc.types) }
func (uc *Unstructured) Dimension() int          { return uc.dimension }
func (uc *Unstructured) TypeCounts() []TypeCount { return append([]TypeCount{}, uc.counts...) }

// Indices is the flattened index buffer.
func (uc *Unstructured) Indices() []int { return uc.indices }

func (uc *Unstructured) Cell(i int) cells.Cell {
	return cells.Cell{Type: uc.types[i], Indices: uc.indices[uc.offsets[i]:uc.offsets[i+1]]}
}

func (uc *Unstructured) buildConnectivity() {
	var (
		nc      = len(uc.types)
		faceMap = make(map[faceKey]int)
	)
	uc.eToE = make([][]int, nc)
	uc.eToF = make([][]int, nc)
	for c := 0; c < nc; c++ {
		var (
			cell = uc.Cell(c)
			s    = cell.Strategy()
			nf   = s.NumFaces()
		)
		uc.eToE[c] = make([]int, nf)
		uc.eToF[c] = make([]int, nf)
		for localFaceID := 0; localFaceID < nf; localFaceID++ {
			uc.eToE[c][localFaceID] = -1
			faceVerts := s.FaceVertices(localFaceID, cell.Indices)
			key := makeFaceKey(faceVerts)
			if faceID, exists := faceMap[key]; exists {
				face := uc.faces[faceID]
				if uc.eToE[face.Cell][face.LocalID] == -1 {
					uc.eToE[c][localFaceID] = face.Cell
					uc.eToE[face.Cell][face.LocalID] = c
				}
				uc.eToF[c][localFaceID] = faceID
				continue
			}
			faceID := len(uc.faces)
			uc.faces = append(uc.faces, Face{
				Vertices: faceVerts,
				Cell:     c,
				LocalID:  localFaceID,
			})
			faceMap[key] = faceID
			uc.eToF[c][localFaceID] = faceID
		}
	}
	log.WithFields(log.Fields{
		"cells":         nc,
		"faces":         len(uc.faces),
		"boundaryFaces": uc.countBoundaryFaces(),
	}).Debug("built cell adjacency")
}

func (uc *Unstructured) countBoundaryFaces() (n int) {
	for _, ee := range uc.eToE {
		for _, nbr := range ee {
			if nbr < 0 {
				n++
			}
		}
	}
	return
}

func (uc *Unstructured) FaceNeighbors(i int) []int {
	uc.adjacency.Do(uc.buildConnectivity)
	return uc.eToE[i]
}

// FaceIDs maps each local face of cell i to its unique face.
func (uc *Unstructured) FaceIDs(i int) []int {
	uc.adjacency.Do(uc.buildConnectivity)
	return uc.eToF[i]
}

func (uc *Unstructured) Faces() []Face {
	uc.adjacency.Do(uc.buildConnectivity)
	return uc.faces
}

func (uc *Unstructured) BoundaryFaces() (bf []Face) {
	uc.adjacency.Do(uc.buildConnectivity)
	for c, ee := range uc.eToE {
		s := uc.Cell(c).Strategy()
		for f, nbr := range ee {
			if nbr < 0 {
				bf = append(bf, Face{Vertices: s.FaceVertices(f, uc.Cell(c).Indices), Cell: c, LocalID: f})
			}
		}
	}
	return
}

func (uc *Unstructured) Neighbors(i int) []int {
	return distinct(uc.FaceNeighbors(i), i)
}

func (uc *Unstructured) buildIncidence() {
	dok := sparse.NewDOK(uc.numPoints, len(uc.types))
	for c := range uc.types {
		for _, p := range uc.indices[uc.offsets[c]:uc.offsets[c+1]] {
			dok.Set(p, c, 1)
		}
	}
	uc.pointToCells = dok.ToCSR()
}

func (uc *Unstructured) PointCells(p int) (cs []int) {
	uc.incidence.Do(uc.buildIncidence)
	uc.pointToCells.DoRowNonZero(p, func(_, c int, _ float64) {
		cs = append(cs, c)
	})
	sort.Ints(cs)
	return
}

// EdgeNeighbors lists the cells sharing at least one edge with cell i.
func (uc *Unstructured) EdgeNeighbors(i int) []int {
	var (
		cell = uc.Cell(i)
		s    = cell.Strategy()
		nbrs []int
	)
	for e := 0; e < s.NumEdges(); e++ {
		edge := s.EdgeVertices(e, cell.Indices)
		second := uc.PointCells(edge[1])
		for _, c := range uc.PointCells(edge[0]) {
			if j := sort.SearchInts(second, c); j < len(second) && second[j] == c {
				nbrs = append(nbrs, c)
			}
		}
	}
	return distinct(nbrs, i)
}

// distinct returns the sorted unique non-negative entries other than self.
func distinct(in []int, self int) (out []int) {
	seen := make(map[int]bool, len(in))
	for _, c := range in {
		if c >= 0 && c != self && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Ints(out)
	return
}

type Statistics struct {
	NumPoints     int
	NumCells      int
	NumFaces      int
	BoundaryFaces int
	TypeCounts    map[cells.Type]int
}

func (uc *Unstructured) Statistics() (st Statistics) {
	uc.adjacency.Do(uc.buildConnectivity)
	st = Statistics{
		NumPoints:     uc.numPoints,
		NumCells:      len(uc.types),
		NumFaces:      len(uc.faces),
		BoundaryFaces: uc.countBoundaryFaces(),
		TypeCounts:    make(map[cells.Type]int),
	}
	for _, t := range uc.types {
		st.TypeCounts[t]++
	}
	return
}

func (st Statistics) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Cell Complex Statistics:\n")
	fmt.Fprintf(&b, "  Points: %d\n", st.NumPoints)
	fmt.Fprintf(&b, "  Cells: %d\n", st.NumCells)
	fmt.Fprintf(&b, "  Faces: %d\n", st.NumFaces)
	fmt.Fprintf(&b, "  Cell types:\n")
	types := make([]int, 0, len(st.TypeCounts))
	for t := range st.TypeCounts {
		types = append(types, int(t))
	}
	sort.Ints(types)
	for _, t := range types {
		fmt.Fprintf(&b, "    %s: %d\n", cells.Type(t), st.TypeCounts[cells.Type(t)])
	}
	fmt.Fprintf(&b, "  Boundary faces: %d\n", st.BoundaryFaces)
	return b.String()
}
