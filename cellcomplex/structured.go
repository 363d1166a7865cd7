package cellcomplex

import (
	"github.com/notargets/gofield/cells"
)

// Structured is the implicit complex of a structured grid, all queries are
// index arithmetic on the hyper cell strategy.
type Structured struct {
	hyper *cells.PrimaryHyperCellStrategy
}

func NewStructured(extent []int) (sc *Structured, err error) {
	var h *cells.PrimaryHyperCellStrategy
	if h, err = cells.NewPrimaryHyperCellStrategy(extent); err != nil {
		return
	}
	sc = &Structured{hyper: h}
	return
}

func (sc *Structured) Hyper() *cells.PrimaryHyperCellStrategy { return sc.hyper }
func (sc *Structured) NumPoints() int                         { return sc.hyper.NumPoints() }
func (sc *Structured) NumCells() int                          { return sc.hyper.NumCells() }
func (sc *Structured) Dimension() int                         { return sc.hyper.Dimension() }
func (sc *Structured) Cell(i int) cells.Cell                  { return sc.hyper.Cell(i) }

func (sc *Structured) FaceNeighbors(i int) []int {
	return sc.hyper.FaceNeighbors(i, nil)
}

func (sc *Structured) Neighbors(i int) []int {
	return distinct(sc.hyper.FaceNeighbors(i, nil), i)
}

func (sc *Structured) PointCells(p int) []int {
	return sc.hyper.PointCells(p, nil)
}
