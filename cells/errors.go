package cells

import "errors"

var (
	ErrUnknownType  = errors.New("unknown cell type")
	ErrVertexCount  = errors.New("wrong number of cell vertices")
	ErrNotConverged = errors.New("local coordinate iteration did not converge")
	ErrDegenerate   = errors.New("degenerate cell geometry")
	ErrOffCell      = errors.New("point is off the cell manifold")
	ErrExtent       = errors.New("invalid structured extent")
)
