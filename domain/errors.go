package domain

import "errors"

var (
	ErrOutsideDomain   = errors.New("point is outside the domain")
	ErrCellOutOfRange  = errors.New("cell index out of range")
	ErrIndexOutOfRange = errors.New("point index out of range")
	ErrBadExtent       = errors.New("invalid extent")
	ErrBadSpacing      = errors.New("invalid spacing")
	ErrNotMonotonic    = errors.New("axis is not strictly increasing")
	ErrNotFinite       = errors.New("non-finite coordinate")
	ErrShapeMismatch   = errors.New("point buffer does not match the domain shape")
	ErrNoCells         = errors.New("domain has no cells")
)
