package linalg

import "errors"

var (
	ErrSingular          = errors.New("matrix is singular")
	ErrNotSquare         = errors.New("matrix is not square")
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrNotFinite         = errors.New("non-finite value")
	ErrZeroRotation      = errors.New("rotation axis or quaternion has zero length")
)
