package field

import "errors"

var (
	ErrNotANumber     = errors.New("evaluation produced a non-finite value")
	ErrShape          = errors.New("values do not match the domain")
	ErrTimeSteps      = errors.New("time steps must be finite and strictly increasing")
	ErrNeedsGrid      = errors.New("cell based values need a grid")
	ErrStep           = errors.New("time step out of range")
	ErrIndex          = errors.New("value index out of range")
	ErrDomainMismatch = errors.New("sub domain does not belong to the field's domain")
)
