package series

import "errors"

// Sentinel error kinds for reconstruction.
var (
	ErrEmptyObservations = errors.New("no observations to reconstruct from")
	ErrDuplicateDate     = errors.New("duplicate observation date")
	ErrInvalidRange      = errors.New("range start is after range end")
	ErrMissingCutoff     = errors.New("mean fill policy requires a cutoff date")
	ErrUnknownPolicy     = errors.New("unknown fill policy")
)
