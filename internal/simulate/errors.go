package simulate

import "errors"

// Sentinel kinds for simulation errors.
var (
	ErrInvalidRunConfig  = errors.New("invalid simulation config")
	ErrTargetUnreachable = errors.New("target unreachable")
)
