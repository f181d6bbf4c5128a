package renderer

import "errors"

var (
	ErrInvalidDims     = errors.New("renderer: frame dimensions must be non-zero")
	ErrNoTracers       = errors.New("renderer: no tracers attached")
	ErrSceneNotDefined = errors.New("renderer: no scene defined")
	ErrInterrupted     = errors.New("renderer: interrupted while rendering")
)
