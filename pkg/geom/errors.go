package geom

import "errors"

var (
	// ErrInvalidGeometry reports control points that do not fit an object's
	// kind: wrong count, malformed surface grid, or non-finite coordinates.
	ErrInvalidGeometry = errors.New("invalid geometry")

	// ErrInvalidParameter reports a transform or view parameter outside its
	// domain, such as a non-finite angle or a non-positive zoom factor.
	ErrInvalidParameter = errors.New("invalid parameter")
)
