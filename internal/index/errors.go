package index

import "errors"

var (
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	ErrModelMismatch     = errors.New("embedding model mismatch")
)
