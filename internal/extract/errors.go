package extract

import "errors"

var (
	ErrInvalidPDF = errors.New("document is not a readable PDF")
	ErrNoText     = errors.New("document contains no extractable text")
)
