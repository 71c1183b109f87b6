package bitio

import "errors"

var (
	ErrClosed  = errors.New("bitio: write to closed writer")
	ErrBadCode = errors.New("bitio: code contains a character other than '0' or '1'")
)
