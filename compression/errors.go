package compression

import "github.com/pkg/errors"

var (
	// ErrInvalidInput reports input the codec cannot represent: invalid UTF-8
	// text or a frequency table with a negative count.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSymbolNotInTable reports an input symbol with no code. The table was
	// not derived from this input's frequencies.
	ErrSymbolNotInTable = errors.New("symbol not in code table")

	// ErrCorruptStream reports a bit stream that does not fit the code tree
	// supplied for decoding.
	ErrCorruptStream = errors.New("corrupt bit stream")
)
