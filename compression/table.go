package compression

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// WriteFrequencyTable stores ft as a JSON object keyed by code point, the
// form the tree is carried in between compression and decompression.
func WriteFrequencyTable(w io.Writer, ft FrequencyTable) error {
	if ft == nil {
		ft = FrequencyTable{}
	}
	if err := json.NewEncoder(w).Encode(ft); err != nil {
		return errors.Wrap(err, "encode frequency table")
	}
	return nil
}

// ReadFrequencyTable parses a table written by WriteFrequencyTable.
func ReadFrequencyTable(r io.Reader) (FrequencyTable, error) {
	ft := make(FrequencyTable)
	if err := json.NewDecoder(r).Decode(&ft); err != nil {
		return nil, errors.Wrap(ErrInvalidInput, "decode frequency table: "+err.Error())
	}
	if err := ft.Validate(); err != nil {
		return nil, errors.WithMessage(err, "decode frequency table")
	}
	return ft, nil
}
