package compression

import (
	"bufio"
	"bytes"
	"io"
	"math"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// FrequencyTable maps each symbol observed in an input to its number of
// occurrences.
type FrequencyTable map[rune]int64

// Total returns the number of symbols counted.
func (ft FrequencyTable) Total() int64 {
	var total int64
	for _, n := range ft {
		total += n
	}
	return total
}

// Validate checks that every symbol is a valid code point and every count is
// non-negative, and that the counts sum without overflowing int64. The sum
// becomes the root weight, which bounds how many symbols Decode emits.
func (ft FrequencyTable) Validate() error {
	var total int64
	for c, n := range ft {
		if !utf8.ValidRune(c) {
			return errors.Wrapf(ErrInvalidInput, "symbol %d is not a valid code point", c)
		}
		if n < 0 {
			return errors.Wrapf(ErrInvalidInput, "negative count %d for symbol %q", n, c)
		}
		if n > math.MaxInt64-total {
			return errors.Wrapf(ErrInvalidInput, "counts overflow at symbol %q", c)
		}
		total += n
	}
	return nil
}

// CountFrequencies reads r to the end and counts every character, whitespace
// and control characters included. An empty stream yields an empty table.
func CountFrequencies(r io.Reader) (FrequencyTable, error) {
	ft := make(FrequencyTable)
	br := bufio.NewReader(r)
	var offset int64
	for {
		c, size, err := br.ReadRune()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.Wrapf(err, "read input at byte %d", offset)
		}
		if c == utf8.RuneError && size == 1 {
			return nil, errors.Wrapf(ErrInvalidInput, "invalid UTF-8 at byte %d", offset)
		}
		ft[c]++
		offset += int64(size)
	}
	return ft, nil
}

// MergeFrequencies sums partial tables into a new one.
func MergeFrequencies(tables ...FrequencyTable) FrequencyTable {
	merged := make(FrequencyTable)
	for _, ft := range tables {
		for c, n := range ft {
			merged[c] += n
		}
	}
	return merged
}

// CountFrequenciesConcurrently splits data into up to workers chunks on line
// boundaries, counts each chunk in its own goroutine and merges the partial
// tables. The result equals CountFrequencies over the same bytes.
func CountFrequenciesConcurrently(data []byte, workers int) (FrequencyTable, error) {
	chunks := splitChunks(data, workers)
	partials := make([]FrequencyTable, len(chunks))

	var g errgroup.Group
	for i, chunk := range chunks {
		g.Go(func() error {
			ft, err := CountFrequencies(bytes.NewReader(chunk))
			if err != nil {
				return errors.Wrapf(err, "chunk %d", i)
			}
			partials[i] = ft
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return MergeFrequencies(partials...), nil
}

// splitChunks cuts data into at most n pieces of roughly equal size. Each cut
// is moved forward to just after a newline so no UTF-8 sequence is split.
func splitChunks(data []byte, n int) [][]byte {
	if n < 1 {
		n = 1
	}
	var chunks [][]byte
	chunkSize := (len(data) + n - 1) / n
	for start := 0; start < len(data); {
		end := min(start+chunkSize, len(data))
		if end < len(data) {
			if i := bytes.IndexByte(data[end:], '\n'); i >= 0 {
				end += i + 1
			} else {
				end = len(data)
			}
		}
		chunks = append(chunks, data[start:end])
		start = end
	}
	return chunks
}
