package compression

import (
	"bufio"
	"io"
	"log/slog"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// BitWriter is the sink Encode appends codes to. *bitio.Writer implements it.
type BitWriter interface {
	WriteCode(code string) error
}

// BitReader is the source Decode consumes. ReadBit returns io.EOF once the
// stream is exhausted. *bitio.Reader implements it.
type BitReader interface {
	ReadBit() (bool, error)
}

// Encode reads r to the end and writes the code of every character to w, in
// input order. The caller closes w to flush the padded last byte.
//
// A nil table means there was nothing to encode: r is not read and nothing is
// written. A character without a code is an ErrSymbolNotInTable.
func Encode(table CodeTable, r io.Reader, w BitWriter) error {
	if table == nil {
		return nil
	}

	br := bufio.NewReader(r)
	var offset, symbols int64
	for {
		c, size, err := br.ReadRune()
		if err != nil {
			if err == io.EOF {
				break
			}
			return errors.Wrapf(err, "read input at byte %d", offset)
		}
		if c == utf8.RuneError && size == 1 {
			return errors.Wrapf(ErrInvalidInput, "invalid UTF-8 at byte %d", offset)
		}
		code, ok := table[c]
		if !ok {
			return errors.Wrapf(ErrSymbolNotInTable, "symbol %q at byte %d", c, offset)
		}
		if err := w.WriteCode(code); err != nil {
			return errors.Wrapf(err, "write code for symbol %q", c)
		}
		offset += int64(size)
		symbols++
	}
	slog.Debug("Encoded input", "symbols", symbols, "bytes", offset)
	return nil
}

// Decode walks root bit by bit, writing a leaf's symbol to w each time the
// walk reaches one and then starting again at the root.
//
// The root weight is the number of symbols that were encoded, so decoding
// stops after that many and any padding that follows is never read as a
// symbol. A nil root decodes to nothing without reading r.
//
// Decode fails with ErrCorruptStream when a bit leads to a missing child or
// when r runs out first. Both mean root is not the tree the stream was
// encoded with.
func Decode(root *Node, r BitReader, w io.Writer) error {
	if root == nil {
		return nil
	}

	bw := bufio.NewWriter(w)
	remaining := root.Weight
	var bits int64
	cursor := root
	for remaining > 0 {
		bit, err := r.ReadBit()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return errors.Wrapf(ErrCorruptStream, "stream ended after %d bits with %d symbols left", bits, remaining)
			}
			return errors.Wrapf(err, "read bit %d", bits)
		}
		bits++

		if bit {
			cursor = cursor.Right
		} else {
			cursor = cursor.Left
		}
		if cursor == nil {
			return errors.Wrapf(ErrCorruptStream, "bit %d leads off the code tree", bits)
		}
		if cursor.IsLeaf() {
			if _, err := bw.WriteRune(cursor.Symbol); err != nil {
				return errors.Wrap(err, "write output")
			}
			remaining--
			cursor = root
		}
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, "write output")
	}
	slog.Debug("Decoded stream", "symbols", root.Weight, "bits", bits)
	return nil
}
