// Package bitio provides the bit-granularity streams the Huffman transcoder
// writes to and reads from.
//
// Bits are packed most significant bit first. A Writer pads the final partial
// byte with zero bits on Close; the padding is not marked in the stream, so a
// reader must know from elsewhere when the meaningful bits end.
package bitio

import (
	"io"
	"strings"

	bitstream "github.com/dgryski/go-bitstream"
)

// Writer appends single bits to an underlying byte writer.
type Writer struct {
	bw     *bitstream.BitWriter
	nbits  uint64
	closed bool
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{bw: bitstream.NewWriter(w)}
}

// WriteBit appends one bit. true is a 1 bit.
func (w *Writer) WriteBit(bit bool) error {
	if w.closed {
		return ErrClosed
	}
	if err := w.bw.WriteBit(bitstream.Bit(bit)); err != nil {
		return err
	}
	w.nbits++
	return nil
}

// WriteCode appends the bits of a code written as a string of '0' and '1'.
// Nothing is written if the code is malformed.
func (w *Writer) WriteCode(code string) error {
	if strings.Trim(code, "01") != "" {
		return ErrBadCode
	}
	for i := 0; i < len(code); i++ {
		if err := w.WriteBit(code[i] == '1'); err != nil {
			return err
		}
	}
	return nil
}

// Bits returns the number of meaningful bits written so far.
func (w *Writer) Bits() uint64 { return w.nbits }

// Close flushes the last partial byte, padded with zeros. It does not close
// the underlying writer.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.bw.Flush(bitstream.Zero)
}

// Reader consumes single bits from an underlying byte reader.
type Reader struct {
	br    *bitstream.BitReader
	nbits uint64
}

func NewReader(r io.Reader) *Reader {
	return &Reader{br: bitstream.NewReader(atLeastOne{r})}
}

// ReadBit returns the next bit, or io.EOF once every byte has been consumed.
func (r *Reader) ReadBit() (bool, error) {
	bit, err := r.br.ReadBit()
	if err != nil {
		return false, err
	}
	r.nbits++
	return bool(bit), nil
}

// Bits returns the number of bits consumed so far.
func (r *Reader) Bits() uint64 { return r.nbits }

// atLeastOne keeps go-bitstream from seeing a (0, nil) read, which it would
// otherwise decode as a zero byte.
type atLeastOne struct {
	r io.Reader
}

func (a atLeastOne) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	return io.ReadAtLeast(a.r, p, 1)
}
