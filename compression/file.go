package compression

import (
	"bufio"
	"io"
	"log/slog"
	"os"

	"github.com/pkg/errors"

	"github.com/ntdkhiem/huffman-platform/bitio"
)

// CompressFile encodes srcPath into dstPath and returns the frequency table
// needed to decompress it. The source is read twice: once to count, once to
// encode.
func CompressFile(srcPath, dstPath string) (FrequencyTable, error) {
	ft, err := countFile(srcPath)
	if err != nil {
		return nil, err
	}
	slog.Debug("Built frequency table", "file", srcPath, "symbols", ft.Total(), "distinct", len(ft))

	root, err := BuildCodeTree(ft)
	if err != nil {
		return nil, err
	}
	if err := EncodeFile(srcPath, dstPath, DeriveCodes(root)); err != nil {
		return nil, err
	}
	return ft, nil
}

func countFile(path string) (FrequencyTable, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open input")
	}
	defer closeInput(in)
	return CountFrequencies(in)
}

// EncodeFile encodes srcPath into dstPath with table.
func EncodeFile(srcPath, dstPath string, table CodeTable) error {
	in, err := os.Open(srcPath)
	if err != nil {
		return errors.Wrap(err, "open input")
	}
	defer closeInput(in)

	return writeFile(dstPath, func(w io.Writer) error {
		bw := bitio.NewWriter(w)
		if err := Encode(table, in, bw); err != nil {
			return err
		}
		if err := bw.Close(); err != nil {
			return errors.Wrap(err, "flush bits")
		}
		slog.Debug("Encoded file", "file", srcPath, "bits", bw.Bits())
		return nil
	})
}

// DecompressFile decodes srcPath into dstPath with the tree srcPath was
// encoded with.
func DecompressFile(srcPath, dstPath string, root *Node) error {
	in, err := os.Open(srcPath)
	if err != nil {
		return errors.Wrap(err, "open input")
	}
	defer closeInput(in)

	return writeFile(dstPath, func(w io.Writer) error {
		return Decode(root, bitio.NewReader(bufio.NewReader(in)), w)
	})
}

// writeFile creates path, hands fn a buffered writer on it and reports a
// failed flush or close as the error if fn itself succeeded. On any failure
// the partial output is removed.
func writeFile(path string, fn func(w io.Writer) error) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create output")
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "close output")
		}
		if err != nil {
			if rerr := os.Remove(path); rerr != nil {
				slog.Warn("Failed to remove partial output", "file", path, "error", rerr)
			}
		}
	}()

	bw := bufio.NewWriter(out)
	if err := fn(bw); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, "write output")
	}
	return nil
}

func closeInput(f *os.File) {
	if err := f.Close(); err != nil {
		slog.Warn("Failed to close input", "file", f.Name(), "error", err)
	}
}
