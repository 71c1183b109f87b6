package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/ntdkhiem/huffman-platform/compression"
	"github.com/ntdkhiem/huffman-platform/internal/common"
)

const tableExt = ".table.json"

func main() {
	decompFlagPtr := flag.Bool("decode", false, "flag to decode")
	outputFlagPtr := flag.String("output", "output", "flag for naming output file")
	tableFlagPtr := flag.String("table", "", "frequency table to decode with (default <input>.table.json)")
	workersFlagPtr := flag.Int("workers", 1, "number of goroutines counting symbols while compressing")

	flag.Parse()

	restArgs := flag.Args()

	if len(restArgs) != 1 {
		fmt.Fprintln(os.Stderr, "usage: huffman [-decode] [-output name] [-table path] [-workers n] file")
		os.Exit(2)
	}

	var err error
	if *decompFlagPtr {
		err = decode(restArgs[0], *tableFlagPtr, *outputFlagPtr+".txt")
	} else {
		err = encode(restArgs[0], *outputFlagPtr, *workersFlagPtr)
	}
	if err != nil {
		fmt.Println("Error: ", err)
		os.Exit(1)
	}
}

func encode(src, output string, workers int) error {
	dst := output + common.CompressedExt
	var (
		ft  compression.FrequencyTable
		err error
	)
	if workers > 1 {
		data, err := os.ReadFile(src)
		if err != nil {
			return err
		}
		if ft, err = compression.CountFrequenciesConcurrently(data, workers); err != nil {
			return err
		}
		root, err := compression.BuildCodeTree(ft)
		if err != nil {
			return err
		}
		if err := compression.EncodeFile(src, dst, compression.DeriveCodes(root)); err != nil {
			return err
		}
	} else if ft, err = compression.CompressFile(src, dst); err != nil {
		return err
	}
	fmt.Println("File written successfully to", dst)

	tablePath := output + tableExt
	if err := writeTable(tablePath, ft); err != nil {
		return err
	}
	fmt.Println("Frequency table written to", tablePath)
	return nil
}

func decode(src, tablePath, dst string) error {
	if tablePath == "" {
		tablePath = strings.TrimSuffix(src, common.CompressedExt) + tableExt
	}
	f, err := os.Open(tablePath)
	if err != nil {
		return err
	}
	ft, err := compression.ReadFrequencyTable(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("%s: %w", tablePath, err)
	}
	root, err := compression.BuildCodeTree(ft)
	if err != nil {
		return err
	}
	if err := compression.DecompressFile(src, dst, root); err != nil {
		return err
	}
	fmt.Println("File written successfully to", dst)
	return nil
}

func writeTable(path string, ft compression.FrequencyTable) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := compression.WriteFrequencyTable(f, ft); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
