package compression

import (
	"slices"
	"strings"
)

// CodeTable maps each symbol to its code, a string of '0' and '1'.
type CodeTable map[rune]string

// DeriveCodes walks the tree and records the path to every leaf, "0" for a
// left branch and "1" for a right one. A nil tree yields an empty table.
func DeriveCodes(root *Node) CodeTable {
	table := make(CodeTable)
	if root == nil {
		return table
	}
	assignCodes(root, "", table)
	return table
}

func assignCodes(n *Node, code string, table CodeTable) {
	if n == nil {
		return
	}
	// if node is a leaf, record its path
	if n.IsLeaf() {
		table[n.Symbol] = code
		return
	}
	assignCodes(n.Left, code+"0", table)
	assignCodes(n.Right, code+"1", table)
}

// IsPrefixFree reports whether no code in the table is empty or a prefix of
// another.
func (ct CodeTable) IsPrefixFree() bool {
	codes := make([]string, 0, len(ct))
	for _, code := range ct {
		if code == "" {
			return false
		}
		codes = append(codes, code)
	}
	// after sorting, a prefix sorts directly before some code it prefixes
	slices.Sort(codes)
	for i := 1; i < len(codes); i++ {
		if strings.HasPrefix(codes[i], codes[i-1]) {
			return false
		}
	}
	return true
}

// EncodedBits returns how many bits encoding an input with frequencies ft
// takes, padding excluded. Symbols missing from the table are not counted.
func (ct CodeTable) EncodedBits(ft FrequencyTable) int64 {
	var bits int64
	for c, n := range ft {
		bits += n * int64(len(ct[c]))
	}
	return bits
}
