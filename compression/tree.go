package compression

import (
	"container/heap"
	"slices"
)

// Node is a code tree node. Leaves carry a symbol; internal nodes carry only
// the total weight of the leaves beneath them. A tree is never modified after
// BuildCodeTree returns it.
type Node struct {
	Weight int64
	Symbol rune
	Left   *Node
	Right  *Node

	// seq orders nodes of equal weight by when they entered the queue.
	seq int
}

func (n *Node) IsLeaf() bool {
	return n.Left == nil && n.Right == nil
}

// Leaves returns the number of leaves under n.
func (n *Node) Leaves() int {
	if n == nil {
		return 0
	}
	if n.IsLeaf() {
		return 1
	}
	return n.Left.Leaves() + n.Right.Leaves()
}

// priorityQueue is a min-heap on weight, ties going to the node that was
// pushed first.
type priorityQueue []*Node

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].Weight != pq[j].Weight {
		return pq[i].Weight < pq[j].Weight
	}
	return pq[i].seq < pq[j].seq
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
}

func (pq *priorityQueue) Push(x any) {
	item := x.(*Node)
	*pq = append(*pq, item)
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*pq = old[0 : n-1]
	return item
}

// BuildCodeTree builds a Huffman code tree from ft.
//
// Leaves enter the queue in ascending symbol order. Each step pops the two
// lightest nodes and joins them under a new node, the first popped on the left
// ("0") and the second on the right ("1").
//
// An empty table yields a nil tree and no error. A table with a single symbol
// yields a root whose only child is that symbol's leaf, on the right, so the
// symbol gets the one-bit code "1". Symbols with a zero count are skipped. A
// table that fails Validate is an ErrInvalidInput.
func BuildCodeTree(ft FrequencyTable) (*Node, error) {
	if err := ft.Validate(); err != nil {
		return nil, err
	}
	symbols := make([]rune, 0, len(ft))
	for c, n := range ft {
		if n > 0 {
			symbols = append(symbols, c)
		}
	}
	slices.Sort(symbols)

	switch len(symbols) {
	case 0:
		return nil, nil
	case 1:
		leaf := &Node{Weight: ft[symbols[0]], Symbol: symbols[0]}
		return &Node{Weight: leaf.Weight, Right: leaf}, nil
	}

	seq := 0
	pq := make(priorityQueue, 0, len(symbols))
	for _, c := range symbols {
		pq = append(pq, &Node{Weight: ft[c], Symbol: c, seq: seq})
		seq++
	}
	heap.Init(&pq)

	for pq.Len() > 1 {
		left := heap.Pop(&pq).(*Node)
		right := heap.Pop(&pq).(*Node)
		heap.Push(&pq, &Node{
			Weight: left.Weight + right.Weight,
			Left:   left,
			Right:  right,
			seq:    seq,
		})
		seq++
	}
	return heap.Pop(&pq).(*Node), nil
}
