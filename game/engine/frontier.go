package engine

import "github.com/zyedidia/generic/heap"

// entry orders nodes by key, then by insertion sequence
type entry struct {
	key  float64
	seq  uint64
	node *node
}

func entryLess(a, b entry) bool {
	if a.key != b.key {
		return a.key < b.key
	}
	return a.seq < b.seq
}

// priorityFrontier is a min-heap of nodes with FIFO tie-breaking
type priorityFrontier struct {
	heap *heap.Heap[entry]
	seq  uint64
}

func newPriorityFrontier() *priorityFrontier {
	return &priorityFrontier{heap: heap.New[entry](entryLess)}
}

func (f *priorityFrontier) push(key float64, n *node) {
	f.seq++
	f.heap.Push(entry{key: key, seq: f.seq, node: n})
}

func (f *priorityFrontier) pop() (*node, bool) {
	e, ok := f.heap.Pop()
	if !ok {
		return nil, false
	}
	return e.node, true
}

func (f *priorityFrontier) len() int {
	return f.heap.Size()
}
