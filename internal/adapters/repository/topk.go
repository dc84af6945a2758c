package repository

import (
	"container/heap"
	"sort"
)

// Bounded top-k selection. A min-heap of size k keeps the worst of the
// current best k at the root, so scanning n entities costs O(n log k)
// instead of a full sort.

// worse reports whether a ranks strictly after b: lower score, or equal
// score with a lexicographically larger entity id. The comparison is the
// single source of truth for ordering, so ties are deterministic.
func worse(a, b Entry) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.EntityID > b.EntityID
}

// entryMinHeap orders entries worst-first.
type entryMinHeap []Entry

func (h entryMinHeap) Len() int            { return len(h) }
func (h entryMinHeap) Less(i, j int) bool  { return worse(h[i], h[j]) }
func (h entryMinHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *entryMinHeap) Push(x interface{}) { *h = append(*h, x.(Entry)) }
func (h *entryMinHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// topK accumulates the k best entries seen so far.
type topK struct {
	k    int
	heap entryMinHeap
}

func newTopK(k int) *topK {
	return &topK{k: k, heap: make(entryMinHeap, 0, k)}
}

// offer considers e for the top-k set.
func (t *topK) offer(e Entry) {
	if len(t.heap) < t.k {
		heap.Push(&t.heap, e)
		return
	}
	if worse(e, t.heap[0]) {
		return
	}
	t.heap[0] = e
	heap.Fix(&t.heap, 0)
}

// sorted drains the selection into rank order (best first) and assigns
// dense ranks 1..len.
func (t *topK) sorted() []Entry {
	out := make([]Entry, len(t.heap))
	copy(out, t.heap)
	sort.Slice(out, func(i, j int) bool { return worse(out[j], out[i]) })
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
