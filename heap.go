package hub

import "container/heap"

// pqEntry is one entry in the pending-batch deadline queue: the endpoint
// whose pending batch was opened at openTimeNS. Entries may be stale -- see
// deadlineQueue.popExpired.
type pqEntry struct {
	openTimeNS uint64
	endpoint   Endpoint
}

// deadlineHeap is a min-heap of pqEntry ordered by openTimeNS, implementing
// container/heap.Interface. No third-party priority-queue library appears
// anywhere in the reference corpus; container/heap is the standard-library
// idiom for exactly this shape of problem, so it is used directly rather
// than hand-rolling a heap (see DESIGN.md).
type deadlineHeap []pqEntry

func (h deadlineHeap) Len() int            { return len(h) }
func (h deadlineHeap) Less(i, j int) bool  { return h[i].openTimeNS < h[j].openTimeNS }
func (h deadlineHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *deadlineHeap) Push(x interface{}) { *h = append(*h, x.(pqEntry)) }
func (h *deadlineHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// deadlineQueue wraps deadlineHeap with the push/peek/pop operations the
// accumulator needs.
type deadlineQueue struct {
	h deadlineHeap
}

func newDeadlineQueue() *deadlineQueue {
	q := &deadlineQueue{}
	heap.Init(&q.h)
	return q
}

func (q *deadlineQueue) push(openTimeNS uint64, endpoint Endpoint) {
	heap.Push(&q.h, pqEntry{openTimeNS: openTimeNS, endpoint: endpoint})
}

func (q *deadlineQueue) len() int {
	return q.h.Len()
}

func (q *deadlineQueue) peek() (pqEntry, bool) {
	if q.h.Len() == 0 {
		return pqEntry{}, false
	}
	return q.h[0], true
}

func (q *deadlineQueue) pop() pqEntry {
	return heap.Pop(&q.h).(pqEntry)
}
