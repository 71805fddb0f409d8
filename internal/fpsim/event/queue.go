package event

import "container/heap"

// Queue is a min-priority queue of Events ordered by (Time, Seq), giving
// stable FIFO tie-breaking when two events share a timestamp. No pack
// example ships a third-party binary-heap package, so this wraps the
// standard library's container/heap — the idiomatic stdlib answer for an
// ordered-by-key priority queue.
type Queue struct {
	items   eventHeap
	nextSeq uint64
}

// NewQueue returns an empty event queue.
func NewQueue() *Queue {
	q := &Queue{items: make(eventHeap, 0)}
	heap.Init(&q.items)
	return q
}

// Schedule assigns the next sequence number to e and pushes it onto the
// queue. The Seq field of the passed-in Event is ignored; callers get the
// assigned sequence back so tie-break order is always queue-assigned, never
// caller-assigned.
func (q *Queue) Schedule(e Event) Event {
	e.Seq = q.nextSeq
	q.nextSeq++
	heap.Push(&q.items, e)
	return e
}

// PopNext removes and returns the event with the smallest (Time, Seq). The
// second return is false if the queue is empty.
func (q *Queue) PopNext() (Event, bool) {
	if q.items.Len() == 0 {
		return Event{}, false
	}
	return heap.Pop(&q.items).(Event), true
}

// PeekTime returns the timestamp of the next event without removing it,
// useful for diagnostics and monotonicity assertions that must not mutate
// the queue. The second return is false if the queue is empty.
func (q *Queue) PeekTime() (float64, bool) {
	if q.items.Len() == 0 {
		return 0, false
	}
	return q.items[0].Time, true
}

// Len returns the number of pending events.
func (q *Queue) Len() int {
	return q.items.Len()
}

// Reset empties the queue and restarts sequence assignment at zero.
func (q *Queue) Reset() {
	q.items = q.items[:0]
	q.nextSeq = 0
}

// eventHeap implements container/heap.Interface over a slice of Events,
// ordered by (Time, Seq) ascending.
type eventHeap []Event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].Time != h[j].Time {
		return h[i].Time < h[j].Time
	}
	return h[i].Seq < h[j].Seq
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(Event))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
