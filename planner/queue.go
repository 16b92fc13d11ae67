package planner

import (
	"container/heap"
	"sync"
)

// handleHeap orders pending handles by priority, then submission order
type handleHeap []*Handle

func (hh handleHeap) Len() int { return len(hh) }

func (hh handleHeap) Less(i, j int) bool {
	if hh[i].req.Priority != hh[j].req.Priority {
		return hh[i].req.Priority > hh[j].req.Priority
	}
	return hh[i].seq < hh[j].seq
}

func (hh handleHeap) Swap(i, j int) {
	hh[i], hh[j] = hh[j], hh[i]
	hh[i].index = i
	hh[j].index = j
}

func (hh *handleHeap) Push(x any) {
	h := x.(*Handle)
	h.index = len(*hh)
	*hh = append(*hh, h)
}

func (hh *handleHeap) Pop() any {
	old := *hh
	n := len(old)
	h := old[n-1]
	old[n-1] = nil
	h.index = -1
	*hh = old[:n-1]
	return h
}

// jobQueue is a bounded blocking priority queue shared by the workers
type jobQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  handleHeap
	limit  int
	seq    uint64
	closed bool
}

func newJobQueue(limit int) *jobQueue {
	q := &jobQueue{limit: limit}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *jobQueue) push(h *Handle) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrClosed
	}
	if len(q.items) >= q.limit {
		return ErrQueueFull
	}
	q.seq++
	h.seq = q.seq
	heap.Push(&q.items, h)
	q.cond.Signal()
	return nil
}

// pop blocks until a handle is available. It returns false once the queue
// is closed.
func (q *jobQueue) pop() (*Handle, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if q.closed {
		return nil, false
	}
	return heap.Pop(&q.items).(*Handle), true
}

// remove takes h out of the queue if it is still pending
func (q *jobQueue) remove(h *Handle) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if h.index < 0 || h.index >= len(q.items) || q.items[h.index] != h {
		return false
	}
	heap.Remove(&q.items, h.index)
	return true
}

func (q *jobQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// close wakes every worker and returns the handles still pending
func (q *jobQueue) close() []*Handle {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true
	pending := make([]*Handle, 0, len(q.items))
	for len(q.items) > 0 {
		pending = append(pending, heap.Pop(&q.items).(*Handle))
	}
	q.cond.Broadcast()
	return pending
}
