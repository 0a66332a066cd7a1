package searcher

import "sync"

// PriorityQueue is a bounded max-heap holding the best k neighbors seen so far.
// The top is the worst kept neighbor, so a new candidate only has to beat it.
// Value-based storage, no container/heap interface overhead.
type PriorityQueue struct {
	capacity int
	items    []Neighbor
}

// NewPriorityQueue creates a queue that keeps at most capacity neighbors.
func NewPriorityQueue(capacity int) *PriorityQueue {
	return &PriorityQueue{
		capacity: capacity,
		items:    make([]Neighbor, 0, capacity),
	}
}

var queuePool sync.Pool

// GetPriorityQueue returns an empty pooled queue with the given capacity.
func GetPriorityQueue(capacity int) *PriorityQueue {
	if v := queuePool.Get(); v != nil {
		pq := v.(*PriorityQueue)
		pq.Reset(capacity)
		return pq
	}
	return NewPriorityQueue(capacity)
}

// PutPriorityQueue returns a queue to the pool.
func PutPriorityQueue(pq *PriorityQueue) {
	queuePool.Put(pq)
}

// Reset clears the queue and sets a new capacity.
func (pq *PriorityQueue) Reset(capacity int) {
	pq.capacity = capacity
	if cap(pq.items) < capacity {
		pq.items = make([]Neighbor, 0, capacity)
		return
	}
	pq.items = pq.items[:0]
}

// Len returns the number of neighbors held.
func (pq *PriorityQueue) Len() int {
	return len(pq.items)
}

// Top returns the worst kept neighbor.
func (pq *PriorityQueue) Top() (Neighbor, bool) {
	if len(pq.items) == 0 {
		return Neighbor{}, false
	}
	return pq.items[0], true
}

// Push offers a candidate. When the queue is full the candidate replaces the
// top only if it ranks strictly before it.
func (pq *PriorityQueue) Push(n Neighbor) {
	if len(pq.items) < pq.capacity {
		pq.items = append(pq.items, n)
		pq.siftUp(len(pq.items) - 1)
		return
	}
	if pq.capacity == 0 || !n.less(pq.items[0]) {
		return
	}
	pq.items[0] = n
	pq.siftDown(0)
}

// Pop removes and returns the worst kept neighbor.
func (pq *PriorityQueue) Pop() (Neighbor, bool) {
	n := len(pq.items)
	if n == 0 {
		return Neighbor{}, false
	}
	top := pq.items[0]
	pq.items[0] = pq.items[n-1]
	pq.items = pq.items[:n-1]
	if len(pq.items) > 0 {
		pq.siftDown(0)
	}
	return top, true
}

// Drain empties the queue into dst in ascending order (best first).
// dst must have room for Len() neighbors.
func (pq *PriorityQueue) Drain(dst []Neighbor) []Neighbor {
	n := len(pq.items)
	dst = dst[:n]
	for i := n - 1; i >= 0; i-- {
		dst[i], _ = pq.Pop()
	}
	return dst
}

// above reports whether item i belongs above item j in the max-heap.
func (pq *PriorityQueue) above(i, j int) bool {
	return pq.items[j].less(pq.items[i])
}

func (pq *PriorityQueue) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !pq.above(i, parent) {
			break
		}
		pq.items[i], pq.items[parent] = pq.items[parent], pq.items[i]
		i = parent
	}
}

func (pq *PriorityQueue) siftDown(i int) {
	n := len(pq.items)
	for {
		left := 2*i + 1
		if left >= n {
			break
		}
		largest := left
		if right := left + 1; right < n && pq.above(right, left) {
			largest = right
		}
		if !pq.above(largest, i) {
			break
		}
		pq.items[i], pq.items[largest] = pq.items[largest], pq.items[i]
		i = largest
	}
}
