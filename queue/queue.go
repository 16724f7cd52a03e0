// Package queue provides the priority queue used as the frontier of
// shortest-path searches.
package queue

// growth is the minimum number of slots added when the heap is full.
const growth = 100

// BinaryHeap is an array-backed binary min-heap keyed by a float32 cost.
//
// Slot 0 is unused so that the children of slot i are 2i and 2i+1 and its
// parent is i/2. Items and priorities live in parallel slices to keep the
// sift loops on a dense float32 array.
//
// A BinaryHeap is not safe for concurrent use; every search owns its own.
type BinaryHeap[T any] struct {
	items      []T
	priorities []float32
	count      int
	next       int // first unused slot
}

// NewBinaryHeap creates a heap with room for capacity items.
func NewBinaryHeap[T any](capacity int) *BinaryHeap[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &BinaryHeap[T]{
		items:      make([]T, capacity+1),
		priorities: make([]float32, capacity+1),
		next:       1,
	}
}

// Count returns the number of items in the heap.
func (h *BinaryHeap[T]) Count() int { return h.count }

// Push adds item with the given priority.
func (h *BinaryHeap[T]) Push(item T, priority float32) {
	if h.next == len(h.priorities) {
		h.grow()
	}
	h.count++

	i := h.next
	h.items[i] = item
	h.priorities[i] = priority
	h.next++

	for i > 1 {
		parent := i / 2
		if h.priorities[i] >= h.priorities[parent] {
			break
		}
		h.swap(i, parent)
		i = parent
	}
}

// Peek returns the item with the smallest priority without removing it.
// The result is undefined on an empty heap; check Count first.
func (h *BinaryHeap[T]) Peek() T { return h.items[1] }

// PeekWeight returns the smallest priority without removing it.
// The result is undefined on an empty heap; check Count first.
func (h *BinaryHeap[T]) PeekWeight() float32 { return h.priorities[1] }

// Pop removes and returns the item with the smallest priority. It returns
// the zero value of T when the heap is empty.
func (h *BinaryHeap[T]) Pop() T {
	var zero T
	if h.count == 0 {
		return zero
	}

	top := h.items[1]
	h.count--
	h.next--

	last := h.next
	h.items[1] = h.items[last]
	h.priorities[1] = h.priorities[last]
	h.items[last] = zero

	i := 1
	for {
		left := 2 * i
		if left >= h.next {
			break
		}
		smallest := left
		if right := left + 1; right < h.next && h.priorities[right] < h.priorities[left] {
			smallest = right
		}
		if h.priorities[smallest] >= h.priorities[i] {
			break
		}
		h.swap(i, smallest)
		i = smallest
	}
	return top
}

// Clear empties the heap. Backing storage is kept for reuse.
func (h *BinaryHeap[T]) Clear() {
	h.count = 0
	h.next = 1
}

func (h *BinaryHeap[T]) swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.priorities[i], h.priorities[j] = h.priorities[j], h.priorities[i]
}

func (h *BinaryHeap[T]) grow() {
	n := len(h.priorities)
	size := n + max(n, growth)

	items := make([]T, size)
	copy(items, h.items)
	h.items = items

	priorities := make([]float32, size)
	copy(priorities, h.priorities)
	h.priorities = priorities
}
