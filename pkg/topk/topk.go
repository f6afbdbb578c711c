// Package topk provides a fixed-capacity container that retains only the highest-ranked items pushed into it.
package topk

import (
	"container/heap"
	"iter"
	"log"
	"slices"
)

// Large capacities grow on demand instead of being reserved upfront
const preallocationLimit = 1024

// BoundedTopK keeps the K greatest items (according to less) seen so far. Internally it is a binary min-heap, so the
// weakest retained item is always at the root and can be compared against or evicted in O(log K).
type BoundedTopK[T any] struct {
	items minHeap[T]
}

func New[T any](capacity int, less func(a, b T) bool) *BoundedTopK[T] {
	if capacity < 1 {
		log.Panicf("topk: capacity must be at least 1: %v", capacity)
	}
	return &BoundedTopK[T]{
		items: minHeap[T]{
			elements: make([]T, 0, min(capacity, preallocationLimit)),
			capacity: capacity,
			less:     less,
		},
	}
}

// Push offers an item to the container. When the container is full and the item ranks above the current minimum, the
// minimum is evicted and returned with ok set to true. Items that do not rank above the minimum of a full container are
// dropped without being inserted.
func (top *BoundedTopK[T]) Push(item T) (evicted T, ok bool) {
	if len(top.items.elements) < top.items.capacity {
		heap.Push(&top.items, item)
		return evicted, false
	}

	// Reject without touching the heap if the item would be the new minimum anyway
	if !top.items.less(top.items.elements[0], item) {
		return evicted, false
	}

	evicted = top.items.elements[0]
	top.items.elements[0] = item
	heap.Fix(&top.items, 0)
	return evicted, true
}

func (top *BoundedTopK[T]) Len() int {
	return len(top.items.elements)
}

func (top *BoundedTopK[T]) Cap() int {
	return top.items.capacity
}

// Returns the weakest retained item, if any
func (top *BoundedTopK[T]) Min() (T, bool) {
	if len(top.items.elements) == 0 {
		var zero T
		return zero, false
	}
	return top.items.elements[0], true
}

// Elements yields the retained items in heap order (not sorted by rank). The sequence may be ranged over repeatedly; the
// container must not be pushed to while a range is in progress.
func (top *BoundedTopK[T]) Elements() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, element := range top.items.elements {
			if !yield(element) {
				return
			}
		}
	}
}

// Returns a copy of the retained items ordered from greatest to weakest
func (top *BoundedTopK[T]) Sorted() []T {
	sorted := slices.Clone(top.items.elements)
	slices.SortStableFunc(sorted, func(a, b T) int {
		if top.items.less(b, a) {
			return -1
		} else if top.items.less(a, b) {
			return 1
		}
		return 0
	})
	return sorted
}

// minHeap implements container/heap.Interface with the weakest element at the root
type minHeap[T any] struct {
	elements []T
	capacity int
	less     func(a, b T) bool
}

func (h minHeap[T]) Len() int           { return len(h.elements) }
func (h minHeap[T]) Less(i, j int) bool { return h.less(h.elements[i], h.elements[j]) }
func (h minHeap[T]) Swap(i, j int)      { h.elements[i], h.elements[j] = h.elements[j], h.elements[i] }

func (h *minHeap[T]) Push(x any) { h.elements = append(h.elements, x.(T)) }

func (h *minHeap[T]) Pop() any {
	old := h.elements
	n := len(old)
	item := old[n-1]
	h.elements = old[:n-1]
	return item
}
