// Package pqueue implements a generic minimum-priority queue, adapted
// from the reference repo's std/types/priority_queue package. The SPT
// calculator (internal/spt) uses it as the work queue driving its
// Dijkstra-variant relaxation loop (spec §4.3).
package pqueue

import (
	"container/heap"

	"golang.org/x/exp/constraints"
)

type item[V any, P constraints.Ordered] struct {
	value    V
	priority P
	index    int
}

type wrapper[V any, P constraints.Ordered] []*item[V, P]

func (w *wrapper[V, P]) Len() int { return len(*w) }

func (w *wrapper[V, P]) Less(i, j int) bool { return (*w)[i].priority < (*w)[j].priority }

func (w *wrapper[V, P]) Swap(i, j int) {
	(*w)[i], (*w)[j] = (*w)[j], (*w)[i]
	(*w)[i].index = i
	(*w)[j].index = j
}

func (w *wrapper[V, P]) Push(x any) {
	it := x.(*item[V, P])
	it.index = len(*w)
	*w = append(*w, it)
}

func (w *wrapper[V, P]) Pop() any {
	old := *w
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	*w = old[0 : n-1]
	return it
}

// Queue is a minimum-priority queue over values of type V ordered by
// priority P.
type Queue[V any, P constraints.Ordered] struct {
	w wrapper[V, P]
}

// New constructs an empty Queue.
func New[V any, P constraints.Ordered]() *Queue[V, P] {
	return &Queue[V, P]{}
}

// Len returns the number of elements in the queue.
func (q *Queue[V, P]) Len() int { return q.w.Len() }

// Push adds value to the queue with the given priority.
func (q *Queue[V, P]) Push(value V, priority P) {
	heap.Push(&q.w, &item[V, P]{value: value, priority: priority})
}

// Pop removes and returns the minimum-priority element.
func (q *Queue[V, P]) Pop() V {
	return heap.Pop(&q.w).(*item[V, P]).value
}
