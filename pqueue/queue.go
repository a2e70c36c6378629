// Package pqueue is a min-priority queue with deterministic tie breaking and
// lazy removal of arbitrary entries.
//
// Entries are ordered by the caller's comparator and, on equal keys, by
// insertion order. Removing an entry marks it dead; dead entries are discarded
// when they reach the front. This keeps removal O(1) and matches the way stale
// cancellation candidates are skipped.
package pqueue

import (
	"errors"

	"github.com/emirpasic/gods/queues/priorityqueue"
)

// ErrEmptyQueue is returned when popping or peeking an empty queue.
var ErrEmptyQueue = errors.New("pqueue: empty queue")

// Handle identifies one pushed entry for later removal.
type Handle uint64

type entry[T any] struct {
	item T
	seq  uint64
}

type Queue[T any] struct {
	pq      *priorityqueue.Queue
	seq     uint64
	pending map[uint64]struct{} // live entries; anything else in pq is dead
	compare func(a, b T) int
}

// New creates a queue ordered by compare, which returns a negative number when
// a has higher priority (pops first) than b.
func New[T any](compare func(a, b T) int) *Queue[T] {
	q := &Queue[T]{
		pending: make(map[uint64]struct{}),
		compare: compare,
	}
	q.pq = priorityqueue.NewWith(func(a, b interface{}) int {
		ea, eb := a.(entry[T]), b.(entry[T])
		if c := q.compare(ea.item, eb.item); c != 0 {
			return c
		}
		switch {
		case ea.seq < eb.seq:
			return -1
		case ea.seq > eb.seq:
			return 1
		}
		return 0
	})
	return q
}

// Push adds an item and returns its handle.
func (q *Queue[T]) Push(item T) Handle {
	e := entry[T]{item: item, seq: q.seq}
	q.seq++
	q.pq.Enqueue(e)
	q.pending[e.seq] = struct{}{}
	return Handle(e.seq)
}

// PopMin removes and returns the highest priority live item.
func (q *Queue[T]) PopMin() (item T, err error) {
	if err = q.skipDead(); err != nil {
		return
	}
	v, _ := q.pq.Dequeue()
	e := v.(entry[T])
	delete(q.pending, e.seq)
	return e.item, nil
}

// PeekMin returns the highest priority live item without removing it.
func (q *Queue[T]) PeekMin() (item T, err error) {
	if err = q.skipDead(); err != nil {
		return
	}
	v, _ := q.pq.Peek()
	return v.(entry[T]).item, nil
}

// skipDead drops removed entries sitting at the front.
func (q *Queue[T]) skipDead() error {
	for {
		v, ok := q.pq.Peek()
		if !ok {
			return ErrEmptyQueue
		}
		if _, live := q.pending[v.(entry[T]).seq]; live {
			return nil
		}
		q.pq.Dequeue()
	}
}

// Remove invalidates the entry with handle h. It reports false when the entry
// was already popped or removed.
func (q *Queue[T]) Remove(h Handle) bool {
	if _, live := q.pending[uint64(h)]; !live {
		return false
	}
	delete(q.pending, uint64(h))
	return true
}

// RemoveFunc invalidates every live entry whose item matches and returns how
// many were removed.
func (q *Queue[T]) RemoveFunc(match func(T) bool) (n int) {
	for _, v := range q.pq.Values() {
		e := v.(entry[T])
		if _, live := q.pending[e.seq]; !live {
			continue
		}
		if match(e.item) {
			delete(q.pending, e.seq)
			n++
		}
	}
	return
}

// Len is the number of live entries.
func (q *Queue[T]) Len() int { return len(q.pending) }

// Empty reports whether no live entries remain.
func (q *Queue[T]) Empty() bool { return len(q.pending) == 0 }

// Clear drops every entry.
func (q *Queue[T]) Clear() {
	q.pq.Clear()
	q.pending = make(map[uint64]struct{})
}
