package lockstep

import "github.com/google/btree"

// BTreeQueue is a Queue backed by a B-tree. It trades the Deque's O(n)
// out-of-order insert for O(log n), which pays off on large buffers fed
// by heavily reordered producers.
//
// An insertion sequence number breaks ties between equal stamps so
// arrival order survives the tree's strict ordering.
type BTreeQueue[S any, D Dispatch[S]] struct {
	less func(a, b S) bool
	tree *btree.BTreeG[btreeItem[S, D]]
	seq  uint64
	cap  int
}

type btreeItem[S any, D Dispatch[S]] struct {
	d   D
	seq uint64
}

// NewBTreeQueue builds a B-tree backed queue ordered by the given stamp
// arithmetic. Capacity semantics match Deque: when bounded and full,
// Insert evicts the oldest element first. n <= 0 means unbounded.
func NewBTreeQueue[S, O any, D Dispatch[S]](stamps Stamps[S, O], capacity int) *BTreeQueue[S, D] {
	less := stamps.Less
	return &BTreeQueue[S, D]{
		less: less,
		tree: btree.NewG(16, func(a, b btreeItem[S, D]) bool {
			if less(a.d.Stamp(), b.d.Stamp()) {
				return true
			}
			if less(b.d.Stamp(), a.d.Stamp()) {
				return false
			}
			return a.seq < b.seq
		}),
		cap: capacity,
	}
}

// Insert implements Queue.
func (q *BTreeQueue[S, D]) Insert(d D) {
	if q.cap > 0 && q.tree.Len() >= q.cap {
		q.tree.DeleteMin()
	}
	q.tree.ReplaceOrInsert(btreeItem[S, D]{d: d, seq: q.seq})
	q.seq++
}

// Oldest implements Queue.
func (q *BTreeQueue[S, D]) Oldest() (D, bool) {
	it, ok := q.tree.Min()
	return it.d, ok
}

// Newest implements Queue.
func (q *BTreeQueue[S, D]) Newest() (D, bool) {
	it, ok := q.tree.Max()
	return it.d, ok
}

// PopOldest implements Queue.
func (q *BTreeQueue[S, D]) PopOldest() (D, bool) {
	it, ok := q.tree.DeleteMin()
	return it.d, ok
}

// RemoveBefore implements Queue.
func (q *BTreeQueue[S, D]) RemoveBefore(s S) {
	for {
		it, ok := q.tree.Min()
		if !ok || !q.less(it.d.Stamp(), s) {
			return
		}
		q.tree.DeleteMin()
	}
}

// RemoveThrough implements Queue.
func (q *BTreeQueue[S, D]) RemoveThrough(s S) {
	for {
		it, ok := q.tree.Min()
		if !ok || q.less(s, it.d.Stamp()) {
			return
		}
		q.tree.DeleteMin()
	}
}

// Scan implements Queue.
func (q *BTreeQueue[S, D]) Scan(fn func(d D) bool) {
	q.tree.Ascend(func(it btreeItem[S, D]) bool { return fn(it.d) })
}

// Len implements Queue.
func (q *BTreeQueue[S, D]) Len() int { return q.tree.Len() }

// Cap implements Queue.
func (q *BTreeQueue[S, D]) Cap() int { return q.cap }

// Clear implements Queue.
func (q *BTreeQueue[S, D]) Clear() {
	q.tree.Clear(false)
	q.seq = 0
}
