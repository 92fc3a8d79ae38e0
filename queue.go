package lockstep

import "sort"

// Queue is the ordered buffer behind every captor. Elements are kept in
// non-decreasing stamp order; elements with equal stamps keep insertion
// order. A bounded queue drops its oldest element before inserting when
// full, so the newest data always wins.
//
// Queue implementations are not safe for concurrent use; the captor's
// lock policy provides exclusion.
type Queue[S any, D Dispatch[S]] interface {
	// Insert adds d in stamp order, evicting the oldest element first if
	// the queue is at capacity.
	Insert(d D)
	// Oldest returns the lowest-stamped element without removing it.
	Oldest() (D, bool)
	// Newest returns the highest-stamped element without removing it.
	Newest() (D, bool)
	// PopOldest removes and returns the lowest-stamped element.
	PopOldest() (D, bool)
	// RemoveBefore removes every element with stamp strictly below s.
	RemoveBefore(s S)
	// RemoveThrough removes every element with stamp at or below s.
	RemoveThrough(s S)
	// Scan visits elements oldest to newest until fn returns false.
	Scan(fn func(d D) bool)
	// Len returns the number of buffered elements.
	Len() int
	// Cap returns the capacity limit, or 0 for unbounded.
	Cap() int
	// Clear removes all elements.
	Clear()
}

// Deque is the default Queue: a slice kept sorted by stamp. Inserts at
// the tail are O(1), which is the common case for monotone producers;
// out-of-order inserts shift.
type Deque[S any, D Dispatch[S]] struct {
	less  func(a, b S) bool
	items []D
	cap   int
}

// DequeOption configures a Deque at construction.
type DequeOption func(*dequeConfig)

type dequeConfig struct {
	cap int
}

// WithCapacity bounds the queue to n elements. When full, Insert evicts
// the oldest element before adding the new one. n <= 0 means unbounded.
func WithCapacity(n int) DequeOption {
	return func(c *dequeConfig) { c.cap = n }
}

// NewDeque builds a Deque ordered by the given stamp arithmetic.
func NewDeque[S, O any, D Dispatch[S]](stamps Stamps[S, O], opts ...DequeOption) *Deque[S, D] {
	var cfg dequeConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Deque[S, D]{less: stamps.Less, cap: cfg.cap}
}

// Insert implements Queue.
func (q *Deque[S, D]) Insert(d D) {
	if q.cap > 0 && len(q.items) >= q.cap {
		q.popFront()
	}
	n := len(q.items)
	if n == 0 || !q.less(d.Stamp(), q.items[n-1].Stamp()) {
		q.items = append(q.items, d)
		return
	}
	// First element strictly greater than d; inserting before it keeps
	// equal stamps in arrival order.
	i := sort.Search(n, func(i int) bool { return q.less(d.Stamp(), q.items[i].Stamp()) })
	q.items = append(q.items, d)
	copy(q.items[i+1:], q.items[i:])
	q.items[i] = d
}

// Oldest implements Queue.
func (q *Deque[S, D]) Oldest() (D, bool) {
	var zero D
	if len(q.items) == 0 {
		return zero, false
	}
	return q.items[0], true
}

// Newest implements Queue.
func (q *Deque[S, D]) Newest() (D, bool) {
	var zero D
	if len(q.items) == 0 {
		return zero, false
	}
	return q.items[len(q.items)-1], true
}

// PopOldest implements Queue.
func (q *Deque[S, D]) PopOldest() (D, bool) {
	var zero D
	if len(q.items) == 0 {
		return zero, false
	}
	d := q.popFront()
	return d, true
}

func (q *Deque[S, D]) popFront() D {
	var zero D
	d := q.items[0]
	q.items[0] = zero // release the reference
	q.items = q.items[1:]
	return d
}

// RemoveBefore implements Queue.
func (q *Deque[S, D]) RemoveBefore(s S) {
	i := sort.Search(len(q.items), func(i int) bool { return !q.less(q.items[i].Stamp(), s) })
	q.drop(i)
}

// RemoveThrough implements Queue.
func (q *Deque[S, D]) RemoveThrough(s S) {
	i := sort.Search(len(q.items), func(i int) bool { return q.less(s, q.items[i].Stamp()) })
	q.drop(i)
}

func (q *Deque[S, D]) drop(n int) {
	if n == 0 {
		return
	}
	var zero D
	for i := 0; i < n; i++ {
		q.items[i] = zero
	}
	q.items = q.items[n:]
}

// Scan implements Queue.
func (q *Deque[S, D]) Scan(fn func(d D) bool) {
	for _, d := range q.items {
		if !fn(d) {
			return
		}
	}
}

// Len implements Queue.
func (q *Deque[S, D]) Len() int { return len(q.items) }

// Cap implements Queue.
func (q *Deque[S, D]) Cap() int { return q.cap }

// Clear implements Queue.
func (q *Deque[S, D]) Clear() {
	var zero D
	for i := range q.items {
		q.items[i] = zero
	}
	q.items = q.items[:0]
}
