package lockstep

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type qelem = Sample[int64, string]

func qel(s int64) qelem { return NewSample(s, fmt.Sprintf("p%d", s)) }

func qstamps(q Queue[int64, qelem]) []int64 {
	var out []int64
	q.Scan(func(d qelem) bool {
		out = append(out, d.Stamp())
		return true
	})
	return out
}

// eachQueue runs fn against both queue implementations so their
// semantics cannot drift apart.
func eachQueue(t *testing.T, capacity int, fn func(t *testing.T, q Queue[int64, qelem])) {
	t.Run("deque", func(t *testing.T) {
		var opts []DequeOption
		if capacity > 0 {
			opts = append(opts, WithCapacity(capacity))
		}
		fn(t, NewDeque[int64, int64, qelem](Int64Stamps{}, opts...))
	})
	t.Run("btree", func(t *testing.T) {
		fn(t, NewBTreeQueue[int64, int64, qelem](Int64Stamps{}, capacity))
	})
}

func TestQueue_InsertKeepsStampOrder(t *testing.T) {
	eachQueue(t, 0, func(t *testing.T, q Queue[int64, qelem]) {
		for _, s := range []int64{5, 1, 3, 2, 4} {
			q.Insert(qel(s))
		}
		assert.Equal(t, []int64{1, 2, 3, 4, 5}, qstamps(q))
	})
}

func TestQueue_EqualStampsKeepArrivalOrder(t *testing.T) {
	eachQueue(t, 0, func(t *testing.T, q Queue[int64, qelem]) {
		q.Insert(NewSample[int64](7, "first"))
		q.Insert(NewSample[int64](7, "second"))
		q.Insert(NewSample[int64](7, "third"))
		q.Insert(NewSample[int64](3, "early"))

		d, ok := q.PopOldest()
		require.True(t, ok)
		assert.Equal(t, "early", d.Data())

		var got []string
		q.Scan(func(d qelem) bool {
			got = append(got, d.Data())
			return true
		})
		assert.Equal(t, []string{"first", "second", "third"}, got)
	})
}

func TestQueue_BoundedEvictsOldest(t *testing.T) {
	eachQueue(t, 3, func(t *testing.T, q Queue[int64, qelem]) {
		for s := int64(1); s <= 5; s++ {
			q.Insert(qel(s))
		}
		assert.Equal(t, 3, q.Len())
		assert.Equal(t, []int64{3, 4, 5}, qstamps(q))
	})
}

func TestQueue_BoundedEvictsBeforeInsertingOlderElement(t *testing.T) {
	// The eviction happens before placement, so a full queue accepts an
	// element older than everything it holds.
	eachQueue(t, 2, func(t *testing.T, q Queue[int64, qelem]) {
		q.Insert(qel(10))
		q.Insert(qel(20))
		q.Insert(qel(5))
		assert.Equal(t, []int64{5, 20}, qstamps(q))
	})
}

func TestQueue_OldestNewest(t *testing.T) {
	eachQueue(t, 0, func(t *testing.T, q Queue[int64, qelem]) {
		_, ok := q.Oldest()
		assert.False(t, ok)
		_, ok = q.Newest()
		assert.False(t, ok)

		q.Insert(qel(2))
		q.Insert(qel(9))
		q.Insert(qel(4))

		d, ok := q.Oldest()
		require.True(t, ok)
		assert.Equal(t, int64(2), d.Stamp())
		d, ok = q.Newest()
		require.True(t, ok)
		assert.Equal(t, int64(9), d.Stamp())
		assert.Equal(t, 3, q.Len(), "peeks must not consume")
	})
}

func TestQueue_PopOldest(t *testing.T) {
	eachQueue(t, 0, func(t *testing.T, q Queue[int64, qelem]) {
		q.Insert(qel(3))
		q.Insert(qel(1))

		d, ok := q.PopOldest()
		require.True(t, ok)
		assert.Equal(t, int64(1), d.Stamp())
		d, ok = q.PopOldest()
		require.True(t, ok)
		assert.Equal(t, int64(3), d.Stamp())
		_, ok = q.PopOldest()
		assert.False(t, ok)
	})
}

func TestQueue_RemoveBefore(t *testing.T) {
	eachQueue(t, 0, func(t *testing.T, q Queue[int64, qelem]) {
		for s := int64(1); s <= 5; s++ {
			q.Insert(qel(s))
		}
		q.RemoveBefore(3)
		assert.Equal(t, []int64{3, 4, 5}, qstamps(q), "the boundary element stays")

		q.RemoveBefore(100)
		assert.Zero(t, q.Len())
	})
}

func TestQueue_RemoveThrough(t *testing.T) {
	eachQueue(t, 0, func(t *testing.T, q Queue[int64, qelem]) {
		for s := int64(1); s <= 5; s++ {
			q.Insert(qel(s))
		}
		q.RemoveThrough(3)
		assert.Equal(t, []int64{4, 5}, qstamps(q), "the boundary element goes")

		q.RemoveThrough(0)
		assert.Equal(t, []int64{4, 5}, qstamps(q))
	})
}

func TestQueue_ScanStopsEarly(t *testing.T) {
	eachQueue(t, 0, func(t *testing.T, q Queue[int64, qelem]) {
		for s := int64(1); s <= 5; s++ {
			q.Insert(qel(s))
		}
		var seen []int64
		q.Scan(func(d qelem) bool {
			seen = append(seen, d.Stamp())
			return len(seen) < 2
		})
		assert.Equal(t, []int64{1, 2}, seen)
	})
}

func TestQueue_Clear(t *testing.T) {
	eachQueue(t, 4, func(t *testing.T, q Queue[int64, qelem]) {
		q.Insert(qel(1))
		q.Insert(qel(2))
		q.Clear()
		assert.Zero(t, q.Len())
		assert.Equal(t, 4, q.Cap(), "clearing keeps the bound")

		q.Insert(qel(7))
		assert.Equal(t, []int64{7}, qstamps(q))
	})
}

func TestDeque_TimeStamps(t *testing.T) {
	type tsample = Sample[time.Time, string]
	q := NewDeque[time.Time, time.Duration, tsample](TimeStamps{})
	base := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	q.Insert(NewSample(base.Add(2*time.Second), "b"))
	q.Insert(NewSample(base, "a"))
	q.Insert(NewSample(base.Add(time.Second), "mid"))

	d, ok := q.Oldest()
	require.True(t, ok)
	assert.Equal(t, "a", d.Data())

	q.RemoveThrough(base.Add(time.Second))
	d, ok = q.Oldest()
	require.True(t, ok)
	assert.Equal(t, "b", d.Data())
}
