package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lockstep-io/lockstep"
	"github.com/lockstep-io/lockstep/internal/testutil"
)

func TestNewBatch_RejectsZeroWindow(t *testing.T) {
	assert.Panics(t, func() { NewBatch[int64, element](0) })
}

func TestBatch_RetriesUntilWindowFills(t *testing.T) {
	p := NewBatch[int64, element](3)
	q := newQueue(1, 2)

	st, _ := p.DryCapture(q)
	assert.Equal(t, lockstep.StateRetry, st)

	q.Insert(testutil.Sample(3))
	st, r := p.DryCapture(q)
	assert.Equal(t, lockstep.StatePrimed, st)
	assert.Equal(t, lockstep.CaptureRange[int64]{Lower: 1, Upper: 3}, r)
}

func TestBatch_RangeCoversOldestWindow(t *testing.T) {
	p := NewBatch[int64, element](2)
	q := newQueue(5, 8, 13)

	st, r := p.DryCapture(q)
	require.Equal(t, lockstep.StatePrimed, st)
	assert.Equal(t, lockstep.CaptureRange[int64]{Lower: 5, Upper: 8}, r)
}

func TestBatch_WindowsSlideByOne(t *testing.T) {
	p := NewBatch[int64, element](3)
	q := newQueue(1, 2, 3, 4)
	var sink lockstep.SliceSink[element]

	st, r := p.DryCapture(q)
	require.Equal(t, lockstep.StatePrimed, st)
	p.Capture(q, &sink, r)
	assert.Equal(t, []int64{1, 2, 3}, sinkStamps(&sink))
	assert.Equal(t, []int64{2, 3, 4}, queueStamps(q), "only the oldest element is consumed")

	sink.Reset()
	st, r = p.DryCapture(q)
	require.Equal(t, lockstep.StatePrimed, st)
	p.Capture(q, &sink, r)
	assert.Equal(t, []int64{2, 3, 4}, sinkStamps(&sink))
	assert.Equal(t, []int64{3, 4}, queueStamps(q))

	st, _ = p.DryCapture(q)
	assert.Equal(t, lockstep.StateRetry, st, "two elements cannot fill a window of three")
}

func TestBatch_AbortDropsThroughStamp(t *testing.T) {
	p := NewBatch[int64, element](2)
	q := newQueue(1, 2, 3)

	p.Abort(q, 2)
	assert.Equal(t, []int64{3}, queueStamps(q))
}
