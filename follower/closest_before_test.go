package follower

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lockstep-io/lockstep"
)

func TestClosestBefore_EmptyQueueRetries(t *testing.T) {
	p := NewClosestBefore[int64, int64, element](stamps, 0, 5)
	assert.Equal(t, lockstep.StateRetry, p.DryCapture(newQueue(), rng(10, 12)))
}

func TestClosestBefore_CandidateWithoutWitnessRetries(t *testing.T) {
	p := NewClosestBefore[int64, int64, element](stamps, 0, 5)
	// 8 sits inside (5, 10) but nothing proves a fresher one is not coming.
	assert.Equal(t, lockstep.StateRetry, p.DryCapture(newQueue(8), rng(10, 12)))
}

func TestClosestBefore_CapturesFreshestInWindow(t *testing.T) {
	p := NewClosestBefore[int64, int64, element](stamps, 0, 5)
	q := newQueue(6, 8, 9, 10)

	require.Equal(t, lockstep.StatePrimed, p.DryCapture(q, rng(10, 12)))

	var sink lockstep.SliceSink[element]
	p.Capture(q, &sink, rng(10, 12))
	assert.Equal(t, []int64{9}, sinkStamps(&sink), "the largest stamp inside the window wins")
	assert.Equal(t, []int64{10}, queueStamps(q), "everything through the candidate is spent")
}

func TestClosestBefore_WindowLowerEdgeIsExclusive(t *testing.T) {
	p := NewClosestBefore[int64, int64, element](stamps, 0, 5)
	// Window is (5, 10): a stamp of exactly 5 is too stale.
	q := newQueue(5, 10)

	assert.Equal(t, lockstep.StateAborted, p.DryCapture(q, rng(10, 12)))
}

func TestClosestBefore_WitnessWithoutCandidateAborts(t *testing.T) {
	p := NewClosestBefore[int64, int64, element](stamps, 0, 3)
	q := newQueue(1, 10)

	assert.Equal(t, lockstep.StateAborted, p.DryCapture(q, rng(10, 12)),
		"monotone stamps mean the window can never fill")
}

func TestClosestBefore_DelayShiftsWindow(t *testing.T) {
	p := NewClosestBefore[int64, int64, element](stamps, 2, 5)
	// Bound is 10-2=8, window (3, 8); 7 is the candidate, 8 the witness.
	q := newQueue(2, 7, 8)

	require.Equal(t, lockstep.StatePrimed, p.DryCapture(q, rng(10, 12)))

	var sink lockstep.SliceSink[element]
	p.Capture(q, &sink, rng(10, 12))
	assert.Equal(t, []int64{7}, sinkStamps(&sink))
}

func TestClosestBefore_AbortDropsBelowWindowFloor(t *testing.T) {
	p := NewClosestBefore[int64, int64, element](stamps, 2, 5)
	q := newQueue(1, 3, 6)

	// Horizon is 10-2-5=3; only elements below it go.
	p.Abort(q, 10)
	assert.Equal(t, []int64{3, 6}, queueStamps(q))
}
