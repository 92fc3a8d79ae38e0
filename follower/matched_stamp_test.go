package follower

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lockstep-io/lockstep"
)

func TestMatchedStamp_EmptyQueueRetries(t *testing.T) {
	p := NewMatchedStamp[int64, int64, element](stamps)
	assert.Equal(t, lockstep.StateRetry, p.DryCapture(newQueue(), rng(5, 5)))
}

func TestMatchedStamp_OnlyOlderDataRetries(t *testing.T) {
	p := NewMatchedStamp[int64, int64, element](stamps)
	assert.Equal(t, lockstep.StateRetry, p.DryCapture(newQueue(2, 3), rng(5, 5)),
		"the match may still arrive")
}

func TestMatchedStamp_PassedBoundAborts(t *testing.T) {
	p := NewMatchedStamp[int64, int64, element](stamps)
	assert.Equal(t, lockstep.StateAborted, p.DryCapture(newQueue(6, 9), rng(5, 5)),
		"monotone stamps mean 5 can never arrive")
}

func TestMatchedStamp_ExactMatchCaptures(t *testing.T) {
	p := NewMatchedStamp[int64, int64, element](stamps)
	q := newQueue(2, 5, 8)

	require.Equal(t, lockstep.StatePrimed, p.DryCapture(q, rng(5, 5)))

	var sink lockstep.SliceSink[element]
	p.Capture(q, &sink, rng(5, 5))
	assert.Equal(t, []int64{5}, sinkStamps(&sink))
	assert.Equal(t, []int64{8}, queueStamps(q), "everything through the match is spent")
}

func TestMatchedStamp_StaleDataDoesNotMaskMatch(t *testing.T) {
	p := NewMatchedStamp[int64, int64, element](stamps)
	q := newQueue(1, 2, 3, 5)
	assert.Equal(t, lockstep.StatePrimed, p.DryCapture(q, rng(5, 5)))
}

func TestMatchedStamp_AbortKeepsBoundaryElement(t *testing.T) {
	p := NewMatchedStamp[int64, int64, element](stamps)
	q := newQueue(2, 5, 8)

	p.Abort(q, 5)
	assert.Equal(t, []int64{5, 8}, queueStamps(q),
		"an element at the abort stamp can still match a later range")
}
