package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lockstep-io/lockstep/internal/scenario"
)

// pairingScenario pairs a next driver with a zero-delay before
// follower: each driver element captures the follower data strictly
// below it.
func pairingScenario() *scenario.Scenario {
	return &scenario.Scenario{
		Name:        "pairing",
		Description: "one driver pacing one follower",
		Streams: []scenario.Stream{
			{Name: "ticks", Role: scenario.RoleDriver, Policy: scenario.PolicyNext},
			{Name: "readings", Role: scenario.RoleFollower, Policy: scenario.PolicyBefore},
		},
		Script: []scenario.Injection{
			{Stream: "ticks", Stamps: []int64{1, 2}},
			{Stream: "readings", Stamps: []int64{0, 1, 2}},
		},
		Captures: 3,
	}
}

// windowedScenario drives with a sliding window of three, so driver
// ranges overlap while the follower only ever gives up data below the
// window floor.
func windowedScenario() *scenario.Scenario {
	return &scenario.Scenario{
		Name:        "windowed",
		Description: "sliding window driver over a leading-edge follower",
		Streams: []scenario.Stream{
			{Name: "ticks", Role: scenario.RoleDriver, Policy: scenario.PolicyBatch,
				Params: scenario.Params{N: 3}},
			{Name: "readings", Role: scenario.RoleFollower, Policy: scenario.PolicyBefore},
		},
		Script: []scenario.Injection{
			{Stream: "ticks", Stamps: []int64{1, 2, 3, 4}},
			{Stream: "readings", Stamps: []int64{0, 1, 2, 3, 4, 5}},
		},
		Captures: 3,
	}
}

// recoveryScenario forces an abort on the first attempt: the follower
// demands an exact stamp match and its oldest element is already past
// the first driver stamp.
func recoveryScenario() *scenario.Scenario {
	return &scenario.Scenario{
		Name:        "recovery",
		Description: "abort prunes the group, then the next range captures",
		Streams: []scenario.Stream{
			{Name: "ticks", Role: scenario.RoleDriver, Policy: scenario.PolicyNext},
			{Name: "readings", Role: scenario.RoleFollower, Policy: scenario.PolicyMatchedStamp},
		},
		Script: []scenario.Injection{
			{Stream: "ticks", Stamps: []int64{1, 2}},
			{Stream: "readings", Stamps: []int64{2}},
		},
		Captures: 3,
	}
}

func statesOf(r *Result) []string {
	out := make([]string, len(r.Frames))
	for i, f := range r.Frames {
		out[i] = f.State
	}
	return out
}

func TestRunner_Run_Pairing(t *testing.T) {
	result, err := NewRunner().Run(pairingScenario())
	require.NoError(t, err)

	assert.Equal(t, []string{"primed", "primed", "retry"}, statesOf(result))

	f0 := result.Frames[0]
	assert.Equal(t, int64(1), f0.Lower)
	assert.Equal(t, int64(1), f0.Upper)
	require.Len(t, f0.Streams["ticks"], 1)
	assert.Equal(t, "ticks@1", f0.Streams["ticks"][0].Payload)
	require.Len(t, f0.Streams["readings"], 1)
	assert.Equal(t, int64(0), f0.Streams["readings"][0].Stamp)

	f1 := result.Frames[1]
	assert.Equal(t, int64(2), f1.Lower)
	require.Len(t, f1.Streams["readings"], 1)
	assert.Equal(t, int64(1), f1.Streams["readings"][0].Stamp)

	assert.Nil(t, result.Frames[2].Streams)
	assert.Equal(t, map[string]int{"ticks": 0, "readings": 1}, result.Depths)
	assert.True(t, result.Pass)
}

func TestRunner_Run_Windowed(t *testing.T) {
	result, err := NewRunner().Run(windowedScenario())
	require.NoError(t, err)

	assert.Equal(t, []string{"primed", "primed", "retry"}, statesOf(result))

	f0 := result.Frames[0]
	assert.Equal(t, int64(1), f0.Lower)
	assert.Equal(t, int64(3), f0.Upper)
	require.Len(t, f0.Streams["ticks"], 3)
	require.Len(t, f0.Streams["readings"], 1)
	assert.Equal(t, int64(0), f0.Streams["readings"][0].Stamp)

	f1 := result.Frames[1]
	assert.Equal(t, int64(2), f1.Lower)
	assert.Equal(t, int64(4), f1.Upper)
	require.Len(t, f1.Streams["readings"], 1)
	assert.Equal(t, int64(1), f1.Streams["readings"][0].Stamp)

	assert.Equal(t, map[string]int{"ticks": 2, "readings": 4}, result.Depths)
}

func TestRunner_Run_RecoversAfterAbort(t *testing.T) {
	result, err := NewRunner().Run(recoveryScenario())
	require.NoError(t, err)

	assert.Equal(t, []string{"aborted", "primed", "retry"}, statesOf(result))

	f0 := result.Frames[0]
	assert.Equal(t, int64(1), f0.Lower)
	assert.Equal(t, int64(1), f0.Upper)
	assert.Nil(t, f0.Streams, "an aborted frame carries no emissions")

	f1 := result.Frames[1]
	assert.Equal(t, int64(2), f1.Lower)
	require.Len(t, f1.Streams["readings"], 1)
	assert.Equal(t, "readings@2", f1.Streams["readings"][0].Payload)

	assert.Equal(t, map[string]int{"ticks": 0, "readings": 0}, result.Depths)
}

func TestRunner_Run_StopsAfterRetry(t *testing.T) {
	s := pairingScenario()
	s.Captures = 10

	result, err := NewRunner().Run(s)
	require.NoError(t, err)
	assert.Len(t, result.Frames, 3, "a retry frame ends the run early")
	assert.Equal(t, "retry", result.Frames[2].State)
}

func TestRunner_Run_UnknownScriptStream(t *testing.T) {
	s := pairingScenario()
	s.Script[0].Stream = "ghost"

	_, err := NewRunner().Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown stream "ghost"`)
}

func TestRunner_Run_AssertionsPass(t *testing.T) {
	s := pairingScenario()
	s.Assertions = []scenario.Assertion{
		{Type: scenario.AssertFrameCount, Count: 2},
		{Type: scenario.AssertFrameContains, Frame: 0, Stream: "readings", Stamps: []int64{0}},
		{Type: scenario.AssertFrameOrder, Stream: "readings"},
		{Type: scenario.AssertQueueDepth, Stream: "readings", Depth: 1},
		{Type: scenario.AssertStateSequence, States: []string{"primed", "primed", "retry"}},
	}

	result, err := NewRunner().Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass)
	assert.Empty(t, result.Errors)
}

func TestRunner_Run_FrameCountIgnoresNonPrimed(t *testing.T) {
	s := recoveryScenario()
	s.Assertions = []scenario.Assertion{
		{Type: scenario.AssertFrameCount, Count: 1},
	}

	result, err := NewRunner().Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "aborted and retry frames do not count")
}

func TestRunner_Run_AssertionFailures(t *testing.T) {
	tests := []struct {
		name      string
		assertion scenario.Assertion
		want      string
	}{
		{"frame count", scenario.Assertion{Type: scenario.AssertFrameCount, Count: 5},
			"frame_count: got 2 primed frames, want 5"},
		{"frame contains out of range", scenario.Assertion{Type: scenario.AssertFrameContains, Frame: 7, Stream: "ticks"},
			"frame 7 out of range"},
		{"frame contains wrong stamps", scenario.Assertion{Type: scenario.AssertFrameContains, Frame: 0, Stream: "readings", Stamps: []int64{9}},
			"element 0 has stamp 0, want 9"},
		{"queue depth", scenario.Assertion{Type: scenario.AssertQueueDepth, Stream: "readings", Depth: 4},
			`stream "readings" has depth 1, want 4`},
		{"queue depth unknown stream", scenario.Assertion{Type: scenario.AssertQueueDepth, Stream: "ghost"},
			`unknown stream "ghost"`},
		{"state sequence mismatch", scenario.Assertion{Type: scenario.AssertStateSequence, States: []string{"aborted"}},
			`frame 0 resolved "primed", want "aborted"`},
		{"state sequence too long", scenario.Assertion{Type: scenario.AssertStateSequence, States: []string{"primed", "primed", "retry", "retry"}},
			"got 3 frames, want at least 4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := pairingScenario()
			s.Assertions = []scenario.Assertion{tt.assertion}

			result, err := NewRunner().Run(s)
			require.NoError(t, err)
			assert.False(t, result.Pass)
			require.Len(t, result.Errors, 1)
			assert.Contains(t, result.Errors[0], tt.want)
		})
	}
}

func TestRunner_Run_StateSequenceIsPrefixMatch(t *testing.T) {
	s := pairingScenario()
	s.Assertions = []scenario.Assertion{
		{Type: scenario.AssertStateSequence, States: []string{"primed"}},
	}

	result, err := NewRunner().Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "a shorter expected sequence matches the head")
}
