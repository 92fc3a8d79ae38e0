package testutil

import (
	"fmt"

	"github.com/lockstep-io/lockstep"
)

// Sample builds a stamped test element with a payload derived from its
// stamp.
func Sample(stamp int64) lockstep.Sample[int64, string] {
	return lockstep.NewSample(stamp, fmt.Sprintf("s%d", stamp))
}

// Samples builds test elements for each stamp, in order.
func Samples(stamps ...int64) []lockstep.Sample[int64, string] {
	out := make([]lockstep.Sample[int64, string], len(stamps))
	for i, s := range stamps {
		out[i] = Sample(s)
	}
	return out
}

// StampsOf extracts the stamps from captured elements, in order.
func StampsOf(ds []lockstep.Sample[int64, string]) []int64 {
	out := make([]int64, len(ds))
	for i, d := range ds {
		out[i] = d.Stamp()
	}
	return out
}
