package driver

import "github.com/lockstep-io/lockstep"

// Next emits the single oldest element per capture. The capture range
// collapses to that element's stamp.
type Next[S any, D lockstep.Dispatch[S]] struct{}

// NewNext builds a Next policy.
func NewNext[S any, D lockstep.Dispatch[S]]() *Next[S, D] {
	return &Next[S, D]{}
}

// DryCapture implements lockstep.DriverPolicy.
func (p *Next[S, D]) DryCapture(q lockstep.Queue[S, D]) (lockstep.State, lockstep.CaptureRange[S]) {
	oldest, ok := q.Oldest()
	if !ok {
		return lockstep.StateRetry, lockstep.CaptureRange[S]{}
	}
	s := oldest.Stamp()
	return lockstep.StatePrimed, lockstep.CaptureRange[S]{Lower: s, Upper: s}
}

// Capture implements lockstep.DriverPolicy.
func (p *Next[S, D]) Capture(q lockstep.Queue[S, D], sink lockstep.Sink[D], _ lockstep.CaptureRange[S]) {
	if d, ok := q.PopOldest(); ok {
		sink.Append(d)
	}
}

// Abort implements lockstep.DriverPolicy.
func (p *Next[S, D]) Abort(q lockstep.Queue[S, D], s S) {
	q.RemoveThrough(s)
}

// Reset implements lockstep.DriverPolicy.
func (p *Next[S, D]) Reset() {}
