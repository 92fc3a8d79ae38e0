package follower

import "github.com/lockstep-io/lockstep"

// AnyBefore captures every element with stamp strictly below the
// range's upper bound minus the delay. It never blocks the group: an
// empty result set is a valid capture.
type AnyBefore[S, O any, D lockstep.Dispatch[S]] struct {
	stamps lockstep.Stamps[S, O]
	delay  O
}

// NewAnyBefore builds an AnyBefore policy with the given delay.
func NewAnyBefore[S, O any, D lockstep.Dispatch[S]](stamps lockstep.Stamps[S, O], delay O) *AnyBefore[S, O, D] {
	return &AnyBefore[S, O, D]{stamps: stamps, delay: delay}
}

// DryCapture implements lockstep.FollowerPolicy.
func (p *AnyBefore[S, O, D]) DryCapture(lockstep.Queue[S, D], lockstep.CaptureRange[S]) lockstep.State {
	return lockstep.StatePrimed
}

// Capture implements lockstep.FollowerPolicy.
func (p *AnyBefore[S, O, D]) Capture(q lockstep.Queue[S, D], sink lockstep.Sink[D], r lockstep.CaptureRange[S]) {
	bound := p.stamps.Sub(r.Upper, p.delay)
	for {
		d, ok := q.Oldest()
		if !ok || !p.stamps.Less(d.Stamp(), bound) {
			return
		}
		q.PopOldest()
		sink.Append(d)
	}
}

// Abort implements lockstep.FollowerPolicy.
func (p *AnyBefore[S, O, D]) Abort(q lockstep.Queue[S, D], s S) {
	q.RemoveBefore(p.stamps.Sub(s, p.delay))
}

// Reset implements lockstep.FollowerPolicy.
func (p *AnyBefore[S, O, D]) Reset() {}
