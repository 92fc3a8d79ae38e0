package follower

import "github.com/lockstep-io/lockstep"

// Before captures every element with stamp strictly below the range's
// lower bound minus the delay, but only once an element at or past that
// bound has arrived to prove the interval is closed. Until that witness
// shows up the group retries.
type Before[S, O any, D lockstep.Dispatch[S]] struct {
	stamps lockstep.Stamps[S, O]
	delay  O
}

// NewBefore builds a Before policy with the given delay.
func NewBefore[S, O any, D lockstep.Dispatch[S]](stamps lockstep.Stamps[S, O], delay O) *Before[S, O, D] {
	return &Before[S, O, D]{stamps: stamps, delay: delay}
}

// DryCapture implements lockstep.FollowerPolicy.
func (p *Before[S, O, D]) DryCapture(q lockstep.Queue[S, D], r lockstep.CaptureRange[S]) lockstep.State {
	bound := p.stamps.Sub(r.Lower, p.delay)
	newest, ok := q.Newest()
	if !ok || p.stamps.Less(newest.Stamp(), bound) {
		return lockstep.StateRetry
	}
	return lockstep.StatePrimed
}

// Capture implements lockstep.FollowerPolicy.
func (p *Before[S, O, D]) Capture(q lockstep.Queue[S, D], sink lockstep.Sink[D], r lockstep.CaptureRange[S]) {
	bound := p.stamps.Sub(r.Lower, p.delay)
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
func (p *Before[S, O, D]) Abort(q lockstep.Queue[S, D], s S) {
	q.RemoveBefore(p.stamps.Sub(s, p.delay))
}

// Reset implements lockstep.FollowerPolicy.
func (p *Before[S, O, D]) Reset() {}
