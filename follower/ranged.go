package follower

import "github.com/lockstep-io/lockstep"

// Ranged captures an interpolation set around the range shifted back by
// the delay: the freshest element strictly below the shifted lower
// bound, every element inside the shifted range inclusive, and the
// oldest element strictly above the shifted upper bound. Both bracket
// elements must exist before the capture is primed; a non-empty queue
// whose oldest element already sits inside or past the shifted range
// has lost its lower bracket for good and aborts.
type Ranged[S, O any, D lockstep.Dispatch[S]] struct {
	stamps lockstep.Stamps[S, O]
	delay  O
}

// NewRanged builds a Ranged policy with the given delay.
func NewRanged[S, O any, D lockstep.Dispatch[S]](stamps lockstep.Stamps[S, O], delay O) *Ranged[S, O, D] {
	return &Ranged[S, O, D]{stamps: stamps, delay: delay}
}

// DryCapture implements lockstep.FollowerPolicy.
func (p *Ranged[S, O, D]) DryCapture(q lockstep.Queue[S, D], r lockstep.CaptureRange[S]) lockstep.State {
	lower := p.stamps.Sub(r.Lower, p.delay)
	upper := p.stamps.Sub(r.Upper, p.delay)
	oldest, ok := q.Oldest()
	if !ok {
		return lockstep.StateRetry
	}
	if !p.stamps.Less(oldest.Stamp(), lower) {
		return lockstep.StateAborted
	}
	newest, _ := q.Newest()
	if p.stamps.Less(upper, newest.Stamp()) {
		return lockstep.StatePrimed
	}
	return lockstep.StateRetry
}

// Capture implements lockstep.FollowerPolicy.
func (p *Ranged[S, O, D]) Capture(q lockstep.Queue[S, D], sink lockstep.Sink[D], r lockstep.CaptureRange[S]) {
	lower := p.stamps.Sub(r.Lower, p.delay)
	upper := p.stamps.Sub(r.Upper, p.delay)
	var before D
	hasBefore := false
	done := false
	q.Scan(func(d D) bool {
		s := d.Stamp()
		switch {
		case p.stamps.Less(s, lower):
			before = d
			hasBefore = true
		case !p.stamps.Less(upper, s):
			if hasBefore {
				sink.Append(before)
				hasBefore = false
			}
			sink.Append(d)
		default:
			if hasBefore {
				sink.Append(before)
				hasBefore = false
			}
			sink.Append(d)
			done = true
		}
		return !done
	})
	// The element past the shifted upper bound stays buffered as the
	// next capture's lower bracket.
	q.RemoveThrough(upper)
}

// Abort implements lockstep.FollowerPolicy.
func (p *Ranged[S, O, D]) Abort(q lockstep.Queue[S, D], s S) {
	lower := p.stamps.Sub(s, p.delay)
	var keep S
	has := false
	q.Scan(func(d D) bool {
		if !p.stamps.Less(d.Stamp(), lower) {
			return false
		}
		keep = d.Stamp()
		has = true
		return true
	})
	if has {
		// Retain the freshest element below the bound as a future lower
		// bracket.
		q.RemoveBefore(keep)
		return
	}
	q.RemoveBefore(lower)
}

// Reset implements lockstep.FollowerPolicy.
func (p *Ranged[S, O, D]) Reset() {}
