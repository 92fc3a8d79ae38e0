package follower

import "github.com/lockstep-io/lockstep"

// CountBefore captures the n freshest elements with stamps strictly
// below the range's delayed lower bound, in ascending order. A witness
// at or past the bound closes the interval: with at least n elements
// below it the capture is primed, with fewer it aborts because the
// count can never be met. Without a witness the group retries.
type CountBefore[S, O any, D lockstep.Dispatch[S]] struct {
	stamps lockstep.Stamps[S, O]
	n      int
	delay  O
}

// NewCountBefore builds a CountBefore policy requiring n elements below
// the delayed bound. n must be at least 1.
func NewCountBefore[S, O any, D lockstep.Dispatch[S]](stamps lockstep.Stamps[S, O], n int, delay O) *CountBefore[S, O, D] {
	if n < 1 {
		panic("follower: count must be at least 1")
	}
	return &CountBefore[S, O, D]{stamps: stamps, n: n, delay: delay}
}

// DryCapture implements lockstep.FollowerPolicy.
func (p *CountBefore[S, O, D]) DryCapture(q lockstep.Queue[S, D], r lockstep.CaptureRange[S]) lockstep.State {
	bound := p.stamps.Sub(r.Lower, p.delay)
	newest, ok := q.Newest()
	if !ok || p.stamps.Less(newest.Stamp(), bound) {
		return lockstep.StateRetry
	}
	count := 0
	q.Scan(func(d D) bool {
		if !p.stamps.Less(d.Stamp(), bound) {
			return false
		}
		count++
		return true
	})
	if count >= p.n {
		return lockstep.StatePrimed
	}
	return lockstep.StateAborted
}

// Capture implements lockstep.FollowerPolicy.
func (p *CountBefore[S, O, D]) Capture(q lockstep.Queue[S, D], sink lockstep.Sink[D], r lockstep.CaptureRange[S]) {
	bound := p.stamps.Sub(r.Lower, p.delay)
	var below []D
	q.Scan(func(d D) bool {
		if !p.stamps.Less(d.Stamp(), bound) {
			return false
		}
		below = append(below, d)
		return true
	})
	if len(below) > p.n {
		below = below[len(below)-p.n:]
	}
	for _, d := range below {
		sink.Append(d)
	}
	q.RemoveBefore(bound)
}

// Abort implements lockstep.FollowerPolicy.
func (p *CountBefore[S, O, D]) Abort(q lockstep.Queue[S, D], s S) {
	q.RemoveBefore(p.stamps.Sub(s, p.delay))
}

// Reset implements lockstep.FollowerPolicy.
func (p *CountBefore[S, O, D]) Reset() {}
