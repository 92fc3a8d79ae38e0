package follower

import "github.com/lockstep-io/lockstep"

// ClosestBefore captures the single freshest element inside a tolerance
// window below the range's delayed lower bound: the element with the
// largest stamp in (bound-period, bound). If a witness at or past the
// bound proves no such element is coming the capture aborts; without a
// witness the group retries.
type ClosestBefore[S, O any, D lockstep.Dispatch[S]] struct {
	stamps lockstep.Stamps[S, O]
	delay  O
	period O
}

// NewClosestBefore builds a ClosestBefore policy with the given delay
// and tolerance window.
func NewClosestBefore[S, O any, D lockstep.Dispatch[S]](stamps lockstep.Stamps[S, O], delay, period O) *ClosestBefore[S, O, D] {
	return &ClosestBefore[S, O, D]{stamps: stamps, delay: delay, period: period}
}

func (p *ClosestBefore[S, O, D]) candidate(q lockstep.Queue[S, D], r lockstep.CaptureRange[S]) (D, bool) {
	bound := p.stamps.Sub(r.Lower, p.delay)
	low := p.stamps.Sub(bound, p.period)
	var best D
	found := false
	q.Scan(func(d D) bool {
		s := d.Stamp()
		if !p.stamps.Less(s, bound) {
			return false
		}
		if p.stamps.Less(low, s) {
			best = d
			found = true
		}
		return true
	})
	return best, found
}

// DryCapture implements lockstep.FollowerPolicy.
func (p *ClosestBefore[S, O, D]) DryCapture(q lockstep.Queue[S, D], r lockstep.CaptureRange[S]) lockstep.State {
	bound := p.stamps.Sub(r.Lower, p.delay)
	newest, ok := q.Newest()
	witness := ok && !p.stamps.Less(newest.Stamp(), bound)
	if _, found := p.candidate(q, r); found {
		if witness {
			return lockstep.StatePrimed
		}
		return lockstep.StateRetry
	}
	if witness {
		// Stamps are monotone, so no element can still land inside the
		// window.
		return lockstep.StateAborted
	}
	return lockstep.StateRetry
}

// Capture implements lockstep.FollowerPolicy.
func (p *ClosestBefore[S, O, D]) Capture(q lockstep.Queue[S, D], sink lockstep.Sink[D], r lockstep.CaptureRange[S]) {
	d, found := p.candidate(q, r)
	if !found {
		return
	}
	sink.Append(d)
	q.RemoveThrough(d.Stamp())
}

// Abort implements lockstep.FollowerPolicy.
func (p *ClosestBefore[S, O, D]) Abort(q lockstep.Queue[S, D], s S) {
	// Elements below s-delay-period sit under every future window; only
	// those are dropped.
	q.RemoveBefore(p.stamps.Sub(p.stamps.Sub(s, p.delay), p.period))
}

// Reset implements lockstep.FollowerPolicy.
func (p *ClosestBefore[S, O, D]) Reset() {}
