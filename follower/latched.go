package follower

import "github.com/lockstep-io/lockstep"

// Latched holds the freshest element old enough to have settled, at
// least lead below the range's lower bound, and re-emits the held value
// on every capture until a fresher one qualifies. It models slow state
// streams (calibration, configuration) that every frame needs a value
// from.
type Latched[S, O any, D lockstep.Dispatch[S]] struct {
	stamps lockstep.Stamps[S, O]
	lead   O
	held   D
	has    bool
}

// NewLatched builds a Latched policy with the given minimum lead.
func NewLatched[S, O any, D lockstep.Dispatch[S]](stamps lockstep.Stamps[S, O], lead O) *Latched[S, O, D] {
	return &Latched[S, O, D]{stamps: stamps, lead: lead}
}

func (p *Latched[S, O, D]) settled(q lockstep.Queue[S, D], boundary S) (D, bool) {
	var best D
	found := false
	q.Scan(func(d D) bool {
		if p.stamps.Less(boundary, d.Stamp()) {
			return false
		}
		best = d
		found = true
		return true
	})
	return best, found
}

// DryCapture implements lockstep.FollowerPolicy.
func (p *Latched[S, O, D]) DryCapture(q lockstep.Queue[S, D], r lockstep.CaptureRange[S]) lockstep.State {
	if p.has {
		return lockstep.StatePrimed
	}
	boundary := p.stamps.Sub(r.Lower, p.lead)
	if _, found := p.settled(q, boundary); found {
		return lockstep.StatePrimed
	}
	return lockstep.StateRetry
}

// Capture implements lockstep.FollowerPolicy.
func (p *Latched[S, O, D]) Capture(q lockstep.Queue[S, D], sink lockstep.Sink[D], r lockstep.CaptureRange[S]) {
	boundary := p.stamps.Sub(r.Lower, p.lead)
	if d, found := p.settled(q, boundary); found {
		p.held = d
		p.has = true
		q.RemoveThrough(d.Stamp())
	}
	if p.has {
		sink.Append(p.held)
	}
}

// Abort implements lockstep.FollowerPolicy.
//
// The freshest settled element latches even on abort, so the next
// frame starts from the best value the aborted sequence had produced.
func (p *Latched[S, O, D]) Abort(q lockstep.Queue[S, D], s S) {
	boundary := p.stamps.Sub(s, p.lead)
	if d, found := p.settled(q, boundary); found {
		p.held = d
		p.has = true
		q.RemoveThrough(d.Stamp())
		return
	}
	q.RemoveBefore(boundary)
}

// Reset implements lockstep.FollowerPolicy.
func (p *Latched[S, O, D]) Reset() {
	var zero D
	p.held = zero
	p.has = false
}
