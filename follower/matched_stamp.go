package follower

import "github.com/lockstep-io/lockstep"

// MatchedStamp captures the element whose stamp equals the range's
// lower bound exactly. Once the oldest buffered stamp passes the bound
// no match can ever arrive and the capture aborts; with no data or only
// older data the group retries.
type MatchedStamp[S, O any, D lockstep.Dispatch[S]] struct {
	stamps lockstep.Stamps[S, O]
}

// NewMatchedStamp builds a MatchedStamp policy.
func NewMatchedStamp[S, O any, D lockstep.Dispatch[S]](stamps lockstep.Stamps[S, O]) *MatchedStamp[S, O, D] {
	return &MatchedStamp[S, O, D]{stamps: stamps}
}

func (p *MatchedStamp[S, O, D]) equal(a, b S) bool {
	return !p.stamps.Less(a, b) && !p.stamps.Less(b, a)
}

// DryCapture implements lockstep.FollowerPolicy.
func (p *MatchedStamp[S, O, D]) DryCapture(q lockstep.Queue[S, D], r lockstep.CaptureRange[S]) lockstep.State {
	oldest, ok := q.Oldest()
	if !ok {
		return lockstep.StateRetry
	}
	if p.stamps.Less(r.Lower, oldest.Stamp()) {
		return lockstep.StateAborted
	}
	st := lockstep.StateRetry
	q.Scan(func(d D) bool {
		s := d.Stamp()
		if p.stamps.Less(r.Lower, s) {
			return false
		}
		if p.equal(s, r.Lower) {
			st = lockstep.StatePrimed
			return false
		}
		return true
	})
	return st
}

// Capture implements lockstep.FollowerPolicy.
func (p *MatchedStamp[S, O, D]) Capture(q lockstep.Queue[S, D], sink lockstep.Sink[D], r lockstep.CaptureRange[S]) {
	var match D
	found := false
	q.Scan(func(d D) bool {
		if p.equal(d.Stamp(), r.Lower) {
			match = d
			found = true
			return false
		}
		return !p.stamps.Less(r.Lower, d.Stamp())
	})
	if found {
		sink.Append(match)
	}
	q.RemoveThrough(r.Lower)
}

// Abort implements lockstep.FollowerPolicy.
func (p *MatchedStamp[S, O, D]) Abort(q lockstep.Queue[S, D], s S) {
	q.RemoveBefore(s)
}

// Reset implements lockstep.FollowerPolicy.
func (p *MatchedStamp[S, O, D]) Reset() {}
