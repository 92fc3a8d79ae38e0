package driver

import "github.com/lockstep-io/lockstep"

// Throttled emits the oldest element per capture, but no more often
// than once per period of stamp progress. The gate looks only at the
// oldest buffered element: while it sits inside the quiet interval the
// policy retries, even if a later element is past the threshold.
// Everything at or below an emitted stamp is dropped with it.
type Throttled[S, O any, D lockstep.Dispatch[S]] struct {
	stamps lockstep.Stamps[S, O]
	period O
	last   S
	has    bool
}

// NewThrottled builds a Throttled policy with a minimum stamp gap of
// period between successive captures.
func NewThrottled[S, O any, D lockstep.Dispatch[S]](stamps lockstep.Stamps[S, O], period O) *Throttled[S, O, D] {
	return &Throttled[S, O, D]{stamps: stamps, period: period}
}

// DryCapture implements lockstep.DriverPolicy.
func (p *Throttled[S, O, D]) DryCapture(q lockstep.Queue[S, D]) (lockstep.State, lockstep.CaptureRange[S]) {
	oldest, ok := q.Oldest()
	if !ok {
		return lockstep.StateRetry, lockstep.CaptureRange[S]{}
	}
	s := oldest.Stamp()
	if p.has && p.stamps.Less(s, p.stamps.Add(p.last, p.period)) {
		return lockstep.StateRetry, lockstep.CaptureRange[S]{}
	}
	return lockstep.StatePrimed, lockstep.CaptureRange[S]{Lower: s, Upper: s}
}

// Capture implements lockstep.DriverPolicy.
func (p *Throttled[S, O, D]) Capture(q lockstep.Queue[S, D], sink lockstep.Sink[D], _ lockstep.CaptureRange[S]) {
	d, ok := q.PopOldest()
	if !ok {
		return
	}
	sink.Append(d)
	s := d.Stamp()
	// Duplicates of the emitted stamp are spent by this capture.
	q.RemoveThrough(s)
	p.last = s
	p.has = true
}

// Abort implements lockstep.DriverPolicy.
//
// The throttle clock is untouched: aborting does not grant a free
// capture inside the quiet interval.
func (p *Throttled[S, O, D]) Abort(q lockstep.Queue[S, D], s S) {
	q.RemoveThrough(s)
}

// Reset implements lockstep.DriverPolicy.
func (p *Throttled[S, O, D]) Reset() {
	var zero S
	p.last = zero
	p.has = false
}
