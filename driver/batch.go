package driver

import "github.com/lockstep-io/lockstep"

// Batch emits a sliding window of the n oldest elements per capture.
// Successive captures overlap by n-1 elements: only the oldest is
// consumed, so each element appears in up to n frames.
type Batch[S any, D lockstep.Dispatch[S]] struct {
	n int
}

// NewBatch builds a Batch policy over windows of n elements. n must be
// at least 1.
func NewBatch[S any, D lockstep.Dispatch[S]](n int) *Batch[S, D] {
	if n < 1 {
		panic("driver: batch size must be at least 1")
	}
	return &Batch[S, D]{n: n}
}

// DryCapture implements lockstep.DriverPolicy.
func (p *Batch[S, D]) DryCapture(q lockstep.Queue[S, D]) (lockstep.State, lockstep.CaptureRange[S]) {
	if q.Len() < p.n {
		return lockstep.StateRetry, lockstep.CaptureRange[S]{}
	}
	var r lockstep.CaptureRange[S]
	i := 0
	q.Scan(func(d D) bool {
		if i == 0 {
			r.Lower = d.Stamp()
		}
		r.Upper = d.Stamp()
		i++
		return i < p.n
	})
	return lockstep.StatePrimed, r
}

// Capture implements lockstep.DriverPolicy.
func (p *Batch[S, D]) Capture(q lockstep.Queue[S, D], sink lockstep.Sink[D], _ lockstep.CaptureRange[S]) {
	i := 0
	q.Scan(func(d D) bool {
		sink.Append(d)
		i++
		return i < p.n
	})
	q.PopOldest()
}

// Abort implements lockstep.DriverPolicy.
func (p *Batch[S, D]) Abort(q lockstep.Queue[S, D], s S) {
	q.RemoveThrough(s)
}

// Reset implements lockstep.DriverPolicy.
func (p *Batch[S, D]) Reset() {}
