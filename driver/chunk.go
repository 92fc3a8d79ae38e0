package driver

import "github.com/lockstep-io/lockstep"

// Chunk emits disjoint blocks of the n oldest elements per capture.
// Every element appears in exactly one frame.
type Chunk[S any, D lockstep.Dispatch[S]] struct {
	n int
}

// NewChunk builds a Chunk policy over blocks of n elements. n must be
// at least 1.
func NewChunk[S any, D lockstep.Dispatch[S]](n int) *Chunk[S, D] {
	if n < 1 {
		panic("driver: chunk size must be at least 1")
	}
	return &Chunk[S, D]{n: n}
}

// DryCapture implements lockstep.DriverPolicy.
func (p *Chunk[S, D]) DryCapture(q lockstep.Queue[S, D]) (lockstep.State, lockstep.CaptureRange[S]) {
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
func (p *Chunk[S, D]) Capture(q lockstep.Queue[S, D], sink lockstep.Sink[D], _ lockstep.CaptureRange[S]) {
	for i := 0; i < p.n; i++ {
		d, ok := q.PopOldest()
		if !ok {
			return
		}
		sink.Append(d)
	}
}

// Abort implements lockstep.DriverPolicy.
func (p *Chunk[S, D]) Abort(q lockstep.Queue[S, D], s S) {
	q.RemoveThrough(s)
}

// Reset implements lockstep.DriverPolicy.
func (p *Chunk[S, D]) Reset() {}
