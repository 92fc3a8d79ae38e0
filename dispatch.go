package lockstep

// Dispatch is the read surface every buffered element exposes. Embedder
// message types implement it directly; Sample is the provided wrapper for
// callers without their own type.
//
// Dispatches are totally ordered by stamp. Elements with equal stamps
// preserve insertion order throughout the queue and capture pipeline.
type Dispatch[S any] interface {
	Stamp() S
}

// Sample pairs a stamp with an arbitrary payload. It is immutable.
type Sample[S, V any] struct {
	stamp S
	value V
}

// NewSample wraps a payload with its sequencing stamp.
func NewSample[S, V any](stamp S, value V) Sample[S, V] {
	return Sample[S, V]{stamp: stamp, value: value}
}

// Stamp returns the sequencing stamp.
func (s Sample[S, V]) Stamp() S { return s.stamp }

// Data returns the payload.
func (s Sample[S, V]) Data() V { return s.value }
