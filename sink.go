package lockstep

// Sink is an append-only consumer of captured dispatches. The group invokes
// Append once per emitted dispatch, in non-decreasing stamp order per stream.
type Sink[D any] interface {
	Append(d D)
}

// SliceSink accumulates appended dispatches in emission order.
type SliceSink[D any] struct {
	Items []D
}

// Append implements Sink.
func (s *SliceSink[D]) Append(d D) { s.Items = append(s.Items, d) }

// Reset drops accumulated items, retaining capacity.
func (s *SliceSink[D]) Reset() { s.Items = s.Items[:0] }

// DiscardSink drops everything appended to it. Useful for streams whose
// captured elements pace the group but are not consumed.
type DiscardSink[D any] struct{}

// Append implements Sink.
func (DiscardSink[D]) Append(D) {}
