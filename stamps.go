package lockstep

import (
	"math"
	"time"
)

// Stamps describes the arithmetic of a sequencing stamp type S with its
// signed offset type O. Stamps are totally ordered and monotonically
// non-decreasing per input stream; offsets may be negative (delays can
// shift a boundary in either direction).
//
// Implementations must satisfy Add(Sub(s, d), d) == s for offsets that do
// not overflow. Overflowing arithmetic is a fatal misuse (spilling past
// Min/Max wraps) and is not detected here.
type Stamps[S, O any] interface {
	// Min returns the smallest representable stamp.
	Min() S
	// Max returns the largest representable stamp.
	Max() S
	// Less reports whether a orders strictly before b.
	Less(a, b S) bool
	// Add shifts a stamp forward by an offset.
	Add(s S, d O) S
	// Sub shifts a stamp backward by an offset.
	Sub(s S, d O) S
	// Diff returns a - b as an offset.
	Diff(a, b S) O
	// Tick returns the smallest positive offset.
	Tick() O
}

// Int64Stamps is the Stamps specialization for plain integer sequence
// counters (S = int64, O = int64).
type Int64Stamps struct{}

func (Int64Stamps) Min() int64              { return math.MinInt64 }
func (Int64Stamps) Max() int64              { return math.MaxInt64 }
func (Int64Stamps) Less(a, b int64) bool    { return a < b }
func (Int64Stamps) Add(s, d int64) int64    { return s + d }
func (Int64Stamps) Sub(s, d int64) int64    { return s - d }
func (Int64Stamps) Diff(a, b int64) int64   { return a - b }
func (Int64Stamps) Tick() int64             { return 1 }

// TimeStamps is the Stamps specialization for monotonic time points
// (S = time.Time, O = time.Duration).
type TimeStamps struct{}

// maxTime is a practical far-future sentinel; time.Duration arithmetic
// saturates well before the year 9999.
var maxTime = time.Date(9999, time.December, 31, 23, 59, 59, 999999999, time.UTC)

func (TimeStamps) Min() time.Time                        { return time.Time{} }
func (TimeStamps) Max() time.Time                        { return maxTime }
func (TimeStamps) Less(a, b time.Time) bool              { return a.Before(b) }
func (TimeStamps) Add(s time.Time, d time.Duration) time.Time { return s.Add(d) }
func (TimeStamps) Sub(s time.Time, d time.Duration) time.Time { return s.Add(-d) }
func (TimeStamps) Diff(a, b time.Time) time.Duration     { return a.Sub(b) }
func (TimeStamps) Tick() time.Duration                   { return time.Nanosecond }
