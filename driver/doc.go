// Package driver provides the capture policies a driving stream can
// run: Next (one element per capture), Batch (sliding window of n),
// Chunk (disjoint blocks of n), and Throttled (one element per capture
// with a minimum stamp gap between captures).
//
// Every policy's dry run produces the capture range the group's
// followers synchronize against. Abort semantics are uniform: elements
// at or below the abort stamp are dropped so the stream resumes from
// the next available range instead of livelocking on one that already
// failed.
package driver
