// Package lockstep synchronizes groups of timestamped elements drawn from
// multiple independent input streams, producing coherent frames - tuples of
// elements, one per stream, whose stamps satisfy a declared temporal
// relationship.
//
// ARCHITECTURE:
//
// Captor = Queue + Policy + LockPolicy:
// Each input stream is buffered by a captor. A captor pairs an ordered queue
// of dispatches with a capture policy and an interchangeable lock policy.
// Policies decide, given a driving stamp range, which buffered elements to
// emit and which to retire. The lock policy decides whether the captor is a
// bare single-threaded buffer (NoLock) or a mutex-guarded buffer whose
// waiters are woken on every inject, abort, and reset (Mutexed).
//
// Driver and Followers:
// One captor per group is the driver. Its policy consumes its own queue to
// produce the CaptureRange that paces the whole group. Every other captor is
// a follower: its policy selects elements relative to that range. Driver
// policies live in the driver subpackage, follower policies in the follower
// subpackage.
//
// Group Capture Protocol:
// A Group is a fixed tuple (driver, follower_1, ..., follower_n), each member
// bound to an output sink at construction. Capture is atomic: the group
// acquires every member's lock in tuple order (driver first), dry-evaluates
// all members against the candidate range, and mutates queues only when every
// member reports StatePrimed. On any non-primed reduction no queue loses
// elements, except on the abort path where every member retires elements up
// to the range upper bound under its own boundary rule.
//
// The group result is the reduction: any abort wins over any retry, and
// retry wins over primed. Blocking capture (CaptureUntil) re-evaluates the
// group whenever any member's signal channel fires, until the reduction is
// non-retry, the deadline passes, or a waiter is interrupted by abort/reset.
//
// The package performs no interpolation or resampling - elements are emitted
// verbatim, in non-decreasing stamp order per stream.
package lockstep
