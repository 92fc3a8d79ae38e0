// Package follower provides the capture policies a following stream can
// run against the range a driver produced.
//
// The rules cover the common synchronization shapes:
//
//   - AnyBefore: everything below a delayed upper bound, never blocks.
//   - Before: everything below a delayed lower bound, once data proves
//     the interval is closed.
//   - ClosestBefore: the single best element inside a tolerance window
//     below the delayed lower bound.
//   - CountBefore: the n freshest elements below the delayed lower
//     bound, or abort when the count can never be met.
//   - Latched: a slow-stream value held and re-emitted until a fresher
//     one settles.
//   - MatchedStamp: the element whose stamp equals the range's lower
//     bound exactly.
//   - Ranged: every element inside the delayed range plus one bracket
//     element on each side, for interpolation.
//
// Delays shift a follower's view of the driving sequence: a rule with
// delay d evaluated against range lower bound t looks at follower
// stamps around t-d. Abort semantics prune only elements that no
// future range could ever capture, so a late frame never reuses data a
// past frame already disqualified.
package follower
