// Package scenario loads and validates the YAML scenario files the
// harness and CLI execute.
//
// A scenario names a set of streams (one driver, any number of
// followers, each with a capture policy and parameters), a script of
// stamped injections, and assertions over the captured frames. Files
// are decoded strictly, checked against an embedded CUE schema, and
// then semantically validated with stable error codes so tooling can
// match on failures.
package scenario
