// Package harness executes scenario files against a real capture
// group and checks the declared assertions.
//
// Each run builds the group fresh from the scenario's stream table,
// replays the script, evaluates the requested number of captures, and
// records every attempt as a frame. Frames serialize canonically, so
// runs are byte-reproducible and suitable for golden comparison and
// for durable recording through the trace store.
//
// Two execution modes exist: the sequential runner injects the whole
// script first and then drains captures, while the concurrent runner
// drives one producer goroutine per stream against a blocking consumer
// to exercise the locking path.
package harness
