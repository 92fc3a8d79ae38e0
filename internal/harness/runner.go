package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/lockstep-io/lockstep"
	"github.com/lockstep-io/lockstep/internal/scenario"
	"github.com/lockstep-io/lockstep/internal/trace"
)

// Result is the outcome of a scenario run.
type Result struct {
	// Pass indicates every assertion held.
	Pass bool `json:"pass"`

	// Frames holds one record per capture attempt, in order.
	Frames []trace.Frame `json:"frames"`

	// Depths maps stream name to residual queue depth after the run.
	Depths map[string]int `json:"depths"`

	// Errors lists assertion failures. Empty when Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// AddError records an assertion failure and fails the result.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}

// Runner executes scenarios.
type Runner struct {
	logger *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger routes run progress to the given logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// NewRunner builds a Runner. Logs are discarded unless WithLogger is
// given.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes a scenario sequentially: the whole script is injected
// first, then up to the requested number of capture attempts run. A
// retry outcome ends the run early, since without new data every later
// attempt would resolve the same way.
func (r *Runner) Run(s *scenario.Scenario) (*Result, error) {
	rig, err := build(s, func() lockstep.LockPolicy { return nil })
	if err != nil {
		return nil, err
	}

	for _, inj := range s.Script {
		sr, ok := rig.stream(inj.Stream)
		if !ok {
			return nil, fmt.Errorf("run: unknown stream %q", inj.Stream)
		}
		for _, stamp := range inj.Stamps {
			sr.inject(lockstep.NewSample(stamp, payload(inj.Stream, stamp)))
		}
	}
	r.logger.Info("script injected", "scenario", s.Name, "streams", len(s.Streams))

	result := &Result{Pass: true, Depths: make(map[string]int)}
	for len(result.Frames) < s.Captures {
		frame := r.capture(rig, len(result.Frames))
		result.Frames = append(result.Frames, frame)
		if frame.State == lockstep.StateRetry.String() {
			// No data is coming; further attempts would spin.
			break
		}
	}

	for _, sr := range rig.streams() {
		result.Depths[sr.name] = sr.depth()
	}

	evaluate(s, result)
	r.logger.Info("run complete", "scenario", s.Name,
		"frames", len(result.Frames), "pass", result.Pass)
	return result, nil
}

// capture runs one group attempt and snapshots the per-stream sinks
// into a frame.
func (r *Runner) capture(rig *rig, index int) trace.Frame {
	for _, sr := range rig.streams() {
		sr.sink.Reset()
	}
	st, cr := rig.group.Capture()

	frame := trace.Frame{Index: index, State: st.String()}
	if st == lockstep.StatePrimed || st == lockstep.StateAborted {
		frame.Lower = cr.Lower
		frame.Upper = cr.Upper
	}
	if st == lockstep.StatePrimed {
		frame.Streams = make(map[string][]trace.Emission)
		for _, sr := range rig.streams() {
			emissions := make([]trace.Emission, 0, len(sr.sink.Items))
			for _, d := range sr.sink.Items {
				emissions = append(emissions, trace.Emission{Stamp: d.Stamp(), Payload: d.Data()})
			}
			frame.Streams[sr.name] = emissions
		}
	}
	return frame
}

// payload labels an injected element by its origin.
func payload(stream string, stamp int64) string {
	return fmt.Sprintf("%s@%d", stream, stamp)
}

// evaluate checks the scenario's assertions against the result.
func evaluate(s *scenario.Scenario, result *Result) {
	for i, a := range s.Assertions {
		switch a.Type {
		case scenario.AssertFrameCount:
			primed := 0
			for _, f := range result.Frames {
				if f.State == lockstep.StatePrimed.String() {
					primed++
				}
			}
			if primed != a.Count {
				result.AddError(fmt.Sprintf("assertions[%d]: frame_count: got %d primed frames, want %d", i, primed, a.Count))
			}
		case scenario.AssertFrameContains:
			assertFrameContains(i, &a, result)
		case scenario.AssertFrameOrder:
			assertFrameOrder(i, &a, result)
		case scenario.AssertQueueDepth:
			depth, ok := result.Depths[a.Stream]
			if !ok {
				result.AddError(fmt.Sprintf("assertions[%d]: queue_depth: unknown stream %q", i, a.Stream))
				continue
			}
			if depth != a.Depth {
				result.AddError(fmt.Sprintf("assertions[%d]: queue_depth: stream %q has depth %d, want %d", i, a.Stream, depth, a.Depth))
			}
		case scenario.AssertStateSequence:
			assertStateSequence(i, &a, result)
		}
	}
}

func assertFrameContains(i int, a *scenario.Assertion, result *Result) {
	primed := primedFrames(result)
	if a.Frame >= len(primed) {
		result.AddError(fmt.Sprintf("assertions[%d]: frame_contains: frame %d out of range (%d primed frames)", i, a.Frame, len(primed)))
		return
	}
	got := primed[a.Frame].Streams[a.Stream]
	if len(got) != len(a.Stamps) {
		result.AddError(fmt.Sprintf("assertions[%d]: frame_contains: frame %d stream %q has %d elements, want %d", i, a.Frame, a.Stream, len(got), len(a.Stamps)))
		return
	}
	for j, e := range got {
		if e.Stamp != a.Stamps[j] {
			result.AddError(fmt.Sprintf("assertions[%d]: frame_contains: frame %d stream %q element %d has stamp %d, want %d", i, a.Frame, a.Stream, j, e.Stamp, a.Stamps[j]))
			return
		}
	}
}

func assertFrameOrder(i int, a *scenario.Assertion, result *Result) {
	var last int64
	have := false
	for _, f := range primedFrames(result) {
		for _, e := range f.Streams[a.Stream] {
			if have && e.Stamp < last {
				result.AddError(fmt.Sprintf("assertions[%d]: frame_order: stream %q emitted %d after %d", i, a.Stream, e.Stamp, last))
				return
			}
			last = e.Stamp
			have = true
		}
	}
}

func assertStateSequence(i int, a *scenario.Assertion, result *Result) {
	if len(result.Frames) < len(a.States) {
		result.AddError(fmt.Sprintf("assertions[%d]: state_sequence: got %d frames, want at least %d", i, len(result.Frames), len(a.States)))
		return
	}
	for j, want := range a.States {
		if result.Frames[j].State != want {
			result.AddError(fmt.Sprintf("assertions[%d]: state_sequence: frame %d resolved %q, want %q", i, j, result.Frames[j].State, want))
			return
		}
	}
}

func primedFrames(result *Result) []trace.Frame {
	var out []trace.Frame
	for _, f := range result.Frames {
		if f.State == lockstep.StatePrimed.String() {
			out = append(out, f)
		}
	}
	return out
}
