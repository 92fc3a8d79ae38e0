package harness

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lockstep-io/lockstep"
	"github.com/lockstep-io/lockstep/internal/scenario"
	"github.com/lockstep-io/lockstep/internal/trace"
)

// RunConcurrent executes a scenario with one producer goroutine per
// scripted stream and a blocking consumer on mutexed captors. It
// exercises the same scenario semantics as Run but through the
// signal-and-wait path.
//
// The consumer uses CaptureUntil with the given per-attempt timeout;
// a timed-out attempt ends the run with that frame recorded.
func (r *Runner) RunConcurrent(ctx context.Context, s *scenario.Scenario, timeout time.Duration) (*Result, error) {
	rig, err := build(s, func() lockstep.LockPolicy { return &lockstep.Mutexed{} })
	if err != nil {
		return nil, err
	}

	// Per-stream injection order must match the script, so group the
	// script by stream up front.
	byStream := make(map[string][]int64)
	for _, inj := range s.Script {
		if _, ok := rig.stream(inj.Stream); !ok {
			return nil, fmt.Errorf("run: unknown stream %q", inj.Stream)
		}
		byStream[inj.Stream] = append(byStream[inj.Stream], inj.Stamps...)
	}

	g, ctx := errgroup.WithContext(ctx)
	for name, stamps := range byStream {
		sr, _ := rig.stream(name)
		g.Go(func() error {
			for _, stamp := range stamps {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				sr.inject(lockstep.NewSample(stamp, payload(name, stamp)))
			}
			return nil
		})
	}

	result := &Result{Pass: true, Depths: make(map[string]int)}
	g.Go(func() error {
		for i := 0; i < s.Captures; i++ {
			for _, sr := range rig.streams() {
				sr.sink.Reset()
			}
			st, cr := rig.group.CaptureUntil(ctx, time.Now().Add(timeout))

			frame := trace.Frame{Index: i, State: st.String()}
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
			result.Frames = append(result.Frames, frame)
			if st == lockstep.StateTimedOut {
				return nil
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, sr := range rig.streams() {
		result.Depths[sr.name] = sr.depth()
	}
	evaluate(s, result)
	return result, nil
}
