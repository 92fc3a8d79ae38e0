package harness

import (
	"context"
	"fmt"

	"github.com/lockstep-io/lockstep/internal/scenario"
	"github.com/lockstep-io/lockstep/internal/trace"
)

// RunAndRecord executes a scenario and persists its frames to the
// trace store. Returns the run ID alongside the result.
func (r *Runner) RunAndRecord(ctx context.Context, s *scenario.Scenario, store *trace.Store) (string, *Result, error) {
	result, err := r.Run(s)
	if err != nil {
		return "", nil, err
	}

	runID, err := store.BeginRun(ctx, s.Name, s.Description)
	if err != nil {
		return "", nil, fmt.Errorf("record run: %w", err)
	}
	for i := range result.Frames {
		if err := store.WriteFrame(ctx, runID, &result.Frames[i]); err != nil {
			return "", nil, fmt.Errorf("record frame %d: %w", i, err)
		}
	}
	r.logger.Info("run recorded", "scenario", s.Name, "run_id", runID,
		"frames", len(result.Frames))
	return runID, result, nil
}
