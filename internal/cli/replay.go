package cli

import (
	"bytes"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lockstep-io/lockstep/internal/harness"
	"github.com/lockstep-io/lockstep/internal/scenario"
	"github.com/lockstep-io/lockstep/internal/trace"
)

// ReplayResult is the replay command's output payload.
type ReplayResult struct {
	RunID         string `json:"run_id"`
	Scenario      string `json:"scenario"`
	Deterministic bool   `json:"deterministic"`
	Divergence    string `json:"divergence,omitempty"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		dbPath       string
		scenarioPath string
	)

	cmd := &cobra.Command{
		Use:   "replay <run-id>",
		Short: "Re-run a recorded run's scenario and verify determinism",
		Long: `Re-execute the scenario behind a recorded run and compare the fresh
frames byte-for-byte against the stored canonical payloads. Capture is
deterministic, so any divergence means the scenario file or the engine
changed since the recording.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(rootOpts, args[0], dbPath, scenarioPath, cmd)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "lockstep.db", "trace database path")
	cmd.Flags().StringVar(&scenarioPath, "scenario", "", "scenario file the run was recorded from")
	_ = cmd.MarkFlagRequired("db")
	_ = cmd.MarkFlagRequired("scenario")

	return cmd
}

func runReplay(opts *RootOptions, runID, dbPath, scenarioPath string, cmd *cobra.Command) error {
	rep := newReport(opts, cmd)

	store, err := trace.Open(dbPath)
	if err != nil {
		return rep.reject(ExitUsage, "E004", "open trace database", err)
	}
	defer store.Close()

	run, err := store.ReadRun(cmd.Context(), runID)
	if err != nil {
		return rep.reject(ExitUsage, "E007", "read run", err)
	}

	s, err := scenario.Load(scenarioPath)
	if err != nil {
		return rep.reject(ExitUsage, "E002", "load scenario", err)
	}
	if s.Name != run.Scenario {
		msg := fmt.Sprintf("scenario %q does not match recorded scenario %q", s.Name, run.Scenario)
		return rep.reject(ExitUsage, "E008", msg, nil)
	}

	recorded, err := store.ReadFrames(cmd.Context(), runID)
	if err != nil {
		return rep.reject(ExitUsage, "E007", "read frames", err)
	}

	result, err := harness.NewRunner().Run(s)
	if err != nil {
		return rep.reject(ExitUsage, "E005", "replay scenario", err)
	}

	divergence := compareFrames(recorded, result.Frames)
	payload := ReplayResult{
		RunID:         runID,
		Scenario:      s.Name,
		Deterministic: divergence == "",
		Divergence:    divergence,
	}

	text := func(w io.Writer) {
		if divergence == "" {
			fmt.Fprintf(w, "run %s replayed deterministically (%d frames)\n",
				runID, len(result.Frames))
		} else {
			fmt.Fprintf(w, "replay diverged: %s\n", divergence)
		}
	}

	if divergence != "" {
		return rep.refuse(ExitFailure, "E011", "replay diverged from recording", payload, text)
	}
	return rep.result(payload, text)
}

// compareFrames reports the first divergence between a recording and a
// fresh run, or "" when they match. Comparison is over canonical bytes
// so map ordering cannot mask or manufacture differences.
func compareFrames(recorded, fresh []trace.Frame) string {
	if len(recorded) != len(fresh) {
		return fmt.Sprintf("frame count: recorded %d, replayed %d", len(recorded), len(fresh))
	}
	for i := range recorded {
		rb, err := trace.MarshalCanonical(&recorded[i])
		if err != nil {
			return fmt.Sprintf("frame %d: marshal recorded: %v", i, err)
		}
		fb, err := trace.MarshalCanonical(&fresh[i])
		if err != nil {
			return fmt.Sprintf("frame %d: marshal replayed: %v", i, err)
		}
		if !bytes.Equal(rb, fb) {
			return fmt.Sprintf("frame %d: recorded %s, replayed %s", i, rb, fb)
		}
	}
	return ""
}
