package cli

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/lockstep-io/lockstep/internal/harness"
	"github.com/lockstep-io/lockstep/internal/scenario"
	"github.com/lockstep-io/lockstep/internal/trace"
)

// RunResult is the run command's output payload.
type RunResult struct {
	Scenario string         `json:"scenario"`
	RunID    string         `json:"run_id,omitempty"`
	Pass     bool           `json:"pass"`
	Frames   []trace.Frame  `json:"frames"`
	Depths   map[string]int `json:"depths"`
	Errors   []string       `json:"errors,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		dbPath     string
		concurrent bool
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Execute a scenario and report captured frames",
		Long: `Execute a scenario: build the capture group, replay the script,
evaluate captures, and check assertions. With --db, frames are also
recorded to a trace database for later inspection and replay.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(rootOpts, args[0], dbPath, concurrent, timeout, cmd)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "trace database path (omit to skip recording)")
	cmd.Flags().BoolVar(&concurrent, "concurrent", false, "inject and capture concurrently")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "per-capture timeout in concurrent mode")

	return cmd
}

func runRun(opts *RootOptions, path, dbPath string, concurrent bool, timeout time.Duration, cmd *cobra.Command) error {
	rep := newReport(opts, cmd)

	s, err := scenario.Load(path)
	if err != nil {
		return rep.reject(ExitUsage, "E002", "load scenario", err)
	}

	var runnerOpts []harness.Option
	if opts.Verbose {
		runnerOpts = append(runnerOpts,
			harness.WithLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))))
	}
	runner := harness.NewRunner(runnerOpts...)

	var (
		result *harness.Result
		runID  string
	)
	switch {
	case concurrent:
		result, err = runner.RunConcurrent(cmd.Context(), s, timeout)
	case dbPath != "":
		var store *trace.Store
		store, err = trace.Open(dbPath)
		if err != nil {
			return rep.reject(ExitUsage, "E004", "open trace database", err)
		}
		defer store.Close()
		runID, result, err = runner.RunAndRecord(cmd.Context(), s, store)
	default:
		result, err = runner.Run(s)
	}
	if err != nil {
		return rep.reject(ExitUsage, "E005", "run scenario", err)
	}

	return outputRunResult(rep, s, runID, result)
}

func outputRunResult(rep *report, s *scenario.Scenario, runID string, result *harness.Result) error {
	payload := RunResult{
		Scenario: s.Name,
		RunID:    runID,
		Pass:     result.Pass,
		Frames:   result.Frames,
		Depths:   result.Depths,
		Errors:   result.Errors,
	}

	text := func(w io.Writer) {
		fmt.Fprintf(w, "scenario %q: %d frames\n", s.Name, len(result.Frames))
		for _, f := range result.Frames {
			fmt.Fprintf(w, "  [%d] %s", f.Index, f.State)
			if f.State == "primed" || f.State == "aborted" {
				fmt.Fprintf(w, " range=[%d,%d]", f.Lower, f.Upper)
			}
			fmt.Fprintln(w)
		}
		if runID != "" {
			fmt.Fprintf(w, "recorded as run %s\n", runID)
		}
		if result.Pass {
			fmt.Fprintln(w, "all assertions passed")
		} else {
			for _, e := range result.Errors {
				fmt.Fprintf(w, "FAIL %s\n", e)
			}
		}
	}

	if !result.Pass {
		reason := fmt.Sprintf("%d assertion(s) failed", len(result.Errors))
		return rep.refuse(ExitFailure, "E010", reason, payload, text)
	}
	return rep.result(payload, text)
}
