package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lockstep-io/lockstep/internal/trace"
)

// NewTraceCommand creates the trace command group.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect recorded capture runs",
	}
	cmd.AddCommand(newTraceListCommand(rootOpts))
	cmd.AddCommand(newTraceShowCommand(rootOpts))
	return cmd
}

func newTraceListCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		dbPath   string
		scenario string
		limit    int
	)

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List recorded runs, newest first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rep := newReport(rootOpts, cmd)

			store, err := trace.Open(dbPath)
			if err != nil {
				return rep.reject(ExitUsage, "E004", "open trace database", err)
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), scenario, limit)
			if err != nil {
				return rep.reject(ExitUsage, "E006", "list runs", err)
			}

			return rep.result(runs, func(w io.Writer) {
				if len(runs) == 0 {
					fmt.Fprintln(w, "no runs recorded")
					return
				}
				for _, r := range runs {
					fmt.Fprintf(w, "%s  %s  %d frames  %s\n",
						r.ID, r.Scenario, r.FrameCount, r.StartedAt.Format("2006-01-02 15:04:05"))
				}
			})
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "lockstep.db", "trace database path")
	cmd.Flags().StringVar(&scenario, "scenario", "", "filter by scenario name")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum runs to list (0 for all)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func newTraceShowCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:           "show <run-id>",
		Short:         "Show one run's frames and emissions",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rep := newReport(rootOpts, cmd)

			store, err := trace.Open(dbPath)
			if err != nil {
				return rep.reject(ExitUsage, "E004", "open trace database", err)
			}
			defer store.Close()

			run, err := store.ReadRun(cmd.Context(), args[0])
			if err != nil {
				return rep.reject(ExitUsage, "E007", "read run", err)
			}
			frames, err := store.ReadFrames(cmd.Context(), run.ID)
			if err != nil {
				return rep.reject(ExitUsage, "E007", "read frames", err)
			}

			payload := struct {
				Run    *trace.Run    `json:"run"`
				Frames []trace.Frame `json:"frames"`
			}{run, frames}

			return rep.result(payload, func(w io.Writer) {
				fmt.Fprintf(w, "run %s  scenario %q  %d frames\n",
					run.ID, run.Scenario, run.FrameCount)
				for _, f := range frames {
					fmt.Fprintf(w, "  [%d] %s", f.Index, f.State)
					if f.State == "primed" || f.State == "aborted" {
						fmt.Fprintf(w, " range=[%d,%d]", f.Lower, f.Upper)
					}
					fmt.Fprintln(w)
					for stream, emissions := range f.Streams {
						fmt.Fprintf(w, "      %s:", stream)
						for _, e := range emissions {
							fmt.Fprintf(w, " %d", e.Stamp)
						}
						fmt.Fprintln(w)
					}
				}
			})
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "lockstep.db", "trace database path")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}
