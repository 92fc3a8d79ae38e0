package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions carries the global flags every subcommand shares.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
}

// Formats lists the renderings a report can produce.
var Formats = []string{"text", "json"}

func (o *RootOptions) validate() error {
	if slices.Contains(Formats, o.Format) {
		return nil
	}
	return fmt.Errorf("invalid format %q: must be one of %v", o.Format, Formats)
}

// NewRootCommand creates the root command for the lockstep CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "lockstep",
		Short: "lockstep - multi-stream capture synchronizer",
		Long:  "Run, record, and replay stamped-stream synchronization scenarios.",
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return opts.validate()
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	for _, sub := range []*cobra.Command{
		NewValidateCommand(opts),
		NewRunCommand(opts),
		NewTraceCommand(opts),
		NewReplayCommand(opts),
	} {
		cmd.AddCommand(sub)
	}
	return cmd
}
