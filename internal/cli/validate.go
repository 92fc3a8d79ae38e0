package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lockstep-io/lockstep/internal/scenario"
)

// ValidateReport summarizes a scenario that passed every check.
type ValidateReport struct {
	Scenario   string `json:"scenario"`
	Streams    int    `json:"streams"`
	Injections int    `json:"injections"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <scenario.yaml>",
		Short: "Validate a scenario file without running it",
		Long: `Validate a scenario file: strict YAML decoding, schema unification,
and semantic checks (driver cardinality, stream references, policy parameters).`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	rep := newReport(opts, cmd)

	data, err := os.ReadFile(path)
	if err != nil {
		return rep.reject(ExitUsage, "E001", "read scenario", err)
	}

	var s scenario.Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return rep.reject(ExitUsage, "E002", "parse scenario", err)
	}

	if err := scenario.CheckSchema(&s); err != nil {
		return rep.reject(ExitFailure, "E003", "schema check", err)
	}

	rep.logf("schema check passed for %s", s.Name)

	if errs := scenario.Validate(&s); len(errs) > 0 {
		reason := fmt.Sprintf("validation failed with %d error(s)", len(errs))
		return rep.refuse(ExitFailure, "E009", reason, errs, func(w io.Writer) {
			fmt.Fprintln(w, "validation failed")
			for _, e := range errs {
				fmt.Fprintf(w, "  %s\n", e.Error())
			}
		})
	}

	payload := ValidateReport{
		Scenario:   s.Name,
		Streams:    len(s.Streams),
		Injections: len(s.Script),
	}
	return rep.result(payload, func(w io.Writer) {
		fmt.Fprintf(w, "scenario %q valid (%d streams, %d injections)\n",
			payload.Scenario, payload.Streams, payload.Injections)
	})
}
