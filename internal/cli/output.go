package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	ExitSuccess = 0 // scenario ran and every check held
	ExitFailure = 1 // failed validation, failed assertions, divergent replay
	ExitUsage   = 2 // bad paths, malformed scenarios, unusable databases
)

// codedError carries the exit status and the stable machine code of a
// command failure. Commands only produce it through a report, so every
// nonzero exit has been rendered to the user first.
type codedError struct {
	exit   int
	code   string
	reason string
}

func (e *codedError) Error() string { return e.reason }

// ExitCode maps a command error to the process exit status. Errors that
// never went through a report (cobra flag and argument errors) are
// usage errors.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ce *codedError
	if errors.As(err, &ce) {
		return ce.exit
	}
	return ExitUsage
}

// report renders one command's outcome in the globally selected format
// and pairs every failure with its exit status.
type report struct {
	jsonMode bool
	out      io.Writer
	errOut   io.Writer
	verbose  bool
}

func newReport(opts *RootOptions, cmd *cobra.Command) *report {
	return &report{
		jsonMode: opts.Format == "json",
		out:      cmd.OutOrStdout(),
		errOut:   cmd.ErrOrStderr(),
		verbose:  opts.Verbose,
	}
}

// envelope is the JSON wire shape shared by every command: ok with a
// result, or not ok with a code, a reason, and (when the command got
// far enough to produce one) the result that failed the check.
type envelope struct {
	OK     bool   `json:"ok"`
	Result any    `json:"result,omitempty"`
	Code   string `json:"code,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func (r *report) render(v envelope) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// result emits a successful payload. Text mode runs the caller's
// printer instead of the envelope.
func (r *report) result(payload any, text func(w io.Writer)) error {
	if r.jsonMode {
		return r.render(envelope{OK: true, Result: payload})
	}
	text(r.out)
	return nil
}

// reject reports a failure that produced no result, such as an
// unreadable scenario or database, and returns the coded error for
// main to map onto the exit status.
func (r *report) reject(exit int, code, msg string, err error) error {
	reason := msg
	if err != nil {
		reason = fmt.Sprintf("%s: %v", msg, err)
	}
	if r.jsonMode {
		_ = r.render(envelope{OK: false, Code: code, Reason: reason})
	} else {
		fmt.Fprintf(r.out, "error %s: %s\n", code, reason)
	}
	return &codedError{exit: exit, code: code, reason: reason}
}

// refuse reports a failure that still carries a result, such as a run
// whose assertions did not hold: the payload is rendered either way,
// and the returned error makes the command exit nonzero.
func (r *report) refuse(exit int, code, reason string, payload any, text func(w io.Writer)) error {
	if r.jsonMode {
		if err := r.render(envelope{OK: false, Code: code, Reason: reason, Result: payload}); err != nil {
			return err
		}
	} else {
		text(r.out)
	}
	return &codedError{exit: exit, code: code, reason: reason}
}

// logf writes a diagnostic line to stderr when verbose mode is on, so
// JSON on stdout stays parseable.
func (r *report) logf(format string, args ...any) {
	if !r.verbose {
		return
	}
	fmt.Fprintf(r.errOut, format+"\n", args...)
}
