package scenario

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaCUE string

// CheckSchema unifies a decoded scenario with the embedded CUE schema.
// It catches shape errors the strict YAML decode cannot, like an
// unknown policy name or a negative capture count.
func CheckSchema(s *Scenario) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile scenario schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Scenario"))
	if err := def.Err(); err != nil {
		return fmt.Errorf("lookup scenario schema: %w", err)
	}

	val := ctx.Encode(s)
	if err := val.Err(); err != nil {
		return fmt.Errorf("encode scenario: %w", err)
	}

	unified := def.Unify(val)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return fmt.Errorf("scenario schema: %s", cueerrors.Details(err, nil))
	}
	return nil
}
