package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/lockstep-io/lockstep/internal/scenario"
	"github.com/lockstep-io/lockstep/internal/trace"
)

// RunWithGolden executes a scenario and compares its canonical frame
// trace against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, s *scenario.Scenario) (*Result, error) {
	t.Helper()

	result, err := NewRunner().Run(s)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, s.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an already-computed result's frames against
// the named golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := trace.MarshalRunCanonical(result.Frames)
	if err != nil {
		return err
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
