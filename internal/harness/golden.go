package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/txtpgen/internal/ir"
)

// Snapshot captures the written names and counters of a run, as
// canonical JSON.
func Snapshot(scenarioName string, r *Result) ([]byte, error) {
	outputs := make([]any, len(r.Outputs))
	for i, name := range r.Outputs {
		outputs[i] = name
	}
	stats := make(map[string]any, len(statFields))
	for k, get := range statFields {
		stats[k] = get(r.Run.Stats)
	}
	return ir.MarshalCanonical(map[string]any{
		"scenario": scenarioName,
		"outputs":  outputs,
		"stats":    stats,
	})
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
