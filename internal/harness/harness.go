package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/txtpgen/internal/generator"
	"github.com/roach88/txtpgen/internal/graph"
)

// Harness runs scenarios with a fixed run id and an in-memory sink.
type Harness struct {
	scenario *Scenario
	logger   *slog.Logger
}

// Run executes a scenario and evaluates its assertions.
//
// Execution flow:
//  1. Build inline banks, then load dump files
//  2. Apply the scenario config over the default options
//  3. Generate every output into memory
//  4. Evaluate assertions against the outputs
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	h := &Harness{
		scenario: scenario,
		logger:   slog.Default().With("scenario", scenario.Name),
	}

	banks, err := h.banks()
	if err != nil {
		return nil, fmt.Errorf("failed to load banks: %w", err)
	}

	opts, err := h.options()
	if err != nil {
		return nil, err
	}

	sink := generator.NewMemorySink()
	gen, err := generator.New(banks, opts,
		generator.WithSink(sink),
		generator.WithRunIDGenerator(generator.NewFixedGenerator(scenario.Name)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create generator: %w", err)
	}

	run, err := gen.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run generator: %w", err)
	}
	h.logger.Info("scenario generated", "outputs", run.Stats.Created, "errors", run.Stats.Errors)

	result := NewResult(run)
	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func (h *Harness) banks() ([]graph.Bank, error) {
	var banks []graph.Bank
	for _, spec := range h.scenario.Banks {
		b, err := BuildBank(spec)
		if err != nil {
			return nil, err
		}
		if h.scenario.Snapshot {
			if b, err = roundTrip(b); err != nil {
				return nil, fmt.Errorf("bank %s snapshot: %w", spec.File, err)
			}
		}
		banks = append(banks, b)
	}

	if len(h.scenario.Dumps) > 0 {
		loaded, err := graph.LoadPaths(h.scenario.Dumps)
		if err != nil {
			return nil, err
		}
		for _, b := range loaded {
			banks = append(banks, b)
		}
	}
	return banks, nil
}

func (h *Harness) options() (generator.Options, error) {
	opts := generator.DefaultOptions()
	h.scenario.Config.Apply(&opts)

	if path := h.scenario.Config.ExternalsPath(); path != "" {
		ext, err := generator.LoadExternals(path)
		if err != nil {
			return opts, fmt.Errorf("failed to load externals: %w", err)
		}
		opts.Externals = ext
	}
	return opts, nil
}
