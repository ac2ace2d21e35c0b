package merge

import (
	"errors"
	"fmt"

	"settlement-pipeline/internal/model"
)

// Engine merges normalized generation and demand tables into the dense,
// interpolated settlement table. It holds no state between runs.
type Engine struct{}

// New returns a merge engine.
func New() *Engine { return &Engine{} }

// Run merges the generation and demand tables into the dense merged table.
//
// Both tables must be unique on SettlementKey; the normalizer is expected to
// guarantee this and Run re-checks it, failing with model.ErrDuplicateKey
// instead of producing a denormalized join.
func (e *Engine) Run(generation, demand *model.Frame) (*Result, error) {
	if generation == nil || demand == nil {
		return nil, fmt.Errorf("generation and demand tables are required")
	}
	if _, ok := generation.Column(model.ColGeneration); !ok {
		return nil, fmt.Errorf("table %s has no %s column", generation.Name, model.ColGeneration)
	}
	if _, ok := demand.Column(model.ColDemand); !ok {
		return nil, fmt.Errorf("table %s has no %s column", demand.Name, model.ColDemand)
	}

	for _, f := range []*model.Frame{generation, demand} {
		if err := checkKeys(f); err != nil {
			return nil, err
		}
		if err := AssertUnique(f); err != nil {
			return nil, err
		}
	}

	joined, err := OuterJoin("generation_demand", generation, demand)
	if err != nil {
		return nil, fmt.Errorf("join generation and demand: %w", err)
	}

	calendar := Calendar(joined)

	merged, err := OuterJoin("merged", calendar, joined)
	if err != nil {
		return nil, fmt.Errorf("join calendar: %w", err)
	}

	fills := Interpolate(merged)

	return &Result{
		Merged:          merged,
		JoinedRows:      joined.Len(),
		Dates:           len(calendar.Dates()),
		SynthesizedRows: merged.Len() - joined.Len(),
		Fills:           fills,
	}, nil
}

// checkKeys rejects periods outside 1..model.MaxPeriod, which the calendar
// would otherwise expand into that many rows.
func checkKeys(f *model.Frame) error {
	for _, k := range f.Keys {
		if err := k.Validate(); err != nil {
			var ie *model.InputError
			if errors.As(err, &ie) {
				ie.Path = f.Name
			}
			return fmt.Errorf("table %s key %s: %w", f.Name, k, err)
		}
	}
	return nil
}
