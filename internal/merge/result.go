package merge

import "settlement-pipeline/internal/model"

// Result is the output of one merge run.
type Result struct {
	// Merged has one row per reconstructed settlement period, sorted by key,
	// with columns Generation then Demand.
	Merged *model.Frame

	// JoinedRows is the row count of the generation/demand outer join.
	JoinedRows int
	Dates      int
	// SynthesizedRows counts calendar periods observed in neither source.
	SynthesizedRows int

	Fills []Fill
}

// Remaining returns the number of cells still missing after interpolation.
func (r *Result) Remaining() int {
	n := 0
	for _, f := range r.Fills {
		n += f.Remaining
	}
	return n
}
