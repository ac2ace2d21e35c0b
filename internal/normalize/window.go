package normalize

import "settlement-pipeline/internal/model"

// Window is the analysis date range. Both bounds are exclusive.
type Window struct {
	Start model.Date
	End   model.Date
}

func (w Window) Contains(d model.Date) bool {
	return d.After(w.Start) && d.Before(w.End)
}
