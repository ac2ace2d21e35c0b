package pipeline

import (
	"sort"
	"time"

	"settlement-pipeline/internal/merge"
	"settlement-pipeline/internal/model"
)

// Summary reports one pipeline command.
type Summary struct {
	RunID     string         `json:"run_id"`
	Command   string         `json:"command"`
	RowsRead  map[string]int `json:"rows_read,omitempty"`
	Tables    map[string]int `json:"tables,omitempty"`
	Merged    *MergeSummary  `json:"merged,omitempty"`
	Published []string       `json:"published"`
	Duration  time.Duration  `json:"duration_ns"`
}

type MergeSummary struct {
	Rows            int          `json:"rows"`
	Dates           int          `json:"dates"`
	JoinedRows      int          `json:"joined_rows"`
	SynthesizedRows int          `json:"synthesized_rows"`
	Fills           []merge.Fill `json:"fills"`
}

func summarizeResult(res *merge.Result) *MergeSummary {
	return &MergeSummary{
		Rows:            res.Merged.Len(),
		Dates:           res.Dates,
		JoinedRows:      res.JoinedRows,
		SynthesizedRows: res.SynthesizedRows,
		Fills:           res.Fills,
	}
}

// Description characterises a merged table read back from disk.
type Description struct {
	Rows      int            `json:"rows"`
	Dates     int            `json:"dates"`
	FirstDate model.Date     `json:"first_date"`
	LastDate  model.Date     `json:"last_date"`
	Missing   map[string]int `json:"missing"`
	// PeriodsPerDate maps a period count to the number of dates having it;
	// clock-change days show up as 46 or 50.
	PeriodsPerDate map[int]int `json:"periods_per_date"`
	// Dense is true when every date holds exactly periods 1..max once.
	Dense bool `json:"dense"`
}

// Describe summarises f without modifying it.
func Describe(f *model.Frame) Description {
	d := Description{
		Rows:           f.Len(),
		Missing:        map[string]int{},
		PeriodsPerDate: map[int]int{},
		Dense:          true,
	}
	for _, c := range f.Columns {
		d.Missing[c.Name] = c.MissingCount()
	}

	periods := map[model.Date][]int{}
	for _, k := range f.Keys {
		periods[k.Date] = append(periods[k.Date], k.Period)
	}
	dates := f.Dates()
	d.Dates = len(dates)
	if len(dates) > 0 {
		d.FirstDate, d.LastDate = dates[0], dates[len(dates)-1]
	}
	for _, date := range dates {
		ps := periods[date]
		sort.Ints(ps)
		d.PeriodsPerDate[len(ps)]++
		for i, p := range ps {
			if p != i+1 {
				d.Dense = false
				break
			}
		}
	}
	return d
}
