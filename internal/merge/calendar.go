package merge

import (
	"sort"

	"settlement-pipeline/internal/model"
)

// Calendar reconstructs the reference calendar of f: for every date present
// in f, one key per period 1..max, where max is the largest period observed
// for that date. Gaps below the maximum are filled; periods beyond it are
// never invented. Dates are emitted in ascending order. f need not be
// sorted or unique, but its periods must lie in 1..model.MaxPeriod.
func Calendar(f *model.Frame) *model.Frame {
	maxPeriod := make(map[model.Date]int)
	for _, k := range f.Keys {
		if k.Period > maxPeriod[k.Date] {
			maxPeriod[k.Date] = k.Period
		}
	}

	dates := make([]model.Date, 0, len(maxPeriod))
	total := 0
	for d, p := range maxPeriod {
		dates = append(dates, d)
		total += p
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	out := model.NewTable("calendar", model.KeySchema)
	out.Keys = make([]model.SettlementKey, 0, total)
	for _, d := range dates {
		out.Keys = append(out.Keys, expand(d, maxPeriod[d])...)
	}
	return out
}

func expand(d model.Date, maxPeriod int) []model.SettlementKey {
	keys := make([]model.SettlementKey, maxPeriod)
	for p := 1; p <= maxPeriod; p++ {
		keys[p-1] = model.SettlementKey{Date: d, Period: p}
	}
	return keys
}
