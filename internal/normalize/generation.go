package normalize

import (
	"strings"

	"settlement-pipeline/internal/data"
	"settlement-pipeline/internal/model"

	"github.com/shopspring/decimal"
)

type fuelRow struct {
	key   model.SettlementKey
	fuel  string
	value string // canonical decimal text, "" when missing
}

// total accumulates the generation of one settlement period across fuels.
type total struct {
	sum   decimal.Decimal
	valid bool
}

// Generation normalizes the per-fuel generation source. Identical
// (date, period, fuel, generation) rows are collapsed first, rows outside w
// are dropped, then generation is summed over fuel type per settlement key.
// Sums are exact; missing fuel values are skipped and a period with no
// value at all stays missing. The result is sorted by key.
func Generation(records []data.GenerationRecord, w Window) (*model.Frame, error) {
	seen := make(map[fuelRow]struct{}, len(records))
	totals := make(map[model.SettlementKey]*total)
	var order []model.SettlementKey

	for _, r := range records {
		key, err := model.ParseKey(r.SettlementDate, r.SettlementPeriod)
		if err != nil {
			return nil, r.Locate("", "", err)
		}
		var (
			value decimal.Decimal
			valid bool
		)
		if !model.IsMissingToken(r.Generation) {
			value, err = decimal.NewFromString(strings.TrimSpace(r.Generation))
			if err != nil {
				return nil, r.Locate(model.ColGeneration, r.Generation, err)
			}
			valid = true
		}

		id := fuelRow{key: key, fuel: r.FuelType}
		if valid {
			id.value = value.String()
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		if !w.Contains(key.Date) {
			continue
		}
		t, ok := totals[key]
		if !ok {
			t = &total{}
			totals[key] = t
			order = append(order, key)
		}
		if valid {
			t.sum = t.sum.Add(value)
			t.valid = true
		}
	}

	out := model.NewTable("generation", model.GenerationSchema)
	for _, key := range order {
		t := totals[key]
		v := model.Missing()
		if t.valid {
			v = t.sum.InexactFloat64()
		}
		out.Append(key, v)
	}
	out.Sort()
	return out, nil
}
