package normalize

import (
	"math"

	"settlement-pipeline/internal/data"
	"settlement-pipeline/internal/model"
)

// rowID is the identity of a normalized row for deduplication. Missing
// values compare equal to each other.
type rowID struct {
	key     model.SettlementKey
	missing bool
	bits    uint64
}

func idOf(key model.SettlementKey, v float64) rowID {
	if model.IsMissing(v) {
		return rowID{key: key, missing: true}
	}
	if v == 0 {
		v = 0 // fold -0
	}
	return rowID{key: key, bits: math.Float64bits(v)}
}

// Cost normalizes the system price source. Rows are deduplicated but not
// window-filtered; source order is kept.
func Cost(records []data.CostRecord) (*model.Frame, error) {
	out := model.NewTable("cost", model.CostSchema)
	seen := make(map[rowID]struct{}, len(records))
	for _, r := range records {
		key, err := model.ParseKey(r.SettlementDate, r.SettlementPeriod)
		if err != nil {
			return nil, r.Locate("", "", err)
		}
		price, err := model.ParseValue(r.Price)
		if err != nil {
			return nil, r.Locate(model.ColPrice, r.Price, err)
		}
		id := idOf(key, price)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out.Append(key, price)
	}
	return out, nil
}

// Demand normalizes the demand source: TSD becomes Demand, duplicates are
// dropped and rows outside w are filtered. Source order is kept.
func Demand(records []data.DemandRecord, w Window) (*model.Frame, error) {
	out := model.NewTable("demand", model.DemandSchema)
	seen := make(map[rowID]struct{}, len(records))
	for _, r := range records {
		key, err := model.ParseKey(r.SettlementDate, r.SettlementPeriod)
		if err != nil {
			return nil, r.Locate("", "", err)
		}
		demand, err := model.ParseValue(r.TSD)
		if err != nil {
			return nil, r.Locate("TSD", r.TSD, err)
		}
		id := idOf(key, demand)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if !w.Contains(key.Date) {
			continue
		}
		out.Append(key, demand)
	}
	return out, nil
}
