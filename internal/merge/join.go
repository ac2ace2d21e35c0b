package merge

import (
	"fmt"
	"sort"

	"settlement-pipeline/internal/model"
)

// OuterJoin joins left and right on SettlementKey. Every key present in
// either side appears exactly once; columns of the side lacking a key are
// missing on that row. The result carries left's columns then right's and
// is sorted by key.
//
// Both inputs must be unique on their key. Joining a repeated key would
// denormalize the output, so it is rejected with model.ErrDuplicateKey.
func OuterJoin(name string, left, right *model.Frame) (*model.Frame, error) {
	li, err := indexKeys(left)
	if err != nil {
		return nil, err
	}
	ri, err := indexKeys(right)
	if err != nil {
		return nil, err
	}
	for _, lc := range left.Columns {
		if _, clash := right.Column(lc.Name); clash {
			return nil, fmt.Errorf("join %s: column %s present on both sides", name, lc.Name)
		}
	}

	keys := make([]model.SettlementKey, 0, len(li)+len(ri))
	for k := range li {
		keys = append(keys, k)
	}
	for k := range ri {
		if _, ok := li[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	out := model.NewTable(name, left.Schema().Join(right.Schema()))
	out.Keys = keys
	out.Columns = append(project(left, li, keys), project(right, ri, keys)...)
	return out, nil
}

// AssertUnique returns a *model.DuplicateKeyError for the first key that
// occurs twice in f.
func AssertUnique(f *model.Frame) error {
	_, err := indexKeys(f)
	return err
}

func indexKeys(f *model.Frame) (map[model.SettlementKey]int, error) {
	idx := make(map[model.SettlementKey]int, f.Len())
	for i, k := range f.Keys {
		if _, dup := idx[k]; dup {
			return nil, &model.DuplicateKeyError{Table: f.Name, Key: k}
		}
		idx[k] = i
	}
	return idx, nil
}

// project lays the columns of f out along keys.
func project(f *model.Frame, idx map[model.SettlementKey]int, keys []model.SettlementKey) []*model.Column {
	out := make([]*model.Column, len(f.Columns))
	for j, c := range f.Columns {
		vals := make([]float64, len(keys))
		for i, k := range keys {
			if src, ok := idx[k]; ok {
				vals[i] = c.Values[src]
			} else {
				vals[i] = model.Missing()
			}
		}
		out[j] = &model.Column{Name: c.Name, Values: vals}
	}
	return out
}
