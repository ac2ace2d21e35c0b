package merge

import "settlement-pipeline/internal/model"

// Fill reports what Interpolate did to one column.
type Fill struct {
	Column string `json:"column"`
	// Filled counts cells given an interpolated value.
	Filled int `json:"filled"`
	// Remaining counts cells still missing: leading and trailing runs that
	// have a known value on one side only.
	Remaining int `json:"remaining"`
}

// Interpolate sorts f by key and fills missing cells of the columns its
// schema declares numeric by linear interpolation over row position. A gap is filled from
// the nearest known values before and after it, weighted by distance.
//
// The sequence is not partitioned by date: the last period of one date and
// the first period of the next are neighbours, so a gap spanning midnight
// blends values of both dates. Leading and trailing gaps are left missing.
func Interpolate(f *model.Frame) []Fill {
	f.Sort()
	fills := make([]Fill, 0, len(f.Columns))
	for _, name := range f.Schema().Numeric() {
		c, ok := f.Column(name)
		if !ok {
			continue
		}
		filled := interpolateLinear(c.Values)
		fills = append(fills, Fill{Column: name, Filled: filled, Remaining: c.MissingCount()})
	}
	return fills
}

// interpolateLinear fills interior gaps of vals in place and returns the
// number of cells filled.
func interpolateLinear(vals []float64) int {
	filled := 0
	prev := -1
	for i, v := range vals {
		if model.IsMissing(v) {
			continue
		}
		if prev >= 0 && i-prev > 1 {
			lo, hi := vals[prev], v
			span := float64(i - prev)
			for j := prev + 1; j < i; j++ {
				vals[j] = lo + (hi-lo)*float64(j-prev)/span
				filled++
			}
		}
		prev = i
	}
	return filled
}
