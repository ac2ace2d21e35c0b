package model

import (
	"fmt"
	"math"
	"sort"
)

// Column names shared by the normalized and merged tables.
const (
	ColSettlementDate   = "SettlementDate"
	ColSettlementPeriod = "SettlementPeriod"
	ColPrice            = "Price"
	ColFuelType         = "FuelType"
	ColGeneration       = "Generation"
	ColDemand           = "Demand"
)

type ColumnKind int

const (
	KindKey ColumnKind = iota
	KindNumeric
	KindCategorical
)

func (k ColumnKind) String() string {
	switch k {
	case KindKey:
		return "key"
	case KindNumeric:
		return "numeric"
	case KindCategorical:
		return "categorical"
	}
	return "unknown"
}

// ColumnSpec classifies one column of a table.
type ColumnSpec struct {
	Name string
	Kind ColumnKind
}

// Schema is the ordered column list of a table.
type Schema []ColumnSpec

// KeySchema is the leading part of every table schema.
var KeySchema = Schema{
	{Name: ColSettlementDate, Kind: KindKey},
	{Name: ColSettlementPeriod, Kind: KindKey},
}

// Normalized and merged table schemas.
var (
	CostSchema       = NumericSchema(ColPrice)
	GenerationSchema = NumericSchema(ColGeneration)
	DemandSchema     = NumericSchema(ColDemand)
	MergedSchema     = NumericSchema(ColGeneration, ColDemand)
)

// Raw source schemas. Their names are the headers the source files must
// carry; other columns in a source file are ignored.
var (
	CostSourceSchema       = NumericSchema(ColPrice)
	GenerationSourceSchema = Schema{
		{Name: ColSettlementDate, Kind: KindKey},
		{Name: ColSettlementPeriod, Kind: KindKey},
		{Name: ColFuelType, Kind: KindCategorical},
		{Name: ColGeneration, Kind: KindNumeric},
	}
	DemandSourceSchema = Schema{
		{Name: "SETTLEMENT_DATE", Kind: KindKey},
		{Name: "SETTLEMENT_PERIOD", Kind: KindKey},
		{Name: "TSD", Kind: KindNumeric},
	}
)

// NumericSchema returns KeySchema followed by the given numeric columns.
func NumericSchema(columns ...string) Schema {
	s := make(Schema, 0, len(KeySchema)+len(columns))
	s = append(s, KeySchema...)
	for _, c := range columns {
		s = append(s, ColumnSpec{Name: c, Kind: KindNumeric})
	}
	return s
}

func (s Schema) Names() []string {
	out := make([]string, len(s))
	for i, c := range s {
		out[i] = c.Name
	}
	return out
}

// Numeric returns the names of the numeric columns, in schema order.
func (s Schema) Numeric() []string {
	return s.names(KindNumeric)
}

// Categorical returns the names of the categorical columns, in schema order.
func (s Schema) Categorical() []string {
	return s.names(KindCategorical)
}

func (s Schema) names(kind ColumnKind) []string {
	var out []string
	for _, c := range s {
		if c.Kind == kind {
			out = append(out, c.Name)
		}
	}
	return out
}

// Join returns s followed by the non-key columns of o.
func (s Schema) Join(o Schema) Schema {
	out := append(Schema{}, s...)
	for _, c := range o {
		if c.Kind != KindKey {
			out = append(out, c)
		}
	}
	return out
}

// Missing is the in-memory marker for an absent numeric cell.
func Missing() float64 { return math.NaN() }

func IsMissing(v float64) bool { return math.IsNaN(v) }

// Column is one numeric column of a Frame.
type Column struct {
	Name   string
	Values []float64
}

// MissingCount returns the number of missing cells.
func (c *Column) MissingCount() int {
	n := 0
	for _, v := range c.Values {
		if IsMissing(v) {
			n++
		}
	}
	return n
}

// Frame is a keyed table: one SettlementKey per row plus numeric columns of
// equal length, laid out by its schema. Row order is significant only where
// documented.
type Frame struct {
	// Name labels the table in errors and logs.
	Name    string
	Keys    []SettlementKey
	Columns []*Column

	schema Schema
}

// NewTable creates an empty named frame laid out by schema: one column per
// numeric column of schema. Categorical columns only exist in raw sources
// and must be collapsed before a frame is built, so schema must not carry any.
func NewTable(name string, schema Schema) *Frame {
	f := &Frame{Name: name, schema: append(Schema{}, schema...)}
	for _, c := range schema {
		switch c.Kind {
		case KindNumeric:
			f.Columns = append(f.Columns, &Column{Name: c.Name})
		case KindCategorical:
			panic(fmt.Sprintf("model: table %s: categorical column %s cannot be stored in a frame", name, c.Name))
		}
	}
	return f
}

// NewFrame creates an empty named frame with the given numeric columns.
func NewFrame(name string, columns ...string) *Frame {
	return NewTable(name, NumericSchema(columns...))
}

func (f *Frame) Len() int { return len(f.Keys) }

// Append adds a row. values must line up with f.Columns.
func (f *Frame) Append(key SettlementKey, values ...float64) {
	if len(values) != len(f.Columns) {
		panic("model: frame row width does not match column count")
	}
	f.Keys = append(f.Keys, key)
	for i, v := range values {
		f.Columns[i].Values = append(f.Columns[i].Values, v)
	}
}

func (f *Frame) Column(name string) (*Column, bool) {
	for _, c := range f.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Schema returns the schema the frame was built with. A frame assembled by
// hand without one is described by its key columns and numeric columns.
func (f *Frame) Schema() Schema {
	if f.schema != nil {
		return append(Schema{}, f.schema...)
	}
	s := append(Schema{}, KeySchema...)
	for _, c := range f.Columns {
		s = append(s, ColumnSpec{Name: c.Name, Kind: KindNumeric})
	}
	return s
}

// Row returns the numeric values of row i in column order.
func (f *Frame) Row(i int) []float64 {
	out := make([]float64, len(f.Columns))
	for j, c := range f.Columns {
		out[j] = c.Values[i]
	}
	return out
}

// Sort orders rows ascending by key. The sort is stable.
func (f *Frame) Sort() {
	idx := make([]int, f.Len())
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return f.Keys[idx[a]].Less(f.Keys[idx[b]])
	})
	keys := make([]SettlementKey, len(idx))
	for i, j := range idx {
		keys[i] = f.Keys[j]
	}
	f.Keys = keys
	for _, c := range f.Columns {
		vals := make([]float64, len(idx))
		for i, j := range idx {
			vals[i] = c.Values[j]
		}
		c.Values = vals
	}
}

// Dates returns the distinct dates of the frame in ascending order.
func (f *Frame) Dates() []Date {
	seen := map[Date]struct{}{}
	var out []Date
	for _, k := range f.Keys {
		if _, ok := seen[k.Date]; ok {
			continue
		}
		seen[k.Date] = struct{}{}
		out = append(out, k.Date)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
