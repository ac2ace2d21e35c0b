package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// missingTokens are the cell spellings treated as an absent measurement.
var missingTokens = map[string]struct{}{
	"":     {},
	"nan":  {},
	"na":   {},
	"n/a":  {},
	"null": {},
}

// IsMissingToken reports whether s spells an absent value.
func IsMissingToken(s string) bool {
	_, ok := missingTokens[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// ParsePeriod parses a settlement period in 1..MaxPeriod. Integral floats
// such as "12.0" are accepted because some exports widen the column to float.
func ParsePeriod(s string) (int, error) {
	s = strings.TrimSpace(s)
	if IsMissingToken(s) {
		return 0, fmt.Errorf("missing settlement period")
	}
	p, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("non-numeric settlement period")
		}
		if f < 1 || f > MaxPeriod {
			return 0, errPeriodRange
		}
		p = int(f)
	}
	if err := checkPeriod(p); err != nil {
		return 0, err
	}
	return p, nil
}

// ParseValue parses a numeric measurement; missing tokens yield Missing().
func ParseValue(s string) (float64, error) {
	if IsMissingToken(s) {
		return Missing(), nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-numeric value")
	}
	return v, nil
}

// ParseKey parses the two key cells of a row. A failure is returned as an
// *InputError naming the offending column; the caller supplies the location.
func ParseKey(date, period string) (SettlementKey, error) {
	d, err := ParseDate(date)
	if err != nil {
		return SettlementKey{}, &InputError{Column: ColSettlementDate, Value: date, Err: err}
	}
	p, err := ParsePeriod(period)
	if err != nil {
		return SettlementKey{}, &InputError{Column: ColSettlementPeriod, Value: period, Err: err}
	}
	return SettlementKey{Date: d, Period: p}, nil
}
