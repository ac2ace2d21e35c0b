package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// dateLayouts are the encodings accepted for settlement dates in raw files.
// Output is always written as dateLayout.
var dateLayouts = []string{
	dateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"02-Jan-2006",
	"02-Jan-06",
}

// Date is a calendar date with no time of day or zone attached.
// It is comparable and safe to use as a map key.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the date t falls on in its own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate accepts any of the layouts used by the raw sources.
// A time-of-day component, if present, is dropped.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, fmt.Errorf("unrecognised date %q", s)
}

func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	return d.Time().Format(dateLayout)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

// Compare returns -1, 0 or +1.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }
func (d Date) After(o Date) bool  { return d.Compare(o) > 0 }

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MaxPeriod bounds the settlement period. A day has at most 50 half-hour
// periods (the autumn clock change); the rest is headroom.
const MaxPeriod = 100

var errPeriodRange = fmt.Errorf("settlement period must be in 1..%d", MaxPeriod)

func checkPeriod(p int) error {
	if p < 1 || p > MaxPeriod {
		return errPeriodRange
	}
	return nil
}

// SettlementKey identifies one settlement period of one date.
// Periods are 1-indexed.
type SettlementKey struct {
	Date   Date
	Period int
}

// Validate checks that the period lies in 1..MaxPeriod. A failure is an
// *InputError for the period column.
func (k SettlementKey) Validate() error {
	if err := checkPeriod(k.Period); err != nil {
		return &InputError{Column: ColSettlementPeriod, Value: strconv.Itoa(k.Period), Err: err}
	}
	return nil
}

func (k SettlementKey) Compare(o SettlementKey) int {
	if c := k.Date.Compare(o.Date); c != 0 {
		return c
	}
	return cmpInt(k.Period, o.Period)
}

func (k SettlementKey) Less(o SettlementKey) bool { return k.Compare(o) < 0 }

func (k SettlementKey) String() string {
	return fmt.Sprintf("%s/%d", k.Date, k.Period)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
