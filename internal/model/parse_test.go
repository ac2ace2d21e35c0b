package model

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"1", 1, false},
		{" 48 ", 48, false},
		{"50.0", 50, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"100", 100, false},
		{"101", 0, true},
		{"1000000000", 0, true},
		{"9223372036854775807", 0, true},
		{"99999999999999999999", 0, true},
		{"1e9", 0, true},
		{"1.5", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParsePeriod(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseValue(t *testing.T) {
	v, err := ParseValue("1234.5")
	require.NoError(t, err)
	assert.Equal(t, 1234.5, v)

	for _, in := range []string{"", "NaN", "nan", "NA", " null "} {
		v, err := ParseValue(in)
		require.NoError(t, err, in)
		assert.True(t, IsMissing(v), in)
	}

	_, err = ParseValue("12MW")
	assert.Error(t, err)
	_, err = ParseValue("Inf")
	assert.Error(t, err)
}

func TestParseKey_ReportsColumn(t *testing.T) {
	_, err := ParseKey("2020-01-01", "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedInput))

	var ie *InputError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, ColSettlementPeriod, ie.Column)
	assert.Equal(t, "x", ie.Value)

	_, err = ParseKey("not a date", "1")
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, ColSettlementDate, ie.Column)
}

func TestDuplicateKeyError_Is(t *testing.T) {
	err := error(&DuplicateKeyError{Table: "demand", Key: SettlementKey{Date: NewDate(2020, 1, 1), Period: 3}})
	assert.True(t, errors.Is(err, ErrDuplicateKey))
	assert.Contains(t, err.Error(), "2020-01-01/3")
}

func TestSettlementKey_Validate(t *testing.T) {
	d := NewDate(2020, 1, 1)
	assert.NoError(t, SettlementKey{Date: d, Period: 50}.Validate())

	for _, p := range []int{0, MaxPeriod + 1, math.MaxInt} {
		err := SettlementKey{Date: d, Period: p}.Validate()
		require.Error(t, err, p)
		assert.True(t, errors.Is(err, ErrMalformedInput))
		var ie *InputError
		require.True(t, errors.As(err, &ie))
		assert.Equal(t, ColSettlementPeriod, ie.Column)
	}
}
