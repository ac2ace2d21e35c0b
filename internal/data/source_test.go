package data

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"settlement-pipeline/internal/model"

	"github.com/jszwec/csvutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDemand(t *testing.T) {
	in := "SETTLEMENT_DATE,SETTLEMENT_PERIOD,ND,TSD\n" +
		"2016-01-07,1,25000,30000\n" +
		"2016-01-07,2,24000,\n"

	recs, err := DecodeDemand("demand.csv", strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "2016-01-07", recs[0].SettlementDate)
	assert.Equal(t, "1", recs[0].SettlementPeriod)
	assert.Equal(t, "30000", recs[0].TSD)
	assert.Equal(t, "", recs[1].TSD)
	assert.Equal(t, "demand.csv", recs[1].Path)
	assert.Equal(t, 3, recs[1].Line)
}

func TestDecodeGeneration_IgnoresExtraColumns(t *testing.T) {
	in := "\xEF\xBB\xBFDataset,SettlementDate,SettlementPeriod,FuelType,Generation\n" +
		"AGPT,2020-01-02,1,CCGT,100.5\n" +
		"AGPT,2020-01-02,1,WIND,20\n"

	recs, err := DecodeGeneration("gen.csv", strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "CCGT", recs[0].FuelType)
	assert.Equal(t, "100.5", recs[0].Generation)
	assert.Equal(t, "WIND", recs[1].FuelType)
}

func TestDecodeCost_MissingColumn(t *testing.T) {
	in := "SettlementDate,SettlementPeriod,SystemSellPrice\n2020-01-01,1,40\n"

	_, err := DecodeCost("cost.csv", strings.NewReader(in))
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrMalformedInput))

	var ie *model.InputError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "Price", ie.Column)
	assert.Equal(t, 1, ie.Line)
}

func TestDecodeCost_EmptyFile(t *testing.T) {
	_, err := DecodeCost("cost.csv", strings.NewReader(""))
	assert.True(t, errors.Is(err, model.ErrMalformedInput))
}

func TestDecodeCost_RaggedRow(t *testing.T) {
	in := "SettlementDate,SettlementPeriod,Price\n2020-01-01,1\n"
	_, err := DecodeCost("cost.csv", strings.NewReader(in))
	assert.True(t, errors.Is(err, model.ErrMalformedInput))
}

func TestReadCost_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cost.csv")
	require.NoError(t, os.WriteFile(path, []byte("SettlementDate,SettlementPeriod,Price\n2020-01-01,1,40.5\n"), 0o644))

	recs, err := ReadCost(path)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "40.5", recs[0].Price)

	_, err = ReadCost(filepath.Join(t.TempDir(), "missing.csv"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestPosition_Locate(t *testing.T) {
	p := Position{Path: "x.csv", Line: 7}

	_, perr := model.ParseKey("2020-01-01", "zero")
	err := p.Locate("", "", perr)
	var ie *model.InputError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "x.csv", ie.Path)
	assert.Equal(t, 7, ie.Line)
	assert.Equal(t, model.ColSettlementPeriod, ie.Column)

	err = p.Locate("TSD", "abc", errors.New("non-numeric value"))
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "TSD", ie.Column)
	assert.Contains(t, err.Error(), "x.csv:7")
}

func TestRecordTagsMatchSourceSchemas(t *testing.T) {
	tests := []struct {
		record any
		schema model.Schema
	}{
		{CostRecord{}, model.CostSourceSchema},
		{GenerationRecord{}, model.GenerationSourceSchema},
		{DemandRecord{}, model.DemandSourceSchema},
	}
	for _, tt := range tests {
		header, err := csvutil.Header(tt.record, "csv")
		require.NoError(t, err)
		assert.Equal(t, tt.schema.Names(), header, "%T", tt.record)
	}
}

func TestDecode_PeriodOutOfRange(t *testing.T) {
	in := "SettlementDate,SettlementPeriod,Generation,Demand\n2020-01-01,9223372036854775807,1,2\n"
	_, err := DecodeFrame("merged.csv", "merged", strings.NewReader(in), model.MergedSchema)
	require.Error(t, err)
	var ie *model.InputError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, 2, ie.Line)
	assert.Equal(t, model.ColSettlementPeriod, ie.Column)
}
