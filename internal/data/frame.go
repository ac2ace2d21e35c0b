package data

import (
	"encoding/csv"
	"errors"
	"io"
	"os"

	"settlement-pipeline/internal/model"

	"github.com/jszwec/csvutil"
)

type keyRecord struct {
	Position
	SettlementDate   string `csv:"SettlementDate"`
	SettlementPeriod string `csv:"SettlementPeriod"`
}

// ReadFrame reads a normalized or merged table written by FrameCSV.
// Every column of schema must be present; other columns are ignored.
func ReadFrame(path, name string, schema model.Schema) (*model.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeFrame(path, name, f, schema)
}

// ReadMerged reads the merged generation/demand output.
func ReadMerged(path string) (*model.Frame, error) {
	return ReadFrame(path, "merged", model.MergedSchema)
}

func DecodeFrame(path, name string, r io.Reader, schema model.Schema) (*model.Frame, error) {
	cr := csv.NewReader(skipBOM(r))
	dec, err := csvutil.NewDecoder(cr)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &model.InputError{Path: path, Err: errors.New("empty file")}
		}
		return nil, &model.InputError{Path: path, Line: 1, Err: err}
	}
	if err := checkHeader(path, dec.Header(), schema.Names()); err != nil {
		return nil, err
	}
	index := make(map[string]int, len(dec.Header()))
	for i, h := range dec.Header() {
		index[h] = i
	}

	out := model.NewTable(name, schema)
	numeric := schema.Numeric()
	values := make([]float64, len(numeric))
	for {
		var rec keyRecord
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &model.InputError{Path: path, Err: err}
		}
		line, _ := cr.FieldPos(0)
		rec.at(path, line)

		key, err := model.ParseKey(rec.SettlementDate, rec.SettlementPeriod)
		if err != nil {
			return nil, rec.Locate("", "", err)
		}
		raw := dec.Record()
		for i, col := range numeric {
			cell := raw[index[col]]
			v, err := model.ParseValue(cell)
			if err != nil {
				return nil, rec.Locate(col, cell, err)
			}
			values[i] = v
		}
		out.Append(key, values...)
	}
	return out, nil
}
