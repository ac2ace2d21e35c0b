package data

import (
	"encoding/csv"
	"io"
	"strconv"

	"settlement-pipeline/internal/model"
)

// FrameCSV returns a writer for Stage or Publish that encodes f as a
// delimited table: the key columns, then one column per numeric column.
// Missing cells are written empty.
func FrameCSV(f *model.Frame) func(w io.Writer) error {
	return func(w io.Writer) error { return EncodeFrameCSV(w, f) }
}

func EncodeFrameCSV(w io.Writer, f *model.Frame) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(f.Schema().Names()); err != nil {
		return err
	}

	row := make([]string, len(model.KeySchema)+len(f.Columns))
	for i, k := range f.Keys {
		row[0] = k.Date.String()
		row[1] = strconv.Itoa(k.Period)
		for j, c := range f.Columns {
			row[2+j] = fmtFloat(c.Values[i])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func fmtFloat(x float64) string {
	if model.IsMissing(x) {
		return ""
	}
	return strconv.FormatFloat(x, 'f', -1, 64)
}
