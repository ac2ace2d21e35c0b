package data

import (
	"fmt"
	"io"

	"settlement-pipeline/internal/model"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Sheet1"

// FrameXLSX returns a writer for Stage or Publish that encodes f as a
// single-sheet workbook with the same layout as FrameCSV. Missing cells are
// left blank.
func FrameXLSX(f *model.Frame) func(w io.Writer) error {
	return func(w io.Writer) error { return EncodeFrameXLSX(w, f) }
}

func EncodeFrameXLSX(w io.Writer, f *model.Frame) error {
	x := excelize.NewFile()
	defer x.Close()

	sw, err := x.NewStreamWriter(xlsxSheet)
	if err != nil {
		return fmt.Errorf("failed to open sheet: %w", err)
	}

	names := f.Schema().Names()
	header := make([]interface{}, len(names))
	for i, n := range names {
		header[i] = n
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for i, k := range f.Keys {
		row := make([]interface{}, 0, len(names))
		row = append(row, k.Date.String(), k.Period)
		for _, c := range f.Columns {
			if v := c.Values[i]; model.IsMissing(v) {
				row = append(row, nil)
			} else {
				row = append(row, v)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	return x.Write(w)
}
