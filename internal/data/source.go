package data

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"

	"settlement-pipeline/internal/model"

	"github.com/jszwec/csvutil"
)

// Position records where a raw record was read from.
type Position struct {
	Path string `csv:"-"`
	Line int    `csv:"-"`
}

func (p *Position) at(path string, line int) {
	p.Path, p.Line = path, line
}

// Locate stamps err with the record position. Errors that are not already
// an *model.InputError are wrapped into one for column.
func (p Position) Locate(column, value string, err error) error {
	var ie *model.InputError
	if errors.As(err, &ie) {
		out := *ie
		out.Path, out.Line = p.Path, p.Line
		return &out
	}
	return &model.InputError{Path: p.Path, Line: p.Line, Column: column, Value: value, Err: err}
}

// CostRecord is one row of the raw system price file. Other columns are ignored.
type CostRecord struct {
	Position
	SettlementDate   string `csv:"SettlementDate"`
	SettlementPeriod string `csv:"SettlementPeriod"`
	Price            string `csv:"Price"`
}

// GenerationRecord is one row of the raw per-fuel generation file.
type GenerationRecord struct {
	Position
	SettlementDate   string `csv:"SettlementDate"`
	SettlementPeriod string `csv:"SettlementPeriod"`
	FuelType         string `csv:"FuelType"`
	Generation       string `csv:"Generation"`
}

// DemandRecord is one row of the raw demand file; TSD is transmission system demand.
type DemandRecord struct {
	Position
	SettlementDate   string `csv:"SETTLEMENT_DATE"`
	SettlementPeriod string `csv:"SETTLEMENT_PERIOD"`
	TSD              string `csv:"TSD"`
}

func ReadCost(path string) ([]CostRecord, error) {
	return decodeFile[CostRecord](path, model.CostSourceSchema)
}

func ReadGeneration(path string) ([]GenerationRecord, error) {
	return decodeFile[GenerationRecord](path, model.GenerationSourceSchema)
}

func ReadDemand(path string) ([]DemandRecord, error) {
	return decodeFile[DemandRecord](path, model.DemandSourceSchema)
}

// DecodeCost decodes cost records from r; path only labels errors.
func DecodeCost(path string, r io.Reader) ([]CostRecord, error) {
	return decode[CostRecord](path, r, model.CostSourceSchema)
}

func DecodeGeneration(path string, r io.Reader) ([]GenerationRecord, error) {
	return decode[GenerationRecord](path, r, model.GenerationSourceSchema)
}

func DecodeDemand(path string, r io.Reader) ([]DemandRecord, error) {
	return decode[DemandRecord](path, r, model.DemandSourceSchema)
}

type positioned[T any] interface {
	*T
	at(path string, line int)
}

func decodeFile[T any, PT positioned[T]](path string, schema model.Schema) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decode[T, PT](path, f, schema)
}

// decode reads records of T from r after checking the header carries every
// column of schema.
func decode[T any, PT positioned[T]](path string, r io.Reader, schema model.Schema) ([]T, error) {
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

	var out []T
	for {
		var rec T
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &model.InputError{Path: path, Err: err}
		}
		line, _ := cr.FieldPos(0)
		PT(&rec).at(path, line)
		out = append(out, rec)
	}
	return out, nil
}

func checkHeader(path string, header, want []string) error {
	have := make(map[string]struct{}, len(header))
	for _, h := range header {
		have[h] = struct{}{}
	}
	var missing []string
	for _, w := range want {
		if _, ok := have[w]; !ok {
			missing = append(missing, w)
		}
	}
	if len(missing) > 0 {
		return &model.InputError{
			Path:   path,
			Line:   1,
			Column: strings.Join(missing, ","),
			Err:    errors.New("missing column"),
		}
	}
	return nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// skipBOM drops a leading UTF-8 byte order mark, as written by Excel.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(b, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}
