// Package analysis loads player CSV exports, cleans them, computes
// summary statistics with gonum and renders charts with gonum/plot.
package analysis

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrMissingColumn is returned by every operation that needs a column the
// frame does not have.
var ErrMissingColumn = errors.New("missing column")

// Frame is a table of string cells with named columns.
type Frame struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// NewFrame builds a frame. Rows shorter than columns are padded with
// empty cells; longer rows are cut.
func NewFrame(columns []string, rows [][]string) *Frame {
	f := &Frame{columns: append([]string(nil), columns...)}
	f.reindex()
	f.rows = make([][]string, len(rows))
	for i, r := range rows {
		row := make([]string, len(columns))
		copy(row, r)
		f.rows[i] = row
	}
	return f
}

func (f *Frame) reindex() {
	f.index = make(map[string]int, len(f.columns))
	for i, c := range f.columns {
		if _, dup := f.index[c]; !dup {
			f.index[c] = i
		}
	}
}

// Columns returns the column names.
func (f *Frame) Columns() []string {
	return append([]string(nil), f.columns...)
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.rows)
}

// Row returns a copy of row i.
func (f *Frame) Row(i int) []string {
	return append([]string(nil), f.rows[i]...)
}

// HasColumn reports whether the frame has column name.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Value returns the cell of row i in column name.
func (f *Frame) Value(i int, name string) (string, error) {
	idx, ok := f.index[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingColumn, name)
	}
	return f.rows[i][idx], nil
}

// Column returns a copy of every cell of column name.
func (f *Frame) Column(name string) ([]string, error) {
	idx, ok := f.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
	}
	out := make([]string, len(f.rows))
	for i, r := range f.rows {
		out[i] = r[idx]
	}
	return out, nil
}

// Numeric parses column name as floats. Cells that are not numbers are
// reported as ok=false.
func (f *Frame) Numeric(name string) (values []float64, ok []bool, err error) {
	cells, err := f.Column(name)
	if err != nil {
		return nil, nil, err
	}
	values = make([]float64, len(cells))
	ok = make([]bool, len(cells))
	for i, c := range cells {
		if v, perr := parseNumber(c); perr == nil {
			values[i], ok[i] = v, true
		}
	}
	return values, ok, nil
}

// Floats returns the numeric cells of column name, skipping the others.
func (f *Frame) Floats(name string) ([]float64, error) {
	values, ok, err := f.Numeric(name)
	if err != nil {
		return nil, err
	}
	out := values[:0:0]
	for i, v := range values {
		if ok[i] {
			out = append(out, v)
		}
	}
	return out, nil
}

// errNotFinite rejects NaN and infinities, which count as missing values.
var errNotFinite = errors.New("not a finite number")

func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotFinite
	}
	return v, nil
}

// filter returns a frame with the rows keep accepts.
func (f *Frame) filter(keep func(row []string) bool) *Frame {
	out := &Frame{columns: f.columns, index: f.index}
	for _, r := range f.rows {
		if keep(r) {
			out.rows = append(out.rows, r)
		}
	}
	return out
}

// LoadCSV reads a CSV file whose first line holds the column names.
func LoadCSV(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	return ReadCSV(file)
}

// ReadCSV reads CSV data whose first line holds the column names.
func ReadCSV(r io.Reader) (*Frame, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read csv: no header line")
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	return NewFrame(header, records[1:]), nil
}

// WriteCSV writes the frame with a header line, creating parent
// directories as needed.
func WriteCSV(f *Frame, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create csv dir: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}

	cw := csv.NewWriter(file)
	if err := cw.Write(f.columns); err != nil {
		file.Close()
		return fmt.Errorf("write csv: %w", err)
	}
	if err := cw.WriteAll(f.rows); err != nil {
		file.Close()
		return fmt.Errorf("write csv: %w", err)
	}
	return file.Close()
}
