package analysis

import (
	"fmt"
	"strconv"
	"strings"
)

// Clean normalises an export: column names are trimmed and lowercased,
// position values are trimmed and lowercased, rows without a name are
// dropped and age becomes numeric with unparsable rows dropped. Each step
// only applies when its column exists.
func Clean(f *Frame) *Frame {
	columns := make([]string, len(f.columns))
	for i, c := range f.columns {
		columns[i] = strings.ToLower(strings.TrimSpace(c))
	}
	out := NewFrame(columns, f.rows)

	if idx, ok := out.index["position"]; ok {
		for _, r := range out.rows {
			r[idx] = strings.ToLower(strings.TrimSpace(r[idx]))
		}
	}

	if idx, ok := out.index["name"]; ok {
		out = out.filter(func(r []string) bool { return strings.TrimSpace(r[idx]) != "" })
	}

	if idx, ok := out.index["age"]; ok {
		out = out.filter(func(r []string) bool {
			v, err := parseNumber(r[idx])
			if err != nil {
				return false
			}
			r[idx] = strconv.FormatFloat(v, 'f', -1, 64)
			return true
		})
	}

	return out
}

// FilterEquals keeps the rows whose column equals value.
func FilterEquals(f *Frame, column, value string) (*Frame, error) {
	idx, ok := f.index[column]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, column)
	}
	return f.filter(func(r []string) bool { return r[idx] == value }), nil
}
