// Package frame provides a small column-oriented table used as the exchange
// format between collectors, object storage, and the analysis passes. Cell
// values are one of string, int64, float64, or bool.
package frame

import (
	"fmt"
	"sort"
)

// Table holds tabular data as ordered columns over row maps.
type Table struct {
	columns []string
	rows    []map[string]any
}

// New creates an empty table with the given column order.
func New(columns ...string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{columns: cols}
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	cols := make([]string, len(t.columns))
	copy(cols, t.columns)
	return cols
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Append adds a row. Columns not yet known are added to the column order.
func (t *Table) Append(row map[string]any) {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !t.hasColumn(k) {
			t.columns = append(t.columns, k)
		}
	}
	t.rows = append(t.rows, row)
}

func (t *Table) hasColumn(name string) bool {
	for _, c := range t.columns {
		if c == name {
			return true
		}
	}
	return false
}

// Row returns the i-th row map. The map is shared, not copied.
func (t *Table) Row(i int) map[string]any {
	return t.rows[i]
}

// SetColumn assigns the same value to a column in every row, appending the
// column if it does not exist yet.
func (t *Table) SetColumn(name string, value any) {
	if !t.hasColumn(name) {
		t.columns = append(t.columns, name)
	}
	for _, row := range t.rows {
		row[name] = value
	}
}

// Filter returns a new table containing the rows for which keep returns true.
func (t *Table) Filter(keep func(row map[string]any) bool) *Table {
	out := New(t.columns...)
	for _, row := range t.rows {
		if keep(row) {
			out.rows = append(out.rows, row)
		}
	}
	return out
}

// Concat appends all rows of other to a copy of t, merging column orders.
func Concat(tables ...*Table) *Table {
	out := New()
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, c := range t.columns {
			if !out.hasColumn(c) {
				out.columns = append(out.columns, c)
			}
		}
		out.rows = append(out.rows, t.rows...)
	}
	return out
}

// Strings returns the column as strings. Non-string cells are formatted.
func (t *Table) Strings(name string) []string {
	out := make([]string, 0, len(t.rows))
	for _, row := range t.rows {
		v, ok := row[name]
		if !ok {
			out = append(out, "")
			continue
		}
		if s, ok := v.(string); ok {
			out = append(out, s)
		} else {
			out = append(out, fmt.Sprint(v))
		}
	}
	return out
}

// Floats returns the column coerced to float64. Cells that are missing or
// not numeric come back as zero; callers that need strictness should coerce
// row by row with AsFloat.
func (t *Table) Floats(name string) []float64 {
	out := make([]float64, 0, len(t.rows))
	for _, row := range t.rows {
		f, _ := AsFloat(row[name])
		out = append(out, f)
	}
	return out
}

// AsFloat coerces a cell value to float64.
func AsFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	default:
		return 0, false
	}
}

// Distinct returns the distinct string values of a column in first-seen order.
func (t *Table) Distinct(name string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range t.Strings(name) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
