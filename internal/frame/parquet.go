package frame

import (
	"bytes"
	"fmt"

	"github.com/parquet-go/parquet-go"
)

// MarshalParquet encodes the table as a parquet file. The schema is inferred
// from the cell values: a column containing any string becomes a string
// column, otherwise float64, int64, or bool in that order of precedence.
// All columns are optional so sparse rows round-trip.
func (t *Table) MarshalParquet() ([]byte, error) {
	if t.Len() == 0 {
		return nil, fmt.Errorf("cannot encode empty table")
	}

	group := parquet.Group{}
	for _, col := range t.columns {
		group[col] = parquet.Optional(t.inferNode(col))
	}
	schema := parquet.NewSchema("record", group)

	var buf bytes.Buffer
	w := parquet.NewGenericWriter[map[string]any](&buf, schema)
	if _, err := w.Write(t.rows); err != nil {
		return nil, fmt.Errorf("write parquet rows: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}

func (t *Table) inferNode(col string) parquet.Node {
	var sawFloat, sawInt, sawBool bool
	for _, row := range t.rows {
		switch row[col].(type) {
		case string:
			return parquet.String()
		case float64, float32:
			sawFloat = true
		case int, int32, int64:
			sawInt = true
		case bool:
			sawBool = true
		}
	}
	switch {
	case sawFloat:
		return parquet.Leaf(parquet.DoubleType)
	case sawInt:
		return parquet.Int(64)
	case sawBool:
		return parquet.Leaf(parquet.BooleanType)
	default:
		return parquet.String()
	}
}

// UnmarshalParquet decodes a parquet file produced by MarshalParquet (or any
// flat parquet file) into a table.
func UnmarshalParquet(data []byte) (*Table, error) {
	rows, err := parquet.Read[map[string]any](bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("read parquet: %w", err)
	}

	t := New()
	for _, row := range rows {
		clean := make(map[string]any, len(row))
		for k, v := range row {
			clean[k] = normalizeCell(v)
		}
		t.Append(clean)
	}
	return t, nil
}

// normalizeCell maps parquet decoding artifacts back onto the table's cell
// types (byte slices to strings, small ints widened to int64).
func normalizeCell(v any) any {
	switch n := v.(type) {
	case []byte:
		return string(n)
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case float32:
		return float64(n)
	default:
		return v
	}
}
