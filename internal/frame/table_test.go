package frame

import (
	"reflect"
	"testing"
)

func TestAppendExtendsColumns(t *testing.T) {
	tbl := New("region", "price")
	tbl.Append(map[string]any{"region": "PJM", "price": 45.50})
	tbl.Append(map[string]any{"region": "CAISO", "price": 52.30, "demand": int64(42000)})

	want := []string{"region", "price", "demand"}
	if got := tbl.Columns(); !reflect.DeepEqual(got, want) {
		t.Errorf("Columns() = %v, want %v", got, want)
	}
	if tbl.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tbl.Len())
	}
}

func TestSetColumn(t *testing.T) {
	tbl := New("a")
	tbl.Append(map[string]any{"a": "x"})
	tbl.Append(map[string]any{"a": "y"})
	tbl.SetColumn("source_file", "prices.csv")

	for i := 0; i < tbl.Len(); i++ {
		if tbl.Row(i)["source_file"] != "prices.csv" {
			t.Errorf("row %d missing source_file", i)
		}
	}
	cols := tbl.Columns()
	if cols[len(cols)-1] != "source_file" {
		t.Errorf("expected source_file appended to columns, got %v", cols)
	}
}

func TestFilter(t *testing.T) {
	tbl := New("data_type", "value")
	tbl.Append(map[string]any{"data_type": "power_price", "value": 1.0})
	tbl.Append(map[string]any{"data_type": "renewable_generation", "value": 2.0})
	tbl.Append(map[string]any{"data_type": "power_price", "value": 3.0})

	prices := tbl.Filter(func(row map[string]any) bool {
		return row["data_type"] == "power_price"
	})
	if prices.Len() != 2 {
		t.Fatalf("Filter kept %d rows, want 2", prices.Len())
	}
	if got := prices.Floats("value"); !reflect.DeepEqual(got, []float64{1.0, 3.0}) {
		t.Errorf("filtered values = %v", got)
	}
}

func TestConcatMergesColumnOrders(t *testing.T) {
	a := New("region", "price")
	a.Append(map[string]any{"region": "PJM", "price": 45.50})
	b := New("region", "temperature")
	b.Append(map[string]any{"region": "Texas", "temperature": 92.1})

	out := Concat(a, nil, b)
	if out.Len() != 2 {
		t.Fatalf("Concat Len() = %d, want 2", out.Len())
	}
	want := []string{"region", "price", "temperature"}
	if got := out.Columns(); !reflect.DeepEqual(got, want) {
		t.Errorf("Concat columns = %v, want %v", got, want)
	}
}

func TestStringsFormatsNonStrings(t *testing.T) {
	tbl := New("v")
	tbl.Append(map[string]any{"v": "a"})
	tbl.Append(map[string]any{"v": int64(7)})
	tbl.Append(map[string]any{})

	want := []string{"a", "7", ""}
	if got := tbl.Strings("v"); !reflect.DeepEqual(got, want) {
		t.Errorf("Strings() = %v, want %v", got, want)
	}
}

func TestAsFloat(t *testing.T) {
	tests := []struct {
		in   any
		want float64
		ok   bool
	}{
		{45.5, 45.5, true},
		{float32(2.5), 2.5, true},
		{int64(85000), 85000, true},
		{int(3), 3, true},
		{"not a number", 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := AsFloat(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("AsFloat(%v) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDistinct(t *testing.T) {
	tbl := New("region")
	for _, r := range []string{"PJM", "CAISO", "PJM", "ERCOT", "CAISO"} {
		tbl.Append(map[string]any{"region": r})
	}
	want := []string{"PJM", "CAISO", "ERCOT"}
	if got := tbl.Distinct("region"); !reflect.DeepEqual(got, want) {
		t.Errorf("Distinct() = %v, want %v", got, want)
	}
}
