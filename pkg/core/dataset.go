package core

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Dataset is a bounded in-memory table stored column by column.
//
// Values are scalars: int64, float64, string, bool, time.Time, or nil for null.
// A float64 NaN is treated as null as well. Checks read a dataset without
// mutating it; callers must not append rows while a validation run is active.
type Dataset struct {
	columns []string
	index   map[string]int
	data    [][]any
	rows    int
}

// NewDataset creates an empty dataset with the given column order.
// A repeated name is renamed to name.N, with N counting up from 1 until the
// name is free, so every source column keeps its position.
func NewDataset(columns []string) *Dataset {
	ds := &Dataset{index: make(map[string]int, len(columns))}
	taken := make(map[string]bool, len(columns))
	for _, col := range columns {
		taken[col] = true
	}
	seen := make(map[string]int, len(columns))
	for _, col := range columns {
		name := col
		if n, ok := seen[col]; ok {
			for {
				n++
				name = col + "." + strconv.Itoa(n)
				if !taken[name] {
					break
				}
			}
			seen[col] = n
			taken[name] = true
		} else {
			seen[col] = 0
		}
		ds.index[name] = len(ds.columns)
		ds.columns = append(ds.columns, name)
		ds.data = append(ds.data, nil)
	}
	return ds
}

// FromRecords builds a dataset from row-oriented records.
// Keys missing from a record become null.
func FromRecords(columns []string, records []map[string]any) *Dataset {
	ds := NewDataset(columns)
	for _, rec := range records {
		row := make([]any, len(ds.columns))
		for i, col := range ds.columns {
			row[i] = rec[col]
		}
		ds.appendRow(row)
	}
	return ds
}

// AppendRow appends one record. Values are matched to columns by position;
// missing trailing values become null and extra values are an error.
func (d *Dataset) AppendRow(values ...any) error {
	if len(values) > len(d.columns) {
		return fmt.Errorf("row has %d values but dataset has %d columns", len(values), len(d.columns))
	}
	row := make([]any, len(d.columns))
	copy(row, values)
	d.appendRow(row)
	return nil
}

func (d *Dataset) appendRow(row []any) {
	for i := range d.columns {
		d.data[i] = append(d.data[i], row[i])
	}
	d.rows++
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return d.rows
}

// Columns returns a copy of the column names in order.
func (d *Dataset) Columns() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.columns))
	copy(out, d.columns)
	return out
}

// HasColumn reports whether the dataset has a column with the given name.
func (d *Dataset) HasColumn(name string) bool {
	if d == nil {
		return false
	}
	_, ok := d.index[name]
	return ok
}

// Column returns the value vector for a column. The slice is shared with the
// dataset and must be treated as read-only.
func (d *Dataset) Column(name string) ([]any, bool) {
	if d == nil {
		return nil, false
	}
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.data[i], true
}

// Value returns the value at row for column, or nil when either is out of range.
func (d *Dataset) Value(row int, column string) any {
	vals, ok := d.Column(column)
	if !ok || row < 0 || row >= len(vals) {
		return nil
	}
	return vals[row]
}

// Record returns one row as a column -> value map.
func (d *Dataset) Record(row int) map[string]any {
	rec := make(map[string]any, len(d.columns))
	for i, col := range d.columns {
		if row >= 0 && row < d.rows {
			rec[col] = d.data[i][row]
		}
	}
	return rec
}

// IsNull reports whether v is a missing value.
func IsNull(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	}
	return false
}

// AsFloat converts numeric values to float64. Strings, booleans, timestamps
// and nulls are not numeric.
func AsFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int16:
		return float64(x), true
	case int8:
		return float64(x), true
	case uint64:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint:
		return float64(x), true
	case float32:
		if math.IsNaN(float64(x)) {
			return 0, false
		}
		return float64(x), true
	case float64:
		if math.IsNaN(x) {
			return 0, false
		}
		return x, true
	}
	return 0, false
}

// TimestampLayout is the layout used to render timestamps.
const TimestampLayout = "2006-01-02 15:04:05"

// FormatValue renders a scalar for human-readable messages.
func FormatValue(v any) string {
	if IsNull(v) {
		return "null"
	}
	switch x := v.(type) {
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case time.Time:
		return x.Format(TimestampLayout)
	case []byte:
		return string(x)
	}
	if f, ok := AsFloat(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

// ValueKey returns a comparison key for v. Numbers compare by value
// regardless of Go type, nulls compare equal to each other, and values of
// different kinds never collide.
func ValueKey(v any) string {
	if IsNull(v) {
		return "n:"
	}
	if f, ok := AsFloat(v); ok {
		return "f:" + strconv.FormatFloat(f, 'g', -1, 64)
	}
	switch x := v.(type) {
	case string:
		return "s:" + x
	case []byte:
		return "s:" + string(x)
	case bool:
		return "b:" + strconv.FormatBool(x)
	case time.Time:
		return "t:" + x.UTC().Format(time.RFC3339Nano)
	}
	return fmt.Sprintf("%T:%v", v, v)
}
