package models

import (
	"errors"
	"fmt"
)

// ErrColumnExists is returned when adding a column whose name is already
// taken in the table.
var ErrColumnExists = errors.New("column already exists")

// ErrColumnNotFound is returned when addressing a column the table lacks.
var ErrColumnNotFound = errors.New("column not found")

// Table is a small column-oriented frame used where connector output keeps
// API-specific columns (station metadata, chronicle exports) and by the
// trend baseline join. Cell values are time.Time, float64 or string.
type Table struct {
	cols []string
	data map[string][]any
	rows int
}

// NewTable creates an empty table with the given column order.
func NewTable(cols ...string) *Table {
	t := &Table{cols: append([]string(nil), cols...), data: make(map[string][]any, len(cols))}
	for _, c := range t.cols {
		t.data[c] = nil
	}
	return t
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.cols...)
}

// HasColumn reports whether the table has a column named name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.data[name]
	return ok
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return t.rows }

// AppendRow appends one value per column, in column order.
func (t *Table) AppendRow(values ...any) error {
	if len(values) != len(t.cols) {
		return fmt.Errorf("append row: got %d values for %d columns", len(values), len(t.cols))
	}
	for i, c := range t.cols {
		t.data[c] = append(t.data[c], values[i])
	}
	t.rows++
	return nil
}

// Column returns the values of a column.
func (t *Table) Column(name string) ([]any, error) {
	vals, ok := t.data[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
	}
	return vals, nil
}

// AddColumn appends a new column. Fails with ErrColumnExists if the name is
// taken, which callers surface as a naming collision.
func (t *Table) AddColumn(name string, values []any) error {
	if _, ok := t.data[name]; ok {
		return fmt.Errorf("%w: %s", ErrColumnExists, name)
	}
	if t.rows != 0 && len(values) != t.rows {
		return fmt.Errorf("add column %s: got %d values for %d rows", name, len(values), t.rows)
	}
	t.cols = append(t.cols, name)
	t.data[name] = values
	if t.rows == 0 {
		t.rows = len(values)
	}
	return nil
}

// Value returns the cell at (row, col).
func (t *Table) Value(row int, col string) (any, error) {
	vals, ok := t.data[col]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, col)
	}
	if row < 0 || row >= len(vals) {
		return nil, fmt.Errorf("row %d out of range", row)
	}
	return vals[row], nil
}

// Copy returns a deep copy of the table.
func (t *Table) Copy() *Table {
	out := &Table{cols: append([]string(nil), t.cols...), data: make(map[string][]any, len(t.cols)), rows: t.rows}
	for c, vals := range t.data {
		out.data[c] = append([]any(nil), vals...)
	}
	return out
}

// Select returns a copy keeping only the named columns, in the given order.
func (t *Table) Select(cols ...string) (*Table, error) {
	out := NewTable(cols...)
	for _, c := range cols {
		vals, ok := t.data[c]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, c)
		}
		out.data[c] = append([]any(nil), vals...)
	}
	out.rows = t.rows
	return out, nil
}

// Records renders the table as one map per row, for JSON responses.
func (t *Table) Records() []map[string]any {
	out := make([]map[string]any, t.rows)
	for i := 0; i < t.rows; i++ {
		rec := make(map[string]any, len(t.cols))
		for _, c := range t.cols {
			rec[c] = t.data[c][i]
		}
		out[i] = rec
	}
	return out
}
