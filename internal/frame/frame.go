// Package frame provides the in-memory columnar table model shared by
// the reducer engine and the field display resolver. Tables are plain
// value containers: a named, ordered set of columns plus positionally
// aligned rows. Nothing in this package mutates a table after it is
// built, so tables are safe for unsynchronized concurrent reads.
package frame

import (
	"fmt"
	"time"
)

// ColumnType classifies the declared type of a column.
type ColumnType int

const (
	TypeOther ColumnType = iota
	TypeText
	TypeNumber
	TypeTime
	TypeBool
)

// String returns the lowercase name of the column type.
func (t ColumnType) String() string {
	switch t {
	case TypeText:
		return "text"
	case TypeNumber:
		return "number"
	case TypeTime:
		return "time"
	case TypeBool:
		return "bool"
	default:
		return "other"
	}
}

// Column describes one column of a table. Columns are identified by
// their position; DisplayName is optional and falls back to Name.
type Column struct {
	Name        string
	DisplayName string
	Type        ColumnType
}

// Title returns the display name if set, otherwise the column name.
func (c Column) Title() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return c.Name
}

// Table is a named collection of columns and rows. Every row holds
// exactly one cell per column; nil cells represent missing values.
type Table struct {
	Name    string
	Columns []Column
	Rows    [][]any
}

// New creates an empty table with the given name and columns.
func New(name string, cols ...Column) *Table {
	return &Table{Name: name, Columns: cols}
}

// AppendRow adds a row to the table. The row must have exactly one
// cell per column.
func (t *Table) AppendRow(cells ...any) error {
	if len(cells) != len(t.Columns) {
		return fmt.Errorf("row has %d cells, table %q has %d columns", len(cells), t.Name, len(t.Columns))
	}
	t.Rows = append(t.Rows, cells)
	return nil
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// At returns the cell at (row, col). Both indexes must be in range.
func (t *Table) At(row, col int) (any, error) {
	if col < 0 || col >= len(t.Columns) {
		return nil, fmt.Errorf("column index %d out of range [0,%d) in table %q", col, len(t.Columns), t.Name)
	}
	if row < 0 || row >= len(t.Rows) {
		return nil, fmt.Errorf("row index %d out of range [0,%d) in table %q", row, len(t.Rows), t.Name)
	}
	return t.Rows[row][col], nil
}

// Validate checks the row-width invariant: every row has exactly as
// many cells as there are columns.
func (t *Table) Validate() error {
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("table %q: row %d has %d cells, want %d", t.Name, i, len(row), len(t.Columns))
		}
	}
	return nil
}

// ToFloat coerces a cell value to float64 for numeric accumulation.
// Returns false for nil, strings, and anything else that is not a
// number. Booleans map to 0/1 and times to epoch milliseconds, which
// matches how the adapters type their columns.
func ToFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case time.Time:
		return float64(x.UnixMilli()), true
	default:
		return 0, false
	}
}
