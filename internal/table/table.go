// Package table loads delimited dataset files into an in-memory grid of
// string cells. Cells are never typed at load time; callers coerce on use.
package table

import "fmt"

// Table is an ordered set of uniquely named columns over rows of text cells.
// Every row has exactly len(Columns) cells.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// New builds a Table from a header and rows. Short rows are padded with empty
// cells and over-long rows are rejected. Header names are made unique the way
// spreadsheet exports are usually read back: a blank name at position i
// (0-based) becomes "Unnamed: i" and a repeated name gains a ".1", ".2", ...
// suffix, so a trailing delimiter on the header row does not make the file
// unreadable.
func New(columns []string, rows [][]string) (*Table, error) {
	cols := uniqueNames(columns)
	index := make(map[string]int, len(cols))
	for i, name := range cols {
		index[name] = i
	}
	normalized := make([][]string, len(rows))
	for i, row := range rows {
		if len(row) > len(columns) {
			return nil, fmt.Errorf("row %d: expected at most %d fields, saw %d", i+1, len(columns), len(row))
		}
		cells := make([]string, len(columns))
		copy(cells, row)
		normalized[i] = cells
	}
	return &Table{columns: cols, index: index, rows: normalized}, nil
}

// uniqueNames fills blank names and suffixes repeats. A suffixed name that
// collides with an earlier one is suffixed again.
func uniqueNames(columns []string) []string {
	out := make([]string, len(columns))
	counts := make(map[string]int, len(columns))
	for i, name := range columns {
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		n := counts[name]
		for n > 0 {
			counts[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n)
			n = counts[name]
		}
		out[i] = name
		counts[name] = n + 1
	}
	return out
}

// Columns returns the column names in file order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Index returns the position of the named column.
func (t *Table) Index(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Has reports whether the table has the named column.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.rows) }

// Row returns the cells of row i. The slice must not be modified.
func (t *Table) Row(i int) []string { return t.rows[i] }

// Cell returns the cell at row i in the named column, or "" when the column is absent.
func (t *Table) Cell(i int, column string) string {
	j, ok := t.index[column]
	if !ok {
		return ""
	}
	return t.rows[i][j]
}
