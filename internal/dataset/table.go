package dataset

import (
	"fmt"
	"strings"
)

// Table names of the six dataset sources
const (
	TableRestaurant    = "restaurant"
	TableCuisine       = "cuisine"
	TablePayment       = "payment"
	TableReviews       = "reviews"
	TableTiming        = "timing"
	TableTimingCuisine = "timing_cuisine"
)

// TableNames lists every source table in load order
var TableNames = []string{
	TableCuisine,
	TablePayment,
	TableRestaurant,
	TableReviews,
	TableTiming,
	TableTimingCuisine,
}

// Table is a raw tabular source with normalized column names
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string

	index map[string]int
}

// NewTable builds a table, normalizing every column name.
// When two columns normalize to the same name the first one wins.
func NewTable(name string, columns []string, rows [][]string) *Table {
	t := &Table{
		Name:    name,
		Columns: make([]string, len(columns)),
		Rows:    rows,
		index:   make(map[string]int, len(columns)),
	}

	for i, col := range columns {
		normalized := NormalizeColumn(col)
		t.Columns[i] = normalized
		if _, exists := t.index[normalized]; !exists {
			t.index[normalized] = i
		}
	}

	return t
}

// NormalizeColumn trims whitespace and lower-cases a column name
func NormalizeColumn(name string) string {
	// Strip a UTF-8 byte order mark left by spreadsheet exports
	name = strings.TrimPrefix(name, "\ufeff")
	return strings.ToLower(strings.TrimSpace(name))
}

// Index returns the position of a normalized column
func (t *Table) Index(column string) (int, bool) {
	i, ok := t.index[NormalizeColumn(column)]
	return i, ok
}

// Has reports whether the table carries the column
func (t *Table) Has(column string) bool {
	_, ok := t.Index(column)
	return ok
}

// Require returns an error wrapping ErrMissingColumns when any column is absent
func (t *Table) Require(columns ...string) error {
	var missing []string
	for _, col := range columns {
		if !t.Has(col) {
			missing = append(missing, col)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return nil
}

// Value returns the trimmed cell of row at column, or "" when absent
func (t *Table) Value(row []string, column string) string {
	i, ok := t.Index(column)
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// Len returns the number of data rows
func (t *Table) Len() int {
	return len(t.Rows)
}
