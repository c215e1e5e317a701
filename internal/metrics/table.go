// Package metrics joins the name-keyed outputs of independent scorer
// collaborators into one wide table, one row per design.
//
// Cells are cty values rather than raw strings: a cell is a number, a piece
// of text, or missing. Missing is a first-class state — a design scored by
// only some collaborators keeps its row with null cells for the rest, it is
// never dropped.
package metrics

import (
	"github.com/zclconf/go-cty/cty"
)

// Row holds one design's metrics keyed by column name. Absent columns read
// as null.
type Row struct {
	Name  string
	cells map[string]cty.Value
}

// Cell returns the value of a column, or a null value when the design has no
// cell for it.
func (r *Row) Cell(col string) cty.Value {
	if v, ok := r.cells[col]; ok {
		return v
	}
	return cty.NullVal(cty.DynamicPseudoType)
}

// Has reports whether the row carries a non-null cell for the column.
func (r *Row) Has(col string) bool {
	v, ok := r.cells[col]
	return ok && !v.IsNull()
}

// Set stores a cell value. Null values are dropped so that Has and Cell
// treat "explicitly null" and "absent" identically.
func (r *Row) Set(col string, v cty.Value) {
	if v == cty.NilVal || v.IsNull() {
		delete(r.cells, col)
		return
	}
	r.cells[col] = v
}

// Table is an ordered collection of rows sharing a column universe. Row
// order and column order are both first-seen.
type Table struct {
	columns []string
	colSet  map[string]struct{}
	rows    []*Row
	byName  map[string]*Row
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{
		colSet: make(map[string]struct{}),
		byName: make(map[string]*Row),
	}
}

// Columns returns the column names in first-seen order, excluding the name
// key itself.
func (t *Table) Columns() []string { return t.columns }

// Rows returns the rows in first-seen order.
func (t *Table) Rows() []*Row { return t.rows }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Lookup finds a row by design name.
func (t *Table) Lookup(name string) (*Row, bool) {
	r, ok := t.byName[name]
	return r, ok
}

// Ensure returns the row for a design name, appending an empty one if the
// name is new.
func (t *Table) Ensure(name string) *Row {
	if r, ok := t.byName[name]; ok {
		return r
	}
	r := &Row{Name: name, cells: make(map[string]cty.Value)}
	t.rows = append(t.rows, r)
	t.byName[name] = r
	return r
}

func (t *Table) addColumn(col string) {
	if _, ok := t.colSet[col]; ok {
		return
	}
	t.colSet[col] = struct{}{}
	t.columns = append(t.columns, col)
}

// Filter returns a new table holding the rows that satisfy keep, preserving
// row order and the full column universe. Rows are shared, not copied; the
// result is a view.
func (t *Table) Filter(keep func(*Row) bool) *Table {
	out := NewTable()
	for _, col := range t.columns {
		out.addColumn(col)
	}
	for _, r := range t.rows {
		if keep(r) {
			out.rows = append(out.rows, r)
			out.byName[r.Name] = r
		}
	}
	return out
}
