package metrics

import (
	"github.com/outpace-bio/hallcamp/internal/camperr"
)

// Aggregate merges any number of scorer tables (and, by passing it first, an
// optional prior aggregated table) into one. Rows are unioned by design
// name, columns by name; a design absent from some input keeps null cells
// for that input's columns.
//
// Two inputs carrying the same non-null cell must agree on its type;
// otherwise the table's integrity cannot be trusted and the merge aborts
// with an AggregationError. Cells of equal type are taken from the
// later input, so re-running a scorer refreshes its columns in place.
func Aggregate(tables ...*Table) (*Table, error) {
	out := NewTable()
	for _, t := range tables {
		for _, col := range t.columns {
			out.addColumn(col)
		}
		for _, src := range t.rows {
			dst := out.Ensure(src.Name)
			for _, col := range t.columns {
				v, ok := src.cells[col]
				if !ok || v.IsNull() {
					continue
				}
				if have, ok := dst.cells[col]; ok && !have.Type().Equals(v.Type()) {
					return nil, &camperr.AggregationError{
						Design: src.Name,
						Column: col,
						Have:   have.Type().FriendlyName(),
						Want:   v.Type().FriendlyName(),
					}
				}
				dst.cells[col] = v
			}
		}
	}
	return out, nil
}
