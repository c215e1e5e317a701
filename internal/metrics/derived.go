package metrics

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/outpace-bio/hallcamp/internal/camperr"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// AddDerived appends a column computed per row from an HCL expression over
// the row's existing columns, e.g. "rosetta_energy / len". A row missing any
// referenced column gets a null derived cell, never an error — scorers run
// independently, so partial rows are expected.
func AddDerived(t *Table, name, exprSrc string) error {
	expr, diags := hclsyntax.ParseExpression([]byte(exprSrc), name, hcl.InitialPos)
	if diags.HasErrors() {
		return &camperr.ConfigurationError{
			Field:  "derived." + name,
			Reason: diags.Error(),
		}
	}

	for _, row := range t.rows {
		vars := make(map[string]cty.Value)
		complete := true
		for _, trav := range expr.Variables() {
			col := trav.RootName()
			v, ok := row.cells[col]
			if !ok || v.IsNull() {
				complete = false
				break
			}
			vars[col] = v
		}
		if !complete {
			continue
		}
		val, diags := expr.Value(&hcl.EvalContext{Variables: vars})
		if diags.HasErrors() {
			// A type mismatch on this row (e.g. text where the expression
			// wants a number) nulls the cell rather than failing the batch.
			continue
		}
		if n, err := convert.Convert(val, cty.Number); err == nil {
			val = n
		}
		row.Set(name, val)
	}
	t.addColumn(name)
	return nil
}
