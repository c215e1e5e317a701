package campaign

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// Marshal renders an intent back into HCL source. Emission order is fixed,
// so the same intent always yields the same bytes; the Generation
// Propagator's idempotence rests on that.
func Marshal(in *Intent) []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body().AppendNewBlock("campaign", []string{in.Name}).Body()

	body.SetAttributeValue("reference", cty.StringVal(in.Reference))
	body.SetAttributeValue("contigs", cty.StringVal(in.Contigs))
	if in.ForceAA != "" {
		body.SetAttributeValue("force_aa", cty.StringVal(in.ForceAA))
	}
	if in.ExcludeAA != "" {
		body.SetAttributeValue("exclude_aa", cty.StringVal(in.ExcludeAA))
	}
	if in.Parent != "" {
		body.SetAttributeValue("parent", cty.StringVal(in.Parent))
	}
	body.SetAttributeValue("generation", cty.NumberIntVal(int64(in.Generation)))

	if in.Receptor != nil {
		body.AppendNewline()
		b := body.AppendNewBlock("receptor", nil).Body()
		b.SetAttributeValue("structure", cty.StringVal(in.Receptor.Structure))
		b.SetAttributeValue("placement", cty.StringVal(in.Receptor.Placement))
	}
	if in.Seed != nil {
		body.AppendNewline()
		b := body.AppendNewBlock("seed", nil).Body()
		b.SetAttributeValue("sequence", cty.StringVal(in.Seed.Sequence))
		if in.Seed.Retention != nil {
			b.SetAttributeValue("retention", cty.NumberFloatVal(*in.Seed.Retention))
		}
	}
	if in.Generator != nil {
		body.AppendNewline()
		b := body.AppendNewBlock("generator", nil).Body()
		b.SetAttributeValue("executable", cty.StringVal(in.Generator.Executable))
		b.SetAttributeValue("iterations", cty.NumberIntVal(int64(in.Generator.Iterations)))
		b.SetAttributeValue("mode", cty.StringVal(in.Generator.Mode))
	}
	if in.Output != nil {
		body.AppendNewline()
		b := body.AppendNewBlock("output", nil).Body()
		b.SetAttributeValue("prefix", cty.StringVal(in.Output.Prefix))
		b.SetAttributeValue("dir", cty.StringVal(in.Output.Dir))
	}
	if in.Batch != nil {
		body.AppendNewline()
		b := body.AppendNewBlock("batch", nil).Body()
		b.SetAttributeValue("total", cty.NumberIntVal(int64(in.Batch.Total)))
		b.SetAttributeValue("size", cty.NumberIntVal(int64(in.Batch.Size)))
	}
	for _, d := range in.Derived {
		body.AppendNewline()
		b := body.AppendNewBlock("derived", []string{d.Name}).Body()
		b.SetAttributeValue("expr", cty.StringVal(d.Expr))
	}
	if in.Selection != nil {
		body.AppendNewline()
		b := body.AppendNewBlock("selection", nil).Body()
		where := make([]cty.Value, len(in.Selection.Where))
		for i, w := range in.Selection.Where {
			where[i] = cty.StringVal(w)
		}
		if len(where) > 0 {
			b.SetAttributeValue("where", cty.ListVal(where))
		}
		if relax := in.Selection.Relax; relax != nil {
			rb := b.AppendNewBlock("relax", nil).Body()
			if len(relax.Order) > 0 {
				order := make([]cty.Value, len(relax.Order))
				for i, col := range relax.Order {
					order[i] = cty.StringVal(col)
				}
				rb.SetAttributeValue("order", cty.ListVal(order))
			}
			if len(relax.Step) > 0 {
				step := make(map[string]cty.Value, len(relax.Step))
				for col, v := range relax.Step {
					step[col] = cty.NumberFloatVal(v)
				}
				rb.SetAttributeValue("step", cty.MapVal(step))
			}
			rb.SetAttributeValue("max_rounds", cty.NumberIntVal(int64(relax.MaxRounds)))
			rb.SetAttributeValue("min_hits", cty.NumberIntVal(int64(relax.MinHits)))
		}
	}

	return f.Bytes()
}

// WriteFile marshals the intent and writes it to path.
func WriteFile(path string, in *Intent) error {
	if err := os.WriteFile(path, Marshal(in), 0o644); err != nil {
		return fmt.Errorf("write campaign file: %w", err)
	}
	return nil
}
