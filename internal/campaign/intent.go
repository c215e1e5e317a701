// Package campaign models the declarative experiment intent of one design
// campaign. An intent is a single HCL `campaign` block naming the reference
// structure, the constraint layout, the generator invocation and the batch
// shape, plus optional receptor context, seed sequence, derived metric
// columns and selection defaults.
//
// The intent is the only input the Job Spec Builder needs; child generations
// are expressed as new intent files derived from a parent design, so the
// whole campaign loop is closed over this one format.
package campaign

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/outpace-bio/hallcamp/internal/camperr"
	"github.com/outpace-bio/hallcamp/internal/contig"
)

// Receptor is the optional binding-target context handed to the generator.
type Receptor struct {
	Structure string `hcl:"structure"`
	Placement string `hcl:"placement,optional"` // "first" | "second", default "second"
}

// Seed warm-starts the search from an existing sequence artifact.
type Seed struct {
	Sequence  string   `hcl:"sequence"`
	Retention *float64 `hcl:"retention,optional"` // fraction kept, default 0.9
}

// Generator configures the external structure-generation collaborator.
type Generator struct {
	Executable string `hcl:"executable"`
	Iterations int    `hcl:"iterations,optional"` // default 600
	Mode       string `hcl:"mode,optional"`       // "gradient" | "mcmc", default "gradient"
}

// Output names the generation directory and the design-name prefix.
type Output struct {
	Prefix string `hcl:"prefix"`
	Dir    string `hcl:"dir"`
}

// Batch is the campaign's job shape: Total designs split into dispatch
// units of Size indices each.
type Batch struct {
	Total int `hcl:"total"`
	Size  int `hcl:"size"`
}

// Derived declares an extra metrics column computed per row from existing
// columns, written as an HCL expression ("rosetta_energy / len").
type Derived struct {
	Name string `hcl:"name,label"`
	Expr string `hcl:"expr"`
}

// Relax configures iterative threshold relaxation for hit selection.
type Relax struct {
	Order     []string           `hcl:"order"`
	Step      map[string]float64 `hcl:"step"`
	MaxRounds int                `hcl:"max_rounds,optional"` // default 3
	MinHits   int                `hcl:"min_hits,optional"`   // default 1
}

// Selection holds the campaign's default hit predicates.
type Selection struct {
	Where []string `hcl:"where"`
	Relax *Relax   `hcl:"relax,block"`
}

// Intent is one `campaign` block: the complete declarative description of a
// generation's search.
type Intent struct {
	Name      string `hcl:"name,label"`
	Reference string `hcl:"reference"`
	Contigs   string `hcl:"contigs"`

	ForceAA   string `hcl:"force_aa,optional"`
	ExcludeAA string `hcl:"exclude_aa,optional"`

	// Parent and Generation place this intent in the campaign forest:
	// generation 1 has no parent; a propagated intent names the design it
	// was bred from.
	Parent     string `hcl:"parent,optional"`
	Generation int    `hcl:"generation,optional"` // default 1

	Receptor  *Receptor  `hcl:"receptor,block"`
	Seed      *Seed      `hcl:"seed,block"`
	Generator *Generator `hcl:"generator,block"`
	Output    *Output    `hcl:"output,block"`
	Batch     *Batch     `hcl:"batch,block"`
	Derived   []*Derived `hcl:"derived,block"`
	Selection *Selection `hcl:"selection,block"`
}

// file is the top-level HCL document shape.
type file struct {
	Campaigns []*Intent `hcl:"campaign,block"`
}

const (
	defaultRetention  = 0.9
	defaultIterations = 600
	defaultMode       = "gradient"
	defaultPlacement  = "second"
	defaultMaxRounds  = 3
	defaultMinHits    = 1
)

// normalize fills defaulted fields in place after decoding.
func (in *Intent) normalize() {
	if in.Generation == 0 {
		in.Generation = 1
	}
	if in.Receptor != nil && in.Receptor.Placement == "" {
		in.Receptor.Placement = defaultPlacement
	}
	if in.Seed != nil && in.Seed.Retention == nil {
		r := defaultRetention
		in.Seed.Retention = &r
	}
	if in.Generator != nil {
		if in.Generator.Iterations == 0 {
			in.Generator.Iterations = defaultIterations
		}
		if in.Generator.Mode == "" {
			in.Generator.Mode = defaultMode
		}
	}
	if in.Selection != nil && in.Selection.Relax != nil {
		if in.Selection.Relax.MaxRounds == 0 {
			in.Selection.Relax.MaxRounds = defaultMaxRounds
		}
		if in.Selection.Relax.MinHits == 0 {
			in.Selection.Relax.MinHits = defaultMinHits
		}
	}
}

// Layout parses the intent's constraint layout.
func (in *Intent) Layout() (contig.Layout, error) {
	return contig.Parse(in.Contigs)
}

func confErr(field, format string, args ...any) error {
	return &camperr.ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks everything that can be checked without touching storage.
// Reference residue coverage needs the structure on disk and is verified by
// the Job Spec Builder instead.
func (in *Intent) Validate() error {
	if in.Name == "" {
		return confErr("campaign", "block label must not be empty")
	}
	if in.Reference == "" {
		return confErr("reference", "a reference structure path is required")
	}
	if _, err := in.Layout(); err != nil {
		return confErr("contigs", "%v", err)
	}
	if in.Generation < 1 {
		return confErr("generation", "must be >= 1, got %d", in.Generation)
	}
	if in.Receptor != nil {
		if in.Receptor.Structure == "" {
			return confErr("receptor.structure", "path must not be empty")
		}
		if p := in.Receptor.Placement; p != "first" && p != "second" {
			return confErr("receptor.placement", "must be \"first\" or \"second\", got %q", p)
		}
	}
	if in.Seed != nil {
		if in.Seed.Sequence == "" {
			return confErr("seed.sequence", "path must not be empty")
		}
		if r := *in.Seed.Retention; r < 0 || r > 1 {
			return confErr("seed.retention", "must be within [0,1], got %g", r)
		}
	}
	if in.Generator == nil {
		return confErr("generator", "block is required")
	}
	if in.Generator.Executable == "" {
		return confErr("generator.executable", "path must not be empty")
	}
	if in.Generator.Iterations < 1 {
		return confErr("generator.iterations", "must be >= 1, got %d", in.Generator.Iterations)
	}
	if m := in.Generator.Mode; m != "gradient" && m != "mcmc" {
		return confErr("generator.mode", "must be \"gradient\" or \"mcmc\", got %q", m)
	}
	if in.Output == nil {
		return confErr("output", "block is required")
	}
	if in.Output.Prefix == "" || in.Output.Dir == "" {
		return confErr("output", "prefix and dir must not be empty")
	}
	if strings.ContainsAny(in.Output.Prefix, "/ \t") {
		return confErr("output.prefix", "%q must be a bare name, not a path", in.Output.Prefix)
	}
	if in.Batch == nil {
		return confErr("batch", "block is required")
	}
	if in.Batch.Total <= 0 {
		return confErr("batch.total", "must be positive, got %d", in.Batch.Total)
	}
	if in.Batch.Size <= 0 {
		return confErr("batch.size", "must be positive, got %d", in.Batch.Size)
	}
	seen := make(map[string]struct{}, len(in.Derived))
	for _, d := range in.Derived {
		if d.Name == "" {
			return confErr("derived", "column label must not be empty")
		}
		if _, dup := seen[d.Name]; dup {
			return confErr("derived."+d.Name, "declared twice")
		}
		seen[d.Name] = struct{}{}
		if _, diags := hclsyntax.ParseExpression([]byte(d.Expr), d.Name, hcl.InitialPos); diags.HasErrors() {
			return confErr("derived."+d.Name, "bad expression %q: %s", d.Expr, diags.Error())
		}
	}
	if in.Selection != nil && in.Selection.Relax != nil {
		relax := in.Selection.Relax
		if len(relax.Order) == 0 {
			return confErr("selection.relax.order", "must name at least one column")
		}
		for _, col := range relax.Order {
			step, ok := relax.Step[col]
			if !ok {
				return confErr("selection.relax.step", "no step for relaxed column %q", col)
			}
			if step <= 0 {
				return confErr("selection.relax.step", "step for %q must be positive, got %g", col, step)
			}
		}
		if relax.MaxRounds < 1 {
			return confErr("selection.relax.max_rounds", "must be >= 1, got %d", relax.MaxRounds)
		}
		if relax.MinHits < 1 {
			return confErr("selection.relax.min_hits", "must be >= 1, got %d", relax.MinHits)
		}
	}
	return nil
}
