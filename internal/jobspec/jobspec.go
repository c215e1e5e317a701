// Package jobspec expands a campaign intent into the ordered batch of
// independent job specifications handed to the dispatcher. Construction is
// pure: the builder never touches storage beyond reading the reference
// structure's residue index, which it needs to reject fixed segments that
// fall outside the reference numbering before anything is dispatched.
package jobspec

import (
	"github.com/outpace-bio/hallcamp/internal/campaign"
	"github.com/outpace-bio/hallcamp/internal/camperr"
	"github.com/outpace-bio/hallcamp/internal/contig"
	"github.com/outpace-bio/hallcamp/internal/pdbref"
)

// Spec is one fully-parameterized unit of generator work covering the index
// range [StartIndex, StartIndex+Count). Specs carry no shared state; each is
// self-describing and safe to execute concurrently with its siblings because
// index ranges within a generation are disjoint.
type Spec struct {
	Executable string
	Reference  string
	Layout     contig.Layout

	Receptor          string
	ReceptorPlacement string

	ForceAA   string
	ExcludeAA string

	SeedSequence  string
	SeedRetention float64

	Iterations int
	Mode       string

	Prefix     string
	OutDir     string
	StartIndex int
	Count      int
}

// Build expands a validated intent into batch specs. Spec k covers indices
// [start + k*size, min(start + (k+1)*size, start + total)); the final spec
// is short when size does not divide total. The reference index may be nil
// when the caller has no structure on disk (unit tests); fixed-segment
// coverage is then not checked.
func Build(in *campaign.Intent, ref *pdbref.Index, start int) ([]Spec, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if start < 0 {
		return nil, &camperr.ConfigurationError{Field: "start", Reason: "start index must not be negative"}
	}
	layout, err := in.Layout()
	if err != nil {
		// Unreachable past Validate; kept for direct callers.
		return nil, &camperr.ConfigurationError{Field: "contigs", Reason: err.Error()}
	}
	if ref != nil {
		if miss := ref.Covers(layout); miss != "" {
			return nil, &camperr.ConfigurationError{Field: "contigs", Reason: "fixed segment " + miss}
		}
	}

	base := Spec{
		Executable: in.Generator.Executable,
		Reference:  in.Reference,
		Layout:     layout,
		ForceAA:    in.ForceAA,
		ExcludeAA:  in.ExcludeAA,
		Iterations: in.Generator.Iterations,
		Mode:       in.Generator.Mode,
		Prefix:     in.Output.Prefix,
		OutDir:     in.Output.Dir,
	}
	if in.Receptor != nil {
		base.Receptor = in.Receptor.Structure
		base.ReceptorPlacement = in.Receptor.Placement
	}
	if in.Seed != nil {
		base.SeedSequence = in.Seed.Sequence
		base.SeedRetention = *in.Seed.Retention
	}

	total, size := in.Batch.Total, in.Batch.Size
	specs := make([]Spec, 0, (total+size-1)/size)
	for offset := 0; offset < total; offset += size {
		spec := base
		spec.StartIndex = start + offset
		spec.Count = min(size, total-offset)
		specs = append(specs, spec)
	}
	return specs, nil
}
