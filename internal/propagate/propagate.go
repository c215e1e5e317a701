// Package propagate breeds the next generation from a selected parent
// design. It reads the parent's persisted run metadata and derives a child
// campaign intent that freezes everything the parent already got right — the
// overall length and the motif placement — while warm-starting the search
// from the parent's sequence.
package propagate

import (
	"fmt"

	"github.com/outpace-bio/hallcamp/internal/campaign"
	"github.com/outpace-bio/hallcamp/internal/camperr"
	"github.com/outpace-bio/hallcamp/internal/store"
)

// Options tunes the derivation.
type Options struct {
	// Retention is the seed-sequence spike strength handed to the child
	// generation. Zero means the default high retention.
	Retention float64
}

// DefaultRetention is the seed retention used when none is given: high, so
// the child search refines the parent rather than restarting.
const DefaultRetention = 0.9

// Derive builds the child generation's campaign intent from one parent
// design. The child layout is the parent's realized layout — every free
// segment pinned to the exact length it resolved to, no further length
// randomization — and its fixed segments must match the base intent's, since
// reference ranges are invariant across generations. Auxiliary knobs
// (receptor, fixed positions, excluded identities, generator, batch shape,
// derived columns, selection defaults) carry over from the base intent.
//
// Derivation is pure given the parent's metadata: the same parent always
// yields a byte-identical child intent.
func Derive(parent string, from store.Store, base *campaign.Intent, opts Options) (*campaign.Intent, error) {
	meta, err := store.ReadMeta(from, parent)
	if err != nil {
		return nil, err
	}
	realized, err := meta.Realized()
	if err != nil {
		return nil, err
	}
	baseLayout, err := base.Layout()
	if err != nil {
		return nil, &camperr.ConfigurationError{Field: "contigs", Reason: err.Error()}
	}
	if !realized.SameFixed(baseLayout) {
		return nil, &camperr.MalformedMetadataError{
			Design: parent,
			Reason: fmt.Sprintf("realized layout %q disagrees with intent fixed segments %q",
				realized.String(), baseLayout.Fixed().String()),
		}
	}

	retention := opts.Retention
	if retention == 0 {
		retention = DefaultRetention
	}
	if retention < 0 || retention > 1 {
		return nil, &camperr.ConfigurationError{
			Field:  "seed.retention",
			Reason: fmt.Sprintf("must be within [0,1], got %g", retention),
		}
	}

	gen := base.Generation + 1
	child := clone(base)
	child.Name = campaign.NextPrefix(base.Name, gen)
	child.Contigs = realized.String()
	child.Parent = parent
	child.Generation = gen
	child.Seed = &campaign.Seed{
		Sequence:  from.SequencePath(parent),
		Retention: &retention,
	}
	child.Output = &campaign.Output{
		Prefix: campaign.NextPrefix(base.Output.Prefix, gen),
		Dir:    campaign.NextDir(base.Output.Dir, gen),
	}
	if err := child.Validate(); err != nil {
		return nil, err
	}
	return child, nil
}

// clone deep-copies an intent so the derived child never aliases the base.
func clone(in *campaign.Intent) *campaign.Intent {
	out := *in
	if in.Receptor != nil {
		r := *in.Receptor
		out.Receptor = &r
	}
	if in.Seed != nil {
		s := *in.Seed
		if in.Seed.Retention != nil {
			v := *in.Seed.Retention
			s.Retention = &v
		}
		out.Seed = &s
	}
	if in.Generator != nil {
		g := *in.Generator
		out.Generator = &g
	}
	if in.Output != nil {
		o := *in.Output
		out.Output = &o
	}
	if in.Batch != nil {
		b := *in.Batch
		out.Batch = &b
	}
	out.Derived = make([]*campaign.Derived, len(in.Derived))
	for i, d := range in.Derived {
		v := *d
		out.Derived[i] = &v
	}
	if in.Selection != nil {
		sel := campaign.Selection{Where: append([]string(nil), in.Selection.Where...)}
		if in.Selection.Relax != nil {
			relax := campaign.Relax{
				Order:     append([]string(nil), in.Selection.Relax.Order...),
				Step:      make(map[string]float64, len(in.Selection.Relax.Step)),
				MaxRounds: in.Selection.Relax.MaxRounds,
				MinHits:   in.Selection.Relax.MinHits,
			}
			for col, step := range in.Selection.Relax.Step {
				relax.Step[col] = step
			}
			sel.Relax = &relax
		}
		out.Selection = &sel
	}
	return &out
}
