package hits

import (
	"github.com/outpace-bio/hallcamp/internal/camperr"
	"github.com/outpace-bio/hallcamp/internal/metrics"
)

// Relax is the iterative threshold-relaxation policy: each round loosens
// every ordered column's predicates by one more step in the permissive
// direction, until MinHits rows survive or the round budget runs out. Step
// sizes and order are campaign configuration, never hard-coded.
type Relax struct {
	Order     []string
	Step      map[string]float64
	MaxRounds int
	MinHits   int
}

// Result is the outcome of a selection: the surviving rows in input order
// and, for auditability, the final predicates actually applied plus how many
// relaxation rounds it took to get there.
type Result struct {
	Hits       *metrics.Table
	Predicates []Predicate
	Rounds     int
}

// Names returns the surviving design names in table order.
func (r *Result) Names() []string {
	names := make([]string, 0, r.Hits.Len())
	for _, row := range r.Hits.Rows() {
		names = append(names, row.Name)
	}
	return names
}

func apply(t *metrics.Table, preds []Predicate) *metrics.Table {
	return t.Filter(func(row *metrics.Row) bool {
		for _, p := range preds {
			if !p.Matches(row.Cell(p.Column)) {
				return false
			}
		}
		return true
	})
}

// relaxed returns the predicates loosened by round steps: thresholds of
// ordered columns move by round*step in the permissive direction. Equality
// predicates never relax.
func relaxed(preds []Predicate, policy *Relax, round int) []Predicate {
	out := make([]Predicate, len(preds))
	copy(out, preds)
	for _, col := range policy.Order {
		for i := range out {
			if out[i].Column != col {
				continue
			}
			delta := float64(round) * policy.Step[col]
			switch out[i].Op {
			case OpGT, OpGE:
				out[i].Threshold -= delta
			case OpLT, OpLE:
				out[i].Threshold += delta
			}
		}
	}
	return out
}

func predicateStrings(preds []Predicate) []string {
	out := make([]string, len(preds))
	for i, p := range preds {
		out[i] = p.String()
	}
	return out
}

// Select filters the table by the conjunction of predicates, preserving row
// order. With a nil policy, zero survivors is an EmptySelectionError. With a
// policy, thresholds are relaxed round by round until MinHits rows survive;
// exhausting MaxRounds with too few rows is likewise an error — a shortfall
// is always explicit, never a silent empty set.
func Select(t *metrics.Table, preds []Predicate, policy *Relax) (*Result, error) {
	if policy == nil {
		hits := apply(t, preds)
		if hits.Len() == 0 {
			return nil, &camperr.EmptySelectionError{Predicates: predicateStrings(preds)}
		}
		return &Result{Hits: hits, Predicates: preds}, nil
	}

	minHits := policy.MinHits
	if minHits < 1 {
		minHits = 1
	}
	var final *Result
	for round := 0; round <= policy.MaxRounds; round++ {
		active := relaxed(preds, policy, round)
		hits := apply(t, active)
		final = &Result{Hits: hits, Predicates: active, Rounds: round}
		if hits.Len() >= minHits {
			return final, nil
		}
	}
	if final.Hits.Len() > 0 {
		// Short of MinHits but not empty: return what survived rather than
		// discarding real hits.
		return final, nil
	}
	return nil, &camperr.EmptySelectionError{
		Predicates: predicateStrings(final.Predicates),
		Rounds:     policy.MaxRounds,
	}
}
