// Package hits filters an aggregated metrics table down to the designs
// worth breeding. Predicates are threshold comparisons over named columns,
// ANDed together; an optional relaxation policy loosens them stepwise when a
// campaign would otherwise come up empty.
package hits

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/outpace-bio/hallcamp/internal/camperr"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Op is a threshold comparison operator.
type Op string

const (
	OpGT Op = ">"
	OpGE Op = ">="
	OpLT Op = "<"
	OpLE Op = "<="
	OpEQ Op = "=="
	OpNE Op = "!="
)

// Predicate is one threshold test: column Op Threshold.
type Predicate struct {
	Column    string
	Op        Op
	Threshold float64
}

// String renders the predicate in the same form ParsePredicate accepts.
func (p Predicate) String() string {
	return fmt.Sprintf("%s %s %s", p.Column, p.Op, strconv.FormatFloat(p.Threshold, 'g', -1, 64))
}

// Matches evaluates the predicate against one cell. A null or non-numeric
// cell fails the predicate; it never errors.
func (p Predicate) Matches(cell cty.Value) bool {
	if cell == cty.NilVal || cell.IsNull() {
		return false
	}
	num, err := convert.Convert(cell, cty.Number)
	if err != nil {
		return false
	}
	got := num.AsBigFloat()
	want := big.NewFloat(p.Threshold)
	switch p.Op {
	case OpGT:
		return got.Cmp(want) > 0
	case OpGE:
		return got.Cmp(want) >= 0
	case OpLT:
		return got.Cmp(want) < 0
	case OpLE:
		return got.Cmp(want) <= 0
	case OpEQ:
		return got.Cmp(want) == 0
	case OpNE:
		return got.Cmp(want) != 0
	}
	return false
}

var binOps = map[*hclsyntax.Operation]Op{
	hclsyntax.OpGreaterThan:        OpGT,
	hclsyntax.OpGreaterThanOrEqual: OpGE,
	hclsyntax.OpLessThan:           OpLT,
	hclsyntax.OpLessThanOrEqual:    OpLE,
	hclsyntax.OpEqual:              OpEQ,
	hclsyntax.OpNotEqual:           OpNE,
}

// ParsePredicate decodes a threshold expression such as "af2_lddt > 60" or
// "cm_rmsd<=1.5". The left side must be a bare column name and the right a
// numeric literal.
func ParsePredicate(src string) (Predicate, error) {
	bad := func(reason string) (Predicate, error) {
		return Predicate{}, &camperr.ConfigurationError{
			Field:  "selection.where",
			Reason: fmt.Sprintf("predicate %q: %s", src, reason),
		}
	}
	expr, diags := hclsyntax.ParseExpression([]byte(src), "predicate", hcl.InitialPos)
	if diags.HasErrors() {
		return bad(diags.Error())
	}
	bin, ok := expr.(*hclsyntax.BinaryOpExpr)
	if !ok {
		return bad("want <column> <op> <threshold>")
	}
	op, ok := binOps[bin.Op]
	if !ok {
		return bad("comparison must be one of > >= < <= == !=")
	}
	scope, ok := bin.LHS.(*hclsyntax.ScopeTraversalExpr)
	if !ok || len(scope.Traversal) != 1 {
		return bad("left side must be a bare column name")
	}
	rhs, rhsDiags := bin.RHS.Value(nil)
	if rhsDiags.HasErrors() {
		return bad("right side must be a numeric literal")
	}
	num, err := convert.Convert(rhs, cty.Number)
	if err != nil {
		return bad("right side must be a numeric literal")
	}
	threshold, _ := num.AsBigFloat().Float64()
	return Predicate{
		Column:    scope.Traversal.RootName(),
		Op:        op,
		Threshold: threshold,
	}, nil
}

// ParsePredicates decodes an ordered predicate list.
func ParsePredicates(srcs []string) ([]Predicate, error) {
	preds := make([]Predicate, 0, len(srcs))
	for _, src := range srcs {
		if strings.TrimSpace(src) == "" {
			continue
		}
		p, err := ParsePredicate(src)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	if len(preds) == 0 {
		return nil, &camperr.ConfigurationError{Field: "selection.where", Reason: "no predicates given"}
	}
	return preds, nil
}
