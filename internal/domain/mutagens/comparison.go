package mutagens

import (
	"gooze.dev/pkg/weave/internal/ir"
	m "gooze.dev/pkg/weave/internal/model"
)

var comparisonOps = []ir.CmpOp{ir.Eq, ir.Ge, ir.Gt, ir.Le, ir.Lt, ir.Ne}

// GenerateComparisonMutations replaces the relational operator of a branch
// condition or of a boolean assignment to a local, then forces the outcome
// both ways. Ordering operators are only used between numeric operands.
func GenerateComparisonMutations(site Site) ([]Candidate, error) {
	switch s := site.Stmt.(type) {
	case *ir.If:
		cmp, ok := s.Cond.(*ir.Compare)
		if !ok {
			return nil, nil
		}

		var out []Candidate

		for _, c := range comparisonAlternatives(cmp) {
			out = append(out, candidate(m.OperatorROR, &ir.If{Cond: c, Target: s.Target}))
		}

		return append(out,
			candidate(m.OperatorROR, &ir.Goto{Target: s.Target}),
			candidate(m.OperatorROR, &ir.Goto{Target: site.After}),
		), nil
	case *ir.Assign:
		_, dst, ok := localAssign(s)
		if !ok || dst.T != ir.Bool {
			return nil, nil
		}

		cmp, ok := s.Src.(*ir.Compare)
		if !ok {
			return nil, nil
		}

		var out []Candidate

		for _, c := range comparisonAlternatives(cmp) {
			out = append(out, candidate(m.OperatorROR, &ir.Assign{Dst: dst, Src: c}))
		}

		return append(out,
			candidate(m.OperatorROR, &ir.Assign{Dst: dst, Src: ir.BoolConst(true)}),
			candidate(m.OperatorROR, &ir.Assign{Dst: dst, Src: ir.BoolConst(false)}),
		), nil
	default:
		return nil, nil
	}
}

func comparisonAlternatives(cmp *ir.Compare) []*ir.Compare {
	numeric := cmp.X.Type().IsNumeric() && cmp.Y.Type().IsNumeric()

	var out []*ir.Compare

	for _, op := range alternatives(comparisonOps, cmp.Op) {
		if op.IsOrdering() && !numeric {
			continue
		}

		out = append(out, &ir.Compare{Op: op, X: cmp.X, Y: cmp.Y})
	}

	return out
}
