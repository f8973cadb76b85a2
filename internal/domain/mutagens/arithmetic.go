package mutagens

import (
	"gooze.dev/pkg/weave/internal/ir"
	m "gooze.dev/pkg/weave/internal/model"
)

type arithmeticVariant struct {
	op      ir.BinaryOp
	swapped bool
}

var arithmeticVariants = []arithmeticVariant{
	{ir.Add, false},
	{ir.Div, false},
	{ir.Div, true},
	{ir.Mul, false},
	{ir.Sub, false},
	{ir.Sub, true},
	{ir.Rem, false},
	{ir.Rem, true},
}

// GenerateArithmeticMutations replaces the operator of an arithmetic
// assignment to a local, then projects the expression onto each operand.
// Remainder variants are only produced when both operands are integral.
func GenerateArithmeticMutations(site Site) ([]Candidate, error) {
	assign, dst, ok := localAssign(site.Stmt)
	if !ok || !dst.T.IsNumeric() {
		return nil, nil
	}

	bin, ok := assign.Src.(*ir.Binary)
	if !ok || !bin.Op.IsArithmetic() {
		return nil, nil
	}

	integral := bin.X.Type().IsIntegral() && bin.Y.Type().IsIntegral()
	if bin.Op == ir.Rem && !integral {
		return nil, nil
	}

	out := make([]Candidate, 0, len(arithmeticVariants)+2)

	for _, v := range arithmeticVariants {
		if !v.swapped && v.op == bin.Op {
			continue
		}

		if v.op == ir.Rem && !integral {
			continue
		}

		x, y := bin.X, bin.Y
		if v.swapped {
			x, y = y, x
		}

		out = append(out, candidate(m.OperatorAOR, &ir.Assign{Dst: dst, Src: &ir.Binary{Op: v.op, X: x, Y: y, T: bin.T}}))
	}

	out = append(out,
		candidate(m.OperatorAOR, &ir.Assign{Dst: dst, Src: bin.X}),
		candidate(m.OperatorAOR, &ir.Assign{Dst: dst, Src: bin.Y}),
	)

	return out, nil
}
