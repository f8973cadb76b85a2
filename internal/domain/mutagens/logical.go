package mutagens

import (
	"gooze.dev/pkg/weave/internal/ir"
	m "gooze.dev/pkg/weave/internal/model"
)

var logicalOps = []ir.BinaryOp{ir.And, ir.Or, ir.Xor}

// GenerateLogicalMutations replaces the connective of a boolean assignment to a
// local, then substitutes each operand and both constants.
func GenerateLogicalMutations(site Site) ([]Candidate, error) {
	assign, dst, ok := localAssign(site.Stmt)
	if !ok || dst.T != ir.Bool {
		return nil, nil
	}

	bin, ok := assign.Src.(*ir.Binary)
	if !ok || !bin.Op.IsLogical() {
		return nil, nil
	}

	var out []Candidate

	for _, op := range alternatives(logicalOps, bin.Op) {
		out = append(out, candidate(m.OperatorLCR, &ir.Assign{Dst: dst, Src: &ir.Binary{Op: op, X: bin.X, Y: bin.Y, T: bin.T}}))
	}

	for _, src := range []ir.Value{bin.X, bin.Y, ir.BoolConst(true), ir.BoolConst(false)} {
		out = append(out, candidate(m.OperatorLCR, &ir.Assign{Dst: dst, Src: src}))
	}

	return out, nil
}
