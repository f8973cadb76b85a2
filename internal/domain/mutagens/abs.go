package mutagens

import (
	"log/slog"

	"gooze.dev/pkg/weave/internal/ir"
	m "gooze.dev/pkg/weave/internal/model"
)

// GenerateAbsMutations mutates numeric assignments to locals. A non-zero
// constant source is negated. Any other source is re-evaluated into a temp and
// replaced with abs(v), -abs(v) and zpush(v).
func GenerateAbsMutations(site Site) ([]Candidate, error) {
	assign, dst, ok := localAssign(site.Stmt)
	if !ok || !dst.T.IsNumeric() {
		return nil, nil
	}

	if c, isConst := assign.Src.(*ir.Const); isConst {
		if c.IsZero() {
			return nil, nil
		}

		return []Candidate{candidate(m.OperatorABS, &ir.Assign{Dst: dst, Src: c.Negate()})}, nil
	}

	if !hasNumericHelpers(dst.T) {
		slog.Error("No numeric helper for type, skipping mutant",
			"type", dst.T, "class", site.Class, "method", site.Method, "statement", site.Index)

		return nil, nil
	}

	tmp := site.Temps.Temp(dst.T)

	return []Candidate{
		candidate(m.OperatorABS,
			&ir.Assign{Dst: tmp, Src: assign.Src},
			&ir.Assign{Dst: tmp, Src: numericBuiltin(ir.BuiltinAbs, tmp)},
			&ir.Assign{Dst: dst, Src: tmp},
		),
		candidate(m.OperatorABS,
			&ir.Assign{Dst: tmp, Src: assign.Src},
			&ir.Assign{Dst: tmp, Src: numericBuiltin(ir.BuiltinAbs, tmp)},
			&ir.Assign{Dst: tmp, Src: &ir.Unary{Op: ir.Neg, X: tmp, T: tmp.T}},
			&ir.Assign{Dst: dst, Src: tmp},
		),
		candidate(m.OperatorABS,
			&ir.Assign{Dst: tmp, Src: assign.Src},
			&ir.Assign{Dst: tmp, Src: numericBuiltin(ir.BuiltinZPush, tmp)},
			&ir.Assign{Dst: dst, Src: tmp},
		),
	}, nil
}

// hasNumericHelpers reports whether abs/zpush can be applied to t. Byte and
// short results are narrowed back to the destination type.
func hasNumericHelpers(t ir.Type) bool {
	switch t {
	case ir.Byte, ir.Short, ir.Int, ir.Long, ir.Float, ir.Double:
		return true
	default:
		return false
	}
}

func numericBuiltin(name string, arg *ir.Local) *ir.Call {
	return &ir.Call{
		Kind:   ir.CallBuiltin,
		Method: name,
		Params: []ir.Type{arg.T},
		Args:   []ir.Value{arg},
		Ret:    arg.T,
	}
}
