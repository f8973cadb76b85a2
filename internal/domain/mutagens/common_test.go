package mutagens

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gooze.dev/pkg/weave/internal/ir"
	m "gooze.dev/pkg/weave/internal/model"
)

type testTemps map[ir.Type]*ir.Local

func (tt testTemps) Temp(t ir.Type) *ir.Local {
	if !t.IsPrimitive() {
		return nil
	}

	if l, ok := tt[t]; ok {
		return l
	}

	l := &ir.Local{Name: "tmp_" + t.String(), T: t}
	tt[t] = l

	return l
}

func newSite(stmt ir.Stmt) Site {
	return Site{Class: "C", Method: "f", Return: ir.Int, Stmt: stmt, After: "after", Temps: testTemps{}}
}

func local(name string, t ir.Type) *ir.Local {
	return &ir.Local{Name: name, T: t}
}

// formatted renders each candidate as its printed statements.
func formatted(t *testing.T, cands []Candidate, op m.OperatorKind) [][]string {
	t.Helper()

	out := make([][]string, 0, len(cands))

	for _, c := range cands {
		require.Equal(t, op, c.Operator)

		lines := make([]string, 0, len(c.Stmts))
		for _, s := range c.Stmts {
			lines = append(lines, ir.FormatStmt(s))
		}

		out = append(out, lines)
	}

	return out
}
