// Package mutagens generates candidate mutants for single IR statements.
package mutagens

import (
	"errors"

	"gooze.dev/pkg/weave/internal/ir"
	m "gooze.dev/pkg/weave/internal/model"
)

// ErrMalformedIR is returned when a statement contains an expression the
// generators do not know how to traverse.
var ErrMalformedIR = errors.New("malformed IR")

// Temps hands out the per-method temporary local for a type. It returns nil for
// types that have no temporary.
type Temps interface {
	Temp(t ir.Type) *ir.Local
}

// Site is a statement under mutation together with the context generators
// need to build replacements for it.
type Site struct {
	Class  string
	Method string
	// Return is the declared return type of the enclosing method.
	Return ir.Type
	// Index is the position of Stmt in the original body.
	Index int
	Stmt  ir.Stmt
	// After labels the point just past the original statement.
	After ir.Label
	Temps Temps
}

// Candidate is one mutant of a statement. Stmts replace the original statement
// when the mutant is selected. Prelude runs unguarded ahead of the mutant's
// guard.
type Candidate struct {
	Operator m.OperatorKind
	Prelude  []ir.Stmt
	Stmts    []ir.Stmt
}

// Generator produces the candidates of one operator for a site.
type Generator func(site Site) ([]Candidate, error)

func candidate(op m.OperatorKind, stmts ...ir.Stmt) Candidate {
	return Candidate{Operator: op, Stmts: stmts}
}

// localAssign returns the assignment and its local destination when s writes a
// local. Field and array destinations are not mutated.
func localAssign(s ir.Stmt) (*ir.Assign, *ir.Local, bool) {
	assign, ok := s.(*ir.Assign)
	if !ok {
		return nil, nil, false
	}

	dst, ok := assign.Dst.(*ir.Local)
	if !ok {
		return nil, nil, false
	}

	return assign, dst, true
}

func alternatives[T comparable](all []T, original T) []T {
	out := make([]T, 0, len(all))

	for _, op := range all {
		if op != original {
			out = append(out, op)
		}
	}

	return out
}

func one(t ir.Type) *ir.Const {
	return ir.NumConst(t, 1)
}
