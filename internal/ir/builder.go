package ir

import (
	"errors"
	"fmt"
)

var (
	// ErrUndefinedLabel is returned when a jump targets a label no Mark defines.
	ErrUndefinedLabel = errors.New("undefined label")
	// ErrDuplicateLabel is returned when two Marks define the same label.
	ErrDuplicateLabel = errors.New("duplicate label")
)

// Builder appends statements to an ordered body and hands out fresh labels.
// Labels stay opaque until Resolve maps them to positions.
type Builder struct {
	stmts  []Stmt
	prefix string
	next   int
}

// NewBuilder creates a Builder whose fresh labels start with prefix.
func NewBuilder(prefix string) *Builder {
	return &Builder{prefix: prefix}
}

// NewLabel returns a label not handed out before by this builder.
func (b *Builder) NewLabel() Label {
	b.next++

	return Label(fmt.Sprintf("%s%d", b.prefix, b.next))
}

// Emit appends statements.
func (b *Builder) Emit(stmts ...Stmt) {
	b.stmts = append(b.stmts, stmts...)
}

// Mark appends a label definition.
func (b *Builder) Mark(label Label) {
	b.stmts = append(b.stmts, &Mark{Label: label})
}

// Len returns the number of statements emitted so far.
func (b *Builder) Len() int {
	return len(b.stmts)
}

// Stmts returns the emitted statements.
func (b *Builder) Stmts() []Stmt {
	return b.stmts
}

// Resolve maps every label defined in body to the index of its Mark and checks
// that all jump targets are defined exactly once.
func Resolve(body []Stmt) (map[Label]int, error) {
	labels := make(map[Label]int)

	for i, s := range body {
		mark, ok := s.(*Mark)
		if !ok {
			continue
		}

		if _, dup := labels[mark.Label]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateLabel, mark.Label)
		}

		labels[mark.Label] = i
	}

	for i, s := range body {
		for _, target := range targets(s) {
			if _, ok := labels[target]; !ok {
				return nil, fmt.Errorf("%w: %s (statement %d)", ErrUndefinedLabel, target, i)
			}
		}
	}

	return labels, nil
}

func targets(s Stmt) []Label {
	switch st := s.(type) {
	case *If:
		return []Label{st.Target}
	case *Goto:
		return []Label{st.Target}
	case *Switch:
		out := make([]Label, 0, len(st.Cases)+1)
		for _, c := range st.Cases {
			out = append(out, c.Target)
		}

		return append(out, st.Default)
	default:
		return nil
	}
}
