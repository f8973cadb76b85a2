package ir

// Label is an opaque jump target. A label is defined by a Mark statement and
// referenced by If, Goto and Switch.
type Label string

// Stmt is an IR statement. The set of implementations is closed.
type Stmt interface {
	isStmt()
}

// Assign stores Src into Dst. Dst is a Local, FieldRef or ArrayRef.
type Assign struct {
	Dst Value
	Src Value
}

// If jumps to Target when Cond holds and falls through otherwise.
type If struct {
	Cond   Value
	Target Label
}

// Goto jumps unconditionally.
type Goto struct {
	Target Label
}

// Invoke evaluates a call for its side effects.
type Invoke struct {
	Call *Call
}

// Case is one arm of a Switch.
type Case struct {
	Value  int64
	Target Label
}

// Switch jumps to the arm whose value equals Key, or to Default.
type Switch struct {
	Key     Value
	Cases   []Case
	Default Label
}

// Return leaves the method. Value is nil for void methods.
type Return struct {
	Value Value
}

// Mark defines a label at its position in the body.
type Mark struct {
	Label Label
}

func (*Assign) isStmt() {}
func (*If) isStmt()     {}
func (*Goto) isStmt()   {}
func (*Invoke) isStmt() {}
func (*Switch) isStmt() {}
func (*Return) isStmt() {}
func (*Mark) isStmt()   {}

// Terminal reports whether control never falls through s.
func Terminal(s Stmt) bool {
	switch s.(type) {
	case *Goto, *Return, *Switch:
		return true
	default:
		return false
	}
}
