package ir

import "math"

// Value is a typed IR expression. The set of implementations is closed: every
// variant is declared in this file. Values are immutable once built; rewrites
// construct new nodes instead of editing shared ones.
type Value interface {
	Type() Type
	isValue()
}

// BinaryOp is an arithmetic or logical binary operator.
type BinaryOp int

// Binary operators.
const (
	Add BinaryOp = iota
	Sub
	Mul
	Div
	Rem
	And
	Or
	Xor
)

var binaryOpNames = map[BinaryOp]string{
	Add: "add", Sub: "sub", Mul: "mul", Div: "div", Rem: "rem",
	And: "and", Or: "or", Xor: "xor",
}

var binaryOpSymbols = map[BinaryOp]string{
	Add: "+", Sub: "-", Mul: "*", Div: "/", Rem: "%",
	And: "&", Or: "|", Xor: "^",
}

func (op BinaryOp) String() string { return binaryOpNames[op] }

// Symbol returns the infix symbol used by the printer.
func (op BinaryOp) Symbol() string { return binaryOpSymbols[op] }

// IsArithmetic reports whether op is add, sub, mul, div or rem.
func (op BinaryOp) IsArithmetic() bool { return op <= Rem }

// IsLogical reports whether op is and, or or xor.
func (op BinaryOp) IsLogical() bool { return op == And || op == Or || op == Xor }

// UnaryOp is a unary operator.
type UnaryOp int

// Unary operators.
const (
	Neg UnaryOp = iota
	Not
	Len
)

var unaryOpNames = map[UnaryOp]string{Neg: "neg", Not: "not", Len: "len"}

func (op UnaryOp) String() string { return unaryOpNames[op] }

// CmpOp is a comparison operator.
type CmpOp int

// Comparison operators.
const (
	Eq CmpOp = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

var cmpOpNames = map[CmpOp]string{Eq: "eq", Ne: "ne", Lt: "lt", Le: "le", Gt: "gt", Ge: "ge"}

var cmpOpSymbols = map[CmpOp]string{Eq: "==", Ne: "!=", Lt: "<", Le: "<=", Gt: ">", Ge: ">="}

func (op CmpOp) String() string { return cmpOpNames[op] }

// Symbol returns the infix symbol used by the printer.
func (op CmpOp) Symbol() string { return cmpOpSymbols[op] }

// IsOrdering reports whether op is only defined on numeric operands.
func (op CmpOp) IsOrdering() bool { return op == Lt || op == Le || op == Gt || op == Ge }

// Local is a method-local variable.
type Local struct {
	Name string
	T    Type
}

// Const is a numeric or boolean compile-time constant. Integral and boolean
// constants use I (booleans are 0 or 1); floating constants use F.
type Const struct {
	T Type
	I int64
	F float64
}

// StringConst is a string literal.
type StringConst struct {
	S string
}

// Null is the null reference.
type Null struct{}

// Binary applies an arithmetic or logical operator.
type Binary struct {
	Op   BinaryOp
	X, Y Value
	T    Type
}

// Unary applies a unary operator.
type Unary struct {
	Op UnaryOp
	X  Value
	T  Type
}

// Compare is a boolean comparison of two operands.
type Compare struct {
	Op   CmpOp
	X, Y Value
}

// Cast converts X to type To.
type Cast struct {
	X  Value
	To Type
}

// FieldRef reads or writes a field. Object is nil for static fields.
type FieldRef struct {
	Class  string
	Name   string
	T      Type
	Object Value
}

// ArrayRef reads or writes an array element.
type ArrayRef struct {
	Array Value
	Index Value
	T     Type
}

// CallKind distinguishes how a call target is resolved.
type CallKind int

// Call kinds.
const (
	CallStatic CallKind = iota
	CallVirtual
	CallBuiltin
)

// Builtin call targets emitted by the weaver and understood by the runtime.
const (
	BuiltinSelector   = "selector"
	BuiltinLiveEnsure = "live.ensure"
	BuiltinLiveMark   = "live.mark"
	BuiltinAbs        = "abs"
	BuiltinZPush      = "zpush"
)

// Call invokes a method. Params holds the formal parameter types, in the same
// order as Args.
type Call struct {
	Kind     CallKind
	Class    string
	Method   string
	Receiver Value
	Params   []Type
	Args     []Value
	Ret      Type
}

// NewObject allocates an instance of Class.
type NewObject struct {
	Class string
}

// NewArray allocates an array of Elem with Size elements.
type NewArray struct {
	Elem Type
	Size Value
}

// InstanceOf tests whether X is an instance of Class.
type InstanceOf struct {
	X     Value
	Class string
}

func (v *Local) Type() Type       { return v.T }
func (v *Const) Type() Type       { return v.T }
func (v *StringConst) Type() Type { return Ref }
func (v *Null) Type() Type        { return Ref }
func (v *Binary) Type() Type      { return v.T }
func (v *Unary) Type() Type       { return v.T }
func (v *Compare) Type() Type     { return Bool }
func (v *Cast) Type() Type        { return v.To }
func (v *FieldRef) Type() Type    { return v.T }
func (v *ArrayRef) Type() Type    { return v.T }
func (v *Call) Type() Type        { return v.Ret }
func (v *NewObject) Type() Type   { return Ref }
func (v *NewArray) Type() Type    { return Ref }
func (v *InstanceOf) Type() Type  { return Bool }

func (*Local) isValue()       {}
func (*Const) isValue()       {}
func (*StringConst) isValue() {}
func (*Null) isValue()        {}
func (*Binary) isValue()      {}
func (*Unary) isValue()       {}
func (*Compare) isValue()     {}
func (*Cast) isValue()        {}
func (*FieldRef) isValue()    {}
func (*ArrayRef) isValue()    {}
func (*Call) isValue()        {}
func (*NewObject) isValue()   {}
func (*NewArray) isValue()    {}
func (*InstanceOf) isValue()  {}

// IntConst builds an integral constant of type t.
func IntConst(t Type, v int64) *Const { return &Const{T: t, I: v} }

// FloatConst builds a floating constant of type t.
func FloatConst(t Type, v float64) *Const {
	if t == Float {
		v = float64(float32(v))
	}

	return &Const{T: t, F: v}
}

// BoolConst builds a boolean constant.
func BoolConst(b bool) *Const {
	if b {
		return &Const{T: Bool, I: 1}
	}

	return &Const{T: Bool}
}

// NumConst builds a constant of type t holding n, choosing the integral or
// floating representation from t.
func NumConst(t Type, n float64) *Const {
	if t.IsFloating() {
		return FloatConst(t, n)
	}

	return IntConst(t, int64(n))
}

// IsZero reports whether the constant holds zero (or false).
func (c *Const) IsZero() bool {
	if c.T.IsFloating() {
		return c.F == 0
	}

	return c.I == 0
}

// Truthy reports whether the constant is non-zero when read as a boolean.
func (c *Const) Truthy() bool {
	return c.I > 0
}

// Negate returns -c.
func (c *Const) Negate() *Const {
	if c.T.IsFloating() {
		return FloatConst(c.T, -c.F)
	}

	return IntConst(c.T, -c.I)
}

// Offset returns c + delta.
func (c *Const) Offset(delta int64) *Const {
	if c.T.IsFloating() {
		return FloatConst(c.T, c.F+float64(delta))
	}

	return IntConst(c.T, c.I+delta)
}

// MinNormal returns the smallest positive normal value of a floating type.
func MinNormal(t Type) float64 {
	if t == Float {
		return 0x1p-126
	}

	return math.Float64frombits(0x0010000000000000)
}
