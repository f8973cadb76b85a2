package interp

import (
	"fmt"
	"math"

	"gooze.dev/pkg/weave/internal/ir"
	"gooze.dev/pkg/weave/internal/live"
)

func (in *Interpreter) builtin(c *ir.Call, args []Value) (Value, error) {
	switch c.Method {
	case ir.BuiltinSelector:
		return Value{T: ir.Int, I: in.states.Class(c.Class).Selector()}, nil
	case ir.BuiltinLiveEnsure:
		return Value{T: ir.Ref, Ref: in.states.Class(c.Class).EnsureLive()}, nil
	case ir.BuiltinLiveMark:
		if len(args) != 2 {
			return Value{}, fmt.Errorf("%w: %s takes 2 arguments", ErrType, c.Method)
		}

		set, ok := args[0].Ref.(*live.LiveSet)
		if !ok || set == nil {
			return Value{}, fmt.Errorf("%w: live set", ErrNullPointer)
		}

		set.Set(args[1].I)

		return Value{T: ir.Void}, nil
	case ir.BuiltinAbs:
		if len(args) != 1 {
			return Value{}, fmt.Errorf("%w: %s takes 1 argument", ErrType, c.Method)
		}

		return Abs(coerce(args[0], c.Ret)), nil
	case ir.BuiltinZPush:
		if len(args) != 1 {
			return Value{}, fmt.Errorf("%w: %s takes 1 argument", ErrType, c.Method)
		}

		return ZPush(coerce(args[0], c.Ret)), nil
	default:
		return Value{}, fmt.Errorf("%w: %s", ErrUnknownBuiltin, c.Method)
	}
}

// Abs returns |v|. The most negative integer maps to itself.
func Abs(v Value) Value {
	if v.T.IsFloating() {
		return coerce(Double(math.Abs(v.F)), v.T)
	}

	if v.I < 0 {
		return Value{T: v.T, I: wrap(v.T, -v.I)}
	}

	return v
}

// ZPush moves v one step away from zero: by one for integers and to the next
// representable value for floating types. Zero stays zero, and integers already
// at the bounds of their type are left unchanged.
func ZPush(v Value) Value {
	switch {
	case v.T == ir.Float:
		f := float32(v.F)

		switch {
		case f > 0:
			f = math.Nextafter32(f, float32(math.Inf(1)))
		case f < 0:
			f = math.Nextafter32(f, float32(math.Inf(-1)))
		}

		return Value{T: ir.Float, F: float64(f)}
	case v.T.IsFloating():
		f := v.F

		switch {
		case f > 0:
			f = math.Nextafter(f, math.Inf(1))
		case f < 0:
			f = math.Nextafter(f, math.Inf(-1))
		}

		return Value{T: v.T, F: f}
	}

	lo, hi := intBounds(v.T)

	switch {
	case v.I > 0 && v.I < hi:
		return Value{T: v.T, I: v.I + 1}
	case v.I < 0 && v.I > lo:
		return Value{T: v.T, I: v.I - 1}
	default:
		return v
	}
}

func intBounds(t ir.Type) (int64, int64) {
	switch t {
	case ir.Byte:
		return math.MinInt8, math.MaxInt8
	case ir.Short:
		return math.MinInt16, math.MaxInt16
	case ir.Int:
		return math.MinInt32, math.MaxInt32
	default:
		return math.MinInt64, math.MaxInt64
	}
}
