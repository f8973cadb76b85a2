package interp

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"gooze.dev/pkg/weave/internal/ir"
)

// Value is a runtime value. Integral and boolean values use I, floating
// values use F and references use Ref (*Object, *Array, string, *live.LiveSet
// or nil).
type Value struct {
	T   ir.Type
	I   int64
	F   float64
	Ref any
}

// Object is a heap-allocated class instance.
type Object struct {
	Class  string
	Fields map[string]Value
}

// Array is a heap-allocated array.
type Array struct {
	Elem  ir.Type
	Items []Value
}

// Int builds an int value.
func Int(n int64) Value { return Value{T: ir.Int, I: wrap(ir.Int, n)} }

// Bool builds a boolean value.
func Bool(b bool) Value {
	if b {
		return Value{T: ir.Bool, I: 1}
	}

	return Value{T: ir.Bool}
}

// Double builds a double value.
func Double(f float64) Value { return Value{T: ir.Double, F: f} }

// Zero returns the default value of t.
func Zero(t ir.Type) Value { return Value{T: t} }

// Truthy reports whether a boolean or integral value is non-zero.
func (v Value) Truthy() bool {
	if v.T.IsFloating() {
		return v.F != 0
	}

	return v.I != 0
}

// String renders v deterministically, so outcomes of separate runs compare
// equal when they hold equal data.
func (v Value) String() string {
	switch {
	case v.T == ir.Void:
		return "void"
	case v.T == ir.Bool:
		return strconv.FormatBool(v.I != 0)
	case v.T == ir.Float:
		return strconv.FormatFloat(v.F, 'g', -1, 32)
	case v.T == ir.Double:
		return strconv.FormatFloat(v.F, 'g', -1, 64)
	case v.T.IsIntegral():
		return strconv.FormatInt(v.I, 10)
	}

	switch ref := v.Ref.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(ref)
	case *Object:
		names := make([]string, 0, len(ref.Fields))
		for name := range ref.Fields {
			names = append(names, name)
		}

		sort.Strings(names)

		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, name+"="+ref.Fields[name].String())
		}

		return ref.Class + "{" + strings.Join(parts, ", ") + "}"
	case *Array:
		parts := make([]string, 0, len(ref.Items))
		for _, item := range ref.Items {
			parts = append(parts, item.String())
		}

		return "[" + strings.Join(parts, " ") + "]"
	default:
		return fmt.Sprintf("<%T>", ref)
	}
}

// ParseArg converts a textual test argument into a value of type t.
func ParseArg(t ir.Type, text string) (Value, error) {
	text = strings.TrimSpace(text)

	switch {
	case t == ir.Bool:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return Value{}, fmt.Errorf("parse %s argument %q: %w", t, text, err)
		}

		return Bool(b), nil
	case t.IsIntegral():
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("parse %s argument %q: %w", t, text, err)
		}

		return Value{T: t, I: wrap(t, n)}, nil
	case t.IsFloating():
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Value{}, fmt.Errorf("parse %s argument %q: %w", t, text, err)
		}

		return coerce(Double(f), t), nil
	case t == ir.Ref:
		if text == "null" {
			return Value{T: ir.Ref}, nil
		}

		if s, err := strconv.Unquote(text); err == nil {
			return Value{T: ir.Ref, Ref: s}, nil
		}

		return Value{T: ir.Ref, Ref: text}, nil
	default:
		return Value{}, fmt.Errorf("%w: argument of type %s", ErrType, t)
	}
}

func wrap(t ir.Type, n int64) int64 {
	switch t {
	case ir.Byte:
		return int64(int8(n))
	case ir.Short:
		return int64(int16(n))
	case ir.Int:
		return int64(int32(n))
	case ir.Bool:
		if n != 0 {
			return 1
		}

		return 0
	default:
		return n
	}
}

// floatToInt follows the usual JVM narrowing: NaN becomes zero and
// out-of-range values saturate at the bounds of int (or long) before the
// result is narrowed to t.
func floatToInt(f float64, t ir.Type) int64 {
	if math.IsNaN(f) {
		return 0
	}

	if t == ir.Long {
		switch {
		case f >= math.MaxInt64:
			return math.MaxInt64
		case f <= math.MinInt64:
			return math.MinInt64
		default:
			return int64(f)
		}
	}

	switch {
	case f >= math.MaxInt32:
		return wrap(t, math.MaxInt32)
	case f <= math.MinInt32:
		return wrap(t, math.MinInt32)
	default:
		return wrap(t, int64(f))
	}
}

func coerce(v Value, t ir.Type) Value {
	switch {
	case t.IsIntegral():
		if v.T.IsFloating() {
			return Value{T: t, I: floatToInt(v.F, t)}
		}

		return Value{T: t, I: wrap(t, v.I)}
	case t.IsFloating():
		f := v.F
		if !v.T.IsFloating() {
			f = float64(v.I)
		}

		if t == ir.Float {
			f = float64(float32(f))
		}

		return Value{T: t, F: f}
	case t == ir.Bool:
		return Bool(v.Truthy())
	default:
		v.T = t

		return v
	}
}

func asFloat(v Value) float64 {
	if v.T.IsFloating() {
		return v.F
	}

	return float64(v.I)
}
