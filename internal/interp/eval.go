package interp

import (
	"context"
	"fmt"
	"math"

	"gooze.dev/pkg/weave/internal/ir"
)

//nolint:gocyclo // One arm per expression kind.
func (in *Interpreter) eval(ctx context.Context, f *frame, v ir.Value) (Value, error) {
	switch e := v.(type) {
	case *ir.Local:
		if val, ok := f.locals[e.Name]; ok {
			return val, nil
		}

		return Zero(e.T), nil
	case *ir.Const:
		return Value{T: e.T, I: e.I, F: e.F}, nil
	case *ir.StringConst:
		return Value{T: ir.Ref, Ref: e.S}, nil
	case *ir.Null:
		return Value{T: ir.Ref}, nil
	case *ir.Binary:
		x, err := in.eval(ctx, f, e.X)
		if err != nil {
			return Value{}, err
		}

		y, err := in.eval(ctx, f, e.Y)
		if err != nil {
			return Value{}, err
		}

		return arith(e.Op, e.T, x, y)
	case *ir.Unary:
		x, err := in.eval(ctx, f, e.X)
		if err != nil {
			return Value{}, err
		}

		return unary(e.Op, e.T, x)
	case *ir.Compare:
		x, err := in.eval(ctx, f, e.X)
		if err != nil {
			return Value{}, err
		}

		y, err := in.eval(ctx, f, e.Y)
		if err != nil {
			return Value{}, err
		}

		ok, err := compare(e.Op, x, y)
		if err != nil {
			return Value{}, err
		}

		return Bool(ok), nil
	case *ir.Cast:
		x, err := in.eval(ctx, f, e.X)
		if err != nil {
			return Value{}, err
		}

		return coerce(x, e.To), nil
	case *ir.FieldRef:
		if e.Object == nil {
			if val, ok := in.statics[e.Class+"."+e.Name]; ok {
				return val, nil
			}

			return Zero(e.T), nil
		}

		obj, err := in.object(ctx, f, e.Object)
		if err != nil {
			return Value{}, err
		}

		if val, ok := obj.Fields[e.Name]; ok {
			return val, nil
		}

		return Zero(e.T), nil
	case *ir.ArrayRef:
		arr, idx, err := in.element(ctx, f, e)
		if err != nil {
			return Value{}, err
		}

		return arr.Items[idx], nil
	case *ir.Call:
		return in.call(ctx, f, e)
	case *ir.NewObject:
		obj := &Object{Class: e.Class, Fields: make(map[string]Value)}

		if c := in.program.Class(e.Class); c != nil {
			for _, fd := range c.Fields {
				if !fd.Static {
					obj.Fields[fd.Name] = Zero(fd.T)
				}
			}
		}

		return Value{T: ir.Ref, Ref: obj}, nil
	case *ir.NewArray:
		size, err := in.eval(ctx, f, e.Size)
		if err != nil {
			return Value{}, err
		}

		if size.I < 0 {
			return Value{}, fmt.Errorf("%w: %d", ErrNegativeSize, size.I)
		}

		arr := &Array{Elem: e.Elem, Items: make([]Value, size.I)}
		for i := range arr.Items {
			arr.Items[i] = Zero(e.Elem)
		}

		return Value{T: ir.Ref, Ref: arr}, nil
	case *ir.InstanceOf:
		x, err := in.eval(ctx, f, e.X)
		if err != nil {
			return Value{}, err
		}

		obj, ok := x.Ref.(*Object)

		return Bool(ok && obj.Class == e.Class), nil
	default:
		return Value{}, fmt.Errorf("%w: expression %T", ErrType, v)
	}
}

func (in *Interpreter) object(ctx context.Context, f *frame, v ir.Value) (*Object, error) {
	val, err := in.eval(ctx, f, v)
	if err != nil {
		return nil, err
	}

	obj, ok := val.Ref.(*Object)
	if !ok || obj == nil {
		return nil, fmt.Errorf("%w: %s", ErrNullPointer, ir.FormatValue(v))
	}

	return obj, nil
}

func (in *Interpreter) element(ctx context.Context, f *frame, ref *ir.ArrayRef) (*Array, int64, error) {
	val, err := in.eval(ctx, f, ref.Array)
	if err != nil {
		return nil, 0, err
	}

	arr, ok := val.Ref.(*Array)
	if !ok || arr == nil {
		return nil, 0, fmt.Errorf("%w: %s", ErrNullPointer, ir.FormatValue(ref.Array))
	}

	idx, err := in.eval(ctx, f, ref.Index)
	if err != nil {
		return nil, 0, err
	}

	if idx.I < 0 || idx.I >= int64(len(arr.Items)) {
		return nil, 0, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, idx.I, len(arr.Items))
	}

	return arr, idx.I, nil
}

func (in *Interpreter) call(ctx context.Context, f *frame, c *ir.Call) (Value, error) {
	args := make([]Value, 0, len(c.Args))

	for i, a := range c.Args {
		v, err := in.eval(ctx, f, a)
		if err != nil {
			return Value{}, err
		}

		if i < len(c.Params) {
			v = coerce(v, c.Params[i])
		}

		args = append(args, v)
	}

	switch c.Kind {
	case ir.CallBuiltin:
		return in.builtin(c, args)
	case ir.CallVirtual:
		this, err := in.object(ctx, f, c.Receiver)
		if err != nil {
			return Value{}, err
		}

		m, err := in.lookup(this.Class, c.Method)
		if err != nil {
			return Value{}, err
		}

		return in.invoke(ctx, m, this, args)
	default:
		m, err := in.lookup(c.Class, c.Method)
		if err != nil {
			return Value{}, err
		}

		return in.invoke(ctx, m, nil, args)
	}
}

//nolint:gocyclo // Operator table.
func arith(op ir.BinaryOp, t ir.Type, x, y Value) (Value, error) {
	if t.IsFloating() {
		a, b := asFloat(x), asFloat(y)

		var r float64

		switch op {
		case ir.Add:
			r = a + b
		case ir.Sub:
			r = a - b
		case ir.Mul:
			r = a * b
		case ir.Div:
			r = a / b
		case ir.Rem:
			r = math.Mod(a, b)
		default:
			return Value{}, fmt.Errorf("%w: %s on %s", ErrType, op, t)
		}

		return coerce(Double(r), t), nil
	}

	a, b := coerce(x, t).I, coerce(y, t).I

	var r int64

	switch op {
	case ir.Add:
		r = a + b
	case ir.Sub:
		r = a - b
	case ir.Mul:
		r = a * b
	case ir.Div:
		if b == 0 {
			return Value{}, ErrDivideByZero
		}

		r = a / b
	case ir.Rem:
		if b == 0 {
			return Value{}, ErrDivideByZero
		}

		r = a % b
	case ir.And:
		r = a & b
	case ir.Or:
		r = a | b
	case ir.Xor:
		r = a ^ b
	}

	return Value{T: t, I: wrap(t, r)}, nil
}

func unary(op ir.UnaryOp, t ir.Type, x Value) (Value, error) {
	switch op {
	case ir.Neg:
		if t.IsFloating() {
			return coerce(Double(-asFloat(x)), t), nil
		}

		return Value{T: t, I: wrap(t, -coerce(x, t).I)}, nil
	case ir.Not:
		if t == ir.Bool {
			return Bool(!x.Truthy()), nil
		}

		return Value{T: t, I: wrap(t, ^x.I)}, nil
	case ir.Len:
		arr, ok := x.Ref.(*Array)
		if !ok || arr == nil {
			return Value{}, ErrNullPointer
		}

		return Int(int64(len(arr.Items))), nil
	default:
		return Value{}, fmt.Errorf("%w: unary %s", ErrType, op)
	}
}

func compare(op ir.CmpOp, x, y Value) (bool, error) {
	switch {
	case x.T.IsFloating() || y.T.IsFloating():
		a, b := asFloat(x), asFloat(y)

		return cmpOrdered(op, a, b), nil
	case x.T == ir.Ref || y.T == ir.Ref:
		if op.IsOrdering() {
			return false, fmt.Errorf("%w: %s on references", ErrType, op)
		}

		same := x.Ref == y.Ref
		if op == ir.Eq {
			return same, nil
		}

		return !same, nil
	default:
		return cmpOrdered(op, x.I, y.I), nil
	}
}

func cmpOrdered[T int64 | float64](op ir.CmpOp, a, b T) bool {
	switch op {
	case ir.Eq:
		return a == b
	case ir.Ne:
		return a != b
	case ir.Lt:
		return a < b
	case ir.Le:
		return a <= b
	case ir.Gt:
		return a > b
	default:
		return a >= b
	}
}
