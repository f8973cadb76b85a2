package mutagens

import (
	"fmt"
	"slices"

	"gooze.dev/pkg/weave/internal/ir"
	m "gooze.dev/pkg/weave/internal/model"
)

// GenerateUnaryMutations walks every expression of a statement and mutates the
// values it reads: locals, numeric and boolean constants, and primitive field
// and array reads. Each mutant rewrites exactly one read.
func GenerateUnaryMutations(site Site) ([]Candidate, error) {
	u := &unaryInserter{site: site}

	var err error

	switch s := site.Stmt.(type) {
	case *ir.Assign:
		if s.Dst == nil {
			return nil, fmt.Errorf("%w: %s.%s statement %d: assignment without destination",
				ErrMalformedIR, site.Class, site.Method, site.Index)
		}

		err = u.visit(s.Src, s.Dst.Type(), func(v ir.Value) ir.Stmt {
			return &ir.Assign{Dst: s.Dst, Src: v}
		})
	case *ir.If:
		err = u.visit(s.Cond, ir.Bool, func(v ir.Value) ir.Stmt {
			return &ir.If{Cond: v, Target: s.Target}
		})
	case *ir.Invoke:
		err = u.call(s.Call, func(c *ir.Call) ir.Stmt {
			return &ir.Invoke{Call: c}
		})
	case *ir.Switch:
		err = u.visit(s.Key, s.Key.Type(), func(v ir.Value) ir.Stmt {
			return &ir.Switch{Key: v, Cases: s.Cases, Default: s.Default}
		})
	case *ir.Return:
		if s.Value != nil {
			err = u.visit(s.Value, site.Return, func(v ir.Value) ir.Stmt {
				return &ir.Return{Value: v}
			})
		}
	}

	if err != nil {
		return nil, err
	}

	return u.out, nil
}

// rebuildFunc rebuilds the whole statement with one position replaced.
type rebuildFunc func(ir.Value) ir.Stmt

type unaryInserter struct {
	site Site
	out  []Candidate
}

//nolint:gocyclo // One arm per expression kind.
func (u *unaryInserter) visit(v ir.Value, expected ir.Type, rebuild rebuildFunc) error {
	switch e := v.(type) {
	case *ir.Local:
		if tmp := u.site.Temps.Temp(e.T); tmp != nil {
			u.leaf(e, tmp, rebuild, nil)
		}

		return nil
	case *ir.Const:
		u.constant(e, expected, rebuild)

		return nil
	case *ir.StringConst, *ir.Null, *ir.NewObject, *ir.InstanceOf:
		return nil
	case *ir.Unary:
		return u.visit(e.X, expected, func(x ir.Value) ir.Stmt {
			return rebuild(&ir.Unary{Op: e.Op, X: x, T: e.T})
		})
	case *ir.Cast:
		return u.visit(e.X, e.X.Type(), func(x ir.Value) ir.Stmt {
			return rebuild(&ir.Cast{X: x, To: e.To})
		})
	case *ir.Compare:
		if err := u.visit(e.X, e.X.Type(), func(x ir.Value) ir.Stmt {
			return rebuild(&ir.Compare{Op: e.Op, X: x, Y: e.Y})
		}); err != nil {
			return err
		}

		return u.visit(e.Y, e.Y.Type(), func(y ir.Value) ir.Stmt {
			return rebuild(&ir.Compare{Op: e.Op, X: e.X, Y: y})
		})
	case *ir.Binary:
		if err := u.visit(e.X, expected, func(x ir.Value) ir.Stmt {
			return rebuild(&ir.Binary{Op: e.Op, X: x, Y: e.Y, T: e.T})
		}); err != nil {
			return err
		}

		return u.visit(e.Y, expected, func(y ir.Value) ir.Stmt {
			return rebuild(&ir.Binary{Op: e.Op, X: e.X, Y: y, T: e.T})
		})
	case *ir.Call:
		return u.call(e, func(c *ir.Call) ir.Stmt { return rebuild(c) })
	case *ir.NewArray:
		return u.visit(e.Size, e.Size.Type(), func(size ir.Value) ir.Stmt {
			return rebuild(&ir.NewArray{Elem: e.Elem, Size: size})
		})
	case *ir.ArrayRef:
		if err := u.visit(e.Index, e.Index.Type(), func(idx ir.Value) ir.Stmt {
			return rebuild(&ir.ArrayRef{Array: e.Array, Index: idx, T: e.T})
		}); err != nil {
			return err
		}

		u.read(e, rebuild)

		return nil
	case *ir.FieldRef:
		u.read(e, rebuild)

		return nil
	default:
		return fmt.Errorf("%w: %s.%s statement %d: cannot mutate expression %T",
			ErrMalformedIR, u.site.Class, u.site.Method, u.site.Index, v)
	}
}

func (u *unaryInserter) call(c *ir.Call, rebuild func(*ir.Call) ir.Stmt) error {
	for i, arg := range c.Args {
		expected := arg.Type()
		if i < len(c.Params) {
			expected = c.Params[i]
		}

		err := u.visit(arg, expected, func(v ir.Value) ir.Stmt {
			cp := *c
			cp.Args = slices.Clone(c.Args)
			cp.Args[i] = v

			return rebuild(&cp)
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// read materializes a field or array read into the temp of its type and
// mutates the temp. Reads of types without a temp are left alone.
func (u *unaryInserter) read(v ir.Value, rebuild rebuildFunc) {
	tmp := u.site.Temps.Temp(v.Type())
	if tmp == nil {
		return
	}

	u.leaf(tmp, tmp, rebuild, []ir.Stmt{&ir.Assign{Dst: tmp, Src: v}})
}

func (u *unaryInserter) leaf(src ir.Value, tmp *ir.Local, rebuild rebuildFunc, prelude []ir.Stmt) {
	t := tmp.T

	var values []ir.Value

	if t == ir.Bool {
		values = []ir.Value{
			ir.BoolConst(true),
			ir.BoolConst(false),
			&ir.Unary{Op: ir.Not, X: src, T: ir.Bool},
		}
	} else {
		if t != ir.Byte {
			values = append(values, &ir.Unary{Op: ir.Neg, X: src, T: t})
		}

		values = append(values,
			&ir.Binary{Op: ir.Add, X: src, Y: one(t), T: t},
			&ir.Binary{Op: ir.Sub, X: src, Y: one(t), T: t},
			ir.NumConst(t, 0),
		)
	}

	for i, val := range values {
		c := candidate(m.OperatorUOI, &ir.Assign{Dst: tmp, Src: val}, rebuild(tmp))
		if i == 0 {
			c.Prelude = prelude
		}

		u.out = append(u.out, c)
	}
}

func (u *unaryInserter) constant(c *ir.Const, expected ir.Type, rebuild rebuildFunc) {
	var consts []*ir.Const

	switch {
	case c.T == ir.Bool || expected == ir.Bool:
		mk := func(n int64) *ir.Const {
			if c.T == ir.Bool {
				return ir.BoolConst(n != 0)
			}

			return ir.NumConst(c.T, float64(n))
		}

		opposite := int64(1)
		if c.Truthy() {
			opposite = 0
		}

		consts = []*ir.Const{mk(opposite), mk(0), mk(1)}
	case c.T.IsNumeric():
		consts = []*ir.Const{c.Negate(), c.Offset(1), c.Offset(-1)}

		switch {
		case !c.IsZero():
			consts = append(consts, ir.NumConst(c.T, 0))
		case c.T.IsFloating():
			consts = append(consts, ir.FloatConst(c.T, ir.MinNormal(c.T)))
		}
	}

	for _, k := range consts {
		u.out = append(u.out, candidate(m.OperatorUOI, rebuild(k)))
	}
}
