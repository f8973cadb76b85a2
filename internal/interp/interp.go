// Package interp executes IR programs. It is the execution engine behind the
// mutation harness: woven bodies run unchanged, with the selector and live
// sets served from an explicit live.States handle.
package interp

import (
	"context"
	"errors"
	"fmt"

	"gooze.dev/pkg/weave/internal/ir"
	"gooze.dev/pkg/weave/internal/live"
)

// Runtime errors. A test outcome that ends in one of these is still a valid
// outcome for comparison purposes.
var (
	ErrDivideByZero    = errors.New("integer divide by zero")
	ErrNullPointer     = errors.New("null pointer")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrNegativeSize    = errors.New("negative array size")
	ErrStepLimit       = errors.New("step limit exceeded")
	ErrStackOverflow   = errors.New("stack overflow")
	ErrUnknownMethod   = errors.New("unknown method")
	ErrUnknownBuiltin  = errors.New("unknown builtin")
	ErrMissingReturn   = errors.New("missing return")
	ErrType            = errors.New("type error")
)

const (
	defaultStepLimit = 1_000_000
	defaultMaxDepth  = 256
	ctxCheckEvery    = 4096
)

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithStepLimit bounds the number of statements a single Call may execute.
func WithStepLimit(n int) Option {
	return func(in *Interpreter) { in.stepLimit = n }
}

// WithMaxDepth bounds call nesting.
func WithMaxDepth(n int) Option {
	return func(in *Interpreter) { in.maxDepth = n }
}

// Interpreter runs methods of one program. Static fields live in the
// interpreter, so separate interpreters do not share state. An Interpreter is
// not safe for concurrent use.
type Interpreter struct {
	program   *ir.Program
	states    *live.States
	statics   map[string]Value
	labels    map[*ir.Method]map[ir.Label]int
	stepLimit int
	maxDepth  int
	steps     int
	depth     int
}

// New creates an Interpreter for p that serves selector and live-set builtins
// from states.
func New(p *ir.Program, states *live.States, opts ...Option) *Interpreter {
	in := &Interpreter{
		program:   p,
		states:    states,
		statics:   make(map[string]Value),
		labels:    make(map[*ir.Method]map[ir.Label]int),
		stepLimit: defaultStepLimit,
		maxDepth:  defaultMaxDepth,
	}

	for _, opt := range opts {
		opt(in)
	}

	for _, c := range p.Classes {
		for _, f := range c.Fields {
			if f.Static {
				in.statics[c.Name+"."+f.Name] = Zero(f.T)
			}
		}
	}

	return in
}

// States returns the runtime handle builtins read from.
func (in *Interpreter) States() *live.States {
	return in.states
}

// SetStatic overrides a static field value.
func (in *Interpreter) SetStatic(class, field string, v Value) {
	in.statics[class+"."+field] = v
}

// Static returns a static field value.
func (in *Interpreter) Static(class, field string) Value {
	return in.statics[class+"."+field]
}

// Run executes a test case, parsing its arguments against the target's
// parameter types.
func (in *Interpreter) Run(ctx context.Context, tc ir.TestCase) (Value, error) {
	m, err := in.lookup(tc.Class, tc.Method)
	if err != nil {
		return Value{}, err
	}

	if len(tc.Args) != len(m.Params) {
		return Value{}, fmt.Errorf("%w: %s takes %d arguments, got %d", ErrType, m.QualifiedName(), len(m.Params), len(tc.Args))
	}

	args := make([]Value, 0, len(tc.Args))

	for i, text := range tc.Args {
		v, err := ParseArg(m.Params[i].T, text)
		if err != nil {
			return Value{}, err
		}

		args = append(args, v)
	}

	return in.Call(ctx, tc.Class, tc.Method, args...)
}

// Call invokes class.method with args. The step budget is reset per Call.
func (in *Interpreter) Call(ctx context.Context, class, method string, args ...Value) (Value, error) {
	m, err := in.lookup(class, method)
	if err != nil {
		return Value{}, err
	}

	in.steps = 0
	in.depth = 0

	return in.invoke(ctx, m, nil, args)
}

func (in *Interpreter) lookup(class, method string) (*ir.Method, error) {
	c := in.program.Class(class)
	if c == nil {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownMethod, class, method)
	}

	m := c.Method(method)
	if m == nil {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownMethod, class, method)
	}

	return m, nil
}

type frame struct {
	method *ir.Method
	locals map[string]Value
}

func (in *Interpreter) invoke(ctx context.Context, m *ir.Method, this *Object, args []Value) (Value, error) {
	if len(args) != len(m.Params) {
		return Value{}, fmt.Errorf("%w: %s takes %d arguments, got %d", ErrType, m.QualifiedName(), len(m.Params), len(args))
	}

	in.depth++
	defer func() { in.depth-- }()

	if in.depth > in.maxDepth {
		return Value{}, fmt.Errorf("%w: %s", ErrStackOverflow, m.QualifiedName())
	}

	labels, err := in.resolve(m)
	if err != nil {
		return Value{}, err
	}

	f := &frame{method: m, locals: make(map[string]Value, len(m.Params)+len(m.Locals))}

	for _, l := range m.Locals {
		f.locals[l.Name] = Zero(l.T)
	}

	for i, p := range m.Params {
		f.locals[p.Name] = coerce(args[i], p.T)
	}

	if this != nil {
		f.locals["this"] = Value{T: ir.Ref, Ref: this}
	}

	return in.exec(ctx, f, labels)
}

func (in *Interpreter) resolve(m *ir.Method) (map[ir.Label]int, error) {
	if labels, ok := in.labels[m]; ok {
		return labels, nil
	}

	labels, err := ir.Resolve(m.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m.QualifiedName(), err)
	}

	in.labels[m] = labels

	return labels, nil
}

//nolint:gocyclo // One arm per statement kind.
func (in *Interpreter) exec(ctx context.Context, f *frame, labels map[ir.Label]int) (Value, error) {
	body := f.method.Body
	pc := 0

	for pc < len(body) {
		in.steps++
		if in.steps > in.stepLimit {
			return Value{}, fmt.Errorf("%w in %s", ErrStepLimit, f.method.QualifiedName())
		}

		if in.steps%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return Value{}, err
			}
		}

		switch s := body[pc].(type) {
		case *ir.Assign:
			v, err := in.eval(ctx, f, s.Src)
			if err != nil {
				return Value{}, err
			}

			if err := in.store(ctx, f, s.Dst, v); err != nil {
				return Value{}, err
			}

			pc++
		case *ir.If:
			cond, err := in.eval(ctx, f, s.Cond)
			if err != nil {
				return Value{}, err
			}

			if cond.Truthy() {
				pc = labels[s.Target]
			} else {
				pc++
			}
		case *ir.Goto:
			pc = labels[s.Target]
		case *ir.Invoke:
			if _, err := in.eval(ctx, f, s.Call); err != nil {
				return Value{}, err
			}

			pc++
		case *ir.Switch:
			key, err := in.eval(ctx, f, s.Key)
			if err != nil {
				return Value{}, err
			}

			pc = labels[s.Default]

			for _, c := range s.Cases {
				if c.Value == key.I {
					pc = labels[c.Target]
					break
				}
			}
		case *ir.Return:
			if s.Value == nil {
				return Value{T: ir.Void}, nil
			}

			v, err := in.eval(ctx, f, s.Value)
			if err != nil {
				return Value{}, err
			}

			return coerce(v, f.method.Return), nil
		case *ir.Mark:
			pc++
		default:
			return Value{}, fmt.Errorf("%w: statement %T", ErrType, s)
		}
	}

	if f.method.Return != ir.Void {
		return Value{}, fmt.Errorf("%w: %s", ErrMissingReturn, f.method.QualifiedName())
	}

	return Value{T: ir.Void}, nil
}

func (in *Interpreter) store(ctx context.Context, f *frame, dst ir.Value, v Value) error {
	switch d := dst.(type) {
	case *ir.Local:
		f.locals[d.Name] = coerce(v, d.T)

		return nil
	case *ir.FieldRef:
		if d.Object == nil {
			in.statics[d.Class+"."+d.Name] = coerce(v, d.T)

			return nil
		}

		obj, err := in.object(ctx, f, d.Object)
		if err != nil {
			return err
		}

		obj.Fields[d.Name] = coerce(v, d.T)

		return nil
	case *ir.ArrayRef:
		arr, idx, err := in.element(ctx, f, d)
		if err != nil {
			return err
		}

		arr.Items[idx] = coerce(v, arr.Elem)

		return nil
	default:
		return fmt.Errorf("%w: cannot assign to %T", ErrType, dst)
	}
}
