package domain

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"gooze.dev/pkg/weave/internal/domain/mutagens"
	"gooze.dev/pkg/weave/internal/ir"
	"gooze.dev/pkg/weave/internal/live"
	m "gooze.dev/pkg/weave/internal/model"
)

// Names of the locals the weaver adds to every instrumented method.
const (
	SelectorLocal = "__selected_mutation__"
	LiveLocal     = "__live_mutants__"
	labelPrefix   = "__weave_"
)

// TempLocalName returns the name of the mutation temp of type t.
func TempLocalName(t ir.Type) string {
	return fmt.Sprintf("__mutation_temp_%s__", t)
}

// Weaver rewrites method bodies so that every candidate mutant is present
// inline, guarded by the class selector.
type Weaver interface {
	WeaveProgram(ctx context.Context, p *ir.Program, parallel int) (*ir.Program, error)
	WeaveClass(c *ir.Class) (*ir.Class, error)
	WeaveMethod(method *ir.Method) (*ir.Method, error)
}

type weaver struct {
	registry *Registry
	config   m.WeaveConfig
}

// NewWeaver creates a Weaver that allocates ids from registry.
func NewWeaver(registry *Registry, config m.WeaveConfig) Weaver {
	return &weaver{registry: registry, config: config}
}

// WeaveProgram weaves every class of p, up to parallel classes at a time. The
// input program is not modified.
func (w *weaver) WeaveProgram(ctx context.Context, p *ir.Program, parallel int) (*ir.Program, error) {
	out := &ir.Program{Classes: make([]*ir.Class, len(p.Classes)), Tests: p.Tests}

	group, groupCtx := errgroup.WithContext(ctx)
	if parallel > 0 {
		group.SetLimit(parallel)
	}

	for i, c := range p.Classes {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			woven, err := w.WeaveClass(c)
			if err != nil {
				return err
			}

			out.Classes[i] = woven

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

// WeaveClass weaves the methods of c in declaration order, so ids within a
// class are deterministic.
func (w *weaver) WeaveClass(c *ir.Class) (*ir.Class, error) {
	out := &ir.Class{Name: c.Name, Fields: c.Fields, Methods: make([]*ir.Method, 0, len(c.Methods))}

	for _, method := range c.Methods {
		woven, err := w.WeaveMethod(method)
		if err != nil {
			return nil, err
		}

		out.Methods = append(out.Methods, woven)
	}

	slog.Debug("Woven class", "class", c.Name, "mutants", w.registry.Count(c.Name))

	return out, nil
}

// WeaveMethod returns an instrumented copy of method.
func (w *weaver) WeaveMethod(method *ir.Method) (*ir.Method, error) {
	mw := newMethodWeaver(method, w.config.Track)

	for i, s := range method.Body {
		if err := w.weaveStmt(mw, i, s); err != nil {
			return nil, err
		}
	}

	if _, err := ir.Resolve(mw.b.Stmts()); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedIR, method.QualifiedName(), err)
	}

	return method.WithBody(mw.b.Stmts(), mw.locals), nil
}

func (w *weaver) weaveStmt(mw *methodWeaver, index int, s ir.Stmt) error {
	if _, ok := s.(*ir.Mark); ok {
		mw.b.Emit(s)
		return nil
	}

	after := mw.b.NewLabel()
	site := mutagens.Site{
		Class:  mw.method.Class,
		Method: mw.method.Name,
		Return: mw.method.Return,
		Index:  index,
		Stmt:   s,
		After:  after,
		Temps:  mw,
	}

	cands, err := collectCandidates(site, w.config)
	if err != nil {
		return err
	}

	if len(cands) == 0 {
		mw.b.Emit(s)
		return nil
	}

	ids := make([]int64, 0, len(cands))

	for _, c := range cands {
		id := w.registry.Allocate(mw.method.Class, mw.method.Name, c.Operator)
		ids = append(ids, id)

		mw.emitGuarded(id, c, after)
	}

	if mw.live != nil {
		mw.emitTracking(ids)
	}

	mw.b.Emit(s)
	mw.b.Mark(after)

	return nil
}

// methodWeaver holds the output of one method and hands out its temps.
type methodWeaver struct {
	method   *ir.Method
	b        *ir.Builder
	locals   []*ir.Local
	temps    map[ir.Type]*ir.Local
	selector *ir.Local
	live     *ir.Local
}

func newMethodWeaver(method *ir.Method, track bool) *methodWeaver {
	mw := &methodWeaver{
		method:   method,
		b:        ir.NewBuilder(labelPrefix),
		locals:   append([]*ir.Local(nil), method.Locals...),
		temps:    make(map[ir.Type]*ir.Local),
		selector: &ir.Local{Name: SelectorLocal, T: ir.Int},
	}

	mw.locals = append(mw.locals, mw.selector)
	mw.b.Emit(&ir.Assign{Dst: mw.selector, Src: &ir.Call{
		Kind:   ir.CallBuiltin,
		Class:  method.Class,
		Method: ir.BuiltinSelector,
		Ret:    ir.Int,
	}})

	if track {
		mw.live = &ir.Local{Name: LiveLocal, T: ir.Ref}
		mw.locals = append(mw.locals, mw.live)

		skip := mw.b.NewLabel()
		mw.b.Emit(
			&ir.If{Cond: mw.selectorIsNot(live.NoMutant), Target: skip},
			&ir.Assign{Dst: mw.live, Src: &ir.Call{
				Kind:   ir.CallBuiltin,
				Class:  method.Class,
				Method: ir.BuiltinLiveEnsure,
				Ret:    ir.Ref,
			}},
		)
		mw.b.Mark(skip)
	}

	return mw
}

// Temp implements mutagens.Temps. Temps are created on first use and shared
// by every mutation point of the method.
func (mw *methodWeaver) Temp(t ir.Type) *ir.Local {
	if !t.IsPrimitive() {
		return nil
	}

	if tmp, ok := mw.temps[t]; ok {
		return tmp
	}

	tmp := &ir.Local{Name: TempLocalName(t), T: t}
	mw.temps[t] = tmp
	mw.locals = append(mw.locals, tmp)

	return tmp
}

func (mw *methodWeaver) selectorIsNot(id int64) *ir.Compare {
	return &ir.Compare{Op: ir.Ne, X: mw.selector, Y: ir.IntConst(ir.Int, id)}
}

// emitGuarded emits: [prelude] if sel != id goto skip; mutant; goto after; skip:
// The jump to after is left out when the mutant ends in a terminal statement.
func (mw *methodWeaver) emitGuarded(id int64, c mutagens.Candidate, after ir.Label) {
	mw.b.Emit(c.Prelude...)

	skip := mw.b.NewLabel()
	mw.b.Emit(&ir.If{Cond: mw.selectorIsNot(id), Target: skip})
	mw.b.Emit(c.Stmts...)

	if n := len(c.Stmts); n == 0 || !ir.Terminal(c.Stmts[n-1]) {
		mw.b.Emit(&ir.Goto{Target: after})
	}

	mw.b.Mark(skip)
}

// emitTracking records ids as reached, on baseline runs only.
func (mw *methodWeaver) emitTracking(ids []int64) {
	skip := mw.b.NewLabel()
	mw.b.Emit(&ir.If{Cond: mw.selectorIsNot(live.NoMutant), Target: skip})

	for _, id := range ids {
		mw.b.Emit(&ir.Invoke{Call: &ir.Call{
			Kind:   ir.CallBuiltin,
			Method: ir.BuiltinLiveMark,
			Params: []ir.Type{ir.Ref, ir.Int},
			Args:   []ir.Value{mw.live, ir.IntConst(ir.Int, id)},
			Ret:    ir.Void,
		}})
	}

	mw.b.Mark(skip)
}
