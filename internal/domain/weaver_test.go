package domain

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gooze.dev/pkg/weave/internal/interp"
	"gooze.dev/pkg/weave/internal/ir"
	"gooze.dev/pkg/weave/internal/live"
	m "gooze.dev/pkg/weave/internal/model"
)

const weaveFixture = `
classes:
  - name: P
    fields:
      - {name: calls, type: int, static: true}
    methods:
      - name: div
        params: [{name: a, type: int}, {name: b, type: int}]
        return: int
        locals: [{name: r, type: int}]
        body:
          - assign: {dst: {local: r}, src: {binop: {op: div, x: {local: a}, y: {local: b}}}}
          - return: {local: r}
      - name: ddiv
        params: [{name: a, type: double}, {name: b, type: double}]
        return: double
        locals: [{name: r, type: double}]
        body:
          - assign: {dst: {local: r}, src: {binop: {op: div, x: {local: a}, y: {local: b}}}}
          - return: {local: r}
      - name: step
        params: [{name: a, type: int}]
        return: int
        locals: [{name: r, type: int}]
        body:
          - if: {cond: {cmp: {op: gt, x: {local: a}, y: {const: {type: int, value: "0"}}}}, goto: pos}
          - assign: {dst: {local: r}, src: {binop: {op: sub, x: {local: a}, y: {const: {type: int, value: "1"}}}}}
          - return: {local: r}
          - label: pos
          - assign: {dst: {local: r}, src: {binop: {op: add, x: {local: a}, y: {const: {type: int, value: "1"}}}}}
          - return: {local: r}
      - name: five
        return: int
        locals: [{name: x, type: int}]
        body:
          - assign: {dst: {local: x}, src: {const: {type: int, value: "5"}}}
          - return: {local: x}
      - name: choose
        params: [{name: b, type: boolean}]
        return: int
        body:
          - if: {cond: {local: b}, goto: "yes"}
          - return: {const: {type: int, value: "0"}}
          - label: "yes"
          - return: {const: {type: int, value: "1"}}
      - name: count
        params: [{name: n, type: int}]
        return: int
        locals: [{name: i, type: int}, {name: ok, type: boolean}]
        body:
          - label: loop
          - assign: {dst: {local: ok}, src: {cmp: {op: lt, x: {local: i}, y: {local: n}}}}
          - if: {cond: {cmp: {op: eq, x: {local: ok}, y: {const: {type: boolean, value: "false"}}}}, goto: done}
          - assign:
              dst: {field: {class: P, name: calls}}
              src: {binop: {op: add, x: {field: {class: P, name: calls}}, y: {const: {type: int, value: "1"}}}}
          - assign: {dst: {local: i}, src: {binop: {op: add, x: {local: i}, y: {const: {type: int, value: "1"}}}}}
          - goto: loop
          - label: done
          - return: {field: {class: P, name: calls}}
  - name: Q
    methods:
      - name: both
        params: [{name: a, type: int}, {name: b, type: int}]
        return: int
        locals: [{name: s, type: int}, {name: t, type: int}]
        body:
          - assign: {dst: {local: s}, src: {binop: {op: mul, x: {local: a}, y: {local: b}}}}
          - assign: {dst: {local: t}, src: {binop: {op: rem, x: {local: s}, y: {local: b}}}}
          - return: {binop: {op: add, x: {local: s}, y: {local: t}}}
tests:
  - {class: P, method: div, args: ["7", "2"]}
  - {class: P, method: step, args: ["5"]}
  - {class: Q, method: both, args: ["3", "4"]}
`

func loadFixture(t *testing.T) *ir.Program {
	t.Helper()

	p, err := ir.Decode([]byte(weaveFixture))
	require.NoError(t, err)

	return p
}

func weaveFixtureWith(t *testing.T, config m.WeaveConfig) (*ir.Program, *ir.Program, *Registry) {
	t.Helper()

	original := loadFixture(t)
	registry := NewRegistry()

	woven, err := NewWeaver(registry, config).WeaveProgram(context.Background(), original, 2)
	require.NoError(t, err)

	return original, woven, registry
}

func ops(kinds ...m.OperatorKind) m.WeaveConfig {
	return m.WeaveConfig{Operators: kinds}
}

// callWith runs class.method on p with the class selector set to id.
func callWith(t *testing.T, p *ir.Program, class string, id int64, method string, args ...interp.Value) (interp.Value, *live.States) {
	t.Helper()

	states := live.NewStates()
	states.Class(class).Select(id)

	got, err := interp.New(p, states, interp.WithStepLimit(100_000)).Call(context.Background(), class, method, args...)
	require.NoError(t, err)

	return got, states
}

func pointIDs(registry *Registry, class, method string) []int64 {
	var ids []int64

	for _, p := range registry.Points() {
		if p.Class == class && p.Method == method {
			ids = append(ids, p.ID)
		}
	}

	return ids
}

func TestWeaver_SelectsExactlyOneArithmeticMutant(t *testing.T) {
	_, woven, registry := weaveFixtureWith(t, ops(m.OperatorAOR))

	ids := pointIDs(registry, "P", "div")
	require.Len(t, ids, 9)

	// add, div swapped, mul, sub, sub swapped, rem, rem swapped, left, right
	want := []int64{9, 0, 14, 5, -5, 1, 2, 7, 2}

	for i, id := range ids {
		got, _ := callWith(t, woven, "P", id, "div", interp.Int(7), interp.Int(2))
		assert.Equal(t, interp.Int(want[i]), got, "mutant %d", id)
	}
}

func TestWeaver_FloatingDivisionHasNoRemainderMutants(t *testing.T) {
	_, woven, registry := weaveFixtureWith(t, ops(m.OperatorAOR))

	ids := pointIDs(registry, "P", "ddiv")
	require.Len(t, ids, 7)

	want := []float64{9, 2.0 / 7.0, 14, 5, -5, 7, 2}

	for i, id := range ids {
		got, _ := callWith(t, woven, "P", id, "ddiv", interp.Double(7), interp.Double(2))
		assert.InDelta(t, want[i], got.F, 1e-12, "mutant %d", id)
	}
}

func TestWeaver_BaselineMatchesOriginal(t *testing.T) {
	original, woven, registry := weaveFixtureWith(t, m.WeaveConfig{Operators: m.AllOperators(), Track: true})
	require.NotEmpty(t, registry.Points())

	calls := []struct {
		class  string
		method string
		args   []interp.Value
	}{
		{"P", "div", []interp.Value{interp.Int(7), interp.Int(2)}},
		{"P", "ddiv", []interp.Value{interp.Double(1), interp.Double(4)}},
		{"P", "step", []interp.Value{interp.Int(5)}},
		{"P", "step", []interp.Value{interp.Int(-5)}},
		{"P", "five", nil},
		{"P", "choose", []interp.Value{interp.Bool(true)}},
		{"P", "choose", []interp.Value{interp.Bool(false)}},
		{"P", "count", []interp.Value{interp.Int(4)}},
		{"Q", "both", []interp.Value{interp.Int(3), interp.Int(4)}},
	}

	for _, c := range calls {
		t.Run(fmt.Sprintf("%s.%s%v", c.class, c.method, c.args), func(t *testing.T) {
			want, _ := callWith(t, original, c.class, live.NoMutant, c.method, c.args...)
			got, _ := callWith(t, woven, c.class, live.NoMutant, c.method, c.args...)
			assert.Equal(t, want, got)
		})
	}
}

func TestWeaver_ForeignSelectorBehavesLikeBaseline(t *testing.T) {
	_, woven, registry := weaveFixtureWith(t, m.DefaultWeaveConfig())

	baseline, _ := callWith(t, woven, "P", live.NoMutant, "step", interp.Int(5))

	for _, id := range pointIDs(registry, "P", "div") {
		got, _ := callWith(t, woven, "P", id, "step", interp.Int(5))
		assert.Equal(t, baseline, got, "mutant %d of another method", id)
	}

	got, _ := callWith(t, woven, "P", 1_000_000, "step", interp.Int(5))
	assert.Equal(t, baseline, got)
}

func TestWeaver_TrackingMarksReachedStatementsOnly(t *testing.T) {
	_, woven, registry := weaveFixtureWith(t, m.WeaveConfig{Operators: []m.OperatorKind{m.OperatorAOR}, Track: true})

	ids := pointIDs(registry, "P", "step")
	require.Len(t, ids, 18)

	_, states := callWith(t, woven, "P", live.NoMutant, "step", interp.Int(5))
	require.NotNil(t, states.Class("P").Live())
	assert.Equal(t, ids[9:], states.Class("P").Live().IDs())

	_, states = callWith(t, woven, "P", live.NoMutant, "step", interp.Int(-5))
	assert.Equal(t, ids[:9], states.Class("P").Live().IDs())

	_, states = callWith(t, woven, "P", ids[0], "step", interp.Int(-5))
	assert.Nil(t, states.Class("P").Live(), "mutant runs never create the live set")
}

func TestWeaver_WithoutTrackingNoLiveSet(t *testing.T) {
	_, woven, _ := weaveFixtureWith(t, ops(m.OperatorAOR))

	_, states := callWith(t, woven, "P", live.NoMutant, "step", interp.Int(5))
	assert.Nil(t, states.Class("P").Live())

	for _, s := range woven.Class("P").Method("step").Body {
		assert.NotContains(t, ir.FormatStmt(s), ir.BuiltinLiveMark)
	}
}

func TestWeaver_AbsOnNonZeroConstant(t *testing.T) {
	_, woven, registry := weaveFixtureWith(t, ops(m.OperatorABS))

	ids := pointIDs(registry, "P", "five")
	require.Len(t, ids, 1)

	got, _ := callWith(t, woven, "P", ids[0], "five")
	assert.Equal(t, interp.Int(-5), got)
}

func TestWeaver_UnaryOnBooleanCondition(t *testing.T) {
	_, woven, registry := weaveFixtureWith(t, ops(m.OperatorUOI))

	ids := pointIDs(registry, "P", "choose")
	require.Len(t, ids, 3)

	// force true, force false, negate
	for _, in := range []bool{true, false} {
		want := []int64{1, 0, 0}
		if !in {
			want[2] = 1
		}

		for i, id := range ids {
			got, _ := callWith(t, woven, "P", id, "choose", interp.Bool(in))
			assert.Equal(t, interp.Int(want[i]), got, "mutant %d with b=%v", id, in)
		}
	}
}

func TestWeaver_UnaryLeavesEarlierMutantsAlone(t *testing.T) {
	_, woven, registry := weaveFixtureWith(t, ops(m.OperatorAOR, m.OperatorUOI))

	// s = a * b carries AOR mutants first, then UOI mutants on a and b.
	ids := pointIDs(registry, "Q", "both")
	baseline, _ := callWith(t, woven, "Q", live.NoMutant, "both", interp.Int(3), interp.Int(4))
	assert.Equal(t, interp.Int(12), baseline)

	for _, id := range ids {
		states := live.NewStates()
		states.Class("Q").Select(id)

		_, err := interp.New(woven, states).Call(context.Background(), "Q", "both", interp.Int(3), interp.Int(4))
		if err != nil {
			assert.ErrorIs(t, err, interp.ErrDivideByZero, "mutant %d", id)
		}
	}

	// a * b -> a + b is the first AOR mutant: s = 7, t = 7 % 4 = 3.
	got, _ := callWith(t, woven, "Q", ids[0], "both", interp.Int(3), interp.Int(4))
	assert.Equal(t, interp.Int(10), got)
}

func TestWeaver_AllOperatorsDisabledIsIdentity(t *testing.T) {
	original, woven, registry := weaveFixtureWith(t, m.WeaveConfig{})
	assert.Empty(t, registry.Points())

	for _, c := range original.Classes {
		for _, method := range c.Methods {
			got := woven.Class(c.Name).Method(method.Name)

			require.Len(t, got.Body, len(method.Body)+1)
			assert.Equal(t, SelectorLocal, got.Body[0].(*ir.Assign).Dst.(*ir.Local).Name)

			for i, s := range method.Body {
				assert.Equal(t, ir.FormatStmt(s), ir.FormatStmt(got.Body[i+1]))
			}
		}
	}

	want, _ := callWith(t, original, "P", live.NoMutant, "count", interp.Int(3))
	got, _ := callWith(t, woven, "P", live.NoMutant, "count", interp.Int(3))
	assert.Equal(t, want, got)
}

func TestWeaver_DoesNotModifyInput(t *testing.T) {
	original, _, _ := weaveFixtureWith(t, m.DefaultWeaveConfig())

	assert.Equal(t, ir.FormatProgram(loadFixture(t)), ir.FormatProgram(original))
}

func TestWeaver_IDsAreDenseAndIncreasingPerClass(t *testing.T) {
	_, _, registry := weaveFixtureWith(t, m.DefaultWeaveConfig())

	next := map[string]int64{}

	for _, p := range registry.Points() {
		assert.Equal(t, next[p.Class], p.ID, "class %s", p.Class)
		next[p.Class]++
	}

	assert.Equal(t, next["P"], registry.Count("P"))
	assert.Equal(t, next["Q"], registry.Count("Q"))

	// Methods are woven in declaration order.
	assert.Equal(t, int64(0), pointIDs(registry, "P", "div")[0])
}

func TestWeaver_ParallelWeavingIsDeterministic(t *testing.T) {
	seqRegistry := NewRegistry()
	sequential, err := NewWeaver(seqRegistry, m.DefaultWeaveConfig()).WeaveProgram(context.Background(), loadFixture(t), 1)
	require.NoError(t, err)

	var wg sync.WaitGroup

	for range 4 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			registry := NewRegistry()
			woven, err := NewWeaver(registry, m.DefaultWeaveConfig()).WeaveProgram(context.Background(), loadFixture(t), 4)
			assert.NoError(t, err)
			assert.Equal(t, seqRegistry.Points(), registry.Points())
			assert.Equal(t, ir.FormatProgram(sequential), ir.FormatProgram(woven))
		}()
	}

	wg.Wait()
}

func TestWeaver_CountMutantsStillTerminate(t *testing.T) {
	_, woven, registry := weaveFixtureWith(t, m.DefaultWeaveConfig())

	for _, id := range pointIDs(registry, "P", "count") {
		states := live.NewStates()
		states.Class("P").Select(id)

		_, err := interp.New(woven, states, interp.WithStepLimit(10_000)).Call(context.Background(), "P", "count", interp.Int(3))
		if err != nil {
			// Mutants such as 1 / i divide by the loop counter while it is still zero.
			assert.True(t, errors.Is(err, interp.ErrStepLimit) || errors.Is(err, interp.ErrDivideByZero),
				"mutant %d: %v", id, err)
		}
	}
}

func TestWeaver_MalformedStatement(t *testing.T) {
	method := &ir.Method{
		Class:  "C",
		Name:   "bad",
		Return: ir.Void,
		Body:   []ir.Stmt{&ir.Assign{Src: ir.IntConst(ir.Int, 1)}},
	}

	_, err := NewWeaver(NewRegistry(), ops(m.OperatorUOI)).WeaveMethod(method)
	require.ErrorIs(t, err, ErrMalformedIR)
	assert.Contains(t, err.Error(), "C.bad")
}

func TestWeaver_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewWeaver(NewRegistry(), m.DefaultWeaveConfig()).WeaveProgram(ctx, loadFixture(t), 1)
	require.ErrorIs(t, err, context.Canceled)
}

func TestTempLocalName(t *testing.T) {
	assert.Equal(t, "__mutation_temp_int__", TempLocalName(ir.Int))
	assert.Equal(t, "__mutation_temp_boolean__", TempLocalName(ir.Bool))
}
