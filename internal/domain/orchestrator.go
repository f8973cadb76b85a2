package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gooze.dev/pkg/weave/internal/interp"
	"gooze.dev/pkg/weave/internal/ir"
	"gooze.dev/pkg/weave/internal/live"
	m "gooze.dev/pkg/weave/internal/model"
)

// Outcome is what one test case observably did: its printed return value or
// the error it ended with.
type Outcome struct {
	Value string
	Err   string
}

func (o Outcome) String() string {
	if o.Err != "" {
		return "error: " + o.Err
	}

	return o.Value
}

// Baseline holds the outcomes of the unmutated run and, when the program was
// woven with tracking, the mutants each class reached.
type Baseline struct {
	Outcomes []Outcome
	Tracked  bool
	reached  map[string]map[int64]struct{}
}

// Covered reports whether point was reached by the baseline run. Without
// tracking every point counts as covered.
func (b *Baseline) Covered(point m.MutationPoint) bool {
	if !b.Tracked {
		return true
	}

	_, ok := b.reached[point.Class][point.ID]

	return ok
}

// Reached returns the number of reached mutants.
func (b *Baseline) Reached() int {
	n := 0
	for _, ids := range b.reached {
		n += len(ids)
	}

	return n
}

// Orchestrator runs the tests of a woven program once with no mutant selected
// and then once per mutant, comparing outcomes.
type Orchestrator interface {
	Baseline(ctx context.Context, woven *ir.Program, tracking bool) (*Baseline, error)
	TestMutation(ctx context.Context, woven *ir.Program, baseline *Baseline, point m.MutationPoint) (m.MutantResult, error)
}

type orchestrator struct {
	opts []interp.Option
}

// NewOrchestrator constructs an Orchestrator. The options are passed to every
// interpreter it creates.
func NewOrchestrator(opts ...interp.Option) Orchestrator {
	return &orchestrator{opts: opts}
}

func (o *orchestrator) Baseline(ctx context.Context, woven *ir.Program, tracking bool) (*Baseline, error) {
	states := live.NewStates()

	outcomes, err := o.runTests(ctx, woven, states)
	if err != nil {
		return nil, fmt.Errorf("baseline: %w", err)
	}

	baseline := &Baseline{Outcomes: outcomes, Tracked: tracking}

	if tracking {
		baseline.reached = make(map[string]map[int64]struct{})

		for class, ids := range states.Reached() {
			set := make(map[int64]struct{}, len(ids))
			for _, id := range ids {
				set[id] = struct{}{}
			}

			baseline.reached[class] = set
		}
	}

	slog.Debug("Baseline complete", "tests", len(outcomes), "tracked", tracking, "reached", baseline.Reached())

	return baseline, nil
}

func (o *orchestrator) TestMutation(
	ctx context.Context,
	woven *ir.Program,
	baseline *Baseline,
	point m.MutationPoint,
) (m.MutantResult, error) {
	result := m.MutantResult{Point: point}

	if err := ctx.Err(); err != nil {
		result.Status = m.Error
		result.Detail = err.Error()

		return result, err
	}

	if !baseline.Covered(point) {
		result.Status = m.NotCovered
		return result, nil
	}

	states := live.NewStates()
	states.Class(point.Class).Select(point.ID)

	outcomes, err := o.runTests(ctx, woven, states)
	if err != nil {
		result.Status = m.Error
		result.Detail = err.Error()

		return result, fmt.Errorf("mutant %s#%d: %w", point.Class, point.ID, err)
	}

	for i, got := range outcomes {
		if i >= len(baseline.Outcomes) || got != baseline.Outcomes[i] {
			tc := woven.Tests[i]
			result.Status = m.Killed
			result.Detail = fmt.Sprintf("%s.%s%v: %s", tc.Class, tc.Method, tc.Args, got)

			return result, nil
		}
	}

	result.Status = m.Survived

	return result, nil
}

// runTests runs every test case of p in order in one interpreter. Runtime
// errors become outcomes; only cancellation aborts the run.
func (o *orchestrator) runTests(ctx context.Context, p *ir.Program, states *live.States) ([]Outcome, error) {
	in := interp.New(p, states, o.opts...)
	outcomes := make([]Outcome, 0, len(p.Tests))

	for _, tc := range p.Tests {
		got, err := in.Run(ctx, tc)

		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, err
		case err != nil:
			outcomes = append(outcomes, Outcome{Err: err.Error()})
		default:
			outcomes = append(outcomes, Outcome{Value: got.String()})
		}
	}

	return outcomes, nil
}
