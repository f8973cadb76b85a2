package domain

import (
	"gooze.dev/pkg/weave/internal/domain/mutagens"
	m "gooze.dev/pkg/weave/internal/model"
)

// ErrMalformedIR is returned when a statement cannot be traversed.
var ErrMalformedIR = mutagens.ErrMalformedIR

var mutationGenerators = map[m.OperatorKind]mutagens.Generator{
	m.OperatorABS: mutagens.GenerateAbsMutations,
	m.OperatorAOR: mutagens.GenerateArithmeticMutations,
	m.OperatorLCR: mutagens.GenerateLogicalMutations,
	m.OperatorROR: mutagens.GenerateComparisonMutations,
	m.OperatorUOI: mutagens.GenerateUnaryMutations,
}

// collectCandidates runs the enabled generators over one site. Operators are
// always applied in the fixed weaving order, whatever order the configuration
// lists them in.
func collectCandidates(site mutagens.Site, config m.WeaveConfig) ([]mutagens.Candidate, error) {
	var out []mutagens.Candidate

	for _, op := range m.AllOperators() {
		if !config.Enabled(op) {
			continue
		}

		gen, ok := mutationGenerators[op]
		if !ok {
			continue
		}

		cands, err := gen(site)
		if err != nil {
			return nil, err
		}

		out = append(out, cands...)
	}

	return out, nil
}
