package domain

import (
	m "gooze.dev/pkg/weave/internal/model"
	weavepkg "gooze.dev/pkg/weave/pkg"
)

// mutationScoreFromResults returns killed / (killed + survived). Mutants that
// were never reached or could not be evaluated do not count. With nothing to
// score the result is 1.
func mutationScoreFromResults(results weavepkg.FileSpill[m.MutantResult]) (float64, error) {
	killed := 0
	total := 0

	err := results.Range(func(_ uint64, result m.MutantResult) error {
		switch result.Status {
		case m.Killed:
			killed++
			total++
		case m.Survived:
			total++
		case m.NotCovered, m.Error:
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return mutationScore(killed, total-killed), nil
}

func mutationScore(killed, survived int) float64 {
	if killed+survived == 0 {
		return 1
	}

	return float64(killed) / float64(killed+survived)
}
