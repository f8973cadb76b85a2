// Package model defines the data structures shared by the weaver, the
// harness and the user interfaces.
package model

import (
	"fmt"
	"strings"
)

// OperatorKind identifies a mutation operator.
type OperatorKind string

const (
	// OperatorABS replaces a numeric value with its absolute value, the
	// negated absolute value or a value pushed away from zero.
	OperatorABS OperatorKind = "abs"
	// OperatorAOR replaces an arithmetic operator.
	OperatorAOR OperatorKind = "aor"
	// OperatorLCR replaces a logical connective.
	OperatorLCR OperatorKind = "lcr"
	// OperatorROR replaces a relational operator.
	OperatorROR OperatorKind = "ror"
	// OperatorUOI inserts unary operators on local, constant and field reads.
	OperatorUOI OperatorKind = "uoi"
)

// AllOperators returns every operator in weaving order.
func AllOperators() []OperatorKind {
	return []OperatorKind{OperatorABS, OperatorAOR, OperatorLCR, OperatorROR, OperatorUOI}
}

// ParseOperators converts operator names (case-insensitive) into kinds.
// An empty list selects every operator.
func ParseOperators(names []string) ([]OperatorKind, error) {
	if len(names) == 0 {
		return AllOperators(), nil
	}

	out := make([]OperatorKind, 0, len(names))

	for _, name := range names {
		kind := OperatorKind(strings.ToLower(strings.TrimSpace(name)))
		if kind == "" {
			continue
		}

		if !kind.Valid() {
			return nil, fmt.Errorf("unsupported operator: %s", name)
		}

		out = append(out, kind)
	}

	return out, nil
}

// Valid reports whether k is a known operator.
func (k OperatorKind) Valid() bool {
	for _, known := range AllOperators() {
		if k == known {
			return true
		}
	}

	return false
}

// MutationPoint identifies one mutant. IDs are unique per class.
type MutationPoint struct {
	Class    string       `yaml:"class"`
	Method   string       `yaml:"method"`
	Operator OperatorKind `yaml:"operator"`
	ID       int64        `yaml:"id"`
}

// WeaveConfig selects the operators to apply and whether reached mutants are
// recorded during baseline runs.
type WeaveConfig struct {
	Operators []OperatorKind
	Track     bool
}

// DefaultWeaveConfig enables every operator without tracking.
func DefaultWeaveConfig() WeaveConfig {
	return WeaveConfig{Operators: AllOperators()}
}

// Enabled reports whether op is part of the configuration.
func (c WeaveConfig) Enabled(op OperatorKind) bool {
	for _, k := range c.Operators {
		if k == op {
			return true
		}
	}

	return false
}
