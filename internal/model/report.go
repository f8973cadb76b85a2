package model

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// TestStatus represents the outcome of running the tests against a mutant.
type TestStatus int

const (
	// Killed indicates at least one test outcome differed from the baseline.
	Killed TestStatus = iota
	// Survived indicates every test outcome matched the baseline.
	Survived
	// NotCovered indicates no baseline run reached the mutant.
	NotCovered
	// Error indicates the mutant could not be evaluated.
	Error
)

var statusNames = map[TestStatus]string{
	Killed:     "killed",
	Survived:   "survived",
	NotCovered: "not-covered",
	Error:      "error",
}

func (s TestStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}

	return fmt.Sprintf("status(%d)", int(s))
}

// MarshalYAML implements yaml.Marshaler.
func (s TestStatus) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *TestStatus) UnmarshalYAML(node *yaml.Node) error {
	for status, name := range statusNames {
		if name == node.Value {
			*s = status
			return nil
		}
	}

	return fmt.Errorf("line %d: unknown status %q", node.Line, node.Value)
}

// MutantResult is the harness verdict for one mutation point.
type MutantResult struct {
	Point  MutationPoint `yaml:",inline"`
	Status TestStatus    `yaml:"status"`
	// Detail names the first test whose outcome differed, or the error.
	Detail string `yaml:"detail,omitempty"`
}

// Report is the result of one harness run over a source.
type Report struct {
	Source  Path           `yaml:"source"`
	Hash    string         `yaml:"hash,omitempty"`
	Results []MutantResult `yaml:"results"`
}

// Counts tallies results by status.
func (r Report) Counts() map[TestStatus]int {
	counts := make(map[TestStatus]int, len(statusNames))
	for _, res := range r.Results {
		counts[res.Status]++
	}

	return counts
}
