package adapter

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	m "gooze.dev/pkg/weave/internal/model"
)

// ErrNoReports is returned by LoadReports when the directory holds no saved
// results.
var ErrNoReports = errors.New("no saved results")

// ReportStore persists weave outputs in a directory.
type ReportStore interface {
	// SaveReports writes harness results to <dir>/results.yaml.
	SaveReports(dir m.Path, reports []m.Report) error
	// LoadReports reads the results written by SaveReports.
	LoadReports(dir m.Path) ([]m.Report, error)
	// SaveMutants writes the mutation point report to <dir>/mutants.txt.
	SaveMutants(dir m.Path, content []byte) error
}

// LocalReportStore is a ReportStore on the local disk using YAML.
type LocalReportStore struct{}

// NewLocalReportStore constructs a LocalReportStore.
func NewLocalReportStore() *LocalReportStore {
	return &LocalReportStore{}
}

type resultsDoc struct {
	Reports []m.Report `yaml:"reports"`
}

// SaveReports writes reports as a single YAML document.
func (s *LocalReportStore) SaveReports(dir m.Path, reports []m.Report) error {
	data, err := yaml.Marshal(resultsDoc{Reports: reports})
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}

	return s.write(dir, m.ResultsFile, data)
}

// LoadReports reads <dir>/results.yaml.
func (s *LocalReportStore) LoadReports(dir m.Path) ([]m.Report, error) {
	path := filepath.Join(string(dir), m.ResultsFile)

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w in %s", ErrNoReports, dir)
	}

	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}

	var doc resultsDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	return doc.Reports, nil
}

// SaveMutants writes the mutation point report.
func (s *LocalReportStore) SaveMutants(dir m.Path, content []byte) error {
	return s.write(dir, m.MutantsFile, content)
}

func (s *LocalReportStore) write(dir m.Path, name string, data []byte) error {
	if err := os.MkdirAll(string(dir), 0o750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	path := filepath.Join(string(dir), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	slog.Debug("Saved report", "path", path, "bytes", len(data))

	return nil
}
