package controller

import (
	"bytes"
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "gooze.dev/pkg/weave/internal/model"
)

// SimpleUI implements UI by printing plain tables to the command output.
type SimpleUI struct {
	cmd   *cobra.Command
	title lipgloss.Style
	score lipgloss.Style
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	renderer := lipgloss.NewRenderer(cmd.OutOrStdout())

	return &SimpleUI{
		cmd:   cmd,
		title: renderer.NewStyle().Bold(true),
		score: renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
	}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, _ ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// Wait blocks until the UI is closed (no-op for SimpleUI).
func (s *SimpleUI) Wait(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// DisplayEstimation prints mutant counts per method and operator.
func (s *SimpleUI) DisplayEstimation(ctx context.Context, points []m.MutationPoint, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	if err != nil {
		s.printf("estimation error: %v\n", err)
		return err
	}

	rows := buildEstimateRows(points)
	s.printf("\n%s", renderEstimationTable(rows))

	mean, std := mutantDensity(rows)
	s.printf("Mutants per method: mean %.2f, stddev %.2f\n", mean, std)

	return nil
}

func renderEstimationTable(rows []estimateRow) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader(estimateHeader())
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoFormatHeaders(false)

	alignments := []int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT}
	for range m.AllOperators() {
		alignments = append(alignments, tablewriter.ALIGN_RIGHT)
	}

	table.SetColumnAlignment(append(alignments, tablewriter.ALIGN_RIGHT))

	for _, row := range rows {
		table.Append(row.cells())
	}

	table.SetFooter(estimateFooter(rows))
	table.Render()

	return tableBuffer.String()
}

// DisplayDiff prints a unified diff.
func (s *SimpleUI) DisplayDiff(ctx context.Context, path m.Path, diff string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if diff == "" {
		s.printf("%s: no mutation points\n", path)
		return nil
	}

	s.printf("%s", diff)

	return nil
}

// DisplayConcurrencyInfo shows how many mutants run and how wide.
func (s *SimpleUI) DisplayConcurrencyInfo(ctx context.Context, parallel int, count int) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("Running %d mutants with %d worker(s)\n", count, parallel)
}

// DisplayCompletedTestInfo shows the verdict for one mutant.
func (s *SimpleUI) DisplayCompletedTestInfo(ctx context.Context, result m.MutantResult) {
	if err := ctx.Err(); err != nil {
		return
	}

	p := result.Point
	s.printf("Mutant %s#%d (%s) in %s -> %s\n", p.Class, p.ID, p.Operator, p.Method, result.Status)

	if result.Status == m.Error && result.Detail != "" {
		s.printf("  %s\n", result.Detail)
	}
}

// DisplayResults prints every saved verdict followed by the status totals.
func (s *SimpleUI) DisplayResults(ctx context.Context, reports []m.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(reports) == 0 {
		s.printf("No results\n")
		return nil
	}

	s.printf("%s\n", s.title.Render("Results"))
	s.printf("%s", renderResultsTable(reports))
	s.printf("%s\n", formatTotals(resultTotals(reports)))

	return nil
}

func renderResultsTable(reports []m.Report) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader(resultHeader())
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)

	for _, report := range reports {
		for _, r := range report.Results {
			table.Append(resultCells(report.Source, r))
		}
	}

	table.Render()

	return tableBuffer.String()
}

// DisplayMutationScore prints the final mutation score.
func (s *SimpleUI) DisplayMutationScore(ctx context.Context, score float64) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("%s\n", s.score.Render(formatScore(score)))
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
