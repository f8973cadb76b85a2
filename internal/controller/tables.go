package controller

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	m "gooze.dev/pkg/weave/internal/model"
)

// estimateRow counts the mutants of one method per operator.
type estimateRow struct {
	class  string
	method string
	counts map[m.OperatorKind]int
	total  int
}

func buildEstimateRows(points []m.MutationPoint) []estimateRow {
	index := make(map[[2]string]*estimateRow)

	for _, p := range points {
		key := [2]string{p.Class, p.Method}

		row, ok := index[key]
		if !ok {
			row = &estimateRow{class: p.Class, method: p.Method, counts: make(map[m.OperatorKind]int)}
			index[key] = row
		}

		row.counts[p.Operator]++
		row.total++
	}

	rows := make([]estimateRow, 0, len(index))
	for _, row := range index {
		rows = append(rows, *row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].class != rows[j].class {
			return rows[i].class < rows[j].class
		}

		return rows[i].method < rows[j].method
	})

	return rows
}

func estimateHeader() []string {
	header := []string{"Class", "Method"}
	for _, op := range m.AllOperators() {
		header = append(header, string(op))
	}

	return append(header, "Total")
}

func (r estimateRow) cells() []string {
	cells := []string{r.class, r.method}
	for _, op := range m.AllOperators() {
		cells = append(cells, fmt.Sprintf("%d", r.counts[op]))
	}

	return append(cells, fmt.Sprintf("%d", r.total))
}

func estimateFooter(rows []estimateRow) []string {
	classes := make(map[string]struct{})
	totals := make(map[m.OperatorKind]int)
	total := 0

	for _, row := range rows {
		classes[row.class] = struct{}{}

		for op, n := range row.counts {
			totals[op] += n
		}

		total += row.total
	}

	footer := []string{fmt.Sprintf("Classes %d", len(classes)), fmt.Sprintf("Methods %d", len(rows))}
	for _, op := range m.AllOperators() {
		footer = append(footer, fmt.Sprintf("%d", totals[op]))
	}

	return append(footer, fmt.Sprintf("%d", total))
}

// mutantDensity returns the mean and sample standard deviation of mutants per
// method. The deviation is zero with fewer than two methods.
func mutantDensity(rows []estimateRow) (float64, float64) {
	if len(rows) == 0 {
		return 0, 0
	}

	counts := make([]float64, len(rows))
	for i, row := range rows {
		counts[i] = float64(row.total)
	}

	if len(counts) < 2 {
		return counts[0], 0
	}

	return stat.MeanStdDev(counts, nil)
}

func resultHeader() []string {
	return []string{"Source", "Class", "ID", "Method", "Operator", "Status", "Detail"}
}

func resultCells(source m.Path, r m.MutantResult) []string {
	return []string{
		string(source),
		r.Point.Class,
		fmt.Sprintf("%d", r.Point.ID),
		r.Point.Method,
		string(r.Point.Operator),
		r.Status.String(),
		r.Detail,
	}
}

// resultTotals sums status counts over reports.
func resultTotals(reports []m.Report) map[m.TestStatus]int {
	totals := make(map[m.TestStatus]int)

	for _, report := range reports {
		for status, n := range report.Counts() {
			totals[status] += n
		}
	}

	return totals
}

func formatTotals(totals map[m.TestStatus]int) string {
	return fmt.Sprintf("%d killed, %d survived, %d not covered, %d errors",
		totals[m.Killed], totals[m.Survived], totals[m.NotCovered], totals[m.Error])
}

func formatScore(score float64) string {
	return fmt.Sprintf("Mutation score: %.2f%%", score*100)
}
