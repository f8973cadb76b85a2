package controller

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	m "gooze.dev/pkg/weave/internal/model"
)

const (
	maxColumnWidth = 48
	defaultRows    = 15
	// title, blank line, footer, help
	reservedLines = 6
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).MarginBottom(1)
	footerStyle = lipgloss.NewStyle().Faint(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// TUI implements UI with Bubble Tea tables for estimations and results.
// Progress output is shared with SimpleUI.
type TUI struct {
	*SimpleUI
	cmd  *cobra.Command
	mode StartMode
}

// NewTUI creates a new TUI.
func NewTUI(cmd *cobra.Command) *TUI {
	return &TUI{SimpleUI: NewSimpleUI(cmd), cmd: cmd}
}

// Start records the mode the UI runs in.
func (p *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mode = startConfig(options).mode

	return nil
}

// DisplayEstimation shows mutant counts in a scrollable table.
func (p *TUI) DisplayEstimation(ctx context.Context, points []m.MutationPoint, err error) error {
	if err != nil || p.mode != ModeEstimate {
		return p.SimpleUI.DisplayEstimation(ctx, points, err)
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	rows := buildEstimateRows(points)
	cells := make([][]string, 0, len(rows))

	for _, row := range rows {
		cells = append(cells, row.cells())
	}

	mean, std := mutantDensity(rows)
	footer := fmt.Sprintf("%s mutants | mean %.2f per method, stddev %.2f",
		estimateFooter(rows)[len(estimateHeader())-1], mean, std)

	return p.show(newTableModel("weave: mutation points", estimateHeader(), cells, footer))
}

// DisplayResults shows saved verdicts in a scrollable table.
func (p *TUI) DisplayResults(ctx context.Context, reports []m.Report) error {
	if p.mode != ModeView {
		return p.SimpleUI.DisplayResults(ctx, reports)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	var cells [][]string

	for _, report := range reports {
		for _, r := range report.Results {
			cells = append(cells, resultCells(report.Source, r))
		}
	}

	return p.show(newTableModel("weave: results", resultHeader(), cells, formatTotals(resultTotals(reports))))
}

func (p *TUI) show(model tableModel) error {
	program := tea.NewProgram(
		model,
		tea.WithInput(p.cmd.InOrStdin()),
		tea.WithOutput(p.cmd.OutOrStdout()),
		tea.WithAltScreen(),
	)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}

	return nil
}

// tableModel is a read-only table with a title and a summary line.
type tableModel struct {
	title    string
	footer   string
	table    table.Model
	quitting bool
}

func newTableModel(title string, header []string, cells [][]string, footer string) tableModel {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}

	rows := make([]table.Row, 0, len(cells))

	for _, row := range cells {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = min(lipgloss.Width(cell), maxColumnWidth)
			}
		}

		rows = append(rows, table.Row(row))
	}

	columns := make([]table.Column, len(header))
	for i, h := range header {
		columns[i] = table.Column{Title: h, Width: widths[i]}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(min(max(len(rows), 1), defaultRows)),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true)
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("14"))
	t.SetStyles(styles)

	return tableModel{title: title, footer: footer, table: t}
}

func (tm tableModel) Init() tea.Cmd {
	return nil
}

func (tm tableModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		tm.table.SetHeight(max(msg.Height-reservedLines, 1))

		return tm, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			tm.quitting = true
			return tm, tea.Quit
		}
	}

	var cmd tea.Cmd
	tm.table, cmd = tm.table.Update(msg)

	return tm, cmd
}

func (tm tableModel) View() string {
	if tm.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(tm.title))
	b.WriteString("\n")
	b.WriteString(tm.table.View())
	b.WriteString("\n\n")
	b.WriteString(footerStyle.Render(tm.footer))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(fmt.Sprintf("row %d/%d | ↑/k up | ↓/j down | q quit", tm.table.Cursor()+1, len(tm.table.Rows()))))
	b.WriteString("\n")

	return b.String()
}
