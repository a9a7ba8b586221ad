// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mny-engine/mny/internal/report"
)

var (
	// PrimaryColor is the main theme color.
	PrimaryColor = lipgloss.Color("#4ECDC4")
	// ErrorColor indicates errors or negative balances.
	ErrorColor = lipgloss.Color("#FF6B6B")
	// SubtleColor indicates less prominent UI elements.
	SubtleColor = lipgloss.Color("#666666")

	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	// SuccessStyle formats success messages.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	// ErrorStyle formats error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	// SubtleStyle formats less prominent text.
	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	// TableHeaderStyle is used for table headers.
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(lipgloss.Color("#333"))

	// TableCellStyle formats table cells with appropriate padding.
	TableCellStyle = lipgloss.NewStyle().
			PaddingRight(2)
)

// RenderRows formats report rows as an aligned table.
func RenderRows(rows []report.Row) string {
	if len(rows) == 0 {
		return SubtleStyle.Render("No transactions.")
	}

	headers := []string{"Date", "Account", "Type", "From", "To", "Category", "Amount", "Balance", "Status"}
	table := make([][]string, 0, len(rows)+1)
	table = append(table, headers)
	for _, r := range rows {
		table = append(table, []string{
			r.Date.Format("2006-01-02"),
			r.Account,
			string(r.Type),
			r.From,
			r.To,
			r.Category,
			r.Amount,
			r.Balance,
			string(r.Status),
		})
	}

	widths := make([]int, len(headers))
	for _, row := range table {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	for n, row := range table {
		cells := make([]string, len(row))
		for i, cell := range row {
			padded := fmt.Sprintf("%-*s", widths[i], cell)
			if n == 0 {
				cells[i] = padded
			} else {
				cells[i] = TableCellStyle.Render(padded)
			}
		}
		if n == 0 {
			// The header joins on the cell style's padding width so its
			// columns line up with the styled data cells below.
			b.WriteString(TableHeaderStyle.Render(strings.TrimRight(strings.Join(cells, "  "), " ")))
		} else {
			b.WriteString(strings.TrimRight(strings.Join(cells, ""), " "))
		}
		b.WriteString("\n")
	}
	return b.String()
}
