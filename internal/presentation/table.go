package presentation

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"
)

// Truncate shortens s to width terminal columns. Wide (CJK) runes count as
// two columns.
func Truncate(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// Table writes rows under headers. Cells are truncated to the formatter's
// max cell width.
func (f *Formatter) Table(headers []string, rows [][]string) error {
	clipped := make([][]string, len(rows))
	for i, row := range rows {
		clipped[i] = make([]string, len(row))
		for j, cell := range row {
			clipped[i][j] = Truncate(cell, f.maxCellWidth)
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(clipped...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return f.println(t.String())
}

// fields renders a two-column key/value block.
func (f *Formatter) fields(pairs [][2]string) error {
	width := 0
	for _, p := range pairs {
		if w := runewidth.StringWidth(p[0]); w > width {
			width = w
		}
	}
	for _, p := range pairs {
		key := runewidth.FillRight(p[0], width)
		if err := f.println(labelStyle.Render(key) + "  " + p[1]); err != nil {
			return err
		}
	}
	return nil
}
