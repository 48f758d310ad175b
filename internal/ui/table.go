package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Column defines a table column.
type Column struct {
	Title string
	Width int
	Right bool // right-align, for amounts
}

// Row is a slice of cell values. Cells may already be styled.
type Row []string

// Table renders a lipgloss-styled table.
type Table struct {
	Columns []Column
	Rows    []Row
	Footer  Row
	SelIdx  int // selected row index (-1 = none)
}

// NewTable creates a new table.
func NewTable(cols []Column) *Table {
	return &Table{Columns: cols, SelIdx: -1}
}

// AddRow appends a row.
func (t *Table) AddRow(r Row) {
	t.Rows = append(t.Rows, r)
}

// Render returns the full table as a string. Widths are measured in
// terminal cells so styled cells and wide glyphs line up.
func (t *Table) Render() string {
	var sb strings.Builder

	headerStyle := lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true)
	cellStyle := lipgloss.NewStyle().Foreground(ColorValue)
	dimStyle := lipgloss.NewStyle().Foreground(ColorMeta)

	line := func(cells []string) {
		sb.WriteString(strings.Join(cells, " "))
		sb.WriteString("\n")
	}
	divider := func() {
		var parts []string
		for _, col := range t.Columns {
			parts = append(parts, dimStyle.Render(strings.Repeat("-", col.Width)))
		}
		line(parts)
	}
	row := func(r Row, style lipgloss.Style) {
		var cells []string
		for j, col := range t.Columns {
			val := ""
			if j < len(r) {
				val = r[j]
			}
			cells = append(cells, style.Render(fit(val, col.Width, col.Right)))
		}
		line(cells)
	}

	var headers []string
	for _, col := range t.Columns {
		headers = append(headers, headerStyle.Render(fit(col.Title, col.Width, col.Right)))
	}
	line(headers)
	divider()

	for i, r := range t.Rows {
		if i == t.SelIdx {
			row(r, StyleSelected)
		} else {
			row(r, cellStyle)
		}
	}

	if len(t.Footer) > 0 {
		divider()
		row(t.Footer, StyleValue)
	}
	return sb.String()
}

// fit pads or truncates s to exactly width cells.
func fit(s string, width int, right bool) string {
	if width <= 0 {
		return ""
	}
	if ansi.StringWidth(s) > width {
		s = ansi.Truncate(s, width, "…")
	}
	gap := strings.Repeat(" ", width-ansi.StringWidth(s))
	if right {
		return gap + s
	}
	return s + gap
}

// KeyValueBlock renders a set of key-value pairs in a bordered box.
func KeyValueBlock(title string, pairs [][2]string) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString(StyleTitle.Render(title))
		sb.WriteString("\n")
	}
	for _, p := range pairs {
		key := StyleMeta.Render(fmt.Sprintf("%-22s", p[0]+":"))
		sb.WriteString("  " + key + " " + p[1] + "\n")
	}
	return StyleBorder.Render(sb.String())
}
