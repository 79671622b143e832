package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Elide says how a cell wider than its column is shortened.
type Elide int

const (
	ElideEnd    Elide = iota // keep the head: "Tez Ca…"
	ElideMiddle              // keep both ends: "ipfs://baf…/7.json"
	ElideNone                // print in full; the rest of the row shifts right
)

// Column defines a table column. Width is in terminal cells.
type Column struct {
	Title string
	Width int
	Elide Elide
}

// Row is a slice of cell values. Cells may already be styled.
type Row []string

// Table renders fixed-width columns under a header and a divider.
type Table struct {
	Columns []Column
	Rows    []Row
}

// NewTable creates a new table.
func NewTable(cols []Column) *Table {
	return &Table{Columns: cols}
}

// AddRow appends a row.
func (t *Table) AddRow(r Row) {
	t.Rows = append(t.Rows, r)
}

var (
	tableHeader  = lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true)
	tableCell    = lipgloss.NewStyle().Foreground(ColorValue)
	tableDivider = lipgloss.NewStyle().Foreground(ColorMeta)
)

// Render returns the full table as a string. Widths are measured in cells,
// so ANSI styling and glyphs such as ✓ or … do not shift the columns.
func (t *Table) Render() string {
	var sb strings.Builder

	headers := make([]string, len(t.Columns))
	divider := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		headers[i] = tableHeader.Render(fit(col.Title, col.Width, ElideEnd))
		divider[i] = tableDivider.Render(strings.Repeat("-", col.Width))
	}
	sb.WriteString(strings.Join(headers, " ") + "\n")
	sb.WriteString(strings.Join(divider, " ") + "\n")

	for _, row := range t.Rows {
		cells := make([]string, len(t.Columns))
		for j, col := range t.Columns {
			val := ""
			if j < len(row) {
				val = row[j]
			}
			cells[j] = tableCell.Render(fit(val, col.Width, col.Elide))
		}
		sb.WriteString(strings.Join(cells, " ") + "\n")
	}
	return sb.String()
}

// fit pads s to width cells, shortening it first according to mode.
func fit(s string, width int, mode Elide) string {
	if width <= 0 {
		return s
	}
	if ansi.StringWidth(s) > width {
		switch mode {
		case ElideNone:
			return s
		case ElideMiddle:
			s = elideMiddle(s, width)
		default:
			s = ansi.Truncate(s, width, "…")
		}
	}
	return s + strings.Repeat(" ", max(0, width-ansi.StringWidth(s)))
}

func elideMiddle(s string, width int) string {
	if width < 3 {
		return ansi.Truncate(s, width, "")
	}
	tail := (width - 1) / 2
	head := width - 1 - tail
	return ansi.Truncate(s, head, "") + "…" + ansi.TruncateLeft(s, ansi.StringWidth(s)-tail, "")
}

// KeyValueBlock renders key-value pairs in a bordered box. Keys are aligned
// on the longest one; values are never wrapped, so links and hashes stay
// copyable.
func KeyValueBlock(title string, pairs [][2]string) string {
	keyWidth := 0
	for _, p := range pairs {
		keyWidth = max(keyWidth, ansi.StringWidth(p[0])+1)
	}

	var sb strings.Builder
	if title != "" {
		sb.WriteString(StyleTitle.Render(title))
		sb.WriteString("\n")
	}
	for _, p := range pairs {
		key := StyleMeta.Render(fit(p[0]+":", keyWidth, ElideNone))
		sb.WriteString("  " + key + "  " + StyleValue.Render(p[1]) + "\n")
	}
	return StyleBorder.Render(strings.TrimSuffix(sb.String(), "\n"))
}
