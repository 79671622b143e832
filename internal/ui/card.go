package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Card is everything shown for one token.
type Card struct {
	ID          string
	Owner       string
	URI         string
	Name        string
	Description string
	Image       string
	Attributes  [][2]string // trait type, value
	Link        string      // explorer link, optional
	Err         string      // metadata failure, if any
}

const cardTextWidth = 54

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorChain).
			Padding(0, 1)

	// prose wraps; URIs and links below it never do
	cardText = lipgloss.NewStyle().Width(cardTextWidth)

	traitStyle = lipgloss.NewStyle().
			Foreground(ColorValue).
			Background(ColorBorder).
			Padding(0, 1)
)

// TokenCard renders one token with its metadata.
func TokenCard(c Card) string {
	var sb strings.Builder

	title := "NFT #" + c.ID
	if c.Name != "" {
		title = c.Name + "  " + StyleMeta.Render("#"+c.ID)
	}
	sb.WriteString(StyleChain.Render(title) + "\n")

	switch {
	case c.Err != "":
		sb.WriteString(StyleError.Render("Failed to load metadata") + "\n")
		sb.WriteString(cardText.Render(StyleMeta.Render(c.Err)) + "\n")
	case c.Description != "":
		sb.WriteString(cardText.Render(c.Description) + "\n")
	}

	if len(c.Attributes) > 0 {
		sb.WriteString("\n")
		sb.WriteString(traitRows(c.Attributes) + "\n")
	}

	sb.WriteString("\n")
	sb.WriteString(StyleMeta.Render("Owner  ") + Addr(TruncateAddr(c.Owner)) + "\n")
	if c.Image != "" {
		sb.WriteString(StyleMeta.Render("Image  ") + c.Image + "\n")
	}
	sb.WriteString(StyleMeta.Render("URI    ") + c.URI)
	if c.Link != "" {
		sb.WriteString("\n" + StyleMeta.Render("View   ") + c.Link)
	}

	return cardStyle.Render(sb.String())
}

// traitRows lays trait chips out left to right, starting a new row rather
// than splitting a chip.
func traitRows(attrs [][2]string) string {
	var rows []string
	line, width := "", 0
	for _, a := range attrs {
		chip := traitStyle.Render(a[0] + ": " + a[1])
		w := lipgloss.Width(chip)
		if width > 0 && width+1+w > cardTextWidth {
			rows = append(rows, line)
			line, width = "", 0
		}
		if width > 0 {
			line += " "
			width++
		}
		line += chip
		width += w
	}
	return strings.Join(append(rows, line), "\n")
}

// TokenTable renders a compact listing: id, name and URI per row.
func TokenTable(rows []Row) string {
	t := NewTable([]Column{
		{Title: "ID", Width: 8, Elide: ElideNone},
		{Title: "NAME", Width: 24},
		{Title: "TOKEN URI", Width: 60, Elide: ElideMiddle},
	})
	for _, r := range rows {
		t.AddRow(r)
	}
	return t.Render()
}
