package preview

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// DefaultWidth is the inner width of a rendered card in cells.
const DefaultWidth = 36

var (
	cardInk   = lipgloss.Color("#1F2937")
	dimmedInk = lipgloss.Color("#6B7280")
)

// Render draws the face as a colored block of text. width is the inner
// width; values below the number line's width are raised to fit it.
func Render(f Face, width int) string {
	if minWidth := lipgloss.Width(f.NumberLine()) + NumberBlocks - 1; width < minWidth {
		width = minWidth
	}

	bg := lipgloss.Color(f.Background)
	base := lipgloss.NewStyle().Background(bg).Foreground(cardInk)

	seg := func(s Segment) lipgloss.Style {
		st := base
		if s.Dimmed {
			st = st.Foreground(dimmedInk).Faint(true)
		}
		return st
	}

	holder := seg(f.Holder).Bold(true).Width(width).Render(f.Holder.Text)

	blockWidth := width / NumberBlocks
	blocks := make([]string, NumberBlocks)
	for i, b := range f.Blocks {
		w := blockWidth
		if i == NumberBlocks-1 {
			w = width - blockWidth*(NumberBlocks-1)
		}
		blocks[i] = seg(b).Bold(true).Width(w).Align(lipgloss.Center).Render(b.Text)
	}
	number := lipgloss.JoinHorizontal(lipgloss.Top, blocks...)

	cvcText := seg(f.CVC).Render(f.CVC.Text)
	expiryWidth := width - lipgloss.Width(cvcText)
	if expiryWidth < 0 {
		expiryWidth = 0
	}
	details := lipgloss.JoinHorizontal(lipgloss.Top,
		seg(f.Expiry).Width(expiryWidth).Render(f.Expiry.Text),
		cvcText,
	)

	blank := base.Width(width).Render("")
	body := strings.Join([]string{holder, blank, number, blank, details}, "\n")

	return lipgloss.NewStyle().
		Background(bg).
		Padding(1, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(bg).
		Render(body)
}

// Swatch renders a two-cell block in the card color, for compact lists.
func Swatch(f Face) string {
	if f.Background == "" {
		return lipgloss.NewStyle().Foreground(dimmedInk).Render("██")
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(f.Background)).Render("██")
}
