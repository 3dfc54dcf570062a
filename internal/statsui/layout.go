package statsui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// block pins s to a width x height area. Extra rows are cut and the rest is
// padded with blanks so tab switches never shift the footer.
func block(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	clipped := lipgloss.NewStyle().MaxHeight(height).Render(s)
	return lipgloss.Place(width, height, lipgloss.Left, lipgloss.Top, clipped)
}

func ellipsize(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}
