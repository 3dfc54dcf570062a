package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/orbitype/internal/heatmap"
)

// column is one column of a plain text table.
type column struct {
	title string
	right bool
}

// keyColumns lay out KeyRows followed by a band meter.
var keyColumns = []column{
	{title: "Key"},
	{title: "Accuracy", right: true},
	{title: "Presses", right: true},
	{title: "Errors", right: true},
	{title: "Band"},
	{title: ""},
}

// bandMeter draws a band as a four step bar so weak keys stand out on
// terminals without color.
func bandMeter(b heatmap.Band) string {
	filled := int(b - heatmap.BandNone)
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", int(heatmap.BandStrong)-filled) + "]"
}

// layoutTable pads every cell to its column's display width, header first.
// Trailing blanks are dropped from each line.
func layoutTable(cols []column, rows [][]string) []string {
	if len(cols) == 0 {
		return nil
	}
	header := make([]string, len(cols))
	widths := make([]int, len(cols))
	for i, c := range cols {
		header[i] = c.title
		widths[i] = runewidth.StringWidth(c.title)
	}
	for _, row := range rows {
		for i := 0; i < len(cols) && i < len(row); i++ {
			widths[i] = max(widths[i], runewidth.StringWidth(row[i]))
		}
	}

	lines := make([]string, 0, len(rows)+1)
	for _, cells := range append([][]string{header}, rows...) {
		var b strings.Builder
		for i, c := range cols {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			if i > 0 {
				b.WriteByte(' ')
			}
			if c.right {
				b.WriteString(runewidth.FillLeft(cell, widths[i]))
			} else {
				b.WriteString(runewidth.FillRight(cell, widths[i]))
			}
		}
		lines = append(lines, strings.TrimRight(b.String(), " "))
	}
	return lines
}
