package stats

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/verte-zerg/orbitype/internal/heatmap"
	"github.com/verte-zerg/orbitype/internal/model"
)

const (
	terminalWidthBackup = 80
	curveLabelWidth     = 10
	// KeyTableRows limits the plain key table.
	KeyTableRows = 15
)

// TerminalWidth returns the width of stdout or a fallback when it is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// RenderSummary prints the overview block.
func RenderSummary(w io.Writer, o Overview) error {
	if o.Sessions == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d (velocity %d, academy %d)", o.Sessions, o.Velocity, o.Academy),
		fmt.Sprintf("Avg WPM: %.1f", o.AvgWPM),
		fmt.Sprintf("Best WPM: %d", o.BestWPM),
		fmt.Sprintf("Avg Accuracy: %.1f%%", o.AvgAccuracy),
		fmt.Sprintf("Practice time: %s", o.TotalTime.Round(time.Second)),
	}
	if o.HasRhythm {
		lines = append(lines, fmt.Sprintf("Avg Rhythm: %.0f/100", o.AvgRhythm))
	}
	lines = append(lines, "")
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurves prints WPM and accuracy sparklines smoothed over window.
func RenderCurves(w io.Writer, sessions []model.SessionAggregate, window, totalWidth int) error {
	if len(sessions) == 0 {
		return nil
	}
	wpm, acc := Series(sessions)
	width := max(totalWidth-curveLabelWidth, 10)
	rows := []struct {
		label  string
		values []float64
	}{
		{"WPM", MovingAverage(wpm, window)},
		{"Accuracy", MovingAverage(acc, window)},
	}
	if _, err := fmt.Fprintln(w, "Learning Curves"); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(w, "%-*s%s\n", curveLabelWidth, row.label, Sparkline(row.values, width)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderKeyTable prints the weakest keys with their accuracy band.
func RenderKeyTable(w io.Writer, heat *heatmap.Heatmap, limit int) error {
	if heat == nil || heat.Len() == 0 {
		_, err := fmt.Fprintln(w, "No key stats found.")
		return err
	}
	keys := heat.Weakest(limit)
	if len(keys) == 0 {
		_, err := fmt.Fprintf(w, "Not enough data yet (keys need %d presses).\n", heatmap.MinPresses)
		return err
	}
	if _, err := fmt.Fprintln(w, "Weakest Keys"); err != nil {
		return err
	}
	rows := KeyRows(keys)
	for i, k := range keys {
		rows[i] = append(rows[i], bandMeter(heatmap.BandFor(k.Accuracy(), k.Presses > 0)))
	}
	for _, line := range layoutTable(keyColumns, rows) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// KeyRows formats key stats as table cells.
func KeyRows(keys []model.KeyStat) [][]string {
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		acc := k.Accuracy()
		rows = append(rows, []string{
			KeyLabel(k.Key),
			fmt.Sprintf("%.1f%%", acc),
			strconv.Itoa(k.Presses),
			strconv.Itoa(k.Errors),
			heatmap.BandFor(acc, k.Presses > 0).String(),
		})
	}
	return rows
}

// KeyLabel makes whitespace keys visible.
func KeyLabel(r rune) string {
	switch r {
	case ' ':
		return "<space>"
	case '\t':
		return "<tab>"
	}
	return string(r)
}

// TopKeys is how many keys the most-typed line lists.
const TopKeys = 8

// RenderTopKeys prints the most pressed keys on one line.
func RenderTopKeys(w io.Writer, heat *heatmap.Heatmap, n int) error {
	if heat == nil {
		return nil
	}
	top := TopKeysByFrequency(heat.Stats(), n)
	if len(top) == 0 {
		return nil
	}
	parts := make([]string, len(top))
	for i, k := range top {
		parts[i] = fmt.Sprintf("%s %d", KeyLabel(k.Key), k.Presses)
	}
	_, err := fmt.Fprintf(w, "Most typed: %s\n\n", strings.Join(parts, " · "))
	return err
}

// RenderPlain writes the whole report without a TUI.
func RenderPlain(w io.Writer, r Report, window, width int) error {
	if err := RenderSummary(w, r.Overview); err != nil {
		return err
	}
	if err := RenderCurves(w, r.Sessions, window, width); err != nil {
		return err
	}
	if err := RenderTopKeys(w, r.Heat, TopKeys); err != nil {
		return err
	}
	return RenderKeyTable(w, r.Heat, KeyTableRows)
}
