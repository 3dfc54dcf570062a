package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/orbitype/internal/engine"
	"github.com/verte-zerg/orbitype/internal/model"
)

const standingsBarWidth = 24

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.result != nil {
		return m.place(m.renderResult())
	}
	if len(m.text) == 0 {
		return m.place("No text to type. Press esc to quit.")
	}
	snap := m.session.Snapshot()
	cursor := -1
	if snap.CurrentIndex < len(m.text) {
		cursor = snap.CurrentIndex
	}
	styled := buildStyledRunes(m.text, m.states, cursor, m.flash)
	if m.width == 0 || m.height == 0 {
		return renderStyledRunes(styled)
	}
	contentWidth := max(int(float64(m.width)*0.70), 1)
	parts := []string{}
	if header := m.renderHeader(); header != "" {
		parts = append(parts, header, "")
	}
	parts = append(parts, lipgloss.NewStyle().Width(contentWidth).Render(wrapStyledRunes(styled, contentWidth)))
	if len(m.standings) > 0 {
		parts = append(parts, "", m.renderStandings())
	}
	content := lipgloss.JoinVertical(lipgloss.Left, parts...)
	footer := m.renderFooter()
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	return body + "\n" + lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
}

func (m *Model) place(content string) string {
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) renderHeader() string {
	title := m.opts.Title
	if title == "" {
		title = modeTitle(m.opts.Mode)
	}
	if m.race != nil {
		if wait := m.race.StartAt.Sub(m.now()); wait > 0 {
			return titleStyle.Render(fmt.Sprintf("%s · starting in %d", title, int(math.Ceil(wait.Seconds()))))
		}
		return titleStyle.Render(title + " · go!")
	}
	return titleStyle.Render(title)
}

func (m *Model) renderFooter() string {
	snap := m.session.Snapshot()
	segments := []string{
		fmt.Sprintf("WPM %d", m.metrics.WPM),
		fmt.Sprintf("Acc %d%%", m.metrics.Accuracy),
		fmt.Sprintf("Progress %d%%", int(snap.Progress())),
	}
	if snap.ErrorCount > 0 {
		segments = append(segments, fmt.Sprintf("Errors %d", snap.ErrorCount))
	}
	help := "esc: quit"
	if snap.Phase == engine.PhaseInProgress {
		help = "esc: restart"
	}
	segments = append(segments, help)
	return footerStyle.Render(strings.Join(segments, "  ·  "))
}

func (m *Model) renderStandings() string {
	lines := make([]string, 0, len(m.standings))
	for i, st := range m.standings {
		filled := int(math.Round(st.Progress / 100 * standingsBarWidth))
		filled = max(0, min(filled, standingsBarWidth))
		bar := strings.Repeat("█", filled) + strings.Repeat("░", standingsBarWidth-filled)
		line := fmt.Sprintf("%d. %-10s %s %5.1f%%", i+1, st.Name, bar, st.Progress)
		if st.IsPlayer {
			line = playerStyle.Render(line)
		} else {
			line = footerStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderResult() string {
	r := m.result
	res := r.Summary.Result()
	lines := []string{
		titleStyle.Render("Session complete"),
		"",
		fmt.Sprintf("WPM %d  ·  Accuracy %d%%  ·  Errors %d  ·  Time %s", res.WPM, res.Accuracy, res.ErrorCount, res.Duration.Round(10*time.Millisecond)),
	}
	if academy, ok := r.Summary.(model.AcademySummary); ok {
		latency := "n/a"
		if academy.HasLatency {
			latency = academy.LatencyAvg.Round(time.Millisecond).String()
		}
		lines = append(lines, fmt.Sprintf("Rhythm %d/100  ·  Avg latency %s", academy.RhythmScore, latency))
		if r.Rhythm != nil && len(r.Rhythm.SlowPoints) > 0 && r.Rhythm.FastestStreak > 0 {
			lines = append(lines, fmt.Sprintf("Best streak %d keys  ·  %d hesitations", r.Rhythm.FastestStreak, len(r.Rhythm.SlowPoints)))
		}
	}
	if len(r.Race) > 0 {
		lines = append(lines, "")
		for _, rr := range r.Race {
			line := fmt.Sprintf("%d. %-10s %3d WPM  %s", rr.Position, rr.Participant, rr.WPM, (time.Duration(rr.FinishMs) * time.Millisecond).Round(10*time.Millisecond))
			if !rr.IsBot {
				line = playerStyle.Render(line)
			}
			lines = append(lines, line)
		}
	}
	lines = append(lines,
		"",
		fmt.Sprintf("Coach: %s", r.Drill),
		r.Advice,
		fmt.Sprintf("Next target: %d WPM", r.TargetWPM),
	)
	if m.saving {
		lines = append(lines, "", footerStyle.Render("saving..."))
	}
	if r.Warning != "" {
		lines = append(lines, "", incorrectStyle.Render(r.Warning+" (see log)"))
	}
	lines = append(lines, "", footerStyle.Render("enter: next  ·  esc: quit"))
	return strings.Join(lines, "\n")
}

func modeTitle(mode model.Mode) string {
	switch mode {
	case model.ModeAcademy:
		return "Academy"
	default:
		return "Velocity"
	}
}
