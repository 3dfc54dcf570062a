package statsui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/orbitype/internal/coach"
	"github.com/verte-zerg/orbitype/internal/heatmap"
	"github.com/verte-zerg/orbitype/internal/stats"
)

var (
	cardStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	keyCapStyle     = lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("#101010"))

	bandColors = map[heatmap.Band]lipgloss.Color{
		heatmap.BandNone:   lipgloss.Color("#4A4A4A"),
		heatmap.BandWeak:   lipgloss.Color("#FF4D4F"),
		heatmap.BandFair:   lipgloss.Color("#F0A020"),
		heatmap.BandGood:   lipgloss.Color("#C8C83A"),
		heatmap.BandStrong: lipgloss.Color("#4CAF50"),
	}
)

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := max(lipgloss.Height(activeNavStyle.Render("X")), 1)
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = max(m.height-headerHeight-footerHeight, 1)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	keyboardHeight := lipgloss.Height(renderKeyboard(m.report.Heat))
	m.keyTable.SetWidth(m.width)
	m.help.Width = m.width
	m.keyTable.SetHeight(max(bodyHeight-keyboardHeight-2, 3))
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = max(10, m.width-promptWidth-2)
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	return m.renderTabs() + "\n" + m.renderFilterSummary()
}

func (m *Model) renderFilterSummary() string {
	lang := m.cfg.Lang
	if lang == "" {
		lang = "any"
	}
	mode := "any"
	if m.cfg.Mode != nil {
		mode = m.cfg.Mode.String()
	}
	since := "any"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format("2006-01-02")
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	summary := fmt.Sprintf("Settings: mode=%s  lang=%s  since=%s  last=%s  window=%d", mode, lang, since, last, m.cfg.CurveWindow)
	return headerStyle.Render(ellipsize(summary, m.width))
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	help := m.help.View(keys)
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func (m *Model) renderBody(height int) string {
	if m.filterMode {
		return block(m.renderFilterForm(), m.width, height)
	}
	if m.activeTab == tabKeys && m.errMsg == "" {
		if m.report.Heat == nil || m.report.Heat.Len() == 0 {
			return block("No key stats found.", m.width, height)
		}
		view := renderKeyboard(m.report.Heat) + "\n\n" + tableMutedStyle.Render(m.keyTable.View())
		return block(view, m.width, height)
	}
	return block(m.viewports[m.activeTab].View(), m.width, height)
}

func renderOverview(r stats.Report, window, width int) string {
	if len(r.Sessions) == 0 {
		return "No sessions found."
	}
	return strings.TrimRight(renderSummaryCards(r.Overview, width)+"\n\n"+renderCurves(r, window, width), "\n")
}

func renderSummaryCards(o stats.Overview, width int) string {
	rhythm := "n/a"
	if o.HasRhythm {
		rhythm = fmt.Sprintf("%.0f", o.AvgRhythm)
	}
	cards := []string{
		metricCard("Sessions", strconv.Itoa(o.Sessions)),
		metricCard("Avg WPM", fmt.Sprintf("%.1f", o.AvgWPM)),
		metricCard("Best WPM", strconv.Itoa(o.BestWPM)),
		metricCard("Avg Acc", fmt.Sprintf("%.1f%%", o.AvgAccuracy)),
		metricCard("Rhythm", rhythm),
		metricCard("Time", o.TotalTime.Round(time.Second).String()),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[:3]...)
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3:]...)
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

func metricCard(label, value string) string {
	return cardStyle.Render(cardTitleStyle.Render(label) + "\n" + cardValueStyle.Render(value))
}

func renderCurves(r stats.Report, window, width int) string {
	wpm, acc := stats.Series(r.Sessions)
	spark := max(width-12, 10)
	lines := []string{
		cardValueStyle.Render("Learning Curves") + headerStyle.Render(fmt.Sprintf("  (moving average of %d)", max(window, 1))),
		fmt.Sprintf("%-10s  %s", "WPM", stats.Sparkline(stats.MovingAverage(wpm, window), spark)),
		fmt.Sprintf("%-10s  %s", "Accuracy", stats.Sparkline(stats.MovingAverage(acc, window), spark)),
	}
	return strings.Join(lines, "\n")
}

// renderKeyboard draws the QWERTY layout colored by accuracy band. Keys are
// matched case-insensitively.
func renderKeyboard(heat *heatmap.Heatmap) string {
	if heat == nil {
		heat = heatmap.New()
	}
	rows := make([]string, 0, len(heatmap.KeyboardRows)+1)
	for i, row := range heatmap.KeyboardRows {
		caps := make([]string, 0, len(row))
		for _, r := range row {
			st, ok := heat.Fold(r)
			band := heatmap.BandFor(st.Accuracy(), ok && st.Presses > 0)
			label := string(r)
			if r == ' ' {
				label = strings.Repeat(" ", 20) + "space" + strings.Repeat(" ", 20)
			}
			caps = append(caps, keyCapStyle.Background(bandColors[band]).Render(label))
		}
		rows = append(rows, strings.Repeat(" ", i)+strings.Join(caps, " "))
	}
	legend := make([]string, 0, 5)
	for _, band := range []heatmap.Band{heatmap.BandWeak, heatmap.BandFair, heatmap.BandGood, heatmap.BandStrong, heatmap.BandNone} {
		legend = append(legend, lipgloss.NewStyle().Foreground(bandColors[band]).Render("■ "+band.String()))
	}
	rows = append(rows, strings.Join(legend, "  "))
	return strings.Join(rows, "\n")
}

func newKeyTable() table.Model {
	columns := []table.Column{
		{Title: "Key", Width: 7},
		{Title: "Accuracy", Width: 9},
		{Title: "Presses", Width: 8},
		{Title: "Errors", Width: 7},
		{Title: "Band", Width: 8},
	}
	t := table.New(table.WithColumns(columns), table.WithHeight(5))
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		PaddingLeft(0)
	styles.Cell = styles.Cell.PaddingLeft(0)
	styles.Selected = styles.Cell.Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	t.SetStyles(styles)
	return t
}

// keyTableRows lists every key, weakest first.
func keyTableRows(heat *heatmap.Heatmap) []table.Row {
	if heat == nil {
		return nil
	}
	keys := heat.Stats()
	sort.SliceStable(keys, func(i, j int) bool { return keys[i].Accuracy() < keys[j].Accuracy() })
	cells := stats.KeyRows(keys)
	rows := make([]table.Row, len(cells))
	for i, c := range cells {
		rows[i] = table.Row(c)
	}
	return rows
}

func renderCoach(r stats.Report, width int) string {
	report := coach.BuildReport(r.Summaries(), r.Heat)
	out, err := coach.Render(report.Markdown(), max(width-4, 20))
	if err != nil {
		return report.Markdown()
	}
	return strings.TrimRight(out, "\n")
}
