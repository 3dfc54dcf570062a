// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/orbitype/internal/model"
	"github.com/verte-zerg/orbitype/internal/stats"
)

const (
	tabOverview = iota
	tabKeys
	tabCoach
)

const defaultWidth = 80

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	src    stats.Source
	cfg    model.StatsConfig
	logger *zap.Logger

	report stats.Report
	errMsg string

	tabs      []string
	activeTab int
	viewports []viewport.Model
	keyTable  table.Model
	help      help.Model

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

// NewModel constructs a stats UI model.
func NewModel(src stats.Source, cfg model.StatsConfig, logger *zap.Logger) *Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Model{
		src:    src,
		cfg:    cfg,
		logger: logger,
		tabs:   []string{"Overview", "Keys", "Coach"},
	}
	m.filterInputs = newFilterInputs()
	m.keyTable = newKeyTable()
	m.help = help.New()
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || (!m.filterMode && key.Matches(msg, keys.Quit)) {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch {
		case key.Matches(msg, keys.Prev):
			m.moveTab(-1)
			return m, tea.ClearScreen
		case key.Matches(msg, keys.Next):
			m.moveTab(1)
			return m, tea.ClearScreen
		case key.Matches(msg, keys.Wider):
			m.cfg.CurveWindow = nextCurveWindow(m.cfg.CurveWindow)
			m.renderTabContents()
			return m, nil
		case key.Matches(msg, keys.Narrow):
			m.cfg.CurveWindow = prevCurveWindow(m.cfg.CurveWindow)
			m.renderTabContents()
			return m, nil
		case key.Matches(msg, keys.Mode):
			m.cfg.Mode = nextModeFilter(m.cfg.Mode)
			m.refreshReport()
			return m, nil
		case key.Matches(msg, keys.Reload):
			m.refreshReport()
			return m, nil
		case key.Matches(msg, keys.Filter):
			return m.startFilter()
		case key.Matches(msg, keys.Top):
			m.scrollTo(true)
			return m, nil
		case key.Matches(msg, keys.Bottom):
			m.scrollTo(false)
			return m, nil
		}
		var cmd tea.Cmd
		if m.activeTab == tabKeys {
			m.keyTable, cmd = m.keyTable.Update(msg)
			return m, cmd
		}
		m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := block(m.renderHeader(), m.width, headerHeight)
	body := block(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := block(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

// Config returns the active filters.
func (m *Model) Config() model.StatsConfig {
	return m.cfg
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.src, m.cfg)
	if err != nil {
		m.logger.Warn("stats report failed", zap.Error(err))
		m.errMsg = err.Error()
		m.report = stats.Report{}
		m.renderTabContents()
		return
	}
	m.errMsg = ""
	m.report = report
	m.keyTable.SetRows(keyTableRows(report.Heat))
	m.keyTable.GotoTop()
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if m.errMsg != "" {
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load stats.")
		}
		return
	}
	width := m.contentWidth()
	m.viewports[tabOverview].SetContent(renderOverview(m.report, m.cfg.CurveWindow, width))
	m.viewports[tabKeys].SetContent(renderKeyboard(m.report.Heat))
	m.viewports[tabCoach].SetContent(renderCoach(m.report, width))
}

func (m *Model) contentWidth() int {
	if m.width <= 0 {
		return defaultWidth
	}
	return m.width
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	m.activeTab = (m.activeTab + delta + count) % count
	if m.activeTab == tabKeys {
		m.keyTable.Focus()
	} else {
		m.keyTable.Blur()
	}
}

func (m *Model) scrollTo(top bool) {
	switch {
	case m.activeTab == tabKeys && top:
		m.keyTable.GotoTop()
	case m.activeTab == tabKeys:
		m.keyTable.GotoBottom()
	case top:
		m.viewports[m.activeTab].GotoTop()
	default:
		m.viewports[m.activeTab].GotoBottom()
	}
}

func nextModeFilter(mode *model.Mode) *model.Mode {
	var next model.Mode
	switch {
	case mode == nil:
		next = model.ModeVelocity
	case *mode == model.ModeVelocity:
		next = model.ModeAcademy
	default:
		return nil
	}
	return &next
}

func nextCurveWindow(n int) int {
	if n < 5 {
		return 5
	}
	return (n/5 + 1) * 5
}

func prevCurveWindow(n int) int {
	if n <= 5 {
		return 1
	}
	if n%5 == 0 {
		return n - 5
	}
	return (n / 5) * 5
}
