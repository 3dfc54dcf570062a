package statsui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/orbitype/internal/heatmap"
	"github.com/verte-zerg/orbitype/internal/model"
)

type fakeSource struct {
	sessions []model.SessionAggregate
	keys     []model.KeyStat
	err      error
	lastCfg  model.StatsConfig
}

func (f *fakeSource) ListSessions(_ context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	f.lastCfg = cfg
	return f.sessions, f.err
}

func (f *fakeSource) LoadKeyStats(context.Context) ([]model.KeyStat, error) {
	return f.keys, f.err
}

func sampleSource() *fakeSource {
	return &fakeSource{
		sessions: []model.SessionAggregate{
			{SessionID: "a", Mode: model.ModeVelocity, WPM: 40, Accuracy: 92, DurationMs: 30000},
			{SessionID: "b", Mode: model.ModeVelocity, WPM: 55, Accuracy: 97, DurationMs: 30000},
		},
		keys: []model.KeyStat{
			{Key: 'e', Presses: 40, Errors: 1},
			{Key: 'q', Presses: 10, Errors: 6},
		},
	}
}

func sized(t *testing.T, m *Model) *Model {
	t.Helper()
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(*Model)
}

func press(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestOverviewShowsCards(t *testing.T) {
	m := sized(t, NewModel(sampleSource(), model.StatsConfig{CurveWindow: 5}, nil))
	view := m.View()
	for _, want := range []string{"Overview", "Avg WPM", "47.5", "Best WPM", "Learning Curves"} {
		assert.Contains(t, view, want)
	}
}

func TestTabsWrap(t *testing.T) {
	m := sized(t, NewModel(sampleSource(), model.StatsConfig{CurveWindow: 5}, nil))
	m.Update(press("left"))
	assert.Equal(t, tabCoach, m.activeTab)
	m.Update(press("right"))
	assert.Equal(t, tabOverview, m.activeTab)
	m.Update(press("right"))
	assert.Equal(t, tabKeys, m.activeTab)

	view := m.View()
	assert.Contains(t, view, "Accuracy")
	assert.Contains(t, view, "space")
}

func TestKeyTableRowsWeakestFirst(t *testing.T) {
	rows := keyTableRows(heatmap.FromStats(sampleSource().keys))
	require.Len(t, rows, 2)
	assert.Equal(t, "q", rows[0][0])
	assert.Equal(t, "40.0%", rows[0][1])
	assert.Equal(t, "e", rows[1][0])
}

func TestModeCycle(t *testing.T) {
	src := sampleSource()
	m := NewModel(src, model.StatsConfig{}, nil)
	m.Update(press("m"))
	require.NotNil(t, src.lastCfg.Mode)
	assert.Equal(t, model.ModeVelocity, *src.lastCfg.Mode)
	m.Update(press("m"))
	assert.Equal(t, model.ModeAcademy, *src.lastCfg.Mode)
	m.Update(press("m"))
	assert.Nil(t, src.lastCfg.Mode)
}

func TestCurveWindowSteps(t *testing.T) {
	tests := []struct {
		in, next, prev int
	}{
		{in: 1, next: 5, prev: 1},
		{in: 5, next: 10, prev: 1},
		{in: 7, next: 10, prev: 5},
		{in: 20, next: 25, prev: 15},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.next, nextCurveWindow(tt.in), "next(%d)", tt.in)
		assert.Equal(t, tt.prev, prevCurveWindow(tt.in), "prev(%d)", tt.in)
	}
}

func TestParseFilter(t *testing.T) {
	cfg, err := parseFilter([]string{"en", "academy", "2024-03-01", "10", "4"})
	require.NoError(t, err)
	assert.Equal(t, "en", cfg.Lang)
	require.NotNil(t, cfg.Mode)
	assert.Equal(t, model.ModeAcademy, *cfg.Mode)
	require.NotNil(t, cfg.Since)
	assert.Equal(t, time.March, cfg.Since.Month())
	assert.Equal(t, 10, cfg.Last)
	assert.Equal(t, 4, cfg.CurveWindow)

	invalid := [][]string{
		{"", "turbo", "", "", ""},
		{"", "", "yesterday", "", ""},
		{"", "", "", "-1", ""},
		{"", "", "", "", "0"},
	}
	for _, values := range invalid {
		_, err := parseFilter(values)
		assert.Error(t, err, "%v", values)
	}
}

func TestFilterFormApplies(t *testing.T) {
	src := sampleSource()
	m := sized(t, NewModel(src, model.StatsConfig{CurveWindow: 5}, nil))
	m.Update(press("/"))
	require.True(t, m.filterMode)
	m.Update(press("fr"))
	m.Update(press("enter"))
	assert.False(t, m.filterMode)
	assert.Equal(t, "fr", src.lastCfg.Lang)
	assert.Equal(t, "fr", m.Config().Lang)
}

func TestLoadErrorShown(t *testing.T) {
	m := sized(t, NewModel(&fakeSource{err: errors.New("db locked")}, model.StatsConfig{}, nil))
	view := m.View()
	assert.Contains(t, view, "Failed to load stats.")
	assert.Contains(t, view, "db locked")
}

func TestRenderKeyboardHasEveryRow(t *testing.T) {
	out := renderKeyboard(nil)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, len(heatmap.KeyboardRows)+1)
	assert.Contains(t, out, "no data")
}

func TestFooterListsBindings(t *testing.T) {
	m := sized(t, NewModel(sampleSource(), model.StatsConfig{CurveWindow: 5}, nil))
	view := m.View()
	assert.Contains(t, view, "prev tab")
	assert.Contains(t, view, "next tab")

	_, cmd := m.Update(press("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
