package statsui

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/orbitype/internal/model"
)

const dateLayout = "2006-01-02"

// filterField binds one settings input to a StatsConfig field. parse sees
// trimmed, non-empty text only.
type filterField struct {
	prompt string
	show   func(model.StatsConfig) string
	parse  func(*model.StatsConfig, string) error
}

var filterFields = []filterField{
	{
		prompt: "Lang: ",
		show:   func(c model.StatsConfig) string { return c.Lang },
		parse: func(c *model.StatsConfig, v string) error {
			c.Lang = v
			return nil
		},
	},
	{
		prompt: "Mode (velocity/academy): ",
		show: func(c model.StatsConfig) string {
			if c.Mode == nil {
				return ""
			}
			return c.Mode.String()
		},
		parse: func(c *model.StatsConfig, v string) error {
			mode, err := model.ParseMode(v)
			if err != nil {
				return errors.New("invalid mode (velocity or academy)")
			}
			c.Mode = &mode
			return nil
		},
	},
	{
		prompt: "Since (YYYY-MM-DD): ",
		show: func(c model.StatsConfig) string {
			if c.Since == nil {
				return ""
			}
			return c.Since.Format(dateLayout)
		},
		parse: func(c *model.StatsConfig, v string) error {
			since, err := time.ParseInLocation(dateLayout, v, time.Local)
			if err != nil {
				return errors.New("invalid since date (expected YYYY-MM-DD)")
			}
			c.Since = &since
			return nil
		},
	},
	{
		prompt: "Last sessions: ",
		show: func(c model.StatsConfig) string {
			if c.Last <= 0 {
				return ""
			}
			return strconv.Itoa(c.Last)
		},
		parse: func(c *model.StatsConfig, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return errors.New("invalid last value (use 0 or positive integer)")
			}
			c.Last = n
			return nil
		},
	},
	{
		prompt: "Curve window: ",
		show:   func(c model.StatsConfig) string { return strconv.Itoa(c.CurveWindow) },
		parse: func(c *model.StatsConfig, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				return errors.New("invalid curve window (use integer >= 1)")
			}
			c.CurveWindow = n
			return nil
		},
	},
}

func newFilterInputs() []textinput.Model {
	inputs := make([]textinput.Model, len(filterFields))
	for i, f := range filterFields {
		inputs[i] = textinput.New()
		inputs[i].Prompt = f.prompt
		inputs[i].Cursor.SetMode(cursor.CursorBlink)
	}
	return inputs
}

func (m *Model) setInputsFromConfig() {
	for i, f := range filterFields {
		m.filterInputs[i].SetValue(f.show(m.cfg))
	}
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromConfig()
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		cfg, err := parseFilter(m.filterValues())
		if err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.cfg = cfg
		m.filterMode = false
		m.filterError = ""
		m.refreshReport()
		m.updateLayout()
		return m, nil
	case tea.KeyTab, tea.KeyDown:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	m.filterIndex = (idx + count) % count
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) filterValues() []string {
	values := make([]string, len(m.filterInputs))
	for i, input := range m.filterInputs {
		values[i] = strings.TrimSpace(input.Value())
	}
	return values
}

func (m *Model) renderFilterForm() string {
	lines := []string{"Settings (enter to apply, esc to cancel)"}
	for _, input := range m.filterInputs {
		lines = append(lines, input.View())
	}
	if m.filterError != "" {
		lines = append(lines, errorStyle.Render(m.filterError))
	}
	return strings.Join(lines, "\n")
}

// parseFilter builds a stats config from the form values, one per field.
// Empty values keep the defaults.
func parseFilter(values []string) (model.StatsConfig, error) {
	cfg := model.StatsConfig{CurveWindow: 1}
	for i, f := range filterFields {
		if i >= len(values) || values[i] == "" {
			continue
		}
		if err := f.parse(&cfg, values[i]); err != nil {
			return model.StatsConfig{}, err
		}
	}
	return cfg, nil
}
