// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/orbitype/internal/engine"
	"github.com/verte-zerg/orbitype/internal/heatmap"
	"github.com/verte-zerg/orbitype/internal/keyinput"
	"github.com/verte-zerg/orbitype/internal/model"
	"github.com/verte-zerg/orbitype/internal/race"
	"github.com/verte-zerg/orbitype/internal/record"
	"github.com/verte-zerg/orbitype/internal/schedule"
)

const flashDuration = 150 * time.Millisecond

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	cursorStyle      = pendingStyle.Underline(true)
	flashStyle       = lipgloss.NewStyle().Background(lipgloss.Color("#FF4D4F")).Foreground(lipgloss.Color("#101010"))
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	titleStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	playerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

// Options configures a typing screen.
type Options struct {
	Mode  model.Mode
	Lang  string
	Title string
	// Text returns the next challenge text.
	Text func() string
	// Race creates the race for a new text. Nil means practice without bots.
	Race   func(textLength int, now time.Time) race.Race
	Store  record.Store
	Heat   *heatmap.Aggregator
	Logger *zap.Logger
	Now    func() time.Time
}

type metricsTickMsg struct {
	gen int
	at  time.Time
}

type raceTickMsg struct {
	gen int
	at  time.Time
}

type flashOffMsg struct {
	gen int
	seq int
}

type savedMsg struct {
	gen    int
	result *record.Result
}

// Model implements the Bubble Tea typing UI.
type Model struct {
	opts     Options
	logger   *zap.Logger
	now      func() time.Time
	recorder *record.Recorder

	width  int
	height int

	gen      int
	session  *engine.Session
	text     []rune
	states   []charState
	metrics  model.Metrics
	flash    bool
	flashSeq int

	race      *race.Race
	standings []race.Standing

	completed *model.Summary
	result    *record.Result
	saving    bool
	quitting  bool
}

// NewModel constructs a typing TUI model.
func NewModel(opts Options) *Model {
	m := &Model{opts: opts, logger: opts.Logger, now: opts.Now}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.opts.Text == nil {
		m.opts.Text = func() string { return "" }
	}
	m.recorder = record.NewRecorder(opts.Store, opts.Heat, m.logger)
	m.reset()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.tickCmds()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case metricsTickMsg:
		if msg.gen != m.gen || m.session.Phase() == engine.PhaseComplete {
			return m, nil
		}
		m.metrics = engine.LiveMetrics(m.session.Snapshot(), msg.at)
		return m, metricsTick(m.gen)
	case raceTickMsg:
		if msg.gen != m.gen || m.race == nil || m.result != nil {
			return m, nil
		}
		m.updateStandings(msg.at)
		return m, raceTick(m.gen)
	case flashOffMsg:
		if msg.gen == m.gen && msg.seq == m.flashSeq {
			m.flash = false
		}
		return m, nil
	case savedMsg:
		if msg.gen == m.gen {
			m.result = msg.result
			m.saving = false
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyEsc:
		if m.result != nil || m.session.Phase() == engine.PhaseNotStarted {
			m.quitting = true
			return m, tea.Quit
		}
		m.logger.Debug("session aborted", zap.String("mode", m.opts.Mode.String()))
		m.reset()
		return m, m.tickCmds()
	case tea.KeyEnter:
		if m.result != nil {
			m.reset()
			return m, m.tickCmds()
		}
		return m, nil
	}
	if m.result != nil {
		return m, nil
	}
	now := m.now()
	if m.race != nil && now.Before(m.race.StartAt) {
		return m, nil
	}
	ev, ok := keyinput.FromTea(msg, now)
	if !ok || (ev.Backspace && !keyinput.AcceptsBackspace(m.opts.Mode)) {
		return m, nil
	}
	index := m.session.Snapshot().CurrentIndex
	m.flash = false
	out := m.session.Apply(ev)
	if !out.Accepted {
		return m, nil
	}
	m.track(ev, index, out)
	if out.Completed {
		return m, m.finish()
	}
	if m.flash {
		return m, flashOff(m.gen, m.flashSeq)
	}
	return m, nil
}

// track mirrors the evaluator's cursor movement into per-position states.
func (m *Model) track(ev model.KeystrokeEvent, index int, out engine.Outcome) {
	switch {
	case ev.Backspace:
		if index > 0 {
			m.states[index-1] = statePending
		}
	case m.opts.Mode == model.ModeAcademy:
		if out.Mismatch {
			m.states[index] = stateIncorrect
		} else {
			m.states[index] = stateCorrect
		}
	case !out.Mismatch:
		m.states[index] = stateCorrect
	}
}

func (m *Model) reset() {
	m.gen++
	text := m.opts.Text()
	m.text = []rune(text)
	m.states = make([]charState, len(m.text))
	m.completed = nil
	m.session = engine.NewSession(m.opts.Mode, text,
		engine.WithErrorSink(m.onMismatch),
		engine.WithCompleteSink(func(s model.Summary) { m.completed = &s }),
	)
	m.metrics = model.Metrics{Accuracy: 100}
	m.flash = false
	m.result = nil
	m.saving = false
	m.race = nil
	m.standings = nil
	if m.opts.Race != nil {
		rc := m.opts.Race(len(m.text), m.now())
		m.race = &rc
		m.updateStandings(m.now())
	}
}

func (m *Model) onMismatch() {
	m.flash = true
	m.flashSeq++
}

func (m *Model) tickCmds() tea.Cmd {
	cmds := []tea.Cmd{metricsTick(m.gen)}
	if m.race != nil {
		cmds = append(cmds, raceTick(m.gen))
	}
	return tea.Batch(cmds...)
}

func metricsTick(gen int) tea.Cmd {
	return tea.Tick(schedule.MetricsInterval, func(t time.Time) tea.Msg {
		return metricsTickMsg{gen: gen, at: t}
	})
}

func raceTick(gen int) tea.Cmd {
	return tea.Tick(schedule.RaceInterval, func(t time.Time) tea.Msg {
		return raceTickMsg{gen: gen, at: t}
	})
}

func flashOff(gen, seq int) tea.Cmd {
	return tea.Tick(flashDuration, func(time.Time) tea.Msg {
		return flashOffMsg{gen: gen, seq: seq}
	})
}

func (m *Model) updateStandings(now time.Time) {
	frame := m.race.FrameAt(now)
	m.standings = race.Standings(m.race.Bots, frame, record.PlayerName, m.session.Snapshot().Progress())
}

// finish shows a preview of the result at once and saves in the background.
func (m *Model) finish() tea.Cmd {
	if m.completed == nil {
		return nil
	}
	snap := m.session.Snapshot()
	m.metrics = engine.LiveMetrics(snap, snap.EndedAt)
	if m.race != nil {
		m.updateStandings(snap.EndedAt)
	}
	s := record.Session{
		Lang:      m.opts.Lang,
		Summary:   *m.completed,
		StartedAt: snap.StartedAt,
		EndedAt:   snap.EndedAt,
		KeyStats:  m.session.KeyStats(),
		Latencies: m.session.Latencies(),
		Race:      m.race,
	}
	m.result = m.recorder.Preview(s)
	m.saving = true
	gen, recorder := m.gen, m.recorder
	return func() tea.Msg {
		return savedMsg{gen: gen, result: recorder.Record(context.Background(), s)}
	}
}

// Result returns the last finished session, nil while typing.
func (m *Model) Result() *record.Result {
	return m.result
}
