// Package engine evaluates keystrokes against a challenge text.
package engine

import (
	"math"
	"time"

	"github.com/verte-zerg/orbitype/internal/model"
)

// Phase is the lifecycle stage of a session.
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseInProgress
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not-started"
	case PhaseInProgress:
		return "in-progress"
	case PhaseComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Outcome describes what a single keystroke did to the session.
type Outcome struct {
	Accepted  bool
	Mismatch  bool
	Completed bool
	Summary   model.Summary
}

// Option configures a Session.
type Option func(*Session)

// WithErrorSink registers a callback for velocity mismatches. It must not block.
func WithErrorSink(fn func()) Option {
	return func(s *Session) { s.onError = fn }
}

// WithCompleteSink registers a callback that receives the summary once.
func WithCompleteSink(fn func(model.Summary)) Option {
	return func(s *Session) { s.onComplete = fn }
}

// Session is the state of one challenge attempt. Apply is its only mutator.
type Session struct {
	mode model.Mode
	text []rune

	index      int
	correct    int
	totalTyped int
	errors     int
	startedAt  time.Time
	endedAt    time.Time
	complete   bool

	latencies []time.Duration
	lastKeyAt time.Time

	keyStats map[rune]*model.KeyCounter
	summary  model.Summary

	onError    func()
	onComplete func(model.Summary)
}

// NewSession creates a session over text in the given mode.
func NewSession(mode model.Mode, text string, opts ...Option) *Session {
	s := &Session{
		mode:     mode,
		text:     []rune(text),
		keyStats: make(map[rune]*model.KeyCounter),
	}
	for _, opt := range opts {
		opt(s)
	}
	if len(s.text) == 0 {
		s.complete = true
	}
	return s
}

// Mode returns the evaluation mode.
func (s *Session) Mode() model.Mode { return s.mode }

// Text returns the challenge text.
func (s *Session) Text() []rune { return s.text }

// Phase reports the lifecycle stage.
func (s *Session) Phase() Phase {
	switch {
	case s.complete:
		return PhaseComplete
	case s.startedAt.IsZero():
		return PhaseNotStarted
	default:
		return PhaseInProgress
	}
}

// Apply evaluates one keystroke and fires the registered sinks.
func (s *Session) Apply(ev model.KeystrokeEvent) Outcome {
	out := s.apply(ev)
	s.emit(out)
	return out
}

func (s *Session) emit(out Outcome) {
	if out.Mismatch && s.mode == model.ModeVelocity && s.onError != nil {
		s.onError()
	}
	if out.Completed && s.onComplete != nil {
		s.onComplete(out.Summary)
	}
}

func (s *Session) apply(ev model.KeystrokeEvent) Outcome {
	if s.complete {
		return Outcome{}
	}
	switch s.mode {
	case model.ModeVelocity:
		return s.applyVelocity(ev)
	case model.ModeAcademy:
		return s.applyAcademy(ev)
	default:
		return Outcome{}
	}
}

func (s *Session) applyVelocity(ev model.KeystrokeEvent) Outcome {
	if ev.Backspace {
		return Outcome{}
	}
	s.start(ev.At)
	expected := s.text[s.index]
	s.totalTyped++
	counter := s.counter(expected)
	counter.Presses++
	if ev.Char != expected {
		s.errors++
		counter.Errors++
		return Outcome{Accepted: true, Mismatch: true}
	}
	s.correct++
	s.index++
	return s.checkComplete(ev.At, Outcome{Accepted: true})
}

func (s *Session) applyAcademy(ev model.KeystrokeEvent) Outcome {
	if ev.Backspace {
		if s.index == 0 {
			return Outcome{}
		}
		s.index--
		if s.totalTyped > 0 {
			s.totalTyped--
		}
		return Outcome{Accepted: true}
	}
	s.start(ev.At)
	expected := s.text[s.index]
	s.totalTyped++
	counter := s.counter(expected)
	counter.Presses++
	out := Outcome{Accepted: true}
	if ev.Char == expected {
		s.correct++
	} else {
		s.errors++
		counter.Errors++
		out.Mismatch = true
	}
	if !s.lastKeyAt.IsZero() {
		s.latencies = append(s.latencies, ev.At.Sub(s.lastKeyAt))
	}
	s.lastKeyAt = ev.At
	s.index++
	return s.checkComplete(ev.At, out)
}

func (s *Session) start(at time.Time) {
	if s.startedAt.IsZero() {
		s.startedAt = at
	}
}

func (s *Session) counter(r rune) *model.KeyCounter {
	c, ok := s.keyStats[r]
	if !ok {
		c = &model.KeyCounter{}
		s.keyStats[r] = c
	}
	return c
}

func (s *Session) checkComplete(at time.Time, out Outcome) Outcome {
	if s.index < len(s.text) {
		return out
	}
	s.complete = true
	s.endedAt = at
	s.summary = s.buildSummary()
	out.Completed = true
	out.Summary = s.summary
	return out
}

func (s *Session) buildSummary() model.Summary {
	elapsed := s.endedAt.Sub(s.startedAt)
	result := model.SessionResult{
		WPM:          WPM(s.correct, elapsed),
		Accuracy:     Accuracy(s.correct, s.totalTyped),
		ErrorCount:   s.errors,
		CorrectCount: s.correct,
		TotalTyped:   s.totalTyped,
		Duration:     elapsed,
	}
	if s.mode != model.ModeAcademy {
		return model.VelocitySummary{SessionResult: result}
	}
	avg, ok := LatencyAverage(s.latencies)
	return model.AcademySummary{
		SessionResult: result,
		LatencyAvg:    avg,
		HasLatency:    ok,
		RhythmScore:   RhythmScore(s.latencies),
	}
}

// Summary returns the completion summary, nil while the session is running.
func (s *Session) Summary() model.Summary { return s.summary }

// Latencies returns a copy of the recorded inter-key latencies.
func (s *Session) Latencies() []time.Duration {
	out := make([]time.Duration, len(s.latencies))
	copy(out, s.latencies)
	return out
}

// KeyStats returns a copy of the per-key counters gathered in this session.
func (s *Session) KeyStats() map[rune]model.KeyCounter {
	out := make(map[rune]model.KeyCounter, len(s.keyStats))
	for r, c := range s.keyStats {
		out[r] = *c
	}
	return out
}

// Snapshot is a read-only copy of the session counters.
type Snapshot struct {
	Mode         model.Mode
	Phase        Phase
	TextLength   int
	CurrentIndex int
	CorrectCount int
	TotalTyped   int
	ErrorCount   int
	StartedAt    time.Time
	EndedAt      time.Time
}

// Snapshot copies the current counters.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Mode:         s.mode,
		Phase:        s.Phase(),
		TextLength:   len(s.text),
		CurrentIndex: s.index,
		CorrectCount: s.correct,
		TotalTyped:   s.totalTyped,
		ErrorCount:   s.errors,
		StartedAt:    s.startedAt,
		EndedAt:      s.endedAt,
	}
}

// Progress returns the cursor position as a percentage of the text.
func (snap Snapshot) Progress() float64 {
	if snap.TextLength == 0 {
		return 100
	}
	return float64(snap.CurrentIndex) / float64(snap.TextLength) * 100
}

// WPM converts correct characters over elapsed time to words per minute.
func WPM(correct int, elapsed time.Duration) int {
	if elapsed <= 0 {
		return 0
	}
	wpm := math.Round((float64(correct) / 5) / elapsed.Minutes())
	if wpm < 0 {
		return 0
	}
	return int(wpm)
}

// Accuracy returns correct/total as a rounded percentage bounded to [0, 100].
func Accuracy(correct, total int) int {
	if total <= 0 {
		return 100
	}
	acc := math.Round(float64(correct) / float64(total) * 100)
	return int(math.Max(0, math.Min(100, acc)))
}
