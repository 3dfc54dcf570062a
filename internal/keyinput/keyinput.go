// Package keyinput normalizes raw key presses into keystroke events.
package keyinput

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/orbitype/internal/model"
)

// Kind classifies a raw key.
type Kind int

const (
	KindRunes Kind = iota
	KindSpace
	KindBackspace
	KindOther
)

// Raw is a key press as reported by an input source.
type Raw struct {
	Kind  Kind
	Runes []rune
	Ctrl  bool
	Alt   bool
	Meta  bool
	At    time.Time
}

// Normalize converts a raw key into an event. Multi-rune input, modifier
// chords and non-character keys are dropped.
func Normalize(raw Raw) (model.KeystrokeEvent, bool) {
	if raw.Ctrl || raw.Alt || raw.Meta {
		return model.KeystrokeEvent{}, false
	}
	switch raw.Kind {
	case KindBackspace:
		return model.KeystrokeEvent{Backspace: true, At: raw.At}, true
	case KindSpace:
		return model.KeystrokeEvent{Char: ' ', At: raw.At}, true
	case KindRunes:
		if len(raw.Runes) != 1 {
			return model.KeystrokeEvent{}, false
		}
		r := raw.Runes[0]
		if r < ' ' || r == 0x7f {
			return model.KeystrokeEvent{}, false
		}
		return model.KeystrokeEvent{Char: r, At: raw.At}, true
	default:
		return model.KeystrokeEvent{}, false
	}
}

// FromTea adapts a Bubble Tea key message.
func FromTea(msg tea.KeyMsg, at time.Time) (model.KeystrokeEvent, bool) {
	raw := Raw{Kind: KindOther, Alt: msg.Alt, At: at}
	switch msg.Type {
	case tea.KeyBackspace, tea.KeyDelete:
		raw.Kind = KindBackspace
	case tea.KeySpace:
		raw.Kind = KindSpace
	case tea.KeyRunes:
		raw.Kind = KindRunes
		raw.Runes = msg.Runes
	}
	return Normalize(raw)
}

// AcceptsBackspace reports whether backspace may reach the evaluator in mode.
func AcceptsBackspace(mode model.Mode) bool {
	switch mode {
	case model.ModeAcademy:
		return true
	case model.ModeVelocity:
		return false
	default:
		return false
	}
}

// Filter normalizes a raw key and applies mode-specific suppression.
func Filter(mode model.Mode, raw Raw) (model.KeystrokeEvent, bool) {
	ev, ok := Normalize(raw)
	if !ok {
		return ev, false
	}
	if ev.Backspace && !AcceptsBackspace(mode) {
		return model.KeystrokeEvent{}, false
	}
	return ev, true
}
