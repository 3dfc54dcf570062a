package model

import (
	"fmt"
	"strings"
)

// Mode selects the keystroke evaluation rules.
type Mode int

const (
	// ModeVelocity blocks the cursor on errors and forbids correction.
	ModeVelocity Mode = iota
	// ModeAcademy always advances and allows backspace.
	ModeAcademy
)

func (m Mode) String() string {
	switch m {
	case ModeVelocity:
		return "velocity"
	case ModeAcademy:
		return "academy"
	default:
		return "unknown"
	}
}

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "velocity":
		return ModeVelocity, nil
	case "academy":
		return ModeAcademy, nil
	default:
		return 0, fmt.Errorf("unknown mode %q (want velocity or academy)", s)
	}
}

// Personality shapes a bot's pace.
type Personality int

const (
	PersonalityAggressive Personality = iota
	PersonalitySteady
	PersonalityCautious
)

// Personalities lists every personality in matching preference order.
var Personalities = []Personality{PersonalityAggressive, PersonalitySteady, PersonalityCautious}

func (p Personality) String() string {
	switch p {
	case PersonalityAggressive:
		return "aggressive"
	case PersonalitySteady:
		return "steady"
	case PersonalityCautious:
		return "cautious"
	default:
		return "unknown"
	}
}

// ParsePersonality parses a personality name.
func ParsePersonality(s string) (Personality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "aggressive":
		return PersonalityAggressive, nil
	case "steady":
		return PersonalitySteady, nil
	case "cautious":
		return PersonalityCautious, nil
	default:
		return 0, fmt.Errorf("unknown personality %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Personality) MarshalText() ([]byte, error) {
	if p < PersonalityAggressive || p > PersonalityCautious {
		return nil, fmt.Errorf("invalid personality %d", int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Personality) UnmarshalText(text []byte) error {
	parsed, err := ParsePersonality(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// DrillType is a coaching drill category.
type DrillType int

const (
	DrillSpeed DrillType = iota
	DrillPrecision
	DrillMetronome
	DrillBalanced
)

func (d DrillType) String() string {
	switch d {
	case DrillSpeed:
		return "SPEED_DRILL"
	case DrillPrecision:
		return "PRECISION_DRILL"
	case DrillMetronome:
		return "METRONOME_MODE"
	case DrillBalanced:
		return "BALANCED_DRILL"
	default:
		return "UNKNOWN"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d DrillType) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}
