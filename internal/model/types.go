// Package model defines shared data structures.
package model

import "time"

// Config defines practice settings.
type Config struct {
	Mode     Mode
	Lang     string
	Words    int
	CapsPct  float64
	PunctPct float64
	PunctSet string
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Mode        *Mode
	Lang        string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// KeystrokeEvent is one normalized key press.
type KeystrokeEvent struct {
	Char      rune
	Backspace bool
	At        time.Time
}

// KeyCounter accumulates presses and errors for a single key within a session.
type KeyCounter struct {
	Presses int
	Errors  int
}

// KeyStat is the durable per-key aggregate.
type KeyStat struct {
	Key     rune
	Presses int
	Errors  int
}

// Accuracy returns the percentage of error-free presses, 100 when the key was never pressed.
func (k KeyStat) Accuracy() float64 {
	if k.Presses == 0 {
		return 100
	}
	return float64(k.Presses-k.Errors) / float64(k.Presses) * 100
}

// RaceBot is a static bot opponent configuration.
type RaceBot struct {
	ID          string      `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	TargetWPM   int         `json:"target_wpm" yaml:"target_wpm"`
	ErrorRate   float64     `json:"error_rate" yaml:"error_rate"`
	Personality Personality `json:"personality" yaml:"personality"`
	Tagline     string      `json:"tagline,omitempty" yaml:"tagline,omitempty"`
}

// Metrics are live WPM and accuracy values.
type Metrics struct {
	WPM      int `json:"wpm"`
	Accuracy int `json:"accuracy"`
}

// LatencyPoint marks one inter-key latency sample.
type LatencyPoint struct {
	Index   int
	Latency time.Duration
}

// RhythmAnalysis describes typing consistency for an academy session.
type RhythmAnalysis struct {
	Score         int
	Average       time.Duration
	VarianceMs    float64
	FastestStreak int
	SlowPoints    []LatencyPoint
}

// SessionRecord is a completed session ready for persistence.
type SessionRecord struct {
	ID        string
	StartedAt time.Time
	EndedAt   time.Time
	Lang      string
	Summary   Summary
}

// SessionAggregate summarizes a stored session for reporting.
type SessionAggregate struct {
	SessionID    string
	EndedAt      time.Time
	Mode         Mode
	WPM          int
	Accuracy     int
	ErrorCount   int
	CorrectCount int
	TotalTyped   int
	DurationMs   int64
	LatencyAvgMs *float64
	RhythmScore  *int
}

// Summary rebuilds the session summary variant from stored columns.
func (s SessionAggregate) Summary() Summary {
	result := SessionResult{
		WPM:          s.WPM,
		Accuracy:     s.Accuracy,
		ErrorCount:   s.ErrorCount,
		CorrectCount: s.CorrectCount,
		TotalTyped:   s.TotalTyped,
		Duration:     time.Duration(s.DurationMs) * time.Millisecond,
	}
	if s.Mode != ModeAcademy {
		return VelocitySummary{SessionResult: result}
	}
	academy := AcademySummary{SessionResult: result, RhythmScore: 100}
	if s.RhythmScore != nil {
		academy.RhythmScore = *s.RhythmScore
	}
	if s.LatencyAvgMs != nil {
		academy.LatencyAvg = time.Duration(*s.LatencyAvgMs * float64(time.Millisecond))
		academy.HasLatency = true
	}
	return academy
}

// RaceResult is one participant's placement in a finished race.
// ParticipantID is the bot id or PlayerID; Participant is the display name.
type RaceResult struct {
	RaceID        string `json:"race_id"`
	ParticipantID string `json:"participant_id"`
	Participant   string `json:"participant"`
	IsBot         bool   `json:"is_bot"`
	WPM           int    `json:"wpm"`
	Position      int    `json:"position"`
	FinishMs      int64  `json:"finish_ms"`
}

// PlayerID identifies the human participant in race results.
const PlayerID = "player"
