package model

import "time"

// SessionResult holds the metrics shared by every completed session.
type SessionResult struct {
	WPM          int
	Accuracy     int
	ErrorCount   int
	CorrectCount int
	TotalTyped   int
	Duration     time.Duration
}

// Summary is a completed session. It is either a VelocitySummary or an AcademySummary.
type Summary interface {
	Mode() Mode
	Result() SessionResult
	summary()
}

// VelocitySummary is the result of a velocity session.
type VelocitySummary struct {
	SessionResult
}

// Mode implements Summary.
func (VelocitySummary) Mode() Mode { return ModeVelocity }

// Result implements Summary.
func (s VelocitySummary) Result() SessionResult { return s.SessionResult }

func (VelocitySummary) summary() {}

// AcademySummary is the result of an academy session with rhythm data.
type AcademySummary struct {
	SessionResult
	LatencyAvg  time.Duration
	HasLatency  bool
	RhythmScore int
}

// Mode implements Summary.
func (AcademySummary) Mode() Mode { return ModeAcademy }

// Result implements Summary.
func (s AcademySummary) Result() SessionResult { return s.SessionResult }

func (AcademySummary) summary() {}
