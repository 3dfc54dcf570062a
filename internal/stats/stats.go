// Package stats contains statistics calculations and reporting.
package stats

import (
	"math"
	"strings"
	"time"

	"github.com/verte-zerg/orbitype/internal/model"
)

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// Overview aggregates a list of stored sessions.
type Overview struct {
	Sessions    int
	Velocity    int
	Academy     int
	AvgWPM      float64
	BestWPM     int
	AvgAccuracy float64
	AvgRhythm   float64
	HasRhythm   bool
	TotalTime   time.Duration
	TotalErrors int
}

// Summarize computes the overview for sessions.
func Summarize(sessions []model.SessionAggregate) Overview {
	var o Overview
	if len(sessions) == 0 {
		return o
	}
	var wpm, acc, rhythm float64
	var rhythmCount int
	for _, s := range sessions {
		o.Sessions++
		if s.Mode == model.ModeAcademy {
			o.Academy++
		} else {
			o.Velocity++
		}
		wpm += float64(s.WPM)
		acc += float64(s.Accuracy)
		if s.WPM > o.BestWPM {
			o.BestWPM = s.WPM
		}
		o.TotalTime += time.Duration(s.DurationMs) * time.Millisecond
		o.TotalErrors += s.ErrorCount
		if s.RhythmScore != nil {
			rhythm += float64(*s.RhythmScore)
			rhythmCount++
		}
	}
	n := float64(len(sessions))
	o.AvgWPM = wpm / n
	o.AvgAccuracy = acc / n
	if rhythmCount > 0 {
		o.AvgRhythm = rhythm / float64(rhythmCount)
		o.HasRhythm = true
	}
	return o
}

// Series extracts per-session WPM and accuracy values, oldest first.
func Series(sessions []model.SessionAggregate) (wpm, accuracy []float64) {
	wpm = make([]float64, len(sessions))
	accuracy = make([]float64, len(sessions))
	for i, s := range sessions {
		wpm[i] = float64(s.WPM)
		accuracy[i] = float64(s.Accuracy)
	}
	return wpm, accuracy
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		out[i] = sum / float64(min(i+1, window))
	}
	return out
}

// Sparkline renders values as a single line of block characters. When width is
// positive and smaller than len(values), the most recent values are kept.
func Sparkline(values []float64, width int) string {
	if width > 0 && len(values) > width {
		values = values[len(values)-width:]
	}
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi-lo < 1e-9 {
		return strings.Repeat(string(sparkRunes[len(sparkRunes)/2]), len(values))
	}
	var b strings.Builder
	top := float64(len(sparkRunes) - 1)
	for _, v := range values {
		idx := int(math.Round((v - lo) / (hi - lo) * top))
		b.WriteRune(sparkRunes[max(0, min(idx, len(sparkRunes)-1))])
	}
	return b.String()
}
