// Package coach classifies finished sessions and picks the next drill.
package coach

import (
	"fmt"
	"math"
	"sort"

	"github.com/verte-zerg/orbitype/internal/model"
)

const (
	// DefaultTargetWPM is suggested before any session has been recorded.
	DefaultTargetWPM = 40
	// TargetWindow is how many recent sessions feed the target.
	TargetWindow = 5
	// WeakKeyThreshold is the accuracy below which a key is drilled.
	WeakKeyThreshold = 70.0
	// MaxDrillKeys caps the keys handed to a drill generator.
	MaxDrillKeys = 3
	// MetronomeThreshold is the rhythm score below which metronome practice is advised.
	MetronomeThreshold = 60
)

// Recommend maps a finished session to a drill category.
func Recommend(summary model.Summary) model.DrillType {
	acc := summary.Result().Accuracy
	switch {
	case acc > 95:
		return model.DrillSpeed
	case acc < 80:
		return model.DrillPrecision
	}
	if academy, ok := summary.(model.AcademySummary); ok && academy.RhythmScore < MetronomeThreshold {
		return model.DrillMetronome
	}
	return model.DrillBalanced
}

// Advice returns a short message explaining the drill choice.
func Advice(drill model.DrillType, summary model.Summary) string {
	acc := float64(summary.Result().Accuracy)
	switch drill {
	case model.DrillSpeed:
		return fmt.Sprintf("Excellent accuracy (%.1f%%)! Let's focus on building speed. Try sprints with common words.", acc)
	case model.DrillPrecision:
		return fmt.Sprintf("Accuracy at %.1f%% needs work. Slow down and focus on hitting the right keys. Speed will follow.", acc)
	case model.DrillMetronome:
		score := "N/A"
		if academy, ok := summary.(model.AcademySummary); ok {
			score = fmt.Sprintf("%d", academy.RhythmScore)
		}
		return fmt.Sprintf("Your rhythm is inconsistent (score: %s). Try typing to a steady beat to build muscle memory.", score)
	case model.DrillBalanced:
		return "You're progressing well! Let's balance speed and accuracy with varied practice drills."
	default:
		return "Keep practicing! Consistency is key to improvement."
	}
}

// TargetWPM suggests the next goal from recent sessions, oldest first.
func TargetWPM(recent []model.Summary) int {
	if len(recent) == 0 {
		return DefaultTargetWPM
	}
	if len(recent) > TargetWindow {
		recent = recent[len(recent)-TargetWindow:]
	}
	var wpm, acc float64
	for _, s := range recent {
		r := s.Result()
		wpm += float64(r.WPM)
		acc += float64(r.Accuracy)
	}
	n := float64(len(recent))
	meanWPM, meanAcc := wpm/n, acc/n
	switch {
	case meanAcc > 90:
		return ceil(meanWPM * 1.1)
	case meanAcc < 80:
		return ceil(meanWPM * 0.9)
	default:
		return ceil(meanWPM)
	}
}

// ceil ignores float noise such as 50*1.1 = 55.000000000000007.
func ceil(v float64) int {
	return int(math.Ceil(v - 1e-9))
}

// WeakKeysForDrill returns up to MaxDrillKeys keys below WeakKeyThreshold, worst first.
func WeakKeysForDrill(stats []model.KeyStat) []model.KeyStat {
	weak := make([]model.KeyStat, 0, len(stats))
	for _, st := range stats {
		if st.Accuracy() < WeakKeyThreshold {
			weak = append(weak, st)
		}
	}
	sort.SliceStable(weak, func(i, j int) bool {
		ai, aj := weak[i].Accuracy(), weak[j].Accuracy()
		if ai != aj {
			return ai < aj
		}
		return weak[i].Key < weak[j].Key
	})
	if len(weak) > MaxDrillKeys {
		weak = weak[:MaxDrillKeys]
	}
	return weak
}
