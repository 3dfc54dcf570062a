package engine

import (
	"time"

	"github.com/verte-zerg/orbitype/internal/model"
)

// LiveMetrics recomputes WPM and accuracy from counters. Completed sessions
// report values frozen at their end time.
func LiveMetrics(snap Snapshot, now time.Time) model.Metrics {
	metrics := model.Metrics{Accuracy: Accuracy(snap.CorrectCount, snap.TotalTyped)}
	if snap.StartedAt.IsZero() {
		return metrics
	}
	end := now
	if snap.Phase == PhaseComplete {
		end = snap.EndedAt
	}
	metrics.WPM = WPM(snap.CorrectCount, end.Sub(snap.StartedAt))
	return metrics
}
