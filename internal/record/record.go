// Package record persists finished sessions and derives the coaching shown
// after them. Storage failures are logged and reported as a warning, never
// as an error, so a results screen can always be shown.
package record

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/verte-zerg/orbitype/internal/coach"
	"github.com/verte-zerg/orbitype/internal/engine"
	"github.com/verte-zerg/orbitype/internal/heatmap"
	"github.com/verte-zerg/orbitype/internal/model"
	"github.com/verte-zerg/orbitype/internal/race"
)

const (
	saveTimeout = 5 * time.Second
	// PlayerName labels the human in race standings and results.
	PlayerName = "You"
)

// Store persists finished sessions.
type Store interface {
	InsertSession(ctx context.Context, rec model.SessionRecord) error
	RecentSummaries(ctx context.Context, mode *model.Mode, n int) ([]model.Summary, error)
	InsertRaceResults(ctx context.Context, results []model.RaceResult) error
}

// Session is a completed attempt ready to be recorded.
type Session struct {
	Lang      string
	Summary   model.Summary
	StartedAt time.Time
	EndedAt   time.Time
	KeyStats  map[rune]model.KeyCounter
	Latencies []time.Duration
	Race      *race.Race
}

// Result is what the player sees after a session.
type Result struct {
	SessionID string
	Summary   model.Summary
	Drill     model.DrillType
	Advice    string
	TargetWPM int
	Rhythm    *model.RhythmAnalysis
	Race      []model.RaceResult
	Warning   string
}

// Recorder writes sessions to a Store and a heatmap. Both may be nil.
type Recorder struct {
	store  Store
	heat   *heatmap.Aggregator
	logger *zap.Logger
}

// NewRecorder creates a recorder.
func NewRecorder(store Store, heat *heatmap.Aggregator, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{store: store, heat: heat, logger: logger}
}

// Preview derives the result from s alone, without touching storage. The
// target is based on this session only.
func (r *Recorder) Preview(s Session) *Result {
	res := &Result{SessionID: uuid.NewString(), Summary: s.Summary}
	if s.Summary.Mode() == model.ModeAcademy {
		analysis := engine.AnalyzeRhythm(s.Latencies)
		res.Rhythm = &analysis
	}
	res.Drill = coach.Recommend(s.Summary)
	res.Advice = coach.Advice(res.Drill, s.Summary)
	res.TargetWPM = coach.TargetWPM([]model.Summary{s.Summary})
	if s.Race != nil {
		res.Race = s.Race.Results(PlayerName, s.Summary.Result().WPM, s.EndedAt.Sub(s.Race.StartAt))
	}
	return res
}

// Record saves s and returns the coaching result with the target taken from
// recent stored sessions.
func (r *Recorder) Record(ctx context.Context, s Session) *Result {
	ctx, cancel := context.WithTimeout(ctx, saveTimeout)
	defer cancel()

	res := r.Preview(s)
	mode := s.Summary.Mode()
	var warnings []string
	if r.store != nil {
		rec := model.SessionRecord{
			ID:        res.SessionID,
			StartedAt: s.StartedAt,
			EndedAt:   s.EndedAt,
			Lang:      s.Lang,
			Summary:   s.Summary,
		}
		if err := r.store.InsertSession(ctx, rec); err != nil {
			r.logger.Warn("session not saved", zap.String("session_id", rec.ID), zap.Error(err))
			warnings = append(warnings, "session not saved")
		}
		if recent, err := r.store.RecentSummaries(ctx, &mode, coach.TargetWindow); err != nil {
			r.logger.Warn("recent sessions unavailable", zap.Error(err))
		} else if len(recent) > 0 {
			res.TargetWPM = coach.TargetWPM(recent)
		}
	}
	if r.heat != nil {
		if err := r.heat.Complete(ctx, s.KeyStats); err != nil {
			warnings = append(warnings, "key stats not saved")
		}
	}
	if s.Race != nil && r.store != nil {
		if err := r.store.InsertRaceResults(ctx, res.Race); err != nil {
			r.logger.Warn("race results not saved", zap.String("race_id", s.Race.ID), zap.Error(err))
			warnings = append(warnings, "race results not saved")
		}
	}
	res.Warning = strings.Join(warnings, "; ")
	r.logger.Info("session complete",
		zap.String("session_id", res.SessionID),
		zap.Stringer("mode", mode),
		zap.Int("wpm", s.Summary.Result().WPM),
		zap.Int("accuracy", s.Summary.Result().Accuracy),
		zap.Stringer("drill", res.Drill),
	)
	return res
}
