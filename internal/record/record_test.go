package record

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/orbitype/internal/heatmap"
	"github.com/verte-zerg/orbitype/internal/model"
	"github.com/verte-zerg/orbitype/internal/race"
)

type memStore struct {
	sessions []model.SessionRecord
	races    []model.RaceResult
	failOn   string
}

func (s *memStore) InsertSession(_ context.Context, rec model.SessionRecord) error {
	if strings.Contains(s.failOn, "session") {
		return errors.New("boom")
	}
	s.sessions = append(s.sessions, rec)
	return nil
}

func (s *memStore) RecentSummaries(_ context.Context, mode *model.Mode, _ int) ([]model.Summary, error) {
	if strings.Contains(s.failOn, "recent") {
		return nil, errors.New("boom")
	}
	var out []model.Summary
	for _, rec := range s.sessions {
		if mode == nil || rec.Summary.Mode() == *mode {
			out = append(out, rec.Summary)
		}
	}
	return out, nil
}

func (s *memStore) InsertRaceResults(_ context.Context, results []model.RaceResult) error {
	if strings.Contains(s.failOn, "race") {
		return errors.New("boom")
	}
	s.races = append(s.races, results...)
	return nil
}

type failingKeys struct{}

func (failingKeys) MergeKeyStats(context.Context, map[rune]model.KeyCounter) error {
	return errors.New("redis down")
}

func (failingKeys) LoadKeyStats(context.Context) ([]model.KeyStat, error) { return nil, nil }

var t0 = time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)

func velocity(wpm, acc int) model.Summary {
	return model.VelocitySummary{SessionResult: model.SessionResult{WPM: wpm, Accuracy: acc, Duration: time.Minute}}
}

func TestRecordSavesAndCoaches(t *testing.T) {
	store := &memStore{}
	heat := heatmap.NewAggregator(nil, nil)
	rec := NewRecorder(store, heat, nil)

	res := rec.Record(context.Background(), Session{
		Lang:      "en",
		Summary:   velocity(50, 97),
		StartedAt: t0,
		EndedAt:   t0.Add(time.Minute),
		KeyStats:  map[rune]model.KeyCounter{'e': {Presses: 10, Errors: 1}},
	})

	require.Len(t, store.sessions, 1)
	assert.Equal(t, res.SessionID, store.sessions[0].ID)
	assert.Equal(t, "en", store.sessions[0].Lang)
	assert.Equal(t, model.DrillSpeed, res.Drill)
	assert.Equal(t, 55, res.TargetWPM)
	assert.Nil(t, res.Rhythm)
	assert.Empty(t, res.Warning)

	stat, ok := heat.Snapshot().Get('e')
	require.True(t, ok)
	assert.Equal(t, 10, stat.Presses)
}

func TestPreviewLeavesStorageAlone(t *testing.T) {
	store := &memStore{}
	heat := heatmap.NewAggregator(nil, nil)
	res := NewRecorder(store, heat, nil).Preview(Session{
		Summary:  velocity(60, 70),
		KeyStats: map[rune]model.KeyCounter{'a': {Presses: 1}},
	})
	assert.Equal(t, model.DrillPrecision, res.Drill)
	assert.Equal(t, 54, res.TargetWPM)
	assert.NotEmpty(t, res.SessionID)
	assert.Empty(t, store.sessions)
	assert.Equal(t, 0, heat.Snapshot().Len())
}

func TestRecordAcademyRhythm(t *testing.T) {
	rec := NewRecorder(nil, nil, nil)
	summary := model.AcademySummary{
		SessionResult: model.SessionResult{WPM: 30, Accuracy: 90},
		RhythmScore:   40,
		HasLatency:    true,
	}
	res := rec.Record(context.Background(), Session{
		Summary:   summary,
		Latencies: []time.Duration{100 * time.Millisecond, 120 * time.Millisecond, 400 * time.Millisecond},
	})
	require.NotNil(t, res.Rhythm)
	assert.Equal(t, model.DrillMetronome, res.Drill)
	assert.Equal(t, 30, res.TargetWPM)
}

func TestRecordWarnings(t *testing.T) {
	tests := []struct {
		name    string
		failOn  string
		keys    heatmap.Store
		warning string
	}{
		{name: "session insert", failOn: "session", warning: "session not saved"},
		{name: "recent lookup", failOn: "recent"},
		{name: "key stats", keys: failingKeys{}, warning: "key stats not saved"},
		{name: "session and key stats", failOn: "session", keys: failingKeys{}, warning: "session not saved; key stats not saved"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memStore{failOn: tt.failOn}
			rec := NewRecorder(store, heatmap.NewAggregator(tt.keys, nil), nil)
			res := rec.Record(context.Background(), Session{
				Summary:  velocity(40, 85),
				KeyStats: map[rune]model.KeyCounter{'a': {Presses: 1}},
			})
			assert.Equal(t, tt.warning, res.Warning)
			assert.Equal(t, model.DrillBalanced, res.Drill)
		})
	}
}

func TestRecordRace(t *testing.T) {
	store := &memStore{}
	rc := race.NewRace(race.DefaultBots(), 250, t0)
	rec := NewRecorder(store, nil, nil)

	res := rec.Record(context.Background(), Session{
		Summary:   velocity(100, 100),
		StartedAt: rc.StartAt,
		EndedAt:   rc.StartAt.Add(30 * time.Second),
		Race:      &rc,
	})

	require.Len(t, res.Race, len(rc.Bots)+1)
	assert.Equal(t, PlayerName, res.Race[0].Participant)
	assert.Equal(t, 1, res.Race[0].Position)
	assert.Equal(t, int64(30000), res.Race[0].FinishMs)
	assert.Len(t, store.races, len(rc.Bots)+1)
}

func TestRecordRaceStoreFailure(t *testing.T) {
	store := &memStore{failOn: "race"}
	rc := race.NewRace(race.DefaultBots(), 250, t0)
	res := NewRecorder(store, nil, nil).Record(context.Background(), Session{
		Summary: velocity(100, 100),
		EndedAt: rc.StartAt.Add(30 * time.Second),
		Race:    &rc,
	})
	assert.Equal(t, "race results not saved", res.Warning)
	assert.Len(t, res.Race, len(rc.Bots)+1)
}

func TestRecordKeepsEveryWarning(t *testing.T) {
	store := &memStore{failOn: "session,race"}
	rc := race.NewRace(race.DefaultBots(), 250, t0)
	res := NewRecorder(store, heatmap.NewAggregator(failingKeys{}, nil), nil).Record(context.Background(), Session{
		Summary:  velocity(100, 100),
		KeyStats: map[rune]model.KeyCounter{'a': {Presses: 1}},
		EndedAt:  rc.StartAt.Add(30 * time.Second),
		Race:     &rc,
	})
	assert.Equal(t, "session not saved; key stats not saved; race results not saved", res.Warning)
}
