package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/orbitype/internal/model"
	"github.com/verte-zerg/orbitype/internal/race"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "orbitype.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if cerr := st.Close(); cerr != nil {
			t.Errorf("close: %v", cerr)
		}
	})
	return st
}

func velocityRecord(id string, ended time.Time, wpm, acc int) model.SessionRecord {
	return model.SessionRecord{
		ID:        id,
		StartedAt: ended.Add(-time.Minute),
		EndedAt:   ended,
		Lang:      "en",
		Summary: model.VelocitySummary{SessionResult: model.SessionResult{
			WPM: wpm, Accuracy: acc, CorrectCount: 100, TotalTyped: 104, ErrorCount: 4, Duration: time.Minute,
		}},
	}
}

func TestSessionsRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)

	academy := model.SessionRecord{
		ID:        "s2",
		StartedAt: base.Add(time.Hour),
		EndedAt:   base.Add(time.Hour + 30*time.Second),
		Lang:      "en",
		Summary: model.AcademySummary{
			SessionResult: model.SessionResult{WPM: 35, Accuracy: 88, CorrectCount: 44, TotalTyped: 50, ErrorCount: 6, Duration: 30 * time.Second},
			LatencyAvg:    180 * time.Millisecond,
			HasLatency:    true,
			RhythmScore:   72,
		},
	}
	require.NoError(t, st.InsertSession(ctx, velocityRecord("s1", base, 50, 96)))
	require.NoError(t, st.InsertSession(ctx, academy))
	require.NoError(t, st.InsertSession(ctx, velocityRecord("s3", base.Add(2*time.Hour), 60, 90)))

	all, err := st.ListSessions(ctx, model.StatsConfig{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"s1", "s2", "s3"}, []string{all[0].SessionID, all[1].SessionID, all[2].SessionID})

	if diff := cmp.Diff(academy.Summary, all[1].Summary()); diff != "" {
		t.Fatalf("academy summary mismatch (-want +got):\n%s", diff)
	}

	mode := model.ModeVelocity
	recent, err := st.RecentSummaries(ctx, &mode, 5)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, 60, recent[1].Result().WPM)

	last, err := st.ListSessions(ctx, model.StatsConfig{Last: 2})
	require.NoError(t, err)
	assert.Equal(t, "s2", last[0].SessionID)

	since := base.Add(90 * time.Minute)
	filtered, err := st.ListSessions(ctx, model.StatsConfig{Since: &since})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "s3", filtered[0].SessionID)

	avg, ok, err := st.AverageWPM(ctx, 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 48, avg)
}

func TestAverageWPMEmpty(t *testing.T) {
	st := openTestStore(t)
	_, ok, err := st.AverageWPM(context.Background(), 5)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMergeKeyStatsIsAdditive(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, st.MergeKeyStats(ctx, map[rune]model.KeyCounter{'a': {Presses: 3, Errors: 1}, 'A': {Presses: 1}}))
	require.NoError(t, st.MergeKeyStats(ctx, map[rune]model.KeyCounter{'a': {Presses: 2, Errors: 2}, ' ': {Presses: 4}}))

	stats, err := st.LoadKeyStats(ctx)
	require.NoError(t, err)
	want := []model.KeyStat{
		{Key: ' ', Presses: 4},
		{Key: 'A', Presses: 1},
		{Key: 'a', Presses: 5, Errors: 3},
	}
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Fatalf("key stats mismatch (-want +got):\n%s", diff)
	}
}

func TestRaceResults(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	results := []model.RaceResult{
		{RaceID: "r1", ParticipantID: "turbo", Participant: "Turbo", IsBot: true, WPM: 84, Position: 1, FinishMs: 20000},
		{RaceID: "r1", ParticipantID: model.PlayerID, Participant: "you", WPM: 70, Position: 2, FinishMs: 24000},
	}
	require.NoError(t, st.InsertRaceResults(ctx, results))
	got, err := st.ListRaceResults(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, results, got)

	_, err = st.ListRaceResults(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRaceResultsSharedNames(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	bots := []model.RaceBot{
		{ID: "a", Name: "Turbo", TargetWPM: 60, Personality: model.PersonalitySteady},
		{ID: "b", Name: "Turbo", TargetWPM: 40, Personality: model.PersonalitySteady},
	}
	rc := race.NewRace(bots, 150, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	results := rc.Results("Turbo", 50, 36*time.Second)
	require.Len(t, results, 3)

	require.NoError(t, st.InsertRaceResults(ctx, results))
	got, err := st.ListRaceResults(ctx, rc.ID)
	require.NoError(t, err)
	ids := make([]string, len(got))
	for i, r := range got {
		ids[i] = r.ParticipantID
		assert.Equal(t, "Turbo", r.Participant)
	}
	assert.ElementsMatch(t, []string{"a", "b", model.PlayerID}, ids)
}

func TestDialects(t *testing.T) {
	pg, err := DialectFor("postgres")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2", pg.Rebind("SELECT * FROM t WHERE a = ? AND b = ?"))

	my, err := DialectFor("MySQL")
	require.NoError(t, err)
	assert.Equal(t, "a = ?", my.Rebind("a = ?"))
	assert.Contains(t, my.UpsertKeyStat(), "ON DUPLICATE KEY UPDATE")

	lite, err := DialectFor("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", lite.Name())

	_, err = DialectFor("oracle")
	assert.Error(t, err)
}
