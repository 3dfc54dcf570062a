package race

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/orbitype/internal/model"
)

func TestNewRace(t *testing.T) {
	r := NewRace(DefaultBots(), 120, start)
	_, err := uuid.Parse(r.ID)
	require.NoError(t, err)
	assert.Equal(t, start.Add(Countdown), r.StartAt)
	assert.Equal(t, 0.0, r.FrameAt(start.Add(time.Second))["1"])
}

func TestStandingsOrdersByProgress(t *testing.T) {
	bots := DefaultBots()
	frame := Frame{"1": 80, "2": 40, "3": 40}
	rows := Standings(bots, frame, "you", 40)
	names := []string{rows[0].Name, rows[1].Name, rows[2].Name, rows[3].Name}
	assert.Equal(t, []string{"Turbo", "you", "Steady", "Cautious"}, names)
	assert.True(t, rows[1].IsPlayer)
}

func TestResults(t *testing.T) {
	fast := model.RaceBot{ID: "f", Name: "Fast", TargetWPM: 80, Personality: model.PersonalityAggressive}
	r := Race{ID: "r1", TextLength: 100, Bots: []model.RaceBot{steadyBot(60), fast}}
	results := r.Results("you", 66, 18*time.Second)
	require.Len(t, results, 3)
	assert.Equal(t, "Fast", results[0].Participant)
	assert.Equal(t, "you", results[1].Participant)
	assert.Equal(t, "Steady", results[2].Participant)
	assert.Equal(t, "f", results[0].ParticipantID)
	assert.Equal(t, model.PlayerID, results[1].ParticipantID)
	for i, res := range results {
		assert.Equal(t, i+1, res.Position)
		assert.Equal(t, "r1", res.RaceID)
	}
	assert.Equal(t, int64(20100), results[2].FinishMs)
	assert.True(t, results[2].IsBot)
	assert.False(t, results[1].IsBot)
}
