package race

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/orbitype/internal/model"
)

// ErrRaceNotFound is returned by race stores for unknown ids.
var ErrRaceNotFound = errors.New("race not found")

// Countdown is the delay between creating a race and its start.
const Countdown = 3 * time.Second

// Race is one bot race against a fixed text.
type Race struct {
	ID         string          `json:"id"`
	TextLength int             `json:"text_length"`
	Bots       []model.RaceBot `json:"bots"`
	StartAt    time.Time       `json:"start_at"`
	CreatedAt  time.Time       `json:"created_at"`
}

// NewRace creates a race that starts after the countdown.
func NewRace(bots []model.RaceBot, textLength int, now time.Time) Race {
	return Race{
		ID:         uuid.NewString(),
		TextLength: textLength,
		Bots:       clone(bots),
		StartAt:    now.Add(Countdown),
		CreatedAt:  now,
	}
}

// FrameAt returns bot positions at now.
func (r Race) FrameAt(now time.Time) Frame {
	return FrameAt(r.Bots, r.StartAt, r.TextLength, now)
}

// Standing is one row of the race leaderboard.
type Standing struct {
	ID       string
	Name     string
	Progress float64
	IsPlayer bool
}

// Standings ranks the player and bots by progress. The player wins ties.
func Standings(bots []model.RaceBot, frame Frame, playerName string, playerProgress float64) []Standing {
	rows := make([]Standing, 0, len(bots)+1)
	rows = append(rows, Standing{ID: "player", Name: playerName, Progress: playerProgress, IsPlayer: true})
	for _, bot := range bots {
		rows = append(rows, Standing{ID: bot.ID, Name: bot.Name, Progress: frame[bot.ID]})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Progress > rows[j].Progress })
	return rows
}

// Results ranks every participant by finish time. Bots that can never finish
// are placed last.
func (r Race) Results(playerName string, playerWPM int, playerFinish time.Duration) []model.RaceResult {
	type entry struct {
		result   model.RaceResult
		finish   time.Duration
		finishes bool
	}
	entries := []entry{{
		result:   model.RaceResult{RaceID: r.ID, ParticipantID: model.PlayerID, Participant: playerName, WPM: playerWPM, FinishMs: playerFinish.Milliseconds()},
		finish:   playerFinish,
		finishes: true,
	}}
	for _, bot := range r.Bots {
		finish, ok := FinishTime(bot, r.TextLength)
		res := model.RaceResult{RaceID: r.ID, ParticipantID: bot.ID, Participant: bot.Name, IsBot: true}
		if ok {
			res.FinishMs = finish.Milliseconds()
			if finish > 0 {
				res.WPM = int(math.Round(float64(r.TextLength) / 5 / finish.Minutes()))
			}
		}
		entries = append(entries, entry{result: res, finish: finish, finishes: ok})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].finishes != entries[j].finishes {
			return entries[i].finishes
		}
		return entries[i].finish < entries[j].finish
	})
	out := make([]model.RaceResult, len(entries))
	for i, e := range entries {
		e.result.Position = i + 1
		out[i] = e.result
	}
	return out
}
