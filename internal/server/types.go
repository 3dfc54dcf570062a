package server

import (
	"time"

	"github.com/verte-zerg/orbitype/internal/heatmap"
	"github.com/verte-zerg/orbitype/internal/model"
	"github.com/verte-zerg/orbitype/internal/race"
)

// CreateRaceRequest is the body of POST /v1/races.
type CreateRaceRequest struct {
	TextLength int  `json:"text_length"`
	AvgWPM     *int `json:"avg_wpm,omitempty"`
}

// RaceResponse wraps a race record with the server clock.
type RaceResponse struct {
	race.Race
	ServerTime time.Time `json:"server_time"`
}

// FrameResponse holds bot positions at the server's current time.
type FrameResponse struct {
	RaceID    string             `json:"race_id"`
	Started   bool               `json:"started"`
	ElapsedMs int64              `json:"elapsed_ms"`
	Positions map[string]float64 `json:"positions"`
	Finished  []string           `json:"finished"`
}

// FinishRaceRequest is the body of POST /v1/races/{id}/finish.
type FinishRaceRequest struct {
	Player   string `json:"player"`
	WPM      int    `json:"wpm"`
	FinishMs int64  `json:"finish_ms"`
}

// FinishRaceResponse lists the final placements.
type FinishRaceResponse struct {
	RaceID  string             `json:"race_id"`
	Results []model.RaceResult `json:"results"`
}

// KeyCounterJSON is one key's delta in POST /v1/keystats.
type KeyCounterJSON struct {
	Presses int `json:"presses"`
	Errors  int `json:"errors"`
}

// MergeKeyStatsRequest is the body of POST /v1/keystats, keyed by character.
type MergeKeyStatsRequest struct {
	Keys map[string]KeyCounterJSON `json:"keys"`
}

// KeyStatJSON is one key in the heatmap response.
type KeyStatJSON struct {
	Key      string  `json:"key"`
	Presses  int     `json:"presses"`
	Errors   int     `json:"errors"`
	Accuracy float64 `json:"accuracy"`
	Band     string  `json:"band"`
}

// KeyStatsResponse is the body of GET /v1/keystats.
type KeyStatsResponse struct {
	TotalPresses int           `json:"total_presses"`
	TotalErrors  int           `json:"total_errors"`
	AvgAccuracy  float64       `json:"avg_accuracy"`
	Weakest      []KeyStatJSON `json:"weakest"`
	Strongest    []KeyStatJSON `json:"strongest"`
}

// CoachResponse is the body of GET /v1/coach.
type CoachResponse struct {
	Drill     model.DrillType `json:"drill"`
	Advice    string          `json:"advice"`
	TargetWPM int             `json:"target_wpm"`
	Sessions  int             `json:"sessions"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func keyStatsJSON(stats []model.KeyStat) []KeyStatJSON {
	out := make([]KeyStatJSON, 0, len(stats))
	for _, st := range stats {
		acc := st.Accuracy()
		out = append(out, KeyStatJSON{
			Key:      string(st.Key),
			Presses:  st.Presses,
			Errors:   st.Errors,
			Accuracy: acc,
			Band:     heatmap.BandFor(acc, st.Presses > 0).String(),
		})
	}
	return out
}
