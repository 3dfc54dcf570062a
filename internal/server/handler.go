// Package server exposes races, key stats and coaching over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/verte-zerg/orbitype/internal/coach"
	"github.com/verte-zerg/orbitype/internal/heatmap"
	"github.com/verte-zerg/orbitype/internal/model"
	"github.com/verte-zerg/orbitype/internal/race"
	"github.com/verte-zerg/orbitype/internal/store"
)

const (
	requestTimeout = 5 * time.Second
	// MaxTextLength caps the race text a client may request.
	MaxTextLength = 10000
	// MatchSessions is how many recent sessions feed matchmaking.
	MatchSessions = 10
)

// ResultStore is the subset of the session store the API needs.
type ResultStore interface {
	InsertRaceResults(ctx context.Context, results []model.RaceResult) error
	RecentSummaries(ctx context.Context, mode *model.Mode, n int) ([]model.Summary, error)
	AverageWPM(ctx context.Context, n int) (int, bool, error)
	ListRaceResults(ctx context.Context, raceID string) ([]model.RaceResult, error)
}

// BotSource supplies the current bot roster.
type BotSource interface {
	Bots() []model.RaceBot
}

// Deps are the handler's collaborators. Results and Heat may be nil.
type Deps struct {
	Races   RaceStore
	Results ResultStore
	Heat    *heatmap.Aggregator
	Bots    BotSource
	Logger  *zap.Logger
	Now     func() time.Time
}

// Handler holds HTTP handlers and dependencies.
type Handler struct {
	races   RaceStore
	results ResultStore
	heat    *heatmap.Aggregator
	bots    BotSource
	logger  *zap.Logger
	now     func() time.Time
}

type defaultBots struct{}

func (defaultBots) Bots() []model.RaceBot { return race.DefaultBots() }

// NewHandler creates a new HTTP handler.
func NewHandler(deps Deps) *Handler {
	h := &Handler{
		races:   deps.Races,
		results: deps.Results,
		heat:    deps.Heat,
		bots:    deps.Bots,
		logger:  deps.Logger,
		now:     deps.Now,
	}
	if h.races == nil {
		h.races = NewMemoryRaceStore()
	}
	if h.heat == nil {
		h.heat = heatmap.NewAggregator(nil, deps.Logger)
	}
	if h.bots == nil {
		h.bots = defaultBots{}
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h
}

// Routes sets up all HTTP routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/v1", func(r chi.Router) {
		r.Post("/races", h.CreateRace)
		r.Get("/races/{id}", h.GetRace)
		r.Get("/races/{id}/frame", h.GetFrame)
		r.Post("/races/{id}/finish", h.FinishRace)
		r.Get("/races/{id}/results", h.GetResults)
		r.Get("/keystats", h.GetKeyStats)
		r.Post("/keystats", h.MergeKeyStats)
		r.Get("/coach", h.GetCoach)
	})

	r.Get("/healthz", h.Health)

	return r
}

// Health handles health check requests.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CreateRace handles POST /v1/races.
func (h *Handler) CreateRace(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req CreateRaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.TextLength <= 0 || req.TextLength > MaxTextLength {
		h.respondError(w, http.StatusBadRequest, "invalid text_length",
			"text_length must be between 1 and "+strconv.Itoa(MaxTextLength))
		return
	}

	avg := coach.DefaultTargetWPM
	switch {
	case req.AvgWPM != nil:
		if *req.AvgWPM <= 0 {
			h.respondError(w, http.StatusBadRequest, "invalid avg_wpm", "avg_wpm must be greater than 0")
			return
		}
		avg = *req.AvgWPM
	case h.results != nil:
		wpm, ok, err := h.results.AverageWPM(ctx, MatchSessions)
		if err != nil {
			h.logger.Warn("average wpm unavailable", zap.Error(err))
		} else if ok {
			avg = wpm
		}
	}

	rc := race.NewRace(race.MatchBots(h.bots.Bots(), avg), req.TextLength, h.now())
	if err := h.races.SaveRace(ctx, rc); err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to create race", err.Error())
		return
	}
	h.logger.Debug("race created", zap.String("race_id", rc.ID), zap.Int("avg_wpm", avg), zap.Int("bots", len(rc.Bots)))

	h.respondJSON(w, http.StatusCreated, RaceResponse{Race: rc, ServerTime: h.now()})
}

// GetRace handles GET /v1/races/{id}.
func (h *Handler) GetRace(w http.ResponseWriter, r *http.Request) {
	rc, ok := h.loadRace(w, r)
	if !ok {
		return
	}
	h.respondJSON(w, http.StatusOK, RaceResponse{Race: rc, ServerTime: h.now()})
}

// GetFrame handles GET /v1/races/{id}/frame. Positions are recomputed from
// the race record on every call.
func (h *Handler) GetFrame(w http.ResponseWriter, r *http.Request) {
	rc, ok := h.loadRace(w, r)
	if !ok {
		return
	}
	now := h.now()
	frame := rc.FrameAt(now)
	resp := FrameResponse{
		RaceID:    rc.ID,
		Started:   !now.Before(rc.StartAt),
		Positions: frame,
		Finished:  []string{},
	}
	if resp.Started {
		resp.ElapsedMs = now.Sub(rc.StartAt).Milliseconds()
	}
	for _, bot := range rc.Bots {
		if frame[bot.ID] >= 100 {
			resp.Finished = append(resp.Finished, bot.ID)
		}
	}
	h.respondJSON(w, http.StatusOK, resp)
}

// FinishRace handles POST /v1/races/{id}/finish.
func (h *Handler) FinishRace(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	rc, ok := h.loadRace(w, r)
	if !ok {
		return
	}
	var req FinishRaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.FinishMs <= 0 || req.WPM < 0 {
		h.respondError(w, http.StatusBadRequest, "invalid result", "finish_ms must be greater than 0 and wpm non-negative")
		return
	}
	if req.Player == "" {
		req.Player = "You"
	}

	results := rc.Results(req.Player, req.WPM, time.Duration(req.FinishMs)*time.Millisecond)
	if h.results != nil {
		if err := h.results.InsertRaceResults(ctx, results); err != nil {
			h.respondError(w, http.StatusInternalServerError, "failed to store results", err.Error())
			return
		}
	}
	h.respondJSON(w, http.StatusOK, FinishRaceResponse{RaceID: rc.ID, Results: results})
}

// GetResults handles GET /v1/races/{id}/results.
func (h *Handler) GetResults(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if h.results == nil {
		h.respondError(w, http.StatusServiceUnavailable, "results unavailable", "no result store configured")
		return
	}
	id := chi.URLParam(r, "id")
	results, err := h.results.ListRaceResults(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		h.respondError(w, http.StatusNotFound, "results not found", id)
		return
	}
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to load results", err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, FinishRaceResponse{RaceID: id, Results: results})
}

// GetKeyStats handles GET /v1/keystats.
func (h *Handler) GetKeyStats(w http.ResponseWriter, r *http.Request) {
	n := heatmap.DefaultLimit
	if raw := r.URL.Query().Get("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			h.respondError(w, http.StatusBadRequest, "invalid n", "n must be a positive integer")
			return
		}
		n = v
	}
	heat := h.heat.Snapshot()
	sum := heat.Summary()
	h.respondJSON(w, http.StatusOK, KeyStatsResponse{
		TotalPresses: sum.TotalPresses,
		TotalErrors:  sum.TotalErrors,
		AvgAccuracy:  float64(sum.AvgAccuracy),
		Weakest:      keyStatsJSON(heat.Weakest(n)),
		Strongest:    keyStatsJSON(heat.Strongest(n)),
	})
}

// MergeKeyStats handles POST /v1/keystats.
func (h *Handler) MergeKeyStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req MergeKeyStatsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	delta := make(map[rune]model.KeyCounter, len(req.Keys))
	for key, c := range req.Keys {
		if utf8.RuneCountInString(key) != 1 {
			h.respondError(w, http.StatusBadRequest, "invalid key", "keys must be single characters: "+strconv.Quote(key))
			return
		}
		if c.Presses < 0 || c.Errors < 0 || c.Errors > c.Presses {
			h.respondError(w, http.StatusBadRequest, "invalid counter", "errors must be between 0 and presses for "+strconv.Quote(key))
			return
		}
		r, _ := utf8.DecodeRuneInString(key)
		delta[r] = model.KeyCounter{Presses: c.Presses, Errors: c.Errors}
	}

	if err := h.heat.Complete(ctx, delta); err != nil {
		h.respondJSON(w, http.StatusAccepted, ErrorResponse{Error: "key stats not persisted", Message: err.Error()})
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]int{"merged": len(delta)})
}

// GetCoach handles GET /v1/coach.
func (h *Handler) GetCoach(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if h.results == nil {
		h.respondError(w, http.StatusServiceUnavailable, "no session store", "coaching needs stored sessions")
		return
	}
	var mode *model.Mode
	if raw := r.URL.Query().Get("mode"); raw != "" {
		m, err := model.ParseMode(raw)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "invalid mode", err.Error())
			return
		}
		mode = &m
	}
	recent, err := h.results.RecentSummaries(ctx, mode, coach.TargetWindow)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to load sessions", err.Error())
		return
	}
	if len(recent) == 0 {
		h.respondError(w, http.StatusNotFound, "no sessions", "complete a session first")
		return
	}
	last := recent[len(recent)-1]
	drill := coach.Recommend(last)
	h.respondJSON(w, http.StatusOK, CoachResponse{
		Drill:     drill,
		Advice:    coach.Advice(drill, last),
		TargetWPM: coach.TargetWPM(recent),
		Sessions:  len(recent),
	})
}

func (h *Handler) loadRace(w http.ResponseWriter, r *http.Request) (race.Race, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id := chi.URLParam(r, "id")
	if id == "" {
		h.respondError(w, http.StatusBadRequest, "invalid race id", "race id is required")
		return race.Race{}, false
	}
	rc, err := h.races.GetRace(ctx, id)
	if err != nil {
		if errors.Is(err, race.ErrRaceNotFound) {
			h.respondError(w, http.StatusNotFound, "race not found", err.Error())
			return race.Race{}, false
		}
		h.respondError(w, http.StatusInternalServerError, "failed to get race", err.Error())
		return race.Race{}, false
	}
	return rc, true
}

// respondJSON writes a JSON response.
func (h *Handler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Warn("failed to encode response", zap.Error(err))
	}
}

// respondError writes an error response.
func (h *Handler) respondError(w http.ResponseWriter, status int, errorMsg, message string) {
	h.respondJSON(w, status, ErrorResponse{Error: errorMsg, Message: message})
}
