// Package store handles SQL persistence for sessions, key stats and races.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/orbitype/internal/model"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// timeLayout sorts lexically when stored as text in UTC.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQL access for session data.
type Store struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

// Open opens or creates the SQLite database at path and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}
	return OpenDSN(context.Background(), "sqlite", path)
}

// OpenDSN opens a database for driver (sqlite, postgres or mysql).
func OpenDSN(ctx context.Context, driver, dsn string) (*Store, error) {
	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect.Name(), err)
	}
	store := &Store{db: db, dialect: dialect, now: time.Now}
	if err := store.init(ctx); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dialect returns the active SQL dialect.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

func (s *Store) init(ctx context.Context) error {
	if err := s.dialect.Configure(s.db); err != nil {
		return err
	}
	for _, stmt := range s.dialect.Schema() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return nil
}

func (s *Store) q(query string) string {
	return s.dialect.Rebind(query)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// InsertSession stores a completed session.
func (s *Store) InsertSession(ctx context.Context, rec model.SessionRecord) error {
	if rec.Summary == nil {
		return fmt.Errorf("session %s has no summary", rec.ID)
	}
	res := rec.Summary.Result()
	var latency sql.NullFloat64
	var rhythm sql.NullInt64
	if academy, ok := rec.Summary.(model.AcademySummary); ok {
		rhythm = sql.NullInt64{Int64: int64(academy.RhythmScore), Valid: true}
		if academy.HasLatency {
			latency = sql.NullFloat64{Float64: float64(academy.LatencyAvg) / float64(time.Millisecond), Valid: true}
		}
	}
	_, err := s.db.ExecContext(ctx, s.q(
		`INSERT INTO sessions (id, started_at, ended_at, mode, lang, wpm, accuracy, error_count, correct_count, total_typed, duration_ms, latency_avg_ms, rhythm_score)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		rec.ID,
		formatTime(rec.StartedAt),
		formatTime(rec.EndedAt),
		rec.Summary.Mode().String(),
		rec.Lang,
		res.WPM,
		res.Accuracy,
		res.ErrorCount,
		res.CorrectCount,
		res.TotalTyped,
		res.Duration.Milliseconds(),
		latency,
		rhythm,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// ListSessions returns session aggregates filtered by stats config, oldest first.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Lang != "" {
		clauses = append(clauses, "lang = ?")
		args = append(args, cfg.Lang)
	}
	if cfg.Mode != nil {
		clauses = append(clauses, "mode = ?")
		args = append(args, cfg.Mode.String())
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, formatTime(*cfg.Since))
	}
	limit := ""
	if cfg.Last > 0 {
		limit = " LIMIT ?"
		args = append(args, cfg.Last)
	}
	query := fmt.Sprintf(`SELECT id, ended_at, mode, wpm, accuracy, error_count, correct_count, total_typed, duration_ms, latency_avg_ms, rhythm_score
		FROM sessions
		WHERE %s
		ORDER BY ended_at DESC%s`, strings.Join(clauses, " AND "), limit)
	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionAggregate
	for rows.Next() {
		var agg model.SessionAggregate
		var endedAt, mode string
		var latency sql.NullFloat64
		var rhythm sql.NullInt64
		if err := rows.Scan(&agg.SessionID, &endedAt, &mode, &agg.WPM, &agg.Accuracy, &agg.ErrorCount,
			&agg.CorrectCount, &agg.TotalTyped, &agg.DurationMs, &latency, &rhythm); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		parsed, err := time.Parse(timeLayout, endedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse session time: %w", err)
		}
		agg.EndedAt = parsed
		if agg.Mode, err = model.ParseMode(mode); err != nil {
			return nil, err
		}
		if latency.Valid {
			v := latency.Float64
			agg.LatencyAvgMs = &v
		}
		if rhythm.Valid {
			v := int(rhythm.Int64)
			agg.RhythmScore = &v
		}
		sessions = append(sessions, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	for i, j := 0, len(sessions)-1; i < j; i, j = i+1, j-1 {
		sessions[i], sessions[j] = sessions[j], sessions[i]
	}
	return sessions, nil
}

// RecentSummaries returns up to n summaries, oldest first. A nil mode matches all.
func (s *Store) RecentSummaries(ctx context.Context, mode *model.Mode, n int) ([]model.Summary, error) {
	sessions, err := s.ListSessions(ctx, model.StatsConfig{Mode: mode, Last: n})
	if err != nil {
		return nil, err
	}
	out := make([]model.Summary, len(sessions))
	for i, agg := range sessions {
		out[i] = agg.Summary()
	}
	return out, nil
}

// AverageWPM returns the mean WPM of the last n sessions.
func (s *Store) AverageWPM(ctx context.Context, n int) (int, bool, error) {
	sessions, err := s.ListSessions(ctx, model.StatsConfig{Last: n})
	if err != nil {
		return 0, false, err
	}
	if len(sessions) == 0 {
		return 0, false, nil
	}
	total := 0
	for _, agg := range sessions {
		total += agg.WPM
	}
	return (total + len(sessions)/2) / len(sessions), true, nil
}

// MergeKeyStats adds a session delta to the durable per-key aggregate.
func (s *Store) MergeKeyStats(ctx context.Context, delta map[rune]model.KeyCounter) (err error) {
	if len(delta) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin key stats merge: %w", err)
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx, s.q(s.dialect.UpsertKeyStat()))
	if err != nil {
		return fmt.Errorf("failed to prepare key stats merge: %w", err)
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	updated := formatTime(s.now())
	for r, c := range delta {
		if c.Presses <= 0 {
			continue
		}
		errs := c.Errors
		if errs < 0 {
			errs = 0
		}
		if errs > c.Presses {
			errs = c.Presses
		}
		if _, err = stmt.ExecContext(ctx, string(r), c.Presses, errs, updated); err != nil {
			return fmt.Errorf("failed to merge key %q: %w", r, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit key stats merge: %w", err)
	}
	return nil
}

// LoadKeyStats returns the durable per-key aggregate.
func (s *Store) LoadKeyStats(ctx context.Context) ([]model.KeyStat, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key_char, presses, errors FROM key_stats ORDER BY key_char`)
	if err != nil {
		return nil, fmt.Errorf("failed to load key stats: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var stats []model.KeyStat
	for rows.Next() {
		var key string
		var st model.KeyStat
		if err := rows.Scan(&key, &st.Presses, &st.Errors); err != nil {
			return nil, fmt.Errorf("failed to scan key stat: %w", err)
		}
		runes := []rune(key)
		if len(runes) != 1 {
			continue
		}
		st.Key = runes[0]
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load key stats: %w", err)
	}
	return stats, nil
}

// InsertRaceResults stores the placements of a finished race.
func (s *Store) InsertRaceResults(ctx context.Context, results []model.RaceResult) (err error) {
	if len(results) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin race insert: %w", err)
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()
	for _, r := range results {
		if _, err = tx.ExecContext(ctx, s.q(
			`INSERT INTO race_results (race_id, participant_id, participant, is_bot, wpm, position, finish_ms) VALUES (?, ?, ?, ?, ?, ?, ?)`),
			r.RaceID, r.ParticipantID, r.Participant, r.IsBot, r.WPM, r.Position, r.FinishMs); err != nil {
			return fmt.Errorf("failed to insert race result: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit race results: %w", err)
	}
	return nil
}

// ListRaceResults returns the placements of a race ordered by position.
func (s *Store) ListRaceResults(ctx context.Context, raceID string) ([]model.RaceResult, error) {
	rows, err := s.db.QueryContext(ctx, s.q(
		`SELECT race_id, participant_id, participant, is_bot, wpm, position, finish_ms FROM race_results WHERE race_id = ? ORDER BY position`), raceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list race results: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	var results []model.RaceResult
	for rows.Next() {
		var r model.RaceResult
		if err := rows.Scan(&r.RaceID, &r.ParticipantID, &r.Participant, &r.IsBot, &r.WPM, &r.Position, &r.FinishMs); err != nil {
			return nil, fmt.Errorf("failed to scan race result: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list race results: %w", err)
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}
	return results, nil
}
