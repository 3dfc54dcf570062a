// Package kvstore keeps key stats and races in Redis.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/verte-zerg/orbitype/internal/model"
	"github.com/verte-zerg/orbitype/internal/race"
)

const (
	pressSuffix = ":p"
	errorSuffix = ":e"
	// DefaultRaceTTL bounds how long finished races stay readable.
	DefaultRaceTTL = time.Hour
)

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	User     string
	RaceTTL  time.Duration
}

// Store implements heatmap persistence and race storage on Redis.
type Store struct {
	client  *redis.Client
	user    string
	raceTTL time.Duration
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, opts Options) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		if cerr := client.Close(); cerr != nil {
			_ = cerr
		}
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewWithClient(client, opts.User, opts.RaceTTL), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, user string, raceTTL time.Duration) *Store {
	if user == "" {
		user = "local"
	}
	if raceTTL <= 0 {
		raceTTL = DefaultRaceTTL
	}
	return &Store{client: client, user: user, raceTTL: raceTTL}
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) keyStatsKey() string {
	return "keystats:" + s.user
}

func raceKey(id string) string {
	return "race:" + id
}

// MergeKeyStats increments press and error counters in one transaction.
func (s *Store) MergeKeyStats(ctx context.Context, delta map[rune]model.KeyCounter) error {
	if len(delta) == 0 {
		return nil
	}
	key := s.keyStatsKey()
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for r, c := range delta {
			if c.Presses <= 0 {
				continue
			}
			errs := min(max(c.Errors, 0), c.Presses)
			pipe.HIncrBy(ctx, key, string(r)+pressSuffix, int64(c.Presses))
			if errs > 0 {
				pipe.HIncrBy(ctx, key, string(r)+errorSuffix, int64(errs))
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to merge key stats: %w", err)
	}
	return nil
}

// LoadKeyStats reads the per-key aggregate.
func (s *Store) LoadKeyStats(ctx context.Context) ([]model.KeyStat, error) {
	fields, err := s.client.HGetAll(ctx, s.keyStatsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load key stats: %w", err)
	}
	return parseKeyStats(fields)
}

func parseKeyStats(fields map[string]string) ([]model.KeyStat, error) {
	byKey := make(map[rune]model.KeyStat)
	for field, value := range fields {
		var suffix string
		switch {
		case strings.HasSuffix(field, pressSuffix):
			suffix = pressSuffix
		case strings.HasSuffix(field, errorSuffix):
			suffix = errorSuffix
		default:
			continue
		}
		runes := []rune(strings.TrimSuffix(field, suffix))
		if len(runes) != 1 {
			continue
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid counter %s=%q: %w", field, value, err)
		}
		st := byKey[runes[0]]
		st.Key = runes[0]
		if suffix == pressSuffix {
			st.Presses = n
		} else {
			st.Errors = n
		}
		byKey[runes[0]] = st
	}
	stats := make([]model.KeyStat, 0, len(byKey))
	for _, st := range byKey {
		if st.Presses == 0 {
			continue
		}
		stats = append(stats, st)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Key < stats[j].Key })
	return stats, nil
}

// SaveRace stores a race with the configured TTL.
func (s *Store) SaveRace(ctx context.Context, r race.Race) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal race: %w", err)
	}
	if err := s.client.Set(ctx, raceKey(r.ID), data, s.raceTTL).Err(); err != nil {
		return fmt.Errorf("failed to store race: %w", err)
	}
	return nil
}

// GetRace loads a race by id.
func (s *Store) GetRace(ctx context.Context, id string) (race.Race, error) {
	data, err := s.client.Get(ctx, raceKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return race.Race{}, race.ErrRaceNotFound
		}
		return race.Race{}, fmt.Errorf("failed to get race: %w", err)
	}
	var r race.Race
	if err := json.Unmarshal(data, &r); err != nil {
		return race.Race{}, fmt.Errorf("failed to unmarshal race: %w", err)
	}
	return r, nil
}
