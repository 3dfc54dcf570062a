package stats

import (
	"context"
	"fmt"

	"github.com/verte-zerg/orbitype/internal/heatmap"
	"github.com/verte-zerg/orbitype/internal/model"
)

// Source loads the data a report is built from.
type Source interface {
	ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error)
	LoadKeyStats(ctx context.Context) ([]model.KeyStat, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Sessions []model.SessionAggregate
	Overview Overview
	Heat     *heatmap.Heatmap
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, src Source, cfg model.StatsConfig) (Report, error) {
	sessions, err := src.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list sessions: %w", err)
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}
	keys, err := src.LoadKeyStats(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load key stats: %w", err)
	}
	return Report{
		Sessions: sessions,
		Overview: Summarize(sessions),
		Heat:     heatmap.FromStats(keys),
	}, nil
}

// Summaries returns the session summaries, oldest first.
func (r Report) Summaries() []model.Summary {
	out := make([]model.Summary, len(r.Sessions))
	for i, s := range r.Sessions {
		out[i] = s.Summary()
	}
	return out
}
