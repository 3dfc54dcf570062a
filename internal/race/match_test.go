package race

import (
	"testing"

	"github.com/verte-zerg/orbitype/internal/model"
)

func bot(id string, wpm int, p model.Personality) model.RaceBot {
	return model.RaceBot{ID: id, Name: id, TargetWPM: wpm, Personality: p}
}

func ids(bots []model.RaceBot) []string {
	out := make([]string, len(bots))
	for i, b := range bots {
		out[i] = b.ID
	}
	return out
}

func TestMatchBots(t *testing.T) {
	const (
		agg = model.PersonalityAggressive
		std = model.PersonalitySteady
		cau = model.PersonalityCautious
	)
	tests := []struct {
		name string
		pool []model.RaceBot
		avg  int
		want []string
	}{
		{
			name: "defaults fall back to nearest",
			pool: DefaultBots(),
			avg:  60,
			want: []string{"2", "3", "1"},
		},
		{
			name: "window with every personality",
			pool: []model.RaceBot{bot("a1", 62, agg), bot("s1", 58, std), bot("s2", 60, std), bot("c1", 55, cau)},
			avg:  60,
			want: []string{"a1", "s1", "c1"},
		},
		{
			name: "window without diversity takes first three",
			pool: []model.RaceBot{bot("a1", 62, agg), bot("s1", 58, std), bot("s2", 60, std), bot("a2", 65, agg)},
			avg:  60,
			want: []string{"a1", "s1", "s2"},
		},
		{
			name: "nearest pool swapped for diversity",
			pool: []model.RaceBot{bot("s1", 100, std), bot("s2", 105, std), bot("a", 130, agg), bot("c", 140, cau), bot("s3", 120, std)},
			avg:  100,
			want: []string{"a", "s1", "c"},
		},
		{
			name: "small pool",
			pool: []model.RaceBot{bot("x", 10, std), bot("y", 200, agg)},
			avg:  50,
			want: []string{"x", "y"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(MatchBots(tt.pool, tt.avg))
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("expected %v, got %v", tt.want, got)
				}
			}
		})
	}
}

func TestMatchBotsDoesNotAliasInput(t *testing.T) {
	pool := DefaultBots()
	got := MatchBots(pool, 60)
	got[0].Name = "changed"
	for _, b := range pool {
		if b.Name == "changed" {
			t.Fatalf("expected MatchBots to return a copy")
		}
	}
}
