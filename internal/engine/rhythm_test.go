package engine

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/verte-zerg/orbitype/internal/model"
)

func ms(values ...int) []time.Duration {
	out := make([]time.Duration, len(values))
	for i, v := range values {
		out[i] = time.Duration(v) * time.Millisecond
	}
	return out
}

func TestRhythmScore(t *testing.T) {
	tests := []struct {
		name string
		in   []time.Duration
		want int
	}{
		{name: "no samples", in: nil, want: 100},
		{name: "one sample", in: ms(250), want: 100},
		{name: "steady", in: ms(120, 120, 120), want: 100},
		{name: "half variation", in: ms(100, 300), want: 50},
		{name: "erratic clamps to zero", in: ms(0, 0, 0, 1000), want: 0},
		{name: "zero mean", in: ms(0, 0), want: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RhythmScore(tt.in); got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestLatencyAverage(t *testing.T) {
	if _, ok := LatencyAverage(nil); ok {
		t.Fatalf("expected no average for empty samples")
	}
	avg, ok := LatencyAverage(ms(100, 200))
	if !ok || avg != 150*time.Millisecond {
		t.Fatalf("expected 150ms, got %v", avg)
	}
}

func TestAnalyzeRhythm(t *testing.T) {
	got := AnalyzeRhythm(ms(100, 100, 100, 400))
	want := model.RhythmAnalysis{
		Score:         26,
		Average:       175 * time.Millisecond,
		VarianceMs:    16875,
		FastestStreak: 3,
		SlowPoints:    []model.LatencyPoint{{Index: 3, Latency: 400 * time.Millisecond}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("analysis mismatch (-want +got):\n%s", diff)
	}
}
