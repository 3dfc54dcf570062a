package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/verte-zerg/orbitype/internal/heatmap"
	"github.com/verte-zerg/orbitype/internal/model"
)

func intPtr(v int) *int { return &v }

func TestMovingAverage(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		window int
		want   []float64
	}{
		{name: "identity", values: []float64{1, 2, 3}, window: 1, want: []float64{1, 2, 3}},
		{name: "window two", values: []float64{2, 4, 6, 8}, window: 2, want: []float64{2, 3, 5, 7}},
		{name: "window larger than input", values: []float64{3, 6}, window: 10, want: []float64{3, 4.5}},
		{name: "empty", values: nil, window: 3, want: []float64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, MovingAverage(tt.values, tt.window)); diff != "" {
				t.Fatalf("MovingAverage mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 7}, 0); got != "▁█" {
		t.Fatalf("unexpected sparkline %q", got)
	}
	if got := Sparkline([]float64{5, 5, 5}, 0); got != "▅▅▅" {
		t.Fatalf("flat series should render mid blocks, got %q", got)
	}
	if got := Sparkline([]float64{9, 0, 7}, 2); got != "▁█" {
		t.Fatalf("expected the most recent values, got %q", got)
	}
	if got := Sparkline(nil, 10); got != "" {
		t.Fatalf("expected empty sparkline, got %q", got)
	}
}

func TestSummarize(t *testing.T) {
	sessions := []model.SessionAggregate{
		{Mode: model.ModeVelocity, WPM: 40, Accuracy: 90, DurationMs: 30000, ErrorCount: 2},
		{Mode: model.ModeAcademy, WPM: 60, Accuracy: 100, DurationMs: 30000, RhythmScore: intPtr(80)},
	}
	want := Overview{
		Sessions:    2,
		Velocity:    1,
		Academy:     1,
		AvgWPM:      50,
		BestWPM:     60,
		AvgAccuracy: 95,
		AvgRhythm:   80,
		HasRhythm:   true,
		TotalTime:   time.Minute,
		TotalErrors: 2,
	}
	if diff := cmp.Diff(want, Summarize(sessions)); diff != "" {
		t.Fatalf("Summarize mismatch (-want +got):\n%s", diff)
	}
	if got := Summarize(nil); got != (Overview{}) {
		t.Fatalf("expected zero overview, got %+v", got)
	}
}

func TestRenderPlain(t *testing.T) {
	report := Report{
		Sessions: []model.SessionAggregate{
			{Mode: model.ModeVelocity, WPM: 40, Accuracy: 90, DurationMs: 60000},
			{Mode: model.ModeVelocity, WPM: 50, Accuracy: 95, DurationMs: 60000},
		},
		Heat: heatmap.FromStats([]model.KeyStat{
			{Key: ' ', Presses: 10, Errors: 6},
			{Key: 'e', Presses: 10},
		}),
	}
	report.Overview = Summarize(report.Sessions)

	var buf bytes.Buffer
	if err := RenderPlain(&buf, report, 5, 40); err != nil {
		t.Fatalf("RenderPlain failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Sessions: 2", "Avg WPM: 45.0", "Learning Curves", "Most typed: <space> 10 · e 10", "Weakest Keys", "<space>", "<50%"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderPlain(&buf, Report{Heat: heatmap.New()}, 5, 80); err != nil {
		t.Fatalf("RenderPlain failed: %v", err)
	}
	if !strings.Contains(buf.String(), "No sessions found.") || !strings.Contains(buf.String(), "No key stats found.") {
		t.Fatalf("unexpected output: %s", buf.String())
	}
}
