package coach

import (
	"strings"
	"testing"

	"github.com/verte-zerg/orbitype/internal/heatmap"
	"github.com/verte-zerg/orbitype/internal/model"
)

func TestBuildReport(t *testing.T) {
	heat := heatmap.FromStats([]model.KeyStat{
		{Key: 'q', Presses: 10, Errors: 6},
		{Key: 'e', Presses: 20, Errors: 1},
	})
	r := BuildReport([]model.Summary{velocity(40, 90), academy(42, 85, 50)}, heat)
	if !r.HasSession || r.Drill != model.DrillMetronome {
		t.Fatalf("unexpected report %+v", r)
	}
	if r.Rhythm == nil || *r.Rhythm != 50 {
		t.Fatalf("expected rhythm 50, got %v", r.Rhythm)
	}
	if len(r.DrillKeys) != 1 || r.DrillKeys[0].Key != 'q' {
		t.Fatalf("expected q as drill key, got %+v", r.DrillKeys)
	}

	md := r.Markdown()
	for _, want := range []string{"METRONOME_MODE", "Target WPM:** 41", "`q` 40.0%", "| academy | 42 | 85% | 0 | 50 |"} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected markdown to contain %q:\n%s", want, md)
		}
	}
}

func TestBuildReportEmpty(t *testing.T) {
	r := BuildReport(nil, nil)
	if r.HasSession || r.TargetWPM != DefaultTargetWPM {
		t.Fatalf("unexpected empty report %+v", r)
	}
	if !strings.Contains(r.Markdown(), "No sessions yet") {
		t.Fatalf("expected empty-state text")
	}
}

func TestRender(t *testing.T) {
	out, err := Render("# Coach\n\nKeep going.", 60)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "Keep") {
		t.Fatalf("expected rendered text, got %q", out)
	}
}
