package coach

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/verte-zerg/orbitype/internal/heatmap"
	"github.com/verte-zerg/orbitype/internal/model"
)

// Report is a coaching summary over the latest session and the key heatmap.
type Report struct {
	HasSession bool
	Mode       model.Mode
	Drill      model.DrillType
	Advice     string
	TargetWPM  int
	Latest     model.SessionResult
	Rhythm     *int
	Weakest    []model.KeyStat
	Strongest  []model.KeyStat
	DrillKeys  []model.KeyStat
	Keys       heatmap.Summary
}

// BuildReport assembles a report. recent is ordered oldest first; the last
// entry is treated as the latest session.
func BuildReport(recent []model.Summary, heat *heatmap.Heatmap) Report {
	if heat == nil {
		heat = heatmap.New()
	}
	r := Report{
		TargetWPM: TargetWPM(recent),
		Weakest:   heat.Weakest(heatmap.DefaultLimit),
		Strongest: heat.Strongest(heatmap.DefaultLimit),
		DrillKeys: WeakKeysForDrill(heat.Stats()),
		Keys:      heat.Summary(),
	}
	if len(recent) == 0 {
		return r
	}
	latest := recent[len(recent)-1]
	r.HasSession = true
	r.Mode = latest.Mode()
	r.Latest = latest.Result()
	r.Drill = Recommend(latest)
	r.Advice = Advice(r.Drill, latest)
	if academy, ok := latest.(model.AcademySummary); ok {
		score := academy.RhythmScore
		r.Rhythm = &score
	}
	return r
}

// Markdown renders the report as markdown.
func (r Report) Markdown() string {
	var b strings.Builder
	b.WriteString("# Coach\n\n")
	if !r.HasSession {
		b.WriteString("No sessions yet. Finish a practice run to get a recommendation.\n\n")
	} else {
		fmt.Fprintf(&b, "**Recommended:** `%s`\n\n", r.Drill)
		fmt.Fprintf(&b, "%s\n\n", r.Advice)
		b.WriteString("## Last session\n\n")
		b.WriteString("| Mode | WPM | Accuracy | Errors | Rhythm |\n")
		b.WriteString("|---|---|---|---|---|\n")
		rhythm := "-"
		if r.Rhythm != nil {
			rhythm = fmt.Sprintf("%d", *r.Rhythm)
		}
		fmt.Fprintf(&b, "| %s | %d | %d%% | %d | %s |\n\n", r.Mode, r.Latest.WPM, r.Latest.Accuracy, r.Latest.ErrorCount, rhythm)
	}
	fmt.Fprintf(&b, "**Target WPM:** %d\n\n", r.TargetWPM)

	b.WriteString("## Keys\n\n")
	fmt.Fprintf(&b, "%d keystrokes, %d errors, %d%% average accuracy.\n\n", r.Keys.TotalPresses, r.Keys.TotalErrors, r.Keys.AvgAccuracy)
	writeKeyList(&b, "Focus keys", r.Weakest)
	writeKeyList(&b, "Mastered keys", r.Strongest)
	if len(r.DrillKeys) > 0 {
		keys := make([]string, len(r.DrillKeys))
		for i, st := range r.DrillKeys {
			keys[i] = "`" + keyLabel(st.Key) + "`"
		}
		fmt.Fprintf(&b, "Next drill targets %s.\n", strings.Join(keys, ", "))
	}
	return b.String()
}

func writeKeyList(b *strings.Builder, title string, stats []model.KeyStat) {
	fmt.Fprintf(b, "### %s\n\n", title)
	if len(stats) == 0 {
		b.WriteString("_Not enough data yet._\n\n")
		return
	}
	for i, st := range stats {
		fmt.Fprintf(b, "%d. `%s` %.1f%% (%d presses)\n", i+1, keyLabel(st.Key), st.Accuracy(), st.Presses)
	}
	b.WriteString("\n")
}

func keyLabel(r rune) string {
	if r == ' ' {
		return "space"
	}
	return string(r)
}

// Render formats markdown for the terminal.
func Render(markdown string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}
