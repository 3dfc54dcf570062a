package stats

import (
	"testing"

	"github.com/verte-zerg/orbitype/internal/heatmap"
	"github.com/verte-zerg/orbitype/internal/model"
)

func TestLayoutTableAlignsKeyRows(t *testing.T) {
	keys := []model.KeyStat{
		{Key: 'a', Presses: 40, Errors: 1},
		{Key: ' ', Presses: 10, Errors: 9},
	}
	rows := KeyRows(keys)
	for i, k := range keys {
		rows[i] = append(rows[i], bandMeter(heatmap.BandFor(k.Accuracy(), true)))
	}

	lines := layoutTable(keyColumns, rows)
	want := []string{
		"Key     Accuracy Presses Errors Band",
		"a          97.5%      40      1 90-100% [####]",
		"<space>    10.0%      10      9 <50%    [#---]",
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d: %q", len(want), len(lines), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d: got %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestLayoutTableCountsWideRunes(t *testing.T) {
	lines := layoutTable([]column{{title: "K"}, {title: "N", right: true}}, [][]string{{"日", "1"}, {"a"}})
	want := []string{"K  N", "日 1", "a"}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d: got %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestBandMeter(t *testing.T) {
	tests := map[heatmap.Band]string{
		heatmap.BandNone:   "[----]",
		heatmap.BandWeak:   "[#---]",
		heatmap.BandFair:   "[##--]",
		heatmap.BandGood:   "[###-]",
		heatmap.BandStrong: "[####]",
	}
	for band, want := range tests {
		if got := bandMeter(band); got != want {
			t.Fatalf("bandMeter(%v) = %q, want %q", band, got, want)
		}
	}
}
