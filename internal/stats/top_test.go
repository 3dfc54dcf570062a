package stats

import (
	"testing"

	"github.com/verte-zerg/orbitype/internal/model"
)

func TestTopKeysByFrequency(t *testing.T) {
	keys := []model.KeyStat{
		{Key: 'b', Presses: 4, Errors: 1},
		{Key: 'a', Presses: 4, Errors: 2},
		{Key: 'c', Presses: 1},
	}
	top := TopKeysByFrequency(keys, 2)
	if len(top) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(top))
	}
	if top[0].Key != 'a' || top[1].Key != 'b' {
		t.Fatalf("unexpected order: %v", top)
	}
	if keys[0].Key != 'b' {
		t.Fatalf("input was reordered")
	}
	if got := TopKeysByFrequency(keys, 0); got != nil {
		t.Fatalf("expected nil for n=0, got %v", got)
	}
}
