package race

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/verte-zerg/orbitype/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const validRoster = `
bots:
  - id: blitz
    name: Blitz
    target_wpm: 95
    error_rate: 0.03
    personality: aggressive
    tagline: First off the line.
  - id: metro
    name: Metro
    target_wpm: 70
    personality: steady
`

func TestParseRoster(t *testing.T) {
	bots, err := ParseRoster([]byte(validRoster))
	require.NoError(t, err)
	require.Len(t, bots, 2)
	assert.Equal(t, model.RaceBot{
		ID: "blitz", Name: "Blitz", TargetWPM: 95, ErrorRate: 0.03,
		Personality: model.PersonalityAggressive, Tagline: "First off the line.",
	}, bots[0])
	assert.Equal(t, model.PersonalitySteady, bots[1].Personality)
}

func TestParseRosterRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"unknown personality": "bots:\n  - {id: a, name: A, target_wpm: 50, personality: lazy}\n",
		"missing wpm":         "bots:\n  - {id: a, name: A, personality: steady}\n",
		"empty list":          "bots: []\n",
		"not yaml":            "bots: [\n",
		"duplicate id":        "bots:\n  - {id: a, name: A, target_wpm: 50, personality: steady}\n  - {id: a, name: B, target_wpm: 60, personality: steady}\n",
		"fractional wpm":      "bots:\n  - {id: a, name: A, target_wpm: 50.5, personality: steady}\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseRoster([]byte(doc))
			require.Error(t, err)
		})
	}
}

func TestRosterFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	r := NewRoster(filepath.Join(dir, "missing.yaml"), nil)
	assert.Equal(t, DefaultBots(), r.Bots())

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("bots: nope\n"), 0o644))
	r = NewRoster(bad, nil)
	assert.Equal(t, DefaultBots(), r.Bots())

	assert.Equal(t, DefaultBots(), NewRoster("", nil).Bots())
}

func TestRosterWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bots.yaml")
	r := NewRoster(path, nil)
	require.Equal(t, DefaultBots(), r.Bots())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Watch(ctx) }()

	require.Eventually(t, func() bool {
		if err := os.WriteFile(path, []byte(validRoster), 0o644); err != nil {
			return false
		}
		bots := r.Bots()
		return len(bots) == 2 && bots[0].ID == "blitz"
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
