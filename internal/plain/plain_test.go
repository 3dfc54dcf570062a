package plain

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/verte-zerg/orbitype/internal/keyinput"
	"github.com/verte-zerg/orbitype/internal/model"
	"github.com/verte-zerg/orbitype/internal/race"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// steppingClock advances by step on every call.
type steppingClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(c.step)
	return c.t
}

func newClock() *steppingClock {
	return &steppingClock{t: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), step: 100 * time.Millisecond}
}

func TestDecode(t *testing.T) {
	at := time.Unix(0, 0)
	tests := []struct {
		name  string
		in    rune
		kind  keyinput.Kind
		abort bool
	}{
		{name: "letter", in: 'a', kind: keyinput.KindRunes},
		{name: "space", in: ' ', kind: keyinput.KindSpace},
		{name: "delete", in: 0x7f, kind: keyinput.KindBackspace},
		{name: "ctrl-h", in: 0x08, kind: keyinput.KindBackspace},
		{name: "esc", in: 0x1b, kind: keyinput.KindOther, abort: true},
		{name: "ctrl-c", in: 0x03, kind: keyinput.KindOther, abort: true},
		{name: "enter", in: '\r', kind: keyinput.KindOther},
		{name: "unicode", in: 'é', kind: keyinput.KindRunes},
		{name: "escape sequence", in: keySequence, kind: keyinput.KindOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, abort := Decode(tt.in, at)
			assert.Equal(t, tt.kind, raw.Kind)
			assert.Equal(t, tt.abort, abort)
			assert.Equal(t, at, raw.At)
		})
	}
}

func TestRunCompletesVelocity(t *testing.T) {
	var out bytes.Buffer
	clock := newClock()
	res, err := Run(context.Background(), Options{
		Mode: model.ModeVelocity,
		Text: "cat",
		In:   strings.NewReader("cxat"),
		Out:  &out,
		Now:  clock.Now,
	})
	require.NoError(t, err)
	require.False(t, res.Aborted())

	got := res.Summary.Result()
	assert.Equal(t, 3, got.CorrectCount)
	assert.Equal(t, 4, got.TotalTyped)
	assert.Equal(t, 1, got.ErrorCount)
	assert.Equal(t, 75, got.Accuracy)
	assert.Equal(t, model.KeyCounter{Presses: 2, Errors: 1}, res.KeyStats['a'])
	assert.Contains(t, out.String(), "\a")
	assert.Contains(t, out.String(), "cat\r\n")
}

func TestRunDropsNavigationKeys(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "arrow up", input: "\x1b[Aab"},
		{name: "ss3 arrow", input: "a\x1bOBb"},
		{name: "delete key", input: "a\x1b[3~b"},
		{name: "shift tab", input: "\x1b[Z\x1b[1;5Cab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			res, err := Run(context.Background(), Options{
				Mode: model.ModeVelocity,
				Text: "ab",
				In:   strings.NewReader(tt.input),
				Out:  &out,
				Now:  newClock().Now,
			})
			require.NoError(t, err)
			require.False(t, res.Aborted())
			got := res.Summary.Result()
			assert.Equal(t, 2, got.TotalTyped)
			assert.Equal(t, 0, got.ErrorCount)
		})
	}
}

func TestRunVelocityIgnoresBackspace(t *testing.T) {
	var out bytes.Buffer
	res, err := Run(context.Background(), Options{
		Mode: model.ModeVelocity,
		Text: "ab",
		In:   strings.NewReader("a\x7fb"),
		Out:  &out,
		Now:  newClock().Now,
	})
	require.NoError(t, err)
	require.False(t, res.Aborted())
	assert.Equal(t, 2, res.Summary.Result().TotalTyped)
}

func TestRunAcademyBackspace(t *testing.T) {
	var out bytes.Buffer
	res, err := Run(context.Background(), Options{
		Mode: model.ModeAcademy,
		Text: "ab",
		In:   strings.NewReader("x\x7fab"),
		Out:  &out,
		Now:  newClock().Now,
	})
	require.NoError(t, err)
	require.False(t, res.Aborted())
	assert.IsType(t, model.AcademySummary{}, res.Summary)
	assert.Equal(t, 1, res.Summary.Result().ErrorCount)
	assert.NotContains(t, out.String(), "\a")
	assert.Len(t, res.Latencies, 2)
}

func TestRunAborts(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "esc", input: "c\x1bat"},
		{name: "ctrl-c", input: "c\x03"},
		{name: "end of input", input: "ca"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			res, err := Run(context.Background(), Options{
				Mode: model.ModeVelocity,
				Text: "cat",
				In:   strings.NewReader(tt.input),
				Out:  &out,
				Now:  newClock().Now,
			})
			require.NoError(t, err)
			assert.True(t, res.Aborted())
			assert.Equal(t, 1, res.KeyStats['c'].Presses)
		})
	}
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	res, err := Run(ctx, Options{
		Mode: model.ModeVelocity,
		Text: "cat",
		In:   strings.NewReader(""),
		Out:  &out,
	})
	require.NoError(t, err)
	assert.True(t, res.Aborted())
}

func TestRunRaceCountdownDropsKeys(t *testing.T) {
	clock := newClock()
	rc := race.NewRace(race.DefaultBots(), 2, clock.t)
	var out bytes.Buffer
	res, err := Run(context.Background(), Options{
		Mode: model.ModeVelocity,
		Text: "go",
		In:   strings.NewReader("go"),
		Out:  &out,
		Race: &rc,
		Now:  clock.Now,
	})
	require.NoError(t, err)
	assert.True(t, res.Aborted())
	assert.Empty(t, res.KeyStats)
}

func TestRunRaceStarted(t *testing.T) {
	clock := newClock()
	rc := race.NewRace(race.DefaultBots(), 2, clock.t.Add(-race.Countdown))
	var out bytes.Buffer
	res, err := Run(context.Background(), Options{
		Mode: model.ModeVelocity,
		Text: "go",
		In:   strings.NewReader("go"),
		Out:  &out,
		Race: &rc,
		Now:  clock.Now,
	})
	require.NoError(t, err)
	require.False(t, res.Aborted())
	assert.Equal(t, 100, res.Summary.Result().Accuracy)
}

func TestStatusLine(t *testing.T) {
	st := &status{text: []rune("hello world"), metrics: model.Metrics{WPM: 42, Accuracy: 97}, index: 6}
	st.standings = []race.Standing{{Name: "Turbo"}, {Name: "You", IsPlayer: true}}
	assert.Equal(t, "WPM 42 | Acc 97% | 54% | #2 of 2 | > world", st.line())
}
