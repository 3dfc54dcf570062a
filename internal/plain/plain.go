// Package plain runs a typing session on a raw terminal without the full
// screen interface. Input is read byte by byte and a single status line is
// redrawn by background loops.
package plain

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/verte-zerg/orbitype/internal/engine"
	"github.com/verte-zerg/orbitype/internal/keyinput"
	"github.com/verte-zerg/orbitype/internal/model"
	"github.com/verte-zerg/orbitype/internal/race"
	"github.com/verte-zerg/orbitype/internal/schedule"
)

const (
	keyCtrlC     = 0x03
	keyBackspace = 0x08
	keyEsc       = 0x1b
	keyDelete    = 0x7f

	// keySequence stands for a whole CSI or SS3 escape sequence such as an
	// arrow or function key.
	keySequence rune = -1

	previewWidth = 40
	playerName   = "You"
)

// Options configures a plain session.
type Options struct {
	Mode   model.Mode
	Text   string
	In     io.Reader
	Out    io.Writer
	Race   *race.Race
	Logger *zap.Logger
	Now    func() time.Time
}

// Result is what a plain session produced. Summary is nil when the session
// was aborted.
type Result struct {
	Summary   model.Summary
	KeyStats  map[rune]model.KeyCounter
	Latencies []time.Duration
	StartedAt time.Time
	EndedAt   time.Time
}

// Aborted reports whether the session ended before the text was typed.
func (r Result) Aborted() bool { return r.Summary == nil }

// MakeRaw puts f into raw mode when it is a terminal. The returned func
// restores the previous state and is safe to call when nothing changed.
func MakeRaw(f *os.File) (func(), error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return func() {}, nil
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("failed to enter raw mode: %w", err)
	}
	return func() {
		if rerr := term.Restore(fd, state); rerr != nil {
			_ = rerr
		}
	}, nil
}

// Decode maps one input rune to a raw key. abort is true for esc and ctrl+c.
// Escape sequences arrive as keySequence and are dropped like any other
// non-character key.
func Decode(r rune, at time.Time) (raw keyinput.Raw, abort bool) {
	switch r {
	case keySequence:
		return keyinput.Raw{Kind: keyinput.KindOther, At: at}, false
	case keyCtrlC, keyEsc:
		return keyinput.Raw{Kind: keyinput.KindOther, At: at}, true
	case keyBackspace, keyDelete:
		return keyinput.Raw{Kind: keyinput.KindBackspace, At: at}, false
	case ' ':
		return keyinput.Raw{Kind: keyinput.KindSpace, At: at}, false
	}
	if r < ' ' {
		return keyinput.Raw{Kind: keyinput.KindOther, At: at}, false
	}
	return keyinput.Raw{Kind: keyinput.KindRunes, Runes: []rune{r}, At: at}, false
}

// Run plays one session until the text is complete, the input ends, the user
// aborts or ctx is cancelled.
func Run(ctx context.Context, opts Options) (Result, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	st := &status{out: opts.Out, text: []rune(opts.Text), metrics: model.Metrics{Accuracy: 100}}
	var summary model.Summary
	session := engine.NewSession(opts.Mode, opts.Text,
		engine.WithErrorSink(st.bell),
		engine.WithCompleteSink(func(s model.Summary) { summary = s }),
	)
	guard := engine.NewGuard(session)

	st.printf("%s\r\n", opts.Text)
	st.render()

	metricsDone := schedule.Loop(ctx, schedule.MetricsInterval, func(now time.Time) bool {
		if guard.Done() {
			return false
		}
		st.setMetrics(guard.Metrics(now), guard.Snapshot().CurrentIndex)
		return true
	})
	raceDone := closedChan()
	if opts.Race != nil {
		rc := opts.Race
		raceDone = schedule.Loop(ctx, schedule.RaceInterval, func(now time.Time) bool {
			if guard.Done() {
				return false
			}
			snap := guard.Snapshot()
			st.setStandings(race.Standings(rc.Bots, rc.FrameAt(now), playerName, snap.Progress()))
			return true
		})
	}

	keys := make(chan rune)
	readErr := make(chan error, 1)
	go readRunes(ctx, opts.In, keys, readErr)

	err := loop(ctx, opts, guard, keys, readErr)
	if summary == nil {
		guard.Abort()
	}
	cancel()
	<-metricsDone
	<-raceDone

	snap := guard.Snapshot()
	if summary != nil {
		st.setMetrics(engine.LiveMetrics(snap, snap.EndedAt), snap.CurrentIndex)
	}
	st.printf("\r\n")

	res := Result{
		Summary:   summary,
		KeyStats:  guard.KeyStats(),
		Latencies: session.Latencies(),
		StartedAt: snap.StartedAt,
		EndedAt:   snap.EndedAt,
	}
	if summary == nil {
		opts.Logger.Debug("plain session aborted", zap.Int("index", snap.CurrentIndex))
	}
	return res, err
}

func loop(ctx context.Context, opts Options, guard *engine.Guard, keys <-chan rune, readErr <-chan error) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		case r := <-keys:
			now := opts.Now()
			raw, abort := Decode(r, now)
			if abort {
				return nil
			}
			if opts.Race != nil && now.Before(opts.Race.StartAt) {
				continue
			}
			ev, ok := keyinput.Filter(opts.Mode, raw)
			if !ok {
				continue
			}
			if out := guard.Apply(ev); out.Completed {
				return nil
			}
		}
	}
}

func readRunes(ctx context.Context, in io.Reader, keys chan<- rune, readErr chan<- error) {
	reader := bufio.NewReader(in)
	for {
		r, _, err := reader.ReadRune()
		if err == nil && r == keyEsc {
			r, err = readEscape(reader)
		}
		if err != nil {
			readErr <- err
			return
		}
		select {
		case keys <- r:
		case <-ctx.Done():
			return
		}
	}
}

// readEscape folds the bytes following esc into one key. A lone esc has
// nothing buffered behind it; arrow, function and navigation keys arrive as
// "esc [ ... final" or "esc O x" in a single write.
func readEscape(reader *bufio.Reader) (rune, error) {
	if reader.Buffered() == 0 {
		return keyEsc, nil
	}
	next, err := reader.Peek(1)
	if err != nil {
		return keyEsc, nil
	}
	switch next[0] {
	case '[':
		if _, err := reader.ReadByte(); err != nil {
			return 0, err
		}
		for {
			b, err := reader.ReadByte()
			if err != nil {
				return 0, err
			}
			if b >= 0x40 && b <= 0x7e {
				return keySequence, nil
			}
		}
	case 'O':
		if _, err := reader.ReadByte(); err != nil {
			return 0, err
		}
		if _, err := reader.ReadByte(); err != nil {
			return 0, err
		}
		return keySequence, nil
	}
	return keyEsc, nil
}

func closedChan() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// status owns the single redrawn line. Both loops and the sinks write through it.
type status struct {
	mu        sync.Mutex
	out       io.Writer
	text      []rune
	metrics   model.Metrics
	index     int
	standings []race.Standing
}

func (s *status) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintf(s.out, format, args...); err != nil {
		_ = err
	}
}

func (s *status) bell() {
	s.printf("\a")
}

func (s *status) setMetrics(m model.Metrics, index int) {
	s.mu.Lock()
	s.metrics = m
	s.index = index
	s.mu.Unlock()
	s.render()
}

func (s *status) setStandings(rows []race.Standing) {
	s.mu.Lock()
	s.standings = rows
	s.mu.Unlock()
	s.render()
}

func (s *status) render() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := io.WriteString(s.out, "\r\x1b[K"+s.line()); err != nil {
		_ = err
	}
}

func (s *status) line() string {
	progress := 100
	if len(s.text) > 0 {
		progress = s.index * 100 / len(s.text)
	}
	parts := []string{fmt.Sprintf("WPM %d | Acc %d%% | %d%%", s.metrics.WPM, s.metrics.Accuracy, progress)}
	if len(s.standings) > 0 {
		for i, st := range s.standings {
			if st.IsPlayer {
				parts = append(parts, fmt.Sprintf("#%d of %d", i+1, len(s.standings)))
				break
			}
		}
	}
	if s.index < len(s.text) {
		rest := s.text[s.index:]
		if len(rest) > previewWidth {
			rest = rest[:previewWidth]
		}
		parts = append(parts, "> "+string(rest))
	}
	return strings.Join(parts, " | ")
}
