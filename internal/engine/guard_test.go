package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/verte-zerg/orbitype/internal/model"
)

func TestGuardConcurrentReaders(t *testing.T) {
	text := "the quick brown fox"
	completions := 0
	g := NewGuard(NewSession(model.ModeVelocity, text, WithCompleteSink(func(model.Summary) {
		completions++
	})))

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				m := g.Metrics(time.Now())
				if m.Accuracy < 0 || m.Accuracy > 100 {
					t.Errorf("accuracy out of range: %d", m.Accuracy)
					return
				}
			}
		}()
	}
	for i, r := range text {
		g.Apply(key(r, time.Duration(i)*100*time.Millisecond))
	}
	close(stop)
	wg.Wait()

	if !g.Done() {
		t.Fatalf("expected guard to report done")
	}
	if completions != 1 {
		t.Fatalf("expected one completion, got %d", completions)
	}
}

func TestGuardAbortDiscardsSession(t *testing.T) {
	completions := 0
	g := NewGuard(NewSession(model.ModeAcademy, "ab", WithCompleteSink(func(model.Summary) {
		completions++
	})))
	g.Apply(key('a', 0))
	g.Abort()
	out := g.Apply(key('b', time.Second))
	if out.Accepted || out.Completed {
		t.Fatalf("expected aborted guard to drop keystrokes, got %+v", out)
	}
	if completions != 0 {
		t.Fatalf("expected no summary after abort")
	}
	if !g.Done() {
		t.Fatalf("expected aborted guard to be done")
	}
	if got := g.Snapshot().CurrentIndex; got != 1 {
		t.Fatalf("expected index 1, got %d", got)
	}
}
