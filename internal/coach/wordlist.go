package coach

import (
	"context"
	"sync"

	"github.com/verte-zerg/orbitype/internal/generator"
	"github.com/verte-zerg/orbitype/internal/wordlist"
)

const (
	// DrillWords is the length of a locally generated drill.
	DrillWords = 50
	// minFocusPool is the smallest weak-key pool worth drilling on its own.
	minFocusPool = 10
)

// WordlistGenerator builds drills offline from a word list.
type WordlistGenerator struct {
	mu    sync.Mutex
	gen   *generator.Generator
	words []string
}

// NewWordlistGenerator creates a local generator over words.
func NewWordlistGenerator(gen *generator.Generator, words []string) *WordlistGenerator {
	return &WordlistGenerator{gen: gen, words: words}
}

// Drill implements Generator.
func (w *WordlistGenerator) Drill(_ context.Context, keys []rune) (string, error) {
	if len(w.words) == 0 {
		return "", ErrNoGenerator
	}
	pool := wordlist.Apply(w.words, wordlist.Containing(keys))
	if len(pool) < minFocusPool {
		pool = w.words
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.gen.Focused(pool, DrillWords, keys), nil
}

// SpeedDrill implements Generator using the shortest words.
func (w *WordlistGenerator) SpeedDrill(_ context.Context) (string, error) {
	short := wordlist.Apply(w.words, wordlist.Between(3, 6))
	if len(short) == 0 {
		short = w.words
	}
	if len(short) == 0 {
		return "", ErrNoGenerator
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.gen.Focused(short, DrillWords, nil), nil
}
