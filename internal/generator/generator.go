// Package generator draws practice passages from a word list.
package generator

import (
	"math/rand"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/verte-zerg/orbitype/internal/model"
)

// FocusWeight is the extra draw weight a word gains per focus key it holds.
const FocusWeight = 2.0

// Generator produces randomized typing text.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a deterministic Generator.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Shape describes a passage.
type Shape struct {
	Words    int
	CapsPct  float64
	PunctPct float64
	PunctSet []rune
	// Focus keys make the words containing them more likely.
	Focus []rune
}

// Passage draws s.Words words and decorates them with capitals and
// punctuation. It returns nil for an empty list.
func (g *Generator) Passage(words []string, s Shape) []string {
	if len(words) == 0 || s.Words <= 0 {
		return nil
	}
	draw := func() int { return g.rnd.Intn(len(words)) }
	if len(s.Focus) > 0 {
		draw = g.weighted(focusWeights(words, s.Focus))
	}
	out := make([]string, s.Words)
	for i := range out {
		out[i] = g.decorate(words[draw()], s)
	}
	return out
}

// Text builds a practice passage for cfg.
func (g *Generator) Text(words []string, cfg model.Config) string {
	return strings.Join(g.Passage(words, Shape{
		Words:    cfg.Words,
		CapsPct:  cfg.CapsPct,
		PunctPct: cfg.PunctPct,
		PunctSet: []rune(cfg.PunctSet),
	}), " ")
}

// Focused builds a plain lowercase passage of count words biased toward keys.
func (g *Generator) Focused(words []string, count int, keys []rune) string {
	return strings.Join(g.Passage(words, Shape{Words: count, Focus: keys}), " ")
}

// weighted draws indexes in proportion to weights by searching running totals.
func (g *Generator) weighted(weights []float64) func() int {
	totals := make([]float64, len(weights))
	sum := 0.0
	for i, w := range weights {
		sum += w
		totals[i] = sum
	}
	return func() int {
		i := sort.SearchFloat64s(totals, g.rnd.Float64()*sum)
		return min(i, len(totals)-1)
	}
}

func focusWeights(words []string, focus []rune) []float64 {
	set := make(map[rune]struct{}, len(focus))
	for _, k := range focus {
		set[unicode.ToLower(k)] = struct{}{}
	}
	weights := make([]float64, len(words))
	for i, word := range words {
		weights[i] = 1
		for _, r := range word {
			if _, ok := set[unicode.ToLower(r)]; ok {
				weights[i] += FocusWeight
			}
		}
	}
	return weights
}

func (g *Generator) decorate(word string, s Shape) string {
	if s.CapsPct > 0 && g.rnd.Float64() <= s.CapsPct {
		if r, size := utf8.DecodeRuneInString(word); size > 0 {
			word = string(unicode.ToUpper(r)) + word[size:]
		}
	}
	if s.PunctPct > 0 && len(s.PunctSet) > 0 && g.rnd.Float64() <= s.PunctPct {
		word += string(s.PunctSet[g.rnd.Intn(len(s.PunctSet))])
	}
	return word
}
