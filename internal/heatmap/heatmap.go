// Package heatmap aggregates per-key press and error counts across sessions.
package heatmap

import (
	"math"
	"sort"
	"unicode"

	"github.com/verte-zerg/orbitype/internal/model"
)

const (
	// MinPresses is the sample floor for ranking a key.
	MinPresses = 3
	// DefaultLimit caps the weakest/strongest views.
	DefaultLimit = 5
)

// Heatmap is the durable per-key aggregate. The zero value is not usable; use New.
type Heatmap struct {
	keys map[rune]model.KeyStat
}

// New returns an empty heatmap.
func New() *Heatmap {
	return &Heatmap{keys: make(map[rune]model.KeyStat)}
}

// FromStats builds a heatmap from stored rows.
func FromStats(stats []model.KeyStat) *Heatmap {
	h := New()
	for _, st := range stats {
		h.Merge(map[rune]model.KeyCounter{st.Key: {Presses: st.Presses, Errors: st.Errors}})
	}
	return h
}

// Merge adds delta to the aggregate. Negative counts are ignored so that no
// key ever decreases.
func (h *Heatmap) Merge(delta map[rune]model.KeyCounter) {
	for r, c := range delta {
		presses, errs := c.Presses, c.Errors
		if presses < 0 {
			presses = 0
		}
		if errs < 0 {
			errs = 0
		}
		if errs > presses {
			errs = presses
		}
		if presses == 0 {
			continue
		}
		st := h.keys[r]
		st.Key = r
		st.Presses += presses
		st.Errors += errs
		h.keys[r] = st
	}
}

// Get returns the stat for r.
func (h *Heatmap) Get(r rune) (model.KeyStat, bool) {
	st, ok := h.keys[r]
	return st, ok
}

// Fold returns the combined stat for r regardless of letter case.
func (h *Heatmap) Fold(r rune) (model.KeyStat, bool) {
	lower, upper := unicode.ToLower(r), unicode.ToUpper(r)
	out := model.KeyStat{Key: lower}
	found := false
	for _, k := range []rune{lower, upper} {
		if st, ok := h.keys[k]; ok {
			out.Presses += st.Presses
			out.Errors += st.Errors
			found = true
		}
		if lower == upper {
			break
		}
	}
	return out, found
}

// Len returns the number of tracked keys.
func (h *Heatmap) Len() int { return len(h.keys) }

// Stats returns every key ordered by rune.
func (h *Heatmap) Stats() []model.KeyStat {
	out := make([]model.KeyStat, 0, len(h.keys))
	for _, st := range h.keys {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Weakest returns up to n keys with enough samples, lowest accuracy first.
func (h *Heatmap) Weakest(n int) []model.KeyStat {
	return h.ranked(n, func(a, b float64) bool { return a < b })
}

// Strongest returns up to n keys with enough samples, highest accuracy first.
func (h *Heatmap) Strongest(n int) []model.KeyStat {
	return h.ranked(n, func(a, b float64) bool { return a > b })
}

func (h *Heatmap) ranked(n int, better func(a, b float64) bool) []model.KeyStat {
	if n <= 0 {
		n = DefaultLimit
	}
	candidates := make([]model.KeyStat, 0, len(h.keys))
	for _, st := range h.keys {
		if st.Presses >= MinPresses {
			candidates = append(candidates, st)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		ai, aj := candidates[i].Accuracy(), candidates[j].Accuracy()
		if ai != aj {
			return better(ai, aj)
		}
		return candidates[i].Key < candidates[j].Key
	})
	if len(candidates) > n {
		candidates = candidates[:n]
	}
	return candidates
}

// Summary totals the heatmap.
type Summary struct {
	Keys         int
	TotalPresses int
	TotalErrors  int
	AvgAccuracy  int
}

// Summary returns pooled totals; average accuracy is 100 with no presses.
func (h *Heatmap) Summary() Summary {
	sum := Summary{Keys: len(h.keys), AvgAccuracy: 100}
	for _, st := range h.keys {
		sum.TotalPresses += st.Presses
		sum.TotalErrors += st.Errors
	}
	if sum.TotalPresses > 0 {
		acc := float64(sum.TotalPresses-sum.TotalErrors) / float64(sum.TotalPresses) * 100
		sum.AvgAccuracy = int(math.Round(acc))
	}
	return sum
}
