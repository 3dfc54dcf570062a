package stats

import (
	"sort"

	"github.com/verte-zerg/orbitype/internal/model"
)

// TopKeysByFrequency returns the n most pressed keys.
func TopKeysByFrequency(keys []model.KeyStat, n int) []model.KeyStat {
	if n <= 0 || len(keys) == 0 {
		return nil
	}
	sorted := append([]model.KeyStat(nil), keys...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Presses == sorted[j].Presses {
			return sorted[i].Key < sorted[j].Key
		}
		return sorted[i].Presses > sorted[j].Presses
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}
