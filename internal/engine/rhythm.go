package engine

import (
	"math"
	"time"

	"github.com/verte-zerg/orbitype/internal/model"
)

// RhythmScore rates typing consistency from 0 to 100 using the coefficient
// of variation of inter-key latencies. Fewer than two samples score 100.
func RhythmScore(latencies []time.Duration) int {
	if len(latencies) < 2 {
		return 100
	}
	mean, variance := meanVariance(latencies)
	std := math.Sqrt(variance)
	if mean <= 0 {
		return 100
	}
	score := 100 - (std/mean)*100
	return int(math.Round(math.Max(0, math.Min(100, score))))
}

// LatencyAverage returns the mean latency and whether any samples exist.
func LatencyAverage(latencies []time.Duration) (time.Duration, bool) {
	if len(latencies) == 0 {
		return 0, false
	}
	mean, _ := meanVariance(latencies)
	return time.Duration(math.Round(mean * float64(time.Millisecond))), true
}

// AnalyzeRhythm computes the score together with streak and slow-key details.
func AnalyzeRhythm(latencies []time.Duration) model.RhythmAnalysis {
	analysis := model.RhythmAnalysis{Score: RhythmScore(latencies)}
	if len(latencies) == 0 {
		return analysis
	}
	mean, variance := meanVariance(latencies)
	analysis.Average, _ = LatencyAverage(latencies)
	analysis.VarianceMs = variance

	streak := 0
	threshold := mean + math.Sqrt(variance)
	for i, l := range latencies {
		ms := durationMs(l)
		if ms < mean {
			streak++
			if streak > analysis.FastestStreak {
				analysis.FastestStreak = streak
			}
		} else {
			streak = 0
		}
		if len(latencies) > 1 && ms > threshold {
			analysis.SlowPoints = append(analysis.SlowPoints, model.LatencyPoint{Index: i, Latency: l})
		}
	}
	return analysis
}

// meanVariance returns the mean and population variance in milliseconds.
func meanVariance(latencies []time.Duration) (float64, float64) {
	var sum float64
	for _, l := range latencies {
		sum += durationMs(l)
	}
	mean := sum / float64(len(latencies))
	var sq float64
	for _, l := range latencies {
		d := durationMs(l) - mean
		sq += d * d
	}
	return mean, sq / float64(len(latencies))
}

func durationMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
