// Package race simulates bot opponents as a pure function of elapsed time.
package race

import (
	"math"
	"time"

	"github.com/verte-zerg/orbitype/internal/model"
)

const (
	ReactionDelay     = 100 * time.Millisecond
	FatigueAfter      = 30 * time.Second
	FatigueMultiplier = 0.7
)

// Multiplier returns the fixed pace modifier for a personality.
func Multiplier(p model.Personality) float64 {
	switch p {
	case model.PersonalityAggressive:
		return 1.05
	case model.PersonalitySteady:
		return 1.0
	case model.PersonalityCautious:
		return 0.95
	default:
		return 1.0
	}
}

func charsPerSecond(bot model.RaceBot) float64 {
	return float64(bot.TargetWPM) * 5 / 60
}

// Position returns the bot's progress through a text of textLength
// characters as a percentage in [0, 100].
func Position(bot model.RaceBot, elapsed time.Duration, textLength int) float64 {
	if textLength <= 0 || elapsed < ReactionDelay {
		return 0
	}
	active := elapsed - ReactionDelay
	fatigue := 1.0
	if active > FatigueAfter {
		fatigue = FatigueMultiplier
	}
	chars := charsPerSecond(bot) * active.Seconds() * fatigue * Multiplier(bot.Personality)
	pos := chars / float64(textLength) * 100
	return math.Max(0, math.Min(100, pos))
}

// Frame maps bot id to position percentage.
type Frame map[string]float64

// FrameAt computes every bot position at now, rounded to two decimals.
func FrameAt(bots []model.RaceBot, startAt time.Time, textLength int, now time.Time) Frame {
	elapsed := now.Sub(startAt)
	frame := make(Frame, len(bots))
	for _, bot := range bots {
		frame[bot.ID] = math.Round(Position(bot, elapsed, textLength)*100) / 100
	}
	return frame
}

// FinishTime returns how long after the start the bot reaches 100%.
func FinishTime(bot model.RaceBot, textLength int) (time.Duration, bool) {
	if textLength <= 0 {
		return ReactionDelay, true
	}
	speed := charsPerSecond(bot) * Multiplier(bot.Personality)
	if speed <= 0 {
		return 0, false
	}
	fresh := seconds(float64(textLength) / speed)
	if fresh <= FatigueAfter {
		return ReactionDelay + fresh, true
	}
	return ReactionDelay + seconds(float64(textLength)/(speed*FatigueMultiplier)), true
}

func seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}
