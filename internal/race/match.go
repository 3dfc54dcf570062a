package race

import (
	"sort"

	"github.com/verte-zerg/orbitype/internal/model"
)

const (
	// MatchWindow is the ±WPM range considered a fair opponent.
	MatchWindow = 10
	// FieldSize is the number of bots per race.
	FieldSize = 3
)

// DefaultBots is the built-in roster used when no roster file is available.
func DefaultBots() []model.RaceBot {
	return []model.RaceBot{
		{ID: "1", Name: "Turbo", TargetWPM: 80, ErrorRate: 0.02, Personality: model.PersonalityAggressive},
		{ID: "2", Name: "Steady", TargetWPM: 60, ErrorRate: 0.01, Personality: model.PersonalitySteady},
		{ID: "3", Name: "Cautious", TargetWPM: 50, ErrorRate: 0.005, Personality: model.PersonalityCautious},
	}
}

// MatchBots picks FieldSize opponents close to avgWPM, preferring one bot per
// personality when the candidate pool allows it.
func MatchBots(all []model.RaceBot, avgWPM int) []model.RaceBot {
	var matched []model.RaceBot
	for _, bot := range all {
		if distance(bot, avgWPM) <= MatchWindow {
			matched = append(matched, bot)
		}
	}
	if len(matched) >= FieldSize {
		if diverse, ok := onePerPersonality(matched); ok {
			return diverse
		}
		return clone(matched[:FieldSize])
	}

	sorted := clone(all)
	sort.SliceStable(sorted, func(i, j int) bool {
		return distance(sorted[i], avgWPM) < distance(sorted[j], avgWPM)
	})
	selected := sorted
	if len(selected) > FieldSize {
		selected = selected[:FieldSize]
	}
	if !distinctPersonalities(selected) {
		if diverse, ok := onePerPersonality(sorted); ok {
			return diverse
		}
	}
	return clone(selected)
}

func distance(bot model.RaceBot, wpm int) int {
	d := bot.TargetWPM - wpm
	if d < 0 {
		return -d
	}
	return d
}

func onePerPersonality(pool []model.RaceBot) ([]model.RaceBot, bool) {
	out := make([]model.RaceBot, 0, len(model.Personalities))
	for _, p := range model.Personalities {
		found := false
		for _, bot := range pool {
			if bot.Personality == p {
				out = append(out, bot)
				found = true
				break
			}
		}
		if !found {
			return nil, false
		}
	}
	return out, true
}

func distinctPersonalities(bots []model.RaceBot) bool {
	seen := make(map[model.Personality]struct{}, len(bots))
	for _, bot := range bots {
		seen[bot.Personality] = struct{}{}
	}
	return len(seen) >= len(model.Personalities)
}

func clone(bots []model.RaceBot) []model.RaceBot {
	out := make([]model.RaceBot, len(bots))
	copy(out, bots)
	return out
}
