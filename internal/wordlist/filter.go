package wordlist

import (
	"strings"
	"unicode"
)

// Filter reports whether a word belongs in a practice pool.
type Filter func(string) bool

// ForLang keeps plain lowercase words. English lists are limited to a-z;
// other languages accept any lowercase letter so accented words survive.
// Capitals and punctuation are added later by the generator.
func ForLang(lang string) Filter {
	if strings.EqualFold(lang, BuiltinLang) {
		return func(word string) bool {
			return allRunes(word, func(r rune) bool { return r >= 'a' && r <= 'z' })
		}
	}
	return func(word string) bool {
		return allRunes(word, func(r rune) bool { return unicode.IsLetter(r) && !unicode.IsUpper(r) })
	}
}

// Containing keeps words that use at least one of keys, ignoring case.
func Containing(keys []rune) Filter {
	set := make(map[rune]struct{}, len(keys))
	for _, k := range keys {
		set[unicode.ToLower(k)] = struct{}{}
	}
	return func(word string) bool {
		for _, r := range word {
			if _, ok := set[unicode.ToLower(r)]; ok {
				return true
			}
		}
		return false
	}
}

// Between keeps words with lo..hi runes.
func Between(lo, hi int) Filter {
	return func(word string) bool {
		n := len([]rune(word))
		return n >= lo && n <= hi
	}
}

// Apply returns the words passing every filter. words is left untouched.
func Apply(words []string, filters ...Filter) []string {
	kept := make([]string, 0, len(words))
next:
	for _, w := range words {
		for _, f := range filters {
			if !f(w) {
				continue next
			}
		}
		kept = append(kept, w)
	}
	return kept
}

func allRunes(word string, ok func(rune) bool) bool {
	if word == "" {
		return false
	}
	for _, r := range word {
		if !ok(r) {
			return false
		}
	}
	return true
}
