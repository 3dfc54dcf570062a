package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// charState is the evaluation state of one text position.
type charState int

const (
	statePending charState = iota
	stateCorrect
	stateIncorrect
)

type styledRune struct {
	s       string
	width   int
	isSpace bool
}

// buildStyledRunes styles the text by position state. cursor is -1 once the
// text is complete; flash paints the cursor as an error.
func buildStyledRunes(target []rune, states []charState, cursor int, flash bool) []styledRune {
	current := wordAt(findWords(target), cursor)

	out := make([]styledRune, 0, len(target))
	for i, r := range target {
		displayed := r
		style := pendingStyle
		switch stateAt(states, i) {
		case stateCorrect:
			style = correctStyle
		case stateIncorrect:
			style = incorrectStyle
			if r == ' ' {
				displayed = '•'
			}
		default:
			if r != ' ' && current != nil && i >= current.start && i < current.end {
				style = currentWordStyle
			}
		}
		if i == cursor {
			if flash {
				style = flashStyle
			} else {
				style = style.Underline(true)
			}
		}
		out = append(out, styledRune{
			s:       style.Render(string(displayed)),
			width:   runewidth.RuneWidth(displayed),
			isSpace: r == ' ',
		})
	}
	return out
}

func stateAt(states []charState, i int) charState {
	if i < len(states) {
		return states[i]
	}
	return statePending
}

type wordRange struct {
	start int
	end   int
}

func findWords(target []rune) []wordRange {
	var words []wordRange
	start := -1
	for i, r := range target {
		switch {
		case r == ' ' && start != -1:
			words = append(words, wordRange{start: start, end: i})
			start = -1
		case r != ' ' && start == -1:
			start = i
		}
	}
	if start != -1 {
		words = append(words, wordRange{start: start, end: len(target)})
	}
	return words
}

// wordAt returns the word containing cursor, or the next word when the
// cursor sits on a space.
func wordAt(words []wordRange, cursor int) *wordRange {
	if len(words) == 0 {
		return nil
	}
	if cursor < 0 {
		return nil
	}
	for i := range words {
		if cursor < words[i].end {
			return &words[i]
		}
	}
	return &words[len(words)-1]
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

// wrapStyledRunes breaks lines at spaces so no line exceeds width cells.
// Words longer than width are split.
func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var out strings.Builder
	line := make([]styledRune, 0, width)
	lineWidth := 0
	lastSpace := -1

	flush := func(upto int) {
		out.WriteString(renderStyledRunes(line[:upto]))
		out.WriteRune('\n')
	}
	for i := 0; i < len(runes); {
		item := runes[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if lastSpace >= 0 {
				flush(lastSpace)
				line = append(line[:0:0], line[lastSpace+1:]...)
			} else {
				flush(len(line))
				line = line[:0]
			}
			lineWidth, lastSpace = measure(line)
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpace = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyledRunes(line))
	return out.String()
}

func measure(line []styledRune) (width, lastSpace int) {
	lastSpace = -1
	for i, item := range line {
		width += item.width
		if item.isSpace {
			lastSpace = i
		}
	}
	return width, lastSpace
}
