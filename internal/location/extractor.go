// Package location pulls a city name out of a free-form weather question.
//
// It is a positional keyword heuristic, not entity recognition: the word right
// after the first matching preposition is taken as the city, so multi-word
// names ("New York") only yield their first word.
package location

import "strings"

// prepositions are tried in this order; the first one that yields a word wins,
// even when a lower priority preposition appears earlier in the text.
var prepositions = []string{"in", "at", "for"}

const trailingPunct = "?.,!"

// Extract returns the word following the highest priority preposition, with
// its original casing and any punctuation still attached.
func Extract(text string) (string, bool) {
	lower := strings.ToLower(text)
	words := strings.Fields(text)
	// ToLower never maps a non-space rune to a space, so both slices align.
	lowerWords := strings.Fields(lower)

	for _, prep := range prepositions {
		if !strings.Contains(lower, " "+prep+" ") {
			continue
		}
		idx := indexOf(lowerWords, prep)
		if idx < 0 || idx+1 >= len(words) {
			continue
		}
		return words[idx+1], true
	}
	return "", false
}

// Sanitize strips trailing sentence punctuation from an extracted location.
func Sanitize(loc string) string {
	return strings.TrimRight(loc, trailingPunct)
}

func indexOf(words []string, target string) int {
	for i, w := range words {
		if w == target {
			return i
		}
	}
	return -1
}
