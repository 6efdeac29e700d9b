// Package matcher holds the pure answer-comparison functions used when
// grading exercises. None of them keep state.
package matcher

import (
	"slices"
	"strings"
)

// Normalize trims s, lowercases it and collapses every whitespace run to a
// single space. Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// TrimPeriod drops one trailing period from an already normalized string.
func TrimPeriod(s string) string {
	return strings.TrimSpace(strings.TrimSuffix(s, "."))
}

// IsAccepted reports whether input equals any accepted answer after normalization.
func IsAccepted(input string, accepted []string) bool {
	in := Normalize(input)
	for _, a := range accepted {
		if in == Normalize(a) {
			return true
		}
	}
	return false
}

// IsAcceptedIgnoringPeriod is IsAccepted with a final period treated as
// insignificant on both sides.
func IsAcceptedIgnoringPeriod(input string, accepted []string) bool {
	in := TrimPeriod(Normalize(input))
	for _, a := range accepted {
		if in == TrimPeriod(Normalize(a)) {
			return true
		}
	}
	return false
}

// SetEquals reports whether selected and expected hold the same strings,
// compared element-wise after sorting.
func SetEquals(selected, expected []string) bool {
	if len(selected) != len(expected) {
		return false
	}
	a := slices.Clone(selected)
	b := slices.Clone(expected)
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(a, b)
}

// KeywordScore counts the keywords that occur as substrings of the
// normalized input. It is not word-boundary aware: "i" matches inside "in".
func KeywordScore(input string, keywords []string) (matched, total int) {
	text := Normalize(input)
	for _, k := range keywords {
		if strings.Contains(text, Normalize(k)) {
			matched++
		}
	}
	return matched, len(keywords)
}
