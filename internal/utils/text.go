package utils

import (
	"math"
	"strings"
)

const (
	wordsPerMinute = 200
	excerptLength  = 200
)

// WordCount counts whitespace-delimited tokens.
func WordCount(raw string) int {
	return len(strings.Fields(raw))
}

// ReadTime is ceil(words / 200) minutes.
func ReadTime(raw string) int {
	return int(math.Ceil(float64(WordCount(raw)) / wordsPerMinute))
}

// Excerpt returns the first 200 characters of raw followed by "...".
func Excerpt(raw string) string {
	runes := []rune(raw)
	if len(runes) > excerptLength {
		runes = runes[:excerptLength]
	}
	return string(runes) + "..."
}
