package textutil

import (
	"math/rand"
	"regexp"
	"strings"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Normalize collapses runs of whitespace to single spaces and trims.
func Normalize(t string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(t, " "))
}

// optOutPhrases are matched case-insensitively as substrings.
var optOutPhrases = []string{
	"stop",
	"не пиши",
	"отстань",
	"убери",
	"не надо",
	"хватит",
	"unsubscribe",
}

// HasOptOut reports whether the text contains any opt-out phrase.
func HasOptOut(text string) bool {
	t := strings.ToLower(text)
	for _, k := range optOutPhrases {
		if strings.Contains(t, k) {
			return true
		}
	}
	return false
}

// Truncate limits a string to max runes.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// RandInt returns a random integer in [min, max].
func RandInt(min, max int) int {
	if max <= min {
		return min
	}
	return min + rand.Intn(max-min+1)
}
