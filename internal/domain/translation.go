package domain

import (
	"slices"
	"strings"
	"time"
)

// WordTranslations are the dictionary translations of one word of Lang into
// the Target language. An empty Translations list is a cached miss: the
// word was looked up and has no known translation.
type WordTranslations struct {
	Lang         string
	Word         string
	Target       string
	Translations []string
	UpdatedAt    time.Time
}

// CleanWord prepares a dictionary key: NFC, trimmed, lower case.
func CleanWord(word string) string {
	return strings.ToLower(CleanSentenceText(word))
}

// CleanTranslations trims every entry and drops blanks and repeats, keeping
// the first occurrence order.
func CleanTranslations(in []string) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = CleanSentenceText(t)
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}
