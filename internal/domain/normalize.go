package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// CleanSentenceText prepares a sentence for storage and duplicate detection:
//   - converts to Unicode NFC
//   - trims leading/trailing whitespace
//   - collapses every whitespace run (newlines and tabs included) into one space
//
// Case and punctuation are preserved.
func CleanSentenceText(text string) string {
	text = strings.TrimSpace(norm.NFC.String(text))
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text))
	prevSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if prevSpace {
				continue
			}
			prevSpace = true
			b.WriteByte(' ')
			continue
		}
		prevSpace = false
		b.WriteRune(r)
	}
	return b.String()
}
