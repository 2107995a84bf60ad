package progress

import (
	"cmp"
	"slices"

	"github.com/heartmarshall/babble-backend/internal/domain"
)

// SuggestWordsToPractice picks up to n known words to build the next lesson
// around. Half of the picks (rounded up) are the words not seen for the
// longest time; the rest are the least-seen words, earliest introduced
// first. Ties fall back to the word itself, so the result is deterministic.
//
// The result has exactly min(n, len(p.Words)) distinct words, recency picks
// first. p is not modified.
func SuggestWordsToPractice(p *domain.LanguageProgress, n int) []string {
	if p == nil || n <= 0 || len(p.Words) == 0 {
		return []string{}
	}

	words := make([]string, 0, len(p.Words))
	for w := range p.Words {
		words = append(words, w)
	}

	// Pool A: longest not seen. A never-seen word has a zero LastSeenAt and
	// sorts first.
	slices.SortFunc(words, func(a, b string) int {
		if c := p.Words[a].LastSeenAt.Compare(p.Words[b].LastSeenAt); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	takeA := min((n+1)/2, len(words))
	suggested := slices.Clone(words[:takeA])

	// Pool B: under-exposed among the rest.
	rest := slices.Clone(words[takeA:])
	slices.SortFunc(rest, func(a, b string) int {
		sa, sb := p.Words[a], p.Words[b]
		if c := cmp.Compare(sa.SeenCount, sb.SeenCount); c != 0 {
			return c
		}
		if c := sa.FirstSeenAt.Compare(sb.FirstSeenAt); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	takeB := min(n-takeA, len(rest))
	suggested = append(suggested, rest[:takeB]...)

	return suggested
}
