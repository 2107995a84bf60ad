package corpus

import (
	"fmt"
	"strings"
)

// buildPrompt describes the allowed vocabulary, the required-word constraint,
// the number of sentences and the per-language output fields.
func (s *Service) buildPrompt(req FillRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Here is a list of words in %s: %s. ",
		s.languageName(req.BaseLanguage), strings.Join(req.Dictionary.Sorted(), ", "))
	fmt.Fprintf(&b, "Generate %d different sentences with these words and only with these words "+
		"(without using any not from this list, except names)", req.Count)

	switch len(req.RequiredWords) {
	case 0:
	case 1:
		fmt.Fprintf(&b, ", but each sentence absolutely must contain the word '%s'", req.RequiredWords[0])
	default:
		b.WriteString(", but each sentence absolutely must contain at least one word from this list: ")
		b.WriteString(strings.Join(req.RequiredWords, ", "))
	}

	b.WriteString(". Return as a JSON list, with these fields for each: ")
	fields := make([]string, len(s.cfg.Languages))
	for i, l := range s.cfg.Languages {
		fields[i] = fmt.Sprintf("%s - sentence in %s", l.Code, l.Name)
	}
	b.WriteString(strings.Join(fields, ", "))
	return b.String()
}
