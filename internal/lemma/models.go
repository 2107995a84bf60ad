package lemma

import (
	"context"
	"slices"

	"github.com/heartmarshall/babble-backend/internal/domain"
)

// Token is one word of a tagged sentence.
type Token struct {
	Text    string
	Lemma   string
	POS     domain.PartOfSpeech
	IsAlpha bool
}

// Tagger produces tokens with base forms and part-of-speech tags.
type Tagger interface {
	Tag(ctx context.Context, lang, text string) ([]Token, error)
}

// Models is the set of loaded tagging models. It is built once at startup and
// passed explicitly to everything that needs lemmatization.
type Models struct {
	tagger    Tagger
	languages map[string]struct{}
	rules     map[string]Rules
}

// NewModels registers tagger for the given languages. Languages without
// built-in rules get empty rules.
func NewModels(tagger Tagger, languages []string) *Models {
	m := &Models{
		tagger:    tagger,
		languages: make(map[string]struct{}, len(languages)),
		rules:     make(map[string]Rules, len(languages)),
	}
	for _, lang := range languages {
		m.languages[lang] = struct{}{}
		m.rules[lang] = RulesFor(lang)
	}
	return m
}

// Supports reports whether a tagging model is loaded for lang.
func (m *Models) Supports(lang string) bool {
	_, ok := m.languages[lang]
	return ok
}

// Languages returns the loaded languages in lexical order.
func (m *Models) Languages() []string {
	out := make([]string, 0, len(m.languages))
	for lang := range m.languages {
		out = append(out, lang)
	}
	slices.Sort(out)
	return out
}

func (m *Models) rulesFor(lang string) Rules {
	return m.rules[lang]
}
