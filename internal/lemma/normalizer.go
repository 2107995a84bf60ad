package lemma

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/heartmarshall/babble-backend/internal/domain"
)

// Options tune a single Normalize call.
type Options struct {
	// SkipProperNouns drops tokens still tagged PROPN after disambiguation,
	// except fake proper nouns.
	SkipProperNouns bool
	// SkipWords replaces the language's stopword list when non-empty.
	SkipWords []string
}

// Normalizer turns sentences into ordered lists of canonical lemmas.
type Normalizer struct {
	models *Models
	log    *slog.Logger
}

func NewNormalizer(logger *slog.Logger, models *Models) *Normalizer {
	return &Normalizer{
		models: models,
		log:    logger.With("service", "lemma"),
	}
}

// Models returns the capability set the normalizer was built with.
func (n *Normalizer) Models() *Models {
	return n.models
}

// Normalize returns the lemmas of text in lang, in sentence order with
// duplicates kept. It returns domain.ErrModelUnavailable when no tagging
// model is loaded for lang.
func (n *Normalizer) Normalize(ctx context.Context, lang, text string, opts Options) ([]string, error) {
	if !n.models.Supports(lang) {
		return nil, fmt.Errorf("lemmatize %q: %w", lang, domain.ErrModelUnavailable)
	}

	text = norm.NFC.String(text)
	lower := cases.Lower(language.Make(lang))
	lowerString := func(s string) string { return lower.String(s) }

	tokens, err := n.models.tagger.Tag(ctx, lang, text)
	if err != nil {
		return nil, fmt.Errorf("tag sentence: %w", err)
	}
	lowerTokens, err := n.models.tagger.Tag(ctx, lang, lowerString(text))
	if err != nil {
		return nil, fmt.Errorf("tag lowercased sentence: %w", err)
	}

	rules := n.models.rulesFor(lang)
	skip := rules.StopWords
	if len(opts.SkipWords) > 0 {
		skip = opts.SkipWords
	}

	count := min(len(tokens), len(lowerTokens))
	if len(tokens) != len(lowerTokens) {
		n.log.DebugContext(ctx, "tokenization differs between cased and lowercased pass",
			slog.String("lang", lang),
			slog.Int("cased", len(tokens)),
			slog.Int("lowered", len(lowerTokens)),
		)
	}

	lemmas := make([]string, 0, count)
	for i := range count {
		tok, lowTok := tokens[i], lowerTokens[i]
		if !tok.IsAlpha {
			continue
		}
		if tok.POS.IsProperNoun() && startsUpper(tok.Lemma) && !lowTok.POS.IsProperNoun() {
			tok = lowTok
		}
		if opts.SkipProperNouns && tok.POS.IsProperNoun() && !rules.isFakeProperNoun(tok.Lemma) {
			continue
		}
		for _, word := range strings.Fields(tok.Lemma) {
			if slices.Contains(skip, word) {
				continue
			}
			lemmas = append(lemmas, rules.correct(word, lowerString))
		}
	}
	return lemmas, nil
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r != utf8.RuneError && unicode.IsUpper(r)
}
