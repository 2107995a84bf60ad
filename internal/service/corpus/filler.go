package corpus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/heartmarshall/babble-backend/internal/domain"
	"github.com/heartmarshall/babble-backend/internal/lemma"
)

// Fill asks the generator for req.Count sentences, normalizes every
// translation and stores the ones not already in the corpus. It returns only
// the sentences actually inserted.
//
// Generator, parse and store failures are logged and yield zero sentences.
// Only a missing tagging model is returned as an error.
func (s *Service) Fill(ctx context.Context, req FillRequest) ([]domain.Sentence, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !s.supports(req.BaseLanguage) {
		return nil, fmt.Errorf("fill %q: %w", req.BaseLanguage, domain.ErrModelUnavailable)
	}

	langs := s.languageCodes()
	prompt := s.buildPrompt(req)

	start := time.Now()
	raw, err := s.generator.Generate(ctx, prompt, langs)
	if err != nil {
		s.metrics.GeneratorCall(req.BaseLanguage, "error", time.Since(start))
		s.log.WarnContext(ctx, "generator call failed",
			slog.String("lang", req.BaseLanguage),
			slog.Int("count", req.Count),
			slog.String("error", err.Error()),
		)
		return nil, nil
	}
	s.metrics.GeneratorCall(req.BaseLanguage, "ok", time.Since(start))

	parsed := ParseGeneration(raw)
	s.metrics.ParseResult(parsed.Kind.String())
	if parsed.Kind == Unparseable {
		s.log.ErrorContext(ctx, "unable to parse generator output",
			slog.String("lang", req.BaseLanguage),
			slog.String("content", truncate(raw, 500)),
		)
		return nil, nil
	}

	texts := sentenceTexts(parsed.Items, langs)
	s.log.InfoContext(ctx, "generator returned sentences",
		slog.String("lang", req.BaseLanguage),
		slog.String("shape", parsed.Kind.String()),
		slog.Bool("fenced", parsed.Fenced),
		slog.Int("items", len(parsed.Items)),
		slog.Int("valid", len(texts)),
		slog.Duration("took", time.Since(start)),
	)

	now := s.now()
	candidates := make([]domain.Sentence, 0, len(texts))
	for _, t := range texts {
		sentence, err := s.buildSentence(ctx, t, now)
		if err != nil {
			if errors.Is(err, domain.ErrModelUnavailable) {
				return nil, err
			}
			s.log.WarnContext(ctx, "skip generated sentence",
				slog.String("text", t[req.BaseLanguage]),
				slog.String("error", err.Error()),
			)
			continue
		}
		if len(sentence.Lemmas[req.BaseLanguage]) == 0 {
			s.log.DebugContext(ctx, "skip generated sentence without lemmas",
				slog.String("text", t[req.BaseLanguage]),
			)
			continue
		}
		s.logConstraintMisses(ctx, req, sentence)
		candidates = append(candidates, sentence)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	inserted, err := s.store.InsertIfAbsent(ctx, req.BaseLanguage, candidates)
	if err != nil {
		s.log.ErrorContext(ctx, "insert generated sentences",
			slog.String("lang", req.BaseLanguage),
			slog.Int("candidates", len(candidates)),
			slog.String("error", err.Error()),
		)
		return nil, nil
	}

	s.metrics.SentencesAdded(req.BaseLanguage, len(inserted))
	if dup := len(candidates) - len(inserted); dup > 0 {
		s.log.InfoContext(ctx, "skipped duplicate sentences", slog.Int("duplicates", dup))
	}
	return inserted, nil
}

func (s *Service) buildSentence(ctx context.Context, texts map[string]string, now time.Time) (domain.Sentence, error) {
	sentence := domain.Sentence{
		ID:        uuid.New(),
		Text:      texts,
		Lemmas:    make(map[string][]string, len(texts)),
		CreatedAt: now,
	}
	for lang, text := range texts {
		lemmas, err := s.normalizer.Normalize(ctx, lang, text, lemma.Options{SkipProperNouns: s.cfg.SkipProperNouns})
		if err != nil {
			return domain.Sentence{}, fmt.Errorf("normalize %s: %w", lang, err)
		}
		sentence.Lemmas[lang] = lemmas
	}
	return sentence, nil
}

func (s *Service) logConstraintMisses(ctx context.Context, req FillRequest, sentence domain.Sentence) {
	var extra []string
	for _, l := range sentence.Lemmas[req.BaseLanguage] {
		if !req.Dictionary.Contains(l) {
			extra = append(extra, l)
		}
	}
	if len(extra) > 0 {
		s.log.DebugContext(ctx, "generated sentence uses unknown words",
			slog.String("text", sentence.Text[req.BaseLanguage]),
			slog.Any("extra", extra),
		)
	}
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
