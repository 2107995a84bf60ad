// Package dictionary keeps the word translation dictionary. Lookups are
// served from the store; missing words are fetched from the translation
// provider once and cached, misses included.
package dictionary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/heartmarshall/babble-backend/internal/domain"
)

type translationRepo interface {
	Get(ctx context.Context, lang, word, target string) (*domain.WordTranslations, error)
	GetMany(ctx context.Context, lang, target string, words []string) (map[string][]string, error)
	Search(ctx context.Context, lang, prefix string, limit int) ([]domain.WordTranslations, error)
	Insert(ctx context.Context, wt domain.WordTranslations) error
	Upsert(ctx context.Context, wt domain.WordTranslations) error
}

type translator interface {
	Translate(ctx context.Context, word, source, target string) ([]string, error)
}

type metrics interface {
	TranslationFetch(lang, outcome string)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// DefaultSearchLimit bounds admin searches without an explicit limit.
const DefaultSearchLimit = 100

// Config holds dictionary parameters.
type Config struct {
	Languages []string
	// Concurrency bounds the provider fetches running at once in Lookup.
	Concurrency  int
	FetchTimeout time.Duration
}

// Service implements dictionary lookups and edits.
type Service struct {
	repo       translationRepo
	translator translator
	metrics    metrics
	log        *slog.Logger
	cfg        Config
	now        func() time.Time

	fetches singleflight.Group
}

// NewService creates a new dictionary service.
func NewService(log *slog.Logger, repo translationRepo, tr translator, metrics metrics, cfg Config) *Service {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Service{
		repo:       repo,
		translator: tr,
		metrics:    metrics,
		log:        log.With("service", "dictionary"),
		cfg:        cfg,
		now:        time.Now,
	}
}

// Translations returns the translations of word from lang into target,
// fetching and caching them on first use.
func (s *Service) Translations(ctx context.Context, lang, word, target string) ([]string, error) {
	word, err := s.checkKey(lang, word, target)
	if err != nil {
		return nil, err
	}

	wt, err := s.repo.Get(ctx, lang, word, target)
	if err == nil {
		return wt.Translations, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get translations: %w", err)
	}
	return s.fetch(ctx, lang, word, target)
}

// Lookup returns translations of words from lang into every other configured
// language, keyed by word and then target. Cached entries are read in one
// query per target; missing ones are fetched concurrently. Provider failures
// are logged and leave the word out, so a lesson never fails on them.
func (s *Service) Lookup(ctx context.Context, lang string, words []string) map[string]map[string][]string {
	out := make(map[string]map[string][]string, len(words))
	if len(words) == 0 || !slices.Contains(s.cfg.Languages, lang) {
		return out
	}

	type miss struct{ word, target string }
	var missing []miss
	for _, target := range s.cfg.Languages {
		if target == lang {
			continue
		}
		cached, err := s.repo.GetMany(ctx, lang, target, words)
		if err != nil {
			s.log.WarnContext(ctx, "read cached translations",
				slog.String("lang", lang),
				slog.String("target", target),
				slog.String("error", err.Error()),
			)
			continue
		}
		for _, w := range words {
			if tr, ok := cached[w]; ok {
				put(out, w, target, tr)
			} else {
				missing = append(missing, miss{w, target})
			}
		}
	}

	fetched := make([][]string, len(missing))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i, m := range missing {
		g.Go(func() error {
			tr, err := s.fetch(gctx, lang, m.word, m.target)
			if err != nil {
				s.log.WarnContext(ctx, "fetch translations",
					slog.String("lang", lang),
					slog.String("word", m.word),
					slog.String("target", m.target),
					slog.String("error", err.Error()),
				)
				return nil
			}
			fetched[i] = tr
			return nil
		})
	}
	_ = g.Wait()

	for i, m := range missing {
		if fetched[i] != nil {
			put(out, m.word, m.target, fetched[i])
		}
	}
	return out
}

func put(out map[string]map[string][]string, word, target string, tr []string) {
	byTarget, ok := out[word]
	if !ok {
		byTarget = make(map[string][]string)
		out[word] = byTarget
	}
	byTarget[target] = tr
}

// fetch asks the provider for one word outside any transaction and stores
// the result. Concurrent fetches of the same key share one provider call.
// If another instance stored the word first, its entry wins.
func (s *Service) fetch(ctx context.Context, lang, word, target string) ([]string, error) {
	key := lang + "/" + word + "->" + target
	v, err, _ := s.fetches.Do(key, func() (any, error) {
		fctx := ctx
		if s.cfg.FetchTimeout > 0 {
			var cancel context.CancelFunc
			fctx, cancel = context.WithTimeout(ctx, s.cfg.FetchTimeout)
			defer cancel()
		}

		raw, err := s.translator.Translate(fctx, word, lang, target)
		s.recordFetch(lang, err)
		if err != nil {
			return nil, fmt.Errorf("fetch translations: %w", err)
		}
		tr := domain.CleanTranslations(raw)

		err = s.repo.Insert(ctx, domain.WordTranslations{
			Lang: lang, Word: word, Target: target, Translations: tr, UpdatedAt: s.now().UTC(),
		})
		if errors.Is(err, domain.ErrAlreadyExists) {
			existing, err := s.repo.Get(ctx, lang, word, target)
			if err != nil {
				return nil, fmt.Errorf("get translations after conflict: %w", err)
			}
			return existing.Translations, nil
		}
		if err != nil {
			return nil, fmt.Errorf("save translations: %w", err)
		}

		s.log.InfoContext(ctx, "translations fetched",
			slog.String("lang", lang),
			slog.String("word", word),
			slog.String("target", target),
			slog.Int("count", len(tr)),
		)
		return tr, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

func (s *Service) recordFetch(lang string, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	s.metrics.TranslationFetch(lang, outcome)
}

// Search lists dictionary entries of lang starting with prefix. limit <= 0
// uses DefaultSearchLimit.
func (s *Service) Search(ctx context.Context, lang, prefix string, limit int) ([]domain.WordTranslations, error) {
	if !slices.Contains(s.cfg.Languages, lang) {
		return nil, domain.NewValidationError("lang", "unsupported language")
	}
	if limit <= 0 || limit > DefaultSearchLimit {
		limit = DefaultSearchLimit
	}
	entries, err := s.repo.Search(ctx, lang, domain.CleanWord(prefix), limit)
	if err != nil {
		return nil, fmt.Errorf("search translations: %w", err)
	}
	return entries, nil
}

// SetTranslations replaces the translations of word into target. Entries are
// trimmed and de-duplicated; an empty list records that the word has none.
func (s *Service) SetTranslations(ctx context.Context, lang, word, target string, translations []string) ([]string, error) {
	word, err := s.checkKey(lang, word, target)
	if err != nil {
		return nil, err
	}

	tr := domain.CleanTranslations(translations)
	err = s.repo.Upsert(ctx, domain.WordTranslations{
		Lang: lang, Word: word, Target: target, Translations: tr, UpdatedAt: s.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("save translations: %w", err)
	}

	s.log.InfoContext(ctx, "translations edited",
		slog.String("lang", lang),
		slog.String("word", word),
		slog.String("target", target),
		slog.Int("count", len(tr)),
	)
	return tr, nil
}

// checkKey validates a lookup and returns the cleaned word.
func (s *Service) checkKey(lang, word, target string) (string, error) {
	var fields []domain.FieldError
	if !slices.Contains(s.cfg.Languages, lang) {
		fields = append(fields, domain.FieldError{Field: "lang", Message: "unsupported language"})
	}
	if !slices.Contains(s.cfg.Languages, target) {
		fields = append(fields, domain.FieldError{Field: "to", Message: "unsupported language"})
	} else if target == lang {
		fields = append(fields, domain.FieldError{Field: "to", Message: "must differ from lang"})
	}
	word = domain.CleanWord(word)
	if word == "" {
		fields = append(fields, domain.FieldError{Field: "word", Message: "required"})
	}
	if len(fields) > 0 {
		return "", &domain.ValidationError{Errors: fields}
	}
	return word, nil
}
