// Package exercise assembles lessons from the corpus and records what the
// learner answered.
package exercise

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/babble-backend/internal/domain"
	"github.com/heartmarshall/babble-backend/internal/service/corpus"
	"github.com/heartmarshall/babble-backend/internal/service/progress"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type progressService interface {
	Get(ctx context.Context, userID uuid.UUID, lang string) (*domain.LanguageProgress, error)
	RecordResults(ctx context.Context, userID uuid.UUID, lang string, outcomes []progress.ExerciseOutcome) (*domain.LanguageProgress, error)
}

type resolver interface {
	Resolve(ctx context.Context, req corpus.ResolveRequest) ([]domain.Sentence, error)
}

type sentenceReader interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Sentence, error)
}

type metrics interface {
	ExercisesServed(lang string, n int)
}

type translationLookup interface {
	Lookup(ctx context.Context, lang string, words []string) map[string]map[string][]string
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Config holds lesson assembly parameters.
type Config struct {
	ExercisesPerLesson int
	// MaxExercises caps n; larger requests fail validation.
	MaxExercises    int
	WordsToPractice int
	// Concurrency bounds the per-word resolves running at once.
	Concurrency    int
	ResolveTimeout time.Duration
}

// Exercise is one sentence served to the learner with the practice word it
// was chosen for.
type Exercise struct {
	Sentence domain.Sentence
	Word     string
	// Translations of Word keyed by target language, when a dictionary is
	// attached.
	Translations map[string][]string
}

// Service implements lesson assembly and result submission.
type Service struct {
	progress   progressService
	resolver   resolver
	sentences  sentenceReader
	metrics    metrics
	dictionary translationLookup
	log        *slog.Logger
	cfg        Config
}

// NewService creates a new exercise service.
func NewService(
	log *slog.Logger,
	progress progressService,
	resolver resolver,
	sentences sentenceReader,
	metrics metrics,
	cfg Config,
) *Service {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.MaxExercises < cfg.ExercisesPerLesson {
		cfg.MaxExercises = cfg.ExercisesPerLesson
	}
	return &Service{
		progress:  progress,
		resolver:  resolver,
		sentences: sentences,
		metrics:   metrics,
		log:       log.With("service", "exercise"),
		cfg:       cfg,
	}
}

// WithTranslations attaches dictionary translations of the practice word to
// every served exercise.
func (s *Service) WithTranslations(d translationLookup) *Service {
	s.dictionary = d
	return s
}

// GetExercises returns up to n sentences for the learner's next lesson in
// lang. It schedules practice words, resolves sentences for each word
// concurrently and merges them in schedule order without duplicates. Running
// out of time or material yields a shorter lesson, not an error. n above the
// configured maximum is a validation error.
func (s *Service) GetExercises(ctx context.Context, userID uuid.UUID, lang string, n int) ([]Exercise, error) {
	if n > s.cfg.MaxExercises {
		return nil, domain.NewValidationError("n", fmt.Sprintf("must be at most %d", s.cfg.MaxExercises))
	}
	if n <= 0 {
		n = s.cfg.ExercisesPerLesson
	}

	p, err := s.progress.Get(ctx, userID, lang)
	if err != nil {
		return nil, err
	}

	targets := progress.SuggestWordsToPractice(p, s.cfg.WordsToPractice)
	if len(targets) == 0 {
		return []Exercise{}, nil
	}
	perWord := max(1, n/len(targets))
	dictionary := p.KnownWords()
	exclude := slices.Clone(p.RecentExerciseIDs)

	resolveCtx := ctx
	if s.cfg.ResolveTimeout > 0 {
		var cancel context.CancelFunc
		resolveCtx, cancel = context.WithTimeout(ctx, s.cfg.ResolveTimeout)
		defer cancel()
	}

	found := make([][]domain.Sentence, len(targets))
	g, gctx := errgroup.WithContext(resolveCtx)
	g.SetLimit(s.cfg.Concurrency)
	for i, word := range targets {
		g.Go(func() error {
			res, err := s.resolver.Resolve(gctx, corpus.ResolveRequest{
				BaseLanguage:  lang,
				Dictionary:    dictionary,
				RequiredWords: []string{word},
				ExcludeIDs:    exclude,
				Count:         perWord,
			})
			if err != nil {
				return fmt.Errorf("resolve %q: %w", word, err)
			}
			found[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Exercise, 0, min(n, perWord*len(targets)))
	seen := make(map[uuid.UUID]struct{})
	for i, sentences := range found {
		for _, sentence := range sentences {
			if _, dup := seen[sentence.ID]; dup {
				continue
			}
			seen[sentence.ID] = struct{}{}
			out = append(out, Exercise{Sentence: sentence, Word: targets[i]})
		}
	}
	if len(out) > n {
		out = out[:n]
	}
	s.attachTranslations(ctx, lang, out)

	if s.metrics != nil {
		s.metrics.ExercisesServed(lang, len(out))
	}
	s.log.InfoContext(ctx, "lesson assembled",
		slog.String("user_id", userID.String()),
		slog.String("lang", lang),
		slog.Any("words", targets),
		slog.Int("requested", n),
		slog.Int("served", len(out)),
	)
	return out, nil
}

func (s *Service) attachTranslations(ctx context.Context, lang string, exercises []Exercise) {
	if s.dictionary == nil || len(exercises) == 0 {
		return
	}
	words := make([]string, 0, len(exercises))
	for _, e := range exercises {
		if !slices.Contains(words, e.Word) {
			words = append(words, e.Word)
		}
	}
	byWord := s.dictionary.Lookup(ctx, lang, words)
	for i := range exercises {
		exercises[i].Translations = byWord[exercises[i].Word]
	}
}

// SubmitResults records the learner's answers, keyed by sentence ID. Each
// answer counts as an exposure of every lemma the sentence has in lang.
// Sentences no longer in the corpus are skipped; if none is left the call
// fails with domain.ErrNotFound.
func (s *Service) SubmitResults(ctx context.Context, userID uuid.UUID, lang string, results map[uuid.UUID]bool) (*domain.LanguageProgress, error) {
	if len(results) == 0 {
		return nil, domain.NewValidationError("results", "at least one result is required")
	}

	ids := make([]uuid.UUID, 0, len(results))
	for id := range results {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b uuid.UUID) int { return slices.Compare(a[:], b[:]) })

	sentences, err := s.sentences.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get sentences: %w", err)
	}
	byID := make(map[uuid.UUID]domain.Sentence, len(sentences))
	for _, sentence := range sentences {
		byID[sentence.ID] = sentence
	}

	outcomes := make([]progress.ExerciseOutcome, 0, len(ids))
	for _, id := range ids {
		sentence, ok := byID[id]
		if !ok || len(sentence.Lemmas[lang]) == 0 {
			s.log.WarnContext(ctx, "skip result for unknown sentence",
				slog.String("sentence_id", id.String()),
				slog.String("lang", lang),
			)
			continue
		}
		outcomes = append(outcomes, progress.ExerciseOutcome{
			ExerciseID: id,
			Words:      domain.UniqueWords(sentence.Lemmas[lang]),
			Correct:    results[id],
		})
	}
	if len(outcomes) == 0 {
		return nil, fmt.Errorf("sentences: %w", domain.ErrNotFound)
	}

	return s.progress.RecordResults(ctx, userID, lang, outcomes)
}
