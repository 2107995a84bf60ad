package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/babble-backend/internal/adapter/postgres"
	"github.com/heartmarshall/babble-backend/internal/adapter/postgres/progress"
	"github.com/heartmarshall/babble-backend/internal/adapter/postgres/sentence"
	"github.com/heartmarshall/babble-backend/internal/adapter/postgres/translation"
	"github.com/heartmarshall/babble-backend/internal/adapter/provider/claude"
	"github.com/heartmarshall/babble-backend/internal/adapter/provider/tagger"
	"github.com/heartmarshall/babble-backend/internal/adapter/redis"
	"github.com/heartmarshall/babble-backend/internal/config"
	"github.com/heartmarshall/babble-backend/internal/course"
	"github.com/heartmarshall/babble-backend/internal/lemma"
	"github.com/heartmarshall/babble-backend/internal/observability"
	"github.com/heartmarshall/babble-backend/internal/service/corpus"
	"github.com/heartmarshall/babble-backend/internal/service/dictionary"
	"github.com/heartmarshall/babble-backend/internal/service/exercise"
	progresssvc "github.com/heartmarshall/babble-backend/internal/service/progress"
)

// Repos groups the persistence adapters.
type Repos struct {
	Sentences    *sentence.Repo
	Progress     *progress.Repo
	Translations *translation.Repo
	Tx           *postgres.TxManager
}

// Services groups the domain services. Dictionary is nil when disabled.
type Services struct {
	Corpus     *corpus.Service
	Progress   *progresssvc.Service
	Exercises  *exercise.Service
	Dictionary *dictionary.Service
}

// Components is the wired application graph shared by the server and the CLI.
type Components struct {
	Pool        *pgxpool.Pool
	Metrics     *observability.Metrics
	Normalizer  *lemma.Normalizer
	Courses     *course.Catalog
	Repos       Repos
	Services    Services
	Idempotency *redis.IdempotencyStore
}

// Build connects to the backing services and wires every component. Redis is
// optional: without an address Idempotency stays nil.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Components, error) {
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	c := assemble(cfg, logger, pool, NewNormalizer(cfg, logger), newGenerator(cfg, logger))

	if cfg.Redis.Addr != "" {
		store, err := redis.NewIdempotencyStore(ctx, cfg.Redis.Addr, cfg.Redis.IdempotencyTTL, logger)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		c.Idempotency = store
	}

	logger.InfoContext(ctx, "components wired",
		slog.Any("languages", cfg.Languages.Codes()),
		slog.Any("tagger_models", cfg.Tagger.Models),
		slog.Bool("idempotency", c.Idempotency != nil),
		slog.Bool("dictionary", c.Services.Dictionary != nil),
	)
	return c, nil
}

// Close releases the connections held by c.
func (c *Components) Close() {
	if c.Idempotency != nil {
		c.Idempotency.Close() //nolint:errcheck
	}
	c.Pool.Close()
}

// NewNormalizer builds the lemma normalizer backed by the tagger service. It
// needs no database, so the CLI uses it on its own.
func NewNormalizer(cfg *config.Config, logger *slog.Logger) *lemma.Normalizer {
	tg := tagger.NewProvider(cfg.Tagger.URL, cfg.Tagger.Timeout, logger)
	return lemma.NewNormalizer(logger, lemma.NewModels(tg, cfg.Tagger.Models))
}

// generator is the language model: it writes corpus sentences and answers
// dictionary lookups.
type generator interface {
	Generate(ctx context.Context, prompt string, languages []string) (string, error)
	Translate(ctx context.Context, word, source, target string) ([]string, error)
}

// assemble wires repositories and services over already connected backends.
func assemble(cfg *config.Config, logger *slog.Logger, pool *pgxpool.Pool, normalizer *lemma.Normalizer, gen generator) *Components {
	c := &Components{
		Pool:       pool,
		Metrics:    observability.NewMetrics(),
		Normalizer: normalizer,
		Courses:    course.NewCatalog(cfg.Courses.Dir),
	}
	c.Repos = wireRepos(pool)
	c.Services = wireServices(cfg, logger, c, gen)
	return c
}

func newGenerator(cfg *config.Config, logger *slog.Logger) *claude.Provider {
	return claude.NewProvider(claude.Config{
		APIKey:    cfg.Generator.APIKey,
		BaseURL:   cfg.Generator.BaseURL,
		Model:     cfg.Generator.Model,
		MaxTokens: cfg.Generator.MaxTokens,
		Timeout:   cfg.Generator.Timeout,
	}, logger)
}

func wireRepos(pool *pgxpool.Pool) Repos {
	txm := postgres.NewTxManager(pool)
	return Repos{
		Sentences:    sentence.New(pool, txm),
		Progress:     progress.New(pool),
		Translations: translation.New(pool),
		Tx:           txm,
	}
}

func wireServices(cfg *config.Config, logger *slog.Logger, c *Components, gen generator) Services {
	corpusSvc := corpus.NewService(logger, c.Repos.Sentences, c.Normalizer, gen, c.Metrics, corpusConfig(cfg))

	progressSvc := progresssvc.NewService(logger, c.Repos.Progress, c.Courses, c.Repos.Tx, c.Metrics, progresssvc.Config{
		Languages:        cfg.Languages.Codes(),
		NewWords:         cfg.Lesson.NewWords,
		MaxNewWords:      cfg.Lesson.MaxNewWords,
		NewWordMaxSeen:   cfg.Lesson.NewWordMaxSeen,
		BadWordThreshold: cfg.Lesson.BadWordThreshold,
	})

	exerciseSvc := exercise.NewService(logger, progressSvc, corpusSvc, c.Repos.Sentences, c.Metrics, exercise.Config{
		ExercisesPerLesson: cfg.Lesson.Exercises,
		MaxExercises:       cfg.Lesson.MaxExercises,
		WordsToPractice:    cfg.Lesson.WordsToPractice,
		Concurrency:        cfg.Corpus.Concurrency,
		ResolveTimeout:     cfg.Corpus.ResolveTimeout,
	})

	services := Services{
		Corpus:    corpusSvc,
		Progress:  progressSvc,
		Exercises: exerciseSvc,
	}
	if cfg.Dictionary.Enabled {
		services.Dictionary = dictionary.NewService(logger, c.Repos.Translations, gen, c.Metrics, dictionary.Config{
			Languages:    cfg.Languages.Codes(),
			Concurrency:  cfg.Dictionary.Concurrency,
			FetchTimeout: cfg.Dictionary.FetchTimeout,
		})
		exerciseSvc.WithTranslations(services.Dictionary)
	}
	return services
}

func corpusConfig(cfg *config.Config) corpus.Config {
	langs := make([]corpus.Language, len(cfg.Languages.List))
	for i, l := range cfg.Languages.List {
		langs[i] = corpus.Language{Code: l.Code, Name: l.Name}
	}
	return corpus.Config{
		Languages:                langs,
		MaxPasses:                cfg.Corpus.MaxPasses,
		MinBatchSize:             cfg.Corpus.MinBatchSize,
		MaxBatchSize:             cfg.Corpus.MaxBatchSize,
		SmallDictionaryThreshold: cfg.Corpus.SmallDictionaryThreshold,
		SkipProperNouns:          cfg.Corpus.SkipProperNouns,
	}
}
