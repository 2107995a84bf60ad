package corpus

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/babble-backend/internal/domain"
	"github.com/heartmarshall/babble-backend/internal/lemma"
)

type sentenceStore interface {
	Lookup(ctx context.Context, q domain.SentenceQuery) ([]domain.Sentence, error)
	InsertIfAbsent(ctx context.Context, baseLanguage string, sentences []domain.Sentence) ([]domain.Sentence, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Sentence, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateText(ctx context.Context, id uuid.UUID, lang, text string, lemmas []string) error
}

type normalizer interface {
	Normalize(ctx context.Context, lang, text string, opts lemma.Options) ([]string, error)
}

type generator interface {
	Generate(ctx context.Context, prompt string, languages []string) (string, error)
}

type metrics interface {
	GeneratorCall(lang, outcome string, took time.Duration)
	ParseResult(kind string)
	SentencesAdded(lang string, n int)
	ResolveDone(lang string, passes int, short bool)
}

// Language is a supported language code with its display name.
type Language struct {
	Code string
	Name string
}

// Config holds corpus generation limits.
type Config struct {
	// Languages is the ordered set every sentence is generated in.
	Languages                []Language
	MaxPasses                int
	MinBatchSize             int
	MaxBatchSize             int
	SmallDictionaryThreshold int
	SkipProperNouns          bool
}

// Service resolves exercise sentences from the shared corpus, generating
// new ones when the corpus cannot satisfy a request.
type Service struct {
	log        *slog.Logger
	store      sentenceStore
	normalizer normalizer
	generator  generator
	metrics    metrics
	cfg        Config
	now        func() time.Time
}

// NewService creates a corpus service.
func NewService(
	logger *slog.Logger,
	store sentenceStore,
	normalizer normalizer,
	generator generator,
	metrics metrics,
	cfg Config,
) *Service {
	return &Service{
		log:        logger.With("service", "corpus"),
		store:      store,
		normalizer: normalizer,
		generator:  generator,
		metrics:    metrics,
		cfg:        cfg,
		now:        time.Now,
	}
}

func (s *Service) languageCodes() []string {
	codes := make([]string, len(s.cfg.Languages))
	for i, l := range s.cfg.Languages {
		codes[i] = l.Code
	}
	return codes
}

func (s *Service) languageName(code string) string {
	for _, l := range s.cfg.Languages {
		if l.Code == code {
			return l.Name
		}
	}
	return code
}

func (s *Service) supports(code string) bool {
	for _, l := range s.cfg.Languages {
		if l.Code == code {
			return true
		}
	}
	return false
}
