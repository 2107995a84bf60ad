// Package progress manages learners' vocabulary: introducing course words,
// recording exercise outcomes and reporting statistics.
package progress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/babble-backend/internal/course"
	"github.com/heartmarshall/babble-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type progressRepo interface {
	Get(ctx context.Context, userID uuid.UUID, lang string) (*domain.LanguageProgress, error)
	GetForUpdate(ctx context.Context, userID uuid.UUID, lang string) (*domain.LanguageProgress, error)
	ListLanguages(ctx context.Context, userID uuid.UUID) ([]string, error)
	Save(ctx context.Context, userID uuid.UUID, p *domain.LanguageProgress, touched []string) error
}

type courseCatalog interface {
	BaseWords(lang string) ([]string, error)
	NewWords(lang, name string, known domain.WordSet, n int) ([]string, error)
	Get(lang, name string) (*course.Course, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type metrics interface {
	ResultRecorded(lang string, correct bool)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Config holds lesson parameters.
type Config struct {
	Languages        []string
	NewWords         int
	MaxNewWords      int
	NewWordMaxSeen   int
	BadWordThreshold int
}

// Service implements learner progress business logic.
type Service struct {
	repo    progressRepo
	courses courseCatalog
	tx      txManager
	metrics metrics
	log     *slog.Logger
	cfg     Config
	now     func() time.Time
}

// NewService creates a new progress service.
func NewService(
	log *slog.Logger,
	repo progressRepo,
	courses courseCatalog,
	tx txManager,
	metrics metrics,
	cfg Config,
) *Service {
	if cfg.MaxNewWords < cfg.NewWords {
		cfg.MaxNewWords = cfg.NewWords
	}
	return &Service{
		repo:    repo,
		courses: courses,
		tx:      tx,
		metrics: metrics,
		log:     log.With("service", "progress"),
		cfg:     cfg,
		now:     time.Now,
	}
}

// Get returns the learner's progress in lang. A learner who never started
// lang gets domain.ErrNotFound.
func (s *Service) Get(ctx context.Context, userID uuid.UUID, lang string) (*domain.LanguageProgress, error) {
	if err := s.checkLanguage(lang); err != nil {
		return nil, err
	}
	p, err := s.repo.Get(ctx, userID, lang)
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}
	return p, nil
}

// IntroduceNewWords adds the next n words of course the learner does not know
// yet and marks the course active. The first call for a language seeds the
// learner with the language's base vocabulary. n <= 0 uses the configured
// default and n above MaxNewWords is rejected. It returns the words added.
func (s *Service) IntroduceNewWords(ctx context.Context, userID uuid.UUID, lang, courseName string, n int) ([]string, error) {
	if err := s.checkLanguage(lang); err != nil {
		return nil, err
	}
	if courseName == "" {
		return nil, domain.NewValidationError("course", "required")
	}
	if n > s.cfg.MaxNewWords {
		return nil, domain.NewValidationError("n", fmt.Sprintf("must be at most %d", s.cfg.MaxNewWords))
	}
	if n <= 0 {
		n = s.cfg.NewWords
	}
	if _, err := s.courses.Get(lang, courseName); err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}

	var added []string
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		now := s.now()

		p, isNew, err := s.loadForUpdate(ctx, userID, lang)
		if err != nil {
			return err
		}
		if isNew {
			base, err := s.courses.BaseWords(lang)
			if err != nil {
				return fmt.Errorf("base words: %w", err)
			}
			p.AddNewWords(base, now)
		}

		added, err = s.courses.NewWords(lang, courseName, p.KnownWords(), n)
		if err != nil {
			return fmt.Errorf("new words: %w", err)
		}
		p.AddNewWords(added, now)
		p.ActivateCourse(courseName)

		touched := added
		if isNew {
			touched = nil
		}
		if err := s.repo.Save(ctx, userID, p, touched); err != nil {
			return fmt.Errorf("save progress: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "new words introduced",
		slog.String("user_id", userID.String()),
		slog.String("lang", lang),
		slog.String("course", courseName),
		slog.Int("count", len(added)),
	)
	return added, nil
}

// ExerciseOutcome is the learner's answer to one exercise.
type ExerciseOutcome struct {
	ExerciseID uuid.UUID
	Words      []string
	Correct    bool
}

// RecordResults applies outcomes in order inside one transaction, with the
// learner's progress row locked. Outcomes are applied as given: submitting
// the same outcome twice counts it twice.
func (s *Service) RecordResults(ctx context.Context, userID uuid.UUID, lang string, outcomes []ExerciseOutcome) (*domain.LanguageProgress, error) {
	if err := s.checkLanguage(lang); err != nil {
		return nil, err
	}
	if len(outcomes) == 0 {
		return nil, domain.NewValidationError("results", "at least one result is required")
	}

	var saved *domain.LanguageProgress
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		now := s.now()

		p, isNew, err := s.loadForUpdate(ctx, userID, lang)
		if err != nil {
			return err
		}

		touched := domain.NewWordSet()
		for _, o := range outcomes {
			p.RecordExercise(o.ExerciseID, o.Words, o.Correct, now)
			touched.Add(o.Words...)
		}

		words := touched.Sorted()
		if isNew {
			words = nil
		}
		if err := s.repo.Save(ctx, userID, p, words); err != nil {
			return fmt.Errorf("save progress: %w", err)
		}
		saved = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, o := range outcomes {
		if s.metrics != nil {
			s.metrics.ResultRecorded(lang, o.Correct)
		}
	}
	s.log.InfoContext(ctx, "exercise results recorded",
		slog.String("user_id", userID.String()),
		slog.String("lang", lang),
		slog.Int("count", len(outcomes)),
	)
	return saved, nil
}

// loadForUpdate locks and returns the learner's progress, or a fresh one when
// the learner has none yet.
func (s *Service) loadForUpdate(ctx context.Context, userID uuid.UUID, lang string) (*domain.LanguageProgress, bool, error) {
	p, err := s.repo.GetForUpdate(ctx, userID, lang)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewLanguageProgress(lang), true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get progress: %w", err)
	}
	return p, false, nil
}

func (s *Service) checkLanguage(lang string) error {
	if lang == "" {
		return domain.NewValidationError("lang", "required")
	}
	if len(s.cfg.Languages) > 0 && !slices.Contains(s.cfg.Languages, lang) {
		return domain.NewValidationError("lang", "unsupported language")
	}
	return nil
}
