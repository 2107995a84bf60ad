package corpus

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/babble-backend/internal/domain"
	"github.com/heartmarshall/babble-backend/internal/lemma"
)

// maxBatchIDs caps GetSentences input.
const maxBatchIDs = 200

// GetSentences returns the sentences with the given IDs. Unknown IDs are skipped.
func (s *Service) GetSentences(ctx context.Context, ids []uuid.UUID) ([]domain.Sentence, error) {
	if len(ids) == 0 {
		return []domain.Sentence{}, nil
	}
	if len(ids) > maxBatchIDs {
		return nil, domain.NewValidationError("ids", fmt.Sprintf("at most %d", maxBatchIDs))
	}
	return s.store.GetByIDs(ctx, ids)
}

// DeleteSentence removes a sentence from the corpus.
func (s *Service) DeleteSentence(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "sentence deleted", slog.String("sentence_id", id.String()))
	return nil
}

// UpdateSentenceText replaces one translation and recomputes its lemmas.
func (s *Service) UpdateSentenceText(ctx context.Context, id uuid.UUID, lang, text string) error {
	text = domain.CleanSentenceText(text)
	if text == "" {
		return domain.NewValidationError("text", "required")
	}
	if !s.supports(lang) {
		return domain.NewValidationError("lang", "unsupported language")
	}

	lemmas, err := s.normalizer.Normalize(ctx, lang, text, lemma.Options{SkipProperNouns: s.cfg.SkipProperNouns})
	if err != nil {
		return fmt.Errorf("normalize: %w", err)
	}
	if err := s.store.UpdateText(ctx, id, lang, text, lemmas); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "sentence text updated",
		slog.String("sentence_id", id.String()),
		slog.String("lang", lang),
	)
	return nil
}
