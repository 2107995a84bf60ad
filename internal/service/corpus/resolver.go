package corpus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/babble-backend/internal/domain"
)

// Resolve returns up to req.Count corpus sentences that use only words from
// req.Dictionary, contain one of req.RequiredWords when given, and are not in
// req.ExcludeIDs.
//
// Each pass re-queries the corpus and, on a shortfall, asks the generator for
// one batch. At most MaxPasses batches are generated. A cancelled context ends
// the loop and returns what the last lookup found. Only a missing tagging
// model is reported as an error.
func (s *Service) Resolve(ctx context.Context, req ResolveRequest) ([]domain.Sentence, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Count == 0 {
		return []domain.Sentence{}, nil
	}

	maxPasses := req.MaxPasses
	if maxPasses == 0 {
		maxPasses = s.cfg.MaxPasses
	}
	batch := s.batchSize(req)

	query := domain.SentenceQuery{
		BaseLanguage:  req.BaseLanguage,
		Dictionary:    req.Dictionary,
		RequiredWords: req.RequiredWords,
		ExcludeIDs:    req.ExcludeIDs,
		Limit:         req.Count,
	}

	var results []domain.Sentence
	pass := 0
	for len(results) < req.Count && pass < maxPasses {
		if ctx.Err() != nil {
			s.log.WarnContext(ctx, "resolve interrupted",
				slog.String("lang", req.BaseLanguage),
				slog.Int("pass", pass),
				slog.Int("found", len(results)),
			)
			break
		}
		pass++

		found, err := s.store.Lookup(ctx, query)
		if err != nil {
			s.log.ErrorContext(ctx, "corpus lookup failed",
				slog.String("lang", req.BaseLanguage),
				slog.Int("pass", pass),
				slog.String("error", err.Error()),
			)
			continue
		}
		results = found

		s.log.DebugContext(ctx, "resolve pass",
			slog.String("lang", req.BaseLanguage),
			slog.Int("pass", pass),
			slog.Int("found", len(results)),
			slog.Any("required", req.RequiredWords),
		)
		if len(results) >= req.Count {
			break
		}

		_, err = s.Fill(ctx, FillRequest{
			BaseLanguage:  req.BaseLanguage,
			Dictionary:    req.Dictionary,
			RequiredWords: req.RequiredWords,
			Count:         batch,
		})
		if err != nil {
			if errors.Is(err, domain.ErrModelUnavailable) {
				return nil, err
			}
			return nil, fmt.Errorf("fill: %w", err)
		}
	}

	if len(results) > req.Count {
		results = results[:req.Count]
	}
	s.metrics.ResolveDone(req.BaseLanguage, pass, len(results) < req.Count)
	if results == nil {
		results = []domain.Sentence{}
	}
	return results, nil
}

// batchSize generates smaller batches for small vocabularies, where the
// generator is worse at staying within the allowed words.
func (s *Service) batchSize(req ResolveRequest) int {
	small := req.MinBatchSize
	if small == 0 {
		small = s.cfg.MinBatchSize
	}
	if len(req.Dictionary)+len(req.RequiredWords) < s.cfg.SmallDictionaryThreshold {
		return small
	}
	return max(s.cfg.MaxBatchSize, small)
}
