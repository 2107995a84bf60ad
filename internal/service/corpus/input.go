package corpus

import (
	"github.com/google/uuid"

	"github.com/heartmarshall/babble-backend/internal/domain"
)

// FillRequest asks the generator for Count new sentences.
type FillRequest struct {
	BaseLanguage  string
	Dictionary    domain.WordSet
	RequiredWords []string
	Count         int
}

func (r FillRequest) Validate() error {
	var errs []domain.FieldError
	if r.BaseLanguage == "" {
		errs = append(errs, domain.FieldError{Field: "base_language", Message: "required"})
	}
	if len(r.Dictionary) == 0 {
		errs = append(errs, domain.FieldError{Field: "dictionary", Message: "required"})
	}
	if r.Count <= 0 {
		errs = append(errs, domain.FieldError{Field: "count", Message: "must be positive"})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// ResolveRequest asks for up to Count corpus sentences usable with Dictionary.
// Zero MaxPasses and MinBatchSize take the service defaults.
type ResolveRequest struct {
	BaseLanguage  string
	Dictionary    domain.WordSet
	RequiredWords []string
	ExcludeIDs    []uuid.UUID
	Count         int
	MaxPasses     int
	MinBatchSize  int
}

func (r ResolveRequest) Validate() error {
	var errs []domain.FieldError
	if r.BaseLanguage == "" {
		errs = append(errs, domain.FieldError{Field: "base_language", Message: "required"})
	}
	if len(r.Dictionary) == 0 {
		errs = append(errs, domain.FieldError{Field: "dictionary", Message: "required"})
	}
	if r.Count < 0 {
		errs = append(errs, domain.FieldError{Field: "count", Message: "must not be negative"})
	}
	if r.MaxPasses < 0 {
		errs = append(errs, domain.FieldError{Field: "max_passes", Message: "must not be negative"})
	}
	if r.MinBatchSize < 0 {
		errs = append(errs, domain.FieldError{Field: "min_batch_size", Message: "must not be negative"})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
