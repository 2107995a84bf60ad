package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/babble-backend/internal/domain"
	"github.com/heartmarshall/babble-backend/internal/service/exercise"
	"github.com/heartmarshall/babble-backend/internal/service/progress"
)

type exerciseService interface {
	GetExercises(ctx context.Context, userID uuid.UUID, lang string, n int) ([]exercise.Exercise, error)
	SubmitResults(ctx context.Context, userID uuid.UUID, lang string, results map[uuid.UUID]bool) (*domain.LanguageProgress, error)
}

type progressService interface {
	IntroduceNewWords(ctx context.Context, userID uuid.UUID, lang, courseName string, n int) ([]string, error)
	Stats(ctx context.Context, userID uuid.UUID) (map[string]map[string]progress.CourseStats, error)
}

type idempotencyStore interface {
	Claim(ctx context.Context, userID uuid.UUID, key string) (bool, error)
	Release(ctx context.Context, userID uuid.UUID, key string) error
}

// IdempotencyKeyHeader lets clients retry a result submission safely.
const IdempotencyKeyHeader = "Idempotency-Key"

// LearnerHandler serves the learner-facing lesson endpoints.
type LearnerHandler struct {
	exercises exerciseService
	progress  progressService
	idem      idempotencyStore
	log       *slog.Logger
}

// NewLearnerHandler creates a LearnerHandler. Idempotency-Key headers are
// ignored until a store is attached with WithIdempotency.
func NewLearnerHandler(exercises exerciseService, progress progressService, logger *slog.Logger) *LearnerHandler {
	return &LearnerHandler{
		exercises: exercises,
		progress:  progress,
		log:       logger.With("handler", "learner"),
	}
}

// WithIdempotency enables Idempotency-Key handling on result submissions.
func (h *LearnerHandler) WithIdempotency(store idempotencyStore) *LearnerHandler {
	h.idem = store
	return h
}

type exerciseResponse struct {
	ID           string              `json:"id"`
	Word         string              `json:"word"`
	Text         map[string]string   `json:"text"`
	Translations map[string][]string `json:"translations,omitempty"`
}

type exercisesResponse struct {
	Exercises []exerciseResponse `json:"exercises"`
}

type resultsRequest struct {
	Results map[string]bool `json:"results"`
}

type progressResponse struct {
	Language       string     `json:"language"`
	KnownWords     int        `json:"knownWords"`
	TotalExercises int        `json:"totalExercises"`
	LastExerciseAt *time.Time `json:"lastExerciseAt,omitempty"`
}

type newWordsResponse struct {
	Words []string `json:"words"`
}

type courseStatsResponse struct {
	TotalCount        int `json:"totalCount"`
	Encountered       int `json:"encountered"`
	Practiced         int `json:"practiced"`
	NewWords          int `json:"newWords"`
	Bad               int `json:"bad"`
	UnderstandingRate int `json:"understandingRate"`
	Exercises         int `json:"exercises"`
}

// Exercises handles GET /api/v1/languages/{lang}/exercises?n=.
func (h *LearnerHandler) Exercises(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	n, err := queryInt(r, "n")
	if err != nil {
		writeServiceError(h.log, w, r, err)
		return
	}

	items, err := h.exercises.GetExercises(r.Context(), userID, r.PathValue("lang"), n)
	if err != nil {
		writeServiceError(h.log, w, r, err)
		return
	}

	resp := exercisesResponse{Exercises: make([]exerciseResponse, 0, len(items))}
	for _, it := range items {
		resp.Exercises = append(resp.Exercises, exerciseResponse{
			ID:           it.Sentence.ID.String(),
			Word:         it.Word,
			Text:         it.Sentence.Text,
			Translations: it.Translations,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// Results handles POST /api/v1/languages/{lang}/results.
func (h *LearnerHandler) Results(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req resultsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	results, err := parseResults(req.Results)
	if err != nil {
		writeServiceError(h.log, w, r, err)
		return
	}

	key := r.Header.Get(IdempotencyKeyHeader)
	if key != "" && h.idem != nil {
		claimed, err := h.idem.Claim(r.Context(), userID, key)
		if err != nil {
			h.log.ErrorContext(r.Context(), "claim idempotency key", slog.String("error", err.Error()))
			writeError(w, http.StatusServiceUnavailable, "temporarily unavailable")
			return
		}
		if !claimed {
			writeServiceError(h.log, w, r, domain.ErrDuplicateSubmission)
			return
		}
	}

	p, err := h.exercises.SubmitResults(r.Context(), userID, r.PathValue("lang"), results)
	if err != nil {
		if key != "" && h.idem != nil {
			if rerr := h.idem.Release(context.WithoutCancel(r.Context()), userID, key); rerr != nil {
				h.log.WarnContext(r.Context(), "release idempotency key", slog.String("error", rerr.Error()))
			}
		}
		writeServiceError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toProgressResponse(p))
}

// NewWords handles POST /api/v1/languages/{lang}/courses/{course}/new-words?n=.
func (h *LearnerHandler) NewWords(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	n, err := queryInt(r, "n")
	if err != nil {
		writeServiceError(h.log, w, r, err)
		return
	}

	words, err := h.progress.IntroduceNewWords(r.Context(), userID, r.PathValue("lang"), r.PathValue("course"), n)
	if err != nil {
		writeServiceError(h.log, w, r, err)
		return
	}
	if words == nil {
		words = []string{}
	}
	writeJSON(w, http.StatusOK, newWordsResponse{Words: words})
}

// Stats handles GET /api/v1/stats.
func (h *LearnerHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	stats, err := h.progress.Stats(r.Context(), userID)
	if err != nil {
		writeServiceError(h.log, w, r, err)
		return
	}

	resp := make(map[string]map[string]courseStatsResponse, len(stats))
	for lang, courses := range stats {
		resp[lang] = make(map[string]courseStatsResponse, len(courses))
		for name, cs := range courses {
			resp[lang][name] = courseStatsResponse(cs)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func parseResults(raw map[string]bool) (map[uuid.UUID]bool, error) {
	if len(raw) == 0 {
		return nil, domain.NewValidationError("results", "at least one result is required")
	}
	out := make(map[uuid.UUID]bool, len(raw))
	var fields []domain.FieldError
	for k, v := range raw {
		id, err := uuid.Parse(k)
		if err != nil {
			fields = append(fields, domain.FieldError{Field: "results." + k, Message: "not a sentence id"})
			continue
		}
		out[id] = v
	}
	if len(fields) > 0 {
		slices.SortFunc(fields, func(a, b domain.FieldError) int { return strings.Compare(a.Field, b.Field) })
		return nil, domain.NewValidationErrors(fields)
	}
	return out, nil
}

func toProgressResponse(p *domain.LanguageProgress) progressResponse {
	resp := progressResponse{
		Language:       p.Language,
		KnownWords:     len(p.Words),
		TotalExercises: p.TotalExercises,
	}
	if !p.LastExerciseAt.IsZero() {
		t := p.LastExerciseAt
		resp.LastExerciseAt = &t
	}
	return resp
}
