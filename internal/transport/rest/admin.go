package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/babble-backend/internal/domain"
	"github.com/heartmarshall/babble-backend/internal/transport/middleware"
)

type corpusAdmin interface {
	GetSentences(ctx context.Context, ids []uuid.UUID) ([]domain.Sentence, error)
	DeleteSentence(ctx context.Context, id uuid.UUID) error
	UpdateSentenceText(ctx context.Context, id uuid.UUID, lang, text string) error
}

// AdminHandler serves corpus moderation endpoints.
type AdminHandler struct {
	corpus corpusAdmin
	log    *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(corpus corpusAdmin, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		corpus: corpus,
		log:    logger.With("handler", "admin"),
	}
}

type sentenceResponse struct {
	ID        string              `json:"id"`
	Text      map[string]string   `json:"text"`
	Lemmas    map[string][]string `json:"lemmas"`
	CreatedAt time.Time           `json:"createdAt"`
}

// Sentences returns corpus sentences by id.
// GET /api/v1/admin/sentences?ids=a,b,c
func (h *AdminHandler) Sentences(w http.ResponseWriter, r *http.Request) {
	if err := middleware.RequireAdmin(r.Context()); err != nil {
		writeServiceError(h.log, w, r, err)
		return
	}

	ids, err := parseIDs(r.URL.Query().Get("ids"))
	if err != nil {
		writeServiceError(h.log, w, r, err)
		return
	}

	sentences, err := h.corpus.GetSentences(r.Context(), ids)
	if err != nil {
		writeServiceError(h.log, w, r, err)
		return
	}

	resp := make([]sentenceResponse, 0, len(sentences))
	for _, s := range sentences {
		resp = append(resp, sentenceResponse{
			ID:        s.ID.String(),
			Text:      s.Text,
			Lemmas:    s.Lemmas,
			CreatedAt: s.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// DeleteSentence removes a sentence from the corpus.
// DELETE /api/v1/admin/sentences/{id}
func (h *AdminHandler) DeleteSentence(w http.ResponseWriter, r *http.Request) {
	if err := middleware.RequireAdmin(r.Context()); err != nil {
		writeServiceError(h.log, w, r, err)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeServiceError(h.log, w, r, domain.NewValidationError("id", "not a sentence id"))
		return
	}

	if err := h.corpus.DeleteSentence(r.Context(), id); err != nil {
		writeServiceError(h.log, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type updateTextRequest struct {
	Text string `json:"text"`
}

// UpdateSentenceText replaces one translation of a sentence.
// PUT /api/v1/admin/sentences/{id}/text/{lang}
func (h *AdminHandler) UpdateSentenceText(w http.ResponseWriter, r *http.Request) {
	if err := middleware.RequireAdmin(r.Context()); err != nil {
		writeServiceError(h.log, w, r, err)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeServiceError(h.log, w, r, domain.NewValidationError("id", "not a sentence id"))
		return
	}
	var req updateTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.corpus.UpdateSentenceText(r.Context(), id, r.PathValue("lang"), req.Text); err != nil {
		writeServiceError(h.log, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseIDs(raw string) ([]uuid.UUID, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, domain.NewValidationError("ids", "required")
	}
	parts := strings.Split(raw, ",")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, p := range parts {
		id, err := uuid.Parse(strings.TrimSpace(p))
		if err != nil {
			return nil, domain.NewValidationError("ids", "not a sentence id: "+p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
