package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/heartmarshall/babble-backend/internal/domain"
	"github.com/heartmarshall/babble-backend/internal/transport/middleware"
)

type dictionaryService interface {
	Translations(ctx context.Context, lang, word, target string) ([]string, error)
	Search(ctx context.Context, lang, prefix string, limit int) ([]domain.WordTranslations, error)
	SetTranslations(ctx context.Context, lang, word, target string, translations []string) ([]string, error)
}

// DictionaryHandler serves word translations to learners and lets admins
// browse and edit them.
type DictionaryHandler struct {
	dictionary dictionaryService
	log        *slog.Logger
}

// NewDictionaryHandler creates a DictionaryHandler.
func NewDictionaryHandler(dictionary dictionaryService, logger *slog.Logger) *DictionaryHandler {
	return &DictionaryHandler{
		dictionary: dictionary,
		log:        logger.With("handler", "dictionary"),
	}
}

type translationsResponse struct {
	Word         string   `json:"word"`
	Target       string   `json:"target"`
	Translations []string `json:"translations"`
}

type dictionaryEntryResponse struct {
	Word         string    `json:"word"`
	Target       string    `json:"target"`
	Translations []string  `json:"translations"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type setTranslationsRequest struct {
	Translations []string `json:"translations"`
}

// Translations handles GET /api/v1/languages/{lang}/words/{word}/translations?to=.
func (h *DictionaryHandler) Translations(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	target := r.URL.Query().Get("to")
	tr, err := h.dictionary.Translations(r.Context(), r.PathValue("lang"), r.PathValue("word"), target)
	if err != nil {
		writeServiceError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, translationsResponse{
		Word:         domain.CleanWord(r.PathValue("word")),
		Target:       target,
		Translations: tr,
	})
}

// Search lists dictionary entries.
// GET /api/v1/admin/words/{lang}?search=&limit=
func (h *DictionaryHandler) Search(w http.ResponseWriter, r *http.Request) {
	if err := middleware.RequireAdmin(r.Context()); err != nil {
		writeServiceError(h.log, w, r, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeServiceError(h.log, w, r, err)
		return
	}

	entries, err := h.dictionary.Search(r.Context(), r.PathValue("lang"), r.URL.Query().Get("search"), limit)
	if err != nil {
		writeServiceError(h.log, w, r, err)
		return
	}

	resp := make([]dictionaryEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, dictionaryEntryResponse{
			Word:         e.Word,
			Target:       e.Target,
			Translations: e.Translations,
			UpdatedAt:    e.UpdatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// SetTranslations replaces the translations of one word.
// PUT /api/v1/admin/words/{lang}/{word}/translations/{to}
func (h *DictionaryHandler) SetTranslations(w http.ResponseWriter, r *http.Request) {
	if err := middleware.RequireAdmin(r.Context()); err != nil {
		writeServiceError(h.log, w, r, err)
		return
	}

	var req setTranslationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	target := r.PathValue("to")
	saved, err := h.dictionary.SetTranslations(r.Context(), r.PathValue("lang"), r.PathValue("word"), target, req.Translations)
	if err != nil {
		writeServiceError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, translationsResponse{
		Word:         domain.CleanWord(r.PathValue("word")),
		Target:       target,
		Translations: saved,
	})
}
