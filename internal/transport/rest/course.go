package rest

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/heartmarshall/babble-backend/internal/domain"
)

type courseCatalog interface {
	List(lang string) ([]string, error)
	Words(lang, name string) ([]string, error)
	Frequencies(lang, name string) (map[string]int, error)
}

// CourseHandler serves the course catalog.
type CourseHandler struct {
	catalog   courseCatalog
	languages []string
	log       *slog.Logger
}

// NewCourseHandler creates a CourseHandler for the configured languages.
func NewCourseHandler(catalog courseCatalog, languages []string, logger *slog.Logger) *CourseHandler {
	return &CourseHandler{
		catalog:   catalog,
		languages: languages,
		log:       logger.With("handler", "course"),
	}
}

type coursesResponse struct {
	Courses []string `json:"courses"`
}

type courseWordResponse struct {
	Word      string `json:"word"`
	Frequency int    `json:"frequency"`
}

type courseResponse struct {
	Name           string               `json:"name"`
	TotalFrequency int                  `json:"totalFrequency"`
	Words          []courseWordResponse `json:"words"`
}

// List handles GET /api/v1/languages/{lang}/courses.
func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}
	lang, ok := h.language(w, r)
	if !ok {
		return
	}

	names, err := h.catalog.List(lang)
	if err != nil {
		writeServiceError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, coursesResponse{Courses: names})
}

// Get handles GET /api/v1/languages/{lang}/courses/{course}: the course
// words in introduction order with their frequencies.
func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}
	lang, ok := h.language(w, r)
	if !ok {
		return
	}
	name := r.PathValue("course")

	words, err := h.catalog.Words(lang, name)
	if err != nil {
		writeServiceError(h.log, w, r, err)
		return
	}
	freqs, err := h.catalog.Frequencies(lang, name)
	if err != nil {
		writeServiceError(h.log, w, r, err)
		return
	}

	resp := courseResponse{Name: name, Words: make([]courseWordResponse, 0, len(words))}
	for _, word := range words {
		resp.Words = append(resp.Words, courseWordResponse{Word: word, Frequency: freqs[word]})
		resp.TotalFrequency += freqs[word]
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CourseHandler) language(w http.ResponseWriter, r *http.Request) (string, bool) {
	lang := r.PathValue("lang")
	if slices.Contains(h.languages, lang) {
		return lang, true
	}
	writeServiceError(h.log, w, r, domain.NewValidationError("lang", "unsupported language"))
	return "", false
}
