package rest

import (
	"net/http"

	"github.com/heartmarshall/babble-backend/internal/transport/middleware"
)

// Handlers are the endpoint groups mounted by NewRouter. Dictionary and
// Metrics are optional.
type Handlers struct {
	Health     *HealthHandler
	Learner    *LearnerHandler
	Courses    *CourseHandler
	Dictionary *DictionaryHandler
	Admin      *AdminHandler
	Metrics    http.Handler
}

type route struct {
	pattern string
	handler http.HandlerFunc
}

// NewRouter mounts every endpoint. Probes and /metrics are served bare; the
// API routes are wrapped in api.
func NewRouter(h Handlers, api middleware.Middleware) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /live", h.Health.Live)
	mux.HandleFunc("GET /ready", h.Health.Ready)
	mux.HandleFunc("GET /health", h.Health.Health)
	if h.Metrics != nil {
		mux.Handle("GET /metrics", h.Metrics)
	}

	routes := []route{
		{"GET /api/v1/languages/{lang}/exercises", h.Learner.Exercises},
		{"POST /api/v1/languages/{lang}/results", h.Learner.Results},
		{"GET /api/v1/languages/{lang}/courses", h.Courses.List},
		{"GET /api/v1/languages/{lang}/courses/{course}", h.Courses.Get},
		{"POST /api/v1/languages/{lang}/courses/{course}/new-words", h.Learner.NewWords},
		{"GET /api/v1/stats", h.Learner.Stats},
		{"GET /api/v1/admin/sentences", h.Admin.Sentences},
		{"DELETE /api/v1/admin/sentences/{id}", h.Admin.DeleteSentence},
		{"PUT /api/v1/admin/sentences/{id}/text/{lang}", h.Admin.UpdateSentenceText},
	}
	if h.Dictionary != nil {
		routes = append(routes,
			route{"GET /api/v1/languages/{lang}/words/{word}/translations", h.Dictionary.Translations},
			route{"GET /api/v1/admin/words/{lang}", h.Dictionary.Search},
			route{"PUT /api/v1/admin/words/{lang}/{word}/translations/{to}", h.Dictionary.SetTranslations},
		)
	}
	for _, rt := range routes {
		mux.Handle(rt.pattern, api(rt.handler))
	}
	return mux
}
