package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	generatorCalls   *prometheus.CounterVec
	generatorLatency *prometheus.HistogramVec
	parseResults     *prometheus.CounterVec
	sentencesAdded   *prometheus.CounterVec
	resolverPasses   *prometheus.HistogramVec
	resolverShort    *prometheus.CounterVec
	exercisesServed  *prometheus.CounterVec
	resultsRecorded  *prometheus.CounterVec
	translations     *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpLatency      *prometheus.HistogramVec
}

// NewMetrics creates and registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		generatorCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "babble",
			Name:      "generator_calls_total",
			Help:      "Sentence generator calls by language and outcome.",
		}, []string{"lang", "outcome"}),
		generatorLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "babble",
			Name:      "generator_call_seconds",
			Help:      "Sentence generator call latency.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
		}, []string{"lang"}),
		parseResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "babble",
			Name:      "generator_parse_total",
			Help:      "Generator output parse results by kind.",
		}, []string{"kind"}),
		sentencesAdded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "babble",
			Name:      "corpus_sentences_added_total",
			Help:      "Sentences inserted into the corpus.",
		}, []string{"lang"}),
		resolverPasses: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "babble",
			Name:      "resolver_passes",
			Help:      "Generation passes per resolve call.",
			Buckets:   []float64{0, 1, 2, 3, 4, 5, 8},
		}, []string{"lang"}),
		resolverShort: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "babble",
			Name:      "resolver_short_total",
			Help:      "Resolve calls that returned fewer sentences than requested.",
		}, []string{"lang"}),
		exercisesServed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "babble",
			Name:      "exercises_served_total",
			Help:      "Exercises returned to learners.",
		}, []string{"lang"}),
		resultsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "babble",
			Name:      "exercise_results_total",
			Help:      "Exercise outcomes recorded.",
		}, []string{"lang", "correct"}),
		translations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "babble",
			Name:      "dictionary_fetches_total",
			Help:      "Translation provider fetches by language and outcome.",
		}, []string{"lang", "outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "babble",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status.",
		}, []string{"method", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "babble",
			Name:      "http_request_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}

	reg.MustRegister(
		m.generatorCalls, m.generatorLatency, m.parseResults, m.sentencesAdded,
		m.resolverPasses, m.resolverShort, m.exercisesServed, m.resultsRecorded,
		m.translations, m.httpRequests, m.httpLatency,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) GeneratorCall(lang, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.generatorCalls.WithLabelValues(lang, outcome).Inc()
	m.generatorLatency.WithLabelValues(lang).Observe(took.Seconds())
}

func (m *Metrics) ParseResult(kind string) {
	if m == nil {
		return
	}
	m.parseResults.WithLabelValues(kind).Inc()
}

func (m *Metrics) SentencesAdded(lang string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.sentencesAdded.WithLabelValues(lang).Add(float64(n))
}

func (m *Metrics) ResolveDone(lang string, passes int, short bool) {
	if m == nil {
		return
	}
	m.resolverPasses.WithLabelValues(lang).Observe(float64(passes))
	if short {
		m.resolverShort.WithLabelValues(lang).Inc()
	}
}

func (m *Metrics) ExercisesServed(lang string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.exercisesServed.WithLabelValues(lang).Add(float64(n))
}

func (m *Metrics) ResultRecorded(lang string, correct bool) {
	if m == nil {
		return
	}
	label := "false"
	if correct {
		label = "true"
	}
	m.resultsRecorded.WithLabelValues(lang, label).Inc()
}

func (m *Metrics) TranslationFetch(lang, outcome string) {
	if m == nil {
		return
	}
	m.translations.WithLabelValues(lang, outcome).Inc()
}

func (m *Metrics) HTTPRequest(method string, status int, took time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, statusClass(status)).Inc()
	m.httpLatency.WithLabelValues(method).Observe(took.Seconds())
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
