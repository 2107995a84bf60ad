package corpus

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/babble-backend/internal/domain"
	"github.com/heartmarshall/babble-backend/internal/lemma"
)

// ---------------------------------------------------------------------------
// Manual mocks (moq-style with func fields)
// ---------------------------------------------------------------------------

type mockNormalizer struct {
	NormalizeFunc func(ctx context.Context, lang, text string, opts lemma.Options) ([]string, error)
}

func (m *mockNormalizer) Normalize(ctx context.Context, lang, text string, opts lemma.Options) ([]string, error) {
	return m.NormalizeFunc(ctx, lang, text, opts)
}

// lemmasByText normalizes from a fixed table.
func lemmasByText(table map[string][]string) *mockNormalizer {
	return &mockNormalizer{
		NormalizeFunc: func(_ context.Context, _ string, text string, _ lemma.Options) ([]string, error) {
			l, ok := table[text]
			if !ok {
				return nil, errors.New("no lemmas for " + text)
			}
			return l, nil
		},
	}
}

type mockGenerator struct {
	mu           sync.Mutex
	calls        int
	prompts      []string
	GenerateFunc func(ctx context.Context, prompt string, languages []string) (string, error)
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string, languages []string) (string, error) {
	m.mu.Lock()
	m.calls++
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	return m.GenerateFunc(ctx, prompt, languages)
}

func (m *mockGenerator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func constGenerator(raw string) *mockGenerator {
	return &mockGenerator{
		GenerateFunc: func(context.Context, string, []string) (string, error) { return raw, nil },
	}
}

type nopMetrics struct{}

func (nopMetrics) GeneratorCall(string, string, time.Duration) {}
func (nopMetrics) ParseResult(string)                          {}
func (nopMetrics) SentencesAdded(string, int)                  {}
func (nopMetrics) ResolveDone(string, int, bool)               {}

// memStore is an in-memory corpus with the same lookup semantics as the
// PostgreSQL store.
type memStore struct {
	mu        sync.Mutex
	sentences []domain.Sentence
	lookups   int

	LookupErr error
	InsertErr error
}

func (m *memStore) Lookup(_ context.Context, q domain.SentenceQuery) ([]domain.Sentence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups++
	if m.LookupErr != nil {
		return nil, m.LookupErr
	}

	exclude := q.ExcludeSet()
	var out []domain.Sentence
	for _, s := range m.sentences {
		if s.Matches(q.BaseLanguage, q.Dictionary, q.RequiredWords, exclude) {
			out = append(out, s)
		}
	}
	slices.SortFunc(out, func(a, b domain.Sentence) int { return slices.Compare(a.ID[:], b.ID[:]) })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *memStore) InsertIfAbsent(_ context.Context, base string, sentences []domain.Sentence) ([]domain.Sentence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertErr != nil {
		return nil, m.InsertErr
	}

	var inserted []domain.Sentence
	for _, s := range sentences {
		if m.hasText(base, s.Text[base]) {
			continue
		}
		m.sentences = append(m.sentences, s)
		inserted = append(inserted, s)
	}
	return inserted, nil
}

func (m *memStore) hasText(lang, text string) bool {
	for _, s := range m.sentences {
		if s.Text[lang] == text {
			return true
		}
	}
	return false
}

func (m *memStore) GetByIDs(_ context.Context, ids []uuid.UUID) ([]domain.Sentence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Sentence
	for _, s := range m.sentences {
		if slices.Contains(ids, s.ID) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.sentences {
		if s.ID == id {
			m.sentences = slices.Delete(m.sentences, i, i+1)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memStore) UpdateText(_ context.Context, id uuid.UUID, lang, text string, lemmas []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.sentences {
		if m.sentences[i].ID == id {
			m.sentences[i].Text[lang] = text
			m.sentences[i].Lemmas[lang] = lemmas
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sentences)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var testLanguages = []Language{{Code: "es", Name: "Spanish"}, {Code: "en", Name: "English"}}

func testConfig() Config {
	return Config{
		Languages:                testLanguages,
		MaxPasses:                5,
		MinBatchSize:             10,
		MaxBatchSize:             20,
		SmallDictionaryThreshold: 10,
	}
}

func newTestService(store *memStore, norm normalizer, gen generator) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(logger, store, norm, gen, nopMetrics{}, testConfig())
}

var waterLemmas = map[string][]string{
	"Necesito agua": {"necesitar", "agua"},
	"I need water":  {"I", "need", "water"},
	"Hola amigo":    {"hola", "amigo"},
	"Hello friend":  {"hello", "friend"},
}

const waterJSON = `[{"es": "Necesito agua", "en": "I need water"}]`
