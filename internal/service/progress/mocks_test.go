package progress

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/babble-backend/internal/course"
	"github.com/heartmarshall/babble-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Manual mocks (moq-style with func fields)
// ---------------------------------------------------------------------------

type progressRepoMock struct {
	mu    sync.Mutex
	data  map[string]*domain.LanguageProgress
	saved [][]string

	GetForUpdateFunc func(ctx context.Context, userID uuid.UUID, lang string) (*domain.LanguageProgress, error)
	SaveFunc         func(ctx context.Context, userID uuid.UUID, p *domain.LanguageProgress, touched []string) error
}

func newProgressRepo() *progressRepoMock {
	return &progressRepoMock{data: make(map[string]*domain.LanguageProgress)}
}

func progressKey(userID uuid.UUID, lang string) string { return userID.String() + "/" + lang }

func (m *progressRepoMock) put(userID uuid.UUID, p *domain.LanguageProgress) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[progressKey(userID, p.Language)] = p
}

func (m *progressRepoMock) Get(_ context.Context, userID uuid.UUID, lang string) (*domain.LanguageProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.data[progressKey(userID, lang)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (m *progressRepoMock) GetForUpdate(ctx context.Context, userID uuid.UUID, lang string) (*domain.LanguageProgress, error) {
	if m.GetForUpdateFunc != nil {
		return m.GetForUpdateFunc(ctx, userID, lang)
	}
	return m.Get(ctx, userID, lang)
}

func (m *progressRepoMock) ListLanguages(_ context.Context, userID uuid.UUID) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, p := range m.data {
		if _, ok := m.data[progressKey(userID, p.Language)]; ok {
			out = append(out, p.Language)
		}
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

func (m *progressRepoMock) Save(ctx context.Context, userID uuid.UUID, p *domain.LanguageProgress, touched []string) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, userID, p, touched)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[progressKey(userID, p.Language)] = p
	m.saved = append(m.saved, touched)
	return nil
}

type catalogMock struct {
	base    map[string][]string
	courses map[string]*course.Course
}

func (c *catalogMock) BaseWords(lang string) ([]string, error) {
	return c.base[lang], nil
}

func (c *catalogMock) Get(lang, name string) (*course.Course, error) {
	crs, ok := c.courses[lang+"/"+name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return crs, nil
}

func (c *catalogMock) NewWords(lang, name string, known domain.WordSet, n int) ([]string, error) {
	crs, err := c.Get(lang, name)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, w := range crs.Words {
		if len(out) >= n {
			break
		}
		if !known.Contains(w) {
			out = append(out, w)
		}
	}
	return out, nil
}

type txManagerMock struct {
	calls int
}

func (m *txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

type metricsMock struct {
	mu      sync.Mutex
	correct int
	wrong   int
}

func (m *metricsMock) ResultRecorded(_ string, correct bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if correct {
		m.correct++
	} else {
		m.wrong++
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func testCatalog() *catalogMock {
	return &catalogMock{
		base: map[string][]string{"es": {"yo", "sí"}},
		courses: map[string]*course.Course{
			"es/casa": {
				Name:        "casa",
				Words:       []string{"hola", "yo", "agua", "necesitar", "amigo"},
				Frequencies: map[string]int{"hola": 40, "yo": 30, "agua": 20, "necesitar": 6, "amigo": 4},
			},
		},
	}
}

func newTestService(repo *progressRepoMock, cat *catalogMock) (*Service, *txManagerMock, *metricsMock) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tx := &txManagerMock{}
	m := &metricsMock{}
	svc := NewService(logger, repo, cat, tx, m, Config{
		Languages:        []string{"es", "en"},
		NewWords:         5,
		MaxNewWords:      20,
		NewWordMaxSeen:   5,
		BadWordThreshold: 70,
	})
	return svc, tx, m
}
