package rest

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/babble-backend/internal/domain"
	"github.com/heartmarshall/babble-backend/internal/service/exercise"
	"github.com/heartmarshall/babble-backend/internal/service/progress"
)

type exerciseServiceMock struct {
	GetExercisesFunc  func(ctx context.Context, userID uuid.UUID, lang string, n int) ([]exercise.Exercise, error)
	SubmitResultsFunc func(ctx context.Context, userID uuid.UUID, lang string, results map[uuid.UUID]bool) (*domain.LanguageProgress, error)
}

func (m *exerciseServiceMock) GetExercises(ctx context.Context, userID uuid.UUID, lang string, n int) ([]exercise.Exercise, error) {
	return m.GetExercisesFunc(ctx, userID, lang, n)
}

func (m *exerciseServiceMock) SubmitResults(ctx context.Context, userID uuid.UUID, lang string, results map[uuid.UUID]bool) (*domain.LanguageProgress, error) {
	return m.SubmitResultsFunc(ctx, userID, lang, results)
}

type progressServiceMock struct {
	IntroduceNewWordsFunc func(ctx context.Context, userID uuid.UUID, lang, courseName string, n int) ([]string, error)
	StatsFunc             func(ctx context.Context, userID uuid.UUID) (map[string]map[string]progress.CourseStats, error)
}

func (m *progressServiceMock) IntroduceNewWords(ctx context.Context, userID uuid.UUID, lang, courseName string, n int) ([]string, error) {
	return m.IntroduceNewWordsFunc(ctx, userID, lang, courseName, n)
}

func (m *progressServiceMock) Stats(ctx context.Context, userID uuid.UUID) (map[string]map[string]progress.CourseStats, error) {
	return m.StatsFunc(ctx, userID)
}

// idempotencyStoreFake keeps claimed keys in memory.
type idempotencyStoreFake struct {
	mu       sync.Mutex
	claimed  map[string]bool
	released []string
	err      error
}

func newIdempotencyStoreFake() *idempotencyStoreFake {
	return &idempotencyStoreFake{claimed: make(map[string]bool)}
}

func (f *idempotencyStoreFake) Claim(_ context.Context, userID uuid.UUID, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	k := userID.String() + ":" + key
	if f.claimed[k] {
		return false, nil
	}
	f.claimed[k] = true
	return true, nil
}

func (f *idempotencyStoreFake) Release(_ context.Context, userID uuid.UUID, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := userID.String() + ":" + key
	delete(f.claimed, k)
	f.released = append(f.released, k)
	return nil
}

type corpusAdminMock struct {
	GetSentencesFunc       func(ctx context.Context, ids []uuid.UUID) ([]domain.Sentence, error)
	DeleteSentenceFunc     func(ctx context.Context, id uuid.UUID) error
	UpdateSentenceTextFunc func(ctx context.Context, id uuid.UUID, lang, text string) error
}

func (m *corpusAdminMock) GetSentences(ctx context.Context, ids []uuid.UUID) ([]domain.Sentence, error) {
	return m.GetSentencesFunc(ctx, ids)
}

func (m *corpusAdminMock) DeleteSentence(ctx context.Context, id uuid.UUID) error {
	return m.DeleteSentenceFunc(ctx, id)
}

func (m *corpusAdminMock) UpdateSentenceText(ctx context.Context, id uuid.UUID, lang, text string) error {
	return m.UpdateSentenceTextFunc(ctx, id, lang, text)
}

type courseCatalogMock struct {
	ListFunc        func(lang string) ([]string, error)
	WordsFunc       func(lang, name string) ([]string, error)
	FrequenciesFunc func(lang, name string) (map[string]int, error)
}

func (m *courseCatalogMock) List(lang string) ([]string, error) {
	return m.ListFunc(lang)
}

func (m *courseCatalogMock) Words(lang, name string) ([]string, error) {
	return m.WordsFunc(lang, name)
}

func (m *courseCatalogMock) Frequencies(lang, name string) (map[string]int, error) {
	return m.FrequenciesFunc(lang, name)
}

type dictionaryServiceMock struct {
	TranslationsFunc    func(ctx context.Context, lang, word, target string) ([]string, error)
	SearchFunc          func(ctx context.Context, lang, prefix string, limit int) ([]domain.WordTranslations, error)
	SetTranslationsFunc func(ctx context.Context, lang, word, target string, translations []string) ([]string, error)
}

func (m *dictionaryServiceMock) Translations(ctx context.Context, lang, word, target string) ([]string, error) {
	return m.TranslationsFunc(ctx, lang, word, target)
}

func (m *dictionaryServiceMock) Search(ctx context.Context, lang, prefix string, limit int) ([]domain.WordTranslations, error) {
	return m.SearchFunc(ctx, lang, prefix, limit)
}

func (m *dictionaryServiceMock) SetTranslations(ctx context.Context, lang, word, target string, translations []string) ([]string, error) {
	return m.SetTranslationsFunc(ctx, lang, word, target, translations)
}
