package progress

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/babble-backend/internal/domain"
)

var fixedNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

// ---------------------------------------------------------------------------
// IntroduceNewWords
// ---------------------------------------------------------------------------

func TestService_IntroduceNewWords_FirstTimeSeedsBaseWords(t *testing.T) {
	t.Parallel()

	repo := newProgressRepo()
	svc, tx, _ := newTestService(repo, testCatalog())
	svc.now = func() time.Time { return fixedNow }
	userID := uuid.New()

	added, err := svc.IntroduceNewWords(context.Background(), userID, "es", "casa", 2)
	require.NoError(t, err)

	// "yo" is a base word, so it is skipped.
	assert.Equal(t, []string{"hola", "agua"}, added)
	assert.Equal(t, 1, tx.calls)

	p, err := repo.Get(context.Background(), userID, "es")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"yo", "sí", "hola", "agua"}, p.KnownWords().Sorted())
	assert.Equal(t, []string{"casa"}, p.ActiveCourses)
	assert.Equal(t, fixedNow, p.LastNewWordAt)
	assert.Zero(t, p.Words["hola"].SeenCount)

	// A new progress is saved in full.
	require.Len(t, repo.saved, 1)
	assert.Nil(t, repo.saved[0])
}

func TestService_IntroduceNewWords_ExistingProgress(t *testing.T) {
	t.Parallel()

	repo := newProgressRepo()
	userID := uuid.New()
	p := domain.NewLanguageProgress("es")
	p.AddNewWords([]string{"hola", "yo"}, fixedNow)
	p.ActivateCourse("casa")
	repo.put(userID, p)

	svc, _, _ := newTestService(repo, testCatalog())

	added, err := svc.IntroduceNewWords(context.Background(), userID, "es", "casa", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"agua", "necesitar", "amigo"}, added)

	got, err := repo.Get(context.Background(), userID, "es")
	require.NoError(t, err)
	assert.Equal(t, []string{"casa"}, got.ActiveCourses)
	assert.NotContains(t, got.Words, "sí", "base words only seed new learners")

	require.Len(t, repo.saved, 1)
	assert.Equal(t, added, repo.saved[0])
}

func TestService_IntroduceNewWords_Errors(t *testing.T) {
	t.Parallel()

	repo := newProgressRepo()
	svc, _, _ := newTestService(repo, testCatalog())
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.IntroduceNewWords(ctx, userID, "xx", "casa", 1)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.IntroduceNewWords(ctx, userID, "es", "", 1)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.IntroduceNewWords(ctx, userID, "es", "missing", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	boom := errors.New("boom")
	repo.GetForUpdateFunc = func(context.Context, uuid.UUID, string) (*domain.LanguageProgress, error) {
		return nil, boom
	}
	_, err = svc.IntroduceNewWords(ctx, userID, "es", "casa", 1)
	assert.ErrorIs(t, err, boom)
}

func TestService_IntroduceNewWords_RejectsOversizedCount(t *testing.T) {
	t.Parallel()

	repo := newProgressRepo()
	svc, tx, _ := newTestService(repo, testCatalog())

	_, err := svc.IntroduceNewWords(context.Background(), uuid.New(), "es", "casa", 1<<40)
	require.ErrorIs(t, err, domain.ErrValidation)

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "n", ve.Errors[0].Field)
	assert.Zero(t, tx.calls, "nothing is loaded for a rejected count")
}

// ---------------------------------------------------------------------------
// RecordResults
// ---------------------------------------------------------------------------

func TestService_RecordResults_MixedOutcomes(t *testing.T) {
	t.Parallel()

	repo := newProgressRepo()
	svc, tx, m := newTestService(repo, testCatalog())
	svc.now = func() time.Time { return fixedNow }
	userID := uuid.New()

	var outcomes []ExerciseOutcome
	for range 5 {
		outcomes = append(outcomes, ExerciseOutcome{ExerciseID: uuid.New(), Words: []string{"agua", "necesitar"}, Correct: true})
	}
	outcomes = append(outcomes, ExerciseOutcome{ExerciseID: uuid.New(), Words: []string{"agua"}, Correct: false})

	p, err := svc.RecordResults(context.Background(), userID, "es", outcomes)
	require.NoError(t, err)
	assert.Equal(t, 1, tx.calls)

	assert.Equal(t, 83, p.Words["agua"].CorrectnessRate)
	assert.Equal(t, 5, p.Words["necesitar"].SeenCount)
	assert.Equal(t, 100, p.Words["necesitar"].CorrectnessRate)
	assert.Equal(t, 6, p.TotalExercises)
	assert.Len(t, p.RecentExerciseIDs, 6)
	assert.Equal(t, 5, m.correct)
	assert.Equal(t, 1, m.wrong)
}

func TestService_RecordResults_RepeatedSubmissionCountsTwice(t *testing.T) {
	t.Parallel()

	repo := newProgressRepo()
	userID := uuid.New()
	existing := domain.NewLanguageProgress("es")
	existing.AddNewWords([]string{"agua", "hola"}, fixedNow)
	repo.put(userID, existing)

	svc, _, _ := newTestService(repo, testCatalog())
	outcome := []ExerciseOutcome{{ExerciseID: uuid.New(), Words: []string{"agua", "hola"}, Correct: true}}

	_, err := svc.RecordResults(context.Background(), userID, "es", outcome)
	require.NoError(t, err)
	p, err := svc.RecordResults(context.Background(), userID, "es", outcome)
	require.NoError(t, err)

	assert.Equal(t, 2, p.Words["agua"].SeenCount)
	assert.Equal(t, 2, p.Words["hola"].SeenCount)

	// Only touched words are written for an existing progress.
	require.Len(t, repo.saved, 2)
	assert.Equal(t, []string{"agua", "hola"}, repo.saved[1])
}

func TestService_RecordResults_Validation(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(newProgressRepo(), testCatalog())

	_, err := svc.RecordResults(context.Background(), uuid.New(), "es", nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.RecordResults(context.Background(), uuid.New(), "", []ExerciseOutcome{{}})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestService_RecordResults_SaveErrorPropagates(t *testing.T) {
	t.Parallel()

	repo := newProgressRepo()
	boom := errors.New("db down")
	repo.SaveFunc = func(context.Context, uuid.UUID, *domain.LanguageProgress, []string) error { return boom }
	svc, _, m := newTestService(repo, testCatalog())

	_, err := svc.RecordResults(context.Background(), uuid.New(), "es",
		[]ExerciseOutcome{{ExerciseID: uuid.New(), Words: []string{"agua"}, Correct: true}})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, m.correct)
}

// ---------------------------------------------------------------------------
// Get / Stats
// ---------------------------------------------------------------------------

func TestService_Get_NotStarted(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(newProgressRepo(), testCatalog())
	_, err := svc.Get(context.Background(), uuid.New(), "es")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_Stats(t *testing.T) {
	t.Parallel()

	repo := newProgressRepo()
	userID := uuid.New()

	p := domain.NewLanguageProgress("es")
	p.AddNewWords([]string{"hola", "yo", "agua", "sí"}, fixedNow)
	p.ActivateCourse("casa")
	p.ActivateCourse("gone")
	p.RecordExercise(uuid.New(), []string{"hola"}, true, fixedNow)
	p.RecordExercise(uuid.New(), []string{"hola", "agua"}, false, fixedNow)
	repo.put(userID, p)

	svc, _, _ := newTestService(repo, testCatalog())

	stats, err := svc.Stats(context.Background(), userID)
	require.NoError(t, err)
	require.Contains(t, stats, "es")
	require.NotContains(t, stats["es"], "gone")

	casa := stats["es"]["casa"]
	assert.Equal(t, 5, casa.TotalCount)
	assert.Equal(t, 3, casa.Encountered) // hola, yo, agua
	assert.Equal(t, 1, casa.Practiced)   // hola seen twice
	assert.Equal(t, 3, casa.NewWords)    // all seen fewer than 5 times
	// hola 50%, agua 0%, yo has no outcomes (rate 0).
	assert.Equal(t, 3, casa.Bad)
	assert.Equal(t, 90, casa.UnderstandingRate) // (40+30+20)/100
	assert.Equal(t, 2, casa.Exercises)
}

func TestService_Stats_NewWordsUsesMaxSeen(t *testing.T) {
	t.Parallel()

	repo := newProgressRepo()
	userID := uuid.New()

	p := domain.NewLanguageProgress("es")
	p.AddNewWords([]string{"hola", "agua", "amigo"}, fixedNow)
	p.ActivateCourse("casa")
	for range 5 {
		p.RecordExercise(uuid.New(), []string{"hola"}, true, fixedNow)
	}
	for range 4 {
		p.RecordExercise(uuid.New(), []string{"agua"}, true, fixedNow)
	}
	repo.put(userID, p)

	svc, _, _ := newTestService(repo, testCatalog())

	stats, err := svc.Stats(context.Background(), userID)
	require.NoError(t, err)
	// hola reached 5 sightings; agua (4) and amigo (0) are still new.
	assert.Equal(t, 2, stats["es"]["casa"].NewWords)
}

func TestService_Stats_NoLanguages(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(newProgressRepo(), testCatalog())
	stats, err := svc.Stats(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, stats)
}
