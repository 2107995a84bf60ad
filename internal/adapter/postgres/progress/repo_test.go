package progress_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	postgres "github.com/heartmarshall/babble-backend/internal/adapter/postgres"
	"github.com/heartmarshall/babble-backend/internal/adapter/postgres/progress"
	"github.com/heartmarshall/babble-backend/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/babble-backend/internal/domain"
)

func TestRepo_Get_NotFound(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := progress.New(pool)

	_, err := repo.Get(context.Background(), uuid.New(), "es")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRepo_SaveAndGet_RoundTrip(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := progress.New(pool)
	ctx := context.Background()

	userID := uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)

	p := domain.NewLanguageProgress("es")
	p.ActivateCourse("basics")
	p.AddNewWords([]string{"agua", "hola"}, now)
	p.RecordExercise(uuid.New(), []string{"agua"}, true, now)
	p.RecordExercise(uuid.New(), []string{"agua"}, false, now.Add(time.Minute))

	require.NoError(t, repo.Save(ctx, userID, p, nil))

	got, err := repo.Get(ctx, userID, "es")
	require.NoError(t, err)

	assert.Equal(t, "es", got.Language)
	assert.Equal(t, []string{"basics"}, got.ActiveCourses)
	assert.Equal(t, p.RecentExerciseIDs, got.RecentExerciseIDs)
	assert.Equal(t, 2, got.TotalExercises)
	assert.True(t, now.Equal(got.FirstExerciseAt))
	assert.True(t, now.Add(time.Minute).Equal(got.LastExerciseAt))
	assert.True(t, now.Equal(got.LastNewWordAt))

	require.Contains(t, got.Words, "agua")
	agua := got.Words["agua"]
	assert.Equal(t, 2, agua.SeenCount)
	assert.Equal(t, []bool{true, false}, agua.RecentOutcomes)
	assert.Equal(t, 50, agua.CorrectnessRate)

	require.Contains(t, got.Words, "hola")
	hola := got.Words["hola"]
	assert.Zero(t, hola.SeenCount)
	assert.True(t, hola.FirstSeenAt.IsZero())
	assert.True(t, hola.LastSeenAt.IsZero())
	assert.Empty(t, hola.RecentOutcomes)
}

func TestRepo_Save_OnlyTouchedWords(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := progress.New(pool)
	ctx := context.Background()

	userID := uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)

	p := domain.NewLanguageProgress("es")
	p.AddNewWords([]string{"agua", "hola"}, now)
	require.NoError(t, repo.Save(ctx, userID, p, nil))

	// Mutate both in memory but only persist agua.
	p.RecordExposure("agua", nil, now)
	p.RecordExposure("hola", nil, now)
	require.NoError(t, repo.Save(ctx, userID, p, []string{"agua"}))

	got, err := repo.Get(ctx, userID, "es")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Words["agua"].SeenCount)
	assert.Equal(t, 0, got.Words["hola"].SeenCount)
}

func TestRepo_GetForUpdate_RequiresTx(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := progress.New(pool)

	userID := testhelper.SeedLanguageProgress(t, pool, "es")

	_, err := repo.GetForUpdate(context.Background(), userID, "es")
	require.Error(t, err)
}

func TestRepo_GetForUpdate_InTx(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := progress.New(pool)
	txm := postgres.NewTxManager(pool)
	ctx := context.Background()

	userID := testhelper.SeedLanguageProgress(t, pool, "es")

	err := txm.RunInTx(ctx, func(ctx context.Context) error {
		p, err := repo.GetForUpdate(ctx, userID, "es")
		if err != nil {
			return err
		}
		p.RecordExercise(uuid.New(), []string{"agua"}, true, time.Now())
		return repo.Save(ctx, userID, p, []string{"agua"})
	})
	require.NoError(t, err)

	got, err := repo.Get(ctx, userID, "es")
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalExercises)
	assert.Equal(t, 100, got.Words["agua"].CorrectnessRate)
}

func TestRepo_ListLanguages(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := progress.New(pool)
	ctx := context.Background()

	userID := uuid.New()
	empty, err := repo.ListLanguages(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, repo.Save(ctx, userID, domain.NewLanguageProgress("fr"), nil))
	require.NoError(t, repo.Save(ctx, userID, domain.NewLanguageProgress("es"), nil))

	langs, err := repo.ListLanguages(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"es", "fr"}, langs)
}
