package translation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/babble-backend/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/babble-backend/internal/adapter/postgres/translation"
	"github.com/heartmarshall/babble-backend/internal/domain"
)

func newRepo(t *testing.T) *translation.Repo {
	t.Helper()
	return translation.New(testhelper.SetupTestDB(t))
}

func TestRepo_InsertAndGet(t *testing.T) {
	t.Parallel()
	repo := newRepo(t)
	ctx := context.Background()
	lang := testhelper.UniqueLanguage()
	now := time.Now().UTC().Truncate(time.Microsecond)

	_, err := repo.Get(ctx, lang, "agua", "en")
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, repo.Insert(ctx, domain.WordTranslations{
		Lang: lang, Word: "agua", Target: "en", Translations: []string{"water"}, UpdatedAt: now,
	}))

	got, err := repo.Get(ctx, lang, "agua", "en")
	require.NoError(t, err)
	assert.Equal(t, []string{"water"}, got.Translations)
	assert.True(t, now.Equal(got.UpdatedAt))

	err = repo.Insert(ctx, domain.WordTranslations{Lang: lang, Word: "agua", Target: "en"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestRepo_Insert_EmptyIsCachedMiss(t *testing.T) {
	t.Parallel()
	repo := newRepo(t)
	ctx := context.Background()
	lang := testhelper.UniqueLanguage()

	require.NoError(t, repo.Insert(ctx, domain.WordTranslations{Lang: lang, Word: "zzz", Target: "en"}))

	got, err := repo.Get(ctx, lang, "zzz", "en")
	require.NoError(t, err)
	assert.NotNil(t, got.Translations)
	assert.Empty(t, got.Translations)
}

func TestRepo_Upsert_Replaces(t *testing.T) {
	t.Parallel()
	repo := newRepo(t)
	ctx := context.Background()
	lang := testhelper.UniqueLanguage()

	wt := domain.WordTranslations{Lang: lang, Word: "casa", Target: "en", Translations: []string{"house"}}
	require.NoError(t, repo.Upsert(ctx, wt))

	wt.Translations = []string{"home", "house"}
	require.NoError(t, repo.Upsert(ctx, wt))

	got, err := repo.Get(ctx, lang, "casa", "en")
	require.NoError(t, err)
	assert.Equal(t, []string{"home", "house"}, got.Translations)
}

func TestRepo_GetMany(t *testing.T) {
	t.Parallel()
	repo := newRepo(t)
	ctx := context.Background()
	lang := testhelper.UniqueLanguage()

	require.NoError(t, repo.Insert(ctx, domain.WordTranslations{Lang: lang, Word: "agua", Target: "en", Translations: []string{"water"}}))
	require.NoError(t, repo.Insert(ctx, domain.WordTranslations{Lang: lang, Word: "agua", Target: "fr", Translations: []string{"eau"}}))
	require.NoError(t, repo.Insert(ctx, domain.WordTranslations{Lang: lang, Word: "sol", Target: "en"}))

	got, err := repo.GetMany(ctx, lang, "en", []string{"agua", "sol", "luna"})
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"agua": {"water"}, "sol": {}}, got)

	empty, err := repo.GetMany(ctx, lang, "en", nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRepo_Search(t *testing.T) {
	t.Parallel()
	repo := newRepo(t)
	ctx := context.Background()
	lang := testhelper.UniqueLanguage()

	for _, w := range []string{"casa", "cama", "agua", "cx_y", "cxzy"} {
		require.NoError(t, repo.Insert(ctx, domain.WordTranslations{Lang: lang, Word: w, Target: "en", Translations: []string{w + "-en"}}))
	}

	all, err := repo.Search(ctx, lang, "", 0)
	require.NoError(t, err)
	words := make([]string, len(all))
	for i, wt := range all {
		words[i] = wt.Word
		assert.Equal(t, lang, wt.Lang)
	}
	assert.Equal(t, []string{"agua", "cama", "casa", "cx_y", "cxzy"}, words)

	ca, err := repo.Search(ctx, lang, "ca", 2)
	require.NoError(t, err)
	require.Len(t, ca, 2)
	assert.Equal(t, "cama", ca[0].Word)
	assert.Equal(t, "casa", ca[1].Word)

	// The underscore is matched literally.
	literal, err := repo.Search(ctx, lang, "cx_", 0)
	require.NoError(t, err)
	require.Len(t, literal, 1)
	assert.Equal(t, "cx_y", literal[0].Word)
}
