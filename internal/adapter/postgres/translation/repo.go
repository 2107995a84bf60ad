// Package translation persists the word translation dictionary.
package translation

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/babble-backend/internal/adapter/postgres"
	"github.com/heartmarshall/babble-backend/internal/domain"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Repo provides dictionary persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new translation repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const getSQL = `
SELECT translations, updated_at
FROM word_translations
WHERE lang = $1 AND word = $2 AND target_lang = $3`

const getManySQL = `
SELECT word, translations
FROM word_translations
WHERE lang = $1 AND target_lang = $2 AND word = ANY($3::text[])`

const insertSQL = `
INSERT INTO word_translations (lang, word, target_lang, translations, updated_at)
VALUES ($1, $2, $3, $4, $5)`

const upsertSQL = `
INSERT INTO word_translations (lang, word, target_lang, translations, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (lang, word, target_lang) DO UPDATE SET
    translations = EXCLUDED.translations,
    updated_at   = EXCLUDED.updated_at`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// Get returns the translations of word into target, or domain.ErrNotFound
// if the word was never looked up.
func (r *Repo) Get(ctx context.Context, lang, word, target string) (*domain.WordTranslations, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	wt := domain.WordTranslations{Lang: lang, Word: word, Target: target}
	err := querier.QueryRow(ctx, getSQL, lang, word, target).Scan(&wt.Translations, &wt.UpdatedAt)
	if err != nil {
		return nil, postgres.MapError(err, "word translations", key(lang, word, target))
	}
	return &wt, nil
}

// GetMany returns the cached translations of words into target, keyed by
// word. Words never looked up are absent from the result.
func (r *Repo) GetMany(ctx context.Context, lang, target string, words []string) (map[string][]string, error) {
	out := make(map[string][]string, len(words))
	if len(words) == 0 {
		return out, nil
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := querier.Query(ctx, getManySQL, lang, target, words)
	if err != nil {
		return nil, fmt.Errorf("get translations %s->%s: %w", lang, target, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			word         string
			translations []string
		)
		if err := rows.Scan(&word, &translations); err != nil {
			return nil, fmt.Errorf("scan translations: %w", err)
		}
		out[word] = translations
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get translations %s->%s: %w", lang, target, err)
	}
	return out, nil
}

// Search returns dictionary entries of lang whose word starts with prefix,
// ordered by word and target. An empty prefix lists from the start.
func (r *Repo) Search(ctx context.Context, lang, prefix string, limit int) ([]domain.WordTranslations, error) {
	sql, args, err := buildSearch(lang, prefix, limit)
	if err != nil {
		return nil, fmt.Errorf("build search query: %w", err)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := querier.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("search translations: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.WordTranslations, error) {
		wt := domain.WordTranslations{Lang: lang}
		err := row.Scan(&wt.Word, &wt.Target, &wt.Translations, &wt.UpdatedAt)
		return wt, err
	})
	if err != nil {
		return nil, fmt.Errorf("search translations: %w", err)
	}
	return out, nil
}

func buildSearch(lang, prefix string, limit int) (string, []any, error) {
	query := psql.
		Select("word", "target_lang", "translations", "updated_at").
		From("word_translations").
		Where(sq.Eq{"lang": lang}).
		OrderBy("word", "target_lang")

	if prefix != "" {
		query = query.Where(sq.Like{"word": escapeLike(prefix) + "%"})
	}
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}
	return query.ToSql()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Insert stores a first lookup result. A concurrent insert of the same key
// yields domain.ErrAlreadyExists.
func (r *Repo) Insert(ctx context.Context, wt domain.WordTranslations) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := querier.Exec(ctx, insertSQL, wt.Lang, wt.Word, wt.Target, nonNil(wt.Translations), updatedAt(wt))
	if err != nil {
		return postgres.MapError(err, "word translations", key(wt.Lang, wt.Word, wt.Target))
	}
	return nil
}

// Upsert replaces the translations of a word, creating the entry if needed.
func (r *Repo) Upsert(ctx context.Context, wt domain.WordTranslations) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := querier.Exec(ctx, upsertSQL, wt.Lang, wt.Word, wt.Target, nonNil(wt.Translations), updatedAt(wt))
	if err != nil {
		return postgres.MapError(err, "word translations", key(wt.Lang, wt.Word, wt.Target))
	}
	return nil
}

func key(lang, word, target string) string {
	return lang + "/" + word + "->" + target
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func updatedAt(wt domain.WordTranslations) time.Time {
	if wt.UpdatedAt.IsZero() {
		return time.Now().UTC()
	}
	return wt.UpdatedAt
}
