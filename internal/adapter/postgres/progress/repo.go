// Package progress persists per-user, per-language learning progress.
package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/babble-backend/internal/adapter/postgres"
	"github.com/heartmarshall/babble-backend/internal/domain"
)

var errNoTx = errors.New("progress: GetForUpdate outside a transaction")

// Repo provides progress persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new progress repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const selectProgressSQL = `
SELECT active_courses, recent_exercise_ids, total_exercises,
       first_exercise_at, last_exercise_at, last_new_word_at
FROM language_progress
WHERE user_id = $1 AND lang = $2`

const selectWordsSQL = `
SELECT word, seen_count, first_seen_at, last_seen_at, recent_outcomes, correctness_rate
FROM word_stats
WHERE user_id = $1 AND lang = $2`

const listLanguagesSQL = `
SELECT lang FROM language_progress WHERE user_id = $1 ORDER BY lang`

const upsertProgressSQL = `
INSERT INTO language_progress (
    user_id, lang, active_courses, recent_exercise_ids, total_exercises,
    first_exercise_at, last_exercise_at, last_new_word_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (user_id, lang) DO UPDATE SET
    active_courses      = EXCLUDED.active_courses,
    recent_exercise_ids = EXCLUDED.recent_exercise_ids,
    total_exercises     = EXCLUDED.total_exercises,
    first_exercise_at   = EXCLUDED.first_exercise_at,
    last_exercise_at    = EXCLUDED.last_exercise_at,
    last_new_word_at    = EXCLUDED.last_new_word_at`

const upsertWordSQL = `
INSERT INTO word_stats (
    user_id, lang, word, seen_count, first_seen_at, last_seen_at, recent_outcomes, correctness_rate
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (user_id, lang, word) DO UPDATE SET
    seen_count       = EXCLUDED.seen_count,
    first_seen_at    = EXCLUDED.first_seen_at,
    last_seen_at     = EXCLUDED.last_seen_at,
    recent_outcomes  = EXCLUDED.recent_outcomes,
    correctness_rate = EXCLUDED.correctness_rate`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// Get returns the learner's progress in lang, or domain.ErrNotFound if the
// learner has never started that language.
func (r *Repo) Get(ctx context.Context, userID uuid.UUID, lang string) (*domain.LanguageProgress, error) {
	return r.get(ctx, userID, lang, selectProgressSQL)
}

// GetForUpdate is Get with the progress row locked until the surrounding
// transaction ends. It must run inside TxManager.RunInTx.
func (r *Repo) GetForUpdate(ctx context.Context, userID uuid.UUID, lang string) (*domain.LanguageProgress, error) {
	if !postgres.InTx(ctx) {
		return nil, errNoTx
	}
	return r.get(ctx, userID, lang, selectProgressSQL+"\nFOR UPDATE")
}

func (r *Repo) get(ctx context.Context, userID uuid.UUID, lang, query string) (*domain.LanguageProgress, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)
	key := progressKey(userID, lang)

	p := domain.NewLanguageProgress(lang)
	var (
		total                     int
		firstEx, lastEx, lastWord *time.Time
	)
	err := querier.QueryRow(ctx, query, userID, lang).Scan(
		&p.ActiveCourses, &p.RecentExerciseIDs, &total, &firstEx, &lastEx, &lastWord,
	)
	if err != nil {
		return nil, postgres.MapError(err, "language progress", key)
	}
	p.TotalExercises = total
	p.FirstExerciseAt = fromNullable(firstEx)
	p.LastExerciseAt = fromNullable(lastEx)
	p.LastNewWordAt = fromNullable(lastWord)

	rows, err := querier.Query(ctx, selectWordsSQL, userID, lang)
	if err != nil {
		return nil, postgres.MapError(err, "word stats", key)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			word             string
			stat             domain.WordStat
			firstSeen, lastS *time.Time
		)
		if err := rows.Scan(&word, &stat.SeenCount, &firstSeen, &lastS, &stat.RecentOutcomes, &stat.CorrectnessRate); err != nil {
			return nil, fmt.Errorf("scan word stat: %w", err)
		}
		stat.FirstSeenAt = fromNullable(firstSeen)
		stat.LastSeenAt = fromNullable(lastS)
		p.Words[word] = &stat
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "word stats", key)
	}

	return p, nil
}

// ListLanguages returns the languages the learner has progress in, sorted.
func (r *Repo) ListLanguages(ctx context.Context, userID uuid.UUID) ([]string, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listLanguagesSQL, userID)
	if err != nil {
		return nil, postgres.MapError(err, "language progress", userID)
	}
	langs, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, postgres.MapError(err, "language progress", userID)
	}
	if langs == nil {
		langs = []string{}
	}
	return langs, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Save upserts the progress header and the stats of the touched words. A nil
// touched saves every word in p.
func (r *Repo) Save(ctx context.Context, userID uuid.UUID, p *domain.LanguageProgress, touched []string) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)
	key := progressKey(userID, p.Language)

	courses := p.ActiveCourses
	if courses == nil {
		courses = []string{}
	}
	recent := p.RecentExerciseIDs
	if recent == nil {
		recent = []uuid.UUID{}
	}

	batch := &pgx.Batch{}
	batch.Queue(upsertProgressSQL,
		userID, p.Language, courses, recent, p.TotalExercises,
		toNullable(p.FirstExerciseAt), toNullable(p.LastExerciseAt), toNullable(p.LastNewWordAt),
	)

	if touched == nil {
		touched = make([]string, 0, len(p.Words))
		for w := range p.Words {
			touched = append(touched, w)
		}
	}
	for _, w := range touched {
		stat, ok := p.Words[w]
		if !ok {
			continue
		}
		outcomes := stat.RecentOutcomes
		if outcomes == nil {
			outcomes = []bool{}
		}
		batch.Queue(upsertWordSQL,
			userID, p.Language, w, stat.SeenCount,
			toNullable(stat.FirstSeenAt), toNullable(stat.LastSeenAt), outcomes, stat.CorrectnessRate,
		)
	}

	br := querier.SendBatch(ctx, batch)
	defer br.Close()
	for range batch.Len() {
		if _, err := br.Exec(); err != nil {
			return postgres.MapError(err, "language progress", key)
		}
	}
	return nil
}

func progressKey(userID uuid.UUID, lang string) string {
	return userID.String() + "/" + lang
}

func toNullable(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}

func fromNullable(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.UTC()
}
