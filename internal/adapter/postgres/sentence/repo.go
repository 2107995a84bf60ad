// Package sentence implements the shared exercise corpus on PostgreSQL.
// Each sentence is one row in sentences plus one sentence_texts row per
// language holding the text and its lemma array.
package sentence

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/babble-backend/internal/adapter/postgres"
	"github.com/heartmarshall/babble-backend/internal/domain"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Repo provides corpus persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
	txm  *postgres.TxManager
}

// New creates a new sentence repository.
func New(pool *pgxpool.Pool, txm *postgres.TxManager) *Repo {
	return &Repo{pool: pool, txm: txm}
}

const getByIDsSQL = `
SELECT s.id, s.created_at, st.lang, st.text, st.lemmas
FROM sentences s
JOIN sentence_texts st ON st.sentence_id = s.id
WHERE s.id = ANY($1::uuid[])
ORDER BY s.id, st.lang`

const lockTextSQL = `SELECT pg_advisory_xact_lock(hashtext($1 || ':' || $2))`

const textExistsSQL = `SELECT EXISTS(SELECT 1 FROM sentence_texts WHERE lang = $1 AND text = $2)`

const insertSentenceSQL = `INSERT INTO sentences (id, created_at) VALUES ($1, $2)`

const insertTextSQL = `
INSERT INTO sentence_texts (sentence_id, lang, text, lemmas)
VALUES ($1, $2, $3, $4)`

const deleteSQL = `DELETE FROM sentences WHERE id = $1`

const updateTextSQL = `
UPDATE sentence_texts SET text = $3, lemmas = $4
WHERE sentence_id = $1 AND lang = $2`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// Lookup returns sentences whose lemmas in q.BaseLanguage are all contained
// in q.Dictionary, that contain at least one of q.RequiredWords when given,
// and whose ID is not excluded. Results are ordered by ID.
func (r *Repo) Lookup(ctx context.Context, q domain.SentenceQuery) ([]domain.Sentence, error) {
	sql, args, err := buildLookup(q)
	if err != nil {
		return nil, fmt.Errorf("build lookup query: %w", err)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := querier.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("lookup sentences: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("lookup sentences: %w", err)
	}

	return r.GetByIDs(ctx, ids)
}

func buildLookup(q domain.SentenceQuery) (string, []any, error) {
	query := psql.
		Select("st.sentence_id").
		From("sentence_texts st").
		Where(sq.Eq{"st.lang": q.BaseLanguage}).
		Where("st.lemmas <@ ?::text[]", q.Dictionary.Sorted()).
		OrderBy("st.sentence_id")

	if len(q.RequiredWords) > 0 {
		query = query.Where("st.lemmas && ?::text[]", q.RequiredWords)
	}
	if len(q.ExcludeIDs) > 0 {
		query = query.Where("st.sentence_id <> ALL(?::uuid[])", q.ExcludeIDs)
	}
	if q.Limit > 0 {
		query = query.Limit(uint64(q.Limit))
	}
	return query.ToSql()
}

// GetByIDs returns the sentences with the given IDs ordered by ID. Unknown IDs
// are skipped.
func (r *Repo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Sentence, error) {
	if len(ids) == 0 {
		return []domain.Sentence{}, nil
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := querier.Query(ctx, getByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("get sentences by ids: %w", err)
	}
	defer rows.Close()

	sentences := make([]domain.Sentence, 0, len(ids))
	for rows.Next() {
		var (
			id        uuid.UUID
			createdAt time.Time
			lang      string
			text      string
			lemmas    []string
		)
		if err := rows.Scan(&id, &createdAt, &lang, &text, &lemmas); err != nil {
			return nil, fmt.Errorf("scan sentence: %w", err)
		}

		if n := len(sentences); n == 0 || sentences[n-1].ID != id {
			sentences = append(sentences, domain.Sentence{
				ID:        id,
				Text:      make(map[string]string),
				Lemmas:    make(map[string][]string),
				CreatedAt: createdAt,
			})
		}
		s := &sentences[len(sentences)-1]
		s.Text[lang] = text
		if lemmas == nil {
			lemmas = []string{}
		}
		s.Lemmas[lang] = lemmas
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get sentences by ids: %w", err)
	}

	return sentences, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// InsertIfAbsent stores every candidate whose text in baseLanguage is not yet
// in the corpus and returns the ones inserted. An advisory lock per
// (language, text) serializes concurrent inserts of the same text, so at most
// one copy is stored.
func (r *Repo) InsertIfAbsent(ctx context.Context, baseLanguage string, sentences []domain.Sentence) ([]domain.Sentence, error) {
	if len(sentences) == 0 {
		return []domain.Sentence{}, nil
	}

	// Locks are taken in text order to avoid deadlocks between batches.
	ordered := slices.Clone(sentences)
	slices.SortStableFunc(ordered, func(a, b domain.Sentence) int {
		return strings.Compare(a.Text[baseLanguage], b.Text[baseLanguage])
	})

	var inserted []domain.Sentence
	err := r.txm.RunInTx(ctx, func(txCtx context.Context) error {
		inserted = inserted[:0]
		querier := postgres.QuerierFromCtx(txCtx, r.pool)

		for _, s := range ordered {
			text := s.Text[baseLanguage]
			if text == "" {
				continue
			}

			if _, err := querier.Exec(txCtx, lockTextSQL, baseLanguage, text); err != nil {
				return fmt.Errorf("lock sentence text: %w", err)
			}

			var exists bool
			if err := querier.QueryRow(txCtx, textExistsSQL, baseLanguage, text).Scan(&exists); err != nil {
				return fmt.Errorf("check sentence text: %w", err)
			}
			if exists {
				continue
			}

			if err := insertSentence(txCtx, querier, s); err != nil {
				return err
			}
			inserted = append(inserted, s)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Report in the caller's order.
	result := make([]domain.Sentence, 0, len(inserted))
	for _, s := range sentences {
		if slices.ContainsFunc(inserted, func(i domain.Sentence) bool { return i.ID == s.ID }) {
			result = append(result, s)
		}
	}
	return result, nil
}

func insertSentence(ctx context.Context, querier postgres.Querier, s domain.Sentence) error {
	createdAt := s.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	if _, err := querier.Exec(ctx, insertSentenceSQL, s.ID, createdAt.UTC()); err != nil {
		return postgres.MapError(err, "sentence", s.ID)
	}

	batch := &pgx.Batch{}
	for _, lang := range sortedKeys(s.Text) {
		lemmas := s.Lemmas[lang]
		if lemmas == nil {
			lemmas = []string{}
		}
		batch.Queue(insertTextSQL, s.ID, lang, s.Text[lang], lemmas)
	}

	br := querier.SendBatch(ctx, batch)
	defer br.Close()
	for range batch.Len() {
		if _, err := br.Exec(); err != nil {
			return postgres.MapError(err, "sentence text", s.ID)
		}
	}
	return nil
}

// Delete removes a sentence and all its translations.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, deleteSQL, id)
	if err != nil {
		return postgres.MapError(err, "sentence", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("sentence %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// UpdateText replaces the text and lemmas of one translation.
func (r *Repo) UpdateText(ctx context.Context, id uuid.UUID, lang, text string, lemmas []string) error {
	if lemmas == nil {
		lemmas = []string{}
	}
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, updateTextSQL, id, lang, text, lemmas)
	if err != nil {
		return postgres.MapError(err, "sentence", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("sentence %s/%s: %w", id, lang, domain.ErrNotFound)
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
