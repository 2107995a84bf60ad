package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/babble-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// UniqueLanguage returns a language code no other test uses, so corpus
// lookups in a shared database only see the caller's sentences.
func UniqueLanguage() string {
	return "t" + uniqueSuffix()
}

// SeedSentence inserts a sentence with one text per language. Lemmas for each
// language are given by lemmas; languages missing there get an empty array.
func SeedSentence(t *testing.T, pool *pgxpool.Pool, text map[string]string, lemmas map[string][]string) domain.Sentence {
	t.Helper()
	ctx := context.Background()

	s := domain.Sentence{
		ID:        uuid.New(),
		Text:      text,
		Lemmas:    make(map[string][]string, len(text)),
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO sentences (id, created_at) VALUES ($1, $2)`,
		s.ID, s.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedSentence insert sentence: %v", err)
	}

	for lang, txt := range text {
		l := lemmas[lang]
		if l == nil {
			l = []string{}
		}
		s.Lemmas[lang] = l
		_, err = pool.Exec(ctx,
			`INSERT INTO sentence_texts (sentence_id, lang, text, lemmas) VALUES ($1, $2, $3, $4)`,
			s.ID, lang, txt, l,
		)
		if err != nil {
			t.Fatalf("testhelper: SeedSentence insert text %s: %v", lang, err)
		}
	}

	return s
}

// SeedLanguageProgress inserts an empty language_progress row for a fresh user
// and returns the user ID.
func SeedLanguageProgress(t *testing.T, pool *pgxpool.Pool, lang string) uuid.UUID {
	t.Helper()

	userID := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO language_progress (user_id, lang) VALUES ($1, $2)`,
		userID, lang,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedLanguageProgress: %v", err)
	}
	return userID
}
