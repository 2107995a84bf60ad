package corpus

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/babble-backend/internal/domain"
	"github.com/heartmarshall/babble-backend/internal/lemma"
)

func TestService_Resolve_GeneratedSentenceOutsideVocabulary(t *testing.T) {
	t.Parallel()

	store := &memStore{}
	gen := constGenerator(waterJSON)
	svc := newTestService(store, lemmasByText(waterLemmas), gen)

	got, err := svc.Resolve(context.Background(), ResolveRequest{
		BaseLanguage:  "es",
		Dictionary:    domain.NewWordSet("agua", "amigo", "gracias", "hola"),
		RequiredWords: []string{"agua"},
		Count:         1,
		MaxPasses:     3,
	})

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 3, gen.Calls())
	assert.Equal(t, 1, store.Len())
}

func TestService_Resolve_GeneratedSentenceFoundOnNextPass(t *testing.T) {
	t.Parallel()

	store := &memStore{}
	gen := constGenerator(waterJSON)
	svc := newTestService(store, lemmasByText(waterLemmas), gen)

	got, err := svc.Resolve(context.Background(), ResolveRequest{
		BaseLanguage:  "es",
		Dictionary:    domain.NewWordSet("agua", "amigo", "gracias", "hola", "necesitar"),
		RequiredWords: []string{"agua"},
		Count:         1,
		MaxPasses:     3,
	})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Necesito agua", got[0].Text["es"])
	assert.Equal(t, 1, gen.Calls())
	assert.Equal(t, 2, store.lookups)
}

func TestService_Resolve_CacheHitSkipsGenerator(t *testing.T) {
	t.Parallel()

	store := &memStore{sentences: []domain.Sentence{
		{ID: uuid.New(), Text: map[string]string{"es": "Hola amigo"}, Lemmas: map[string][]string{"es": {"hola", "amigo"}}},
		{ID: uuid.New(), Text: map[string]string{"es": "Hola"}, Lemmas: map[string][]string{"es": {"hola"}}},
		{ID: uuid.New(), Text: map[string]string{"es": "Gracias amigo"}, Lemmas: map[string][]string{"es": {"gracias", "amigo"}}},
	}}
	gen := constGenerator(waterJSON)
	svc := newTestService(store, lemmasByText(waterLemmas), gen)

	got, err := svc.Resolve(context.Background(), ResolveRequest{
		BaseLanguage:  "es",
		Dictionary:    domain.NewWordSet("agua", "amigo", "gracias", "hola"),
		RequiredWords: []string{"amigo"},
		Count:         2,
	})

	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, 0, gen.Calls())
}

func TestService_Resolve_ExcludesIDs(t *testing.T) {
	t.Parallel()

	seen := uuid.New()
	store := &memStore{sentences: []domain.Sentence{
		{ID: seen, Text: map[string]string{"es": "Hola amigo"}, Lemmas: map[string][]string{"es": {"hola", "amigo"}}},
	}}
	gen := constGenerator("nothing useful")
	svc := newTestService(store, lemmasByText(waterLemmas), gen)

	got, err := svc.Resolve(context.Background(), ResolveRequest{
		BaseLanguage: "es",
		Dictionary:   domain.NewWordSet("hola", "amigo"),
		ExcludeIDs:   []uuid.UUID{seen},
		Count:        1,
		MaxPasses:    2,
	})

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 2, gen.Calls())
}

func TestService_Resolve_ConvergenceBound(t *testing.T) {
	t.Parallel()

	for _, maxPasses := range []int{1, 2, 5, 8} {
		t.Run(fmt.Sprintf("max_passes=%d", maxPasses), func(t *testing.T) {
			t.Parallel()

			gen := &mockGenerator{
				GenerateFunc: func(context.Context, string, []string) (string, error) {
					return "", errors.New("overloaded")
				},
			}
			svc := newTestService(&memStore{}, lemmasByText(waterLemmas), gen)

			got, err := svc.Resolve(context.Background(), ResolveRequest{
				BaseLanguage: "es",
				Dictionary:   domain.NewWordSet("hola"),
				Count:        4,
				MaxPasses:    maxPasses,
			})

			require.NoError(t, err)
			assert.Empty(t, got)
			assert.LessOrEqual(t, gen.Calls(), maxPasses)
		})
	}
}

func TestService_Resolve_DefaultMaxPasses(t *testing.T) {
	t.Parallel()

	gen := constGenerator("[]")
	svc := newTestService(&memStore{}, lemmasByText(waterLemmas), gen)

	_, err := svc.Resolve(context.Background(), ResolveRequest{
		BaseLanguage: "es",
		Dictionary:   domain.NewWordSet("hola"),
		Count:        1,
	})

	require.NoError(t, err)
	assert.Equal(t, testConfig().MaxPasses, gen.Calls())
}

func TestService_Resolve_ModelUnavailablePropagates(t *testing.T) {
	t.Parallel()

	norm := &mockNormalizer{
		NormalizeFunc: func(context.Context, string, string, lemma.Options) ([]string, error) {
			return nil, fmt.Errorf("tag: %w", domain.ErrModelUnavailable)
		},
	}
	svc := newTestService(&memStore{}, norm, constGenerator(waterJSON))

	_, err := svc.Resolve(context.Background(), ResolveRequest{
		BaseLanguage: "es",
		Dictionary:   domain.NewWordSet("agua"),
		Count:        1,
	})

	require.ErrorIs(t, err, domain.ErrModelUnavailable)
}

func TestService_Resolve_CancelledContextReturnsPartial(t *testing.T) {
	t.Parallel()

	store := &memStore{sentences: []domain.Sentence{
		{ID: uuid.New(), Text: map[string]string{"es": "Hola"}, Lemmas: map[string][]string{"es": {"hola"}}},
	}}
	ctx, cancel := context.WithCancel(context.Background())
	gen := &mockGenerator{
		GenerateFunc: func(context.Context, string, []string) (string, error) {
			cancel()
			return "", context.Canceled
		},
	}
	svc := newTestService(store, lemmasByText(waterLemmas), gen)

	got, err := svc.Resolve(ctx, ResolveRequest{
		BaseLanguage: "es",
		Dictionary:   domain.NewWordSet("hola"),
		Count:        3,
		MaxPasses:    5,
	})

	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 1, gen.Calls())
}

func TestService_Resolve_DeadlineBeforeStart(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	gen := constGenerator(waterJSON)
	svc := newTestService(&memStore{}, lemmasByText(waterLemmas), gen)

	got, err := svc.Resolve(ctx, ResolveRequest{
		BaseLanguage: "es",
		Dictionary:   domain.NewWordSet("hola"),
		Count:        3,
	})

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 0, gen.Calls())
}

func TestService_Resolve_LookupErrorCountsAsPass(t *testing.T) {
	t.Parallel()

	store := &memStore{LookupErr: errors.New("connection refused")}
	gen := constGenerator(waterJSON)
	svc := newTestService(store, lemmasByText(waterLemmas), gen)

	got, err := svc.Resolve(context.Background(), ResolveRequest{
		BaseLanguage: "es",
		Dictionary:   domain.NewWordSet("hola"),
		Count:        1,
		MaxPasses:    3,
	})

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 3, store.lookups)
	assert.Equal(t, 0, gen.Calls())
}

func TestService_Resolve_BatchSize(t *testing.T) {
	t.Parallel()

	words := func(n int) domain.WordSet {
		s := make(domain.WordSet)
		for i := range n {
			s.Add(fmt.Sprintf("w%02d", i))
		}
		return s
	}

	tests := []struct {
		name     string
		dict     domain.WordSet
		required []string
		minBatch int
		want     string
	}{
		{name: "small dictionary", dict: words(4), required: []string{"w00"}, want: "Generate 10 "},
		{name: "threshold reached by required words", dict: words(8), required: []string{"x", "y"}, want: "Generate 20 "},
		{name: "large dictionary", dict: words(30), want: "Generate 20 "},
		{name: "explicit min batch", dict: words(3), minBatch: 5, want: "Generate 5 "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gen := constGenerator("[]")
			svc := newTestService(&memStore{}, lemmasByText(waterLemmas), gen)

			_, err := svc.Resolve(context.Background(), ResolveRequest{
				BaseLanguage:  "es",
				Dictionary:    tt.dict,
				RequiredWords: tt.required,
				Count:         1,
				MaxPasses:     1,
				MinBatchSize:  tt.minBatch,
			})
			require.NoError(t, err)
			require.Len(t, gen.prompts, 1)
			assert.True(t, strings.Contains(gen.prompts[0], tt.want), gen.prompts[0])
		})
	}
}

func TestService_Resolve_ZeroCount(t *testing.T) {
	t.Parallel()

	gen := constGenerator(waterJSON)
	svc := newTestService(&memStore{}, lemmasByText(waterLemmas), gen)

	got, err := svc.Resolve(context.Background(), ResolveRequest{
		BaseLanguage: "es",
		Dictionary:   domain.NewWordSet("hola"),
	})

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 0, gen.Calls())
}
