package config

import (
	"fmt"
	"slices"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	langs, err := ParseLanguages(c.Languages.Raw)
	if err != nil {
		return fmt.Errorf("languages: %w", err)
	}
	if len(langs) < 2 {
		return fmt.Errorf("languages: at least two languages are required (got %d)", len(langs))
	}
	c.Languages.List = langs

	c.Tagger.Models = ParseList(c.Tagger.ModelsRaw)
	for _, m := range c.Tagger.Models {
		if !slices.ContainsFunc(langs, func(l Language) bool { return l.Code == m }) {
			return fmt.Errorf("tagger.models: %q is not a configured language", m)
		}
	}

	if err := c.Corpus.validate(); err != nil {
		return fmt.Errorf("corpus: %w", err)
	}
	if err := c.Lesson.validate(); err != nil {
		return fmt.Errorf("lesson: %w", err)
	}
	if c.Dictionary.Enabled && c.Dictionary.Concurrency <= 0 {
		return fmt.Errorf("dictionary: concurrency must be > 0 (got %d)", c.Dictionary.Concurrency)
	}

	return nil
}

func (c *CorpusConfig) validate() error {
	if c.MaxPasses <= 0 {
		return fmt.Errorf("max_passes must be > 0 (got %d)", c.MaxPasses)
	}
	if c.MinBatchSize <= 0 {
		return fmt.Errorf("min_batch_size must be > 0 (got %d)", c.MinBatchSize)
	}
	if c.MaxBatchSize < c.MinBatchSize {
		return fmt.Errorf("max_batch_size must be >= min_batch_size (got %d < %d)", c.MaxBatchSize, c.MinBatchSize)
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be > 0 (got %d)", c.Concurrency)
	}
	if c.ResolveTimeout < 0 {
		return fmt.Errorf("resolve_timeout must be >= 0 (got %s)", c.ResolveTimeout)
	}
	return nil
}

func (l *LessonConfig) validate() error {
	if l.Exercises <= 0 {
		return fmt.Errorf("exercises must be > 0 (got %d)", l.Exercises)
	}
	if l.WordsToPractice <= 0 {
		return fmt.Errorf("words_to_practice must be > 0 (got %d)", l.WordsToPractice)
	}
	if l.NewWords <= 0 {
		return fmt.Errorf("new_words must be > 0 (got %d)", l.NewWords)
	}
	if l.MaxExercises < l.Exercises {
		return fmt.Errorf("max_exercises must be >= exercises (got %d < %d)", l.MaxExercises, l.Exercises)
	}
	if l.MaxNewWords < l.NewWords {
		return fmt.Errorf("max_new_words must be >= new_words (got %d < %d)", l.MaxNewWords, l.NewWords)
	}
	if l.NewWordMaxSeen <= 0 {
		return fmt.Errorf("new_word_max_seen must be > 0 (got %d)", l.NewWordMaxSeen)
	}
	if l.BadWordThreshold < 0 || l.BadWordThreshold > 100 {
		return fmt.Errorf("bad_word_threshold must be within [0, 100] (got %d)", l.BadWordThreshold)
	}
	return nil
}

// ParseLanguages parses "es:Spanish,en:English" into languages, keeping
// order. A pair without a name uses the code as its name.
func ParseLanguages(raw string) ([]Language, error) {
	var langs []Language
	for _, part := range ParseList(raw) {
		code, name, _ := strings.Cut(part, ":")
		code = strings.TrimSpace(code)
		name = strings.TrimSpace(name)
		if code == "" {
			return nil, fmt.Errorf("invalid language %q", part)
		}
		if name == "" {
			name = code
		}
		if slices.ContainsFunc(langs, func(l Language) bool { return l.Code == code }) {
			return nil, fmt.Errorf("duplicate language %q", code)
		}
		langs = append(langs, Language{Code: code, Name: name})
	}
	return langs, nil
}

// ParseList splits a comma-separated string, dropping blanks.
func ParseList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
