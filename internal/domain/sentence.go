package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Sentence is a shared bilingual exercise sentence. Text holds one
// translation per supported language; Lemmas holds the normalized lemma list
// of each translation and is never edited independently of Text.
type Sentence struct {
	ID        uuid.UUID
	Text      map[LanguageCode]string
	Lemmas    map[LanguageCode][]string
	CreatedAt time.Time
}

// SentenceQuery selects corpus sentences usable with a learner's vocabulary.
type SentenceQuery struct {
	BaseLanguage  LanguageCode
	Dictionary    WordSet
	RequiredWords []string
	ExcludeIDs    []uuid.UUID
	Limit         int
}

// ExcludeSet returns ExcludeIDs as a set, in the form Sentence.Matches takes.
func (q SentenceQuery) ExcludeSet() map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(q.ExcludeIDs))
	for _, id := range q.ExcludeIDs {
		set[id] = struct{}{}
	}
	return set
}

// Matches reports whether the sentence satisfies a corpus lookup constraint:
// every lemma in lang is in dictionary, at least one of required (if any)
// is present, and the sentence is not excluded. It is the reference
// semantics of the sentence store's Lookup query: in-memory stores filter
// with it and the Postgres store is checked against it.
func (s *Sentence) Matches(lang LanguageCode, dictionary WordSet, required []string, exclude map[uuid.UUID]struct{}) bool {
	if _, skip := exclude[s.ID]; skip {
		return false
	}
	lemmas := s.Lemmas[lang]
	for _, l := range lemmas {
		if !dictionary.Contains(l) {
			return false
		}
	}
	if len(required) == 0 {
		return true
	}
	for _, r := range required {
		if slices.Contains(lemmas, r) {
			return true
		}
	}
	return false
}

// WordSet is an unordered set of words or lemmas.
type WordSet map[string]struct{}

// NewWordSet builds a set from words, dropping duplicates.
func NewWordSet(words ...string) WordSet {
	s := make(WordSet, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

func (s WordSet) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

func (s WordSet) Add(words ...string) {
	for _, w := range words {
		s[w] = struct{}{}
	}
}

// Sorted returns the members in lexical order.
func (s WordSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for w := range s {
		out = append(out, w)
	}
	slices.Sort(out)
	return out
}

// UniqueWords returns words with duplicates removed, keeping first occurrence order.
func UniqueWords(words []string) []string {
	seen := make(WordSet, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		if seen.Contains(w) {
			continue
		}
		seen.Add(w)
		out = append(out, w)
	}
	return out
}
