package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

const (
	// TrackCorrectness is the number of most recent outcomes kept per word.
	TrackCorrectness = 10
	// TrackLastExercises is the number of most recent exercise IDs kept per language.
	TrackLastExercises = 100
)

// WordStat holds exposure and correctness statistics for one known word.
type WordStat struct {
	SeenCount       int
	FirstSeenAt     time.Time
	LastSeenAt      time.Time
	RecentOutcomes  []bool
	CorrectnessRate int
}

// AddOutcome pushes a correctness judgment, evicting the oldest beyond
// TrackCorrectness, and recomputes CorrectnessRate.
func (w *WordStat) AddOutcome(correct bool) {
	w.RecentOutcomes = append(w.RecentOutcomes, correct)
	if n := len(w.RecentOutcomes); n > TrackCorrectness {
		w.RecentOutcomes = append([]bool(nil), w.RecentOutcomes[n-TrackCorrectness:]...)
	}
	w.CorrectnessRate = correctnessRate(w.RecentOutcomes)
}

func correctnessRate(outcomes []bool) int {
	if len(outcomes) == 0 {
		return 0
	}
	var ok int
	for _, o := range outcomes {
		if o {
			ok++
		}
	}
	return int(math.Round(100 * float64(ok) / float64(len(outcomes))))
}

// LanguageProgress is a learner's state in one language.
type LanguageProgress struct {
	Language          LanguageCode
	Words             map[string]*WordStat
	ActiveCourses     []string
	RecentExerciseIDs []uuid.UUID
	TotalExercises    int
	FirstExerciseAt   time.Time
	LastExerciseAt    time.Time
	LastNewWordAt     time.Time
}

// NewLanguageProgress returns an empty progress for lang.
func NewLanguageProgress(lang LanguageCode) *LanguageProgress {
	return &LanguageProgress{
		Language: lang,
		Words:    make(map[string]*WordStat),
	}
}

// AddNewWords introduces words without recording an exposure. Words that are
// already known are left untouched.
func (p *LanguageProgress) AddNewWords(words []string, now time.Time) {
	p.LastNewWordAt = now
	for _, w := range words {
		if _, ok := p.Words[w]; !ok {
			p.Words[w] = &WordStat{}
		}
	}
}

// RecordExposure registers one exposure of word. A nil correct records the
// exposure without a correctness judgment.
func (p *LanguageProgress) RecordExposure(word string, correct *bool, now time.Time) {
	stat, ok := p.Words[word]
	if !ok {
		stat = &WordStat{}
		p.Words[word] = stat
	}
	stat.LastSeenAt = now
	if stat.FirstSeenAt.IsZero() {
		stat.FirstSeenAt = now
	}
	stat.SeenCount++
	if correct != nil {
		stat.AddOutcome(*correct)
	}
}

// RecordExercise applies the outcome of one exercise to every word in words
// and appends exerciseID to RecentExerciseIDs. Repeated calls are applied
// repeatedly: de-duplicating submissions is the caller's job.
func (p *LanguageProgress) RecordExercise(exerciseID uuid.UUID, words []string, correct bool, now time.Time) {
	if p.FirstExerciseAt.IsZero() {
		p.FirstExerciseAt = now
	}
	p.LastExerciseAt = now
	p.TotalExercises++
	for _, w := range words {
		p.RecordExposure(w, &correct, now)
	}
	p.RecentExerciseIDs = append(p.RecentExerciseIDs, exerciseID)
	if n := len(p.RecentExerciseIDs); n > TrackLastExercises {
		p.RecentExerciseIDs = append([]uuid.UUID(nil), p.RecentExerciseIDs[n-TrackLastExercises:]...)
	}
}

// KnownWords returns the learner's vocabulary as a set.
func (p *LanguageProgress) KnownWords() WordSet {
	s := make(WordSet, len(p.Words))
	for w := range p.Words {
		s[w] = struct{}{}
	}
	return s
}

// NewWords returns words seen fewer than maxSeen times.
func (p *LanguageProgress) NewWords(maxSeen int) WordSet {
	s := make(WordSet)
	for w, stat := range p.Words {
		if stat.SeenCount < maxSeen {
			s[w] = struct{}{}
		}
	}
	return s
}

// BadWords returns words whose correctness rate is below threshold.
func (p *LanguageProgress) BadWords(threshold int) WordSet {
	s := make(WordSet)
	for w, stat := range p.Words {
		if stat.CorrectnessRate < threshold {
			s[w] = struct{}{}
		}
	}
	return s
}

// ActivateCourse marks course as active, keeping insertion order.
func (p *LanguageProgress) ActivateCourse(course string) {
	for _, c := range p.ActiveCourses {
		if c == course {
			return
		}
	}
	p.ActiveCourses = append(p.ActiveCourses, course)
}

// UserProgress groups a learner's per-language progress.
type UserProgress struct {
	UserID    uuid.UUID
	Languages map[LanguageCode]*LanguageProgress
}
