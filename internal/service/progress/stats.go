package progress

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// CourseStats summarizes a learner's coverage of one course.
type CourseStats struct {
	TotalCount  int
	Encountered int
	Practiced   int
	// NewWords counts course words seen fewer than NewWordMaxSeen times.
	NewWords int
	Bad      int
	// UnderstandingRate is the share of the course's word occurrences the
	// learner knows, weighted by frequency, in percent.
	UnderstandingRate int
	Exercises         int
}

// Stats returns per-language, per-active-course statistics. Courses that can
// no longer be read are skipped.
func (s *Service) Stats(ctx context.Context, userID uuid.UUID) (map[string]map[string]CourseStats, error) {
	langs, err := s.repo.ListLanguages(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list languages: %w", err)
	}

	result := make(map[string]map[string]CourseStats, len(langs))
	for _, lang := range langs {
		p, err := s.repo.Get(ctx, userID, lang)
		if err != nil {
			return nil, fmt.Errorf("get progress %s: %w", lang, err)
		}

		bad := p.BadWords(s.cfg.BadWordThreshold)
		fresh := p.NewWords(s.cfg.NewWordMaxSeen)
		perCourse := make(map[string]CourseStats, len(p.ActiveCourses))
		for _, name := range p.ActiveCourses {
			c, err := s.courses.Get(lang, name)
			if err != nil {
				s.log.WarnContext(ctx, "skip course in stats",
					slog.String("lang", lang),
					slog.String("course", name),
					slog.String("error", err.Error()),
				)
				continue
			}

			st := CourseStats{
				TotalCount: len(c.Words),
				Exercises:  p.TotalExercises,
			}
			var understood int
			for word, stat := range p.Words {
				freq, inCourse := c.Frequencies[word]
				if !inCourse {
					continue
				}
				st.Encountered++
				understood += freq
				if stat.SeenCount > 1 {
					st.Practiced++
				}
				if fresh.Contains(word) {
					st.NewWords++
				}
				if bad.Contains(word) {
					st.Bad++
				}
			}
			if total := c.TotalFrequency(); total > 0 {
				st.UnderstandingRate = understood * 100 / total
			}
			perCourse[name] = st
		}
		result[lang] = perCourse
	}
	return result, nil
}
