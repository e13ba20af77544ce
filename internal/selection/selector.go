package selection

import (
	"fmt"
	"math/rand"
	"time"

	"tcf-service/internal/models"
)

// Selector draws a balanced, shuffled question set for one session. It is a
// pure function of (pool, criteria, random source): it never touches storage
// and the injected source is the only non-determinism, so tests can replay
// selections with a fixed seed.
type Selector struct {
	rand *rand.Rand
}

// NewSelector creates a selector around the given source. A nil source falls
// back to a time-seeded one.
func NewSelector(src rand.Source) *Selector {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Selector{rand: rand.New(src)}
}

// Select produces the ordered question list for one session. Per requested
// section the quota is spread across the six difficulty buckets: every bucket
// contributes floor(n/6), and the remainder goes to a randomly ordered subset
// of difficulty labels. Buckets shorter than their share contribute what they
// have; the shortfall is not refilled from other buckets, so the result may
// be smaller than the requested total when the pool is thin.
func (s *Selector) Select(pool []models.Question, criteria Criteria) []SelectedQuestion {
	bySection := make(map[models.Section][]models.Question)
	for _, q := range pool {
		bySection[q.Section] = append(bySection[q.Section], q)
	}

	var picked []models.Question
	for _, section := range models.Sections {
		quota := criteria.Quotas[section]
		if quota <= 0 {
			continue
		}
		sectionPicks := s.pickSection(bySection[section], quota)
		if !criteria.AudioGated {
			picked = append(picked, sectionPicks...)
			continue
		}
		// Audio-gated sessions keep section precedence but still shuffle
		// within the section.
		s.shuffleQuestions(sectionPicks)
		picked = append(picked, sectionPicks...)
	}

	if !criteria.AudioGated {
		s.shuffleQuestions(picked)
	}

	selected := make([]SelectedQuestion, len(picked))
	for i, q := range picked {
		selected[i] = SelectedQuestion{
			SessionQuestionID: fmt.Sprintf("q-%d", i),
			Index:             i,
			Question:          q,
		}
	}
	return selected
}

// pickSection spreads a section quota across the difficulty buckets.
func (s *Selector) pickSection(pool []models.Question, quota int) []models.Question {
	buckets := make(map[models.Difficulty][]models.Question)
	for _, q := range pool {
		buckets[q.Difficulty] = append(buckets[q.Difficulty], q)
	}

	base := quota / len(models.Difficulties)
	remainder := quota % len(models.Difficulties)

	// Random tie-break for the remainder: shuffle the difficulty labels and
	// give one extra pick to each of the first `remainder` labels.
	labels := make([]models.Difficulty, len(models.Difficulties))
	copy(labels, models.Difficulties)
	s.rand.Shuffle(len(labels), func(i, j int) {
		labels[i], labels[j] = labels[j], labels[i]
	})

	take := make(map[models.Difficulty]int, len(labels))
	for _, d := range labels {
		take[d] = base
	}
	for i := 0; i < remainder; i++ {
		take[labels[i]]++
	}

	var picks []models.Question
	// Iterate in fixed level order; final ordering is decided by the caller's
	// shuffle anyway.
	for _, d := range models.Difficulties {
		picks = append(picks, s.sampleBucket(buckets[d], take[d])...)
	}
	return picks
}

// sampleBucket draws up to n questions uniformly without replacement,
// implemented as a full shuffle then take-first-n.
func (s *Selector) sampleBucket(bucket []models.Question, n int) []models.Question {
	if n <= 0 || len(bucket) == 0 {
		return nil
	}
	shuffled := make([]models.Question, len(bucket))
	copy(shuffled, bucket)
	s.shuffleQuestions(shuffled)
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}

func (s *Selector) shuffleQuestions(qs []models.Question) {
	s.rand.Shuffle(len(qs), func(i, j int) {
		qs[i], qs[j] = qs[j], qs[i]
	})
}
