package services

import (
	"math"
	"math/rand"

	"github.com/submisoon/assessment-service/internal/models"
)

// Scorer turns a finished answer set into a numeric score. Kept behind an
// interface so the placeholder grading for non-objective assessments can
// be swapped for a real grading hook without touching lifecycle code.
type Scorer interface {
	// Score returns the attempt's score, or nil when no score applies.
	Score(questions []*models.Question, answersByQuestion map[uint]*models.Answer) *int
}

type mcqScorer struct{}

// NewMcqScorer returns the default scorer: objective questions are graded
// against their correct options, everything else gets a placeholder.
func NewMcqScorer() Scorer {
	return &mcqScorer{}
}

func (s *mcqScorer) Score(questions []*models.Question, answersByQuestion map[uint]*models.Answer) *int {
	var mcqQuestions []*models.Question
	hasNonMcq := false
	for _, q := range questions {
		if q.Type == models.QuestionMcq {
			mcqQuestions = append(mcqQuestions, q)
		} else {
			hasNonMcq = true
		}
	}

	if len(mcqQuestions) > 0 {
		correct := 0
		for _, q := range mcqQuestions {
			answer := answersByQuestion[q.ID]
			if answer == nil || answer.SelectedOptionID == nil {
				continue
			}
			for _, opt := range q.Options {
				if opt.ID == *answer.SelectedOptionID && opt.IsCorrect {
					correct++
					break
				}
			}
		}

		// The denominator is the full question count, not the mcq count
		score := int(math.Round(float64(correct) / float64(len(questions)) * 100))
		return &score
	}

	if hasNonMcq {
		// Placeholder until manual grading exists, not a real grade
		score := rand.Intn(101)
		return &score
	}

	return nil
}
