package service

import (
	"math"

	"github.com/vhducng/certprep/internal/model"
)

// QuestionScore is the per-question outcome of scoring a submission.
type QuestionScore struct {
	QuestionID     string
	IsCorrect      bool
	UserAnswers    []string
	CorrectAnswers []string
}

// ScoreResult aggregates a scored submission. Score is a rounded percentage.
type ScoreResult struct {
	Total     int
	Correct   int
	Incorrect int
	Score     int
	Detail    []QuestionScore
}

// ScorerService compares a submitted answer set against a test's answer key.
// It is pure: no side effects, identical inputs always give identical results.
// The test remains the sole source of truth for correctness; nothing here is
// cached or persisted.
type ScorerService interface {
	Score(test *model.PracticeTest, answers map[string][]string) ScoreResult
}

type scorerService struct{}

func NewScorerService() ScorerService {
	return &scorerService{}
}

func (s *scorerService) Score(test *model.PracticeTest, answers map[string][]string) ScoreResult {
	result := ScoreResult{
		Total:  len(test.Questions),
		Detail: make([]QuestionScore, 0, len(test.Questions)),
	}

	for _, question := range test.Questions {
		// A missing id simply means the question was skipped.
		submitted := answers[question.ID]

		// Exact set equality: order-independent, no partial credit for a
		// subset of a multi-answer question.
		correct := setsEqual(submitted, question.CorrectAnswers)
		if correct {
			result.Correct++
		} else {
			result.Incorrect++
		}

		result.Detail = append(result.Detail, QuestionScore{
			QuestionID:     question.ID,
			IsCorrect:      correct,
			UserAnswers:    submitted,
			CorrectAnswers: question.CorrectAnswers,
		})
	}

	if result.Total > 0 {
		result.Score = int(math.Round(float64(result.Correct) / float64(result.Total) * 100))
	}
	return result
}

func setsEqual(a, b []string) bool {
	setA := make(map[string]bool, len(a))
	for _, v := range a {
		setA[v] = true
	}
	setB := make(map[string]bool, len(b))
	for _, v := range b {
		setB[v] = true
	}
	if len(setA) != len(setB) {
		return false
	}
	for v := range setA {
		if !setB[v] {
			return false
		}
	}
	return true
}
