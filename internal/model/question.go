package model

import (
	"fmt"
	"time"

	"github.com/vhducng/certprep/internal/errs"
	"gorm.io/gorm"
)

const (
	// QuestionKindSingle has exactly one correct option.
	QuestionKindSingle = "single"
	// QuestionKindMulti has two or three correct options, fewer than all of them.
	QuestionKindMulti = "multi"
)

type Question struct {
	ID             string         `gorm:"primarykey" json:"id"`
	TestID         string         `json:"test_id" gorm:"not null;index"`
	Kind           string         `json:"kind" gorm:"not null"` // "single", "multi"
	Prompt         string         `json:"prompt" gorm:"type:text;not null"`
	Options        StringList     `json:"options" gorm:"not null"`
	CorrectAnswers StringList     `json:"correct_answers" gorm:"not null"`
	Explanation    string         `json:"explanation" gorm:"type:text"`
	OrderInTest    int            `json:"order_in_test" gorm:"not null"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// Validate enforces the Question invariants: options are distinct, correct
// answers form a non-empty subset of the options, and the correct-answer
// cardinality matches the kind.
func (q *Question) Validate() error {
	if q.Prompt == "" {
		return fmt.Errorf("%w: empty prompt", errs.ErrValidation)
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("%w: question needs at least 2 options, got %d", errs.ErrValidation, len(q.Options))
	}

	seen := make(map[string]bool, len(q.Options))
	for _, opt := range q.Options {
		if seen[opt] {
			return fmt.Errorf("%w: duplicate option %q", errs.ErrValidation, opt)
		}
		seen[opt] = true
	}

	if len(q.CorrectAnswers) == 0 {
		return fmt.Errorf("%w: no correct answers", errs.ErrValidation)
	}
	for _, ans := range q.CorrectAnswers {
		if !seen[ans] {
			return fmt.Errorf("%w: correct answer %q is not an option", errs.ErrValidation, ans)
		}
	}

	switch q.Kind {
	case QuestionKindSingle:
		if len(q.CorrectAnswers) != 1 {
			return fmt.Errorf("%w: single-answer question has %d correct answers", errs.ErrValidation, len(q.CorrectAnswers))
		}
	case QuestionKindMulti:
		if len(q.CorrectAnswers) < 2 || len(q.CorrectAnswers) > 3 {
			return fmt.Errorf("%w: multi-answer question needs 2 or 3 correct answers, got %d", errs.ErrValidation, len(q.CorrectAnswers))
		}
		if len(q.CorrectAnswers) >= len(q.Options) {
			return fmt.Errorf("%w: multi-answer question marks every option correct", errs.ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown question kind %q", errs.ErrValidation, q.Kind)
	}
	return nil
}
