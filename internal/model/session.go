package model

import "time"

// SubmissionSession records one scored attempt at a test. Sessions are
// insert-only: re-attempts create new rows keyed by test id plus submission
// time, so earlier attempts are never overwritten.
type SubmissionSession struct {
	SessionKey  string    `gorm:"primarykey" json:"session_key"` // "{testID}-{unix millis}"
	TestID      string    `json:"test_id" gorm:"not null;index"`
	Answers     AnswerMap `json:"answers" gorm:"not null"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	Score       int       `json:"score"` // 0-100
	CreatedAt   time.Time `json:"created_at"`
}
