package dto

import "time"

// ErrorResponse is the structured error payload returned by every failing API call.
type ErrorResponse struct {
	Message string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// SearchResultDTO is one ranked search hit.
type SearchResultDTO struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// SearchResponse wraps GET /api/search results.
type SearchResponse struct {
	Results []SearchResultDTO `json:"results"`
}

// QuestionScoreDTO is the per-question scoring detail.
type QuestionScoreDTO struct {
	QuestionID     string   `json:"question_id"`
	IsCorrect      bool     `json:"is_correct"`
	UserAnswers    []string `json:"user_answers"`
	CorrectAnswers []string `json:"correct_answers"`
}

// SubmitResponse is returned by POST /api/test/{id}/submit.
type SubmitResponse struct {
	SessionID string             `json:"session_id"`
	Score     int                `json:"score"` // percentage, 0-100
	Correct   int                `json:"correct"`
	Incorrect int                `json:"incorrect"`
	Total     int                `json:"total"`
	Answers   []QuestionScoreDTO `json:"answers"`
}

// SessionSummaryDTO lists one past attempt at a test.
type SessionSummaryDTO struct {
	SessionID   string    `json:"session_id"`
	TestID      string    `json:"test_id"`
	Score       int       `json:"score"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}
