package dto

import "time"

// QuestionDTO is the redacted question view served to test takers: no correct
// answers, no explanation.
type QuestionDTO struct {
	ID          string   `json:"id"`
	Kind        string   `json:"kind"`
	Prompt      string   `json:"prompt"`
	Options     []string `json:"options"`
	OrderInTest int      `json:"order_in_test"`
}

// QuestionWithAnswersDTO is the unredacted question view.
type QuestionWithAnswersDTO struct {
	ID             string   `json:"id"`
	Kind           string   `json:"kind"`
	Prompt         string   `json:"prompt"`
	Options        []string `json:"options"`
	CorrectAnswers []string `json:"correct_answers"`
	Explanation    string   `json:"explanation"`
	OrderInTest    int      `json:"order_in_test"`
}

// TestDTO is the redacted test view, safe for test taking.
type TestDTO struct {
	ID                string        `json:"id"`
	CertificationName string        `json:"certification_name"`
	SourceURL         string        `json:"source_url"`
	GeneratedAt       time.Time     `json:"generated_at"`
	QuestionCount     int           `json:"question_count"`
	Questions         []QuestionDTO `json:"questions"`
}

// TestWithAnswersDTO is the full test including the answer key.
type TestWithAnswersDTO struct {
	ID                string                   `json:"id"`
	CertificationName string                   `json:"certification_name"`
	SourceURL         string                   `json:"source_url"`
	GeneratedAt       time.Time                `json:"generated_at"`
	QuestionCount     int                      `json:"question_count"`
	Questions         []QuestionWithAnswersDTO `json:"questions"`
}

// TestSummaryDTO is used for listing generated tests.
type TestSummaryDTO struct {
	ID                string    `json:"id"`
	CertificationName string    `json:"certification_name"`
	QuestionCount     int       `json:"question_count"`
	GeneratedAt       time.Time `json:"generated_at"`
}
