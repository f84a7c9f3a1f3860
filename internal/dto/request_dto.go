package dto

// GenerateTestRequest is the body of POST /api/generate-test.
type GenerateTestRequest struct {
	StudyGuideURL     string `json:"study_guide_url" binding:"required,url"`
	CertificationName string `json:"certification_name" binding:"required"`
	QuestionCount     int    `json:"question_count"` // defaults to 40 when omitted
}

// SubmitAnswersRequest is the body of POST /api/test/{id}/submit. Answers maps
// a question id to the option strings the taker selected; questions the taker
// skipped may simply be absent, and an absent map scores as an empty
// submission.
type SubmitAnswersRequest struct {
	Answers   map[string][]string `json:"answers"`
	StartedAt string              `json:"started_at,omitempty"` // RFC3339, optional
}
