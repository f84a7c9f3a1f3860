package service

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/vhducng/certprep/internal/dto"
	"github.com/vhducng/certprep/internal/model"
	"github.com/vhducng/certprep/internal/repository"
)

// SubmissionService scores a taker's answers against the stored answer key and
// records the attempt as a new session. Correctness is recomputed fresh from
// the stored test on every submit; sessions only keep the derived score.
type SubmissionService interface {
	Submit(testID string, req dto.SubmitAnswersRequest) (*dto.SubmitResponse, error)
}

type submissionService struct {
	testRepo    repository.TestRepository
	sessionRepo repository.SessionRepository
	scorer      ScorerService
}

func NewSubmissionService(testRepo repository.TestRepository, sessionRepo repository.SessionRepository, scorer ScorerService) SubmissionService {
	return &submissionService{testRepo: testRepo, sessionRepo: sessionRepo, scorer: scorer}
}

func (s *submissionService) Submit(testID string, req dto.SubmitAnswersRequest) (*dto.SubmitResponse, error) {
	test, err := s.testRepo.FindByID(testID)
	if err != nil {
		return nil, err
	}

	result := s.scorer.Score(test, req.Answers)

	completedAt := time.Now().UTC()
	startedAt := completedAt
	if req.StartedAt != "" {
		if parsed, parseErr := time.Parse(time.RFC3339, req.StartedAt); parseErr == nil {
			startedAt = parsed
		} else {
			log.Warn().Str("started_at", req.StartedAt).Msg("Ignoring unparseable started_at in submission")
		}
	}

	session := &model.SubmissionSession{
		SessionKey:  fmt.Sprintf("%s-%d", testID, completedAt.UnixMilli()),
		TestID:      testID,
		Answers:     model.AnswerMap(req.Answers),
		StartedAt:   startedAt,
		CompletedAt: completedAt,
		Score:       result.Score,
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, err
	}

	resp := &dto.SubmitResponse{
		SessionID: session.SessionKey,
		Score:     result.Score,
		Correct:   result.Correct,
		Incorrect: result.Incorrect,
		Total:     result.Total,
		Answers:   make([]dto.QuestionScoreDTO, 0, len(result.Detail)),
	}
	for _, detail := range result.Detail {
		resp.Answers = append(resp.Answers, dto.QuestionScoreDTO{
			QuestionID:     detail.QuestionID,
			IsCorrect:      detail.IsCorrect,
			UserAnswers:    detail.UserAnswers,
			CorrectAnswers: detail.CorrectAnswers,
		})
	}

	log.Info().Str("test_id", testID).Str("session", session.SessionKey).Int("score", result.Score).Msg("Submission scored")
	return resp, nil
}
