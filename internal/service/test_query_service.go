package service

import (
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"github.com/vhducng/certprep/internal/dto"
	"github.com/vhducng/certprep/internal/repository"
)

// TestQueryService serves read views of stored tests. The taking view strips
// correct answers and explanations from every question; the answers view is
// the full document.
type TestQueryService interface {
	GetTestForTaking(testID string) (*dto.TestDTO, error)
	GetTestWithAnswers(testID string) (*dto.TestWithAnswersDTO, error)
	ListTests() ([]dto.TestSummaryDTO, error)
	ListSessions(testID string) ([]dto.SessionSummaryDTO, error)
}

type testQueryService struct {
	testRepo    repository.TestRepository
	sessionRepo repository.SessionRepository
}

func NewTestQueryService(testRepo repository.TestRepository, sessionRepo repository.SessionRepository) TestQueryService {
	return &testQueryService{testRepo: testRepo, sessionRepo: sessionRepo}
}

func (s *testQueryService) GetTestForTaking(testID string) (*dto.TestDTO, error) {
	test, err := s.testRepo.FindByID(testID)
	if err != nil {
		return nil, err
	}

	resp := &dto.TestDTO{
		ID:                test.ID,
		CertificationName: test.CertificationName,
		SourceURL:         test.SourceURL,
		GeneratedAt:       test.GeneratedAt,
		QuestionCount:     test.QuestionCount,
		Questions:         make([]dto.QuestionDTO, 0, len(test.Questions)),
	}
	// Deliberately field-by-field: the answer key and explanations must never
	// reach the taking view.
	for _, q := range test.Questions {
		resp.Questions = append(resp.Questions, dto.QuestionDTO{
			ID:          q.ID,
			Kind:        q.Kind,
			Prompt:      q.Prompt,
			Options:     q.Options,
			OrderInTest: q.OrderInTest,
		})
	}
	return resp, nil
}

func (s *testQueryService) GetTestWithAnswers(testID string) (*dto.TestWithAnswersDTO, error) {
	test, err := s.testRepo.FindByID(testID)
	if err != nil {
		return nil, err
	}

	var resp dto.TestWithAnswersDTO
	if err := copier.Copy(&resp, test); err != nil {
		log.Error().Err(err).Str("test_id", testID).Msg("Failed to copy test model to answers DTO")
		return nil, fmt.Errorf("error preparing test response: %w", err)
	}
	return &resp, nil
}

func (s *testQueryService) ListTests() ([]dto.TestSummaryDTO, error) {
	tests, err := s.testRepo.FindAll()
	if err != nil {
		return nil, err
	}

	summaries := make([]dto.TestSummaryDTO, 0, len(tests))
	for _, test := range tests {
		summaries = append(summaries, dto.TestSummaryDTO{
			ID:                test.ID,
			CertificationName: test.CertificationName,
			QuestionCount:     test.QuestionCount,
			GeneratedAt:       test.GeneratedAt,
		})
	}
	return summaries, nil
}

func (s *testQueryService) ListSessions(testID string) ([]dto.SessionSummaryDTO, error) {
	// Listing sessions for an unknown test should 404, not return an empty list.
	if _, err := s.testRepo.FindByID(testID); err != nil {
		return nil, err
	}

	sessions, err := s.sessionRepo.FindByTestID(testID)
	if err != nil {
		return nil, err
	}

	summaries := make([]dto.SessionSummaryDTO, 0, len(sessions))
	for _, session := range sessions {
		summaries = append(summaries, dto.SessionSummaryDTO{
			SessionID:   session.SessionKey,
			TestID:      session.TestID,
			Score:       session.Score,
			StartedAt:   session.StartedAt,
			CompletedAt: session.CompletedAt,
		})
	}
	return summaries, nil
}
