package repository

import (
	"fmt"

	"github.com/vhducng/certprep/internal/model"
	"gorm.io/gorm"
)

type SessionRepository interface {
	// Create inserts a session record. Sessions are never updated or
	// overwritten; each submit produces a fresh row.
	Create(session *model.SubmissionSession) error
	FindByTestID(testID string) ([]model.SubmissionSession, error)
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(session *model.SubmissionSession) error {
	if err := r.db.Create(session).Error; err != nil {
		return fmt.Errorf("failed to save session %s: %w", session.SessionKey, err)
	}
	return nil
}

func (r *sessionRepository) FindByTestID(testID string) ([]model.SubmissionSession, error) {
	var sessions []model.SubmissionSession
	if err := r.db.Where("test_id = ?", testID).Order("completed_at DESC").Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("failed to list sessions for test %s: %w", testID, err)
	}
	return sessions, nil
}
