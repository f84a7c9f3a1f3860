package repository

import (
	"errors"
	"fmt"

	"github.com/vhducng/certprep/internal/errs"
	"github.com/vhducng/certprep/internal/model"
	"gorm.io/gorm"
)

type TestRepository interface {
	// Save persists a test and its questions atomically. Tests are immutable:
	// Save only ever inserts.
	Save(test *model.PracticeTest) error
	// FindByID loads a test with its questions in presentation order. Returns
	// errs.ErrNotFound for an unknown id, never a bare gorm error.
	FindByID(id string) (*model.PracticeTest, error)
	FindAll() ([]model.PracticeTest, error)
}

type testRepository struct {
	db *gorm.DB
}

func NewTestRepository(db *gorm.DB) TestRepository {
	return &testRepository{db: db}
}

func (r *testRepository) Save(test *model.PracticeTest) error {
	// GORM writes the test row and its associated question rows in a single
	// transaction, so a concurrent reader never observes a half-written test.
	if err := r.db.Create(test).Error; err != nil {
		return fmt.Errorf("failed to save test %s: %w", test.ID, err)
	}
	return nil
}

func (r *testRepository) FindByID(id string) (*model.PracticeTest, error) {
	var test model.PracticeTest
	err := r.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("questions.order_in_test ASC")
	}).First(&test, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("test %s: %w", id, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load test %s: %w", id, err)
	}
	return &test, nil
}

func (r *testRepository) FindAll() ([]model.PracticeTest, error) {
	var tests []model.PracticeTest
	if err := r.db.Order("generated_at DESC").Find(&tests).Error; err != nil {
		return nil, fmt.Errorf("failed to list tests: %w", err)
	}
	return tests, nil
}
