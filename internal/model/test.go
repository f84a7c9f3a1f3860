package model

import (
	"time"

	"gorm.io/gorm"
)

// PracticeTest is a generated exam. It is created once by the assembler and
// never updated afterwards.
type PracticeTest struct {
	ID                string         `gorm:"primarykey" json:"id"`
	CertificationName string         `json:"certification_name" gorm:"not null"`
	SourceURL         string         `json:"source_url" gorm:"not null"` // original study-guide locator
	GeneratedAt       time.Time      `json:"generated_at" gorm:"not null"`
	QuestionCount     int            `json:"question_count" gorm:"not null"`
	Questions         []Question     `json:"questions,omitempty" gorm:"foreignKey:TestID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}
