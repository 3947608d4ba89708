package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "easy"
	DifficultyMedium DifficultyLevel = "medium"
	DifficultyHard   DifficultyLevel = "hard"
)

// ValidDifficulty reports whether d is one of the three supported levels.
func ValidDifficulty(d DifficultyLevel) bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Question is a lesson-scoped multiple choice question. Options are stored as
// a JSON object keyed by option letter ("A".."D").
type Question struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	LessonID   uint            `json:"lesson_id" gorm:"not null;index"`
	Text       string          `json:"text" gorm:"type:text;not null" validate:"required,min=10"`
	Options    datatypes.JSON  `json:"options" gorm:"not null" validate:"required"`
	Correct    string          `json:"correct" gorm:"not null;size:1" validate:"required,oneof=A B C D"`
	Difficulty DifficultyLevel `json:"difficulty" gorm:"not null;size:10;index" validate:"required,difficulty_level"`
	Topic      string          `json:"topic" gorm:"size:100;index"`

	// Heuristic quality score assigned at import time, 0.0 - 1.0.
	QualityScore float64 `json:"quality_score" gorm:"default:1.0"`

	CreatedBy string         `json:"created_by" gorm:"size:255;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Stats *QuestionStats `json:"stats,omitempty" gorm:"foreignKey:QuestionID"`
}

func (Question) TableName() string {
	return "questions"
}

// QuestionStats accumulates empirical usage data for a question. The
// difficulty index (share of correct responses) feeds the IRT item
// calibration used by question selection.
type QuestionStats struct {
	QuestionID uint `json:"question_id" gorm:"primaryKey"`

	TimesAsked   int     `json:"times_asked" gorm:"default:0"`
	TimesCorrect int     `json:"times_correct" gorm:"default:0"`
	AvgTime      float64 `json:"avg_time" gorm:"default:0"` // seconds

	UpdatedAt time.Time `json:"updated_at"`
}

func (QuestionStats) TableName() string {
	return "question_stats"
}

// DifficultyIndex returns the share of correct responses, or 0.5 when the
// question has never been asked.
func (s *QuestionStats) DifficultyIndex() float64 {
	if s == nil || s.TimesAsked == 0 {
		return 0.5
	}
	return float64(s.TimesCorrect) / float64(s.TimesAsked)
}

// Record folds a single response into the running counters.
func (s *QuestionStats) Record(correct bool, responseTime float64) {
	s.TimesAsked++
	if correct {
		s.TimesCorrect++
	}
	// Rolling average over all recorded responses.
	s.AvgTime += (responseTime - s.AvgTime) / float64(s.TimesAsked)
}
