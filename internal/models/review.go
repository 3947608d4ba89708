package models

import (
	"time"

	"gorm.io/gorm"
)

// ReviewCard is the spaced repetition state for one user/lesson pair.
// Scheduling fields follow SM-2: interval in days, ease factor bounded to
// [1.3, 3.0], repetition count of consecutive successful recalls.
type ReviewCard struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	UserID     string `json:"user_id" gorm:"not null;size:255;index:idx_review_user_lesson,unique"`
	LessonID   uint   `json:"lesson_id" gorm:"not null;index:idx_review_user_lesson,unique"`
	LessonName string `json:"lesson_name" gorm:"size:200"`

	IntervalDays    int     `json:"interval_days" gorm:"default:1"`
	EaseFactor      float64 `json:"ease_factor" gorm:"default:2.5"`
	RepetitionCount int     `json:"repetition_count" gorm:"default:0"`

	DueAt           time.Time  `json:"due_at" gorm:"index"`
	LastReviewedAt  *time.Time `json:"last_reviewed_at"`
	LastPerformance float64    `json:"last_performance" gorm:"default:0"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (ReviewCard) TableName() string {
	return "review_cards"
}

// IsDue reports whether the card is due at the given time.
func (c *ReviewCard) IsDue(now time.Time) bool {
	return !c.DueAt.After(now)
}

// OverdueSeconds returns how long the card has been overdue, 0 if not due.
func (c *ReviewCard) OverdueSeconds(now time.Time) float64 {
	if c.DueAt.After(now) {
		return 0
	}
	return now.Sub(c.DueAt).Seconds()
}
