package repositories

import (
	"errors"
	"time"

	"github.com/error-404/learning-service/internal/models"
	"gorm.io/gorm"
)

// ===== SHARED FILTER STRUCTS =====

type CourseFilters struct {
	Status    *models.CourseStatus `json:"status"`
	Topic     *string              `json:"topic"`
	CreatedBy *string              `json:"created_by"`
	Limit     int                  `json:"limit"`
	Offset    int                  `json:"offset"`
	SortBy    string               `json:"sort_by"`    // "created_at", "title"
	SortOrder string               `json:"sort_order"` // "asc", "desc"
}

type QuestionFilters struct {
	LessonID   *uint                   `json:"lesson_id"`
	Difficulty *models.DifficultyLevel `json:"difficulty"`
	Topic      *string                 `json:"topic"`
	CreatedBy  *string                 `json:"created_by"`
	Limit      int                     `json:"limit"`
	Offset     int                     `json:"offset"`
	SortBy     string                  `json:"sort_by"`
	SortOrder  string                  `json:"sort_order"`
}

type SessionFilters struct {
	UserID   *string               `json:"user_id"`
	ModuleID *uint                 `json:"module_id"`
	Status   *models.SessionStatus `json:"status"`
	DateFrom *time.Time            `json:"date_from"`
	DateTo   *time.Time            `json:"date_to"`
	Limit    int                   `json:"limit"`
	Offset   int                   `json:"offset"`
}

type ClanFilters struct {
	Name   *string `json:"name"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

// ===== SHARED STATISTICS STRUCTS =====

// DifficultyStat is an aggregate accuracy row grouped by difficulty.
type DifficultyStat struct {
	Difficulty models.DifficultyLevel `json:"difficulty"`
	Attempted  int                    `json:"attempted"`
	Correct    int                    `json:"correct"`
	Accuracy   float64                `json:"accuracy"`
	AvgTime    float64                `json:"avg_time"`
}

// LessonStat is an aggregate accuracy row grouped by lesson.
type LessonStat struct {
	LessonName string  `json:"lesson_name"`
	Attempted  int     `json:"attempted"`
	Correct    int     `json:"correct"`
	Accuracy   float64 `json:"accuracy"`
	AvgTime    float64 `json:"avg_time"`
}

// GlobalStats is the cross-session aggregate used by the analytics API.
type GlobalStats struct {
	TotalSessions     int              `json:"total_sessions"`
	CompletedSessions int              `json:"completed_sessions"`
	TotalResponses    int              `json:"total_responses"`
	OverallAccuracy   float64          `json:"overall_accuracy"`
	AvgResponseTime   float64          `json:"avg_response_time"`
	TerminationRate   float64          `json:"termination_rate"`
	ByDifficulty      []DifficultyStat `json:"by_difficulty"`
	WeakestLessons    []LessonStat     `json:"weakest_lessons"`
}

// RetentionStats summarizes a user's spaced repetition state.
type RetentionStats struct {
	TotalCards       int     `json:"total_cards"`
	CardsMastered    int     `json:"cards_mastered"` // repetition count >= 3
	CardsDueToday    int     `json:"cards_due_today"`
	AverageEase      float64 `json:"average_ease"`
	AverageRetention float64 `json:"average_retention"` // mean last performance
}

// ===== ERROR HELPERS =====

// IsNotFoundError reports whether err is the database-level missing row error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// ===== AGGREGATE REPOSITORY =====

// Repository bundles all entity repositories behind one dependency.
type Repository interface {
	User() UserRepository
	Content() ContentRepository
	Question() QuestionRepository
	Session() SessionRepository
	Review() ReviewRepository
	Clan() ClanRepository
}
