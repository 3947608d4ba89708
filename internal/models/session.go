package models

import (
	"time"

	"gorm.io/gorm"
)

type SessionStatus string

const (
	SessionStatusInProgress SessionStatus = "InProgress"
	SessionStatusCompleted  SessionStatus = "Completed"
	SessionStatusAbandoned  SessionStatus = "Abandoned"
	SessionStatusExpired    SessionStatus = "Expired"
)

// TestSession is the persisted record of an adaptive test run. Live session
// state is held in the in-memory store; a row is written at start and
// finalized at completion.
type TestSession struct {
	ID       string        `json:"id" gorm:"primaryKey;size:36"`
	UserID   string        `json:"user_id" gorm:"not null;size:255;index"`
	ModuleID uint          `json:"module_id" gorm:"not null;index"`
	Status   SessionStatus `json:"status" gorm:"default:InProgress;index"`

	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`

	// Summary, filled at completion
	QuestionsAsked int     `json:"questions_asked" gorm:"default:0"`
	CorrectAnswers int     `json:"correct_answers" gorm:"default:0"`
	Accuracy       float64 `json:"accuracy" gorm:"default:0"`
	AvgTime        float64 `json:"avg_time" gorm:"default:0"` // seconds
	Ability        float64 `json:"ability" gorm:"default:0"`  // IRT estimate
	AbilityStdErr  float64 `json:"ability_std_err" gorm:"default:0"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Responses    []UserResponse      `json:"responses,omitempty" gorm:"foreignKey:SessionID"`
	Performances []LessonPerformance `json:"performances,omitempty" gorm:"foreignKey:SessionID"`
}

func (TestSession) TableName() string {
	return "test_sessions"
}

// UserResponse records a single answered question within a session.
type UserResponse struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	SessionID  string `json:"session_id" gorm:"not null;size:36;index"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`

	SelectedAnswer string          `json:"selected_answer" gorm:"not null;size:1"`
	IsCorrect      bool            `json:"is_correct"`
	ResponseTime   float64         `json:"response_time"` // seconds
	Difficulty     DifficultyLevel `json:"difficulty" gorm:"size:10"`
	LessonName     string          `json:"lesson_name" gorm:"size:200;index"`
	ModuleName     string          `json:"module_name" gorm:"size:200"`

	AnsweredAt time.Time `json:"answered_at"`
	CreatedAt  time.Time `json:"created_at"`
}

func (UserResponse) TableName() string {
	return "user_responses"
}

// DifficultyBucket holds the per-difficulty counters of a lesson.
// Invariant: 0 <= Correct <= Total.
type DifficultyBucket struct {
	Correct int     `json:"correct"`
	Total   int     `json:"total"`
	AvgTime float64 `json:"avg_time"` // rolling average, seconds
}

// Accuracy returns Correct/Total as a percentage, 0 for an empty bucket.
func (b DifficultyBucket) Accuracy() float64 {
	if b.Total == 0 {
		return 0
	}
	return float64(b.Correct) / float64(b.Total) * 100
}

// LessonPerformance is the per-lesson outcome of a session, one row per
// lesson visited.
type LessonPerformance struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	SessionID  string `json:"session_id" gorm:"not null;size:36;index"`
	LessonName string `json:"lesson_name" gorm:"not null;size:200;index"`

	EasyCorrect   int `json:"easy_correct" gorm:"default:0"`
	EasyTotal     int `json:"easy_total" gorm:"default:0"`
	MediumCorrect int `json:"medium_correct" gorm:"default:0"`
	MediumTotal   int `json:"medium_total" gorm:"default:0"`
	HardCorrect   int `json:"hard_correct" gorm:"default:0"`
	HardTotal     int `json:"hard_total" gorm:"default:0"`

	AvgTime         float64 `json:"avg_time" gorm:"default:0"`
	OverallAccuracy float64 `json:"overall_accuracy" gorm:"default:0"`

	NeedsFocus   bool `json:"needs_focus" gorm:"default:false"`
	IsStrength   bool `json:"is_strength" gorm:"default:false"`
	TimeConcerns bool `json:"time_concerns" gorm:"default:false"`
	Terminated   bool `json:"terminated" gorm:"default:false"`

	// Learner marked the lesson as unknown during the pre-assessment.
	MarkedUnknown bool `json:"marked_unknown" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
}

func (LessonPerformance) TableName() string {
	return "lesson_performances"
}
