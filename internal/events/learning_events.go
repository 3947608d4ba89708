package events

import (
	"time"

	"github.com/error-404/learning-service/internal/models"
	"github.com/google/uuid"
)

// EventType represents different types of learning events
type EventType string

const (
	// Session events
	EventSessionStarted   EventType = "session.started"
	EventSessionCompleted EventType = "session.completed"
	EventLessonTerminated EventType = "lesson.terminated"

	// Spaced repetition events
	EventReviewRecorded EventType = "review.recorded"

	// Clan events
	EventClanMemberJoined EventType = "clan.member_joined"
	EventClanScoreUpdated EventType = "clan.score_updated"
)

// LearningEvent is the base event structure for all learning events
type LearningEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewLearningEvent creates an event envelope with the standard source and
// version fields filled in.
func NewLearningEvent(eventType EventType, data interface{}) *LearningEvent {
	return &LearningEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    "learning-service",
		Version:   "1.0",
		Data:      data,
	}
}

// Session event payloads

type SessionStartedEvent struct {
	SessionID   string    `json:"session_id"`
	UserID      string    `json:"user_id"`
	ModuleID    uint      `json:"module_id"`
	ModuleTitle string    `json:"module_title"`
	StartedAt   time.Time `json:"started_at"`
}

type SessionCompletedEvent struct {
	SessionID      string    `json:"session_id"`
	UserID         string    `json:"user_id"`
	ModuleID       uint      `json:"module_id"`
	QuestionsAsked int       `json:"questions_asked"`
	CorrectAnswers int       `json:"correct_answers"`
	Accuracy       float64   `json:"accuracy"`
	Ability        float64   `json:"ability"`
	CompletedAt    time.Time `json:"completed_at"`
}

type LessonTerminatedEvent struct {
	SessionID    string    `json:"session_id"`
	UserID       string    `json:"user_id"`
	LessonName   string    `json:"lesson_name"`
	WrongStreak  int       `json:"wrong_streak"`
	TerminatedAt time.Time `json:"terminated_at"`
}

// Spaced repetition event payloads

type ReviewRecordedEvent struct {
	UserID       string    `json:"user_id"`
	LessonID     uint      `json:"lesson_id"`
	Performance  float64   `json:"performance"`
	IntervalDays int       `json:"interval_days"`
	EaseFactor   float64   `json:"ease_factor"`
	NextReviewAt time.Time `json:"next_review_at"`
}

// Clan event payloads

type ClanMemberJoinedEvent struct {
	ClanID   uint            `json:"clan_id"`
	ClanName string          `json:"clan_name"`
	UserID   string          `json:"user_id"`
	Role     models.ClanRole `json:"role"`
	JoinedAt time.Time       `json:"joined_at"`
}

type ClanScoreUpdatedEvent struct {
	ClanID    uint   `json:"clan_id"`
	UserID    string `json:"user_id"`
	Delta     int64  `json:"delta"`
	ClanTotal int64  `json:"clan_total"`
}
