package repositories

import (
	"context"
	"errors"

	"github.com/error-404/learning-service/internal/models"
)

// ErrSessionNotInProgress is returned by Finalize when the row was already
// moved out of InProgress by a concurrent call.
var ErrSessionNotInProgress = errors.New("session is not in progress")

// SessionRepository persists completed test sessions, their responses and
// per-lesson performance rows, and serves the analytics aggregates.
type SessionRepository interface {
	Create(ctx context.Context, session *models.TestSession) error
	GetByID(ctx context.Context, id string) (*models.TestSession, error)
	GetByIDWithDetails(ctx context.Context, id string) (*models.TestSession, error)
	Update(ctx context.Context, session *models.TestSession) error
	List(ctx context.Context, filters SessionFilters) ([]*models.TestSession, int64, error)

	// Finalize writes the session summary together with its responses and
	// lesson performances in one transaction. The summary update is guarded
	// on status = InProgress; ErrSessionNotInProgress is returned when a
	// concurrent finalization won.
	Finalize(ctx context.Context, session *models.TestSession, responses []models.UserResponse, performances []models.LessonPerformance) error

	// Analytics aggregates
	GetGlobalStats(ctx context.Context) (*GlobalStats, error)
	GetUserLessonStats(ctx context.Context, userID string) ([]LessonStat, error)
}
