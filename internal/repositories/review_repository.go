package repositories

import (
	"context"
	"time"

	"github.com/error-404/learning-service/internal/models"
)

// ReviewRepository persists spaced repetition cards.
type ReviewRepository interface {
	Create(ctx context.Context, card *models.ReviewCard) error
	GetByID(ctx context.Context, id uint) (*models.ReviewCard, error)
	GetByUserAndLesson(ctx context.Context, userID string, lessonID uint) (*models.ReviewCard, error)
	Update(ctx context.Context, card *models.ReviewCard) error
	Delete(ctx context.Context, id uint) error

	// Upsert creates the card or, when one already exists for the
	// user/lesson pair, leaves the existing scheduling state untouched.
	Upsert(ctx context.Context, card *models.ReviewCard) error

	GetDue(ctx context.Context, userID string, asOf time.Time, limit int) ([]*models.ReviewCard, error)
	ListByUser(ctx context.Context, userID string) ([]*models.ReviewCard, error)
	GetRetentionStats(ctx context.Context, userID string, asOf time.Time) (*RetentionStats, error)
}
