package repositories

import (
	"context"

	"github.com/error-404/learning-service/internal/models"
)

// QuestionRepository manages the question pool and its usage statistics.
type QuestionRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, question *models.Question) error
	CreateBatch(ctx context.Context, questions []*models.Question) error
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	Update(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id uint) error // Soft delete

	// Query operations
	List(ctx context.Context, filters QuestionFilters) ([]*models.Question, int64, error)
	GetByLessonAndDifficulty(ctx context.Context, lessonID uint, difficulty models.DifficultyLevel, excludeIDs []uint) ([]*models.Question, error)
	GetByModule(ctx context.Context, moduleID uint) ([]*models.Question, error)
	CountByLesson(ctx context.Context, lessonID uint) (map[models.DifficultyLevel]int, error)

	// Usage statistics
	GetStats(ctx context.Context, questionID uint) (*models.QuestionStats, error)
	RecordUsage(ctx context.Context, questionID uint, correct bool, responseTime float64) error
}
