package postgres

import (
	"context"
	"fmt"

	"github.com/error-404/learning-service/internal/models"
	"github.com/error-404/learning-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuestionPostgreSQL struct {
	db *gorm.DB
}

func NewQuestionPostgreSQL(db *gorm.DB) repositories.QuestionRepository {
	return &QuestionPostgreSQL{db: db}
}

func (q *QuestionPostgreSQL) Create(ctx context.Context, question *models.Question) error {
	return q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(question).Error; err != nil {
			return fmt.Errorf("failed to create question: %w", err)
		}

		stats := &models.QuestionStats{QuestionID: question.ID}
		if err := tx.Create(stats).Error; err != nil {
			return fmt.Errorf("failed to create question stats: %w", err)
		}
		return nil
	})
}

func (q *QuestionPostgreSQL) CreateBatch(ctx context.Context, questions []*models.Question) error {
	if len(questions) == 0 {
		return nil
	}

	return q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&questions).Error; err != nil {
			return fmt.Errorf("failed to create questions: %w", err)
		}

		stats := make([]*models.QuestionStats, 0, len(questions))
		for _, question := range questions {
			stats = append(stats, &models.QuestionStats{QuestionID: question.ID})
		}
		if err := tx.Create(&stats).Error; err != nil {
			return fmt.Errorf("failed to create question stats: %w", err)
		}
		return nil
	})
}

func (q *QuestionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	var question models.Question
	err := q.db.WithContext(ctx).
		Preload("Stats").
		First(&question, id).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (q *QuestionPostgreSQL) Update(ctx context.Context, question *models.Question) error {
	if err := q.db.WithContext(ctx).Save(question).Error; err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}
	return nil
}

func (q *QuestionPostgreSQL) Delete(ctx context.Context, id uint) error {
	if err := q.db.WithContext(ctx).Delete(&models.Question{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	return nil
}

func (q *QuestionPostgreSQL) List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	query := q.db.WithContext(ctx).Model(&models.Question{})

	if filters.LessonID != nil {
		query = query.Where("lesson_id = ?", *filters.LessonID)
	}
	if filters.Difficulty != nil {
		query = query.Where("difficulty = ?", *filters.Difficulty)
	}
	if filters.Topic != nil {
		query = query.Where("topic = ?", *filters.Topic)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count questions: %w", err)
	}

	query = applySorting(query, filters.SortBy, filters.SortOrder, "created_at")
	query = applyPagination(query, filters.Limit, filters.Offset)

	var questions []*models.Question
	if err := query.Preload("Stats").Find(&questions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list questions: %w", err)
	}

	return questions, total, nil
}

func (q *QuestionPostgreSQL) GetByLessonAndDifficulty(ctx context.Context, lessonID uint, difficulty models.DifficultyLevel, excludeIDs []uint) ([]*models.Question, error) {
	query := q.db.WithContext(ctx).
		Where("lesson_id = ? AND difficulty = ?", lessonID, difficulty)

	if len(excludeIDs) > 0 {
		query = query.Where("id NOT IN ?", excludeIDs)
	}

	var questions []*models.Question
	if err := query.Preload("Stats").Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("failed to load lesson questions: %w", err)
	}
	return questions, nil
}

func (q *QuestionPostgreSQL) GetByModule(ctx context.Context, moduleID uint) ([]*models.Question, error) {
	var questions []*models.Question
	err := q.db.WithContext(ctx).
		Joins("JOIN lessons ON lessons.id = questions.lesson_id").
		Where("lessons.module_id = ?", moduleID).
		Preload("Stats").
		Find(&questions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load module questions: %w", err)
	}
	return questions, nil
}

func (q *QuestionPostgreSQL) CountByLesson(ctx context.Context, lessonID uint) (map[models.DifficultyLevel]int, error) {
	type row struct {
		Difficulty models.DifficultyLevel
		Count      int
	}

	var rows []row
	err := q.db.WithContext(ctx).
		Model(&models.Question{}).
		Select("difficulty, COUNT(*) as count").
		Where("lesson_id = ?", lessonID).
		Group("difficulty").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count lesson questions: %w", err)
	}

	counts := make(map[models.DifficultyLevel]int, len(rows))
	for _, r := range rows {
		counts[r.Difficulty] = r.Count
	}
	return counts, nil
}

func (q *QuestionPostgreSQL) GetStats(ctx context.Context, questionID uint) (*models.QuestionStats, error) {
	var stats models.QuestionStats
	err := q.db.WithContext(ctx).First(&stats, "question_id = ?", questionID).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// RecordUsage folds one response into the question's counters inside a
// transaction so concurrent sessions do not lose updates.
func (q *QuestionPostgreSQL) RecordUsage(ctx context.Context, questionID uint, correct bool, responseTime float64) error {
	return q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stats models.QuestionStats
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&stats, "question_id = ?", questionID).Error
		if err != nil {
			if repositories.IsNotFoundError(err) {
				stats = models.QuestionStats{QuestionID: questionID}
			} else {
				return fmt.Errorf("failed to load question stats: %w", err)
			}
		}

		stats.Record(correct, responseTime)
		if err := tx.Save(&stats).Error; err != nil {
			return fmt.Errorf("failed to save question stats: %w", err)
		}
		return nil
	})
}
