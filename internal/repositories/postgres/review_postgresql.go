package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/error-404/learning-service/internal/models"
	"github.com/error-404/learning-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReviewPostgreSQL struct {
	db *gorm.DB
}

func NewReviewPostgreSQL(db *gorm.DB) repositories.ReviewRepository {
	return &ReviewPostgreSQL{db: db}
}

func (r *ReviewPostgreSQL) Create(ctx context.Context, card *models.ReviewCard) error {
	if err := r.db.WithContext(ctx).Create(card).Error; err != nil {
		return fmt.Errorf("failed to create review card: %w", err)
	}
	return nil
}

func (r *ReviewPostgreSQL) GetByID(ctx context.Context, id uint) (*models.ReviewCard, error) {
	var card models.ReviewCard
	err := r.db.WithContext(ctx).First(&card, id).Error
	if err != nil {
		return nil, err
	}
	return &card, nil
}

func (r *ReviewPostgreSQL) GetByUserAndLesson(ctx context.Context, userID string, lessonID uint) (*models.ReviewCard, error) {
	var card models.ReviewCard
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		First(&card).Error
	if err != nil {
		return nil, err
	}
	return &card, nil
}

func (r *ReviewPostgreSQL) Update(ctx context.Context, card *models.ReviewCard) error {
	if err := r.db.WithContext(ctx).Save(card).Error; err != nil {
		return fmt.Errorf("failed to update review card: %w", err)
	}
	return nil
}

func (r *ReviewPostgreSQL) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.ReviewCard{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete review card: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Upsert inserts the card or keeps an existing one for the same user/lesson
// pair. Existing scheduling state must not be reset by re-encountering the
// lesson, so conflicts do nothing.
func (r *ReviewPostgreSQL) Upsert(ctx context.Context, card *models.ReviewCard) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
			DoNothing: true,
		}).
		Create(card).Error
	if err != nil {
		return fmt.Errorf("failed to upsert review card: %w", err)
	}
	return nil
}

func (r *ReviewPostgreSQL) GetDue(ctx context.Context, userID string, asOf time.Time, limit int) ([]*models.ReviewCard, error) {
	query := r.db.WithContext(ctx).
		Where("user_id = ? AND due_at <= ?", userID, asOf).
		Order("due_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var cards []*models.ReviewCard
	if err := query.Find(&cards).Error; err != nil {
		return nil, fmt.Errorf("failed to get due review cards: %w", err)
	}
	return cards, nil
}

func (r *ReviewPostgreSQL) ListByUser(ctx context.Context, userID string) ([]*models.ReviewCard, error) {
	var cards []*models.ReviewCard
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("due_at ASC").
		Find(&cards).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list review cards: %w", err)
	}
	return cards, nil
}

func (r *ReviewPostgreSQL) GetRetentionStats(ctx context.Context, userID string, asOf time.Time) (*repositories.RetentionStats, error) {
	type row struct {
		Total        int
		Mastered     int
		Due          int
		AvgEase      float64
		AvgRetention float64
	}

	var res row
	err := r.db.WithContext(ctx).
		Model(&models.ReviewCard{}).
		Where("user_id = ?", userID).
		Select(`COUNT(*) as total,
			SUM(CASE WHEN repetition_count >= 3 THEN 1 ELSE 0 END) as mastered,
			SUM(CASE WHEN due_at <= ? THEN 1 ELSE 0 END) as due,
			COALESCE(AVG(ease_factor), 0) as avg_ease,
			COALESCE(AVG(last_performance), 0) as avg_retention`, asOf).
		Scan(&res).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate retention stats: %w", err)
	}

	return &repositories.RetentionStats{
		TotalCards:       res.Total,
		CardsMastered:    res.Mastered,
		CardsDueToday:    res.Due,
		AverageEase:      res.AvgEase,
		AverageRetention: res.AvgRetention,
	}, nil
}
