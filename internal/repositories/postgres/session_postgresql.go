package postgres

import (
	"context"
	"fmt"

	"github.com/error-404/learning-service/internal/models"
	"github.com/error-404/learning-service/internal/repositories"
	"gorm.io/gorm"
)

type SessionPostgreSQL struct {
	db *gorm.DB
}

func NewSessionPostgreSQL(db *gorm.DB) repositories.SessionRepository {
	return &SessionPostgreSQL{db: db}
}

func (s *SessionPostgreSQL) Create(ctx context.Context, session *models.TestSession) error {
	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (s *SessionPostgreSQL) GetByID(ctx context.Context, id string) (*models.TestSession, error) {
	var session models.TestSession
	err := s.db.WithContext(ctx).First(&session, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *SessionPostgreSQL) GetByIDWithDetails(ctx context.Context, id string) (*models.TestSession, error) {
	var session models.TestSession
	err := s.db.WithContext(ctx).
		Preload("Responses", func(db *gorm.DB) *gorm.DB {
			return db.Order("answered_at ASC")
		}).
		Preload("Performances").
		First(&session, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *SessionPostgreSQL) Update(ctx context.Context, session *models.TestSession) error {
	if err := s.db.WithContext(ctx).Save(session).Error; err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	return nil
}

func (s *SessionPostgreSQL) List(ctx context.Context, filters repositories.SessionFilters) ([]*models.TestSession, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.TestSession{})

	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.ModuleID != nil {
		query = query.Where("module_id = ?", *filters.ModuleID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.DateFrom != nil {
		query = query.Where("started_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("started_at <= ?", *filters.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count sessions: %w", err)
	}

	query = applyPagination(query.Order("started_at DESC"), filters.Limit, filters.Offset)

	var sessions []*models.TestSession
	if err := query.Find(&sessions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list sessions: %w", err)
	}

	return sessions, total, nil
}

// Finalize persists the completed session together with its responses and
// per-lesson performances atomically.
func (s *SessionPostgreSQL) Finalize(ctx context.Context, session *models.TestSession, responses []models.UserResponse, performances []models.LessonPerformance) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Conditional update so two concurrent finalizations cannot both
		// write the summary and duplicate the response rows.
		res := tx.Model(&models.TestSession{}).
			Where("id = ? AND status = ?", session.ID, models.SessionStatusInProgress).
			Select("status", "completed_at", "questions_asked", "correct_answers",
				"accuracy", "avg_time", "ability", "ability_std_err", "updated_at").
			Updates(session)
		if res.Error != nil {
			return fmt.Errorf("failed to save session: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return repositories.ErrSessionNotInProgress
		}

		if len(responses) > 0 {
			if err := tx.Create(&responses).Error; err != nil {
				return fmt.Errorf("failed to save responses: %w", err)
			}
		}

		if len(performances) > 0 {
			if err := tx.Create(&performances).Error; err != nil {
				return fmt.Errorf("failed to save lesson performances: %w", err)
			}
		}

		return nil
	})
}

func (s *SessionPostgreSQL) GetGlobalStats(ctx context.Context) (*repositories.GlobalStats, error) {
	stats := &repositories.GlobalStats{}

	var totalSessions, completedSessions int64
	if err := s.db.WithContext(ctx).Model(&models.TestSession{}).Count(&totalSessions).Error; err != nil {
		return nil, fmt.Errorf("failed to count sessions: %w", err)
	}
	if err := s.db.WithContext(ctx).
		Model(&models.TestSession{}).
		Where("status = ?", models.SessionStatusCompleted).
		Count(&completedSessions).Error; err != nil {
		return nil, fmt.Errorf("failed to count completed sessions: %w", err)
	}
	stats.TotalSessions = int(totalSessions)
	stats.CompletedSessions = int(completedSessions)

	type overall struct {
		Total   int
		Correct int
		AvgTime float64
	}
	var o overall
	err := s.db.WithContext(ctx).
		Model(&models.UserResponse{}).
		Select("COUNT(*) as total, SUM(CASE WHEN is_correct THEN 1 ELSE 0 END) as correct, COALESCE(AVG(response_time), 0) as avg_time").
		Scan(&o).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate responses: %w", err)
	}
	stats.TotalResponses = o.Total
	stats.AvgResponseTime = o.AvgTime
	if o.Total > 0 {
		stats.OverallAccuracy = float64(o.Correct) / float64(o.Total) * 100
	}

	var terminated int64
	if err := s.db.WithContext(ctx).
		Model(&models.LessonPerformance{}).
		Where("terminated = ?", true).
		Count(&terminated).Error; err != nil {
		return nil, fmt.Errorf("failed to count terminated lessons: %w", err)
	}
	var lessonRows int64
	if err := s.db.WithContext(ctx).Model(&models.LessonPerformance{}).Count(&lessonRows).Error; err != nil {
		return nil, fmt.Errorf("failed to count lesson performances: %w", err)
	}
	if lessonRows > 0 {
		stats.TerminationRate = float64(terminated) / float64(lessonRows) * 100
	}

	if err := s.db.WithContext(ctx).
		Model(&models.UserResponse{}).
		Select("difficulty, COUNT(*) as attempted, SUM(CASE WHEN is_correct THEN 1 ELSE 0 END) as correct, COALESCE(AVG(response_time), 0) as avg_time").
		Group("difficulty").
		Scan(&stats.ByDifficulty).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate by difficulty: %w", err)
	}
	for i := range stats.ByDifficulty {
		d := &stats.ByDifficulty[i]
		if d.Attempted > 0 {
			d.Accuracy = float64(d.Correct) / float64(d.Attempted) * 100
		}
	}

	if err := s.db.WithContext(ctx).
		Model(&models.UserResponse{}).
		Select("lesson_name, COUNT(*) as attempted, SUM(CASE WHEN is_correct THEN 1 ELSE 0 END) as correct, COALESCE(AVG(response_time), 0) as avg_time").
		Group("lesson_name").
		Having("COUNT(*) >= ?", 3).
		Order("SUM(CASE WHEN is_correct THEN 1 ELSE 0 END)::float / COUNT(*) ASC").
		Limit(5).
		Scan(&stats.WeakestLessons).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate weakest lessons: %w", err)
	}
	for i := range stats.WeakestLessons {
		l := &stats.WeakestLessons[i]
		if l.Attempted > 0 {
			l.Accuracy = float64(l.Correct) / float64(l.Attempted) * 100
		}
	}

	return stats, nil
}

func (s *SessionPostgreSQL) GetUserLessonStats(ctx context.Context, userID string) ([]repositories.LessonStat, error) {
	var rows []repositories.LessonStat
	err := s.db.WithContext(ctx).
		Model(&models.UserResponse{}).
		Joins("JOIN test_sessions ON test_sessions.id = user_responses.session_id").
		Where("test_sessions.user_id = ?", userID).
		Select("lesson_name, COUNT(*) as attempted, SUM(CASE WHEN is_correct THEN 1 ELSE 0 END) as correct, COALESCE(AVG(response_time), 0) as avg_time").
		Group("lesson_name").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate user lesson stats: %w", err)
	}

	for i := range rows {
		if rows[i].Attempted > 0 {
			rows[i].Accuracy = float64(rows[i].Correct) / float64(rows[i].Attempted) * 100
		}
	}
	return rows, nil
}
