package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/error-404/learning-service/internal/cache"
	"github.com/error-404/learning-service/internal/models"
	"github.com/error-404/learning-service/internal/repositories"
)

const (
	globalStatsCacheKey = "analytics:global"
	globalStatsCacheTTL = 5 * time.Minute

	sessionAnalyticsKeyPrefix = "analytics:session:"
	sessionAnalyticsCacheTTL  = 30 * time.Minute
)

// AnalyticsService serves aggregate statistics over recorded sessions.
// Results are cached in Redis with short TTLs; the cache is best effort.
type AnalyticsService interface {
	SessionAnalytics(ctx context.Context, sessionID string) (*SessionAnalytics, error)
	GlobalStats(ctx context.Context) (*repositories.GlobalStats, error)
	UserLessonStats(ctx context.Context, userID string) ([]repositories.LessonStat, error)
}

type SessionAnalytics struct {
	SessionID    string                     `json:"session_id"`
	UserID       string                     `json:"user_id"`
	Status       models.SessionStatus       `json:"status"`
	Summary      ReportSummary              `json:"summary"`
	ByDifficulty []DifficultyBreakdown      `json:"by_difficulty"`
	Lessons      []models.LessonPerformance `json:"lessons"`
}

type analyticsService struct {
	repo   repositories.Repository
	cache  cache.CacheService
	logger *slog.Logger
}

func NewAnalyticsService(repo repositories.Repository, cacheService cache.CacheService, logger *slog.Logger) AnalyticsService {
	return &analyticsService{
		repo:   repo,
		cache:  cacheService,
		logger: logger,
	}
}

func (s *analyticsService) SessionAnalytics(ctx context.Context, sessionID string) (*SessionAnalytics, error) {
	key := sessionAnalyticsKeyPrefix + sessionID
	if s.cache != nil {
		var cached SessionAnalytics
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("Session analytics cache read failed",
				"session_id", sessionID, "error", err)
		}
	}

	session, err := s.repo.Session().GetByIDWithDetails(ctx, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	analytics := &SessionAnalytics{
		SessionID: session.ID,
		UserID:    session.UserID,
		Status:    session.Status,
		Summary: ReportSummary{
			QuestionsAsked: session.QuestionsAsked,
			CorrectAnswers: session.CorrectAnswers,
			Accuracy:       session.Accuracy,
			AvgTime:        session.AvgTime,
			Ability:        session.Ability,
			AbilityStdErr:  session.AbilityStdErr,
		},
		ByDifficulty: difficultyBreakdown(session.Responses),
		Lessons:      session.Performances,
	}

	// Only completed sessions are immutable enough to cache.
	if s.cache != nil && session.Status != models.SessionStatusInProgress {
		if err := s.cache.Set(ctx, key, analytics, sessionAnalyticsCacheTTL); err != nil {
			s.logger.Warn("Session analytics cache write failed",
				"session_id", sessionID, "error", err)
		}
	}
	return analytics, nil
}

func (s *analyticsService) GlobalStats(ctx context.Context) (*repositories.GlobalStats, error) {
	if s.cache != nil {
		var cached repositories.GlobalStats
		err := s.cache.Get(ctx, globalStatsCacheKey, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("Global stats cache read failed", "error", err)
		}
	}

	stats, err := s.repo.Session().GetGlobalStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get global stats: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, globalStatsCacheKey, stats, globalStatsCacheTTL); err != nil {
			s.logger.Warn("Global stats cache write failed", "error", err)
		}
	}
	return stats, nil
}

func (s *analyticsService) UserLessonStats(ctx context.Context, userID string) ([]repositories.LessonStat, error) {
	stats, err := s.repo.Session().GetUserLessonStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user lesson stats: %w", err)
	}
	return stats, nil
}
