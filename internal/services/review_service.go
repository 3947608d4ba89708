package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/error-404/learning-service/internal/events"
	"github.com/error-404/learning-service/internal/models"
	"github.com/error-404/learning-service/internal/repositories"
	"github.com/error-404/learning-service/internal/scheduler"
	"github.com/error-404/learning-service/internal/utils"
)

// ReviewService exposes the spaced repetition scheduling: due cards, review
// session planning, and recording recall performance.
type ReviewService interface {
	DueCards(ctx context.Context, userID string, limit int) ([]*models.ReviewCard, error)
	PlanSession(ctx context.Context, userID string, targetMinutes int) (*ReviewSessionPlan, error)
	RecordReview(ctx context.Context, req *RecordReviewRequest) (*ReviewOutcome, error)
	Retention(ctx context.Context, userID string) (*repositories.RetentionStats, error)
	ListCards(ctx context.Context, userID string) ([]*models.ReviewCard, error)
}

type RecordReviewRequest struct {
	UserID      string  `json:"user_id" validate:"required"`
	LessonID    uint    `json:"lesson_id" validate:"required"`
	Performance float64 `json:"performance" validate:"performance_score"`
}

type ReviewOutcome struct {
	Card         *models.ReviewCard `json:"card"`
	Category     string             `json:"category"`
	IntervalDays int                `json:"interval_days"`
	NextReviewAt time.Time          `json:"next_review_at"`
}

type ReviewSessionPlan struct {
	Cards            []*models.ReviewCard `json:"cards"`
	EstimatedMinutes int                  `json:"estimated_minutes"`
	TotalDue         int                  `json:"total_due"`
}

type reviewService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *utils.Validator
}

func NewReviewService(
	repo repositories.Repository,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *utils.Validator,
) ReviewService {
	return &reviewService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

func (s *reviewService) DueCards(ctx context.Context, userID string, limit int) ([]*models.ReviewCard, error) {
	now := time.Now()
	cards, err := s.repo.Review().GetDue(ctx, userID, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get due cards: %w", err)
	}
	return scheduler.Prioritize(cards, now), nil
}

func (s *reviewService) PlanSession(ctx context.Context, userID string, targetMinutes int) (*ReviewSessionPlan, error) {
	now := time.Now()
	due, err := s.repo.Review().GetDue(ctx, userID, now, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get due cards: %w", err)
	}

	plan := scheduler.PlanSession(due, targetMinutes, now)
	return &ReviewSessionPlan{
		Cards:            plan.Cards,
		EstimatedMinutes: plan.EstimatedMinutes,
		TotalDue:         plan.TotalDue,
	}, nil
}

func (s *reviewService) RecordReview(ctx context.Context, req *RecordReviewRequest) (*ReviewOutcome, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	card, err := s.repo.Review().GetByUserAndLesson(ctx, req.UserID, req.LessonID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrReviewCardNotFound
		}
		return nil, fmt.Errorf("failed to get review card: %w", err)
	}

	now := time.Now()
	review := scheduler.Schedule(card, req.Performance, now)
	scheduler.Apply(card, review, req.Performance, now)

	if err := s.repo.Review().Update(ctx, card); err != nil {
		return nil, fmt.Errorf("failed to update review card: %w", err)
	}

	if s.publisher != nil {
		event := events.NewLearningEvent(events.EventReviewRecorded, events.ReviewRecordedEvent{
			UserID:       req.UserID,
			LessonID:     req.LessonID,
			Performance:  req.Performance,
			IntervalDays: review.IntervalDays,
			EaseFactor:   review.EaseFactor,
			NextReviewAt: review.NextReviewAt,
		})
		if err := s.publisher.PublishLearningEvent(ctx, event); err != nil {
			s.logger.Warn("Failed to publish review event",
				"user_id", req.UserID, "error", err)
		}
	}

	s.logger.Info("Review recorded",
		"user_id", req.UserID,
		"lesson_id", req.LessonID,
		"performance", req.Performance,
		"next_interval_days", review.IntervalDays)

	return &ReviewOutcome{
		Card:         card,
		Category:     scheduler.PerformanceCategory(req.Performance),
		IntervalDays: review.IntervalDays,
		NextReviewAt: review.NextReviewAt,
	}, nil
}

func (s *reviewService) Retention(ctx context.Context, userID string) (*repositories.RetentionStats, error) {
	stats, err := s.repo.Review().GetRetentionStats(ctx, userID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to get retention stats: %w", err)
	}
	return stats, nil
}

func (s *reviewService) ListCards(ctx context.Context, userID string) ([]*models.ReviewCard, error) {
	cards, err := s.repo.Review().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list review cards: %w", err)
	}
	return cards, nil
}
