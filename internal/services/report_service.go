package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/error-404/learning-service/internal/models"
	"github.com/error-404/learning-service/internal/repositories"
)

// Report thresholds, accuracy percentages.
const (
	excellentAccuracy    = 80.0
	goodAccuracy         = 70.0
	suggestionAccuracy   = 50.0
	poorAccuracy         = 50.0
	fundamentalsAccuracy = 80.0
)

// ReportService builds the post-session performance report from persisted
// session data.
type ReportService interface {
	Report(ctx context.Context, sessionID string) (*PerformanceReport, error)
}

// ===== REPORT TYPES =====

type PerformanceReport struct {
	SessionID   string    `json:"session_id"`
	UserID      string    `json:"user_id"`
	ModuleID    uint      `json:"module_id"`
	GeneratedAt time.Time `json:"generated_at"`

	Summary      ReportSummary              `json:"summary"`
	ByDifficulty []DifficultyBreakdown      `json:"by_difficulty"`
	Lessons      []models.LessonPerformance `json:"lessons"`

	Strengths   []ReportItem  `json:"strengths"`
	Weaknesses  []ReportItem  `json:"weaknesses"`
	Suggestions []ReportItem  `json:"suggestions"`
	Roadmap     []RoadmapStep `json:"roadmap"`
}

type ReportSummary struct {
	QuestionsAsked int     `json:"questions_asked"`
	CorrectAnswers int     `json:"correct_answers"`
	Accuracy       float64 `json:"accuracy"`
	AvgTime        float64 `json:"avg_time"`
	Ability        float64 `json:"ability"`
	AbilityStdErr  float64 `json:"ability_std_err"`
}

type DifficultyBreakdown struct {
	Difficulty models.DifficultyLevel `json:"difficulty"`
	Attempted  int                    `json:"attempted"`
	Correct    int                    `json:"correct"`
	Accuracy   float64                `json:"accuracy"`
	AvgTime    float64                `json:"avg_time"`
}

type ReportItem struct {
	LessonName string  `json:"lesson_name"`
	Accuracy   float64 `json:"accuracy"`
	Level      string  `json:"level"`
	Reason     string  `json:"reason"`
}

type RoadmapStep struct {
	LessonName       string `json:"lesson_name"`
	Action           string `json:"action"` // "restudy" or "review"
	Reason           string `json:"reason"`
	EstimatedMinutes int    `json:"estimated_minutes"`
}

// ===== IMPLEMENTATION =====

type reportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewReportService(repo repositories.Repository, logger *slog.Logger) ReportService {
	return &reportService{repo: repo, logger: logger}
}

func (s *reportService) Report(ctx context.Context, sessionID string) (*PerformanceReport, error) {
	session, err := s.repo.Session().GetByIDWithDetails(ctx, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session.Status == models.SessionStatusInProgress {
		return nil, ErrSessionNotActive
	}

	report := &PerformanceReport{
		SessionID:   session.ID,
		UserID:      session.UserID,
		ModuleID:    session.ModuleID,
		GeneratedAt: time.Now(),
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

	s.categorize(report, session.Performances)
	s.buildRoadmap(ctx, report, session)

	return report, nil
}

func difficultyBreakdown(responses []models.UserResponse) []DifficultyBreakdown {
	levels := []models.DifficultyLevel{models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard}
	out := make([]DifficultyBreakdown, 0, len(levels))

	for _, level := range levels {
		var row DifficultyBreakdown
		row.Difficulty = level

		var totalTime float64
		for _, r := range responses {
			if r.Difficulty != level {
				continue
			}
			row.Attempted++
			if r.IsCorrect {
				row.Correct++
			}
			totalTime += r.ResponseTime
		}
		if row.Attempted > 0 {
			row.Accuracy = float64(row.Correct) / float64(row.Attempted) * 100
			row.AvgTime = totalTime / float64(row.Attempted)
		}
		out = append(out, row)
	}
	return out
}

// categorize sorts visited lessons into strengths, weaknesses and
// suggestions. A lesson lands in exactly one list; weaknesses win over
// suggestions.
func (s *reportService) categorize(report *PerformanceReport, performances []models.LessonPerformance) {
	for _, perf := range performances {
		acc := perf.OverallAccuracy
		attempted := perf.EasyTotal + perf.MediumTotal + perf.HardTotal

		switch {
		// A lesson marked unknown but never tested carries no accuracy
		// signal; it belongs under skills assessment, not "poor".
		case perf.MarkedUnknown && attempted == 0:
			report.Weaknesses = append(report.Weaknesses, ReportItem{
				LessonName: perf.LessonName,
				Accuracy:   acc,
				Level:      "skills_assessment",
				Reason:     "marked as unknown in the pre-assessment",
			})
		case perf.Terminated:
			report.Weaknesses = append(report.Weaknesses, ReportItem{
				LessonName: perf.LessonName,
				Accuracy:   acc,
				Level:      "critical",
				Reason:     "lesson ended early after repeated wrong answers",
			})
		case acc < poorAccuracy:
			report.Weaknesses = append(report.Weaknesses, ReportItem{
				LessonName: perf.LessonName,
				Accuracy:   acc,
				Level:      "poor",
				Reason:     "accuracy below 50%",
			})
		case perf.MarkedUnknown:
			report.Weaknesses = append(report.Weaknesses, ReportItem{
				LessonName: perf.LessonName,
				Accuracy:   acc,
				Level:      "skills_assessment",
				Reason:     "marked as unknown in the pre-assessment",
			})
		case perf.EasyTotal > 0 && easyAccuracy(perf) < fundamentalsAccuracy:
			report.Weaknesses = append(report.Weaknesses, ReportItem{
				LessonName: perf.LessonName,
				Accuracy:   acc,
				Level:      "fundamentals",
				Reason:     "missed easy questions, fundamentals gap",
			})
		case perf.IsStrength && acc >= excellentAccuracy:
			report.Strengths = append(report.Strengths, ReportItem{
				LessonName: perf.LessonName,
				Accuracy:   acc,
				Level:      "excellent",
				Reason:     "high accuracy including hard questions",
			})
		case acc >= goodAccuracy:
			report.Strengths = append(report.Strengths, ReportItem{
				LessonName: perf.LessonName,
				Accuracy:   acc,
				Level:      "good",
				Reason:     "solid accuracy",
			})
		case acc >= suggestionAccuracy:
			report.Suggestions = append(report.Suggestions, ReportItem{
				LessonName: perf.LessonName,
				Accuracy:   acc,
				Level:      "practice",
				Reason:     "borderline accuracy, more practice recommended",
			})
		}
	}
}

// buildRoadmap blends lessons flagged needs-focus with the user's due review
// cards into an ordered study plan.
func (s *reportService) buildRoadmap(ctx context.Context, report *PerformanceReport, session *models.TestSession) {
	seen := make(map[string]bool)

	for _, perf := range session.Performances {
		if !perf.NeedsFocus && !perf.Terminated {
			continue
		}
		seen[perf.LessonName] = true
		report.Roadmap = append(report.Roadmap, RoadmapStep{
			LessonName:       perf.LessonName,
			Action:           "restudy",
			Reason:           "flagged for focus in this session",
			EstimatedMinutes: s.lessonMinutes(ctx, session.ModuleID, perf.LessonName),
		})
	}

	due, err := s.repo.Review().GetDue(ctx, session.UserID, time.Now(), 0)
	if err != nil {
		s.logger.Warn("Failed to load due review cards for roadmap",
			"user_id", session.UserID, "error", err)
		return
	}
	for _, card := range due {
		if seen[card.LessonName] {
			continue
		}
		seen[card.LessonName] = true
		report.Roadmap = append(report.Roadmap, RoadmapStep{
			LessonName:       card.LessonName,
			Action:           "review",
			Reason:           "spaced repetition card due",
			EstimatedMinutes: s.lessonMinutes(ctx, session.ModuleID, card.LessonName),
		})
	}
}

func (s *reportService) lessonMinutes(ctx context.Context, moduleID uint, lessonName string) int {
	lesson, err := s.repo.Content().GetLessonByName(ctx, moduleID, lessonName)
	if err != nil {
		return 10
	}
	return lesson.EstimatedMinutes
}

func easyAccuracy(perf models.LessonPerformance) float64 {
	if perf.EasyTotal == 0 {
		return 100
	}
	return float64(perf.EasyCorrect) / float64(perf.EasyTotal) * 100
}
