package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/error-404/learning-service/internal/adaptive"
	"github.com/error-404/learning-service/internal/events"
	"github.com/error-404/learning-service/internal/models"
	"github.com/error-404/learning-service/internal/repositories"
	"github.com/error-404/learning-service/internal/sessions"
	"github.com/error-404/learning-service/internal/utils"
	"github.com/google/uuid"
)

// Guessing floor for four-option multiple choice items.
const defaultGuessing = 0.25

// SessionService drives adaptive test sessions: question selection, response
// recording, termination detection, and completion side effects.
type SessionService interface {
	Start(ctx context.Context, req *StartSessionRequest) (*StartSessionResponse, error)
	SetConfidence(ctx context.Context, sessionID string, req *ConfidenceRequest) error
	StartLesson(ctx context.Context, sessionID string, req *StartLessonRequest) error
	NextQuestion(ctx context.Context, sessionID string) (*NextQuestionResponse, error)
	SubmitResponse(ctx context.Context, sessionID string, req *SubmitResponseRequest) (*SubmitResponseResult, error)
	Status(ctx context.Context, sessionID string) (*SessionStatusResponse, error)
	Complete(ctx context.Context, sessionID string) (*CompletionSummary, error)
	Abandon(ctx context.Context, sessionID string) error
}

// ===== REQUEST/RESPONSE TYPES =====

type StartSessionRequest struct {
	UserID   string `json:"user_id" validate:"required"`
	ModuleID uint   `json:"module_id" validate:"required"`
}

type StartSessionResponse struct {
	SessionID   string    `json:"session_id"`
	ModuleID    uint      `json:"module_id"`
	ModuleTitle string    `json:"module_title"`
	Lessons     []string  `json:"lessons"`
	StartedAt   time.Time `json:"started_at"`
}

type ConfidenceRequest struct {
	// Lesson name -> whether the learner already knows the material.
	Lessons map[string]bool `json:"lessons" validate:"required,min=1"`
}

type StartLessonRequest struct {
	LessonID uint `json:"lesson_id" validate:"required"`
}

type NextQuestionResponse struct {
	QuestionID uint                   `json:"question_id"`
	Text       string                 `json:"text"`
	Options    map[string]string      `json:"options"`
	Difficulty models.DifficultyLevel `json:"difficulty"`
	LessonName string                 `json:"lesson_name"`
}

type SubmitResponseRequest struct {
	Answer       string  `json:"answer" validate:"required,oneof=A B C D"`
	ResponseTime float64 `json:"response_time" validate:"min=0"`
}

type SubmitResponseResult struct {
	Correct          bool                   `json:"correct"`
	CorrectAnswer    string                 `json:"correct_answer"`
	NextDifficulty   models.DifficultyLevel `json:"next_difficulty"`
	LessonTerminated bool                   `json:"lesson_terminated"`
	Ability          float64                `json:"ability"`
	AbilityStdErr    float64                `json:"ability_std_err"`
}

type SessionStatusResponse struct {
	SessionID         string                 `json:"session_id"`
	UserID            string                 `json:"user_id"`
	ModuleID          uint                   `json:"module_id"`
	CurrentLesson     string                 `json:"current_lesson"`
	CurrentDifficulty models.DifficultyLevel `json:"current_difficulty"`
	QuestionsAsked    int                    `json:"questions_asked"`
	CorrectAnswers    int                    `json:"correct_answers"`
	Ability           float64                `json:"ability"`
	AbilityStdErr     float64                `json:"ability_std_err"`
	ElapsedSeconds    float64                `json:"elapsed_seconds"`
	PendingQuestion   bool                   `json:"pending_question"`
}

type CompletionSummary struct {
	SessionID      string                     `json:"session_id"`
	QuestionsAsked int                        `json:"questions_asked"`
	CorrectAnswers int                        `json:"correct_answers"`
	Accuracy       float64                    `json:"accuracy"`
	AvgTime        float64                    `json:"avg_time"`
	Ability        float64                    `json:"ability"`
	AbilityStdErr  float64                    `json:"ability_std_err"`
	Performances   []models.LessonPerformance `json:"performances"`
	ReviewsQueued  int                        `json:"reviews_queued"`
	ScoreAwarded   int64                      `json:"score_awarded"`
}

// ===== IMPLEMENTATION =====

type sessionService struct {
	repo      repositories.Repository
	store     *sessions.Store
	clans     ClanService
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *utils.Validator
}

func NewSessionService(
	repo repositories.Repository,
	store *sessions.Store,
	clans ClanService,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *utils.Validator,
) SessionService {
	return &sessionService{
		repo:      repo,
		store:     store,
		clans:     clans,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

func (s *sessionService) Start(ctx context.Context, req *StartSessionRequest) (*StartSessionResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	module, err := s.repo.Content().GetModuleWithLessons(ctx, req.ModuleID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrModuleNotFound
		}
		return nil, fmt.Errorf("failed to get module: %w", err)
	}
	if len(module.Lessons) == 0 {
		return nil, NewBusinessRuleError("module_empty",
			"module has no lessons to test", map[string]interface{}{"module_id": req.ModuleID})
	}

	record := &models.TestSession{
		ID:        uuid.New().String(),
		UserID:    req.UserID,
		ModuleID:  req.ModuleID,
		Status:    models.SessionStatusInProgress,
		StartedAt: time.Now(),
	}
	if err := s.repo.Session().Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create session record: %w", err)
	}

	sess := s.store.New(record.ID, req.UserID, req.ModuleID, module.Title)

	lessonNames := make([]string, 0, len(module.Lessons))
	sess.Lock()
	for _, l := range module.Lessons {
		sess.LessonIDs[l.Name] = l.ID
		lessonNames = append(lessonNames, l.Name)
	}
	sess.Unlock()

	s.publish(ctx, events.NewLearningEvent(events.EventSessionStarted, events.SessionStartedEvent{
		SessionID:   record.ID,
		UserID:      req.UserID,
		ModuleID:    req.ModuleID,
		ModuleTitle: module.Title,
		StartedAt:   record.StartedAt,
	}))

	s.logger.Info("Session started",
		"session_id", record.ID,
		"user_id", req.UserID,
		"module_id", req.ModuleID)

	return &StartSessionResponse{
		SessionID:   record.ID,
		ModuleID:    req.ModuleID,
		ModuleTitle: module.Title,
		Lessons:     lessonNames,
		StartedAt:   record.StartedAt,
	}, nil
}

func (s *sessionService) SetConfidence(ctx context.Context, sessionID string, req *ConfidenceRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sess := s.store.Get(sessionID)
	if sess == nil {
		return ErrSessionNotFound
	}

	sess.Lock()
	defer sess.Unlock()
	// Validate the whole batch before touching the engine so a bad lesson
	// name leaves no partial marks behind.
	for lesson := range req.Lessons {
		if _, ok := sess.LessonIDs[lesson]; !ok {
			return NewBusinessRuleError("unknown_lesson",
				"lesson does not belong to this module", map[string]interface{}{"lesson": lesson})
		}
	}
	for lesson, confident := range req.Lessons {
		sess.Engine.SetConfidence(lesson, confident)
	}
	return nil
}

func (s *sessionService) StartLesson(ctx context.Context, sessionID string, req *StartLessonRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sess := s.store.Get(sessionID)
	if sess == nil {
		return ErrSessionNotFound
	}

	lesson, err := s.repo.Content().GetLesson(ctx, req.LessonID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrLessonNotFound
		}
		return fmt.Errorf("failed to get lesson: %w", err)
	}

	sess.Lock()
	defer sess.Unlock()

	if lesson.ModuleID != sess.ModuleID {
		return NewBusinessRuleError("lesson_module_mismatch",
			"lesson does not belong to the session module",
			map[string]interface{}{"lesson_id": lesson.ID, "module_id": sess.ModuleID})
	}

	sess.CurrentLessonID = lesson.ID
	sess.LessonIDs[lesson.Name] = lesson.ID
	sess.Pending = nil
	sess.Engine.StartLesson(lesson.Name)

	s.logger.Info("Lesson started",
		"session_id", sessionID,
		"lesson", lesson.Name)
	return nil
}

func (s *sessionService) NextQuestion(ctx context.Context, sessionID string) (*NextQuestionResponse, error) {
	sess := s.store.Get(sessionID)
	if sess == nil {
		return nil, ErrSessionNotFound
	}

	sess.Lock()
	defer sess.Unlock()

	if sess.CurrentLessonID == 0 {
		return nil, NewBusinessRuleError("lesson_not_started",
			"start a lesson before requesting questions", nil)
	}

	// Re-serve the pending question rather than burning a new one on a
	// repeated request.
	if sess.Pending != nil {
		return questionResponse(sess.Pending, sess.Engine.CurrentLesson())
	}

	question, err := s.pickQuestion(ctx, sess)
	if err != nil {
		return nil, err
	}

	sess.Asked[question.ID] = true
	sess.Pending = question
	return questionResponse(question, sess.Engine.CurrentLesson())
}

// pickQuestion draws an unseen question at the engine's difficulty, falling
// back to adjacent levels when the bucket is exhausted. Ties are broken by
// Fisher information at the current ability estimate. Caller holds the
// session lock.
func (s *sessionService) pickQuestion(ctx context.Context, sess *sessions.Session) (*models.Question, error) {
	exclude := make([]uint, 0, len(sess.Asked))
	for id := range sess.Asked {
		exclude = append(exclude, id)
	}

	for _, level := range difficultyOrder(sess.Engine.Difficulty()) {
		candidates, err := s.repo.Question().GetByLessonAndDifficulty(ctx, sess.CurrentLessonID, level, exclude)
		if err != nil {
			return nil, fmt.Errorf("failed to load questions: %w", err)
		}
		if len(candidates) == 0 {
			continue
		}

		best := candidates[0]
		bestInfo := -1.0
		for _, q := range candidates {
			info := adaptive.Information(sess.Ability, itemParams(q))
			if info > bestInfo {
				best = q
				bestInfo = info
			}
		}
		return best, nil
	}

	return nil, ErrNoQuestionsAvailable
}

func (s *sessionService) SubmitResponse(ctx context.Context, sessionID string, req *SubmitResponseRequest) (*SubmitResponseResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	sess := s.store.Get(sessionID)
	if sess == nil {
		return nil, ErrSessionNotFound
	}

	sess.Lock()
	defer sess.Unlock()

	question := sess.Pending
	if question == nil {
		return nil, ErrNoPendingQuestion
	}
	sess.Pending = nil

	correct := req.Answer == question.Correct
	result := sess.Engine.Record(correct, req.ResponseTime)

	now := time.Now()
	sess.Responses = append(sess.Responses, models.UserResponse{
		SessionID:      sess.ID,
		QuestionID:     question.ID,
		SelectedAnswer: req.Answer,
		IsCorrect:      correct,
		ResponseTime:   req.ResponseTime,
		Difficulty:     question.Difficulty,
		LessonName:     sess.Engine.CurrentLesson(),
		ModuleName:     sess.ModuleTitle,
		AnsweredAt:     now,
	})

	sess.IRTResponses = append(sess.IRTResponses, adaptive.ItemResponse{
		Item:    itemParams(question),
		Correct: correct,
	})
	sess.Ability, sess.StdErr = adaptive.EstimateAbility(sess.IRTResponses, sess.Ability)

	// Usage stats feed future item calibration; a failure here must not
	// fail the response.
	if err := s.repo.Question().RecordUsage(ctx, question.ID, correct, req.ResponseTime); err != nil {
		s.logger.Warn("Failed to record question usage",
			"question_id", question.ID, "error", err)
	}

	if result.LessonTerminated {
		s.publish(ctx, events.NewLearningEvent(events.EventLessonTerminated, events.LessonTerminatedEvent{
			SessionID:    sess.ID,
			UserID:       sess.UserID,
			LessonName:   sess.Engine.CurrentLesson(),
			WrongStreak:  adaptive.TerminationStreak,
			TerminatedAt: now,
		}))
		s.logger.Info("Lesson terminated",
			"session_id", sess.ID,
			"lesson", sess.Engine.CurrentLesson())
	}

	return &SubmitResponseResult{
		Correct:          correct,
		CorrectAnswer:    question.Correct,
		NextDifficulty:   result.NextDifficulty,
		LessonTerminated: result.LessonTerminated,
		Ability:          sess.Ability,
		AbilityStdErr:    sess.StdErr,
	}, nil
}

func (s *sessionService) Status(ctx context.Context, sessionID string) (*SessionStatusResponse, error) {
	sess := s.store.Get(sessionID)
	if sess == nil {
		return nil, ErrSessionNotFound
	}

	sess.Lock()
	defer sess.Unlock()

	var correctCount int
	for _, r := range sess.Responses {
		if r.IsCorrect {
			correctCount++
		}
	}

	return &SessionStatusResponse{
		SessionID:         sess.ID,
		UserID:            sess.UserID,
		ModuleID:          sess.ModuleID,
		CurrentLesson:     sess.Engine.CurrentLesson(),
		CurrentDifficulty: sess.Engine.Difficulty(),
		QuestionsAsked:    len(sess.Responses),
		CorrectAnswers:    correctCount,
		Ability:           sess.Ability,
		AbilityStdErr:     sess.StdErr,
		ElapsedSeconds:    time.Since(sess.StartedAt).Seconds(),
		PendingQuestion:   sess.Pending != nil,
	}, nil
}

func (s *sessionService) Complete(ctx context.Context, sessionID string) (*CompletionSummary, error) {
	sess := s.store.Get(sessionID)
	if sess == nil {
		return nil, ErrSessionNotFound
	}

	record, err := s.repo.Session().GetByID(ctx, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session record: %w", err)
	}
	if record.Status != models.SessionStatusInProgress {
		return nil, ErrSessionAlreadyCompleted
	}

	sess.Lock()
	responses := sess.Responses
	performances := sess.Engine.Analyze(sessionID)
	ability, stdErr := sess.Ability, sess.StdErr
	userID := sess.UserID
	lessonIDs := make(map[string]uint, len(sess.LessonIDs))
	for name, id := range sess.LessonIDs {
		lessonIDs[name] = id
	}
	sess.Unlock()

	var correctCount int
	var totalTime float64
	for _, r := range responses {
		if r.IsCorrect {
			correctCount++
		}
		totalTime += r.ResponseTime
	}

	now := time.Now()
	record.Status = models.SessionStatusCompleted
	record.CompletedAt = &now
	record.QuestionsAsked = len(responses)
	record.CorrectAnswers = correctCount
	if len(responses) > 0 {
		record.Accuracy = float64(correctCount) / float64(len(responses)) * 100
		record.AvgTime = totalTime / float64(len(responses))
	}
	record.Ability = ability
	record.AbilityStdErr = stdErr

	if err := s.repo.Session().Finalize(ctx, record, responses, performances); err != nil {
		if errors.Is(err, repositories.ErrSessionNotInProgress) {
			return nil, ErrSessionAlreadyCompleted
		}
		return nil, fmt.Errorf("failed to finalize session: %w", err)
	}

	reviewsQueued := s.queueReviewCards(ctx, userID, performances, lessonIDs, now)

	scoreAwarded := int64(correctCount) * pointsPerCorrectAnswer
	if scoreAwarded > 0 && s.clans != nil {
		if err := s.clans.AccrueScore(ctx, userID, scoreAwarded); err != nil && !IsNotFound(err) {
			s.logger.Warn("Failed to accrue clan score",
				"user_id", userID, "error", err)
		}
	}

	s.publish(ctx, events.NewLearningEvent(events.EventSessionCompleted, events.SessionCompletedEvent{
		SessionID:      record.ID,
		UserID:         userID,
		ModuleID:       record.ModuleID,
		QuestionsAsked: record.QuestionsAsked,
		CorrectAnswers: record.CorrectAnswers,
		Accuracy:       record.Accuracy,
		Ability:        record.Ability,
		CompletedAt:    now,
	}))

	s.store.Delete(sessionID)

	s.logger.Info("Session completed",
		"session_id", sessionID,
		"questions", record.QuestionsAsked,
		"accuracy", record.Accuracy)

	return &CompletionSummary{
		SessionID:      record.ID,
		QuestionsAsked: record.QuestionsAsked,
		CorrectAnswers: record.CorrectAnswers,
		Accuracy:       record.Accuracy,
		AvgTime:        record.AvgTime,
		Ability:        record.Ability,
		AbilityStdErr:  record.AbilityStdErr,
		Performances:   performances,
		ReviewsQueued:  reviewsQueued,
		ScoreAwarded:   scoreAwarded,
	}, nil
}

// queueReviewCards creates immediately-due review cards for lessons that need
// focus or were terminated. Existing cards keep their scheduling state.
func (s *sessionService) queueReviewCards(ctx context.Context, userID string, performances []models.LessonPerformance, lessonIDs map[string]uint, now time.Time) int {
	var queued int
	for _, perf := range performances {
		if !perf.NeedsFocus && !perf.Terminated {
			continue
		}
		lessonID, ok := lessonIDs[perf.LessonName]
		if !ok {
			continue
		}

		card := &models.ReviewCard{
			UserID:     userID,
			LessonID:   lessonID,
			LessonName: perf.LessonName,
			EaseFactor: 2.5,
			DueAt:      now,
		}
		if err := s.repo.Review().Upsert(ctx, card); err != nil {
			s.logger.Warn("Failed to queue review card",
				"lesson", perf.LessonName, "error", err)
			continue
		}
		queued++
	}
	return queued
}

func (s *sessionService) Abandon(ctx context.Context, sessionID string) error {
	sess := s.store.Get(sessionID)
	if sess == nil {
		return ErrSessionNotFound
	}

	record, err := s.repo.Session().GetByID(ctx, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to get session record: %w", err)
	}
	if record.Status != models.SessionStatusInProgress {
		return ErrSessionAlreadyCompleted
	}

	now := time.Now()
	record.Status = models.SessionStatusAbandoned
	record.CompletedAt = &now
	if err := s.repo.Session().Update(ctx, record); err != nil {
		return fmt.Errorf("failed to update session record: %w", err)
	}

	s.store.Delete(sessionID)
	s.logger.Info("Session abandoned", "session_id", sessionID)
	return nil
}

// publish sends an event and logs failures; event delivery is best effort.
func (s *sessionService) publish(ctx context.Context, event *events.LearningEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLearningEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event",
			"type", event.Type, "error", err)
	}
}

// ===== HELPERS =====

const pointsPerCorrectAnswer = 10

// difficultyOrder lists the level to draw from first and its fallbacks.
func difficultyOrder(level models.DifficultyLevel) []models.DifficultyLevel {
	switch level {
	case models.DifficultyEasy:
		return []models.DifficultyLevel{models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard}
	case models.DifficultyHard:
		return []models.DifficultyLevel{models.DifficultyHard, models.DifficultyMedium, models.DifficultyEasy}
	default:
		return []models.DifficultyLevel{models.DifficultyMedium, models.DifficultyEasy, models.DifficultyHard}
	}
}

// itemParams derives 3PL parameters from a question's categorical difficulty
// and its empirical difficulty index.
func itemParams(q *models.Question) adaptive.ItemParams {
	return adaptive.ItemParams{
		Difficulty:     adaptive.DifficultyScale(string(q.Difficulty), q.Stats.DifficultyIndex()),
		Discrimination: 1.0,
		Guessing:       defaultGuessing,
	}
}

func questionResponse(q *models.Question, lesson string) (*NextQuestionResponse, error) {
	var options map[string]string
	if err := json.Unmarshal(q.Options, &options); err != nil {
		return nil, fmt.Errorf("failed to decode question options: %w", err)
	}
	return &NextQuestionResponse{
		QuestionID: q.ID,
		Text:       q.Text,
		Options:    options,
		Difficulty: q.Difficulty,
		LessonName: lesson,
	}, nil
}
