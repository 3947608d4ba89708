package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/error-404/learning-service/internal/models"
	"github.com/error-404/learning-service/internal/repositories"
	"github.com/error-404/learning-service/internal/utils"
	"gorm.io/datatypes"
)

// ContentService owns the course catalog and the question pool.
type ContentService interface {
	// Courses
	CreateCourse(ctx context.Context, req *CreateCourseRequest) (*models.Course, error)
	GetCourse(ctx context.Context, id uint) (*models.Course, error)
	ListCourses(ctx context.Context, filters repositories.CourseFilters) ([]*models.Course, int64, error)
	UpdateCourse(ctx context.Context, id uint, req *UpdateCourseRequest) (*models.Course, error)
	DeleteCourse(ctx context.Context, id uint) error

	// Modules and lessons
	CreateModule(ctx context.Context, req *CreateModuleRequest) (*models.CourseModule, error)
	ListModules(ctx context.Context, courseID uint) ([]*models.CourseModule, error)
	CreateLesson(ctx context.Context, req *CreateLessonRequest) (*models.Lesson, error)
	ListLessons(ctx context.Context, moduleID uint) ([]*models.Lesson, error)

	// Questions
	CreateQuestion(ctx context.Context, req *CreateQuestionRequest) (*models.Question, error)
	GetQuestion(ctx context.Context, id uint) (*models.Question, error)
	ListQuestions(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, int64, error)
	UpdateQuestion(ctx context.Context, id uint, req *UpdateQuestionRequest) (*models.Question, error)
	DeleteQuestion(ctx context.Context, id uint) error
}

// ===== REQUEST TYPES =====

type CreateCourseRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Topic       string  `json:"topic" validate:"omitempty,max=100"`
	CreatedBy   string  `json:"created_by" validate:"required"`
}

type UpdateCourseRequest struct {
	Title       *string              `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string              `json:"description" validate:"omitempty,max=2000"`
	Topic       *string              `json:"topic" validate:"omitempty,max=100"`
	Status      *models.CourseStatus `json:"status" validate:"omitempty,oneof=Draft Published Archived"`
}

type CreateModuleRequest struct {
	CourseID    uint    `json:"course_id" validate:"required"`
	Title       string  `json:"title" validate:"required,min=1,max=200"`
	Description *string `json:"description"`
	Position    int     `json:"position" validate:"omitempty,min=1"`
}

type CreateLessonRequest struct {
	ModuleID         uint    `json:"module_id" validate:"required"`
	Name             string  `json:"name" validate:"required,min=1,max=200"`
	Summary          *string `json:"summary"`
	Position         int     `json:"position" validate:"omitempty,min=1"`
	EstimatedMinutes int     `json:"estimated_minutes" validate:"omitempty,min=1"`
}

type CreateQuestionRequest struct {
	LessonID   uint                   `json:"lesson_id" validate:"required"`
	Text       string                 `json:"text" validate:"required,min=10"`
	Options    map[string]string      `json:"options" validate:"required"`
	Correct    string                 `json:"correct" validate:"required,oneof=A B C D"`
	Difficulty models.DifficultyLevel `json:"difficulty" validate:"required,difficulty_level"`
	Topic      string                 `json:"topic" validate:"omitempty,max=100"`
	CreatedBy  string                 `json:"created_by"`
}

type UpdateQuestionRequest struct {
	Text       *string                 `json:"text" validate:"omitempty,min=10"`
	Options    map[string]string       `json:"options"`
	Correct    *string                 `json:"correct" validate:"omitempty,oneof=A B C D"`
	Difficulty *models.DifficultyLevel `json:"difficulty" validate:"omitempty,difficulty_level"`
	Topic      *string                 `json:"topic" validate:"omitempty,max=100"`
}

// ===== IMPLEMENTATION =====

type contentService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *utils.Validator
}

func NewContentService(repo repositories.Repository, logger *slog.Logger, validator *utils.Validator) ContentService {
	return &contentService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

// ===== COURSES =====

func (s *contentService) CreateCourse(ctx context.Context, req *CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	course := &models.Course{
		Title:       req.Title,
		Description: req.Description,
		Topic:       req.Topic,
		Status:      models.CourseStatusDraft,
		CreatedBy:   req.CreatedBy,
	}
	if err := s.repo.Content().CreateCourse(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	s.logger.Info("Course created", "course_id", course.ID, "title", course.Title)
	return course, nil
}

func (s *contentService) GetCourse(ctx context.Context, id uint) (*models.Course, error) {
	course, err := s.repo.Content().GetCourseWithModules(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return course, nil
}

func (s *contentService) ListCourses(ctx context.Context, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	courses, total, err := s.repo.Content().ListCourses(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, total, nil
}

func (s *contentService) UpdateCourse(ctx context.Context, id uint, req *UpdateCourseRequest) (*models.Course, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	course, err := s.repo.Content().GetCourse(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = req.Description
	}
	if req.Topic != nil {
		course.Topic = *req.Topic
	}
	if req.Status != nil {
		course.Status = *req.Status
	}

	if err := s.repo.Content().UpdateCourse(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to update course: %w", err)
	}
	return course, nil
}

func (s *contentService) DeleteCourse(ctx context.Context, id uint) error {
	if err := s.repo.Content().DeleteCourse(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCourseNotFound
		}
		return fmt.Errorf("failed to delete course: %w", err)
	}
	return nil
}

// ===== MODULES AND LESSONS =====

func (s *contentService) CreateModule(ctx context.Context, req *CreateModuleRequest) (*models.CourseModule, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if _, err := s.repo.Content().GetCourse(ctx, req.CourseID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	position := req.Position
	if position == 0 {
		position = 1
	}

	module := &models.CourseModule{
		CourseID:    req.CourseID,
		Title:       req.Title,
		Description: req.Description,
		Position:    position,
	}
	if err := s.repo.Content().CreateModule(ctx, module); err != nil {
		return nil, fmt.Errorf("failed to create module: %w", err)
	}
	return module, nil
}

func (s *contentService) ListModules(ctx context.Context, courseID uint) ([]*models.CourseModule, error) {
	modules, err := s.repo.Content().ListModules(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}
	return modules, nil
}

func (s *contentService) CreateLesson(ctx context.Context, req *CreateLessonRequest) (*models.Lesson, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if _, err := s.repo.Content().GetModule(ctx, req.ModuleID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrModuleNotFound
		}
		return nil, fmt.Errorf("failed to get module: %w", err)
	}

	position := req.Position
	if position == 0 {
		position = 1
	}
	minutes := req.EstimatedMinutes
	if minutes == 0 {
		minutes = 10
	}

	lesson := &models.Lesson{
		ModuleID:         req.ModuleID,
		Name:             req.Name,
		Summary:          req.Summary,
		Position:         position,
		EstimatedMinutes: minutes,
	}
	if err := s.repo.Content().CreateLesson(ctx, lesson); err != nil {
		return nil, fmt.Errorf("failed to create lesson: %w", err)
	}
	return lesson, nil
}

func (s *contentService) ListLessons(ctx context.Context, moduleID uint) ([]*models.Lesson, error) {
	lessons, err := s.repo.Content().ListLessons(ctx, moduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}
	return lessons, nil
}

// ===== QUESTIONS =====

func (s *contentService) CreateQuestion(ctx context.Context, req *CreateQuestionRequest) (*models.Question, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := validateOptions(req.Options, req.Correct); err != nil {
		return nil, err
	}

	if _, err := s.repo.Content().GetLesson(ctx, req.LessonID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrLessonNotFound
		}
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}

	options, err := json.Marshal(req.Options)
	if err != nil {
		return nil, fmt.Errorf("failed to encode options: %w", err)
	}

	question := &models.Question{
		LessonID:     req.LessonID,
		Text:         req.Text,
		Options:      datatypes.JSON(options),
		Correct:      req.Correct,
		Difficulty:   req.Difficulty,
		Topic:        req.Topic,
		QualityScore: 1.0,
		CreatedBy:    req.CreatedBy,
	}
	if err := s.repo.Question().Create(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.logger.Info("Question created",
		"question_id", question.ID,
		"lesson_id", question.LessonID,
		"difficulty", question.Difficulty)
	return question, nil
}

func (s *contentService) GetQuestion(ctx context.Context, id uint) (*models.Question, error) {
	question, err := s.repo.Question().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return question, nil
}

func (s *contentService) ListQuestions(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	questions, total, err := s.repo.Question().List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, total, nil
}

func (s *contentService) UpdateQuestion(ctx context.Context, id uint, req *UpdateQuestionRequest) (*models.Question, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	question, err := s.repo.Question().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	if req.Text != nil {
		question.Text = *req.Text
	}
	if req.Options != nil {
		options, err := json.Marshal(req.Options)
		if err != nil {
			return nil, fmt.Errorf("failed to encode options: %w", err)
		}
		question.Options = datatypes.JSON(options)
	}
	if req.Correct != nil {
		question.Correct = *req.Correct
	}
	if req.Difficulty != nil {
		question.Difficulty = *req.Difficulty
	}
	if req.Topic != nil {
		question.Topic = *req.Topic
	}

	var options map[string]string
	if err := json.Unmarshal(question.Options, &options); err != nil {
		return nil, fmt.Errorf("failed to decode options: %w", err)
	}
	if err := validateOptions(options, question.Correct); err != nil {
		return nil, err
	}

	if err := s.repo.Question().Update(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}
	return question, nil
}

func (s *contentService) DeleteQuestion(ctx context.Context, id uint) error {
	if err := s.repo.Question().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to delete question: %w", err)
	}
	return nil
}

// validateOptions checks that the option map covers at least two answer keys
// and that the correct answer is among them.
func validateOptions(options map[string]string, correct string) error {
	if len(options) < 2 {
		return ErrQuestionInvalidOptions
	}
	if _, ok := options[correct]; !ok {
		return ErrQuestionInvalidAnswer
	}
	return nil
}
