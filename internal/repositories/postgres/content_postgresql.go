package postgres

import (
	"context"
	"fmt"

	"github.com/error-404/learning-service/internal/models"
	"github.com/error-404/learning-service/internal/repositories"
	"gorm.io/gorm"
)

type ContentPostgreSQL struct {
	db *gorm.DB
}

func NewContentPostgreSQL(db *gorm.DB) repositories.ContentRepository {
	return &ContentPostgreSQL{db: db}
}

// ===== COURSES =====

func (c *ContentPostgreSQL) CreateCourse(ctx context.Context, course *models.Course) error {
	if err := c.db.WithContext(ctx).Create(course).Error; err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	return nil
}

func (c *ContentPostgreSQL) GetCourse(ctx context.Context, id uint) (*models.Course, error) {
	var course models.Course
	err := c.db.WithContext(ctx).First(&course, id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (c *ContentPostgreSQL) GetCourseWithModules(ctx context.Context, id uint) (*models.Course, error) {
	var course models.Course
	err := c.db.WithContext(ctx).
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&course, id).Error
	if err != nil {
		return nil, err
	}

	course.ModuleCount = len(course.Modules)
	var lessonCount int64
	c.db.WithContext(ctx).
		Model(&models.Lesson{}).
		Joins("JOIN course_modules ON course_modules.id = lessons.module_id").
		Where("course_modules.course_id = ?", id).
		Count(&lessonCount)
	course.LessonCount = int(lessonCount)

	return &course, nil
}

func (c *ContentPostgreSQL) ListCourses(ctx context.Context, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	query := c.db.WithContext(ctx).Model(&models.Course{})

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Topic != nil {
		query = query.Where("topic = ?", *filters.Topic)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count courses: %w", err)
	}

	query = applySorting(query, filters.SortBy, filters.SortOrder, "created_at")
	query = applyPagination(query, filters.Limit, filters.Offset)

	var courses []*models.Course
	if err := query.Find(&courses).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list courses: %w", err)
	}

	return courses, total, nil
}

func (c *ContentPostgreSQL) UpdateCourse(ctx context.Context, course *models.Course) error {
	if err := c.db.WithContext(ctx).Save(course).Error; err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}
	return nil
}

func (c *ContentPostgreSQL) DeleteCourse(ctx context.Context, id uint) error {
	if err := c.db.WithContext(ctx).Delete(&models.Course{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	return nil
}

// ===== MODULES =====

func (c *ContentPostgreSQL) CreateModule(ctx context.Context, module *models.CourseModule) error {
	if err := c.db.WithContext(ctx).Create(module).Error; err != nil {
		return fmt.Errorf("failed to create module: %w", err)
	}
	return nil
}

func (c *ContentPostgreSQL) GetModule(ctx context.Context, id uint) (*models.CourseModule, error) {
	var module models.CourseModule
	err := c.db.WithContext(ctx).First(&module, id).Error
	if err != nil {
		return nil, err
	}
	return &module, nil
}

func (c *ContentPostgreSQL) GetModuleWithLessons(ctx context.Context, id uint) (*models.CourseModule, error) {
	var module models.CourseModule
	err := c.db.WithContext(ctx).
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&module, id).Error
	if err != nil {
		return nil, err
	}
	return &module, nil
}

func (c *ContentPostgreSQL) ListModules(ctx context.Context, courseID uint) ([]*models.CourseModule, error) {
	var modules []*models.CourseModule
	err := c.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("position ASC").
		Find(&modules).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}
	return modules, nil
}

// ===== LESSONS =====

func (c *ContentPostgreSQL) CreateLesson(ctx context.Context, lesson *models.Lesson) error {
	if err := c.db.WithContext(ctx).Create(lesson).Error; err != nil {
		return fmt.Errorf("failed to create lesson: %w", err)
	}
	return nil
}

func (c *ContentPostgreSQL) GetLesson(ctx context.Context, id uint) (*models.Lesson, error) {
	var lesson models.Lesson
	err := c.db.WithContext(ctx).First(&lesson, id).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (c *ContentPostgreSQL) GetLessonByName(ctx context.Context, moduleID uint, name string) (*models.Lesson, error) {
	var lesson models.Lesson
	err := c.db.WithContext(ctx).
		Where("module_id = ? AND name = ?", moduleID, name).
		First(&lesson).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (c *ContentPostgreSQL) ListLessons(ctx context.Context, moduleID uint) ([]*models.Lesson, error) {
	var lessons []*models.Lesson
	err := c.db.WithContext(ctx).
		Where("module_id = ?", moduleID).
		Order("position ASC").
		Find(&lessons).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}
	return lessons, nil
}

// ===== SHARED QUERY HELPERS =====

// sortableColumns limits ORDER BY to known columns. Caller-supplied sort
// keys must never reach SQL unchecked.
var sortableColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"title":      "title",
	"topic":      "topic",
	"status":     "status",
	"difficulty": "difficulty",
	"position":   "position",
}

func sortClause(sortBy, sortOrder, fallback string) string {
	column, ok := sortableColumns[sortBy]
	if !ok {
		column = fallback
	}
	order := "DESC"
	if sortOrder == "asc" {
		order = "ASC"
	}
	return column + " " + order
}

func applySorting(query *gorm.DB, sortBy, sortOrder, fallback string) *gorm.DB {
	return query.Order(sortClause(sortBy, sortOrder, fallback))
}

func applyPagination(query *gorm.DB, limit, offset int) *gorm.DB {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return query.Limit(limit).Offset(offset)
}
