package repositories

import (
	"context"

	"github.com/error-404/learning-service/internal/models"
)

// UserRepository covers the minimal user operations the service owns; user
// lifecycle itself belongs to the identity platform.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.User, error)
	Upsert(ctx context.Context, user *models.User) error
	TouchLastActive(ctx context.Context, id string) error
}

// ContentRepository covers the course catalog: courses, modules, lessons.
type ContentRepository interface {
	// Courses
	CreateCourse(ctx context.Context, course *models.Course) error
	GetCourse(ctx context.Context, id uint) (*models.Course, error)
	GetCourseWithModules(ctx context.Context, id uint) (*models.Course, error)
	ListCourses(ctx context.Context, filters CourseFilters) ([]*models.Course, int64, error)
	UpdateCourse(ctx context.Context, course *models.Course) error
	DeleteCourse(ctx context.Context, id uint) error // Soft delete

	// Modules
	CreateModule(ctx context.Context, module *models.CourseModule) error
	GetModule(ctx context.Context, id uint) (*models.CourseModule, error)
	GetModuleWithLessons(ctx context.Context, id uint) (*models.CourseModule, error)
	ListModules(ctx context.Context, courseID uint) ([]*models.CourseModule, error)

	// Lessons
	CreateLesson(ctx context.Context, lesson *models.Lesson) error
	GetLesson(ctx context.Context, id uint) (*models.Lesson, error)
	GetLessonByName(ctx context.Context, moduleID uint, name string) (*models.Lesson, error)
	ListLessons(ctx context.Context, moduleID uint) ([]*models.Lesson, error)
}
