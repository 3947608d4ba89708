package models

import (
	"time"

	"gorm.io/gorm"
)

type CourseStatus string

const (
	CourseStatusDraft     CourseStatus = "Draft"
	CourseStatusPublished CourseStatus = "Published"
	CourseStatusArchived  CourseStatus = "Archived"
)

type Course struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	Title       string       `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description *string      `json:"description" gorm:"type:text" validate:"omitempty,max=2000"`
	Status      CourseStatus `json:"status" gorm:"default:Draft;index" validate:"omitempty,oneof=Draft Published Archived"`
	Topic       string       `json:"topic" gorm:"size:100;index" validate:"omitempty,max=100"`

	CreatedBy string         `json:"created_by" gorm:"not null;size:255;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Modules []CourseModule `json:"modules,omitempty" gorm:"foreignKey:CourseID"`

	// Computed fields (not stored)
	ModuleCount int `json:"module_count" gorm:"-"`
	LessonCount int `json:"lesson_count" gorm:"-"`
}

func (Course) TableName() string {
	return "courses"
}

type CourseModule struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	CourseID    uint    `json:"course_id" gorm:"not null;index"`
	Title       string  `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Description *string `json:"description" gorm:"type:text"`
	Position    int     `json:"position" gorm:"not null;default:1" validate:"min=1"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Lessons []Lesson `json:"lessons,omitempty" gorm:"foreignKey:ModuleID"`
}

func (CourseModule) TableName() string {
	return "course_modules"
}

type Lesson struct {
	ID       uint    `json:"id" gorm:"primaryKey"`
	ModuleID uint    `json:"module_id" gorm:"not null;index"`
	Name     string  `json:"name" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Summary  *string `json:"summary" gorm:"type:text"`
	Position int     `json:"position" gorm:"not null;default:1" validate:"min=1"`

	// Rough reading/watching time in minutes, used by roadmap estimates
	EstimatedMinutes int `json:"estimated_minutes" gorm:"default:10"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:LessonID"`
}

func (Lesson) TableName() string {
	return "lessons"
}
