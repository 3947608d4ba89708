package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
	RoleAdmin   UserRole = "admin"
)

type User struct {
	ID          string   `json:"id" gorm:"primaryKey;size:255"`
	DisplayName string   `json:"display_name" gorm:"not null;size:100"`
	Email       string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Role        UserRole `json:"role" gorm:"default:student;size:20"`

	// Profile info
	AvatarURL *string `json:"avatar_url" gorm:"size:500"`
	Timezone  string  `json:"timezone" gorm:"default:UTC;size:50"`
	Language  string  `json:"language" gorm:"default:en;size:10"`

	// Learning preferences (daily goal, preferred session length, ...)
	Preferences datatypes.JSON `json:"preferences"`

	// Status
	IsActive     bool       `json:"is_active" gorm:"default:true"`
	LastActiveAt *time.Time `json:"last_active_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}
