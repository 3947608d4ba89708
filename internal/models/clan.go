package models

import (
	"time"

	"gorm.io/gorm"
)

type ClanRole string

const (
	ClanRoleOwner  ClanRole = "owner"
	ClanRoleMember ClanRole = "member"
)

// Clan is a social grouping of users sharing a leaderboard.
type Clan struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Name        string  `json:"name" gorm:"uniqueIndex;not null;size:100" validate:"required,min=3,max=100"`
	Description *string `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	OwnerID     string  `json:"owner_id" gorm:"not null;size:255;index"`
	MaxMembers  int     `json:"max_members" gorm:"default:50" validate:"omitempty,min=2,max=200"`

	TotalScore int64 `json:"total_score" gorm:"default:0"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Members []ClanMember `json:"members,omitempty" gorm:"foreignKey:ClanID"`

	// Computed fields (not stored)
	MemberCount int `json:"member_count" gorm:"-"`
}

func (Clan) TableName() string {
	return "clans"
}

type ClanMember struct {
	ID     uint     `json:"id" gorm:"primaryKey"`
	ClanID uint     `json:"clan_id" gorm:"not null;index:idx_clan_user,unique"`
	UserID string   `json:"user_id" gorm:"not null;size:255;index:idx_clan_user,unique"`
	Role   ClanRole `json:"role" gorm:"default:member;size:20"`

	// Score contributed by this member to the clan total
	Score int64 `json:"score" gorm:"default:0"`

	JoinedAt  time.Time `json:"joined_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (ClanMember) TableName() string {
	return "clan_members"
}

// LeaderboardEntry is a snapshot-friendly view of one ranked row. Rank is
// 1-based.
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Score       int64  `json:"score"`
}

// Leaderboard captures an ordered scoreboard together with its scope
// (a clan ID, or "global").
type Leaderboard struct {
	Scope     string             `json:"scope"`
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updated_at"`
}
