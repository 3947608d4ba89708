package repositories

import (
	"context"

	"github.com/error-404/learning-service/internal/models"
)

// ClanRepository manages clans, memberships and score bookkeeping.
type ClanRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, clan *models.Clan) error
	GetByID(ctx context.Context, id uint) (*models.Clan, error)
	GetByIDWithMembers(ctx context.Context, id uint) (*models.Clan, error)
	Update(ctx context.Context, clan *models.Clan) error
	Delete(ctx context.Context, id uint) error // Soft delete
	List(ctx context.Context, filters ClanFilters) ([]*models.Clan, int64, error)

	// Membership
	AddMember(ctx context.Context, member *models.ClanMember) error
	RemoveMember(ctx context.Context, clanID uint, userID string) error
	GetMember(ctx context.Context, clanID uint, userID string) (*models.ClanMember, error)
	GetMembership(ctx context.Context, userID string) (*models.ClanMember, error)
	CountMembers(ctx context.Context, clanID uint) (int64, error)

	// Scores. AddScore increments both the member's contribution and the
	// clan total in one transaction and returns the new clan total.
	AddScore(ctx context.Context, clanID uint, userID string, delta int64) (int64, error)
	TopClans(ctx context.Context, limit int) ([]*models.Clan, error)
	TopMembers(ctx context.Context, clanID uint, limit int) ([]*models.ClanMember, error)
}
