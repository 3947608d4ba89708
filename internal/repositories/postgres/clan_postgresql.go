package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/error-404/learning-service/internal/models"
	"github.com/error-404/learning-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ClanPostgreSQL struct {
	db *gorm.DB
}

func NewClanPostgreSQL(db *gorm.DB) repositories.ClanRepository {
	return &ClanPostgreSQL{db: db}
}

func (c *ClanPostgreSQL) Create(ctx context.Context, clan *models.Clan) error {
	if err := c.db.WithContext(ctx).Create(clan).Error; err != nil {
		return fmt.Errorf("failed to create clan: %w", err)
	}
	return nil
}

func (c *ClanPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Clan, error) {
	var clan models.Clan
	err := c.db.WithContext(ctx).First(&clan, id).Error
	if err != nil {
		return nil, err
	}
	return &clan, nil
}

func (c *ClanPostgreSQL) GetByIDWithMembers(ctx context.Context, id uint) (*models.Clan, error) {
	var clan models.Clan
	err := c.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("score DESC")
		}).
		Preload("Members.User").
		First(&clan, id).Error
	if err != nil {
		return nil, err
	}
	clan.MemberCount = len(clan.Members)
	return &clan, nil
}

func (c *ClanPostgreSQL) Update(ctx context.Context, clan *models.Clan) error {
	if err := c.db.WithContext(ctx).Save(clan).Error; err != nil {
		return fmt.Errorf("failed to update clan: %w", err)
	}
	return nil
}

func (c *ClanPostgreSQL) Delete(ctx context.Context, id uint) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("clan_id = ?", id).Delete(&models.ClanMember{}).Error; err != nil {
			return fmt.Errorf("failed to delete clan members: %w", err)
		}
		result := tx.Delete(&models.Clan{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete clan: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (c *ClanPostgreSQL) List(ctx context.Context, filters repositories.ClanFilters) ([]*models.Clan, int64, error) {
	query := c.db.WithContext(ctx).Model(&models.Clan{})

	if filters.Name != nil {
		query = query.Where("name ILIKE ?", "%"+*filters.Name+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count clans: %w", err)
	}

	query = applyPagination(query.Order("total_score DESC"), filters.Limit, filters.Offset)

	var clans []*models.Clan
	if err := query.Find(&clans).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list clans: %w", err)
	}

	return clans, total, nil
}

func (c *ClanPostgreSQL) AddMember(ctx context.Context, member *models.ClanMember) error {
	if member.JoinedAt.IsZero() {
		member.JoinedAt = time.Now()
	}
	if err := c.db.WithContext(ctx).Create(member).Error; err != nil {
		return fmt.Errorf("failed to add clan member: %w", err)
	}
	return nil
}

func (c *ClanPostgreSQL) RemoveMember(ctx context.Context, clanID uint, userID string) error {
	result := c.db.WithContext(ctx).
		Where("clan_id = ? AND user_id = ?", clanID, userID).
		Delete(&models.ClanMember{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove clan member: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (c *ClanPostgreSQL) GetMember(ctx context.Context, clanID uint, userID string) (*models.ClanMember, error) {
	var member models.ClanMember
	err := c.db.WithContext(ctx).
		Where("clan_id = ? AND user_id = ?", clanID, userID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (c *ClanPostgreSQL) GetMembership(ctx context.Context, userID string) (*models.ClanMember, error) {
	var member models.ClanMember
	err := c.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (c *ClanPostgreSQL) CountMembers(ctx context.Context, clanID uint) (int64, error) {
	var count int64
	err := c.db.WithContext(ctx).
		Model(&models.ClanMember{}).
		Where("clan_id = ?", clanID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count clan members: %w", err)
	}
	return count, nil
}

// AddScore bumps the member contribution and the clan total together. The
// clan row is locked so concurrent submissions cannot lose increments.
func (c *ClanPostgreSQL) AddScore(ctx context.Context, clanID uint, userID string, delta int64) (int64, error) {
	var newTotal int64
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var clan models.Clan
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&clan, clanID).Error; err != nil {
			return err
		}

		result := tx.Model(&models.ClanMember{}).
			Where("clan_id = ? AND user_id = ?", clanID, userID).
			Update("score", gorm.Expr("score + ?", delta))
		if result.Error != nil {
			return fmt.Errorf("failed to update member score: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		clan.TotalScore += delta
		if err := tx.Model(&models.Clan{}).
			Where("id = ?", clanID).
			Update("total_score", clan.TotalScore).Error; err != nil {
			return fmt.Errorf("failed to update clan total: %w", err)
		}

		newTotal = clan.TotalScore
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newTotal, nil
}

func (c *ClanPostgreSQL) TopClans(ctx context.Context, limit int) ([]*models.Clan, error) {
	if limit <= 0 {
		limit = 10
	}
	var clans []*models.Clan
	err := c.db.WithContext(ctx).
		Order("total_score DESC").
		Limit(limit).
		Find(&clans).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get top clans: %w", err)
	}
	return clans, nil
}

func (c *ClanPostgreSQL) TopMembers(ctx context.Context, clanID uint, limit int) ([]*models.ClanMember, error) {
	if limit <= 0 {
		limit = 10
	}
	var members []*models.ClanMember
	err := c.db.WithContext(ctx).
		Preload("User").
		Where("clan_id = ?", clanID).
		Order("score DESC").
		Limit(limit).
		Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get top members: %w", err)
	}
	return members, nil
}
