package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/error-404/learning-service/internal/cache"
	"github.com/error-404/learning-service/internal/events"
	"github.com/error-404/learning-service/internal/models"
	"github.com/error-404/learning-service/internal/repositories"
	"github.com/error-404/learning-service/internal/utils"
)

const globalBoard = "global"

// ClanService manages clans, memberships and the score leaderboards.
type ClanService interface {
	Create(ctx context.Context, req *CreateClanRequest) (*models.Clan, error)
	Get(ctx context.Context, clanID uint) (*models.Clan, error)
	List(ctx context.Context, filters repositories.ClanFilters) ([]*models.Clan, int64, error)
	Disband(ctx context.Context, clanID uint, userID string) error

	Join(ctx context.Context, clanID uint, userID string) (*models.ClanMember, error)
	Leave(ctx context.Context, clanID uint, userID string) error

	// AccrueScore credits a user's clan with points earned from a test
	// session. Users without a clan return ErrNotFound.
	AccrueScore(ctx context.Context, userID string, delta int64) error

	ClanLeaderboard(ctx context.Context, clanID uint, limit int) (*models.Leaderboard, error)
	GlobalLeaderboard(ctx context.Context, limit int) (*models.Leaderboard, error)
}

type CreateClanRequest struct {
	Name        string  `json:"name" validate:"required,min=3,max=100"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	OwnerID     string  `json:"owner_id" validate:"required"`
	MaxMembers  int     `json:"max_members" validate:"omitempty,min=2,max=200"`
}

type clanService struct {
	repo        repositories.Repository
	leaderboard cache.LeaderboardStore
	publisher   events.EventPublisher
	logger      *slog.Logger
	validator   *utils.Validator
}

func NewClanService(
	repo repositories.Repository,
	leaderboard cache.LeaderboardStore,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *utils.Validator,
) ClanService {
	return &clanService{
		repo:        repo,
		leaderboard: leaderboard,
		publisher:   publisher,
		logger:      logger,
		validator:   validator,
	}
}

func (s *clanService) Create(ctx context.Context, req *CreateClanRequest) (*models.Clan, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if _, err := s.repo.Clan().GetMembership(ctx, req.OwnerID); err == nil {
		return nil, ErrAlreadyInClan
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}

	nameFilter := req.Name
	existing, _, err := s.repo.Clan().List(ctx, repositories.ClanFilters{Name: &nameFilter, Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("failed to check clan name: %w", err)
	}
	for _, c := range existing {
		if c.Name == req.Name {
			return nil, ErrClanNameTaken
		}
	}

	maxMembers := req.MaxMembers
	if maxMembers == 0 {
		maxMembers = 50
	}

	clan := &models.Clan{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     req.OwnerID,
		MaxMembers:  maxMembers,
	}
	if err := s.repo.Clan().Create(ctx, clan); err != nil {
		return nil, fmt.Errorf("failed to create clan: %w", err)
	}

	owner := &models.ClanMember{
		ClanID:   clan.ID,
		UserID:   req.OwnerID,
		Role:     models.ClanRoleOwner,
		JoinedAt: time.Now(),
	}
	if err := s.repo.Clan().AddMember(ctx, owner); err != nil {
		return nil, fmt.Errorf("failed to add clan owner: %w", err)
	}

	s.logger.Info("Clan created",
		"clan_id", clan.ID,
		"name", clan.Name,
		"owner_id", req.OwnerID)
	return clan, nil
}

func (s *clanService) Get(ctx context.Context, clanID uint) (*models.Clan, error) {
	clan, err := s.repo.Clan().GetByIDWithMembers(ctx, clanID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrClanNotFound
		}
		return nil, fmt.Errorf("failed to get clan: %w", err)
	}
	return clan, nil
}

func (s *clanService) List(ctx context.Context, filters repositories.ClanFilters) ([]*models.Clan, int64, error) {
	clans, total, err := s.repo.Clan().List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list clans: %w", err)
	}
	return clans, total, nil
}

func (s *clanService) Disband(ctx context.Context, clanID uint, userID string) error {
	clan, err := s.repo.Clan().GetByID(ctx, clanID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrClanNotFound
		}
		return fmt.Errorf("failed to get clan: %w", err)
	}
	if clan.OwnerID != userID {
		return ErrNotClanOwner
	}

	if err := s.repo.Clan().Delete(ctx, clanID); err != nil {
		return fmt.Errorf("failed to delete clan: %w", err)
	}

	if s.leaderboard != nil {
		if err := s.leaderboard.Remove(ctx, globalBoard, clanBoardMember(clanID)); err != nil {
			s.logger.Warn("Failed to remove clan from leaderboard",
				"clan_id", clanID, "error", err)
		}
		if err := s.leaderboard.Drop(ctx, clanBoard(clanID)); err != nil {
			s.logger.Warn("Failed to drop clan member leaderboard",
				"clan_id", clanID, "error", err)
		}
	}

	s.logger.Info("Clan disbanded", "clan_id", clanID)
	return nil
}

func (s *clanService) Join(ctx context.Context, clanID uint, userID string) (*models.ClanMember, error) {
	clan, err := s.repo.Clan().GetByID(ctx, clanID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrClanNotFound
		}
		return nil, fmt.Errorf("failed to get clan: %w", err)
	}

	if _, err := s.repo.Clan().GetMembership(ctx, userID); err == nil {
		return nil, ErrAlreadyInClan
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}

	count, err := s.repo.Clan().CountMembers(ctx, clanID)
	if err != nil {
		return nil, fmt.Errorf("failed to count members: %w", err)
	}
	if count >= int64(clan.MaxMembers) {
		return nil, ErrClanFull
	}

	member := &models.ClanMember{
		ClanID:   clanID,
		UserID:   userID,
		Role:     models.ClanRoleMember,
		JoinedAt: time.Now(),
	}
	if err := s.repo.Clan().AddMember(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	s.publish(ctx, events.NewLearningEvent(events.EventClanMemberJoined, events.ClanMemberJoinedEvent{
		ClanID:   clanID,
		ClanName: clan.Name,
		UserID:   userID,
		Role:     models.ClanRoleMember,
		JoinedAt: member.JoinedAt,
	}))

	s.logger.Info("User joined clan", "clan_id", clanID, "user_id", userID)
	return member, nil
}

func (s *clanService) Leave(ctx context.Context, clanID uint, userID string) error {
	member, err := s.repo.Clan().GetMember(ctx, clanID, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrNotClanMember
		}
		return fmt.Errorf("failed to get member: %w", err)
	}

	if member.Role == models.ClanRoleOwner {
		count, err := s.repo.Clan().CountMembers(ctx, clanID)
		if err != nil {
			return fmt.Errorf("failed to count members: %w", err)
		}
		if count > 1 {
			return ErrOwnerCannotLeave
		}
		// Sole remaining member: leaving disbands the clan.
		return s.Disband(ctx, clanID, userID)
	}

	if err := s.repo.Clan().RemoveMember(ctx, clanID, userID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	if s.leaderboard != nil {
		if err := s.leaderboard.Remove(ctx, clanBoard(clanID), userID); err != nil {
			s.logger.Warn("Failed to remove member from clan leaderboard",
				"clan_id", clanID, "user_id", userID, "error", err)
		}
	}

	s.logger.Info("User left clan", "clan_id", clanID, "user_id", userID)
	return nil
}

func (s *clanService) AccrueScore(ctx context.Context, userID string, delta int64) error {
	membership, err := s.repo.Clan().GetMembership(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get membership: %w", err)
	}

	newTotal, err := s.repo.Clan().AddScore(ctx, membership.ClanID, userID, delta)
	if err != nil {
		return fmt.Errorf("failed to add score: %w", err)
	}

	// Leaderboards mirror the database totals; a cache failure is logged
	// and repaired by the next DB-backed read.
	if s.leaderboard != nil {
		if _, err := s.leaderboard.IncrScore(ctx, globalBoard, clanBoardMember(membership.ClanID), delta); err != nil {
			s.logger.Warn("Failed to update global leaderboard",
				"clan_id", membership.ClanID, "error", err)
		}
		if _, err := s.leaderboard.IncrScore(ctx, clanBoard(membership.ClanID), userID, delta); err != nil {
			s.logger.Warn("Failed to update clan leaderboard",
				"clan_id", membership.ClanID, "error", err)
		}
	}

	s.publish(ctx, events.NewLearningEvent(events.EventClanScoreUpdated, events.ClanScoreUpdatedEvent{
		ClanID:    membership.ClanID,
		UserID:    userID,
		Delta:     delta,
		ClanTotal: newTotal,
	}))
	return nil
}

// ClanLeaderboard returns the member ranking within a clan, Redis first with
// a database fallback.
func (s *clanService) ClanLeaderboard(ctx context.Context, clanID uint, limit int) (*models.Leaderboard, error) {
	if _, err := s.repo.Clan().GetByID(ctx, clanID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrClanNotFound
		}
		return nil, fmt.Errorf("failed to get clan: %w", err)
	}

	board := clanBoard(clanID)
	if s.leaderboard != nil {
		ranked, err := s.leaderboard.Top(ctx, board, limit)
		if err == nil && len(ranked) > 0 {
			return s.memberLeaderboard(ctx, board, ranked)
		}
		if err != nil {
			s.logger.Warn("Leaderboard read failed, falling back to database",
				"board", board, "error", err)
		}
	}

	members, err := s.repo.Clan().TopMembers(ctx, clanID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top members: %w", err)
	}

	entries := make([]models.LeaderboardEntry, 0, len(members))
	for i, m := range members {
		entry := models.LeaderboardEntry{
			Rank:  i + 1,
			ID:    m.UserID,
			Score: m.Score,
		}
		if m.User != nil {
			entry.DisplayName = m.User.DisplayName
		}
		entries = append(entries, entry)
	}
	return &models.Leaderboard{Scope: board, Entries: entries, UpdatedAt: time.Now()}, nil
}

// GlobalLeaderboard ranks clans by total score.
func (s *clanService) GlobalLeaderboard(ctx context.Context, limit int) (*models.Leaderboard, error) {
	if s.leaderboard != nil {
		ranked, err := s.leaderboard.Top(ctx, globalBoard, limit)
		if err == nil && len(ranked) > 0 {
			return s.clanLeaderboardEntries(ctx, ranked)
		}
		if err != nil {
			s.logger.Warn("Leaderboard read failed, falling back to database",
				"board", globalBoard, "error", err)
		}
	}

	clans, err := s.repo.Clan().TopClans(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top clans: %w", err)
	}

	entries := make([]models.LeaderboardEntry, 0, len(clans))
	for i, c := range clans {
		entries = append(entries, models.LeaderboardEntry{
			Rank:        i + 1,
			ID:          strconv.FormatUint(uint64(c.ID), 10),
			DisplayName: c.Name,
			Score:       c.TotalScore,
		})
	}
	return &models.Leaderboard{Scope: globalBoard, Entries: entries, UpdatedAt: time.Now()}, nil
}

func (s *clanService) memberLeaderboard(ctx context.Context, board string, ranked []cache.RankedMember) (*models.Leaderboard, error) {
	ids := make([]string, 0, len(ranked))
	for _, r := range ranked {
		ids = append(ids, r.MemberID)
	}

	names := make(map[string]string, len(ids))
	users, err := s.repo.User().GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("Failed to resolve member names", "error", err)
	} else {
		for _, u := range users {
			names[u.ID] = u.DisplayName
		}
	}

	entries := make([]models.LeaderboardEntry, 0, len(ranked))
	for i, r := range ranked {
		entries = append(entries, models.LeaderboardEntry{
			Rank:        i + 1,
			ID:          r.MemberID,
			DisplayName: names[r.MemberID],
			Score:       r.Score,
		})
	}
	return &models.Leaderboard{Scope: board, Entries: entries, UpdatedAt: time.Now()}, nil
}

func (s *clanService) clanLeaderboardEntries(ctx context.Context, ranked []cache.RankedMember) (*models.Leaderboard, error) {
	entries := make([]models.LeaderboardEntry, 0, len(ranked))
	for i, r := range ranked {
		entry := models.LeaderboardEntry{
			Rank:  i + 1,
			ID:    r.MemberID,
			Score: r.Score,
		}
		if id, err := strconv.ParseUint(r.MemberID, 10, 64); err == nil {
			if clan, err := s.repo.Clan().GetByID(ctx, uint(id)); err == nil {
				entry.DisplayName = clan.Name
			}
		}
		entries = append(entries, entry)
	}
	return &models.Leaderboard{Scope: globalBoard, Entries: entries, UpdatedAt: time.Now()}, nil
}

func (s *clanService) publish(ctx context.Context, event *events.LearningEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLearningEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event",
			"type", event.Type, "error", err)
	}
}

func clanBoard(clanID uint) string {
	return "clan:" + strconv.FormatUint(uint64(clanID), 10)
}

func clanBoardMember(clanID uint) string {
	return strconv.FormatUint(uint64(clanID), 10)
}
