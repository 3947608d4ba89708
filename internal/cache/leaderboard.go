package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RankedMember is one scored member read back from a leaderboard.
type RankedMember struct {
	MemberID string
	Score    int64
}

// LeaderboardStore maintains ordered scoreboards. Backed by Redis sorted
// sets; the database totals remain the source of truth and services fall
// back to them when the store is unavailable.
type LeaderboardStore interface {
	IncrScore(ctx context.Context, board, memberID string, delta int64) (int64, error)
	Top(ctx context.Context, board string, limit int) ([]RankedMember, error)
	Rank(ctx context.Context, board, memberID string) (int64, error)
	Remove(ctx context.Context, board, memberID string) error
	Drop(ctx context.Context, board string) error
}

type redisLeaderboard struct {
	client *redis.Client
}

func NewRedisLeaderboard(client *redis.Client) LeaderboardStore {
	return &redisLeaderboard{client: client}
}

func (l *redisLeaderboard) key(board string) string {
	return "leaderboard:" + board
}

// IncrScore adds delta to the member's score and returns the new value.
func (l *redisLeaderboard) IncrScore(ctx context.Context, board, memberID string, delta int64) (int64, error) {
	score, err := l.client.ZIncrBy(ctx, l.key(board), float64(delta), memberID).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment leaderboard %s: %w", board, err)
	}
	return int64(score), nil
}

// Top returns up to limit members ordered by descending score.
func (l *redisLeaderboard) Top(ctx context.Context, board string, limit int) ([]RankedMember, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := l.client.ZRevRangeWithScores(ctx, l.key(board), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard %s: %w", board, err)
	}

	members := make([]RankedMember, 0, len(rows))
	for _, row := range rows {
		id, ok := row.Member.(string)
		if !ok {
			continue
		}
		members = append(members, RankedMember{MemberID: id, Score: int64(row.Score)})
	}
	return members, nil
}

// Rank returns the 1-based descending rank of a member, 0 when absent.
func (l *redisLeaderboard) Rank(ctx context.Context, board, memberID string) (int64, error) {
	rank, err := l.client.ZRevRank(ctx, l.key(board), memberID).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to rank member on leaderboard %s: %w", board, err)
	}
	return rank + 1, nil
}

func (l *redisLeaderboard) Remove(ctx context.Context, board, memberID string) error {
	if err := l.client.ZRem(ctx, l.key(board), memberID).Err(); err != nil {
		return fmt.Errorf("failed to remove member from leaderboard %s: %w", board, err)
	}
	return nil
}

// Drop deletes an entire board.
func (l *redisLeaderboard) Drop(ctx context.Context, board string) error {
	if err := l.client.Del(ctx, l.key(board)).Err(); err != nil {
		return fmt.Errorf("failed to drop leaderboard %s: %w", board, err)
	}
	return nil
}
