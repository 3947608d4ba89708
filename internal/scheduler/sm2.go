// Package scheduler implements the spaced repetition scheduling used for
// review cards, an SM-2 variant with bounded ease factors and intervals.
package scheduler

import (
	"math"
	"sort"
	"time"

	"github.com/error-404/learning-service/internal/models"
)

const (
	// SuccessThreshold is the performance above which a recall counts as
	// successful (3 out of 5 on the classic SM-2 scale).
	SuccessThreshold = 0.6

	MinIntervalDays = 1
	MaxIntervalDays = 365

	MinEaseFactor = 1.3
	MaxEaseFactor = 3.0

	easeBonus   = 0.15
	easePenalty = 0.20

	// Review session sizing
	MaxCardsPerSession    = 10
	MinutesPerCard        = 2
	DefaultSessionMinutes = 15
)

// Review is the scheduling outcome for one recorded recall.
type Review struct {
	IntervalDays    int
	EaseFactor      float64
	RepetitionCount int
	NextReviewAt    time.Time
}

// Schedule computes the next review for a card given a recall performance in
// [0, 1]. Successful recalls grow the interval (1 day, 6 days, then
// interval*ease) and nudge the ease factor up; failures reset the repetition
// count to zero, schedule a next-day review, and lower the ease factor.
func Schedule(card *models.ReviewCard, performance float64, now time.Time) Review {
	interval := card.IntervalDays
	ease := card.EaseFactor
	repetitions := card.RepetitionCount

	if ease == 0 {
		ease = 2.5
	}

	if performance >= SuccessThreshold {
		repetitions++

		switch repetitions {
		case 1:
			interval = 1
		case 2:
			interval = 6
		default:
			interval = int(math.Round(float64(interval) * ease))
			if interval < 1 {
				interval = 1
			}
		}

		ease += (performance - SuccessThreshold) * easeBonus
	} else {
		repetitions = 0
		interval = 1
		ease -= (SuccessThreshold - performance) * easePenalty
	}

	interval = clampInt(interval, MinIntervalDays, MaxIntervalDays)
	ease = clampFloat(ease, MinEaseFactor, MaxEaseFactor)

	return Review{
		IntervalDays:    interval,
		EaseFactor:      ease,
		RepetitionCount: repetitions,
		NextReviewAt:    now.AddDate(0, 0, interval),
	}
}

// Apply writes a scheduling outcome back onto the card.
func Apply(card *models.ReviewCard, review Review, performance float64, now time.Time) {
	card.IntervalDays = review.IntervalDays
	card.EaseFactor = review.EaseFactor
	card.RepetitionCount = review.RepetitionCount
	card.DueAt = review.NextReviewAt
	card.LastReviewedAt = &now
	card.LastPerformance = performance
}

// Prioritize orders due cards for a review session: most overdue first, lower
// ease (harder material) breaking ties. Cards not yet due keep their relative
// order at the tail.
func Prioritize(cards []*models.ReviewCard, now time.Time) []*models.ReviewCard {
	out := make([]*models.ReviewCard, len(cards))
	copy(out, cards)

	sort.SliceStable(out, func(i, j int) bool {
		oi, oj := out[i].OverdueSeconds(now), out[j].OverdueSeconds(now)
		if oi != oj {
			return oi > oj
		}
		return out[i].EaseFactor < out[j].EaseFactor
	})
	return out
}

// SessionPlan is an ordered batch of cards sized to a target duration.
type SessionPlan struct {
	Cards            []*models.ReviewCard
	EstimatedMinutes int
	TotalDue         int
}

// PlanSession selects and orders cards for a review session bounded by the
// target duration and the per-session cap.
func PlanSession(due []*models.ReviewCard, targetMinutes int, now time.Time) SessionPlan {
	if targetMinutes <= 0 {
		targetMinutes = DefaultSessionMinutes
	}

	limit := targetMinutes / MinutesPerCard
	if limit > MaxCardsPerSession {
		limit = MaxCardsPerSession
	}
	if limit < 1 {
		limit = 1
	}

	ordered := Prioritize(due, now)
	if len(ordered) > limit {
		ordered = ordered[:limit]
	}

	return SessionPlan{
		Cards:            ordered,
		EstimatedMinutes: len(ordered) * MinutesPerCard,
		TotalDue:         len(due),
	}
}

// PerformanceCategory buckets a recall performance for reporting.
func PerformanceCategory(performance float64) string {
	switch {
	case performance >= 0.9:
		return "excellent"
	case performance >= 0.7:
		return "good"
	case performance >= SuccessThreshold:
		return "satisfactory"
	case performance >= 0.4:
		return "needs_improvement"
	default:
		return "difficult"
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
