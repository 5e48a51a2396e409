package models

import (
	"fmt"
	"time"
)

type BadgeCategory string

const (
	CategoryFocusTime         BadgeCategory = "focus_time"
	CategoryTasksCompleted    BadgeCategory = "tasks_completed"
	CategoryDayStreak         BadgeCategory = "day_streak"
	CategorySessionsCompleted BadgeCategory = "sessions_completed"
	CategoryPerfectSession    BadgeCategory = "perfect_session"
)

// Tier is an ordered badge achievement level.
type Tier int

const (
	TierNone Tier = iota
	TierBronze
	TierSilver
	TierGold
)

func (t Tier) String() string {
	switch t {
	case TierNone:
		return "none"
	case TierBronze:
		return "bronze"
	case TierSilver:
		return "silver"
	case TierGold:
		return "gold"
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

// Badge is a static catalog entry. Thresholds are bronze, silver, gold, ascending.
type Badge struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Category    BadgeCategory `json:"category"`
	Thresholds  [3]int        `json:"thresholds"`
}

// Validate rejects catalog entries whose thresholds are not strictly ascending.
func (b Badge) Validate() error {
	if b.ID == "" {
		return fmt.Errorf("badge id cannot be empty")
	}
	if b.Thresholds[0] <= 0 || b.Thresholds[0] >= b.Thresholds[1] || b.Thresholds[1] >= b.Thresholds[2] {
		return fmt.Errorf("badge %s: thresholds %v must be positive and ascending", b.ID, b.Thresholds)
	}
	return nil
}

// UserBadge is the per-user progress record for one badge.
type UserBadge struct {
	BadgeID   string     `json:"badge_id"`
	Tier      Tier       `json:"tier"`
	Progress  int        `json:"progress"`
	EarnedAt  *time.Time `json:"earned_at,omitempty"` // first time at the current tier
	Pending   bool       `json:"pending"`             // upgraded but not yet acknowledged
	UpdatedAt time.Time  `json:"updated_at"`
}

func (ub UserBadge) Validate() error {
	if ub.BadgeID == "" {
		return fmt.Errorf("user badge id cannot be empty")
	}
	if ub.Tier < TierNone || ub.Tier > TierGold {
		return fmt.Errorf("badge %s: tier %d out of range", ub.BadgeID, int(ub.Tier))
	}
	if ub.Progress < 0 {
		return fmt.Errorf("badge %s: progress cannot be negative", ub.BadgeID)
	}
	if ub.Tier == TierNone && ub.Pending {
		return fmt.Errorf("badge %s: pending without a tier", ub.BadgeID)
	}
	return nil
}

// DefaultBadges is the seeded catalog, one badge per category.
func DefaultBadges() []Badge {
	return []Badge{
		{
			ID:          "focus-master",
			Name:        "Focus Master",
			Description: "Accumulate focused minutes.",
			Category:    CategoryFocusTime,
			Thresholds:  [3]int{300, 1500, 6000},
		},
		{
			ID:          "task-finisher",
			Name:        "Task Finisher",
			Description: "Complete tasks.",
			Category:    CategoryTasksCompleted,
			Thresholds:  [3]int{10, 50, 100},
		},
		{
			ID:          "on-a-roll",
			Name:        "On a Roll",
			Description: "Focus on consecutive days.",
			Category:    CategoryDayStreak,
			Thresholds:  [3]int{3, 7, 30},
		},
		{
			ID:          "pomodoro-pro",
			Name:        "Pomodoro Pro",
			Description: "Complete focus sessions.",
			Category:    CategorySessionsCompleted,
			Thresholds:  [3]int{10, 100, 500},
		},
		{
			ID:          "perfectionist",
			Name:        "Perfectionist",
			Description: "Finish focus sessions at exactly the configured length.",
			Category:    CategoryPerfectSession,
			Thresholds:  [3]int{5, 25, 100},
		},
	}
}
