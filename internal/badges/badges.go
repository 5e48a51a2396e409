// Package badges maps aggregate counters to badge tiers and records upgrades.
package badges

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/pomolit/internal/logger"
	"github.com/julianstephens/pomolit/internal/models"
	"github.com/julianstephens/pomolit/internal/stats"
)

type SessionCounter interface {
	SumWorkSeconds(ctx context.Context) (int, error)
	CountCompletedWork(ctx context.Context) (int, error)
	CountPerfect(ctx context.Context, targetSeconds int) (int, error)
	ActiveDates(ctx context.Context) ([]string, error)
}

type TaskCounter interface {
	CountCompleted(ctx context.Context) (int, error)
}

type Store interface {
	Catalog(ctx context.Context) ([]models.Badge, error)
	UserBadges(ctx context.Context) (map[string]models.UserBadge, error)
	Save(ctx context.Context, ub models.UserBadge) error
	Pending(ctx context.Context) ([]models.UserBadge, error)
	Acknowledge(ctx context.Context, ids ...string) (int, error)
}

type ProfileWriter interface {
	SaveSnapshot(ctx context.Context, snap models.UserProfile) error
}

// Counters are the five aggregates badges are judged on.
type Counters struct {
	FocusMinutes      int
	CompletedTasks    int
	DayStreak         int
	CompletedSessions int
	PerfectSessions   int
	LastActiveDate    string
}

// Value returns the counter a badge category is measured by.
func (c Counters) Value(category models.BadgeCategory) (int, error) {
	switch category {
	case models.CategoryFocusTime:
		return c.FocusMinutes, nil
	case models.CategoryTasksCompleted:
		return c.CompletedTasks, nil
	case models.CategoryDayStreak:
		return c.DayStreak, nil
	case models.CategorySessionsCompleted:
		return c.CompletedSessions, nil
	case models.CategoryPerfectSession:
		return c.PerfectSessions, nil
	}
	return 0, fmt.Errorf("unknown badge category %q", category)
}

// Award is a tier upgrade produced by one evaluation pass.
type Award struct {
	Badge models.Badge
	From  models.Tier
	To    models.Tier
}

// TierFor returns the highest tier whose threshold value meets.
func TierFor(thresholds [3]int, value int) models.Tier {
	tier := models.TierNone
	for i, threshold := range thresholds {
		if value >= threshold {
			tier = models.Tier(i + 1)
		}
	}
	return tier
}

// Evaluator re-derives counters from scratch and ratchets stored badge progress.
type Evaluator struct {
	sessions    SessionCounter
	tasks       TaskCounter
	store       Store
	profile     ProfileWriter
	workSeconds int
	today       func() string
	now         func() time.Time
}

// NewEvaluator builds an evaluator. workSeconds is the configured work
// length a session must match to count as perfect; today yields the
// current date in the user's timezone.
func NewEvaluator(sessions SessionCounter, tasks TaskCounter, store Store, profile ProfileWriter, workSeconds int, today func() string) *Evaluator {
	return &Evaluator{
		sessions:    sessions,
		tasks:       tasks,
		store:       store,
		profile:     profile,
		workSeconds: workSeconds,
		today:       today,
		now:         time.Now,
	}
}

func (e *Evaluator) Counters(ctx context.Context) (Counters, error) {
	var c Counters

	focusSeconds, err := e.sessions.SumWorkSeconds(ctx)
	if err != nil {
		return Counters{}, fmt.Errorf("count focus time: %w", err)
	}
	c.FocusMinutes = focusSeconds / 60

	if c.CompletedTasks, err = e.tasks.CountCompleted(ctx); err != nil {
		return Counters{}, fmt.Errorf("count completed tasks: %w", err)
	}
	if c.CompletedSessions, err = e.sessions.CountCompletedWork(ctx); err != nil {
		return Counters{}, fmt.Errorf("count completed sessions: %w", err)
	}
	if c.PerfectSessions, err = e.sessions.CountPerfect(ctx, e.workSeconds); err != nil {
		return Counters{}, fmt.Errorf("count perfect sessions: %w", err)
	}

	active, err := e.sessions.ActiveDates(ctx)
	if err != nil {
		return Counters{}, fmt.Errorf("load active dates: %w", err)
	}
	if c.DayStreak, err = stats.StreakFrom(active, e.today()); err != nil {
		return Counters{}, err
	}
	if len(active) > 0 {
		c.LastActiveDate = active[0]
	}
	return c, nil
}

// Evaluate runs one pass over the catalog. Only advances are written; a
// badge never loses tier or progress. Upgraded badges are marked pending
// and returned. The profile snapshot is refreshed afterwards.
func (e *Evaluator) Evaluate(ctx context.Context) ([]Award, error) {
	counters, err := e.Counters(ctx)
	if err != nil {
		return nil, err
	}
	catalog, err := e.store.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	stored, err := e.store.UserBadges(ctx)
	if err != nil {
		return nil, err
	}

	now := e.now()
	var awards []Award
	for _, badge := range catalog {
		value, err := counters.Value(badge.Category)
		if err != nil {
			logger.Warn("Skipping badge", "badge", badge.ID, "error", err)
			continue
		}

		current, seen := stored[badge.ID]
		next := current
		next.BadgeID = badge.ID

		tier := TierFor(badge.Thresholds, value)
		upgraded := tier > current.Tier
		if upgraded {
			next.Tier = tier
			earned := now
			next.EarnedAt = &earned
			next.Pending = true
		}
		if value > current.Progress {
			next.Progress = value
		}
		if seen && !upgraded && next.Progress == current.Progress {
			continue
		}
		if !seen && !upgraded && value == 0 {
			continue
		}

		next.UpdatedAt = now
		if err := e.store.Save(ctx, next); err != nil {
			return awards, err
		}
		if upgraded {
			logger.Info("Badge earned", "badge", badge.ID, "tier", tier.String())
			awards = append(awards, Award{Badge: badge, From: current.Tier, To: tier})
		}
	}

	if err := e.profile.SaveSnapshot(ctx, models.UserProfile{
		FocusMinutes:      counters.FocusMinutes,
		CompletedTasks:    counters.CompletedTasks,
		CompletedSessions: counters.CompletedSessions,
		PerfectSessions:   counters.PerfectSessions,
		DayStreak:         counters.DayStreak,
		LastActiveDate:    counters.LastActiveDate,
	}); err != nil {
		// The snapshot is advisory; the badge writes above already landed.
		logger.Warn("Failed to refresh profile snapshot", "error", err)
	}
	return awards, nil
}

// Pending returns upgrades not yet shown to the user.
func (e *Evaluator) Pending(ctx context.Context) ([]models.UserBadge, error) {
	return e.store.Pending(ctx)
}

// Acknowledge clears the pending flag for ids, or for all badges when none are given.
func (e *Evaluator) Acknowledge(ctx context.Context, ids ...string) (int, error) {
	return e.store.Acknowledge(ctx, ids...)
}
