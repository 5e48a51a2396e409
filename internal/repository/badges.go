package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/julianstephens/pomolit/internal/models"
	"github.com/julianstephens/pomolit/internal/storage"
)

const userBadgeColumns = "badge_id, tier, progress, earned_at, pending, updated_at"

// Badges reads the seeded catalog and persists per-user progress.
type Badges struct {
	h   storage.Handle
	now clock
}

func NewBadges(h storage.Handle) *Badges {
	return &Badges{h: h, now: systemClock}
}

func scanBadge(row storage.Scanner) (models.Badge, error) {
	var b models.Badge
	var category string
	if err := row.Scan(&b.ID, &b.Name, &b.Description, &category, &b.Thresholds[0], &b.Thresholds[1], &b.Thresholds[2]); err != nil {
		return models.Badge{}, err
	}
	b.Category = models.BadgeCategory(category)
	if err := b.Validate(); err != nil {
		return models.Badge{}, fmt.Errorf("corrupt badge row: %w", err)
	}
	return b, nil
}

func scanUserBadge(row storage.Scanner) (models.UserBadge, error) {
	var ub models.UserBadge
	var tier, pending int
	var earnedAt sql.NullString
	var updatedAt string
	if err := row.Scan(&ub.BadgeID, &tier, &ub.Progress, &earnedAt, &pending, &updatedAt); err != nil {
		return models.UserBadge{}, err
	}
	if tier < int(models.TierNone) || tier > int(models.TierGold) {
		return models.UserBadge{}, fmt.Errorf("user badge %s: tier %d out of range", ub.BadgeID, tier)
	}
	ub.Tier = models.Tier(tier)
	ub.Pending = pending != 0

	if earnedAt.Valid {
		t, err := storage.ParseTimestamp(earnedAt.String)
		if err != nil {
			return models.UserBadge{}, fmt.Errorf("user badge %s: %w", ub.BadgeID, err)
		}
		ub.EarnedAt = &t
	}
	var err error
	if ub.UpdatedAt, err = storage.ParseTimestamp(updatedAt); err != nil {
		return models.UserBadge{}, fmt.Errorf("user badge %s: %w", ub.BadgeID, err)
	}
	return ub, nil
}

// Catalog returns every badge definition ordered by id.
func (r *Badges) Catalog(ctx context.Context) ([]models.Badge, error) {
	badges, err := storage.Select(ctx, r.h,
		"SELECT id, name, description, category, bronze, silver, gold FROM badges ORDER BY id", scanBadge)
	return badges, storage.Wrap("select", "badges", err)
}

// UserBadges returns stored progress keyed by badge id. Badges never evaluated are absent.
func (r *Badges) UserBadges(ctx context.Context) (map[string]models.UserBadge, error) {
	list, err := r.ListUserBadges(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]models.UserBadge, len(list))
	for _, ub := range list {
		out[ub.BadgeID] = ub
	}
	return out, nil
}

func (r *Badges) ListUserBadges(ctx context.Context) ([]models.UserBadge, error) {
	list, err := storage.Select(ctx, r.h,
		"SELECT "+userBadgeColumns+" FROM user_badges ORDER BY badge_id", scanUserBadge)
	return list, storage.Wrap("select", "user_badges", err)
}

// Save upserts ub. A stored row is never moved to a lower tier or lower progress.
func (r *Badges) Save(ctx context.Context, ub models.UserBadge) error {
	if err := ub.Validate(); err != nil {
		return err
	}
	if ub.UpdatedAt.IsZero() {
		ub.UpdatedAt = r.now()
	}
	_, err := r.h.Exec(ctx, `
		INSERT INTO user_badges (badge_id, tier, progress, earned_at, pending, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(badge_id) DO UPDATE SET
			tier = excluded.tier,
			progress = excluded.progress,
			earned_at = excluded.earned_at,
			pending = excluded.pending,
			updated_at = excluded.updated_at
		WHERE excluded.tier >= user_badges.tier AND excluded.progress >= user_badges.progress`,
		ub.BadgeID, int(ub.Tier), ub.Progress, storage.NullableTimestamp(ub.EarnedAt),
		storage.BoolToInt(ub.Pending), storage.FormatTimestamp(ub.UpdatedAt))
	return storage.Wrap("upsert", "user_badges", err)
}

// Pending returns upgraded badges the user has not acknowledged yet.
func (r *Badges) Pending(ctx context.Context) ([]models.UserBadge, error) {
	list, err := storage.Select(ctx, r.h,
		"SELECT "+userBadgeColumns+" FROM user_badges WHERE pending = 1 ORDER BY badge_id", scanUserBadge)
	return list, storage.Wrap("select", "user_badges", err)
}

// Acknowledge clears the pending flag on ids, or on every badge when ids is empty.
func (r *Badges) Acknowledge(ctx context.Context, ids ...string) (int, error) {
	fields := storage.Fields{
		"pending":    0,
		"updated_at": storage.FormatTimestamp(r.now()),
	}
	if len(ids) == 0 {
		res, err := storage.Update(ctx, r.h, "user_badges", fields, "pending = 1")
		return int(res.RowsAffected), err
	}
	total := 0
	for _, id := range ids {
		res, err := storage.Update(ctx, r.h, "user_badges", fields, "badge_id = ? AND pending = 1", id)
		if err != nil {
			return total, err
		}
		total += int(res.RowsAffected)
	}
	return total, nil
}
